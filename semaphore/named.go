// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// OpenMode selects how Named.Open treats an existing name.
type OpenMode int

const (
	// OpenOrCreate opens the semaphore, creating it if the name does not exist.
	OpenOrCreate OpenMode = iota

	// CreateExclusive creates the semaphore and fails with unix.EEXIST if the name exists.
	CreateExclusive

	// OpenExisting opens the semaphore and fails with unix.ENOENT if the name does not exist.
	// The permission and count given to Open are ignored.
	OpenExisting
)

func (m OpenMode) String() string {
	switch m {
	case OpenOrCreate:
		return "open-or-create"
	case CreateExclusive:
		return "create-exclusive"
	case OpenExisting:
		return "open-existing"
	default:
		return "invalid"
	}
}

func (m OpenMode) flags() (int, error) {
	switch m {
	case OpenOrCreate:
		return unix.O_CREAT, nil
	case CreateExclusive:
		return unix.O_CREAT | unix.O_EXCL, nil
	case OpenExisting:
		return 0, nil
	default:
		return 0, unix.EINVAL
	}
}

// ValidateName checks name against the portable semaphore name syntax: a single leading
// separator followed by at least one character, with no further separators or NULs, and no
// longer than the platform allows.
func ValidateName(name string) error {
	switch {
	case len(name) < 2 || name[0] != '/':
		return fmt.Errorf("%w %q: must be a '/' followed by at least one character", ErrInvalidName, name)

	case strings.IndexByte(name[1:], '/') >= 0:
		return fmt.Errorf("%w %q: only the leading '/' is allowed", ErrInvalidName, name)

	case strings.IndexByte(name, 0) >= 0:
		return fmt.Errorf("%w %q: contains a NUL", ErrInvalidName, name)

	case len(name) > maxNameLength:
		return fmt.Errorf("%w %q: longer than %d bytes", ErrInvalidName, name, maxNameLength)
	}

	return nil
}

// Named owns a process-local handle to a named semaphore.  Every process that opens the same name
// uses its own Named, bound to the same system-wide semaphore.  Closing a Named releases only the
// handle; the name stays until Unlink.
//
// The zero value is ready to use.
type Named struct {
	core

	// anonymous is set when the name was unlinked as part of construction.
	anonymous bool

	// name and mode are written by the winner of Open, before the Ready store.
	name string
	mode OpenMode
}

// NewNamed returns a Named whose handle is closed by the garbage collector if it is never closed.
func NewNamed(opts ...Option) *Named {
	n := &Named{core: core{opts: newOptions(opts)}}
	runtime.SetFinalizer(n, (*Named).finalize)
	return n
}

// Open opens or creates the semaphore with the given name.  The name is validated before any
// system call.  As with Unnamed, concurrent callers on the same Named share one open.
//
// Once a Named is bound, a later Open returns a new reference only when it asks for the same
// name with OpenOrCreate or OpenExisting.  A different name, CreateExclusive, or any Open on an
// owner made by CreateAnonymous fails with KindAlreadyInitialized.
func (n *Named) Open(name string, mode OpenMode, perm os.FileMode, count uint32) (*Ref, error) {
	if err := ValidateName(name); err != nil {
		return nil, wrap(KindInitializationFailed, "open", name, err)
	}

	oflag, err := mode.flags()
	if err != nil {
		return nil, wrap(KindInitializationFailed, "open", name, err)
	}

	var opened bool
	r, err := n.initialize(attempt{
		kind: n.kind(),
		op:   "open",
		name: name,
		setup: func() (unsafe.Pointer, error) {
			p, err := openNamed(name, oflag, perm, count)
			if err == nil {
				opened = true
				n.name, n.mode = name, mode
			}

			return p, err
		},
	})

	if r == nil || opened {
		return r, err
	}

	if n.anonymous || n.name != name || mode == CreateExclusive {
		r.Release()

		bound := fmt.Errorf("already bound to %q (%s)", n.name, n.mode)
		if n.anonymous {
			bound = errors.New("already bound to an anonymous semaphore")
		}

		return nil, &Error{Kind: KindAlreadyInitialized, Op: "open", Name: name, Err: bound}
	}

	return r, err
}

// Name returns the name this owner opened.  It is empty until Open succeeds, and always empty
// for an owner made by CreateAnonymous.
func (n *Named) Name() string {
	if s := n.State(); s != StateReady && s != StateClosed {
		return ""
	}

	return n.name
}

// Ref returns a new reference if the semaphore is open.
func (n *Named) Ref() (*Ref, error) {
	return n.ref()
}

// Close releases this process' handle.  It fails with ErrInUse while references are outstanding.
func (n *Named) Close() error {
	return n.close(n.kind(), rawClose)
}

func (n *Named) kind() string {
	if n.anonymous {
		return AnonymousKind
	}

	return NamedKind
}

func (n *Named) finalize() {
	n.core.finalize(n.kind(), rawClose)
}

// Unlink removes name from the system namespace.  Open handles stay valid until they are closed.
func Unlink(name string) error {
	if err := ValidateName(name); err != nil {
		return wrap(KindUnlinkFailed, "unlink", name, err)
	}

	if err := rawUnlink(name); err != nil {
		return wrap(KindUnlinkFailed, "unlink", name, err)
	}

	return nil
}

func openNamed(name string, oflag int, perm os.FileMode, count uint32) (unsafe.Pointer, error) {
	for {
		p, err := rawOpen(name, oflag, uint32(perm.Perm()), count)
		if err != unix.EINTR {
			return p, err
		}
	}
}
