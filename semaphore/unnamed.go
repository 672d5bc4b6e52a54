// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Unnamed owns an in-memory semaphore created with sem_init.  The sem_t lives either in C memory
// allocated by the owner or at a caller-supplied address, never in Go memory, so its address is
// fixed from initialization until Close.
//
// The zero value is ready to use and allocates its storage on initialization.
type Unnamed struct {
	core
	at unsafe.Pointer

	// attached is set by the winner of Attach, before the Ready store.
	attached bool
}

var _ NonNamed = (*Unnamed)(nil)

// NewUnnamed returns an Unnamed whose storage is reclaimed by the garbage collector if it is
// never closed.
func NewUnnamed(opts ...Option) *Unnamed {
	u := &Unnamed{core: core{opts: newOptions(opts)}}
	runtime.SetFinalizer(u, (*Unnamed).finalize)
	return u
}

// NewUnnamedAt returns an Unnamed that initializes the semaphore at p, which must point to at least
// Size() bytes that stay mapped until Close.  Use a SharedRegion slot to share it between processes.
func NewUnnamedAt(p unsafe.Pointer, opts ...Option) *Unnamed {
	u := NewUnnamed(opts...)
	u.at = p
	return u
}

// Size is the number of bytes an unnamed semaphore occupies on this platform.
func Size() uintptr {
	return rawSize()
}

// Init initializes a process-private semaphore with a count of zero.
func (u *Unnamed) Init() (*Ref, error) {
	return u.InitWith(false, 0)
}

// InitWith initializes the semaphore exactly once.  Concurrent callers all receive a reference once
// the single winner has finished, or the winner's error if it failed.  After a failure the owner may
// be initialized again.
func (u *Unnamed) InitWith(shared bool, count uint32) (*Ref, error) {
	return u.initialize(u.prepare(false, shared, count))
}

// InitExclusive is like InitWith, but only the caller that performs the initialization gets a
// reference.  Everyone else gets a KindAlreadyInitialized error.
func (u *Unnamed) InitExclusive(shared bool, count uint32) (*Ref, error) {
	return u.initialize(u.prepare(true, shared, count))
}

// Attach binds this owner to a process-shared semaphore that another process already initialized at
// the address given to NewUnnamedAt.  No system call is made, and Close leaves the semaphore for its
// creator to destroy.
func (u *Unnamed) Attach() (*Ref, error) {
	return u.initialize(attempt{
		kind: UnnamedKind,
		op:   "attach",
		setup: func() (unsafe.Pointer, error) {
			if u.at == nil {
				return nil, unix.EINVAL
			}

			u.attached = true
			return u.at, nil
		},
	})
}

// Ref returns a new reference if the semaphore is initialized.
func (u *Unnamed) Ref() (*Ref, error) {
	return u.ref()
}

// Close destroys the semaphore.  It fails with ErrInUse while references are outstanding.
func (u *Unnamed) Close() error {
	return u.close(UnnamedKind, u.teardown)
}

func (u *Unnamed) prepare(exclusive, shared bool, count uint32) attempt {
	return attempt{
		kind:      UnnamedKind,
		op:        "init",
		exclusive: exclusive,
		setup: func() (unsafe.Pointer, error) {
			p := u.at
			if p == nil {
				var err error
				if p, err = rawAlloc(); err != nil {
					return nil, err
				}
			}

			if err := rawInit(p, shared, count); err != nil {
				if u.at == nil {
					rawFree(p)
				}

				return nil, err
			}

			return p, nil
		},
	}
}

func (u *Unnamed) teardown(p unsafe.Pointer) error {
	if u.attached {
		return nil
	}

	err := rawDestroy(p)
	if u.at == nil {
		rawFree(p)
	}

	return err
}

func (u *Unnamed) finalize() {
	u.core.finalize(UnnamedKind, u.teardown)
}
