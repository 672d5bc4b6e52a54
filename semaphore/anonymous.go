// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"runtime"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// unlinkName removes a freshly created anonymous name.
var unlinkName = rawUnlink

// Anonymous owns a named semaphore whose name is removed as soon as it has been created, so it
// behaves like an unnamed, process-private semaphore.  It serves platforms without sem_init.
//
// The zero value is ready to use.
type Anonymous struct {
	core
}

var _ NonNamed = (*Anonymous)(nil)

// NewAnonymous returns an Anonymous whose handle is closed by the garbage collector if it is
// never closed.
func NewAnonymous(opts ...Option) *Anonymous {
	a := &Anonymous{core: core{opts: newOptions(opts)}}
	runtime.SetFinalizer(a, (*Anonymous).finalize)
	return a
}

// Init creates the semaphore with a count of zero.
func (a *Anonymous) Init() (*Ref, error) {
	return a.InitWith(false, 0)
}

// InitWith creates the semaphore exactly once.  An anonymous semaphore cannot be shared between
// processes, so shared must be false.
//
// An error for which IsWarning reports true may accompany a usable reference.
func (a *Anonymous) InitWith(shared bool, count uint32) (*Ref, error) {
	return a.init(false, shared, count)
}

// InitExclusive is like InitWith, but only the caller that performs the creation gets a reference.
func (a *Anonymous) InitExclusive(shared bool, count uint32) (*Ref, error) {
	return a.init(true, shared, count)
}

// Ref returns a new reference if the semaphore has been created.
func (a *Anonymous) Ref() (*Ref, error) {
	return a.ref()
}

// Close releases the semaphore.  It fails with ErrInUse while references are outstanding.
func (a *Anonymous) Close() error {
	return a.close(AnonymousKind, rawClose)
}

func (a *Anonymous) init(exclusive, shared bool, count uint32) (*Ref, error) {
	if shared {
		return nil, &Error{Kind: KindInitializationFailed, Op: "init", Err: ErrSharedUnsupported}
	}

	return a.initialize(attempt{
		kind:      AnonymousKind,
		op:        "init",
		exclusive: exclusive,
		setup:     anonymousSetup(a.opts, count),
	})
}

func (a *Anonymous) finalize() {
	a.core.finalize(AnonymousKind, rawClose)
}

// CreateAnonymous creates a semaphore under a freshly generated name and unlinks the name before
// returning, so no other process can open it.  If the unlink fails the semaphore is still returned,
// together with a KindUnlinkFailed error.
func CreateAnonymous(count uint32, opts ...Option) (*Named, *Ref, error) {
	n := NewNamed(opts...)
	n.anonymous = true

	r, err := n.initialize(attempt{
		kind:  AnonymousKind,
		op:    "create",
		setup: anonymousSetup(n.opts, count),
	})

	if r == nil {
		return nil, nil, err
	}

	return n, r, err
}

// anonymousSetup tries up to the configured number of generated names.  Only a collision moves on
// to the next name.
func anonymousSetup(o *options, count uint32) func() (unsafe.Pointer, error) {
	return func() (unsafe.Pointer, error) {
		var (
			logger    = o.logger()
			generator = o.names()
			attempts  = o.tries()
		)

		for i := 0; i < attempts; i++ {
			name, err := generator.Generate()
			if err != nil {
				return nil, &Error{Kind: KindInitializationFailed, Op: "generate", Err: err}
			}

			if err := ValidateName(name); err != nil {
				return nil, &Error{Kind: KindInitializationFailed, Op: "generate", Name: name, Err: err}
			}

			p, err := openNamed(name, unix.O_CREAT|unix.O_EXCL, o.mode(), count)
			if err == unix.EEXIST {
				logger.Debug("anonymous semaphore name collision", zap.String("name", name), zap.Int("attempt", i+1))
				continue
			} else if err != nil {
				return nil, &Error{Kind: KindInitializationFailed, Op: "open", Name: name, Err: err}
			}

			if err := unlinkName(name); err != nil {
				logger.Warn("anonymous semaphore name could not be unlinked", zap.String("name", name), zap.Error(err))
				return p, &Error{Kind: KindUnlinkFailed, Op: "unlink", Name: name, Err: err}
			}

			return p, nil
		}

		return nil, &Error{Kind: KindNameGenerationExhausted, Op: "create", Err: unix.EEXIST}
	}
}
