// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"runtime"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"
)

// attempt describes one call into the initialization protocol.
type attempt struct {
	kind      string
	op        string
	name      string
	exclusive bool

	// setup performs the one-time create or open.  A warning-class error is returned
	// alongside a usable handle.
	setup func() (unsafe.Pointer, error)
}

// core is the state machine shared by every owner kind.
type core struct {
	state word

	// raw is written only by the initialization winner, before the Ready store.
	raw unsafe.Pointer

	// lastErr is written by a failing winner before the Uninit store, so that callers who
	// raced that attempt can report the same failure.
	lastErr atomic.Pointer[Error]

	opts *options
}

func (c *core) logger() *zap.Logger {
	return c.opts.logger()
}

func (c *core) initialize(a attempt) (*Ref, error) {
	for {
		s, epoch, won := c.state.begin()
		switch {
		case won:
			return c.setup(a, epoch)

		case s == StateReady:
			if a.exclusive {
				return nil, &Error{Kind: KindAlreadyInitialized, Op: a.op, Name: a.name}
			}

			return c.ref()

		case s == StateClosed:
			return nil, ErrClosed

		case s == StateInitializing:
			if a.exclusive {
				return nil, &Error{Kind: KindAlreadyInitialized, Op: a.op, Name: a.name}
			}

			return c.await(epoch)
		}
	}
}

func (c *core) setup(a attempt, epoch uint32) (*Ref, error) {
	p, err := a.setup()
	if err != nil && !IsWarning(err) {
		e := wrap(KindInitializationFailed, a.op, a.name, err)
		c.lastErr.Store(e)
		c.state.abort(epoch)

		c.opts.metrics().initialized(a.kind, FailureOutcome)
		c.logger().Debug(
			"semaphore initialization failed",
			zap.String("kind", a.kind),
			zap.String("op", a.op),
			zap.String("name", a.name),
			zap.Error(err),
		)

		return nil, e
	}

	c.raw = p
	c.state.commit(epoch)

	outcome := SuccessOutcome
	if err != nil {
		outcome = WarningOutcome
	}

	c.opts.metrics().initialized(a.kind, outcome)
	c.logger().Debug(
		"semaphore initialized",
		zap.String("kind", a.kind),
		zap.String("op", a.op),
		zap.String("name", a.name),
	)

	return newRef(c, p), err
}

// await spins until the attempt identified by epoch has finished.
func (c *core) await(epoch uint32) (*Ref, error) {
	limit := c.opts.spins()
	for spins := 0; ; spins++ {
		s, e, _ := c.state.load()
		switch {
		case s == StateReady:
			return c.ref()

		case s == StateClosed:
			return nil, ErrClosed

		case e != epoch:
			if last := c.lastErr.Load(); last != nil {
				return nil, last
			}

			return nil, ErrNotReady
		}

		if limit > 0 && spins >= limit {
			return nil, ErrInitializing
		}

		runtime.Gosched()
	}
}

// ref issues a counted reference if the owner is Ready.
func (c *core) ref() (*Ref, error) {
	s, err := c.state.acquire()
	switch {
	case err != nil:
		return nil, err

	case s == StateReady:
		return newRef(c, c.raw), nil

	case s == StateClosed:
		return nil, ErrClosed

	default:
		return nil, ErrNotReady
	}
}

func (c *core) close(kind string, teardown func(unsafe.Pointer) error) error {
	s, refs, ok := c.state.close()
	if !ok {
		switch s {
		case StateUninit:
			return nil

		case StateInitializing:
			return ErrInitializing

		case StateClosed:
			return ErrClosed

		default:
			c.logger().Debug(
				"semaphore close refused",
				zap.String("kind", kind),
				zap.Uint32("refs", refs),
			)

			return ErrInUse
		}
	}

	if err := teardown(c.raw); err != nil {
		c.logger().Error("semaphore teardown failed", zap.String("kind", kind), zap.Error(err))
		return wrap(KindOperationFailed, "close", "", err)
	}

	c.logger().Debug("semaphore closed", zap.String("kind", kind))
	return nil
}

// finalize tears down an owner that became unreachable without being closed.
func (c *core) finalize(kind string, teardown func(unsafe.Pointer) error) {
	refs, ok := c.state.forceClose()
	if !ok {
		return
	}

	c.logger().Warn(
		"semaphore reclaimed without Close",
		zap.String("kind", kind),
		zap.Uint32("refs", refs),
	)

	if err := teardown(c.raw); err != nil {
		c.logger().Error("semaphore teardown failed", zap.String("kind", kind), zap.Error(err))
	}
}

func (c *core) State() State {
	s, _, _ := c.state.load()
	return s
}

// String renders the owner the same way as its references.  A temporary reference keeps
// the handle alive while its value is read.
func (c *core) String() string {
	r, err := c.ref()
	if err != nil {
		return "<Semaphore>"
	}

	defer r.Release()
	return r.String()
}
