// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"errors"
	"runtime"
	"strconv"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Ref is a counted reference to an initialized semaphore.  While a Ref is unreleased its owner
// refuses to Close, so the handle it designates stays valid.  A Ref may be shared between
// goroutines.  Release may be called while other goroutines are still inside Post, Wait or
// TryWait on the same Ref: the owner stays in use until the last of those calls returns.
type Ref struct {
	c *core
	p unsafe.Pointer

	// use holds refReleased once Release has been called, plus the number of calls in flight.
	use atomic.Uint64
}

const refReleased uint64 = 1 << 63

var _ Interface = (*Ref)(nil)

func newRef(c *core, p unsafe.Pointer) *Ref {
	return &Ref{c: c, p: p}
}

// enter counts a call in flight, unless the reference has been released.
func (r *Ref) enter() bool {
	for {
		u := r.use.Load()
		if u&refReleased != 0 {
			return false
		}

		if r.use.CompareAndSwap(u, u+1) {
			return true
		}
	}
}

// exit ends a call in flight.  The last call to leave a released Ref gives up its count on the
// owner.  Until then neither the Ref nor its owner is unreachable, so no finalizer can tear
// down a handle that a system call is still using.
func (r *Ref) exit() {
	if r.use.Add(^uint64(0)) == refReleased {
		r.c.state.release()
	}

	runtime.KeepAlive(r)
}

// Post increments the semaphore, waking one waiter if any are blocked.  Post does not
// allocate on success and takes no lock.
func (r *Ref) Post() error {
	if !r.enter() {
		return ErrReleased
	}

	err := rawPost(r.p)
	r.exit()

	if err != nil {
		return wrap(KindOperationFailed, "post", "", err)
	}

	return nil
}

// Wait blocks until the semaphore can be decremented.  Interruptions by signals are retried.
func (r *Ref) Wait() error {
	if !r.enter() {
		return ErrReleased
	}

	var err error
	for {
		if err = rawWait(r.p); err != unix.EINTR {
			break
		}
	}

	r.exit()

	if err != nil {
		return wrap(KindOperationFailed, "wait", "", err)
	}

	return nil
}

// WaitRaw is like Wait, but an interruption by a signal is returned as an error
// wrapping unix.EINTR.
func (r *Ref) WaitRaw() error {
	if !r.enter() {
		return ErrReleased
	}

	err := rawWait(r.p)
	r.exit()

	if err != nil {
		return wrap(KindOperationFailed, "wait", "", err)
	}

	return nil
}

// TryWait decrements the semaphore if that can be done without blocking.  It returns false,
// with no error, when the count is zero.
func (r *Ref) TryWait() (bool, error) {
	if !r.enter() {
		return false, ErrReleased
	}

	var err error
	for {
		if err = rawTryWait(r.p); err != unix.EINTR {
			break
		}
	}

	r.exit()

	switch {
	case err == nil:
		return true, nil

	case err == unix.EAGAIN:
		return false, nil

	default:
		return false, wrap(KindOperationFailed, "trywait", "", err)
	}
}

// Value returns the current count.  Platforms without sem_getvalue return ErrUnsupported.
func (r *Ref) Value() (int, error) {
	if !r.enter() {
		return 0, ErrReleased
	}

	v, err := rawValue(r.p)
	r.exit()

	switch {
	case err == nil:
		return v, nil

	case err == unix.ENOSYS || errors.Is(err, ErrUnsupported):
		return 0, ErrUnsupported

	default:
		return 0, wrap(KindOperationFailed, "value", "", err)
	}
}

// Equal reports whether both references designate the same semaphore.
func (r *Ref) Equal(other *Ref) bool {
	return r != nil && other != nil && r.p == other.p
}

func (r *Ref) String() string {
	if v, err := r.Value(); err == nil {
		return "<Semaphore value:" + strconv.Itoa(v) + ">"
	}

	return "<Semaphore>"
}

// Clone issues an independent reference to the same semaphore.
func (r *Ref) Clone() (*Ref, error) {
	if !r.enter() {
		return nil, ErrReleased
	}

	defer r.exit()
	return r.c.ref()
}

// Release gives up this reference.  Releasing more than once has no further effect.  If calls
// are still in flight on this Ref, the owner's count is given up when the last one returns.
func (r *Ref) Release() {
	for {
		u := r.use.Load()
		if u&refReleased != 0 {
			return
		}

		if r.use.CompareAndSwap(u, u|refReleased) {
			if u == 0 {
				r.c.state.release()
			}

			return
		}
	}
}
