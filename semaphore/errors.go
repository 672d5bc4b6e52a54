// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"errors"
	"strings"
)

var (
	// ErrNotReady is returned when a reference is requested from an owner that has not
	// finished initialization.
	ErrNotReady = errors.New("the semaphore has not been initialized")

	// ErrClosed is returned when an owner has already been torn down.  Once closed, an owner
	// cannot be initialized again.
	ErrClosed = errors.New("the semaphore has been closed")

	// ErrInUse is returned by Close when references to the semaphore are still outstanding.
	// Nothing is torn down in that case.
	ErrInUse = errors.New("the semaphore still has outstanding references")

	// ErrReleased is returned by operations on a Ref that has been released.
	ErrReleased = errors.New("the semaphore reference has been released")

	// ErrInitializing is returned when another caller's initialization did not finish within
	// the configured spin limit, or when Close races with initialization.
	ErrInitializing = errors.New("the semaphore is being initialized")

	// ErrInvalidName indicates a name that does not follow the portable semaphore name syntax.
	ErrInvalidName = errors.New("invalid semaphore name")

	// ErrSharedUnsupported is returned when process sharing is requested from a semaphore kind
	// that can only be shared by name.
	ErrSharedUnsupported = errors.New("process-shared mode is not supported by this semaphore kind")

	// ErrUnsupported indicates an operation the platform does not provide.
	ErrUnsupported = errors.New("operation not supported on this platform")

	errTooManyRefs = errors.New("too many outstanding semaphore references")
)

// Kind classifies the failures reported by this package.
type Kind int

const (
	// KindUnknown is reported by KindOf for errors that did not come from this package.
	KindUnknown Kind = iota

	// KindInitializationFailed means the OS rejected the create or open, or the arguments were
	// rejected before any syscall was made.  The owner stays retryable.
	KindInitializationFailed

	// KindAlreadyInitialized is reported by the exclusive initializers when the caller did not
	// perform the initialization itself.
	KindAlreadyInitialized

	// KindOperationFailed means a post, wait, try-wait or teardown failed at the OS level.
	KindOperationFailed

	// KindNameGenerationExhausted means every generated anonymous name collided.
	KindNameGenerationExhausted

	// KindUnlinkFailed means a name could not be removed.  When it accompanies a Ref from
	// anonymous construction it is a warning: the semaphore is fully usable.
	KindUnlinkFailed
)

func (k Kind) String() string {
	switch k {
	case KindInitializationFailed:
		return "initialization failed"
	case KindAlreadyInitialized:
		return "already initialized"
	case KindOperationFailed:
		return "operation failed"
	case KindNameGenerationExhausted:
		return "name generation exhausted"
	case KindUnlinkFailed:
		return "unlink failed"
	default:
		return "unknown"
	}
}

// Error is the error type returned by semaphore operations.  Err carries the cause, usually
// a unix.Errno, so that errors.Is(err, unix.EEXIST) and friends work.
type Error struct {
	Kind Kind
	Op   string
	Name string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("semaphore: ")
	b.WriteString(e.Op)
	if len(e.Name) > 0 {
		b.WriteByte(' ')
		b.WriteString(e.Name)
	}

	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// IsWarning reports whether err is a warning-class error, i.e. one that accompanies an
// otherwise successful result.
func IsWarning(err error) bool {
	return KindOf(err) == KindUnlinkFailed
}

// wrap attaches a kind to a cause, leaving existing *Error values alone.
func wrap(kind Kind, op, name string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{Kind: kind, Op: op, Name: name, Err: err}
}
