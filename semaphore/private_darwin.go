// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

// PrivateKind names the implementation behind Private.  Darwin does not implement sem_init.
const PrivateKind = AnonymousKind

// Private is the process-private semaphore of this platform.
type Private = Anonymous

// NewPrivate returns the process-private semaphore of this platform.
func NewPrivate(opts ...Option) *Private {
	return NewAnonymous(opts...)
}
