// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

//go:build unix && !darwin

package semaphore

// PrivateKind names the implementation behind Private.
const PrivateKind = UnnamedKind

// Private is the process-private semaphore of this platform.
type Private = Unnamed

// NewPrivate returns the process-private semaphore of this platform.
func NewPrivate(opts ...Option) *Private {
	return NewUnnamed(opts...)
}
