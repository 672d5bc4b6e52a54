// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

// NonNamed is a semaphore that no other process can find by name.  Unnamed and Anonymous both
// implement it, and Private selects whichever the platform supports natively.
type NonNamed interface {
	Init() (*Ref, error)
	InitWith(shared bool, count uint32) (*Ref, error)
	InitExclusive(shared bool, count uint32) (*Ref, error)
	Ref() (*Ref, error)
	State() State
	Close() error
	String() string
}
