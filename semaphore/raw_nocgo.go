// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

//go:build unix && !cgo

package semaphore

import "unsafe"

// Without cgo there is no way to reach the libc semaphore functions.  Every raw
// operation fails with ErrUnsupported, which surfaces as an initialization failure.

func rawSize() uintptr {
	return 64
}

func rawAlloc() (unsafe.Pointer, error) {
	return nil, ErrUnsupported
}

func rawFree(unsafe.Pointer) {}

func rawInit(unsafe.Pointer, bool, uint32) error {
	return ErrUnsupported
}

func rawDestroy(unsafe.Pointer) error {
	return ErrUnsupported
}

func rawOpen(string, int, uint32, uint32) (unsafe.Pointer, error) {
	return nil, ErrUnsupported
}

func rawClose(unsafe.Pointer) error {
	return ErrUnsupported
}

func rawUnlink(string) error {
	return ErrUnsupported
}

func rawPost(unsafe.Pointer) error {
	return ErrUnsupported
}

func rawWait(unsafe.Pointer) error {
	return ErrUnsupported
}

func rawTryWait(unsafe.Pointer) error {
	return ErrUnsupported
}

func rawValue(unsafe.Pointer) (int, error) {
	return 0, ErrUnsupported
}
