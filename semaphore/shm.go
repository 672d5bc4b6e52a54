// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"unsafe"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

// slotAlign keeps every slot on its own cache line.
const slotAlign = 64

var errNoSlots = errors.New("a shared region needs at least one slot")

// SharedRegion is memory mapped with MAP_SHARED and divided into slots, each large enough for one
// unnamed semaphore.  The mapping lives outside the Go heap, so slot addresses never move.
type SharedRegion struct {
	data     []byte
	slotSize uintptr
	file     *os.File

	closeOnce sync.Once
	closeErr  error
}

func slotSize() uintptr {
	return (rawSize() + slotAlign - 1) &^ (slotAlign - 1)
}

// MapShared maps an anonymous shared region with n slots.  The region is visible to every
// goroutine in this process.  Use OpenSharedFile to reach other processes.
func MapShared(n int) (*SharedRegion, error) {
	if n < 1 {
		return nil, errNoSlots
	}

	size := slotSize()
	data, err := unix.Mmap(-1, 0, n*int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("unable to map %d semaphore slots: %w", n, err)
	}

	return &SharedRegion{data: data, slotSize: size}, nil
}

// OpenSharedFile maps the file at path, creating it and growing it to n slots as necessary.
// Every process mapping the same file sees the same slots.
func OpenSharedFile(path string, n int) (*SharedRegion, error) {
	if n < 1 {
		return nil, errNoSlots
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}

	size := slotSize()
	length := int64(n) * int64(size)
	fi, err := f.Stat()
	if err == nil && fi.Size() < length {
		err = f.Truncate(length)
	}

	if err != nil {
		return nil, multierr.Append(err, f.Close())
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, multierr.Append(
			fmt.Errorf("unable to map %s: %w", path, err),
			f.Close(),
		)
	}

	return &SharedRegion{data: data, slotSize: size, file: f}, nil
}

// Len is the number of slots in the region.
func (sr *SharedRegion) Len() int {
	return len(sr.data) / int(sr.slotSize)
}

// Slot returns the address of slot i, suitable for NewUnnamedAt.  It panics if i is out of range.
func (sr *SharedRegion) Slot(i int) unsafe.Pointer {
	if i < 0 || i >= sr.Len() {
		panic(fmt.Sprintf("semaphore slot %d out of range [0, %d)", i, sr.Len()))
	}

	return unsafe.Pointer(&sr.data[uintptr(i)*sr.slotSize])
}

// Close unmaps the region and closes its file, if any.  Every semaphore placed in the region must
// already be closed.
func (sr *SharedRegion) Close() error {
	sr.closeOnce.Do(func() {
		sr.closeErr = unix.Munmap(sr.data)
		sr.data = nil
		if sr.file != nil {
			sr.closeErr = multierr.Append(sr.closeErr, sr.file.Close())
		}
	})

	return sr.closeErr
}
