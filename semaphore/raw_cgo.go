// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

//go:build unix && cgo

package semaphore

/*
#include <errno.h>
#include <fcntl.h>
#include <semaphore.h>
#include <stdlib.h>

// sem_open is variadic, which cgo cannot call directly.
static sem_t *semsafe_open(const char *name, int oflag, unsigned int mode, unsigned int value) {
	sem_t *s;
	if (oflag & O_CREAT) {
		s = sem_open(name, oflag, (mode_t)mode, value);
	} else {
		s = sem_open(name, oflag);
	}
	if (s == SEM_FAILED) {
		return NULL;
	}
	return s;
}

static int semsafe_init(sem_t *s, int pshared, unsigned int value) {
	return sem_init(s, pshared, value);
}
*/
import "C"

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// the pshared argument values of sem_init
const (
	singleProcessPrivate = 0
	multiProcessShared   = 1
)

// errnoOf turns the error from a two-valued cgo call into an errno.  The call's
// return value must already have indicated failure.
func errnoOf(err error) error {
	if errno, ok := err.(unix.Errno); ok && errno != 0 {
		return errno
	}

	return unix.EINVAL
}

func rawSize() uintptr {
	return uintptr(C.sizeof_sem_t)
}

func rawAlloc() (unsafe.Pointer, error) {
	p := C.calloc(1, C.sizeof_sem_t)
	if p == nil {
		return nil, unix.ENOMEM
	}

	return p, nil
}

func rawFree(p unsafe.Pointer) {
	C.free(p)
}

func rawInit(p unsafe.Pointer, shared bool, count uint32) error {
	pshared := C.int(singleProcessPrivate)
	if shared {
		pshared = multiProcessShared
	}

	if r, err := C.semsafe_init((*C.sem_t)(p), pshared, C.uint(count)); r != 0 {
		return errnoOf(err)
	}

	return nil
}

func rawDestroy(p unsafe.Pointer) error {
	if r, err := C.sem_destroy((*C.sem_t)(p)); r != 0 {
		return errnoOf(err)
	}

	return nil
}

func rawOpen(name string, oflag int, perm uint32, count uint32) (unsafe.Pointer, error) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	s, err := C.semsafe_open(cName, C.int(oflag), C.uint(perm), C.uint(count))
	if s == nil {
		return nil, errnoOf(err)
	}

	return unsafe.Pointer(s), nil
}

func rawClose(p unsafe.Pointer) error {
	if r, err := C.sem_close((*C.sem_t)(p)); r != 0 {
		return errnoOf(err)
	}

	return nil
}

func rawUnlink(name string) error {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	if r, err := C.sem_unlink(cName); r != 0 {
		return errnoOf(err)
	}

	return nil
}

func rawPost(p unsafe.Pointer) error {
	if r, err := C.sem_post((*C.sem_t)(p)); r != 0 {
		return errnoOf(err)
	}

	return nil
}

func rawWait(p unsafe.Pointer) error {
	if r, err := C.sem_wait((*C.sem_t)(p)); r != 0 {
		return errnoOf(err)
	}

	return nil
}

func rawTryWait(p unsafe.Pointer) error {
	if r, err := C.sem_trywait((*C.sem_t)(p)); r != 0 {
		return errnoOf(err)
	}

	return nil
}

func rawValue(p unsafe.Pointer) (int, error) {
	var v C.int
	if r, err := C.sem_getvalue((*C.sem_t)(p), &v); r != 0 {
		return 0, errnoOf(err)
	}

	return int(v), nil
}
