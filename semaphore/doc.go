// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package semaphore wraps POSIX counting semaphores so that a handle is never used before it is
initialized, initialized twice, moved, or torn down while still in use.

Three owners are provided.  Unnamed holds a sem_init semaphore in memory the Go runtime never
moves.  Named holds a sem_open handle.  Anonymous creates a named semaphore under a generated
name and unlinks it immediately, which gives unnamed semantics on platforms without sem_init.
Private is whichever of Unnamed and Anonymous suits the platform.

Each owner moves through StateUninit, StateInitializing, StateReady and StateClosed using a single
atomic word.  Concurrent initializers never block on a lock: exactly one performs the system call
and the rest spin until it finishes.  Operations go through a *Ref, which counts against its owner
until released, and an owner refuses to Close while any Ref is outstanding.

	var s semaphore.Unnamed

	r, err := s.InitWith(false, 0)
	if err != nil {
		return err
	}

	go func() {
		r.Post()
	}()

	err = r.Wait()
	r.Release()
	s.Close()
*/
package semaphore
