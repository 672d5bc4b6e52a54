// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"math"
	"sync/atomic"
)

// State is the lifecycle state of a semaphore owner.
//
//	StateUninit       → StateInitializing   [the single winning initializer]
//	StateInitializing → StateReady          [setup syscall succeeded]
//	StateInitializing → StateUninit         [setup syscall failed; retry is allowed]
//	StateReady        → StateClosed         [Close with no outstanding references]
type State uint8

const (
	StateUninit State = iota
	StateInitializing
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninit:
		return "uninit"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "invalid"
	}
}

// The state word packs the lifecycle state, a failure epoch and the reference count so that
// issuing a reference and closing can never interleave.
const (
	stateMask  uint64 = 0xff
	epochShift        = 8
	epochMax          = 0xffffff
	epochMask  uint64 = epochMax << epochShift
	refShift          = 32
	refUnit    uint64 = 1 << refShift
)

func pack(s State, epoch, refs uint32) uint64 {
	return uint64(s) | (uint64(epoch)<<epochShift)&epochMask | uint64(refs)<<refShift
}

func unpack(v uint64) (s State, epoch, refs uint32) {
	return State(v & stateMask), uint32((v & epochMask) >> epochShift), uint32(v >> refShift)
}

// word is the atomic state of an owner.  It must not be copied after first use.
type word struct {
	v atomic.Uint64
}

func (w *word) load() (State, uint32, uint32) {
	return unpack(w.v.Load())
}

// begin attempts Uninit → Initializing.  The returned epoch identifies the attempt, and when
// the attempt is lost the returned state is the one that was observed instead.
func (w *word) begin() (State, uint32, bool) {
	for {
		v := w.v.Load()
		s, e, _ := unpack(v)
		if s != StateUninit {
			return s, e, false
		}

		if w.v.CompareAndSwap(v, pack(StateInitializing, e, 0)) {
			return StateInitializing, e, true
		}
	}
}

// commit moves the winner's attempt to Ready, counting the winner's own reference.  Only the
// winner writes the word while it is Initializing, so a plain store is enough.
func (w *word) commit(epoch uint32) {
	w.v.Store(pack(StateReady, epoch, 1))
}

// abort returns the winner's attempt to Uninit and advances the epoch.
func (w *word) abort(epoch uint32) {
	w.v.Store(pack(StateUninit, (epoch+1)&epochMax, 0))
}

// acquire counts a new reference, but only while Ready.
func (w *word) acquire() (State, error) {
	for {
		v := w.v.Load()
		s, _, refs := unpack(v)
		if s != StateReady {
			return s, nil
		}

		if refs == math.MaxUint32 {
			return s, errTooManyRefs
		}

		if w.v.CompareAndSwap(v, v+refUnit) {
			return s, nil
		}
	}
}

// release drops a reference counted by acquire.
func (w *word) release() {
	w.v.Add(^(refUnit - 1))
}

// close attempts Ready → Closed, which only succeeds with zero outstanding references.
func (w *word) close() (State, uint32, bool) {
	for {
		v := w.v.Load()
		s, e, refs := unpack(v)
		if s != StateReady || refs != 0 {
			return s, refs, false
		}

		if w.v.CompareAndSwap(v, pack(StateClosed, e, 0)) {
			return s, 0, true
		}
	}
}

// forceClose moves a Ready word to Closed regardless of the reference count.  It is only
// used once the owner is unreachable, which proves no reference can still be used.
func (w *word) forceClose() (uint32, bool) {
	for {
		v := w.v.Load()
		s, e, refs := unpack(v)
		if s != StateReady {
			return refs, false
		}

		if w.v.CompareAndSwap(v, pack(StateClosed, e, 0)) {
			return refs, true
		}
	}
}
