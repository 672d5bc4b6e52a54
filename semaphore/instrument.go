// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/semsafe/xmetrics"
)

// Interface is the operation set shared by every semaphore reference.  *Ref implements it.
type Interface interface {
	Post() error
	Wait() error
	TryWait() (bool, error)
}

// InstrumentOption represents a configurable option for instrumenting a semaphore
type InstrumentOption func(*instrumentedSemaphore)

// WithResources establishes a metric that tracks the resource count of the semaphore.
// If a nil adder is supplied, resource counts are discarded.
func WithResources(a xmetrics.Adder) InstrumentOption {
	return func(i *instrumentedSemaphore) {
		if a != nil {
			i.resources = a
		} else {
			i.resources = discard.NewCounter()
		}
	}
}

// WithFailures establishes a metric that tracks how many waits, posts or try-waits returned an error.
// A try-wait that finds no resource is not a failure.  If a nil adder is supplied, failure counts are discarded.
func WithFailures(a xmetrics.Adder) InstrumentOption {
	return func(i *instrumentedSemaphore) {
		if a != nil {
			i.failures = a
		} else {
			i.failures = discard.NewCounter()
		}
	}
}

// Instrument decorates an existing semaphore with a set of options.
func Instrument(s Interface, o ...InstrumentOption) Interface {
	if s == nil {
		panic("A delegate semaphore is required")
	}

	is := &instrumentedSemaphore{
		Interface: s,
		resources: discard.NewCounter(),
		failures:  discard.NewCounter(),
	}

	for _, f := range o {
		f(is)
	}

	return is
}

type instrumentedSemaphore struct {
	Interface
	resources xmetrics.Adder
	failures  xmetrics.Adder
}

func (is *instrumentedSemaphore) Post() (err error) {
	err = is.Interface.Post()
	if err != nil {
		is.failures.Add(1.0)
	} else {
		is.resources.Add(1.0)
	}

	return
}

func (is *instrumentedSemaphore) Wait() (err error) {
	err = is.Interface.Wait()
	if err != nil {
		is.failures.Add(1.0)
	} else {
		is.resources.Add(-1.0)
	}

	return
}

func (is *instrumentedSemaphore) TryWait() (acquired bool, err error) {
	acquired, err = is.Interface.TryWait()
	switch {
	case err != nil:
		is.failures.Add(1.0)

	case acquired:
		is.resources.Add(-1.0)
	}

	return
}
