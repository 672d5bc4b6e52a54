// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"os"

	"github.com/xmidt-org/semsafe/semname"
	"go.uber.org/zap"
)

const (
	// DefaultAttempts is the number of names anonymous construction tries before giving up.
	DefaultAttempts = 10

	// DefaultPerm is the permission used for anonymous semaphores.
	DefaultPerm os.FileMode = 0600
)

// Option configures a semaphore owner.
type Option func(*options)

type options struct {
	log       *zap.Logger
	measures  *Measures
	spinLimit int
	generator *semname.Generator
	attempts  int
	perm      os.FileMode
}

func newOptions(o []Option) *options {
	opts := new(options)
	for _, f := range o {
		f(opts)
	}

	return opts
}

// WithLogger sets the logger used for lifecycle events.  A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithMeasures sets the metrics an owner reports initialization outcomes to.
func WithMeasures(m *Measures) Option {
	return func(o *options) {
		o.measures = m
	}
}

// WithSpinLimit bounds how many times a caller that lost the initialization race yields
// before giving up with ErrInitializing.  Zero or negative means no bound.
func WithSpinLimit(n int) Option {
	return func(o *options) {
		o.spinLimit = n
	}
}

// WithGenerator sets the name generator used by anonymous construction.
func WithGenerator(g semname.Generator) Option {
	return func(o *options) {
		o.generator = &g
	}
}

// WithAttempts sets how many generated names anonymous construction tries.
func WithAttempts(n int) Option {
	return func(o *options) {
		o.attempts = n
	}
}

// WithPerm sets the permission bits anonymous semaphores are created with.
func WithPerm(p os.FileMode) Option {
	return func(o *options) {
		o.perm = p
	}
}

func (o *options) logger() *zap.Logger {
	if o != nil && o.log != nil {
		return o.log
	}

	return zap.NewNop()
}

func (o *options) metrics() *Measures {
	if o != nil && o.measures != nil {
		return o.measures
	}

	return discardMeasures
}

func (o *options) spins() int {
	if o != nil && o.spinLimit > 0 {
		return o.spinLimit
	}

	return 0
}

func (o *options) names() semname.Generator {
	if o != nil && o.generator != nil {
		return *o.generator
	}

	return semname.Generator{}
}

func (o *options) tries() int {
	if o != nil && o.attempts > 0 {
		return o.attempts
	}

	return DefaultAttempts
}

func (o *options) mode() os.FileMode {
	if o != nil && o.perm != 0 {
		return o.perm
	}

	return DefaultPerm
}
