// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/provider"
	"github.com/xmidt-org/semsafe/xmetrics"
)

// Names for our metrics
const (
	ResourcesGauge   = "semaphore_resources"
	FailuresCounter  = "semaphore_failures"
	InitTotalCounter = "semaphore_init_total"
)

// labels
const (
	KindLabel    = "kind"
	OutcomeLabel = "outcome"
)

// owner kinds and init outcomes
const (
	UnnamedKind   = "unnamed"
	NamedKind     = "named"
	AnonymousKind = "anonymous"

	SuccessOutcome = "success"
	FailureOutcome = "failure"
	WarningOutcome = "warning"
)

// Metrics returns the metrics relevant to this package, suitable for xmetrics.Options.
func Metrics() []xmetrics.Metric {
	return []xmetrics.Metric{
		{
			Name: ResourcesGauge,
			Type: xmetrics.GaugeType,
			Help: "The net number of posts minus waits through instrumented semaphores",
		},
		{
			Name: FailuresCounter,
			Type: xmetrics.CounterType,
			Help: "The number of posts, waits and try-waits that returned an error through instrumented semaphores",
		},
		{
			Name:       InitTotalCounter,
			Type:       xmetrics.CounterType,
			Help:       "The number of semaphore initializations performed, by owner kind and outcome",
			LabelNames: []string{KindLabel, OutcomeLabel},
		},
	}
}

// Measures is the set of metrics used by semaphore owners and Instrument.
type Measures struct {
	Resources metrics.Gauge
	Failures  metrics.Counter
	Init      metrics.Counter
}

var discardMeasures = &Measures{
	Resources: discard.NewGauge(),
	Failures:  discard.NewCounter(),
	Init:      discard.NewCounter(),
}

// NewMeasures realizes the package metrics from a provider.  A nil provider yields measures
// that discard everything.
func NewMeasures(p provider.Provider) *Measures {
	if p == nil {
		return discardMeasures
	}

	return &Measures{
		Resources: p.NewGauge(ResourcesGauge),
		Failures:  p.NewCounter(FailuresCounter),
		Init:      p.NewCounter(InitTotalCounter),
	}
}

// InstrumentOptions returns the options that route Instrument's updates to these measures.
func (m *Measures) InstrumentOptions() []InstrumentOption {
	if m == nil {
		m = discardMeasures
	}

	return []InstrumentOption{
		WithResources(m.Resources),
		WithFailures(m.Failures),
	}
}

func (m *Measures) initialized(kind, outcome string) {
	m.Init.With(KindLabel, kind, OutcomeLabel, outcome).Add(1.0)
}
