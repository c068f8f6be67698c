// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metric exposes prometheus counters for stage activity. A nil
// *Metrics is valid and records nothing.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/tozd/go/errors"
)

const namespace = "rxmap"

// Record outcomes used as the "outcome" label
const (
	OutcomeMapped        = "mapped"
	OutcomeNonText       = "non_text_payload"
	OutcomeMalformed     = "malformed_result"
	OutcomeUninitialized = "uninitialized"
)

// 📊 Metrics holds the stage counters
type Metrics struct {
	records      *prometheus.CounterVec
	replacements prometheus.Counter
	skipped      prometheus.Counter
	inits        *prometheus.CounterVec
	operations   prometheus.Gauge
}

// 🏭 New creates the counters and registers them with reg
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records handled by the stage, by outcome.",
		}, []string{"outcome"}),
		replacements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replacements_total",
			Help:      "Pattern matches rewritten across all records.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Failed records the host dropped instead of halting. Each is also counted under its failure outcome.",
		}),
		inits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "init_total",
			Help:      "Stage initialization attempts, by result.",
		}, []string{"result"}),
		operations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_operations",
			Help:      "Number of operations in the installed pipeline.",
		}),
	}

	for _, c := range []prometheus.Collector{m.records, m.replacements, m.skipped, m.inits, m.operations} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Errorf("registering collector: %w", err)
		}
	}

	return m, nil
}

// InitSucceeded records a successful initialization
func (m *Metrics) InitSucceeded(operations int) {
	if m == nil {
		return
	}
	m.inits.WithLabelValues("ok").Inc()
	m.operations.Set(float64(operations))
}

// InitFailed records a failed initialization
func (m *Metrics) InitFailed() {
	if m == nil {
		return
	}
	m.inits.WithLabelValues("error").Inc()
}

// RecordMapped records a transformed record and its rewrite count
func (m *Metrics) RecordMapped(replacements int) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(OutcomeMapped).Inc()
	m.replacements.Add(float64(replacements))
}

// RecordFailed records a record that produced no output
func (m *Metrics) RecordFailed(outcome string) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(outcome).Inc()
}

// RecordSkipped records a failed record that was dropped by policy
func (m *Metrics) RecordSkipped() {
	if m == nil {
		return
	}
	m.skipped.Inc()
}
