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

package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.InitFailed()
	m.InitSucceeded(2)
	m.RecordMapped(3)
	m.RecordMapped(0)
	m.RecordFailed(OutcomeMalformed)
	m.RecordSkipped()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.inits.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inits.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.records.WithLabelValues(OutcomeMapped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.records.WithLabelValues(OutcomeMalformed)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.replacements))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped))

	_, err = New(reg)
	assert.Error(t, err, "registering twice should fail")
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.InitSucceeded(1)
		m.InitFailed()
		m.RecordMapped(1)
		m.RecordFailed(OutcomeNonText)
		m.RecordSkipped()
	})
}
