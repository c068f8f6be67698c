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

package stage

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rxmap/pkg/config"
	"github.com/walteh/rxmap/pkg/integrity"
	"github.com/walteh/rxmap/pkg/metric"
	"github.com/walteh/rxmap/pkg/operation"
	"github.com/walteh/rxmap/pkg/pipeline"
	"github.com/walteh/rxmap/pkg/record"
)

const maskSpec = `[
	{"type": "replace", "regex": "\\d{3}-\\d{2}-\\d{4}", "with": "***-**-****"},
	{"type": "replace", "regex": "(?P<first>\"address\":\\s+\")([\\w\\d\\s]+),", "with": "${first}..."}
]`

func readyStage(t *testing.T, spec string) *Stage {
	t.Helper()
	s := New(Options{})
	require.NoError(t, s.Init(context.Background(), config.Params{config.ParamSpec: spec}))
	return s
}

func TestStage_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := New(Options{})
	assert.Equal(t, Uninitialized, s.State())

	_, err := s.Map(ctx, record.New(nil, []byte(`{}`)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUninitializedPipeline)
	assert.True(t, IsSequencingError(err))
	assert.False(t, IsRecordError(err), "uninitialized must not look like a bad record")

	_, err = s.Pipeline()
	assert.ErrorIs(t, err, ErrUninitializedPipeline)

	require.NoError(t, s.Init(ctx, config.Params{config.ParamSpec: maskSpec}))
	assert.Equal(t, Ready, s.State())

	p, err := s.Pipeline()
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())

	err = s.Init(ctx, config.Params{config.ParamSpec: `[]`})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.True(t, IsSequencingError(err))

	p2, err := s.Pipeline()
	require.NoError(t, err)
	assert.Same(t, p, p2, "a rejected init must not replace the pipeline")
}

func TestStage_InitFailures(t *testing.T) {
	tests := []struct {
		name   string
		params config.Params
		wantIs error
	}{
		{
			name:   "missing_parameter",
			params: config.Params{},
			wantIs: config.ErrMissingConfiguration,
		},
		{
			name:   "malformed_document",
			params: config.Params{config.ParamSpec: `[{`},
			wantIs: config.ErrInvalidConfiguration,
		},
		{
			name:   "unknown_kind",
			params: config.Params{config.ParamSpec: `[{"type": "explode"}]`},
			wantIs: config.ErrInvalidConfiguration,
		},
		{
			name:   "invalid_pattern",
			params: config.Params{config.ParamSpec: `[{"type": "replace", "regex": "a", "with": "b"}, {"type": "replace", "regex": "(a", "with": "b"}]`},
			wantIs: operation.ErrInvalidPattern,
		},
		{
			name:   "invalid_template",
			params: config.Params{config.ParamSpec: `[{"type": "replace", "regex": "(a)", "with": "$2"}]`},
			wantIs: operation.ErrInvalidTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := New(Options{})

			err := s.Init(ctx, tt.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)
			assert.True(t, IsConfigurationError(err))
			assert.False(t, IsRecordError(err))
			assert.Equal(t, Uninitialized, s.State(), "failed init leaves the stage uninitialized")

			_, err = s.Map(ctx, record.New(nil, []byte(`{}`)))
			assert.ErrorIs(t, err, ErrUninitializedPipeline)

			require.NoError(t, s.Init(ctx, config.Params{config.ParamSpec: `[]`}), "a later valid init may still succeed")
			assert.Equal(t, Ready, s.State())
		})
	}
}

func TestStage_Map(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		in        record.Record
		wantValue string
		wantIs    error
	}{
		{
			name:      "masks_and_canonicalizes",
			spec:      maskSpec,
			in:        record.New([]byte("student-1"), []byte(`{"ssn": "123-45-6789", "address": "285 LA PALA DR APT 2343, SAN JOSE CA 95127"}`)),
			wantValue: `{"address":"... SAN JOSE CA 95127","ssn":"***-**-****"}`,
		},
		{
			name:      "literal_scalar",
			spec:      maskSpec,
			in:        record.New(nil, []byte(`"123-45-6789"`)),
			wantValue: `"***-**-****"`,
		},
		{
			name:      "empty_pipeline_only_canonicalizes",
			spec:      `[]`,
			in:        record.New(nil, []byte("{ \"b\": 1,\n \"a\": 2 }")),
			wantValue: `{"a":2,"b":1}`,
		},
		{
			name:   "non_utf8",
			spec:   maskSpec,
			in:     record.New(nil, []byte{'{', '"', 0xff, '"', '}'}),
			wantIs: ErrNonTextPayload,
		},
		{
			name:   "replacement_breaks_quoting",
			spec:   `[{"type": "replace", "regex": "\"ssn\": \"", "with": "\"ssn\": "}]`,
			in:     record.New(nil, []byte(`{"ssn": "123-45-6789"}`)),
			wantIs: integrity.ErrMalformedResultPayload,
		},
		{
			name:   "input_not_json",
			spec:   maskSpec,
			in:     record.New(nil, []byte(`Alice, ssn 123-45-6789`)),
			wantIs: integrity.ErrMalformedResultPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := readyStage(t, tt.spec)

			out, err := s.Map(context.Background(), tt.in)
			if tt.wantIs != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantIs)
				assert.True(t, IsRecordError(err))
				assert.False(t, IsConfigurationError(err))
				assert.Nil(t, out.Value, "no partial output")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.in.Key, out.Key)
			assert.Equal(t, tt.in.HasKey(), out.HasKey())
			assert.Equal(t, tt.wantValue, string(out.Value))
		})
	}
}

func TestTransform(t *testing.T) {
	p, err := pipeline.Compile(nil)
	require.NoError(t, err)

	_, _, err = Transform(p, []byte{'a', 0xc3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonTextPayload)

	out, result, err := Transform(p, []byte(`[1, 2]`))
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(out))
	assert.False(t, result.Modified)
}

func TestStage_Install(t *testing.T) {
	ctx := context.Background()
	s := New(Options{})

	assert.Error(t, s.Install(ctx, nil))
	assert.Equal(t, Uninitialized, s.State())

	require.NoError(t, s.Install(ctx, pipeline.New()))
	assert.ErrorIs(t, s.Install(ctx, pipeline.New()), ErrAlreadyInitialized)
}

func TestStage_ConcurrentMap(t *testing.T) {
	s := readyStage(t, maskSpec)
	in := record.New([]byte("k"), []byte(`{"ssn": "123-45-6789"}`))

	var wg sync.WaitGroup
	outs := make([]string, 64)
	errs := make([]error, 64)
	for i := range outs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := s.Map(context.Background(), in)
			outs[i], errs[i] = string(out.Value), err
		}(i)
	}
	wg.Wait()

	for i := range outs {
		require.NoError(t, errs[i])
		assert.Equal(t, `{"ssn":"***-**-****"}`, outs[i])
	}
}

func TestStage_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metric.New(reg)
	require.NoError(t, err)

	ctx := context.Background()
	s := New(Options{Metrics: m})

	_, _ = s.Map(ctx, record.New(nil, []byte(`{}`)))
	require.Error(t, s.Init(ctx, config.Params{}))
	require.NoError(t, s.Init(ctx, config.Params{config.ParamSpec: maskSpec}))

	_, err = s.Map(ctx, record.New(nil, []byte(`{"a": "123-45-6789", "b": "987-65-4321"}`)))
	require.NoError(t, err)
	_, err = s.Map(ctx, record.New(nil, []byte(`nope`)))
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "rxmap_records_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "one series per outcome seen")

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "rxmap_replacements_total" {
			assert.Equal(t, 2.0, f.GetMetric()[0].GetCounter().GetValue())
		}
	}
}

func TestStage_MapResult(t *testing.T) {
	s := readyStage(t, maskSpec)

	out, result, err := s.MapResult(context.Background(), record.New([]byte("k"), []byte(`{"ssn": "123-45-6789", "alt": "987-65-4321"}`)))
	require.NoError(t, err)
	assert.Equal(t, `{"alt":"***-**-****","ssn":"***-**-****"}`, string(out.Value))
	assert.Equal(t, []byte("k"), out.Key)
	assert.Equal(t, 2, result.Replacements)
	assert.Equal(t, []int{2, 0}, result.PerOperation)
	assert.True(t, result.Modified)
}
