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

package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_WithValue(t *testing.T) {
	keyed := New([]byte("k1"), []byte(`{"a":1}`))
	out := keyed.WithValue([]byte(`{"a":2}`))
	assert.True(t, out.HasKey())
	assert.Equal(t, []byte("k1"), out.Key)
	assert.Equal(t, []byte(`{"a":2}`), out.Value)

	unkeyed := New(nil, []byte(`{}`))
	assert.False(t, unkeyed.WithValue([]byte(`[]`)).HasKey())

	empty := New([]byte{}, []byte(`{}`))
	assert.True(t, empty.HasKey(), "an empty key is still a key")
}
