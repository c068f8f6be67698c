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

// Package envelope reads and writes record streams for the command line
// host. It is not used by the stage itself.
package envelope

import (
	"io"
	"sort"
	"strings"

	"github.com/walteh/rxmap/pkg/record"
)

// 📥 Reader yields records until it returns io.EOF
type Reader interface {
	Read() (record.Record, error)
}

// 📤 Writer emits records. Flush must be called once writing is done.
type Writer interface {
	Write(rec record.Record) error
	Flush() error
}

// 🔌 Codec builds readers and writers for one stream format
type Codec interface {
	Name() string
	NewReader(r io.Reader) Reader
	NewWriter(w io.Writer) Writer
}

var (
	// 🗺️ codecs is a list of available codecs
	codecs []Codec
)

// 📝 Register registers a codec
func Register(c Codec) {
	codecs = append(codecs, c)
}

// 🎯 Get returns the codec registered under name
func Get(name string) Codec {
	for _, c := range codecs {
		if strings.EqualFold(c.Name(), name) {
			return c
		}
	}
	return nil
}

// Names lists the registered codec names
func Names() []string {
	names := make([]string, 0, len(codecs))
	for _, c := range codecs {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	return names
}
