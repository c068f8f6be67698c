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

// Package record holds the unit of work exchanged with the host.
package record

// 📦 Record is one keyed payload. A nil Key means the record has no key,
// which is different from an empty key.
type Record struct {
	Key   []byte
	Value []byte
}

// New builds a record
func New(key, value []byte) Record {
	return Record{Key: key, Value: value}
}

// HasKey reports whether the record carries a key
func (r Record) HasKey() bool {
	return r.Key != nil
}

// WithValue returns a record with the same key and a new value
func (r Record) WithValue(value []byte) Record {
	return Record{Key: r.Key, Value: value}
}
