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

// Package pipeline folds an ordered list of compiled operations over text.
package pipeline

import (
	"github.com/walteh/rxmap/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// 🔗 Pipeline is an ordered, immutable sequence of compiled operations.
// It holds no per-call state and may be shared by any number of goroutines.
type Pipeline struct {
	ops []operation.Operation
}

// 📊 Result contains the outcome of one Run
type Result struct {
	// Text is the output of the last operation
	Text string

	// Replacements is the total number of rewrites across all operations
	Replacements int

	// PerOperation holds the rewrite count of each operation, in order
	PerOperation []int

	// Modified reports whether Text differs from the input
	Modified bool
}

// 🏭 New builds a pipeline from already compiled operations
func New(ops ...operation.Operation) *Pipeline {
	owned := make([]operation.Operation, len(ops))
	copy(owned, ops)
	return &Pipeline{ops: owned}
}

// 🏗️ Compile compiles every spec in order. The first failure aborts the
// whole compilation and no pipeline is returned.
func Compile(specs []operation.Spec) (*Pipeline, error) {
	ops := make([]operation.Operation, 0, len(specs))
	for i, spec := range specs {
		op, err := spec.Compile()
		if err != nil {
			return nil, errors.Errorf("compiling operation %d (%s): %w", i, spec.Kind, err)
		}
		ops = append(ops, op)
	}
	return &Pipeline{ops: ops}, nil
}

// Len returns the number of operations
func (p *Pipeline) Len() int {
	return len(p.ops)
}

// Operations returns a copy of the operation list
func (p *Pipeline) Operations() []operation.Operation {
	out := make([]operation.Operation, len(p.ops))
	copy(out, p.ops)
	return out
}

// 🔄 Apply runs each operation on the output of the previous one
func (p *Pipeline) Apply(text string) string {
	for _, op := range p.ops {
		text = op.Apply(text)
	}
	return text
}

// 🔢 Run is Apply with rewrite accounting
func (p *Pipeline) Run(text string) Result {
	result := Result{
		Text:         text,
		PerOperation: make([]int, len(p.ops)),
	}

	for i, op := range p.ops {
		var n int
		result.Text, n = op.ApplyCount(result.Text)
		result.PerOperation[i] = n
		result.Replacements += n
	}

	result.Modified = result.Text != text
	return result
}
