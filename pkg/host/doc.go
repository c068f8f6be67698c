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

/*
Package host drives a stage over a record stream.

The runner reads records in batches, maps each batch concurrently on a
bounded set of workers and writes the results back in input order:

	Reader ──▶ batch ──▶ [ worker × N ] ──▶ reorder ──▶ Writer
	                        stage.Map

Record errors (payloads that are not text or do not rewrite to valid
JSON) either stop the run or drop the record, depending on the Policy.
Every other error stops the run.
*/
package host
