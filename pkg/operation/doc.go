/*
Package operation defines the declarative and compiled forms of a single
text-rewrite step.

	+-------------+        +-------------+
	|    Spec     | -----> |  Operation  |
	| (declared)  | Compile| (compiled)  |
	+-------------+        +-------------+

🎯 Purpose:
- Models an operation as a kind discriminator plus kind-specific params
- Compiles patterns exactly once, rejecting bad patterns and templates
- Exposes compiled operations through one capability: Apply(text) text

🔄 Flow:
1. A config parser hands raw operation objects to Decode
2. Decode looks up the registered kind by its "type" field
3. Spec.Compile produces an immutable Operation
4. The pipeline package folds Operations over each record payload

⚡ Kinds:
- replace: every non-overlapping match of regex is replaced by the expansion
  of with ($name, ${name}, $1, ${1}; $$ is a literal dollar sign)

New kinds register a Decoder with Register and never touch the fold.

🔍 Example:

	spec, err := operation.Decode([]byte(`{"type":"replace","regex":"\\d{3}-\\d{2}-\\d{4}","with":"***-**-****"}`))
	if err != nil {
		return err
	}
	op, err := spec.Compile()
	if err != nil {
		return err
	}
	masked := op.Apply(`{"ssn": "123-45-6789"}`)
*/
package operation
