package operation_test

import (
	"fmt"

	"github.com/walteh/rxmap/pkg/operation"
)

func ExampleReplace_Apply() {
	op, err := operation.NewReplace(`(?P<first>"address":\s+")([\w\d\s]+),`, "${first}...")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(op.Apply(`{"address": "285 LA PALA DR APT 2343, SAN JOSE CA 95127"}`))

	// Output:
	// {"address": "... SAN JOSE CA 95127"}
}

func ExampleDecode() {
	spec, err := operation.Decode([]byte(`{"type": "replace", "regex": "\\d{3}-\\d{2}-\\d{4}", "with": "***-**-****"}`))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	op, err := spec.Compile()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(op.Apply("Alice, ssn 123-45-6789, Jack, ssn 987-65-4321"))

	// Output:
	// Alice, ssn ***-**-****, Jack, ssn ***-**-****
}
