package config_test

import (
	"context"
	"fmt"

	"github.com/walteh/rxmap/pkg/config"
	"github.com/walteh/rxmap/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

func ExampleFromParams() {
	params := config.Params{
		config.ParamSpec: `[{"type": "replace", "regex": "\\d{3}-\\d{2}-\\d{4}", "with": "***-**-****"}]`,
	}

	specs, err := config.FromParams(context.Background(), params)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	for _, spec := range specs {
		replace := spec.Params.(*operation.ReplaceSpec)
		fmt.Printf("%s: %s -> %s\n", spec.Kind, replace.Regex, replace.With)
	}

	// Output:
	// replace: \d{3}-\d{2}-\d{4} -> ***-**-****
}

func ExampleFromParams_missing() {
	_, err := config.FromParams(context.Background(), config.Params{})
	fmt.Println(errors.Is(err, config.ErrMissingConfiguration))

	// Output:
	// true
}
