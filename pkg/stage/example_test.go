package stage_test

import (
	"context"
	"fmt"

	"github.com/walteh/rxmap/pkg/config"
	"github.com/walteh/rxmap/pkg/record"
	"github.com/walteh/rxmap/pkg/stage"
	"gitlab.com/tozd/go/errors"
)

func ExampleStage_Map() {
	ctx := context.Background()
	s := stage.New(stage.Options{})

	_, err := s.Map(ctx, record.New(nil, []byte(`{}`)))
	fmt.Println(errors.Is(err, stage.ErrUninitializedPipeline))

	err = s.Init(ctx, config.Params{
		config.ParamSpec: `[{"type": "replace", "regex": "\\d{3}-\\d{2}-\\d{4}", "with": "***-**-****"}]`,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	out, err := s.Map(ctx, record.New([]byte("alice"), []byte(`{"name": "Alice", "ssn": "123-45-6789"}`)))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("%s %s\n", out.Key, out.Value)

	// Output:
	// true
	// alice {"name":"Alice","ssn":"***-**-****"}
}
