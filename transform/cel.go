package transform

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/provisionality/state"
)

var structType = reflect.TypeOf(&structpb.Struct{})

// CEL compiles a CEL expression. The result must be a map with string keys
// or null.
func CEL(source string) (state.Transform, error) {
	env, err := cel.NewEnv(cel.Variable("data", cel.DynType))
	if err != nil {
		return nil, fmt.Errorf("cel environment: %w", err)
	}

	ast, issues := env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile cel transform: %w", issues.Err())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("compile cel transform: %w", err)
	}

	return func(data any) (state.Change, error) {
		out, _, err := program.Eval(map[string]any{"data": data})
		if err != nil {
			return nil, fmt.Errorf("cel transform: %w", err)
		}
		if _, isNull := out.(types.Null); isNull {
			return nil, nil
		}

		native, err := out.ConvertToNative(structType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResult, err)
		}
		return structToChange(native.(*structpb.Struct)), nil
	}, nil
}

func structToChange(s *structpb.Struct) state.Change {
	names := make([]string, 0, len(s.GetFields()))
	for name := range s.GetFields() {
		names = append(names, name)
	}
	sort.Strings(names)

	change := make(state.Change, 0, len(names))
	for _, name := range names {
		change = change.Set(name, s.GetFields()[name].AsInterface())
	}
	return change
}
