package transform

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"

	"github.com/tailored-agentic-units/provisionality/state"
)

// Expr compiles an expr-lang expression.
func Expr(source string) (state.Transform, error) {
	program, err := exprlang.Compile(
		source,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile expr transform: %w", err)
	}

	return func(data any) (state.Change, error) {
		result, err := exprlang.Run(program, map[string]any{"data": data})
		if err != nil {
			return nil, fmt.Errorf("expr transform: %w", err)
		}
		return toChange(result)
	}, nil
}
