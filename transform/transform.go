// Package transform builds state.Transform functions from source text so
// reflectors can be declared in configuration. Three engines are available:
//
//	expr  github.com/expr-lang/expr   {"name": data.name}
//	cel   github.com/google/cel-go    {"name": data.name}
//	js    github.com/dop251/goja      (data) => new Map([["name", data.name]])
//
// Every engine sees the payload as the variable data. A map or object result
// becomes the Change, a null result commits nothing, and a null or undefined
// entry deletes that property.
package transform

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/provisionality/state"
)

// Engine names a source language.
type Engine string

const (
	EngineExpr Engine = "expr"
	EngineCEL  Engine = "cel"
	EngineJS   Engine = "js"
)

// Compile builds a Transform for source in the given engine. Compilation
// errors are returned here; evaluation errors surface when the reflector runs.
func Compile(engine Engine, source string) (state.Transform, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptySource
	}

	switch Engine(strings.ToLower(string(engine))) {
	case EngineExpr, "":
		return Expr(source)
	case EngineCEL:
		return CEL(source)
	case EngineJS:
		return JS(source)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, engine)
	}
}

// toChange coerces a native evaluation result.
func toChange(result any) (state.Change, error) {
	switch r := result.(type) {
	case nil:
		return nil, nil
	case state.Change:
		return r, nil
	case map[string]any:
		return state.ChangeFromMap(r), nil
	case []any:
		return pairsToChange(r)
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidResult, result)
	}
}

func pairsToChange(pairs []any) (state.Change, error) {
	change := make(state.Change, 0, len(pairs))
	for i, entry := range pairs {
		pair, ok := entry.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("%w: entry %d is not a [name, value] pair", ErrInvalidResult, i)
		}
		name, ok := pair[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d name is %T", ErrInvalidResult, i, pair[0])
		}
		change = change.Set(name, pair[1])
	}
	return change, nil
}
