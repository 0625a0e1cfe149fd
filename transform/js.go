package transform

import (
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/tailored-agentic-units/provisionality/state"
)

// DefaultJSTimeout bounds a single JS transform call.
const DefaultJSTimeout = time.Second

// JSOption configures a JS transform.
type JSOption func(*jsConfig)

type jsConfig struct {
	timeout time.Duration
}

// JSWithTimeout overrides DefaultJSTimeout. Zero disables the limit.
func JSWithTimeout(d time.Duration) JSOption {
	return func(c *jsConfig) { c.timeout = d }
}

// JS compiles a JavaScript function expression taking one argument. The
// function may return an object, a Map, an array of [name, value] pairs,
// null or undefined. Every call runs in a fresh runtime.
func JS(source string, opts ...JSOption) (state.Transform, error) {
	cfg := jsConfig{timeout: DefaultJSTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	program, err := goja.Compile("transform", wrapFunction(source), false)
	if err != nil {
		return nil, fmt.Errorf("compile js transform: %w", err)
	}

	return func(data any) (state.Change, error) {
		vm := goja.New()

		if cfg.timeout > 0 {
			timer := time.AfterFunc(cfg.timeout, func() {
				vm.Interrupt("transform timed out")
			})
			defer timer.Stop()
		}

		fnValue, err := vm.RunProgram(program)
		if err != nil {
			return nil, fmt.Errorf("js transform: %w", err)
		}
		fn, ok := goja.AssertFunction(fnValue)
		if !ok {
			return nil, fmt.Errorf("js transform: source is not a function")
		}

		result, err := fn(goja.Undefined(), vm.ToValue(data))
		if err != nil {
			return nil, fmt.Errorf("js transform: %w", err)
		}
		return jsToChange(vm, result)
	}, nil
}

// wrapFunction normalises Map results into arrays of pairs so they keep
// their insertion order through export.
func wrapFunction(source string) string {
	return fmt.Sprintf(`(function (fn) {
	return function (data) {
		var result = fn(data);
		return (result instanceof Map) ? Array.from(result) : result;
	};
})(%s)`, source)
}

func jsToChange(vm *goja.Runtime, result goja.Value) (state.Change, error) {
	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return nil, nil
	}

	obj := result.ToObject(vm)
	if obj.ClassName() == "Array" {
		pairs, ok := result.Export().([]any)
		if !ok {
			return nil, fmt.Errorf("%w: array export", ErrInvalidResult)
		}
		return pairsToChange(pairs)
	}
	if obj.ClassName() != "Object" {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidResult, obj.ClassName())
	}

	keys := obj.Keys()
	change := make(state.Change, 0, len(keys))
	for _, key := range keys {
		v := obj.Get(key)
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			change = change.Delete(key)
			continue
		}
		change = change.Set(key, v.Export())
	}
	return change, nil
}
