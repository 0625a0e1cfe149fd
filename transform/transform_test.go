package transform_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tailored-agentic-units/provisionality/dispatch"
	"github.com/tailored-agentic-units/provisionality/observability"
	"github.com/tailored-agentic-units/provisionality/state"
	"github.com/tailored-agentic-units/provisionality/topic"
	"github.com/tailored-agentic-units/provisionality/transform"
)

func names(c state.Change) []string {
	out := make([]string, len(c))
	for i, u := range c {
		out[i] = u.Name
	}
	return out
}

func TestCompile_Engines(t *testing.T) {
	tests := []struct {
		name   string
		engine transform.Engine
		source string
	}{
		{name: "expr", engine: transform.EngineExpr, source: `{"name": data.name}`},
		{name: "empty engine defaults to expr", engine: "", source: `{"name": data.name}`},
		{name: "cel", engine: transform.EngineCEL, source: `{"name": data.name}`},
		{name: "js object", engine: transform.EngineJS, source: `(data) => ({name: data.name})`},
		{name: "js map", engine: transform.EngineJS, source: `(data) => new Map([["name", data.name]])`},
		{name: "engine name is case insensitive", engine: "JS", source: `function (data) { return {name: data.name}; }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := transform.Compile(tt.engine, tt.source)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}

			change, err := fn(map[string]any{"name": "Alice"})
			if err != nil {
				t.Fatalf("transform error = %v", err)
			}

			want := state.Change{{Name: "name", Value: "Alice"}}
			if !reflect.DeepEqual(change, want) {
				t.Errorf("change = %#v, want %#v", change, want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		engine  transform.Engine
		source  string
		wantErr error
	}{
		{name: "unknown engine", engine: "lua", source: "x", wantErr: transform.ErrUnknownEngine},
		{name: "empty source", engine: transform.EngineExpr, source: "  ", wantErr: transform.ErrEmptySource},
		{name: "expr syntax", engine: transform.EngineExpr, source: `{"a": }`},
		{name: "cel syntax", engine: transform.EngineCEL, source: `{"a": }`},
		{name: "js syntax", engine: transform.EngineJS, source: `(data) => {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transform.Compile(tt.engine, tt.source)
			if err == nil {
				t.Fatal("Compile() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Compile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpr_NilResultCommitsNothing(t *testing.T) {
	fn, err := transform.Expr(`data.ready ? {"status": "ready"} : nil`)
	if err != nil {
		t.Fatalf("Expr() error = %v", err)
	}

	change, err := fn(map[string]any{"ready": false})
	if err != nil {
		t.Fatalf("transform error = %v", err)
	}
	if change != nil {
		t.Errorf("change = %v, want nil", change)
	}
}

func TestExpr_NilEntryDeletes(t *testing.T) {
	fn, err := transform.Expr(`{"b": data.b, "a": nil}`)
	if err != nil {
		t.Fatalf("Expr() error = %v", err)
	}

	change, err := fn(map[string]any{"b": 2})
	if err != nil {
		t.Fatalf("transform error = %v", err)
	}

	if got := names(change); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("names = %v, want [a b]", got)
	}
	if change[0].Value != nil {
		t.Errorf("a = %v, want nil", change[0].Value)
	}
}

func TestExpr_InvalidResult(t *testing.T) {
	fn, err := transform.Expr(`42`)
	if err != nil {
		t.Fatalf("Expr() error = %v", err)
	}

	if _, err := fn(nil); !errors.Is(err, transform.ErrInvalidResult) {
		t.Errorf("transform error = %v, want ErrInvalidResult", err)
	}
}

func TestCEL_NullResult(t *testing.T) {
	fn, err := transform.CEL(`data.ready ? dyn({"status": "ready"}) : dyn(null)`)
	if err != nil {
		t.Fatalf("CEL() error = %v", err)
	}

	change, err := fn(map[string]any{"ready": false})
	if err != nil {
		t.Fatalf("transform error = %v", err)
	}
	if change != nil {
		t.Errorf("change = %v, want nil", change)
	}
}

func TestCEL_NumbersBecomeFloat(t *testing.T) {
	fn, err := transform.CEL(`{"count": data.count + 1}`)
	if err != nil {
		t.Fatalf("CEL() error = %v", err)
	}

	change, err := fn(map[string]any{"count": 41})
	if err != nil {
		t.Fatalf("transform error = %v", err)
	}
	if len(change) != 1 || change[0].Value != float64(42) {
		t.Errorf("change = %#v, want count=42", change)
	}
}

func TestCEL_MissingField(t *testing.T) {
	fn, err := transform.CEL(`{"x": data.missing}`)
	if err != nil {
		t.Fatalf("CEL() error = %v", err)
	}
	if _, err := fn(map[string]any{}); err == nil {
		t.Error("transform error = nil, want missing key error")
	}
}

func TestJS_KeyOrderAndDeletes(t *testing.T) {
	fn, err := transform.JS(`(data) => ({z: data.z, a: undefined, m: null})`)
	if err != nil {
		t.Fatalf("JS() error = %v", err)
	}

	change, err := fn(map[string]any{"z": "last"})
	if err != nil {
		t.Fatalf("transform error = %v", err)
	}

	if got := names(change); !reflect.DeepEqual(got, []string{"z", "a", "m"}) {
		t.Errorf("names = %v, want [z a m] (property order)", got)
	}
	if change[1].Value != nil || change[2].Value != nil {
		t.Errorf("undefined and null should delete: %#v", change)
	}
}

func TestJS_Pairs(t *testing.T) {
	fn, err := transform.JS(`(data) => [["b", 1], ["a", 2]]`)
	if err != nil {
		t.Fatalf("JS() error = %v", err)
	}

	change, err := fn(nil)
	if err != nil {
		t.Fatalf("transform error = %v", err)
	}
	if got := names(change); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("names = %v, want [b a]", got)
	}
}

func TestJS_UndefinedResult(t *testing.T) {
	fn, err := transform.JS(`(data) => undefined`)
	if err != nil {
		t.Fatalf("JS() error = %v", err)
	}

	change, err := fn(nil)
	if err != nil || change != nil {
		t.Errorf("transform = %v, %v; want nil, nil", change, err)
	}
}

func TestJS_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "throws", source: `(data) => { throw new Error("bad"); }`},
		{name: "not a function", source: `42`},
		{name: "primitive result", source: `(data) => 7`},
		{name: "bad pair", source: `(data) => [["only-name"]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := transform.JS(tt.source)
			if err != nil {
				t.Fatalf("JS() error = %v", err)
			}
			if _, err := fn(map[string]any{}); err == nil {
				t.Error("transform error = nil, want error")
			}
		})
	}
}

func TestJS_Timeout(t *testing.T) {
	fn, err := transform.JS(`(data) => { for (;;) {} }`, transform.JSWithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("JS() error = %v", err)
	}

	if _, err := fn(nil); err == nil {
		t.Error("transform error = nil, want interrupt")
	}
}

func TestTransform_DrivesReflector(t *testing.T) {
	rec := &observability.Recorder{}
	d := dispatch.New(rec)

	s, err := state.New(&state.Config{Prefix: "user."}, state.WithDispatcher(d), state.WithObserver(rec))
	if err != nil {
		t.Fatalf("state.New() error = %v", err)
	}
	tp := topic.New(topic.WithDispatcher(d))

	fn, err := transform.Compile(transform.EngineJS, `(d) => new Map([["name", d.name]])`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if err := s.AddTopicReflector(tp, fn); err != nil {
		t.Fatalf("AddTopicReflector() error = %v", err)
	}

	tp.Dispatch(context.Background(), map[string]any{"name": "Alice"})
	d.Wait()

	if got, _ := s.Property("name").Value(); got != "Alice" {
		t.Errorf("name = %v, want Alice", got)
	}
	if !s.Store().Has("user.name") {
		t.Errorf("store keys = %v, want user.name", s.Store().Keys())
	}
}
