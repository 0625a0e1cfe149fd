// Package value snapshots arbitrary Go values into an immutable, JSON-shaped
// form and hands back fresh copies on demand.
//
// Snapshots are *structpb.Value. Decoding follows JSON semantics: numbers come
// back as float64, structs and typed maps as map[string]any, typed slices as
// []any. Functions, channels and cyclic structures cannot be snapshotted.
package value

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Encode snapshots v. Values structpb understands directly are converted as
// is; anything else goes through a JSON round-trip first.
func Encode(v any) (*structpb.Value, error) {
	if pv, ok := v.(*structpb.Value); ok {
		return proto.Clone(pv).(*structpb.Value), nil
	}

	if sv, err := structpb.NewValue(v); err == nil {
		return sv, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRepresentable, err)
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRepresentable, err)
	}

	sv, err := structpb.NewValue(generic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRepresentable, err)
	}
	return sv, nil
}

// Decode returns a new Go value for the snapshot. Two calls never share maps
// or slices. A nil snapshot decodes to nil.
func Decode(sv *structpb.Value) any {
	if sv == nil {
		return nil
	}
	return sv.AsInterface()
}

// Clone returns a structurally equal, independent copy of v.
func Clone(v any) (any, error) {
	sv, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return Decode(sv), nil
}

// Marshal renders the snapshot as canonical JSON.
func Marshal(sv *structpb.Value) ([]byte, error) {
	if sv == nil {
		sv = structpb.NewNullValue()
	}
	return protojson.Marshal(sv)
}

// Unmarshal parses JSON produced by Marshal.
func Unmarshal(data []byte) (*structpb.Value, error) {
	sv := &structpb.Value{}
	if err := protojson.Unmarshal(data, sv); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return sv, nil
}
