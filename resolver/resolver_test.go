package resolver

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tsawler/pdftext/core"
)

// mockReader serves objects from a map
type mockReader struct {
	objects map[int]core.Object
}

func newMockReader(objects map[int]core.Object) *mockReader {
	return &mockReader{objects: objects}
}

func (m *mockReader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	obj, ok := m.objects[ref.Number]
	if !ok {
		return nil, fmt.Errorf("object %d not found", ref.Number)
	}
	return obj, nil
}

func ref(n int) core.IndirectRef { return core.IndirectRef{Number: n} }

func TestResolve(t *testing.T) {
	reader := newMockReader(map[int]core.Object{
		5:  core.Int(42),
		6:  ref(5),
		10: core.Dict{"Ref": ref(5)},
	})
	r := NewResolver(reader)

	tests := []struct {
		name string
		obj  core.Object
		want core.Object
	}{
		{"reference", ref(5), core.Int(42)},
		{"reference chain", ref(6), core.Int(42)},
		{"primitive", core.Name("Test"), core.Name("Test")},
		{"null", core.Null{}, core.Null{}},
		{"dict is shallow", ref(10), core.Dict{"Ref": ref(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.obj)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveDeep(t *testing.T) {
	reader := newMockReader(map[int]core.Object{
		100: core.Name("FlateDecode"),
		200: core.String("Leaf1"),
		201: core.String("Leaf2"),
		202: core.Array{ref(200), ref(201)},
		203: core.Dict{"Array": ref(202), "Value": core.Int(42)},
		204: &core.Stream{Dict: core.Dict{"Filter": ref(100)}, Data: []byte("stream data")},
	})
	r := NewResolver(reader)

	root := core.Dict{
		"Top":    ref(203),
		"Direct": core.String("DirectValue"),
		"Stream": ref(204),
	}
	got, err := r.ResolveDeep(root)
	if err != nil {
		t.Fatalf("ResolveDeep() error = %v", err)
	}

	want := core.Dict{
		"Top": core.Dict{
			"Array": core.Array{core.String("Leaf1"), core.String("Leaf2")},
			"Value": core.Int(42),
		},
		"Direct": core.String("DirectValue"),
		"Stream": &core.Stream{Dict: core.Dict{"Filter": core.Name("FlateDecode")}, Data: []byte("stream data")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ResolveDeep() mismatch (-want +got):\n%s", diff)
	}
	if _, ok := root["Top"].(core.IndirectRef); !ok {
		t.Error("ResolveDeep() modified its input")
	}
}

func TestResolveDeepSharedObject(t *testing.T) {
	// The same object reached twice on different paths is not a cycle.
	reader := newMockReader(map[int]core.Object{1: core.Int(7)})
	got, err := NewResolver(reader).ResolveDeep(core.Array{ref(1), core.Dict{"A": ref(1)}})
	if err != nil {
		t.Fatalf("ResolveDeep() error = %v", err)
	}
	want := core.Array{core.Int(7), core.Dict{"A": core.Int(7)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ResolveDeep() mismatch (-want +got):\n%s", diff)
	}
}

func TestCycleDetection(t *testing.T) {
	tests := []struct {
		name    string
		objects map[int]core.Object
		deep    bool
	}{
		{"dict cycle", map[int]core.Object{
			50: core.Dict{"Next": ref(51)},
			51: core.Dict{"Next": ref(50)},
		}, true},
		{"reference loop", map[int]core.Object{
			50: ref(51),
			51: ref(50),
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(newMockReader(tt.objects))
			var err error
			if tt.deep {
				_, err = r.ResolveDeep(ref(50))
			} else {
				_, err = r.Resolve(ref(50))
			}
			if err == nil || !strings.Contains(err.Error(), "circular reference detected for object 50") {
				t.Errorf("error = %v, want circular reference", err)
			}
		})
	}
}

func TestMaxDepth(t *testing.T) {
	objects := map[int]core.Object{70: core.String("End")}
	for i := 60; i < 70; i++ {
		objects[i] = core.Dict{"Next": ref(i + 1)}
	}

	if _, err := NewResolver(newMockReader(objects), WithMaxDepth(5)).ResolveDeep(ref(60)); err == nil {
		t.Error("expected error for exceeding max depth")
	}
	if _, err := NewResolver(newMockReader(objects)).ResolveDeep(ref(60)); err != nil {
		t.Errorf("default depth error = %v", err)
	}
}

func TestResolveDictAndArray(t *testing.T) {
	reader := newMockReader(map[int]core.Object{
		1: core.Dict{"K": core.Int(1)},
		2: core.Array{core.Int(2)},
	})
	r := NewResolver(reader)

	if d, err := r.ResolveDict(ref(1)); err != nil || d["K"] != core.Int(1) {
		t.Errorf("ResolveDict() = %v, %v", d, err)
	}
	if a, err := r.ResolveArray(ref(2)); err != nil || len(a) != 1 {
		t.Errorf("ResolveArray() = %v, %v", a, err)
	}
	if _, err := r.ResolveDict(ref(2)); err == nil {
		t.Error("ResolveDict() of an array should fail")
	}
	if _, err := r.ResolveArray(ref(1)); err == nil {
		t.Error("ResolveArray() of a dict should fail")
	}
}

func TestObjectNotFound(t *testing.T) {
	_, err := NewResolver(newMockReader(nil)).Resolve(ref(999))
	if err == nil || !strings.Contains(err.Error(), "999 0 R") {
		t.Errorf("error = %v, want reference in message", err)
	}
}
