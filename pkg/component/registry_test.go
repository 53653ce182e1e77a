package component_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewstack/pkg/component"
)

func TestRegistryDescriptorClone(t *testing.T) {
	reg := component.New()

	if err := reg.Register("Card", component.Descriptor{
		Engine:   "pongo2",
		Template: "card",
		Defaults: map[string]any{"tone": "info"},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	desc, ok := reg.Descriptor(" card ")
	if !ok {
		t.Fatalf("descriptor not found")
	}
	if desc.Name != "card" {
		t.Fatalf("expected normalised name, got %q", desc.Name)
	}

	desc.Defaults["tone"] = "mutated"

	original, _ := reg.Descriptor("card")
	if original.Defaults["tone"] != "info" {
		t.Fatalf("registry descriptor mutated: %#v", original.Defaults)
	}

	cloned := reg.Clone()
	cloned.MustRegister("extra", component.Descriptor{Engine: "html", Inline: "<p></p>"})
	if diff := cmp.Diff([]string{"card"}, reg.Names()); diff != "" {
		t.Fatalf("clone leaked registration (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"card", "extra"}, cloned.Names()); diff != "" {
		t.Fatalf("clone names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryRegisterValidation(t *testing.T) {
	noop := func(*component.Scope, any) error { return nil }

	cases := []struct {
		name       string
		descriptor component.Descriptor
		wantErr    string
	}{
		{name: "", descriptor: component.Descriptor{Func: noop}, wantErr: "name is required"},
		{name: "empty", descriptor: component.Descriptor{}, wantErr: "needs a template"},
		{name: "both", descriptor: component.Descriptor{Func: noop, Template: "x", Engine: "html"}, wantErr: "more than one"},
		{name: "engine", descriptor: component.Descriptor{Template: "x"}, wantErr: "needs an engine"},
		{name: "policy", descriptor: component.Descriptor{Func: noop, Sanitize: "loose"}, wantErr: "unknown sanitize policy"},
	}

	reg := component.New()
	for _, tc := range cases {
		err := reg.Register(tc.name, tc.descriptor)
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("register %q: expected error containing %q, got %v", tc.name, tc.wantErr, err)
		}
	}

	if err := reg.Register("ok", component.Descriptor{Func: noop, Sanitize: "ugc"}); err != nil {
		t.Fatalf("register valid descriptor: %v", err)
	}
}
