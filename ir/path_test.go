package ir

import (
	"testing"
)

func pathDoc() *Node {
	return NewObject().
		Set("a", FromSlice([]*Node{FromInt(1), FromInt(2)})).
		Set("f[3]", FromSlice([]*Node{FromInt(0), FromInt(1), FromString("two")})).
		Set("obj", NewObject().Set("x", FromString("y")))
}

func TestPath(t *testing.T) {
	doc := pathDoc()
	if p := Get(doc, "a").Values[1].Path(); p != "$.a[1]" {
		t.Errorf("got %q", p)
	}
	if p := Get(doc, "f[3]").Values[2].Path(); p != "$.'f[3]'[2]" {
		t.Errorf("got %q", p)
	}
	if p := doc.Path(); p != "$" {
		t.Errorf("got %q", p)
	}
}

func TestGetPath(t *testing.T) {
	doc := pathDoc()
	tests := []struct {
		path string
		want *Node
	}{
		{"$", doc},
		{"$.a[0]", FromInt(1)},
		{"$.'f[3]'[2]", FromString("two")},
		{"$.obj.x", FromString("y")},
		{"$.missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := doc.GetPath(tt.path)
			if err != nil {
				t.Fatalf("GetPath: %v", err)
			}
			if !Equal(got, tt.want) {
				t.Errorf("GetPath(%q) mismatch", tt.path)
			}
		})
	}
	if _, err := doc.GetPath("$.a[7]"); err == nil {
		t.Error("expected out of bounds error")
	}
	if _, err := doc.GetPath("a"); err == nil {
		t.Error("expected error for path without $")
	}
}

func TestListPath(t *testing.T) {
	doc := pathDoc()
	res, err := doc.ListPath(nil, "$.a[*]")
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 || *res[1].Int64 != 2 {
		t.Errorf("unexpected list result %v", res)
	}
	res, err = doc.ListPath(nil, "$..x")
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].String != "y" {
		t.Errorf("unexpected subtree result %v", res)
	}
}

func TestPathBuilders(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{FieldPath(Root, "a"), "$.a"},
		{FieldPath(Root, "a.b"), "$.'a.b'"},
		{FieldPath(Root, "it's here"), `$.'it\'s here'`},
		{FieldPath(Root, ""), "$.''"},
		{IndexPath(FieldPath(Root, "xs"), 3), "$.xs[3]"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestParsePathRoundTrip(t *testing.T) {
	for _, s := range []string{"$", "$.a[0]", "$.'a.b'.c", `$.'it\'s'`, "$..x", "$.a[*].b"} {
		steps, err := ParsePath(s)
		if err != nil {
			t.Errorf("%s: %v", s, err)
			continue
		}
		if got := steps.String(); got != s {
			t.Errorf("got %q, want %q", got, s)
		}
	}
	for _, s := range []string{"a", "$.", "$[x]", "$[1", "$.'open", "$a"} {
		if _, err := ParsePath(s); err == nil {
			t.Errorf("%q: expected error", s)
		}
	}
}
