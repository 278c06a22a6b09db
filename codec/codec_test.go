package codec

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/graphcodec/format"
	"github.com/signadot/graphcodec/ir"
)

func TestRoundTrip(t *testing.T) {
	c := &capture{}
	p, ok := DeserializeObject[Person](`{"name":"Alice","age":30}`, c.opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if diff := cmp.Diff(Person{Name: "Alice", Age: 30}, p); diff != "" {
		t.Errorf("person (-want +got):\n%s", diff)
	}
	text, ok := SerializeObject(p, c.opts()...)
	if !ok {
		t.Fatal("serialize failed")
	}
	if text != `{"name":"Alice","age":30}` {
		t.Errorf("got %s", text)
	}
	if ws := c.warnings(); len(ws) != 0 {
		t.Errorf("unexpected warnings %v", ws)
	}
}

func TestPartialMerge(t *testing.T) {
	existing := Pair{A: "X", B: "Y"}
	got, ok := DeserializeObjectInto(`{"b":"Z"}`, existing, (&capture{}).opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if diff := cmp.Diff(Pair{A: "X", B: "Z"}, got); diff != "" {
		t.Errorf("pair (-want +got):\n%s", diff)
	}
}

func TestMergeKeepsPointers(t *testing.T) {
	in := &Inner{X: 1, Y: 2}
	o := &Outer{In: in, Vals: Inner{X: 3, Y: 4}}
	got, ok := DeserializeObjectInto(`{"In":{"Y":20},"Vals":{"X":30}}`, o, (&capture{}).opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if got != o {
		t.Error("top-level pointer replaced")
	}
	if got.In != in {
		t.Error("nested pointer replaced")
	}
	if diff := cmp.Diff(Inner{X: 1, Y: 20}, *in); diff != "" {
		t.Errorf("In (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Inner{X: 30, Y: 4}, o.Vals); diff != "" {
		t.Errorf("Vals (-want +got):\n%s", diff)
	}
}

func TestUnknownMemberWarns(t *testing.T) {
	c := &capture{}
	got, ok := DeserializeObject[Pair](`{"a":"1","ghost":2}`, c.opts()...)
	if !ok {
		t.Fatal("unknown member failed the conversion")
	}
	if got.A != "1" {
		t.Errorf("got %+v", got)
	}
	ws := c.warnings()
	if len(ws) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(ws), ws)
	}
	if ws[0].Path != "$.ghost" {
		t.Errorf("warning path %q", ws[0].Path)
	}
}

func TestEnumAlias(t *testing.T) {
	c := &capture{}
	got, ok := DeserializeObject[Color](`"navy"`, c.opts()...)
	if !ok || got != Blue {
		t.Fatalf("got %v %v", got, ok)
	}
	text, ok := SerializeObject(Blue, c.opts()...)
	if !ok || text != `"Blue"` {
		t.Errorf("got %s %v", text, ok)
	}
}

func TestMapRoundTrip(t *testing.T) {
	c := &capture{}
	m := map[string]int{"b": 2, "a": 1}
	text, ok := SerializeObject(m, c.opts()...)
	if !ok || text != `{"a":1,"b":2}` {
		t.Fatalf("got %s %v", text, ok)
	}
	got, ok := DeserializeObject[map[string]int](text, c.opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("map (-want +got):\n%s", diff)
	}
}

func TestMalformedText(t *testing.T) {
	c := &capture{}
	for _, text := range []string{"{not json", ""} {
		existing := Pair{A: "keep"}
		got, ok := DeserializeObjectInto(text, existing, c.opts()...)
		if ok {
			t.Errorf("%q: expected failure", text)
		}
		if got != existing {
			t.Errorf("%q: existing changed to %+v", text, got)
		}
	}
	if len(c.warnings()) != 2 {
		t.Errorf("got warnings %v", c.warnings())
	}
}

func TestFailureIsLogged(t *testing.T) {
	buf := &strings.Builder{}
	logger := slog.New(slog.NewTextHandler(buf, nil))
	if _, ok := DeserializeObject[Pair](`{"a":`, WithLogger(logger)); ok {
		t.Fatal("expected failure")
	}
	if !strings.Contains(buf.String(), "conversion warnings") {
		t.Errorf("parse failure not reported: %s", buf)
	}
	if strings.Contains(buf.String(), "conversion failed") {
		t.Errorf("parse failure logged as error: %s", buf)
	}

	buf.Reset()
	type withTime struct{ At time.Time }
	if _, ok := DeserializeObject[withTime](`{"At":"yesterday"}`, WithLogger(logger)); ok {
		t.Fatal("expected failure")
	}
	if !strings.Contains(buf.String(), "conversion failed") {
		t.Errorf("converter failure not logged: %s", buf)
	}
}

func TestCodecMethods(t *testing.T) {
	c := New((&capture{}).opts()...)
	p := Pair{A: "x"}
	if !c.DeserializeText(`{"b":"y"}`, &p) {
		t.Fatal("DeserializeText failed")
	}
	if p != (Pair{A: "x", B: "y"}) {
		t.Errorf("got %+v", p)
	}
	text, ok := c.SerializeText(p)
	if !ok || text != `{"a":"x","b":"y"}` {
		t.Errorf("got %s %v", text, ok)
	}
	if c.DeserializeText(`{}`, p) {
		t.Error("non-pointer target accepted")
	}
	err := c.Unmarshal([]byte(`{}`), nil)
	var ue *UnmarshalError
	if !errors.As(err, &ue) || !errors.Is(err, ErrUnsupported) {
		t.Errorf("got %v", err)
	}
	d, err := c.Marshal(&p)
	if err != nil || string(d) != `{"a":"x","b":"y"}` {
		t.Errorf("got %s %v", d, err)
	}
}

func TestDeserializeNode(t *testing.T) {
	node := ir.FromMap(map[string]*ir.Node{"a": ir.FromString("n")})
	got, ok := DeserializeNode(node, Pair{B: "b"}, (&capture{}).opts()...)
	if !ok || got != (Pair{A: "n", B: "b"}) {
		t.Errorf("got %+v %v", got, ok)
	}
	if _, ok := DeserializeNode[Pair](nil, Pair{}, (&capture{}).opts()...); ok {
		t.Error("nil document accepted")
	}
	n, ok := SerializeNode(Pair{A: "n"}, (&capture{}).opts()...)
	if !ok {
		t.Fatal("serialize failed")
	}
	if a := ir.Get(n, "a"); a == nil || a.String != "n" {
		t.Errorf("got %v", a)
	}
}

func TestReflectEntryPoints(t *testing.T) {
	c := New()
	node := ir.FromMap(map[string]*ir.Node{"age": ir.FromInt(4)})
	v, err := c.Deserialize(node, reflect.TypeFor[Person](), reflect.Value{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Interface().(Person); got.Age != 4 {
		t.Errorf("got %+v", got)
	}
	out, err := c.Serialize(reflect.Value{}, reflect.TypeFor[*Person](), nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.Type != ir.NullType {
		t.Errorf("nil pointer serialized as %s", out.Type)
	}
}

func TestFormats(t *testing.T) {
	for _, f := range []format.Format{format.JSONFormat, format.YAMLFormat, format.CBORFormat} {
		opts := (&capture{}).opts(WithFormat(f))
		text, ok := SerializeObject(Person{Name: "Bo", Age: 7}, opts...)
		if !ok {
			t.Errorf("%s: serialize failed", f)
			continue
		}
		got, ok := DeserializeObject[Person](text, opts...)
		if !ok || got != (Person{Name: "Bo", Age: 7}) {
			t.Errorf("%s: got %+v %v", f, got, ok)
		}
	}
}

func TestDefaultCodec(t *testing.T) {
	if Default() != Default() {
		t.Error("default codec not shared")
	}
	if len(Default().Converters()) != len(DefaultConverters()) {
		t.Error("default codec lacks the shipped converters")
	}
	if Default().Format() != format.JSONFormat {
		t.Errorf("default format %s", Default().Format())
	}
}
