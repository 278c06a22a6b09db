package codec

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/graphcodec/ir"
)

func TestDefaults(t *testing.T) {
	c := &capture{}
	got, ok := DeserializeObject[Conf](`{"Name":"x"}`, c.opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	want := Conf{Port: 8080, Name: "x", Tags: []string{"a", "b"}, Sub: Sub{Level: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fresh (-want +got):\n%s", diff)
	}

	// merging onto an existing value applies no defaults
	got, ok = DeserializeObjectInto(`{"Name":"x"}`, Conf{}, c.opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if diff := cmp.Diff(Conf{Name: "x"}, got); diff != "" {
		t.Errorf("existing (-want +got):\n%s", diff)
	}

	type holder struct{ C *Conf }
	h, ok := DeserializeObjectInto(`{"C":{"Port":1}}`, holder{}, c.opts()...)
	if !ok || h.C == nil {
		t.Fatalf("got %+v %v", h, ok)
	}
	want = Conf{Port: 1, Name: "anon", Tags: []string{"a", "b"}, Sub: Sub{Level: 3}}
	if diff := cmp.Diff(want, *h.C); diff != "" {
		t.Errorf("allocated (-want +got):\n%s", diff)
	}
	if ws := c.warnings(); len(ws) != 0 {
		t.Errorf("unexpected warnings %v", ws)
	}
}

func TestSequences(t *testing.T) {
	c := &capture{}
	s, ok := DeserializeObjectInto(`[9]`, []int{1, 2, 3}, c.opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if diff := cmp.Diff([]int{9}, s); diff != "" {
		t.Errorf("slice (-want +got):\n%s", diff)
	}

	confs, ok := DeserializeObject[[]Conf](`[{"Name":"q"}]`, c.opts()...)
	if !ok || len(confs) != 1 {
		t.Fatalf("got %+v %v", confs, ok)
	}
	if confs[0].Port != 8080 || confs[0].Name != "q" {
		t.Errorf("element not seeded: %+v", confs[0])
	}
	if len(c.warnings()) != 0 {
		t.Errorf("unexpected warnings %v", c.warnings())
	}

	for _, tc := range []struct {
		text string
		want [2]int
	}{
		{`[1,2,3]`, [2]int{1, 2}},
		{`[5]`, [2]int{5, 0}},
	} {
		c := &capture{}
		got, ok := DeserializeObject[[2]int](tc.text, c.opts()...)
		if !ok || got != tc.want {
			t.Errorf("%s: got %v %v", tc.text, got, ok)
		}
		if len(c.warnings()) != 1 {
			t.Errorf("%s: got warnings %v", tc.text, c.warnings())
		}
	}
}

func TestMapMerge(t *testing.T) {
	existing := map[string]Inner{"k": {X: 1, Y: 2}, "gone": {X: 5, Y: 5}}
	got, ok := DeserializeObjectInto(`{"k":{"Y":5},"new":{"X":7}}`, existing, (&capture{}).opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	want := map[string]Inner{"k": {X: 1, Y: 5}, "new": {X: 7}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("map (-want +got):\n%s", diff)
	}
	if existing["k"] != (Inner{X: 1, Y: 2}) {
		t.Errorf("existing map modified: %v", existing)
	}
}

func TestMapKeys(t *testing.T) {
	c := &capture{}
	ints := map[int]string{2: "b", 10: "a"}
	text, ok := SerializeObject(ints, c.opts()...)
	if !ok || text != `{"10":"a","2":"b"}` {
		t.Errorf("got %s %v", text, ok)
	}
	back, ok := DeserializeObject[map[int]string](text, c.opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if diff := cmp.Diff(ints, back); diff != "" {
		t.Errorf("int keys (-want +got):\n%s", diff)
	}

	colors := map[Color]int{Blue: 1, Red: 0}
	text, ok = SerializeObject(colors, c.opts()...)
	if !ok || text != `{"Blue":1,"Red":0}` {
		t.Errorf("got %s %v", text, ok)
	}
	cback, ok := DeserializeObject[map[Color]int](`{"navy":1,"red":0}`, c.opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if diff := cmp.Diff(colors, cback); diff != "" {
		t.Errorf("enum keys (-want +got):\n%s", diff)
	}
	if len(c.warnings()) != 0 {
		t.Errorf("unexpected warnings %v", c.warnings())
	}

	c = &capture{}
	bad, ok := DeserializeObject[map[int]string](`{"x":"y","1":"z"}`, c.opts()...)
	if !ok || len(bad) != 1 || bad[1] != "z" {
		t.Errorf("got %v %v", bad, ok)
	}
	if len(c.warnings()) != 1 {
		t.Errorf("got warnings %v", c.warnings())
	}
}

func TestPrimitiveCoercion(t *testing.T) {
	type prims struct {
		I   int
		I8  int8
		U   uint
		F   float64
		F32 float32
		B   bool
	}
	existing := prims{I: 9, I8: 9, U: 9, F: 9, F32: 9}
	for _, tc := range []struct {
		text     string
		want     prims
		warnings int
	}{
		{`{"I":"42"}`, prims{I: 42, I8: 9, U: 9, F: 9, F32: 9}, 0},
		{`{"I":2.0}`, prims{I: 2, I8: 9, U: 9, F: 9, F32: 9}, 0},
		{`{"I":2.5}`, existing, 1},
		{`{"I":true}`, existing, 1},
		{`{"I":[1]}`, existing, 1},
		{`{"I8":300}`, existing, 1},
		{`{"I8":-128}`, prims{I: 9, I8: -128, U: 9, F: 9, F32: 9}, 0},
		{`{"U":-1}`, existing, 1},
		{`{"U":"7"}`, prims{I: 9, I8: 9, U: 7, F: 9, F32: 9}, 0},
		{`{"F":1}`, prims{I: 9, I8: 9, U: 9, F: 1, F32: 9}, 0},
		{`{"F":"NaN"}`, existing, 0},
		{`{"F32":1e300}`, existing, 1},
		{`{"B":"true"}`, prims{I: 9, I8: 9, U: 9, F: 9, F32: 9, B: true}, 0},
		{`{"B":"maybe"}`, existing, 1},
	} {
		c := &capture{}
		got, ok := DeserializeObjectInto(tc.text, existing, c.opts()...)
		if !ok {
			t.Errorf("%s: failed", tc.text)
			continue
		}
		if tc.text == `{"F":"NaN"}` {
			if !math.IsNaN(got.F) {
				t.Errorf("%s: got %v", tc.text, got.F)
			}
			continue
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tc.text, diff)
		}
		if n := len(c.warnings()); n != tc.warnings {
			t.Errorf("%s: got %d warnings, want %d: %v", tc.text, n, tc.warnings, c.warnings())
		}
	}
}

func TestNull(t *testing.T) {
	type nulls struct {
		P *Inner
		M map[string]int
		S []int
		N int
		A any
	}
	existing := nulls{P: &Inner{X: 1}, M: map[string]int{"a": 1}, S: []int{1}, N: 5, A: "x"}
	got, ok := DeserializeObjectInto(`{"P":null,"M":null,"S":null,"N":null,"A":null}`, existing, (&capture{}).opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if diff := cmp.Diff(nulls{N: 5}, got); diff != "" {
		t.Errorf("nulls (-want +got):\n%s", diff)
	}
}

func TestInterfaceInference(t *testing.T) {
	got, ok := DeserializeObject[any](`{"a":[1,"x",true,null,1.5],"b":{"c":18446744073709551615}}`, (&capture{}).opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	want := map[string]any{
		"a": []any{int64(1), "x", true, nil, 1.5},
		"b": map[string]any{"c": uint64(18446744073709551615)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("inferred (-want +got):\n%s", diff)
	}
}

func TestInterfaceMerge(t *testing.T) {
	type holder struct {
		Data any
		S    fmt.Stringer
	}
	in := &Inner{X: 1, Y: 2}
	got, ok := DeserializeObjectInto(`{"Data":{"Y":3}}`, holder{Data: in}, (&capture{}).opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if got.Data != any(in) || *in != (Inner{X: 1, Y: 3}) {
		t.Errorf("dynamic value not merged: %#v", got.Data)
	}

	got, ok = DeserializeObjectInto(`{"Data":{"k":1}}`, holder{Data: "scalar"}, (&capture{}).opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if diff := cmp.Diff(map[string]any{"k": int64(1)}, got.Data); diff != "" {
		t.Errorf("replaced (-want +got):\n%s", diff)
	}

	c := &capture{}
	got, ok = DeserializeObject[holder](`{"S":"text"}`, c.opts()...)
	if !ok || got.S != nil {
		t.Errorf("got %+v %v", got, ok)
	}
	if len(c.warnings()) != 1 {
		t.Errorf("got warnings %v", c.warnings())
	}
}

func TestReadOnlyAndOmit(t *testing.T) {
	c := &capture{}
	existing := Record{ID: "old", Cache: "k"}
	got, ok := DeserializeObjectInto(`{"ID":"new","Cache":"c","Note":"n","Value":3}`, existing, c.opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if diff := cmp.Diff(Record{ID: "old", Cache: "k", Value: 3}, got); diff != "" {
		t.Errorf("record (-want +got):\n%s", diff)
	}
	var paths []string
	for _, w := range c.warnings() {
		paths = append(paths, w.Path)
	}
	if diff := cmp.Diff([]string{"$.ID", "$.Cache", "$.Note"}, paths); diff != "" {
		t.Errorf("warning paths (-want +got):\n%s", diff)
	}
}

func TestOmittedMemberInDocument(t *testing.T) {
	type account struct {
		A      string
		Secret string `codec:"-"`
	}
	c := &capture{}
	got, ok := DeserializeObject[account](`{"a":"1","Secret":"leak"}`, c.opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if diff := cmp.Diff(account{A: "1"}, got); diff != "" {
		t.Errorf("account (-want +got):\n%s", diff)
	}
	ws := c.warnings()
	if len(ws) != 1 || ws[0].Path != "$.Secret" || !strings.Contains(ws[0].Message, "not found") {
		t.Errorf("got warnings %v", ws)
	}
}

func TestWarningPathQuoting(t *testing.T) {
	c := &capture{}
	_, ok := DeserializeObject[map[string]int](`{"a.b":"x","ok":[1]}`, c.opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	var paths []string
	for _, w := range c.warnings() {
		paths = append(paths, w.Path)
	}
	if diff := cmp.Diff([]string{"$.'a.b'", "$.ok"}, paths); diff != "" {
		t.Errorf("warning paths (-want +got):\n%s", diff)
	}
}

func TestHooks(t *testing.T) {
	c := &capture{}
	got, ok := DeserializeObject[Hooked](`{"A":2}`, c.opts()...)
	if !ok || got.A != 2 {
		t.Fatalf("got %+v %v", got, ok)
	}
	if diff := cmp.Diff([]string{"A"}, got.Seen); diff != "" {
		t.Errorf("seen (-want +got):\n%s", diff)
	}
	if len(c.warnings()) != 0 {
		t.Errorf("unexpected warnings %v", c.warnings())
	}

	got, ok = DeserializeObject[Hooked](`{"A":-1}`, c.opts()...)
	if !ok || got.A != -1 {
		t.Fatalf("hook error failed the conversion: %+v %v", got, ok)
	}
	if len(c.warnings()) != 1 {
		t.Errorf("got warnings %v", c.warnings())
	}
}

func TestNodeMembers(t *testing.T) {
	type raw struct {
		Doc *ir.Node
		Val ir.Node
	}
	c := &capture{}
	got, ok := DeserializeObject[raw](`{"Doc":{"k":1},"Val":[1,2]}`, c.opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if got.Doc == nil || got.Doc.Type != ir.ObjectType || got.Val.Type != ir.ArrayType {
		t.Fatalf("got %+v", got)
	}
	text, ok := SerializeObject(got, c.opts()...)
	if !ok || text != `{"Doc":{"k":1},"Val":[1,2]}` {
		t.Errorf("got %s %v", text, ok)
	}
}

func TestProperties(t *testing.T) {
	c := &capture{}
	got, ok := DeserializeObject[Temp](`{"celsius":3}`, c.opts()...)
	if !ok || got.Celsius() != 3 {
		t.Errorf("got %v %v", got.Celsius(), ok)
	}
	text, ok := SerializeObject(Temp{c: 21.5}, c.opts()...)
	if !ok || text != `{"Celsius":21.5}` {
		t.Errorf("got %s %v", text, ok)
	}
}

func TestEmbedded(t *testing.T) {
	c := &capture{}
	got, ok := DeserializeObject[Derived](`{"ID":1,"Name":"outer"}`, c.opts()...)
	if !ok {
		t.Fatal("deserialize failed")
	}
	if diff := cmp.Diff(Derived{Base: Base{ID: 1}, Name: "outer"}, got); diff != "" {
		t.Errorf("derived (-want +got):\n%s", diff)
	}
	text, ok := SerializeObject(Derived{Base: Base{ID: 1, Name: "inner"}, Name: "outer", Extra: 2}, c.opts()...)
	if !ok || text != `{"Name":"outer","Extra":2,"ID":1}` {
		t.Errorf("got %s %v", text, ok)
	}

	l, ok := DeserializeObject[Linked](`{"ID":3}`, c.opts()...)
	if !ok || l.Base == nil || l.ID != 3 {
		t.Errorf("embedded pointer not allocated: %+v %v", l, ok)
	}
	text, ok = SerializeObject(Linked{X: 1}, c.opts()...)
	if !ok || text != `{"X":1,"ID":0,"Name":""}` {
		t.Errorf("got %s %v", text, ok)
	}
}

func TestEnumInput(t *testing.T) {
	for _, tc := range []struct {
		text     string
		want     Color
		warnings int
	}{
		{`1`, Blue, 0},
		{`"BLUE"`, Blue, 0},
		{`"Navy"`, Blue, 0},
		{`"green"`, Red, 1},
		{`7`, Red, 1},
	} {
		c := &capture{}
		got, ok := DeserializeObject[Color](tc.text, c.opts()...)
		if !ok || got != tc.want {
			t.Errorf("%s: got %v %v", tc.text, got, ok)
		}
		if len(c.warnings()) != tc.warnings {
			t.Errorf("%s: got warnings %v", tc.text, c.warnings())
		}
	}
	m, ok := DeserializeObject[Mode](`"LAZY"`, (&capture{}).opts()...)
	if !ok || m != "slow" {
		t.Errorf("got %q %v", m, ok)
	}
}

func TestInvalidTag(t *testing.T) {
	type badTag struct {
		A int `codec:"bogus=1"`
	}
	c := &capture{}
	if _, ok := DeserializeObject[badTag](`{"A":1}`, c.opts()...); ok {
		t.Error("invalid tag accepted on deserialize")
	}
	text, ok := SerializeObject(badTag{A: 1}, c.opts()...)
	if ok || text != "{}" {
		t.Errorf("got %s %v", text, ok)
	}
}
