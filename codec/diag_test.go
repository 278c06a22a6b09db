package codec

import (
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiagnostics(t *testing.T) {
	d := &Diagnostics{}
	d.Warnf("$.a", "bad %d", 1)
	d.Warnf("", "global")
	if d.Len() != 2 {
		t.Fatalf("got %d", d.Len())
	}
	if diff := cmp.Diff([]string{"$.a: bad 1", "global"}, d.Strings()); diff != "" {
		t.Errorf("strings (-want +got):\n%s", diff)
	}
	ws := d.Warnings()
	ws[0].Message = "changed"
	if d.Warnings()[0].Message != "bad 1" {
		t.Error("Warnings shares storage")
	}

	buf := &strings.Builder{}
	logger := slog.New(slog.NewTextHandler(buf, nil))
	flushed := d.Flush(logger, "deserialize", reflect.TypeFor[Person]())
	if len(flushed) != 2 || d.Len() != 0 {
		t.Errorf("flushed %v, left %d", flushed, d.Len())
	}
	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected a single record: %s", out)
	}
	for _, want := range []string{"conversion warnings", "op=deserialize", "type=codec.Person", "count=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}

	buf.Reset()
	if got := d.Flush(logger, "deserialize", nil); got != nil || buf.Len() != 0 {
		t.Errorf("empty flush logged %q", buf.String())
	}

	d.Warnf("", "x")
	d.Reset()
	if d.Len() != 0 {
		t.Error("Reset kept warnings")
	}
}
