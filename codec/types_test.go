package codec

import (
	"errors"
	"log/slog"
	"reflect"
	"sync"

	"github.com/signadot/graphcodec/ir"
)

type Person struct {
	Name string `codec:"field=name"`
	Age  int    `codec:"field=age"`
}

type Pair struct {
	A string `codec:"field=a"`
	B string `codec:"field=b"`
}

type Color int

const (
	Red Color = iota
	Blue
)

func (Color) EnumValues() []EnumValue {
	return []EnumValue{
		{Name: "Red", Value: int64(Red)},
		{Name: "Blue", Value: int64(Blue), Aliases: []string{"navy"}},
	}
}

type Mode string

func (*Mode) EnumValues() []EnumValue {
	return []EnumValue{
		{Name: "fast"},
		{Name: "slow", Aliases: []string{"lazy"}},
	}
}

type Inner struct {
	X, Y int
}

type Outer struct {
	In   *Inner
	Vals Inner
}

type Conf struct {
	Port int      `codec:"default=8080"`
	Name string   `codec:"default=anon"`
	Tags []string `codec:"default='[\"a\",\"b\"]'"`
	Sub  Sub
}

type Sub struct {
	Level int `codec:"default=3"`
}

type Record struct {
	ID    string `codec:"readonly"`
	Cache string `codec:"-"`
	Note  string `codec:"omit"`
	Value int
}

type Hooked struct {
	A    int
	Seen []string `codec:"-"`
}

func (h *Hooked) ReadNode(node *ir.Node) error {
	for _, f := range node.Fields {
		h.Seen = append(h.Seen, f.String)
	}
	if h.A < 0 {
		return errors.New("negative")
	}
	return nil
}

func (h *Hooked) WriteNode(node *ir.Node) error {
	node.Set("double", ir.FromInt(int64(h.A*2)))
	if h.A < 0 {
		return errors.New("negative")
	}
	return nil
}

type Temp struct {
	c float64
}

func (t *Temp) Celsius() float64     { return t.c }
func (t *Temp) SetCelsius(v float64) { t.c = v }

type Base struct {
	ID   int
	Name string
}

type Derived struct {
	Base
	Name  string
	Extra int
}

type Linked struct {
	*Base
	X int
}

// capture collects the warnings delivered to the diagnostics hook.
type capture struct {
	mu sync.Mutex
	ws []Warning
}

func (c *capture) hook(_ string, _ reflect.Type, ws []Warning) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws = append(c.ws, ws...)
}

func (c *capture) warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Warning(nil), c.ws...)
}

func (c *capture) opts(more ...Option) []Option {
	return append([]Option{
		WithLogger(slog.New(slog.DiscardHandler)),
		WithDiagnosticsHook(c.hook),
	}, more...)
}
