package fake

import "math/rand"

// Generator produces random JSON values shaped like encoding/json output: nil, bool,
// float64, string, []any and map[string]any.
type Generator struct {
	r        *rand.Rand
	MaxDepth int
	// Keys is the pool object keys are drawn from. A small pool makes samples share
	// properties.
	Keys []string
}

func New(seed int64) *Generator {
	return &Generator{
		r:        rand.New(rand.NewSource(seed)),
		MaxDepth: 4,
		Keys:     []string{"id", "name", "tags", "meta", "count", "ratio", "ok", "items"},
	}
}

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func String(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// Value returns a random value of any JSON type.
func (g *Generator) Value() any {
	return g.value(0)
}

// Object returns a random object.
func (g *Generator) Object() map[string]any {
	return g.object(0)
}

// Values returns n random values.
func (g *Generator) Values(n int) []any {
	vs := make([]any, n)
	for i := range vs {
		vs[i] = g.Value()
	}
	return vs
}

func (g *Generator) value(depth int) any {
	n := g.r.Intn(9)
	if depth >= g.MaxDepth {
		n = g.r.Intn(5)
	}
	switch n {
	case 0:
		return nil
	case 1:
		return g.r.Intn(2) == 0
	case 2:
		return float64(g.r.Intn(1000))
	case 3:
		return float64(g.r.Intn(1000)) + 0.5
	case 4:
		return g.string(1 + g.r.Intn(8))
	case 5, 6:
		return g.array(depth)
	}
	return g.object(depth)
}

func (g *Generator) array(depth int) []any {
	arr := make([]any, g.r.Intn(4))
	for i := range arr {
		arr[i] = g.value(depth + 1)
	}
	return arr
}

func (g *Generator) object(depth int) map[string]any {
	nkeys := g.r.Intn(len(g.Keys) / 2)
	obj := make(map[string]any, nkeys)
	for i := 0; i < nkeys; i++ {
		obj[g.Keys[g.r.Intn(len(g.Keys))]] = g.value(depth + 1)
	}
	return obj
}

func (g *Generator) string(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[g.r.Intn(len(letters))]
	}
	return string(b)
}
