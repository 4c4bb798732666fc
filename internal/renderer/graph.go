package renderer

import (
	"fmt"
	"strconv"
	"strings"
)

// Option is one filter parameter. An empty Key marks a positional value.
type Option struct {
	Key   string
	Value string
}

// Filter is a single filter stage with its options in emission order.
type Filter struct {
	Name    string
	Options []Option
}

// NewFilter starts a filter stage.
func NewFilter(name string) Filter {
	return Filter{Name: name}
}

// Set appends key=value.
func (f Filter) Set(key string, v any) Filter {
	f.Options = append(append([]Option(nil), f.Options...), Option{Key: key, Value: Format(v)})
	return f
}

// Expr appends key='expr'. Expressions may contain commas.
func (f Filter) Expr(key, expr string) Filter {
	return f.Set(key, "'"+expr+"'")
}

// Path appends a file path option, escaped for the filter syntax.
func (f Filter) Path(key, path string) Filter {
	return f.Set(key, "'"+EscapePath(path)+"'")
}

// Arg appends a positional value.
func (f Filter) Arg(v any) Filter {
	return f.Set("", v)
}

// Get returns the raw value of key.
func (f Filter) Get(key string) (string, bool) {
	for _, o := range f.Options {
		if o.Key == key {
			return o.Value, true
		}
	}
	return "", false
}

func (f Filter) String() string {
	if len(f.Options) == 0 {
		return f.Name
	}
	parts := make([]string, len(f.Options))
	for i, o := range f.Options {
		if o.Key == "" {
			parts[i] = o.Value
		} else {
			parts[i] = o.Key + "=" + o.Value
		}
	}
	return f.Name + "=" + strings.Join(parts, ":")
}

// Chain is a linear run of filters between labelled pads.
type Chain struct {
	Inputs  []string
	Filters []Filter
	Outputs []string
}

func (c Chain) String() string {
	var b strings.Builder
	for _, in := range c.Inputs {
		b.WriteString("[" + in + "]")
	}
	for i, f := range c.Filters {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.String())
	}
	for _, out := range c.Outputs {
		b.WriteString("[" + out + "]")
	}
	return b.String()
}

// Graph is a filter_complex description built from chains.
type Graph struct {
	Chains []Chain
}

// Add appends a chain.
func (g *Graph) Add(c Chain) {
	g.Chains = append(g.Chains, c)
}

// Filters returns every filter with the given name, in graph order.
func (g Graph) Filters(name string) []Filter {
	var out []Filter
	for _, c := range g.Chains {
		for _, f := range c.Filters {
			if f.Name == name {
				out = append(out, f)
			}
		}
	}
	return out
}

func (g Graph) String() string {
	parts := make([]string, len(g.Chains))
	for i, c := range g.Chains {
		parts[i] = c.String()
	}
	return strings.Join(parts, ";")
}

// Validate checks that every intermediate label is produced before it is
// consumed, consumed exactly once, and that the sinks are exactly the given labels.
// Stream specifiers such as "0:v" are treated as graph inputs.
func (g Graph) Validate(sinks ...string) error {
	produced := map[string]bool{}
	consumed := map[string]bool{}
	for i, c := range g.Chains {
		if len(c.Filters) == 0 {
			return fmt.Errorf("chain %d has no filters", i)
		}
		for _, in := range c.Inputs {
			if strings.Contains(in, ":") {
				continue
			}
			if !produced[in] {
				return fmt.Errorf("chain %d consumes [%s] before it is produced", i, in)
			}
			if consumed[in] {
				return fmt.Errorf("label [%s] consumed twice", in)
			}
			consumed[in] = true
		}
		for _, out := range c.Outputs {
			if produced[out] {
				return fmt.Errorf("label [%s] produced twice", out)
			}
			produced[out] = true
		}
	}

	want := map[string]bool{}
	for _, s := range sinks {
		want[s] = true
		if !produced[s] || consumed[s] {
			return fmt.Errorf("sink [%s] is not a graph output", s)
		}
	}
	for label := range produced {
		if !consumed[label] && !want[label] {
			return fmt.Errorf("label [%s] is never consumed", label)
		}
	}
	return nil
}

// Format renders a numeric or string option value.
func Format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}

// EscapePath escapes a file path for use inside a quoted filter option.
func EscapePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "\\\\")
	path = strings.ReplaceAll(path, ":", "\\:")
	path = strings.ReplaceAll(path, "'", "'\\''")
	return path
}
