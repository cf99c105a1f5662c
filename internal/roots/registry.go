package roots

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrUnknownFunction = errors.New("roots: unknown function")

type Entry struct {
	Name    string
	Formula string
	Fn      Func
}

var registry = map[string]Entry{
	"f": {
		Name:    "f",
		Formula: "x^2 - 8 ln(x)",
		Fn:      func(x float64) float64 { return x*x - 8*math.Log(x) },
	},
	"g": {
		Name:    "g",
		Formula: "x^3 - 3",
		Fn:      func(x float64) float64 { return x*x*x - 3 },
	},
	"square4": {
		Name:    "square4",
		Formula: "x^2 - 4",
		Fn:      func(x float64) float64 { return x*x - 4 },
	},
	"cosx": {
		Name:    "cosx",
		Formula: "cos(x) - x",
		Fn:      func(x float64) float64 { return math.Cos(x) - x },
	},
}

func Lookup(name string) (Entry, error) {
	e, ok := registry[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return e, nil
}

func List() []Entry {
	entries := make([]Entry, 0, len(registry))
	for _, e := range registry {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
