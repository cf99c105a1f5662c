package integrators

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/lvfit/internal/dynamo"
)

var ErrUnknownIntegrator = errors.New("integrators: unknown integrator")

const Default = "euler"

var registry = map[string]func() dynamo.Integrator{
	"euler": func() dynamo.Integrator { return NewEuler() },
	"rk4":   func() dynamo.Integrator { return NewRK4() },
}

// Get returns a fresh integrator by name. RK4 keeps scratch buffers, so each
// caller needs its own instance.
func Get(name string) (dynamo.Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegrator, name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
