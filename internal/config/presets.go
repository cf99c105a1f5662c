package config

import (
	"sort"

	"github.com/san-kum/lvfit/internal/fit"
)

var Presets = map[string]func() fit.Grid{
	"coarse": fit.DefaultGrid,
	"fine": func() fit.Grid {
		axis := func() []float64 {
			vals := make([]float64, 8)
			for i := range vals {
				vals[i] = float64(i+1) / 6
			}
			return vals
		}
		return fit.Grid{Alpha: axis(), Beta: axis(), Gamma: axis(), Delta: axis()}
	},
	"unit": func() fit.Grid {
		return fit.Grid{Alpha: []float64{1}, Beta: []float64{1}, Gamma: []float64{1}, Delta: []float64{1}}
	},
}

// GetPreset returns a fresh copy of the named grid.
func GetPreset(name string) (fit.Grid, bool) {
	fn, ok := Presets[name]
	if !ok {
		return fit.Grid{}, false
	}
	return fn(), true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
