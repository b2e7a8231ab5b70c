package config

import "sort"

var Presets = map[string]*Config{
	"quadtree": preset("uniform", 64, 2),
	"octree":   preset("uniform", 256, 3),
	"clusters": preset("cluster", 200, 2),
	"ring":     preset("ring", 96, 2),
	"lattice":  preset("grid", 64, 2),
	"stacked":  preset("coincident", 30, 2),
	"hyper":    preset("uniform", 128, 4),
}

func preset(kind string, count, dim int) *Config {
	cfg := DefaultConfig()
	cfg.Dataset.Kind = kind
	cfg.Dataset.Count = count
	cfg.Dataset.Dim = dim
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.Bounds.Center = append([]float64(nil), cfg.Bounds.Center...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
