package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ntree/internal/dataset"
	"github.com/san-kum/ntree/internal/partition"
)

const (
	BoundsFit  = "fit"
	BoundsAuto = "auto"

	DefaultCanvasWidth  = 60
	DefaultCanvasHeight = 24
	DefaultSVGSize      = 640
)

type Config struct {
	Dataset dataset.Params `yaml:"dataset"`
	Input   string         `yaml:"input,omitempty"`
	Bounds  BoundsConfig   `yaml:"bounds"`
	Build   BuildConfig    `yaml:"build"`
	Render  RenderConfig   `yaml:"render"`
}

// BoundsConfig selects the root region. Mode "auto" uses the mean center and
// 2*max+1 width; "fit" encloses the bounding box. Center and Width override
// either mode; a zero Width means "not set".
type BoundsConfig struct {
	Mode   string    `yaml:"mode"`
	Center []float64 `yaml:"center,omitempty"`
	Width  float64   `yaml:"width,omitempty"`
}

type BuildConfig struct {
	MaxDepth      int `yaml:"max_depth"`
	ParallelDepth int `yaml:"parallel_depth"`
}

type RenderConfig struct {
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	SVGSize   int  `yaml:"svg_size"`
	AxisX     int  `yaml:"axis_x"`
	AxisY     int  `yaml:"axis_y"`
	ShowRadii bool `yaml:"show_radii"`
}

func DefaultConfig() *Config {
	return &Config{
		Dataset: dataset.DefaultParams(),
		Bounds:  BoundsConfig{Mode: BoundsFit},
		Build: BuildConfig{
			MaxDepth: partition.DefaultMaxDepth,
		},
		Render: RenderConfig{
			Width:     DefaultCanvasWidth,
			Height:    DefaultCanvasHeight,
			SVGSize:   DefaultSVGSize,
			AxisX:     0,
			AxisY:     1,
			ShowRadii: true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Input == "" {
		if err := c.Dataset.Validate(); err != nil {
			return err
		}
	}
	if c.Bounds.Mode != BoundsFit && c.Bounds.Mode != BoundsAuto {
		return fmt.Errorf("config: bounds mode must be %q or %q, got %q", BoundsFit, BoundsAuto, c.Bounds.Mode)
	}
	if c.Build.MaxDepth < 1 {
		return fmt.Errorf("config: max_depth must be at least 1, got %d", c.Build.MaxDepth)
	}
	if c.Build.ParallelDepth < 0 {
		return fmt.Errorf("config: parallel_depth must be non-negative, got %d", c.Build.ParallelDepth)
	}
	if c.Render.Width < 1 || c.Render.Height < 1 || c.Render.SVGSize < 1 {
		return fmt.Errorf("config: render sizes must be positive")
	}
	if c.Render.AxisX < 0 || c.Render.AxisY < 0 || c.Render.AxisX == c.Render.AxisY {
		return fmt.Errorf("config: render axes must be distinct and non-negative, got %d and %d", c.Render.AxisX, c.Render.AxisY)
	}
	return nil
}

// Objects loads the input CSV when set, otherwise generates the dataset.
func (c *Config) Objects() (partition.ObjectSet, error) {
	if c.Input != "" {
		return dataset.LoadCSV(c.Input)
	}
	return dataset.Generate(c.Dataset)
}

// Options translates the bounds and build sections into partition options.
func (c *Config) Options(objs partition.ObjectSet) []partition.Option {
	var opts []partition.Option
	if c.Bounds.Mode == BoundsFit {
		switch {
		case len(c.Bounds.Center) == 0:
			opts = append(opts, partition.WithRegion(partition.FitRegion(objs.Positions)))
		case c.Bounds.Width == 0:
			// A fixed center needs a width fitted around it, not around
			// the bounding box.
			opts = append(opts, partition.WithRegion(partition.FitAround(objs.Positions, c.Bounds.Center)))
		}
	}
	if len(c.Bounds.Center) > 0 {
		opts = append(opts, partition.WithCenter(c.Bounds.Center))
	}
	if c.Bounds.Width != 0 {
		opts = append(opts, partition.WithWidth(c.Bounds.Width))
	}
	return append(opts,
		partition.WithMaxDepth(c.Build.MaxDepth),
		partition.WithParallelDepth(c.Build.ParallelDepth),
	)
}
