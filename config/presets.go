package config

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

var ground = BodySpec{
	Name: "ground", Type: "static",
	Shape:    ShapeSpec{Kind: "plane", Normal: mgl64.Vec3{0, 1, 0}},
	Friction: 0.5,
}

var presets = map[string]func() *Config{
	// A tilted box dropped on the ground
	"drop": func() *Config {
		cfg := Default()
		cfg.Steps = 240
		cfg.Bodies = []BodySpec{
			ground,
			{
				Name: "box", Type: "dynamic",
				Shape:    ShapeSpec{Kind: "box", HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
				Position: mgl64.Vec3{0, 4, 0},
				Rotation: &RotationSpec{Axis: mgl64.Vec3{1, 0, 1}, Angle: 0.4},
				Friction: 0.5,
			},
		}
		return cfg
	},
	// A column of boxes settling on the ground
	"stack": func() *Config {
		cfg := Default()
		cfg.Steps = 300
		cfg.Settings.Iterations = 8
		cfg.Bodies = []BodySpec{ground}
		for i := range 5 {
			cfg.Bodies = append(cfg.Bodies, BodySpec{
				Name: fmt.Sprintf("box%d", i), Type: "dynamic",
				Shape:    ShapeSpec{Kind: "box", HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
				Position: mgl64.Vec3{0, 0.5 + float64(i)*1.01, 0},
				Friction: 0.6,
			})
		}
		return cfg
	},
	// A striker hitting a row of touching spheres, without gravity
	"newton": func() *Config {
		cfg := Default()
		cfg.Steps = 120
		cfg.Settings.Gravity = mgl64.Vec3{}
		cfg.Settings.Iterations = 8
		cfg.Bodies = []BodySpec{{
			Name: "striker", Type: "dynamic",
			Shape:       ShapeSpec{Kind: "sphere", Radius: 0.5},
			Position:    mgl64.Vec3{-2, 0, 0},
			Velocity:    mgl64.Vec3{3, 0, 0},
			Mass:        1,
			Restitution: 1,
		}}
		for i := range 4 {
			cfg.Bodies = append(cfg.Bodies, BodySpec{
				Name: fmt.Sprintf("ball%d", i), Type: "dynamic",
				Shape:       ShapeSpec{Kind: "sphere", Radius: 0.5},
				Position:    mgl64.Vec3{float64(i) * 1.001, 0, 0},
				Mass:        1,
				Restitution: 1,
			})
		}
		return cfg
	},
}

// Preset returns a fresh copy of a built-in scene
func Preset(name string) (*Config, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	return build(), nil
}

// ListPresets returns the preset names, sorted
func ListPresets() []string {
	return slices.Sorted(maps.Keys(presets))
}
