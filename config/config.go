package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/akmonengine/anna"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt      = 1.0 / 60
	DefaultSteps   = 300
	DefaultDensity = 1.0
)

var (
	ErrUnknownBodyType = errors.New("config: unknown body type")
	ErrUnknownShape    = errors.New("config: unknown shape")
	ErrUnknownLock     = errors.New("config: unknown lock axis")
	ErrUnknownMotion   = errors.New("config: unknown motion type")
	ErrUnknownPreset   = errors.New("config: unknown preset")
	ErrLayerRange      = errors.New("config: layer out of range")
)

// Config is a scene file: world settings, bodies and exclusion rules
type Config struct {
	Settings   SettingsConfig  `yaml:"settings"`
	Bodies     []BodySpec      `yaml:"bodies"`
	Exclusions []ExclusionSpec `yaml:"exclusions,omitempty"`
	Steps      int             `yaml:"steps"`
	Dt         float64         `yaml:"dt"`
}

// SettingsConfig mirrors anna.Settings
type SettingsConfig struct {
	Gravity        mgl64.Vec3 `yaml:"gravity"`
	Substeps       int        `yaml:"substeps"`
	Iterations     int        `yaml:"iterations"`
	Workers        int        `yaml:"workers"`
	LinearDamping  float64    `yaml:"linear_damping"`
	AngularDamping float64    `yaml:"angular_damping"`
	Frequency      float64    `yaml:"frequency"`
	DampingRatio   float64    `yaml:"damping_ratio"`

	MaxDepenetrationBody   float64 `yaml:"max_depenetration_body"`
	MaxDepenetrationStatic float64 `yaml:"max_depenetration_static"`
	RestitutionThreshold   float64 `yaml:"restitution_threshold"`

	CellSize       float64 `yaml:"cell_size"`
	Cells          int     `yaml:"cells"`
	Buckets        int     `yaml:"buckets"`
	ClippingFactor float64 `yaml:"clipping_factor"`
}

type BodySpec struct {
	Name     string        `yaml:"name"`
	Type     string        `yaml:"type"` // dynamic, kinematic or static
	Shape    ShapeSpec     `yaml:"shape"`
	Position mgl64.Vec3    `yaml:"position"`
	Rotation *RotationSpec `yaml:"rotation,omitempty"`

	Velocity        mgl64.Vec3 `yaml:"velocity,omitempty"`
	AngularVelocity mgl64.Vec3 `yaml:"angular_velocity,omitempty"`

	// Mass overrides the mass computed from Density when positive
	Density     float64 `yaml:"density,omitempty"`
	Mass        float64 `yaml:"mass,omitempty"`
	Friction    float64 `yaml:"friction,omitempty"`
	Restitution float64 `yaml:"restitution,omitempty"`

	Layer           uint16      `yaml:"layer,omitempty"`
	GravityScale    *float64    `yaml:"gravity_scale,omitempty"`
	GravityOverride *mgl64.Vec3 `yaml:"gravity_override,omitempty"`
	// Lock lists locked axes: x, y, z, rx, ry, rz, position, rotation or all
	Lock []string `yaml:"lock,omitempty"`
}

type ShapeSpec struct {
	Kind        string     `yaml:"kind"` // box, sphere or plane
	HalfExtents mgl64.Vec3 `yaml:"half_extents,omitempty"`
	Radius      float64    `yaml:"radius,omitempty"`
	Normal      mgl64.Vec3 `yaml:"normal,omitempty"`
	Distance    float64    `yaml:"distance,omitempty"`
}

// RotationSpec is an angle in radians about an axis
type RotationSpec struct {
	Axis  mgl64.Vec3 `yaml:"axis"`
	Angle float64    `yaml:"angle"`
}

type SelectorSpec struct {
	Layers  []uint16 `yaml:"layers,omitempty"`
	Motions []string `yaml:"motions,omitempty"`
}

type ExclusionSpec struct {
	A SelectorSpec `yaml:"a"`
	B SelectorSpec `yaml:"b"`
}

// Default returns an empty scene with the default world settings
func Default() *Config {
	s := anna.DefaultSettings()
	return &Config{
		Settings: SettingsConfig{
			Gravity:                s.Gravity,
			Substeps:               s.Substeps,
			Iterations:             s.Iterations,
			Workers:                s.Workers,
			LinearDamping:          s.LinearDamping,
			AngularDamping:         s.AngularDamping,
			Frequency:              s.Frequency,
			DampingRatio:           s.DampingRatio,
			MaxDepenetrationBody:   s.MaxDepenetrationBody,
			MaxDepenetrationStatic: s.MaxDepenetrationStatic,
			RestitutionThreshold:   s.RestitutionThreshold,
			CellSize:               s.CellSize,
			Cells:                  s.Cells,
			Buckets:                s.Buckets,
			ClippingFactor:         s.ClippingFactor,
		},
		Steps: DefaultSteps,
		Dt:    DefaultDt,
	}
}

// Parse decodes a scene over the defaults
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: save %s: %w", path, err)
	}
	return nil
}

// WorldSettings converts the settings section
func (c *Config) WorldSettings() anna.Settings {
	s := c.Settings
	return anna.Settings{
		Gravity:                s.Gravity,
		Substeps:               s.Substeps,
		Iterations:             s.Iterations,
		Workers:                s.Workers,
		LinearDamping:          s.LinearDamping,
		AngularDamping:         s.AngularDamping,
		Frequency:              s.Frequency,
		DampingRatio:           s.DampingRatio,
		MaxDepenetrationBody:   s.MaxDepenetrationBody,
		MaxDepenetrationStatic: s.MaxDepenetrationStatic,
		RestitutionThreshold:   s.RestitutionThreshold,
		CellSize:               s.CellSize,
		Cells:                  s.Cells,
		Buckets:                s.Buckets,
		ClippingFactor:         s.ClippingFactor,
	}
}
