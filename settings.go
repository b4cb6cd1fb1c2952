package anna

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/akmonengine/anna/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultSubsteps       = 1
	DefaultIterations     = 8
	DefaultWorkers        = 1
	DefaultCellSize       = 2.0
	DefaultCells          = 1024
	DefaultBuckets        = 16
	DefaultClippingFactor = 0.5
)

// Settings are the global parameters of a World
type Settings struct {
	// Gravity acceleration (m/s², or N/kg)
	Gravity    mgl64.Vec3
	Substeps   int
	// Iterations per substep. Stacks of several boxes need at least 8.
	Iterations int
	// Workers bounds the goroutines of every parallel stage
	Workers int

	// LinearDamping and AngularDamping remove a fraction of the velocity per second
	LinearDamping  float64
	AngularDamping float64

	// Frequency (Hz) and DampingRatio set the stiffness of the axis locks
	Frequency    float64
	DampingRatio float64

	MaxDepenetrationBody   float64
	MaxDepenetrationStatic float64
	RestitutionThreshold   float64

	// CellSize and Cells size the broadphase grid, Buckets the parallel partition
	CellSize float64
	Cells    int
	Buckets  int

	// ClippingFactor scales the gravity step below which the stabilizer clips
	ClippingFactor float64

	Logger *slog.Logger
}

// DefaultSettings returns earth gravity and the default solver parameters
func DefaultSettings() Settings {
	return Settings{
		Gravity:                mgl64.Vec3{0, -9.81, 0},
		Substeps:               DefaultSubsteps,
		Iterations:             DefaultIterations,
		Workers:                DefaultWorkers,
		Frequency:              constraint.DefaultFrequency,
		DampingRatio:           constraint.DefaultDampingRatio,
		MaxDepenetrationBody:   constraint.DefaultMaxDepenetrationBody,
		MaxDepenetrationStatic: constraint.DefaultMaxDepenetrationStatic,
		RestitutionThreshold:   constraint.DefaultRestitutionThreshold,
		CellSize:               DefaultCellSize,
		Cells:                  DefaultCells,
		Buckets:                DefaultBuckets,
		ClippingFactor:         DefaultClippingFactor,
	}
}

// WithLogger returns a copy of the settings logging to logger
func (s Settings) WithLogger(logger *slog.Logger) Settings {
	s.Logger = logger
	return s
}

// Validate reports the first invalid field wrapped in ErrInvalidSettings
func (s Settings) Validate() error {
	for i := range 3 {
		if math.IsNaN(s.Gravity[i]) || math.IsInf(s.Gravity[i], 0) {
			return fmt.Errorf("%w: gravity %v", ErrInvalidSettings, s.Gravity)
		}
	}

	positive := []struct {
		name  string
		value int
	}{
		{"substeps", s.Substeps},
		{"iterations", s.Iterations},
		{"workers", s.Workers},
		{"cells", s.Cells},
		{"buckets", s.Buckets},
	}
	for _, field := range positive {
		if field.value < 1 {
			return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalidSettings, field.name, field.value)
		}
	}

	if !(s.CellSize > 0) {
		return fmt.Errorf("%w: cell size must be positive, got %v", ErrInvalidSettings, s.CellSize)
	}
	if !(s.Frequency > 0) || !(s.DampingRatio >= 0) {
		return fmt.Errorf("%w: stiffness %v Hz, damping ratio %v", ErrInvalidSettings, s.Frequency, s.DampingRatio)
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"linear damping", s.LinearDamping},
		{"angular damping", s.AngularDamping},
		{"max depenetration body", s.MaxDepenetrationBody},
		{"max depenetration static", s.MaxDepenetrationStatic},
		{"restitution threshold", s.RestitutionThreshold},
		{"clipping factor", s.ClippingFactor},
	}
	for _, field := range nonNegative {
		if !(field.value >= 0) {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidSettings, field.name, field.value)
		}
	}
	return nil
}

// FrameConstants are derived once per substep and shared by every stage
type FrameConstants struct {
	Dt         float64
	InvDt      float64
	Substeps   int
	Iterations int
	Tau        float64
	Damping    float64
	Gravity    mgl64.Vec3

	MaxDepenetrationBody   float64
	MaxDepenetrationStatic float64
	RestitutionThreshold   float64
}

func (s Settings) frameConstants(h float64) FrameConstants {
	tau, damping := constraint.TauAndDamping(s.Frequency, s.DampingRatio, h, s.Iterations)
	return FrameConstants{
		Dt:                     h,
		InvDt:                  1 / h,
		Substeps:               s.Substeps,
		Iterations:             s.Iterations,
		Tau:                    tau,
		Damping:                damping,
		Gravity:                s.Gravity,
		MaxDepenetrationBody:   s.MaxDepenetrationBody,
		MaxDepenetrationStatic: s.MaxDepenetrationStatic,
		RestitutionThreshold:   s.RestitutionThreshold,
	}
}

// Step returns the constants used by the solve routines
func (c FrameConstants) Step() constraint.Step {
	return constraint.Step{Dt: c.Dt, InvDt: c.InvDt, Tau: c.Tau, Damping: c.Damping}
}
