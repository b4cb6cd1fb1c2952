package config

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/akmonengine/anna"
	"github.com/akmonengine/anna/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Scene is a built scene, ready to be added to a world
type Scene struct {
	Settings   anna.Settings
	Bodies     []*actor.RigidBody
	Names      []string
	Exclusions []anna.ExclusionRule
	Steps      int
	Dt         float64
}

// Build validates the scene and creates its bodies
func (c *Config) Build() (*Scene, error) {
	settings := c.WorldSettings()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if !(c.Dt > 0) {
		return nil, fmt.Errorf("config: dt must be positive, got %v", c.Dt)
	}

	scene := &Scene{Settings: settings, Steps: c.Steps, Dt: c.Dt}
	for i, spec := range c.Bodies {
		body, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("config: body %d %q: %w", i, spec.Name, err)
		}
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("body%d", i)
		}
		scene.Bodies = append(scene.Bodies, body)
		scene.Names = append(scene.Names, name)
	}

	for i, spec := range c.Exclusions {
		a, err := spec.A.build()
		if err != nil {
			return nil, fmt.Errorf("config: exclusion %d: %w", i, err)
		}
		b, err := spec.B.build()
		if err != nil {
			return nil, fmt.Errorf("config: exclusion %d: %w", i, err)
		}
		scene.Exclusions = append(scene.Exclusions, anna.ExclusionRule{A: a, B: b})
	}
	return scene, nil
}

// World creates a world logging to logger and holding the scene bodies.
// The handles are in body order.
func (s *Scene) World(logger *slog.Logger) (*anna.World, []actor.Handle, error) {
	w, err := anna.NewWorld(s.Settings.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	w.SetIntegrator(anna.SemiImplicitEuler{})
	for _, rule := range s.Exclusions {
		w.Exclude(rule)
	}

	handles := make([]actor.Handle, len(s.Bodies))
	for i, body := range s.Bodies {
		handles[i] = w.AddBody(body)
	}
	return w, handles, nil
}

func parseBodyType(name string) (actor.BodyType, error) {
	switch name {
	case "", "dynamic":
		return actor.BodyTypeDynamic, nil
	case "kinematic":
		return actor.BodyTypeKinematic, nil
	case "static":
		return actor.BodyTypeStatic, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownBodyType, name)
}

func (s ShapeSpec) build() (actor.Shape, error) {
	switch s.Kind {
	case "box":
		if s.HalfExtents.X() <= 0 || s.HalfExtents.Y() <= 0 || s.HalfExtents.Z() <= 0 {
			return nil, fmt.Errorf("%w: box half extents %v", ErrUnknownShape, s.HalfExtents)
		}
		return &actor.Box{HalfExtents: s.HalfExtents}, nil
	case "sphere":
		if s.Radius <= 0 {
			return nil, fmt.Errorf("%w: sphere radius %v", ErrUnknownShape, s.Radius)
		}
		return &actor.Sphere{Radius: s.Radius}, nil
	case "plane":
		normal := s.Normal
		if normal.Len() < 1e-9 {
			normal = mgl64.Vec3{0, 1, 0}
		}
		return &actor.Plane{Normal: normal.Normalize(), Distance: s.Distance}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownShape, s.Kind)
}

var lockNames = map[string]actor.LockAxes{
	"x":        actor.LockPositionX,
	"y":        actor.LockPositionY,
	"z":        actor.LockPositionZ,
	"rx":       actor.LockRotationX,
	"ry":       actor.LockRotationY,
	"rz":       actor.LockRotationZ,
	"position": actor.LockPosition,
	"rotation": actor.LockRotation,
	"all":      actor.LockAll,
}

func parseLock(names []string) (actor.LockAxes, error) {
	var lock actor.LockAxes
	for _, name := range names {
		axes, ok := lockNames[name]
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrUnknownLock, name)
		}
		lock |= axes
	}
	return lock, nil
}

func (b BodySpec) build() (*actor.RigidBody, error) {
	bodyType, err := parseBodyType(b.Type)
	if err != nil {
		return nil, err
	}
	shape, err := b.Shape.build()
	if err != nil {
		return nil, err
	}
	if shape.Type() == actor.ShapeTypePlane && bodyType == actor.BodyTypeDynamic {
		return nil, fmt.Errorf("%w: a plane cannot be dynamic", ErrUnknownShape)
	}
	lock, err := parseLock(b.Lock)
	if err != nil {
		return nil, err
	}

	rotation := mgl64.QuatIdent()
	if b.Rotation != nil && b.Rotation.Axis.Len() > 1e-9 {
		rotation = mgl64.QuatRotate(b.Rotation.Angle, b.Rotation.Axis.Normalize())
	}

	density := b.Density
	if density == 0 {
		density = DefaultDensity
	}

	body := actor.NewRigidBody(actor.NewTransformAt(b.Position, rotation), shape, bodyType, density)
	if b.Mass > 0 {
		body.SetMass(b.Mass)
	}
	body.Velocity = b.Velocity
	body.AngularVelocity = b.AngularVelocity
	body.Material.Friction = b.Friction
	body.Material.Restitution = b.Restitution
	if b.Layer > actor.MaxLayer {
		return nil, fmt.Errorf("%w: %d > %d", ErrLayerRange, b.Layer, actor.MaxLayer)
	}
	body.Layer = b.Layer
	body.LockAxes = lock
	body.GravityOverride = b.GravityOverride
	if b.GravityScale != nil {
		if math.IsNaN(*b.GravityScale) {
			return nil, fmt.Errorf("config: gravity scale is NaN")
		}
		body.GravityScale = *b.GravityScale
	}
	return body, nil
}

var motionNames = map[string]actor.BodyTypeMask{
	"dynamic":   actor.MaskDynamic,
	"kinematic": actor.MaskKinematic,
	"static":    actor.MaskStatic,
}

func (s SelectorSpec) build() (anna.Selector, error) {
	for _, layer := range s.Layers {
		if layer > actor.MaxLayer {
			return anna.Selector{}, fmt.Errorf("%w: %d > %d", ErrLayerRange, layer, actor.MaxLayer)
		}
	}
	selector := anna.Selector{Layers: s.Layers}
	for _, name := range s.Motions {
		mask, ok := motionNames[name]
		if !ok {
			return anna.Selector{}, fmt.Errorf("%w %q", ErrUnknownMotion, name)
		}
		selector.Motions |= mask
	}
	return selector, nil
}
