package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/akmonengine/anna"
	"github.com/akmonengine/anna/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/onsi/gomega"
)

const sceneYAML = `
steps: 10
dt: 0.02
settings:
  gravity: [0, -5, 0]
  iterations: 6
  workers: 2
bodies:
  - name: ground
    type: static
    shape: {kind: plane, normal: [0, 2, 0]}
    layer: 1
  - name: crate
    shape: {kind: box, half_extents: [0.5, 0.25, 0.5]}
    position: [0, 3, 0]
    rotation: {axis: [0, 1, 0], angle: 1.5707963267948966}
    mass: 4
    friction: 0.3
    lock: [x, rotation]
    gravity_scale: 0.5
  - type: kinematic
    shape: {kind: sphere, radius: 0.75}
    velocity: [1, 0, 0]
exclusions:
  - a: {layers: [1]}
    b: {motions: [kinematic]}
`

func TestDefault(t *testing.T) {
	g := gomega.NewWithT(t)
	cfg := Default()

	g.Expect(cfg.Dt).To(gomega.BeNumerically("~", 1.0/60, 1e-12))
	g.Expect(cfg.Steps).To(gomega.Equal(DefaultSteps))
	g.Expect(cfg.WorldSettings()).To(gomega.Equal(anna.DefaultSettings()))
	g.Expect(cfg.Bodies).To(gomega.BeEmpty())
}

func TestParse(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg, err := Parse([]byte(sceneYAML))
	g.Expect(err).NotTo(gomega.HaveOccurred())

	g.Expect(cfg.Steps).To(gomega.Equal(10))
	g.Expect(cfg.Dt).To(gomega.Equal(0.02))
	g.Expect(cfg.Settings.Gravity).To(gomega.Equal(mgl64.Vec3{0, -5, 0}))
	g.Expect(cfg.Settings.Iterations).To(gomega.Equal(6))
	// Unset fields keep their defaults
	g.Expect(cfg.Settings.Substeps).To(gomega.Equal(anna.DefaultSubsteps))
	g.Expect(cfg.Settings.Buckets).To(gomega.Equal(anna.DefaultBuckets))

	g.Expect(cfg.Bodies).To(gomega.HaveLen(3))
	g.Expect(cfg.Bodies[1].Lock).To(gomega.Equal([]string{"x", "rotation"}))
	g.Expect(cfg.Bodies[1].GravityScale).NotTo(gomega.BeNil())
	g.Expect(cfg.Exclusions).To(gomega.HaveLen(1))
}

func TestParse_Invalid(t *testing.T) {
	g := gomega.NewWithT(t)

	_, err := Parse([]byte("bodies: {not: a list}"))
	g.Expect(err).To(gomega.HaveOccurred())
	g.Expect(err.Error()).To(gomega.ContainSubstring("config: parse"))

	_, err = Parse([]byte("settings:\n  gravity: [1, 2]\n"))
	g.Expect(err).To(gomega.HaveOccurred())
}

func TestLoadSave(t *testing.T) {
	g := gomega.NewWithT(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "scene.yaml")
	g.Expect(os.WriteFile(path, []byte(sceneYAML), 0644)).To(gomega.Succeed())
	cfg, err := Load(path)
	g.Expect(err).NotTo(gomega.HaveOccurred())

	copyPath := filepath.Join(dir, "copy.yaml")
	g.Expect(Save(copyPath, cfg)).To(gomega.Succeed())
	loaded, err := Load(copyPath)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(loaded).To(gomega.Equal(cfg))
}

func TestLoad_Missing(t *testing.T) {
	g := gomega.NewWithT(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	g.Expect(err).To(gomega.MatchError(os.ErrNotExist))
}

// ============================================================================
// Build
// ============================================================================

func TestBuild(t *testing.T) {
	g := gomega.NewWithT(t)
	cfg, err := Parse([]byte(sceneYAML))
	g.Expect(err).NotTo(gomega.HaveOccurred())

	scene, err := cfg.Build()
	g.Expect(err).NotTo(gomega.HaveOccurred())

	g.Expect(scene.Names).To(gomega.Equal([]string{"ground", "crate", "body2"}))
	g.Expect(scene.Settings.Workers).To(gomega.Equal(2))
	g.Expect(scene.Steps).To(gomega.Equal(10))

	ground := scene.Bodies[0]
	g.Expect(ground.BodyType).To(gomega.Equal(actor.BodyTypeStatic))
	g.Expect(ground.Shape.(*actor.Plane).Normal).To(gomega.Equal(mgl64.Vec3{0, 1, 0}))
	g.Expect(ground.Layer).To(gomega.Equal(uint16(1)))

	crate := scene.Bodies[1]
	g.Expect(crate.BodyType).To(gomega.Equal(actor.BodyTypeDynamic))
	g.Expect(crate.Material.GetMass()).To(gomega.Equal(4.0))
	g.Expect(crate.Material.Friction).To(gomega.Equal(0.3))
	g.Expect(crate.LockAxes).To(gomega.Equal(actor.LockPositionX | actor.LockRotation))
	g.Expect(crate.GravityScale).To(gomega.Equal(0.5))
	g.Expect(crate.Transform.Rotation.Rotate(mgl64.Vec3{1, 0, 0}).Sub(mgl64.Vec3{0, 0, -1}).Len()).To(gomega.BeNumerically("<", 1e-9))

	kinematic := scene.Bodies[2]
	g.Expect(kinematic.BodyType).To(gomega.Equal(actor.BodyTypeKinematic))
	g.Expect(kinematic.Velocity).To(gomega.Equal(mgl64.Vec3{1, 0, 0}))

	g.Expect(scene.Exclusions).To(gomega.Equal([]anna.ExclusionRule{{
		A: anna.Selector{Layers: []uint16{1}},
		B: anna.Selector{Motions: actor.MaskKinematic},
	}}))
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		change func(*Config)
		want   error
	}{
		{"body type", func(c *Config) { c.Bodies[0].Type = "ghost" }, ErrUnknownBodyType},
		{"shape", func(c *Config) { c.Bodies[0].Shape.Kind = "cone" }, ErrUnknownShape},
		{"empty box", func(c *Config) { c.Bodies[0].Shape.HalfExtents = mgl64.Vec3{} }, ErrUnknownShape},
		{"dynamic plane", func(c *Config) { c.Bodies[0].Shape = ShapeSpec{Kind: "plane"} }, ErrUnknownShape},
		{"lock", func(c *Config) { c.Bodies[0].Lock = []string{"w"} }, ErrUnknownLock},
		{"motion", func(c *Config) {
			c.Exclusions = []ExclusionSpec{{B: SelectorSpec{Motions: []string{"flying"}}}}
		}, ErrUnknownMotion},
		{"settings", func(c *Config) { c.Settings.Iterations = 0 }, anna.ErrInvalidSettings},
		{"body layer", func(c *Config) { c.Bodies[0].Layer = actor.MaxLayer + 1 }, ErrLayerRange},
		{"selector layer", func(c *Config) {
			c.Exclusions = []ExclusionSpec{{A: SelectorSpec{Layers: []uint16{1, 1 << 15}}}}
		}, ErrLayerRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gomega.NewWithT(t)
			cfg := Default()
			cfg.Bodies = []BodySpec{{Shape: ShapeSpec{Kind: "box", HalfExtents: mgl64.Vec3{1, 1, 1}}}}
			tt.change(cfg)

			_, err := cfg.Build()
			g.Expect(err).To(gomega.MatchError(tt.want))
		})
	}
}

func TestBuild_InvalidDt(t *testing.T) {
	g := gomega.NewWithT(t)
	cfg := Default()
	cfg.Dt = 0

	_, err := cfg.Build()
	g.Expect(err).To(gomega.HaveOccurred())
}

// ============================================================================
// Presets
// ============================================================================

func TestListPresets(t *testing.T) {
	g := gomega.NewWithT(t)
	g.Expect(ListPresets()).To(gomega.Equal([]string{"drop", "newton", "stack"}))
}

func TestPreset_Unknown(t *testing.T) {
	g := gomega.NewWithT(t)
	_, err := Preset("orbit")
	g.Expect(err).To(gomega.MatchError(ErrUnknownPreset))
}

func TestPreset_ReturnsCopies(t *testing.T) {
	g := gomega.NewWithT(t)
	a, err := Preset("stack")
	g.Expect(err).NotTo(gomega.HaveOccurred())
	a.Bodies[1].Position = mgl64.Vec3{9, 9, 9}

	b, err := Preset("stack")
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(b.Bodies[1].Position).NotTo(gomega.Equal(mgl64.Vec3{9, 9, 9}))
}

func TestPresets_Run(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			g := gomega.NewWithT(t)
			cfg, err := Preset(name)
			g.Expect(err).NotTo(gomega.HaveOccurred())
			scene, err := cfg.Build()
			g.Expect(err).NotTo(gomega.HaveOccurred())

			w, handles, err := scene.World(nil)
			g.Expect(err).NotTo(gomega.HaveOccurred())
			g.Expect(handles).To(gomega.HaveLen(len(scene.Bodies)))

			for range 30 {
				w.Step(scene.Dt)
			}
			for _, body := range scene.Bodies {
				p := body.Transform.Position
				g.Expect(p.Len()).To(gomega.BeNumerically("<", 100), "bodies stay in the scene")
			}
		})
	}
}

func TestPreset_NewtonTransfersMomentum(t *testing.T) {
	g := gomega.NewWithT(t)
	cfg, err := Preset("newton")
	g.Expect(err).NotTo(gomega.HaveOccurred())
	scene, err := cfg.Build()
	g.Expect(err).NotTo(gomega.HaveOccurred())
	w, _, err := scene.World(nil)
	g.Expect(err).NotTo(gomega.HaveOccurred())

	for range cfg.Steps {
		w.Step(scene.Dt)
	}

	var momentum float64
	for _, body := range scene.Bodies {
		momentum += body.Velocity.X()
	}
	g.Expect(momentum).To(gomega.BeNumerically("~", 3, 1e-6))
	last := scene.Bodies[len(scene.Bodies)-1]
	g.Expect(last.Velocity.X()).To(gomega.BeNumerically(">", 1))
}
