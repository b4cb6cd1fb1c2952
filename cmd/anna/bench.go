package main

import (
	"fmt"
	"math/rand/v2"
	"text/tabwriter"
	"time"

	"github.com/akmonengine/anna"
	"github.com/akmonengine/anna/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"
)

// runBench drops a random pile of boxes and spheres in a walled pit
func runBench(cmd *cobra.Command, args []string) error {
	settings := anna.DefaultSettings()
	settings.Workers = workers
	w, err := anna.NewWorld(settings.WithLogger(newLogger()))
	if err != nil {
		return err
	}
	w.SetIntegrator(anna.SemiImplicitEuler{})

	const half = 10.0
	walls := []*actor.Plane{
		{Normal: mgl64.Vec3{0, 1, 0}},
		{Normal: mgl64.Vec3{1, 0, 0}, Distance: -half},
		{Normal: mgl64.Vec3{-1, 0, 0}, Distance: -half},
		{Normal: mgl64.Vec3{0, 0, 1}, Distance: -half},
		{Normal: mgl64.Vec3{0, 0, -1}, Distance: -half},
	}
	for _, plane := range walls {
		w.AddBody(actor.NewRigidBody(actor.NewTransform(), plane, actor.BodyTypeStatic, 0))
	}

	rng := rand.New(rand.NewPCG(benchSeed, benchSeed^0x9e3779b97f4a7c15))
	for i := range benchBodies {
		position := mgl64.Vec3{
			(rng.Float64()*2 - 1) * (half - 1),
			1 + float64(i)*0.2,
			(rng.Float64()*2 - 1) * (half - 1),
		}
		rotation := mgl64.QuatRotate(rng.Float64()*3, mgl64.Vec3{rng.Float64(), 1, rng.Float64()}.Normalize())

		var shape actor.Shape = &actor.Sphere{Radius: 0.3 + rng.Float64()*0.3}
		if i%2 == 0 {
			shape = &actor.Box{HalfExtents: mgl64.Vec3{0.3 + rng.Float64()*0.3, 0.3 + rng.Float64()*0.3, 0.3 + rng.Float64()*0.3}}
		}
		body := actor.NewRigidBody(actor.NewTransformAt(position, rotation), shape, actor.BodyTypeDynamic, 1)
		body.Material.Friction = 0.5
		w.AddBody(body)
	}

	var total, slowest time.Duration
	var stats anna.StepStats
	for range steps {
		start := time.Now()
		stats = w.Step(1.0 / 60)
		elapsed := time.Since(start)
		total += elapsed
		slowest = max(slowest, elapsed)
	}

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BODIES\tWORKERS\tSTEPS\tTOTAL\tMEAN\tSLOWEST\tSTEPS/SEC\tCONSTRAINTS\tBATCHES")
	mean := time.Duration(0)
	rate := 0.0
	if steps > 0 {
		mean = total / time.Duration(steps)
		rate = float64(steps) / total.Seconds()
	}
	fmt.Fprintf(tw, "%d\t%d\t%d\t%v\t%v\t%v\t%.1f\t%d\t%d\n",
		benchBodies, workers, steps, total, mean, slowest, rate, stats.Constraints, stats.Batches)
	return tw.Flush()
}
