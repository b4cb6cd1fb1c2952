package main

import (
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/akmonengine/anna"
	"github.com/akmonengine/anna/actor"
	"github.com/akmonengine/anna/config"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

// runScene applies the command line overrides to cfg, runs it and prints the
// final state of every body
func runScene(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("iterations") {
		cfg.Settings.Iterations = iterations
	}
	if cmd.Flags().Changed("workers") {
		cfg.Settings.Workers = workers
	}

	scene, err := cfg.Build()
	if err != nil {
		return err
	}

	plotted := -1
	if plotBody != "" {
		plotted = slices.Index(scene.Names, plotBody)
		if plotted < 0 {
			return fmt.Errorf("no body named %q (bodies: %v)", plotBody, scene.Names)
		}
	}

	logger := newLogger()
	w, handles, err := scene.World(logger)
	if err != nil {
		return err
	}

	names := make(map[actor.Handle]string, len(handles))
	for i, h := range handles {
		names[h] = scene.Names[i]
	}
	collisions := 0
	w.Events.Subscribe(anna.COLLISION_ENTER, func(event anna.Event) {
		e := event.(anna.CollisionEnterEvent)
		collisions++
		logger.Debug("collision", "a", names[e.BodyA], "b", names[e.BodyB])
	})

	heights := make([]float64, 0, scene.Steps)
	var stats anna.StepStats
	start := time.Now()
	for range scene.Steps {
		moveKinematics(scene.Bodies, scene.Dt)
		stats = w.Step(scene.Dt)
		if plotted >= 0 {
			heights = append(heights, scene.Bodies[plotted].Transform.Position.Y())
		}
	}
	elapsed := time.Since(start)

	logger.Info("scene done",
		"steps", scene.Steps,
		"elapsed", elapsed,
		"constraints", stats.Constraints,
		"batches", stats.Batches,
		"collisions", collisions)

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BODY\tTYPE\tPOSITION\tVELOCITY\tANGULAR")
	for i, body := range scene.Bodies {
		p, v, av := body.Transform.Position, body.Velocity, body.AngularVelocity
		fmt.Fprintf(tw, "%s\t%v\t(%.3f, %.3f, %.3f)\t(%.3f, %.3f, %.3f)\t(%.3f, %.3f, %.3f)\n",
			scene.Names[i], body.BodyType, p[0], p[1], p[2], v[0], v[1], v[2], av[0], av[1], av[2])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(heights) > 0 {
		graph := asciigraph.Plot(heights,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("height of %s", plotBody)))
		fmt.Fprintf(out, "\n%s\n", graph)
	}
	return nil
}

// moveKinematics advances the kinematic bodies by their scripted velocity
func moveKinematics(bodies []*actor.RigidBody, dt float64) {
	for _, body := range bodies {
		if body.BodyType != actor.BodyTypeKinematic {
			continue
		}
		body.Transform.Position = body.Transform.Position.Add(body.Velocity.Mul(dt))
		if body.AngularVelocity.Len() == 0 {
			continue
		}
		spin := mgl64.Quat{V: body.AngularVelocity}.Mul(body.Transform.Rotation).Scale(0.5 * dt)
		body.Transform = actor.NewTransformAt(body.Transform.Position, body.Transform.Rotation.Add(spin))
	}
}
