/*
Package cacheflow is the canvas core of a visual workflow editor.

A workflow is a graph of steps. Each step wraps a pluggable component, exposes
named input and output ports and sits at a position on a 2D canvas. Inputs are
either literal constants or connections to another step's output. The
rendering layer reports where each port was actually drawn, and the canvas
derives from those reports the set of connections that can be drawn right now.

# Concept

Three pieces cooperate:

  - domain.Workflow is an immutable value. Every edit returns a new workflow
    and references to missing steps are silent no-ops.
  - A port registry maps each rendered port to its measured position. It is
    written by lifecycle trackers that diff what a step reported on its
    previous pass against the current pass.
  - Connection derivation joins the two and only emits connections whose
    both endpoints are registered, so an edited but not yet rendered graph
    never produces a line to nowhere.

Canvas owns one instance of each and serializes access to them.

# Usage

	package main

	import (
		"context"
		"fmt"

		"github.com/aretw0/cacheflow"
		"github.com/aretw0/cacheflow/pkg/domain"
		"github.com/aretw0/cacheflow/pkg/lifecycle"
	)

	func main() {
		ctx := context.Background()
		c := cacheflow.New(cacheflow.WithWorkflow(cacheflow.DemoWorkflow()))

		// The renderer reports where it drew each port.
		c.ReportLayout(ctx, "step1", lifecycle.Layout{
			Outputs: map[string]domain.Position{"data": {X: 110, Y: 70}},
		})
		c.ReportLayout(ctx, "step2", lifecycle.Layout{
			Inputs: map[string]domain.Position{"data": {X: 400, Y: 70}},
		})

		for _, v := range c.Connections(ctx) {
			fmt.Println(v.Key, v.Path())
		}
	}
*/
package cacheflow
