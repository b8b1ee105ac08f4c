/*
Package wayfinder guides a person through a building with a mobile assistive robot.

The robot offers an arm, waits for the user to hold its hand and walks the
route segment by segment. Letting go of the hand stops the robot at once and
asks whether to cancel the trip. Routes are planned over a weighted room graph
and only use passages within the user's accessibility level.

# Concept

A Guide ties together the building map, the user registry and the robot ports
(Actuation, Interaction, TouchSignal). Each trip runs a navigation automaton:

	Steady ──touch──▶ Moving ──goal──▶ Quit
	                    │ release / failure
	                    ▼
	                   Ask ──no──▶ HoldHand ──touch──▶ Moving
	                    └──yes / timeout──▶ Quit

Every waiting state times out after a configurable delay.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/wayfinder"
		"github.com/aretw0/wayfinder/pkg/adapters/memory"
		"github.com/aretw0/wayfinder/pkg/adapters/sim"
		"github.com/aretw0/wayfinder/pkg/domain"
		"github.com/aretw0/wayfinder/pkg/graph"
		"github.com/aretw0/wayfinder/pkg/users"
	)

	func main() {
		m, err := graph.Load("static/map.txt")
		if err != nil {
			log.Fatal(err)
		}

		guide, err := wayfinder.New(m,
			users.NewFileStore("static/users.txt"),
			sim.NewBody(domain.Pose{}),
			sim.NewDialog(nil),
			memory.NewTouchHub(),
			nil, // built-in action catalog
		)
		if err != nil {
			log.Fatal(err)
		}

		// Identify user 0, greet, ask the destination and walk there.
		out, err := guide.Run(context.Background(), 0, "Lobby")
		if err != nil {
			log.Fatal(err)
		}
		log.Println("reached:", out.Result.Reached)
	}
*/
package wayfinder
