package wayfinder_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/adapters/sim"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/graph"
	"github.com/aretw0/wayfinder/pkg/users"
)

// ExampleGuide_Trip shows the fallback when the only way up is a staircase:
// the guide offers to call the destination instead.
func ExampleGuide_Trip() {
	// 1. A tiny building: the roof is only reachable by stairs (level 2).
	m := graph.New()
	m.AddNode("Lobby", 0, 0)
	m.AddNode("Roof", 0, 4)
	m.AddEdge("Lobby", "Roof", 4, 2)

	dir, err := os.MkdirTemp("", "wayfinder-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	// 2. Simulated robot; the user accepts the call.
	dialog := sim.NewDialog(nil)
	dialog.Answer("blind_ask_call", "yes")

	guide, err := wayfinder.New(m,
		users.NewFileStore(filepath.Join(dir, "users.txt")),
		sim.NewBody(domain.Pose{}),
		dialog,
		memory.NewTouchHub(),
		nil,
	)
	if err != nil {
		log.Fatal(err)
	}

	// 3. A wheelchair user (level 0) asks for the roof.
	user := domain.User{Name: "Anna", Modality: domain.ModalityVoice, Lang: "en"}
	out, err := guide.Trip(context.Background(), user, "Lobby", "Roof")

	fmt.Println("no route:", errors.Is(err, domain.ErrNoRouteFound))
	fmt.Println("called:", out.Called)
	for _, u := range dialog.Log() {
		fmt.Printf("%s: %s\n", u.Kind, u.Text)
	}
	// Output:
	// no route: true
	// called: true
	// script: blind_ask_call
	// say: I am calling the room for you.
}

func ExampleParseRegistration() {
	user, err := wayfinder.ParseRegistration("deaf it 1 Mario")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(user.Name, user.Modality, user.Lang, user.Level)
	// Output: Mario deaf it 1
}
