/*
Package fsa is a small finite state automaton with a serialized dispatcher.

An Automaton owns a set of named States and the current one. It is not safe
for concurrent use: every call goes through a Dispatcher, whose single
consumer goroutine feeds events one at a time.

Events that come from background work (timers, movement workers) are posted
with PostGuarded. They carry the epoch of the state entry that produced them
and are dropped when the automaton has moved on, so a late timer never acts
on a state it no longer belongs to.

	a := fsa.New(fsa.WithLogger(logger))
	d := fsa.NewDispatcher(a)
	a.AddState(idle)
	go d.Run(ctx)
	_ = d.Start(ctx, "idle")
	d.Post(ctx, "go")
*/
package fsa
