// Package navigation runs a guided trip as an interruptible automaton.
//
// A Session composes five states:
//
//	Steady   --limb_touched-->  Moving    --limb_released-->  Ask
//	Ask      --no-->            HoldHand  --limb_touched-->   Moving
//	Steady, Ask, HoldHand --timeout--> Quit
//	Moving   --goal_reached-->  Quit
//
// Every event, whether it comes from the touch sensor, a timer or the
// movement worker, goes through one fsa.Dispatcher. Events produced in the
// background are tagged with the epoch of the state entry that produced them
// and are dropped if that entry is over.
package navigation
