/*
Package ports defines the driven ports (interfaces) of the wayfinder guide.

These interfaces decouple the navigation core from the robot, the dialogue
front-end and the persistence backends, so the same automaton runs against a
physical robot, a simulator or test doubles.

# Key Interfaces

  - Actuation: moves the base and poses the joints.
  - Interaction: plays scripted exchanges, speaks and shows icons.
  - TouchSignal: delivers raw hand touch sensor values.
  - UserStore: persists registered users.
  - SessionStore: persists trip snapshots for monitoring.
  - DistributedLocker: keeps a single trip active per robot.
*/
package ports
