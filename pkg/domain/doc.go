/*
Package domain contains the core domain models of the wayfinder guide.

It defines the building map entities, the traveling user, the vocabulary of the
navigation automaton and the observable session snapshot. This package is kept
pure and free of external dependencies like I/O or persistence.

# Key Entities

  - Room: a named point of the building map with planar coordinates.
  - Edge: a weighted connection between two rooms (distance and accessibility cost).
  - User: the traveling person, with interaction modality, language and accessibility level.
  - Snapshot: the runtime view of a guided trip (current state, path, cursor).
*/
package domain
