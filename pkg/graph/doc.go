/*
Package graph holds the building map and the accessibility-constrained planner.

A Graph is a set of named rooms joined by edges carrying two weights: the
travel distance and an accessibility cost. ShortestPath runs Dijkstra over the
edges a user may take (cost at most the user's level) and breaks ties by
insertion order, so a fixed map always yields the same route.

Maps are stored as flat text:

	Lobby 0 0
	Lab -2 1.5

	Lobby Lab 3.5 0

One line per room ("name x y"), a blank line, then one line per edge
("from to distance accessibility"). Lines starting with '#' are ignored.
*/
package graph
