// Package users stores registered users.
//
// FileStore keeps the flat list used on the robot, one user per line:
//
//	0, Daniel, blind, it
//	1, Iacopo, deaf, en, 1
//
// The optional fifth column is the accessibility level (0 when missing).
// SQLiteStore keeps the same records in a SQLite database.
package users
