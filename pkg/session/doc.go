/*
Package session tracks guided trips and persists their snapshots.

The Manager serializes work per key with reference-counted local locks,
optionally backed by a ports.DistributedLocker so that only one trip drives
a robot across processes. Live trips are registered while they run so that
monitors and the HTTP API can observe them and inject touch signals.
*/
package session
