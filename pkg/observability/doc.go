/*
Package observability turns the automaton lifecycle hooks into Prometheus
metrics and structured log lines.

Both are plain domain.LifecycleHooks, so they can be merged with any other
hooks through domain.MergeHooks:

	m := observability.NewMetrics()
	hooks := domain.MergeHooks(m.Hooks(), observability.LogHooks(logger))
*/
package observability
