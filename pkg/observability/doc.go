/*
Package observability turns engine lifecycle events into Prometheus metrics and
structured audit logs.

Both are plain domain.LifecycleHooks values, so hosts combine them with
LifecycleHooks.Merge and hand the result to the engine.
*/
package observability
