/*
Package session serialises access to stored wizard sessions.

Hosts that serve the same session from several goroutines (or several replicas)
run every load-modify-save cycle through Manager.Update, which holds a
ref-counted local mutex and, when configured, a distributed lock.
*/
package session
