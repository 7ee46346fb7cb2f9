// Package memory provides in-memory implementations of the driven store
// ports, primarily for tests and ephemeral runs. All stores are safe for
// concurrent use and hold copies of the entities they are given.
package memory
