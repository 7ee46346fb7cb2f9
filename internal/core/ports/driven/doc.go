// Package driven defines the interfaces the sync engine requires from
// its collaborators: entity stores and the binary import pipeline.
// Adapters under internal/adapters/driven implement them.
package driven
