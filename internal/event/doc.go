// Package event defines the stored event model, the ephemeral candidate
// records produced by extraction, and the reconciler that merges candidates
// into a venue's stored events across repeated pipeline runs.
package event
