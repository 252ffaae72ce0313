// Package cli implements the command-line interface for the events pipeline.
//
// The cli package provides the Cobra-based CLI with commands to run the
// scrape/extract/reconcile cycle, manage the venue registry, and debug
// individual fetch and extraction steps. It coordinates the fetch, extract,
// store, and pipeline packages and formats results as text or JSON.
package cli
