// Package extract turns normalized page text into candidate event records
// by prompting a language model and parsing its response against a fixed
// schema. The model is non-deterministic and occasionally emits malformed
// output; this package owns detection, repair, and retry of those failures
// so that nothing past the venue boundary ever sees a parse crash.
package extract
