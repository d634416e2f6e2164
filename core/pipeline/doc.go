/*
Package pipeline drives batch conversion runs over font files.

Every source file moves through a fixed sequence of phases, from
discovery over decoding and style classification to renaming, and ends
in exactly one of three outcomes: written, skipped or failed. A bounded
pool of workers decodes and classifies files concurrently; output names
are assigned and written in source order, before an optional bundling
phase groups written faces into collections. A failing file never
aborts the run, it is recorded and the batch moves on.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © The fontpack authors

*/
package pipeline

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'fontpack.pipeline'.
func tracer() tracing.Trace {
	return tracing.Select("fontpack.pipeline")
}
