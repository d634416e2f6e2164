/*
Package container converts between font container formats.

It wraps the external decoders and writers the pipeline relies on:
compressed web containers (WOFF/WOFF2) are decompressed to plain
sfnt data, decoded faces are re-serialized after metadata edits, and
groups of faces are packed into TrueType Collection files. Glyph data is
never interpreted here; only the sfnt table directory and the name table
are touched.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © The fontpack authors
*/
package container

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontpack.container'
func tracer() tracing.Trace {
	return tracing.Select("fontpack.container")
}
