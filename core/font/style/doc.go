/*
Package style normalizes raw font style metadata into descriptors.

A descriptor is the tuple (weight class, italic flag, width class) which
drives name rewriting and output file naming. Classification is
lenient: tokens which match no lexicon entry are ignored and missing
information falls back to Regular/upright/normal. Callers which need to
detect genuinely malformed style metadata must inspect the raw metadata
record themselves; the classifier will not report an error.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © The fontpack authors
*/
package style

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontpack.style'
func tracer() tracing.Trace {
	return tracing.Select("fontpack.style")
}
