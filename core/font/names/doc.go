/*
Package names plans and applies font renaming.

Renaming a face means computing the full set of name-table entries which
make the operating system register it under a target family with a
distinct style, plus the OS/2 weight class and style bits matching that
style. The plan is computed once, as an immutable value, and applying it
is idempotent.

The package also derives output filenames from (family, style) pairs,
with deterministic collision handling within a run.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © The fontpack authors
*/
package names

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontpack.names'
func tracer() tracing.Trace {
	return tracing.Select("fontpack.names")
}
