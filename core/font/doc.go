/*
Package font handles decoded font faces and their metadata.

There is a certain confusion in the nomenclature of font tooling. We will
stick to the following definitions:

* A "face" is one static font: a variant of a typeface with a certain
weight, slant, etc. An example is "Lato Bold Italic". Faces are what the
conversion pipeline works on, one input file at a time.

* A "family" is the group a face belongs to ("Lato"). Operating systems
group installed faces by the family entries of their name tables.

* A "collection" is a container file bundling several faces of one family
(*.ttc).

Please note that Go (Golang) does use the terms "font" and "face"
differently, actually more or less in an opposite manner.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © The fontpack authors
*/
package font

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontpack.font'
func tracer() tracing.Trace {
	return tracing.Select("fontpack.font")
}
