/*
Package resources locates the font files a conversion run works on.

Sources come in three shapes: files and directories given on the
command line, fonts installed on the system, and remote URLs listed in
a manifest. Resolving a remote source may be a time-consuming task,
therefore ResolveFile works in an async/await fashion by returning a
promise. The call to the promise-function blocks until the file is
available locally.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © The fontpack authors

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'fontpack.resources'.
func tracer() tracing.Trace {
	return tracing.Select("fontpack.resources")
}
