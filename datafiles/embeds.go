// Package datafiles holds files embedded into the binaries. Data files found
// next to it on disk are also searched by the paths package.
package datafiles

import _ "embed"

// ThingTableHTML is an html/template listing the things of a category.
//
//go:embed thingtable.html
var ThingTableHTML string
