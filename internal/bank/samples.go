package bank

import (
	"embed"
	"io/fs"
)

//go:embed samples
var samplesFS embed.FS

// Samples returns a loader over the bundled sample banks. It is the last
// resort when no data directory or URL provides a pool.
func Samples() *FSLoader {
	sub, err := fs.Sub(samplesFS, "samples")
	if err != nil {
		panic(err) // embedded path is fixed at build time
	}
	l := NewFSLoader(sub)
	l.names[0] = "samples"
	return l
}
