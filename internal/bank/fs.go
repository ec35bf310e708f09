package bank

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

// extensions are probed in order for every candidate location.
var extensions = []string{".json", ".yaml", ".yml"}

// candidatePaths lists the locations probed for a pool, relative to a root.
func candidatePaths(poolID string) []string {
	stem := FileStem(poolID)
	var out []string
	for _, dir := range []string{"data", "."} {
		for _, ext := range extensions {
			out = append(out, path.Join(dir, stem+ext))
		}
	}
	return out
}

// FSLoader probes one or more file system roots for bank documents.
type FSLoader struct {
	roots []fs.FS
	names []string
}

// NewFSLoader creates a loader over the given roots, probed in order.
func NewFSLoader(roots ...fs.FS) *FSLoader {
	l := &FSLoader{}
	for i, r := range roots {
		l.roots = append(l.roots, r)
		l.names = append(l.names, fmt.Sprintf("fs%d", i))
	}
	return l
}

// NewDirLoader creates a loader over directories on disk. Empty entries
// are skipped.
func NewDirLoader(dirs ...string) *FSLoader {
	l := &FSLoader{}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		l.roots = append(l.roots, os.DirFS(d))
		l.names = append(l.names, d)
	}
	return l
}

func (l *FSLoader) Load(ctx context.Context, poolID string) (*Document, error) {
	var errs []error
	for i, root := range l.roots {
		for _, p := range candidatePaths(poolID) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			data, err := fs.ReadFile(root, p)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			origin := path.Join(l.names[i], p)
			if err != nil {
				errs = append(errs, fmt.Errorf("read %s: %w", origin, err))
				continue
			}
			doc, err := Decode(data, FormatFor(p), origin)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			return doc, nil
		}
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%s: not found in %d location(s): %w", poolID, len(l.roots), ErrSourceUnavailable)
	}
	return nil, fmt.Errorf("%s: %w", poolID, errors.Join(append([]error{ErrSourceUnavailable}, errs...)...))
}
