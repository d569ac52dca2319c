// Package workspace provides file access for the analyzed project through
// the afs abstract storage service, so the pipeline reads sources the same
// way regardless of where the project lives.
package workspace

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

// sourceSuffixes are the file kinds the tracer considers part of the
// project.
var sourceSuffixes = []string{".ts", ".tsx", ".js", ".jsx"}

// skipDirs are never descended into when listing sources.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
}

// Workspace wraps a repository root.
type Workspace struct {
	fs   afs.Service
	root string
}

// New opens the project rooted at root.
func New(root string) *Workspace {
	return &Workspace{fs: afs.New(), root: root}
}

// Root returns the absolute repository root.
func (w *Workspace) Root() string { return w.root }

// ReadFile returns the contents of one file. Satisfies the resolver's
// SourceReader.
func (w *Workspace) ReadFile(path string) ([]byte, error) {
	return w.fs.DownloadWithURL(context.Background(), path)
}

// SourceFiles lists every source file under the root, sorted, skipping
// package installs and build output.
func (w *Workspace) SourceFiles(ctx context.Context) ([]string, error) {
	var files []string
	visitor := storage.OnVisit(func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return !skipDirs[info.Name()], nil
		}
		if !isSourceFile(info.Name()) {
			return true, nil
		}
		full := url.Join(baseURL, parent, info.Name())
		path := strings.TrimPrefix(full, "file://")
		files = append(files, strings.TrimPrefix(path, "localhost"))
		return true, nil
	})
	if err := w.fs.Walk(ctx, w.root, visitor); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func isSourceFile(name string) bool {
	for _, suffix := range sourceSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
