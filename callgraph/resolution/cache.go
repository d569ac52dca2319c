package resolution

import (
	"sync"

	"github.com/calltrace/callpath/callgraph/core"
	"github.com/calltrace/callpath/callgraph/extraction"
)

// SourceReader supplies file contents to the lazy parse cache. The
// workspace package provides the production implementation.
type SourceReader interface {
	ReadFile(path string) ([]byte, error)
}

// ParseCache parses files on first request and caches the result by
// absolute path for the duration of a graph build. Unreadable and
// unparseable files are cached as absent so each file faults at most once.
//
// Reads take the shared lock, so parallel per-source traversals may share a
// cache; each entry is written exactly once.
type ParseCache struct {
	reader SourceReader
	parser *extraction.Parser
	diag   core.DiagnosticSink

	mu    sync.RWMutex
	files map[string]*core.ParsedFile // nil entry: known-bad file
}

// NewParseCache builds a cache over the given reader. diag receives file
// faults; pass core.NopSink{} to discard them.
func NewParseCache(reader SourceReader, diag core.DiagnosticSink) *ParseCache {
	if diag == nil {
		diag = core.NopSink{}
	}
	return &ParseCache{
		reader: reader,
		parser: extraction.NewParser(),
		diag:   diag,
		files:  make(map[string]*core.ParsedFile),
	}
}

// Get returns the parsed model for the path, parsing it on the first
// request. A false return means the file is treated as absent.
func (c *ParseCache) Get(path string) (*core.ParsedFile, bool) {
	c.mu.RLock()
	file, seen := c.files[path]
	c.mu.RUnlock()
	if seen {
		return file, file != nil
	}

	file = c.load(path)

	c.mu.Lock()
	if prior, raced := c.files[path]; raced {
		file = prior
	} else {
		c.files[path] = file
	}
	c.mu.Unlock()
	return file, file != nil
}

func (c *ParseCache) load(path string) *core.ParsedFile {
	src, err := c.reader.ReadFile(path)
	if err != nil {
		c.diag.Emit(core.Diagnostic{
			Category: core.FaultFile,
			FilePath: path,
			Message:  "unreadable file: " + err.Error(),
		})
		return nil
	}
	file, err := c.parser.ParseFile(path, src)
	if err != nil {
		c.diag.Emit(core.Diagnostic{
			Category: core.FaultFile,
			FilePath: path,
			Message:  "parse failure: " + err.Error(),
		})
		return nil
	}
	return file
}
