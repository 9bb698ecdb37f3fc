// Package astctx implements the per-document AST context threaded through
// parsing and transformation (spec §4.1): interned file ids, the
// diagnostic collector, the example-list counter, and the source-offset
// mapping needed to turn a byte offset into (row, column).
package astctx

import (
	"sync"

	"go.uber.org/zap"

	"github.com/quarto-dev/quartomd-go/diag"
	"github.com/quarto-dev/quartomd-go/sourcemap"
)

// Context is not safe for concurrent use by multiple goroutines; per the
// concurrency model (spec §5) a document's compilation is single-threaded
// cooperative, and a Context belongs to exactly one in-flight compilation.
type Context struct {
	mu sync.Mutex // guards exampleCounter only, so Contexts can be shared
	// defensively across the rare host that pokes at it from another
	// goroutine between suspension points; it is never contended.

	files      []fileEntry
	pathToID   map[string]sourcemap.FileId
	Diagnostics *diag.Collector

	exampleCounter int

	log *zap.Logger
}

type fileEntry struct {
	path    string
	content []byte
	lines   *sourcemap.LineMap
}

// New creates an empty Context. A nil logger installs zap.NewNop(), the
// quiet-by-default posture described in SPEC_FULL.md §A.2.
func New(log *zap.Logger) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{
		pathToID:    make(map[string]sourcemap.FileId),
		Diagnostics: diag.NewCollector(),
		log:         log,
	}
}

// InternFile registers a file's content under its path, returning a
// stable FileId. Calling InternFile twice with the same path returns the
// same id without re-scanning.
func (c *Context) InternFile(path string, content []byte) sourcemap.FileId {
	if id, ok := c.pathToID[path]; ok {
		return id
	}
	id := sourcemap.FileId(len(c.files))
	c.files = append(c.files, fileEntry{
		path:    path,
		content: content,
		lines:   sourcemap.NewLineMap(content),
	})
	c.pathToID[path] = id
	return id
}

// FilePath returns the path a FileId was interned under.
func (c *Context) FilePath(id sourcemap.FileId) (string, error) {
	if int(id) >= len(c.files) {
		return "", diag.FatalError{Code: diag.ErrUnknownFileID, Message: "unknown file id"}
	}
	return c.files[id].path, nil
}

// Position resolves a (file, offset) pair to a full sourcemap.Position.
func (c *Context) Position(id sourcemap.FileId, offset uint32) (sourcemap.Position, error) {
	if int(id) >= len(c.files) {
		return sourcemap.Position{}, diag.FatalError{Code: diag.ErrUnknownFileID, Message: "unknown file id"}
	}
	return c.files[id].lines.Position(offset), nil
}

// NextExampleNumber advances and returns the shared example-list counter
// (spec §4.2 "Example lists"): `(@)` items are numbered consecutively
// across every OrderedList in the document, not reset per-list.
func (c *Context) NextExampleNumber() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exampleCounter++
	return c.exampleCounter
}

// Logger returns the structured logger installed on this context.
func (c *Context) Logger() *zap.Logger {
	return c.log
}
