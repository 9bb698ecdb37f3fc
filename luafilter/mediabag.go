package luafilter

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/quarto-dev/quartomd-go/runtime"
)

// MediaEntry is one stored media item: its MIME type and raw bytes.
type MediaEntry struct {
	MimeType string
	Content  []byte
}

// MediaBag stores media files referenced by filepath, the backing store
// for a filter's pandoc.mediabag module (mediabag.rs's MediaBag).
type MediaBag struct {
	mu      sync.Mutex
	entries map[string]MediaEntry
}

// NewMediaBag returns an empty MediaBag.
func NewMediaBag() *MediaBag {
	return &MediaBag{entries: map[string]MediaEntry{}}
}

func (m *MediaBag) Insert(filepath, mimeType string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[filepath] = MediaEntry{MimeType: mimeType, Content: content}
}

func (m *MediaBag) Lookup(filepath string) (MediaEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[filepath]
	return e, ok
}

func (m *MediaBag) Delete(filepath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, filepath)
}

func (m *MediaBag) Empty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string]MediaEntry{}
}

func (m *MediaBag) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MediaBag) IsEmpty() bool { return m.Len() == 0 }

// listEntry is one (path, mimeType, length) summary row.
type listEntry struct {
	path     string
	mimeType string
	length   int
}

func (m *MediaBag) list() []listEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]listEntry, 0, len(m.entries))
	for p, e := range m.entries {
		out = append(out, listEntry{path: p, mimeType: e.MimeType, length: len(e.Content)})
	}
	return out
}

// RegisterMediabag installs pandoc.mediabag, wiring every function
// through rt (file/network access) and mb (the item store), mirroring
// register_pandoc_mediabag in mediabag.rs.
func RegisterMediabag(L *lua.LState, pandoc *lua.LTable, rt runtime.SystemRuntime, mb *MediaBag) {
	mbTable := L.NewTable()

	mbTable.RawSetString("delete", L.NewFunction(func(L *lua.LState) int {
		mb.Delete(L.CheckString(1))
		return 0
	}))

	mbTable.RawSetString("empty", L.NewFunction(func(L *lua.LState) int {
		mb.Empty()
		return 0
	}))

	mbTable.RawSetString("fetch", L.NewFunction(func(L *lua.LState) int {
		source := L.CheckString(1)
		if entry, ok := mb.Lookup(source); ok {
			L.Push(lua.LString(entry.MimeType))
			L.Push(lua.LString(entry.Content))
			return 2
		}
		if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
			content, mimeType, err := rt.FetchURL(source)
			if err != nil {
				L.Push(lua.LNil)
				L.Push(lua.LNil)
				return 2
			}
			mb.Insert(source, mimeType, content)
			L.Push(lua.LString(mimeType))
			L.Push(lua.LString(content))
			return 2
		}
		content, err := rt.FileRead(source)
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LNil)
			return 2
		}
		mimeType := runtime.GuessMimeType(source)
		mb.Insert(source, mimeType, content)
		L.Push(lua.LString(mimeType))
		L.Push(lua.LString(content))
		return 2
	}))

	// fill(doc) is not fully implemented: walking the document to
	// prefetch every Image source belongs to the engine that drives
	// rendering, not the filter runtime. Return the document unchanged,
	// matching mediabag.rs's own stub.
	mbTable.RawSetString("fill", L.NewFunction(func(L *lua.LState) int {
		L.Push(L.Get(1))
		return 1
	}))

	mbTable.RawSetString("insert", L.NewFunction(func(L *lua.LState) int {
		path := L.CheckString(1)
		mimeType := ""
		if s, ok := L.Get(2).(lua.LString); ok {
			mimeType = string(s)
		}
		if mimeType == "" {
			mimeType = runtime.GuessMimeType(path)
		}
		content := L.CheckString(3)
		mb.Insert(path, mimeType, []byte(content))
		return 0
	}))

	mbTable.RawSetString("items", L.NewFunction(func(L *lua.LState) int {
		items := mb.list()
		idx := 0
		iter := L.NewFunction(func(L *lua.LState) int {
			if idx >= len(items) {
				L.Push(lua.LNil)
				return 1
			}
			e := items[idx]
			entry, _ := mb.Lookup(e.path)
			idx++
			L.Push(lua.LString(e.path))
			L.Push(lua.LString(e.mimeType))
			L.Push(lua.LString(entry.Content))
			return 3
		})
		L.Push(iter)
		L.Push(lua.LNil)
		L.Push(lua.LNil)
		return 3
	}))

	mbTable.RawSetString("list", L.NewFunction(func(L *lua.LState) int {
		result := &lua.LTable{}
		for i, e := range mb.list() {
			item := &lua.LTable{}
			item.RawSetString("path", lua.LString(e.path))
			item.RawSetString("type", lua.LString(e.mimeType))
			item.RawSetString("length", lua.LNumber(e.length))
			result.RawSetInt(i+1, item)
		}
		L.Push(result)
		return 1
	}))

	mbTable.RawSetString("lookup", L.NewFunction(func(L *lua.LState) int {
		path := L.CheckString(1)
		entry, ok := mb.Lookup(path)
		if !ok {
			L.Push(lua.LNil)
			L.Push(lua.LNil)
			return 2
		}
		L.Push(lua.LString(entry.MimeType))
		L.Push(lua.LString(entry.Content))
		return 2
	}))

	mbTable.RawSetString("make_data_uri", L.NewFunction(func(L *lua.LState) int {
		mimeType := L.CheckString(1)
		raw := L.CheckString(2)
		encoded := base64.StdEncoding.EncodeToString([]byte(raw))
		L.Push(lua.LString(fmt.Sprintf("data:%s;base64,%s", mimeType, encoded)))
		return 1
	}))

	mbTable.RawSetString("write", L.NewFunction(func(L *lua.LState) int {
		dir := L.CheckString(1)
		if err := rt.DirCreate(dir, true); err != nil {
			L.RaiseError("mediabag.write: %v", err)
			return 0
		}
		writeOne := func(path string, entry MediaEntry) error {
			target := filepath.Join(dir, path)
			if parent := filepath.Dir(target); parent != "." {
				if err := rt.DirCreate(parent, true); err != nil {
					return err
				}
			}
			return rt.FileWrite(target, entry.Content)
		}
		if fp, ok := L.Get(2).(lua.LString); ok && fp != "" {
			entry, ok := mb.Lookup(string(fp))
			if !ok {
				L.RaiseError("mediabag.write: file %q not found in mediabag", string(fp))
				return 0
			}
			if err := writeOne(string(fp), entry); err != nil {
				L.RaiseError("mediabag.write: %v", err)
			}
			return 0
		}
		mb.mu.Lock()
		snapshot := make(map[string]MediaEntry, len(mb.entries))
		for k, v := range mb.entries {
			snapshot[k] = v
		}
		mb.mu.Unlock()
		for path, entry := range snapshot {
			if err := writeOne(path, entry); err != nil {
				L.RaiseError("mediabag.write: %v", err)
				return 0
			}
		}
		return 0
	}))

	pandoc.RawSetString("mediabag", mbTable)
}
