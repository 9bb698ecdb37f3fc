package luafilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lua "github.com/yuin/gopher-lua"

	"github.com/quarto-dev/quartomd-go/runtime"
)

func newTestLuaState(mb *MediaBag, rt runtime.SystemRuntime) *lua.LState {
	L := lua.NewState()
	RegisterPandocNamespace(L)
	pandoc := L.GetGlobal("pandoc").(*lua.LTable)
	RegisterMediabag(L, pandoc, rt, mb)
	return L
}

func TestMediaBagInsertLookup(t *testing.T) {
	mb := NewMediaBag()
	rt := runtime.NewVirtualRuntime()
	L := newTestLuaState(mb, rt)
	defer L.Close()

	require.NoError(t, L.DoString(`pandoc.mediabag.insert("a.png", "image/png", "binary")`))

	entry, ok := mb.Lookup("a.png")
	require.True(t, ok)
	assert.Equal(t, "image/png", entry.MimeType)
	assert.Equal(t, "binary", string(entry.Content))
}

func TestMediaBagInsertGuessesMimeType(t *testing.T) {
	mb := NewMediaBag()
	rt := runtime.NewVirtualRuntime()
	L := newTestLuaState(mb, rt)
	defer L.Close()

	require.NoError(t, L.DoString(`pandoc.mediabag.insert("doc.pdf", nil, "content")`))

	entry, ok := mb.Lookup("doc.pdf")
	require.True(t, ok)
	assert.Equal(t, "application/pdf", entry.MimeType)
}

func TestMediaBagFetchFromVirtualRuntime(t *testing.T) {
	mb := NewMediaBag()
	rt := runtime.NewVirtualRuntime()
	rt.Seed("https://example.com/pic.png", []byte{1, 2, 3})
	L := newTestLuaState(mb, rt)
	defer L.Close()

	L.SetGlobal("mime_out", lua.LNil)
	L.SetGlobal("content_out", lua.LNil)
	require.NoError(t, L.DoString(`
		mime_out, content_out = pandoc.mediabag.fetch("https://example.com/pic.png")
	`))

	assert.Equal(t, "image/png", L.GetGlobal("mime_out").String())
	assert.Equal(t, 1, mb.Len())
}

func TestMediaBagFetchMissingReturnsNil(t *testing.T) {
	mb := NewMediaBag()
	rt := runtime.NewVirtualRuntime()
	L := newTestLuaState(mb, rt)
	defer L.Close()

	require.NoError(t, L.DoString(`
		local mt, content = pandoc.mediabag.fetch("https://example.com/missing.png")
		assert(mt == nil)
		assert(content == nil)
	`))
}

func TestMediaBagDeleteAndEmpty(t *testing.T) {
	mb := NewMediaBag()
	mb.Insert("a.png", "image/png", []byte("x"))
	mb.Insert("b.png", "image/png", []byte("y"))
	rt := runtime.NewVirtualRuntime()
	L := newTestLuaState(mb, rt)
	defer L.Close()

	require.NoError(t, L.DoString(`pandoc.mediabag.delete("a.png")`))
	assert.Equal(t, 1, mb.Len())

	require.NoError(t, L.DoString(`pandoc.mediabag.empty()`))
	assert.Equal(t, 0, mb.Len())
}

func TestMediaBagMakeDataURI(t *testing.T) {
	mb := NewMediaBag()
	rt := runtime.NewVirtualRuntime()
	L := newTestLuaState(mb, rt)
	defer L.Close()

	L.SetGlobal("uri_out", lua.LNil)
	require.NoError(t, L.DoString(`uri_out = pandoc.mediabag.make_data_uri("text/plain", "hi")`))
	assert.Equal(t, "data:text/plain;base64,aGk=", L.GetGlobal("uri_out").String())
}

func TestMediaBagWriteToVirtualRuntime(t *testing.T) {
	mb := NewMediaBag()
	mb.Insert("img/a.png", "image/png", []byte{9, 9})
	rt := runtime.NewVirtualRuntime()
	L := newTestLuaState(mb, rt)
	defer L.Close()

	require.NoError(t, L.DoString(`pandoc.mediabag.write("/out")`))

	content, err := rt.FileRead("/out/img/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9}, content)
}

func TestMediaBagList(t *testing.T) {
	mb := NewMediaBag()
	mb.Insert("a.png", "image/png", []byte("xyz"))
	rt := runtime.NewVirtualRuntime()
	L := newTestLuaState(mb, rt)
	defer L.Close()

	L.SetGlobal("n_out", lua.LNil)
	require.NoError(t, L.DoString(`
		local list = pandoc.mediabag.list()
		n_out = #list
		assert(list[1].path == "a.png")
		assert(list[1].type == "image/png")
		assert(list[1].length == 3)
	`))
	assert.Equal(t, lua.LNumber(1), L.GetGlobal("n_out"))
}
