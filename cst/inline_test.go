package cst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanInlineStringEmphasisAndStrong(t *testing.T) {
	tree, err := Parse([]byte("*em* and **strong**"))
	assert.NoError(t, err)

	para := tree.RootNode().Child(0)
	var kinds []string
	for i := 0; i < para.ChildCount(); i++ {
		kinds = append(kinds, para.Child(i).Kind())
	}
	assert.Contains(t, kinds, "pandoc_emph")
	assert.Contains(t, kinds, "pandoc_strong")
}

func TestScanInlineStringShortcode(t *testing.T) {
	tree, err := Parse([]byte("See {{< meta title >}} here."))
	assert.NoError(t, err)

	para := tree.RootNode().Child(0)
	var found *Node
	for i := 0; i < para.ChildCount(); i++ {
		if para.Child(i).Kind() == "shortcode" {
			found = para.Child(i)
		}
	}
	if assert.NotNil(t, found) {
		assert.Equal(t, "meta title", found.Value())
	}
}

func TestScanInlineStringEscapedShortcode(t *testing.T) {
	tree, err := Parse([]byte("{{{< meta title >}}}"))
	assert.NoError(t, err)

	para := tree.RootNode().Child(0)
	var found *Node
	for i := 0; i < para.ChildCount(); i++ {
		if para.Child(i).Kind() == "shortcode_escaped" {
			found = para.Child(i)
		}
	}
	if assert.NotNil(t, found) {
		assert.Equal(t, "meta title", found.Value())
	}
}

func TestScanInlineStringLink(t *testing.T) {
	tree, err := Parse([]byte("[text](http://example.com \"title\")"))
	assert.NoError(t, err)

	para := tree.RootNode().Child(0)
	link := para.Child(0)
	assert.Equal(t, "pandoc_link", link.Kind())

	var target, title string
	for i := 0; i < link.ChildCount(); i++ {
		c := link.Child(i)
		switch c.Kind() {
		case "link_target":
			target = c.Value()
		case "link_title":
			title = c.Value()
		}
	}
	assert.Equal(t, "http://example.com", target)
	assert.Equal(t, "title", title)
}

func TestSplitTrailingAttr(t *testing.T) {
	content, attr := splitTrailingAttr("Title {#sec .class key=val}")
	assert.Equal(t, "Title", content)
	if assert.NotNil(t, attr) {
		var kinds []string
		for _, c := range attr.children {
			kinds = append(kinds, c.kind)
		}
		assert.Contains(t, kinds, "attribute_id")
		assert.Contains(t, kinds, "attribute_class")
		assert.Contains(t, kinds, "key_value_specifier")
	}
}

func TestSplitTrailingAttrNone(t *testing.T) {
	content, attr := splitTrailingAttr("Plain heading")
	assert.Equal(t, "Plain heading", content)
	assert.Nil(t, attr)
}
