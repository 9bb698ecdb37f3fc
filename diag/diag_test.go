package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quarto-dev/quartomd-go/sourcemap"
)

func TestBuilderBuild(t *testing.T) {
	loc := sourcemap.Original(sourcemap.FileId(1), sourcemap.Range{})
	msg := NewBuilder(Warning, "unknown shortcode", loc).
		Problem("the shortcode name was not registered").
		Hint("check spelling").
		Hint("register a handler").
		Build()

	assert.Equal(t, Warning, msg.Severity)
	assert.Equal(t, "unknown shortcode", msg.Headline)
	assert.Equal(t, "the shortcode name was not registered", msg.Problem)
	assert.Equal(t, []string{"check spelling", "register a handler"}, msg.Hints)
}

func TestMessageFormat(t *testing.T) {
	loc := sourcemap.FilterProvenance("f.lua", 4)
	msg := NewBuilder(Error, "bad return", loc).Hint("return nil instead").Build()
	out := msg.Format()

	assert.Contains(t, out, "error: bad return")
	assert.Contains(t, out, "f.lua:4")
	assert.Contains(t, out, "hint: return nil instead")
}

func TestSeverityString(t *testing.T) {
	cases := []struct {
		sev  Severity
		want string
	}{
		{Hint, "hint"},
		{Info, "info"},
		{Warning, "warning"},
		{Error, "error"},
		{Severity(99), "unknown"},
	}
	for _, tt := range cases {
		assert.Equal(t, tt.want, tt.sev.String())
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.HasErrors())
	assert.Empty(t, c.Messages())

	c.Push(NewBuilder(Warning, "w1", sourcemap.SourceInfo{}).Build())
	c.Push(NewBuilder(Error, "e1", sourcemap.SourceInfo{}).Build())
	c.Push(NewBuilder(Warning, "w2", sourcemap.SourceInfo{}).Build())

	assert.Len(t, c.Messages(), 3)
	assert.True(t, c.HasErrors())
	assert.Equal(t, 2, c.CountBySeverity(Warning))
	assert.Equal(t, 1, c.CountBySeverity(Error))
	assert.Equal(t, 0, c.CountBySeverity(Hint))
}
