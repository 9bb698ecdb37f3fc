package metanorm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quarto-dev/quartomd-go/ast"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		meta     func() ast.ConfigMap
		wantKey  string
		wantVal  string
		wantSeen bool
	}{
		{
			name: "derives pagetitle from scalar title",
			meta: func() ast.ConfigMap {
				m := ast.NewConfigMap()
				m.Set("title", ast.String("Hello World"))
				return m
			},
			wantKey:  "pagetitle",
			wantVal:  "Hello World",
			wantSeen: true,
		},
		{
			name: "derives pagetitle from rich inline title",
			meta: func() ast.ConfigMap {
				m := ast.NewConfigMap()
				m.Set("title", ast.PandocInlines{Inlines: []ast.Inline{
					&ast.Str{Text: "Quarto"},
					&ast.Space{},
					&ast.Str{Text: "Guide"},
				}})
				return m
			},
			wantKey:  "pagetitle",
			wantVal:  "Quarto Guide",
			wantSeen: true,
		},
		{
			name: "leaves an existing pagetitle untouched",
			meta: func() ast.ConfigMap {
				m := ast.NewConfigMap()
				m.Set("title", ast.String("Hello World"))
				m.Set("pagetitle", ast.String("Custom"))
				return m
			},
			wantKey:  "pagetitle",
			wantVal:  "Custom",
			wantSeen: true,
		},
		{
			name: "no title, no pagetitle",
			meta: func() ast.ConfigMap {
				return ast.NewConfigMap()
			},
			wantKey:  "pagetitle",
			wantSeen: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &ast.Pandoc{Meta: tt.meta()}
			Normalize(doc)
			v, ok := doc.Meta.Get(tt.wantKey)
			assert.Equal(t, tt.wantSeen, ok)
			if tt.wantSeen {
				s, ok := v.(ast.Scalar)
				assert.True(t, ok)
				got, _ := s.AsStr()
				assert.Equal(t, tt.wantVal, got)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	m := ast.NewConfigMap()
	m.Set("title", ast.String("Stable Title"))
	doc := &ast.Pandoc{Meta: m}

	Normalize(doc)
	first, _ := doc.Meta.Get("pagetitle")
	Normalize(doc)
	second, _ := doc.Meta.Get("pagetitle")

	assert.Equal(t, first, second)
}
