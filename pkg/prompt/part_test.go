package prompt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizedResolve(t *testing.T) {
	text := Localized{
		"en":    "Hello",
		"es":    "Hola",
		"pt-BR": "Olá",
	}

	tests := []struct {
		locale string
		want   string
	}{
		{"en", "Hello"},
		{"es", "Hola"},
		{"pt-BR", "Olá"},
		{"es-MX", "Hola"},
		{"fr", "Hello"},
		{"", "Hello"},
		{"not a locale!", "Hello"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, text.Resolve(tt.locale))
		})
	}

	t.Run("no default locale", func(t *testing.T) {
		assert.Equal(t, "", Localized{"es": "Hola"}.Resolve("fr"))
		assert.Equal(t, "", Localized(nil).Resolve("en"))
	})
}

func TestStaticPart(t *testing.T) {
	p := NewStaticPart("intro", Localized{"en": "Welcome", "es": "Bienvenido"}, RoleResearcher)

	assert.Equal(t, "intro", p.Name())
	assert.Equal(t, []string{RoleResearcher}, p.Roles())

	out, err := p.Generate(Context{Brand: "ignored"}, "es")
	require.NoError(t, err)
	assert.Equal(t, "Bienvenido", out)

	out, err = p.Generate(Context{}, "de")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", out)
}

func TestDynamicPart(t *testing.T) {
	t.Run("computed from context", func(t *testing.T) {
		p := Computed("brand", func(c Context, locale string) string {
			return c.Brand + "/" + locale
		})

		out, err := p.Generate(Context{Brand: "Acme"}, "en")
		require.NoError(t, err)
		assert.Equal(t, "Acme/en", out)
		assert.Empty(t, p.Roles())
	})

	t.Run("pure for equal inputs", func(t *testing.T) {
		p := Computed("files", func(c Context, _ string) string {
			return BulletList(c.SelectedFiles, "- ")
		})
		c := Context{SelectedFiles: []string{"a.pdf", "b.pdf"}}

		first, err := p.Generate(c, "en")
		require.NoError(t, err)
		second, err := p.Generate(c, "en")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("errors propagate", func(t *testing.T) {
		boom := errors.New("boom")
		p := NewDynamicPart("broken", func(Context, string) (string, error) {
			return "", boom
		})

		_, err := p.Generate(Context{}, "en")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("nil function renders empty", func(t *testing.T) {
		out, err := NewDynamicPart("empty", nil).Generate(Context{}, "en")
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestConditionalPart(t *testing.T) {
	then := NewStaticPart("then", Text("has files"))
	otherwise := NewStaticPart("else", Text("no files"))
	hasFiles := func(c Context) bool { return len(c.SelectedFiles) > 0 }

	withElse := NewConditionalPart("files", hasFiles, then, otherwise)
	withoutElse := NewConditionalPart("files", hasFiles, then, nil)

	out, err := withElse.Generate(Context{SelectedFiles: []string{"a.pdf"}}, "en")
	require.NoError(t, err)
	assert.Equal(t, "has files", out)

	out, err = withElse.Generate(Context{}, "en")
	require.NoError(t, err)
	assert.Equal(t, "no files", out)

	out, err = withoutElse.Generate(Context{}, "en")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestTemplatedPart(t *testing.T) {
	t.Run("context vars by default", func(t *testing.T) {
		p := NewTemplatedPart("summary", Localized{
			"en": "Brand {{brand}}{{#if files}} with {{files}}{{/if}}",
			"es": "Marca {{brand}}",
		}, nil)

		c := Context{Brand: "Acme", SelectedFiles: []string{"a.pdf", "b.pdf"}}

		out, err := p.Generate(c, "en")
		require.NoError(t, err)
		assert.Equal(t, "Brand Acme with a.pdf, b.pdf", out)

		out, err = p.Generate(c, "es")
		require.NoError(t, err)
		assert.Equal(t, "Marca Acme", out)
	})

	t.Run("custom vars builder", func(t *testing.T) {
		p := NewTemplatedPart("count", Text("{{n}} files"), func(c Context) map[string]any {
			return map[string]any{"n": len(c.SelectedFiles)}
		})

		out, err := p.Generate(Context{SelectedFiles: []string{"a"}}, "en")
		require.NoError(t, err)
		assert.Equal(t, "1 files", out)
	})

	t.Run("attributes are visible", func(t *testing.T) {
		p := NewTemplatedPart("budget", Text("Budget: {{budget}}"), nil)

		out, err := p.Generate(Context{Attributes: map[string]any{"budget": 1200}}, "en")
		require.NoError(t, err)
		assert.Equal(t, "Budget: 1200", out)
	})
}

func TestVisibleTo(t *testing.T) {
	everyone := NewStaticPart("a", Text("a"))
	researchers := NewStaticPart("b", Text("b"), RoleResearcher)
	both := NewStaticPart("c", Text("c"), RoleResearcher, "analyst")

	assert.True(t, VisibleTo(everyone, RoleNonResearcher))
	assert.True(t, VisibleTo(everyone, ""))
	assert.True(t, VisibleTo(researchers, RoleResearcher))
	assert.False(t, VisibleTo(researchers, RoleNonResearcher))
	assert.True(t, VisibleTo(both, "analyst"))
	assert.False(t, VisibleTo(both, "guest"))
}
