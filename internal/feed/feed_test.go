package feed

import (
	"context"
	"testing"
	"time"

	"github.com/dmorgan81/characterbot/internal/novel"
	"github.com/dmorgan81/characterbot/internal/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var params = page.Params{
	Novel: "book",
	Portraits: []page.Portrait{
		{Key: "001", Name: "Xiao Yan", Prompt: "1boy", Seed: 42, Image: "../role_img/Xiao Yan_0.png", Path: "book/role_img/Xiao Yan_0.png"},
	},
}

func fixedNow() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

func TestGenerateRelative(t *testing.T) {
	g := &Generator{Now: fixedNow}
	atom, err := g.Generate(context.Background(), novel.Layout{Novel: "book"}, params)
	require.NoError(t, err)

	out := string(atom)
	assert.Contains(t, out, "<title>book</title>")
	assert.Contains(t, out, "<title>Xiao Yan</title>")
	assert.Contains(t, out, `href="../role_img/Xiao Yan_0.png"`)
	assert.Contains(t, out, "1boy (seed 42)")
	assert.Contains(t, out, "2024-01-02T03:04:05Z")
}

func TestGenerateAbsolute(t *testing.T) {
	g := &Generator{BaseURL: "https://cdn.example.com/", Now: fixedNow}
	atom, err := g.Generate(context.Background(), novel.Layout{Novel: "book"}, params)
	require.NoError(t, err)

	out := string(atom)
	assert.Contains(t, out, `href="https://cdn.example.com/book/role_img/Xiao Yan_0.png"`)
	assert.Contains(t, out, `href="https://cdn.example.com/book/character_portraits/index.html"`)
}
