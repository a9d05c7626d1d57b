package handler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmorgan81/characterbot/internal/archive"
	"github.com/dmorgan81/characterbot/internal/extract"
	"github.com/dmorgan81/characterbot/internal/feed"
	"github.com/dmorgan81/characterbot/internal/image"
	"github.com/dmorgan81/characterbot/internal/metrics"
	"github.com/dmorgan81/characterbot/internal/novel"
	"github.com/dmorgan81/characterbot/internal/page"
	"github.com/dmorgan81/characterbot/internal/portrait"
	"github.com/dmorgan81/characterbot/internal/prompt"
	"github.com/dmorgan81/characterbot/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct{ reply string }

func (f fakeCompleter) Model() string { return "fake" }

func (f fakeCompleter) Complete(context.Context, string, string) (string, error) {
	return f.reply, nil
}

// failingGenerator fails for prompts listed in fail.
type failingGenerator struct {
	fail map[string]bool
	seed int64
}

func (g *failingGenerator) Name() string { return "fake" }

func (g *failingGenerator) Generate(_ context.Context, params image.Params) (*image.Result, error) {
	if g.fail[params.Prompt] {
		return nil, errors.New("backend exploded")
	}
	g.seed++
	return &image.Result{Images: []image.Image{
		{Data: []byte(params.Prompt), Seed: g.seed * 10},
		{Data: []byte(params.Prompt), Seed: g.seed*10 + 1},
	}}, nil
}

type recordingInvalidator struct{ paths []string }

func (r *recordingInvalidator) Invalidate(_ context.Context, paths []string) error {
	r.paths = append(r.paths, paths...)
	return nil
}

const reply = `{"characters":[
	{"name":"萧炎","photo_prompt":"1boy, (black hair:1.2)"},
	{"name":"药老","photo_prompt":"broken"},
	{"name":"萧薰儿","photo_prompt":"1girl, (purple dress:1.2)"}
]}`

func newHandler(t *testing.T, root string, gen image.Generator, inv store.Invalidator) *Handler {
	t.Helper()
	uploader := &store.FileUploader{Root: root}
	m := metrics.New()
	return &Handler{
		extractor: &extract.Extractor{
			Completer: fakeCompleter{reply: reply},
			Prompt:    &prompt.Extraction{},
			Attempts:  3,
			Metrics:   m,
		},
		painter:     &portrait.Painter{Generator: gen, Uploader: uploader, BatchSize: 2, Metrics: m},
		uploader:    uploader,
		invalidator: inv,
		templator:   &page.Templator{},
		feed:        &feed.Generator{},
		metrics:     m,
		metricsFile: filepath.Join(root, "characterbot.prom"),
	}
}

func TestHandle(t *testing.T) {
	root := t.TempDir()
	novelPath := filepath.Join(t.TempDir(), "斗破苍穹节选.txt")
	require.NoError(t, os.WriteFile(novelPath, []byte("“三十年河东，三十年河西，莫欺少年穷！”"), 0600))

	inv := &recordingInvalidator{}
	h := newHandler(t, root, &failingGenerator{fail: map[string]bool{"broken": true}}, inv)

	out, err := h.Handle(context.Background(), Input{Path: novelPath})
	require.NoError(t, err)

	assert.NotEmpty(t, out.Run)
	assert.Equal(t, "斗破苍穹节选", out.Novel)
	novelDir := filepath.Join(root, "斗破苍穹节选")
	archivePath := filepath.Join(novelDir, "role_message", "character_archive.json")
	assert.Equal(t, archivePath, out.Archive)

	entries := out.Characters.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "001", entries[0].Key)
	assert.Equal(t, "003", entries[1].Key)
	assert.Equal(t, archive.Portrait{
		Name:   "萧炎",
		Prompt: "1boy, (black hair:1.2)",
		Seed:   10,
		Path:   filepath.Join(novelDir, "role_img", "萧炎_0.png"),
	}, entries[0].Portrait)
	assert.Equal(t, int64(20), entries[1].Seed)

	data, err := os.ReadFile(archivePath)
	require.NoError(t, err)
	saved, err := archive.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, out.Characters.Entries(), saved.Entries())
	assert.Contains(t, string(data), `"name": "萧薰儿"`)

	for _, name := range []string{"萧炎_0.png", "萧炎_1.png", "萧薰儿_0.png", "萧薰儿_1.png"} {
		assert.FileExists(t, filepath.Join(novelDir, "role_img", name))
	}
	assert.NoFileExists(t, filepath.Join(novelDir, "role_img", "药老_0.png"))
	assert.FileExists(t, filepath.Join(novelDir, "character_portraits", "index.html"))
	assert.FileExists(t, filepath.Join(novelDir, "character_portraits", "feed.atom"))
	assert.FileExists(t, filepath.Join(root, "characterbot.prom"))

	assert.Equal(t, []string{"斗破苍穹节选/*"}, inv.paths)
}

func TestHandleInlineText(t *testing.T) {
	h := newHandler(t, t.TempDir(), &failingGenerator{}, store.NopInvalidator{})
	out, err := h.Handle(context.Background(), Input{Name: "inline", Text: "Some text."})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Characters.Len())
}

func TestHandleExtractionFailure(t *testing.T) {
	h := newHandler(t, t.TempDir(), &failingGenerator{}, store.NopInvalidator{})
	h.extractor.Completer = fakeCompleter{reply: "I could not find anyone."}

	_, err := h.Handle(context.Background(), Input{Name: "x", Text: "text"})
	assert.ErrorContains(t, err, "character extraction failed")
}

func TestHandleBadInput(t *testing.T) {
	h := newHandler(t, t.TempDir(), &failingGenerator{}, store.NopInvalidator{})

	_, err := h.Handle(context.Background(), Input{})
	assert.Error(t, err)

	_, err = h.Handle(context.Background(), Input{Name: "empty"})
	assert.ErrorIs(t, err, novel.ErrEmptyText)

	_, err = h.Handle(context.Background(), Input{Path: filepath.Join(t.TempDir(), "missing.txt")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHandleRejectsEscapingName(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "out")
	h := newHandler(t, root, &failingGenerator{}, store.NopInvalidator{})

	_, err := h.Handle(context.Background(), Input{Name: "../escaped", Text: "text"})
	assert.ErrorIs(t, err, novel.ErrInvalidName)
	assert.NoDirExists(t, filepath.Join(dir, "escaped"))

	dotted := filepath.Join(t.TempDir(), "...txt")
	require.NoError(t, os.WriteFile(dotted, []byte("text"), 0600))
	_, err = h.Handle(context.Background(), Input{Path: dotted})
	assert.ErrorIs(t, err, novel.ErrInvalidName)
	assert.NoFileExists(t, filepath.Join(dir, "role_message", "character_archive.json"))
}

func TestPageParams(t *testing.T) {
	var a archive.Archive
	a.Add(2, archive.Portrait{Name: "A/B", Prompt: "p", Seed: 3, Path: "ignored"})

	params := PageParams(novel.Layout{Novel: "book"}, &a)
	assert.Equal(t, page.Params{
		Novel: "book",
		Portraits: []page.Portrait{{
			Key: "002", Name: "A/B", Prompt: "p", Seed: 3,
			Image: "../role_img/A_B_0.png",
			Path:  "book/role_img/A_B_0.png",
		}},
	}, params)
}
