package feed

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmorgan81/characterbot/internal/log"
	"github.com/dmorgan81/characterbot/internal/novel"
	"github.com/dmorgan81/characterbot/internal/page"
	"github.com/gorilla/feeds"
	"github.com/samber/lo"
)

// Generator renders an Atom feed with one entry per portrait.
type Generator struct {
	// BaseURL is where the store root is served. Links are relative to the
	// feed when it is empty.
	BaseURL string
	Now     func() time.Time
}

func (g *Generator) Generate(ctx context.Context, layout novel.Layout, params page.Params) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("feed")
	log.Info("generating atom feed", "novel", params.Novel)

	now := lo.Ternary(g.Now != nil, g.Now, time.Now)().UTC()
	feed := feeds.Feed{
		Title:       params.Novel,
		Description: fmt.Sprintf("Character portraits from %s", params.Novel),
		Link:        &feeds.Link{Href: g.link(layout.Gallery(), "index.html")},
		Updated:     now,
	}

	for _, p := range params.Portraits {
		feed.Add(&feeds.Item{
			Title:       p.Name,
			Id:          g.link(path.Join(layout.Novel, p.Key), p.Key),
			Link:        &feeds.Link{Href: g.link(p.Path, p.Image)},
			Description: fmt.Sprintf("%s (seed %d)", p.Prompt, p.Seed),
			Updated:     now,
		})
	}

	atom, err := feed.ToAtom()
	return []byte(atom), err
}

func (g *Generator) link(stored, relative string) string {
	if g.BaseURL == "" {
		return relative
	}
	return strings.TrimRight(g.BaseURL, "/") + "/" + stored
}
