package portrait

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dmorgan81/characterbot/internal/archive"
	"github.com/dmorgan81/characterbot/internal/extract"
	"github.com/dmorgan81/characterbot/internal/image"
	"github.com/dmorgan81/characterbot/internal/log"
	"github.com/dmorgan81/characterbot/internal/metrics"
	"github.com/dmorgan81/characterbot/internal/novel"
	"github.com/dmorgan81/characterbot/internal/store"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Selected is the batch index used as the character's portrait.
const Selected = 0

type Painter struct {
	Generator image.Generator
	Uploader  store.Uploader
	BatchSize int
	Metrics   *metrics.Metrics
}

// Paint generates a batch of portraits for c, stores every image and returns
// the metadata of the selected one.
func (p *Painter) Paint(ctx context.Context, layout novel.Layout, c extract.Character, runID string) (archive.Portrait, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("painter").With("name", c.Name)
	log.Info("generating character portrait")

	res, err := p.Generator.Generate(ctx, image.Params{
		Prompt:         c.PhotoPrompt,
		NegativePrompt: image.NegativePrompt,
		Seed:           image.RandomSeed,
		BatchSize:      p.BatchSize,
	})
	if err != nil {
		return archive.Portrait{}, fmt.Errorf("generating %s: %w", c.Name, err)
	}
	if len(res.Images) <= Selected {
		return archive.Portrait{}, fmt.Errorf("generating %s: backend returned %d images", c.Name, len(res.Images))
	}
	p.Metrics.ObserveImages(p.Generator.Name(), len(res.Images))

	base := SafeName(c.Name)
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(2)
	for i, img := range res.Images {
		i, img := i, img
		group.Go(func() error {
			return p.Uploader.Upload(gctx, store.UploadParams{
				Name:        layout.Image(base, i),
				Data:        img.Data,
				ContentType: "image/png",
				Metadata: map[string]string{
					"run":   runID,
					"index": strconv.Itoa(i),
					"seed":  strconv.FormatInt(img.Seed, 10),
				},
			})
		})
	}
	if err := group.Wait(); err != nil {
		return archive.Portrait{}, fmt.Errorf("saving %s: %w", c.Name, err)
	}

	selected := res.Images[Selected]
	portrait := archive.Portrait{
		Name:   c.Name,
		Prompt: c.PhotoPrompt,
		Seed:   selected.Seed,
		Path:   p.Uploader.Location(layout.Image(base, Selected)),
	}
	log.Info("saved character portrait", "path", portrait.Path, "seed", portrait.Seed)
	return portrait, nil
}

// SafeName turns a character name into something usable as a file name.
func SafeName(name string) string {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
	safe = strings.Trim(safe, " .")
	return lo.Ternary(safe == "", "unnamed", safe)
}
