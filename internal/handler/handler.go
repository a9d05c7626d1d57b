package handler

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/dmorgan81/characterbot/internal/archive"
	"github.com/dmorgan81/characterbot/internal/config"
	"github.com/dmorgan81/characterbot/internal/extract"
	"github.com/dmorgan81/characterbot/internal/feed"
	"github.com/dmorgan81/characterbot/internal/log"
	"github.com/dmorgan81/characterbot/internal/metrics"
	"github.com/dmorgan81/characterbot/internal/novel"
	"github.com/dmorgan81/characterbot/internal/page"
	"github.com/dmorgan81/characterbot/internal/portrait"
	"github.com/dmorgan81/characterbot/internal/store"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/lo"
)

// Input names a novel on disk, or carries its text directly.
type Input struct {
	Path string `json:"path,omitempty"`
	Name string `json:"name,omitempty"`
	Text string `json:"text,omitempty"`
}

type Output struct {
	Run        string           `json:"run"`
	Novel      string           `json:"novel"`
	Archive    string           `json:"archive"`
	Characters *archive.Archive `json:"characters"`
}

type Handler struct {
	extractor   *extract.Extractor
	painter     *portrait.Painter
	uploader    store.Uploader
	invalidator store.Invalidator
	templator   *page.Templator
	feed        *feed.Generator
	metrics     *metrics.Metrics
	metricsFile string
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return &Handler{
		extractor:   do.MustInvoke[*extract.Extractor](i),
		painter:     do.MustInvoke[*portrait.Painter](i),
		uploader:    do.MustInvoke[store.Uploader](i),
		invalidator: do.MustInvoke[store.Invalidator](i),
		templator:   do.MustInvoke[*page.Templator](i),
		feed:        do.MustInvoke[*feed.Generator](i),
		metrics:     do.MustInvoke[*metrics.Metrics](i),
		metricsFile: do.MustInvoke[*config.Config](i).Metrics.Textfile,
	}, nil
}

func (h *Handler) Handle(ctx context.Context, input Input) (Output, error) {
	run := uuid.NewString()
	log := log.FromContextOrDiscard(ctx).WithGroup("Handler").With("run", run)
	log.Info("handling novel", "path", input.Path, "name", input.Name)

	n, err := h.load(ctx, input)
	if err != nil {
		return Output{}, err
	}
	layout := novel.Layout{Novel: n.Name}

	chars, err := h.extractor.Extract(ctx, n.Excerpt())
	if err != nil {
		return Output{}, err
	}

	arch := &archive.Archive{}
	for i, c := range chars {
		log.Info("generating character", "index", archive.Key(i+1), "name", c.Name)
		p, err := h.painter.Paint(ctx, layout, c, run)
		h.metrics.ObservePortrait(err == nil)
		if err != nil {
			log.Error("failed to generate character", "name", c.Name, "error", err)
			continue
		}
		arch.Add(i+1, p)
	}

	data, err := arch.Encode()
	if err != nil {
		return Output{}, err
	}
	if err := h.uploader.Upload(ctx, store.UploadParams{
		Name:        layout.Archive(),
		Data:        data,
		ContentType: "application/json",
		Metadata:    map[string]string{"run": run},
	}); err != nil {
		return Output{}, fmt.Errorf("saving archive: %w", err)
	}

	if err := h.Publish(ctx, layout, arch); err != nil {
		log.Error("failed to publish gallery", "error", err)
	}
	if err := h.metrics.WriteTextfile(h.metricsFile); err != nil {
		log.Warn("failed to write metrics", "file", h.metricsFile, "error", err)
	}

	log.Info("processing complete", "characters", arch.Len())
	return Output{
		Run:        run,
		Novel:      n.Name,
		Archive:    h.uploader.Location(layout.Archive()),
		Characters: arch,
	}, nil
}

// Publish renders the gallery page and feed for arch and invalidates any
// cached copies of the novel's outputs.
func (h *Handler) Publish(ctx context.Context, layout novel.Layout, arch *archive.Archive) error {
	params := PageParams(layout, arch)

	html, err := h.templator.Template(ctx, params)
	if err != nil {
		return err
	}
	atom, err := h.feed.Generate(ctx, layout, params)
	if err != nil {
		return err
	}

	uploads := []store.UploadParams{
		{Name: layout.Gallery(), Data: html, ContentType: "text/html"},
		{Name: layout.Feed(), Data: atom, ContentType: "application/atom+xml"},
	}
	for _, u := range uploads {
		if err := h.uploader.Upload(ctx, u); err != nil {
			return err
		}
	}

	return h.invalidator.Invalidate(ctx, []string{path.Join(layout.Novel, "*")})
}

func (h *Handler) load(ctx context.Context, input Input) (*novel.Novel, error) {
	if input.Path != "" {
		return novel.Open(ctx, input.Path)
	}
	if input.Name == "" {
		return nil, fmt.Errorf("input needs a path or a name")
	}
	return novel.Read(input.Name, strings.NewReader(input.Text))
}

// PageParams describes arch for the gallery page, whose images live beside it
// under the novel's image directory.
func PageParams(layout novel.Layout, arch *archive.Archive) page.Params {
	return page.Params{
		Novel: layout.Novel,
		Portraits: lo.Map(arch.Entries(), func(e archive.Entry, _ int) page.Portrait {
			stored := layout.Image(portrait.SafeName(e.Name), portrait.Selected)
			return page.Portrait{
				Key:    e.Key,
				Name:   e.Name,
				Prompt: e.Prompt,
				Seed:   e.Seed,
				Image:  "../" + strings.TrimPrefix(stored, layout.Novel+"/"),
				Path:   stored,
			}
		}),
	}
}
