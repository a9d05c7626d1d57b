package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sync"

	"github.com/go-logr/logr"
)

//go:embed assets/gallery.html
var galleryTmpl string

type Portrait struct {
	Key    string
	Name   string
	Prompt string
	Seed   int64
	// Image is relative to the gallery page, Path to the store root.
	Image string
	Path  string
}

type Params struct {
	Novel     string
	Portraits []Portrait
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func (g *Templator) Template(ctx context.Context, params Params) ([]byte, error) {
	g.once.Do(func() {
		g.tmpl = template.Must(template.New("gallery").Parse(galleryTmpl))
	})

	log := logr.FromContextOrDiscard(ctx).WithName("templator")
	log.Info("generating gallery page", "novel", params.Novel, "portraits", len(params.Portraits))

	var data bytes.Buffer
	if err := g.tmpl.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
