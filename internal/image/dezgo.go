package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/samber/lo"
)

const dezgoURL = "https://api.dezgo.com/text2image"

// DezgoGenerator renders one image per call, so a batch is a series of calls.
type DezgoGenerator struct {
	Client  *http.Client
	Key     string
	URL     string
	Model   string
	Width   int
	Height  int
	Steps   int
	Guiding float64
}

type dezgoRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Model          string  `json:"model,omitempty"`
	Seed           string  `json:"seed,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	Steps          int     `json:"steps,omitempty"`
	Guidance       float64 `json:"guidance,omitempty"`
}

func (g *DezgoGenerator) Name() string { return "dezgo" }

func (g *DezgoGenerator) Generate(ctx context.Context, params Params) (*Result, error) {
	result := &Result{}
	for i := 0; i < lo.Max([]int{params.BatchSize, 1}); i++ {
		img, err := g.generateOne(ctx, params)
		if err != nil {
			return nil, err
		}
		result.Images = append(result.Images, img)
	}
	return result, nil
}

func (g *DezgoGenerator) generateOne(ctx context.Context, params Params) (Image, error) {
	log := logr.FromContextOrDiscard(ctx).WithName("dezgo").WithValues("prompt", params.Prompt)
	log.Info("generating image via api.dezgo.com")

	body, err := json.Marshal(dezgoRequest{
		Prompt:         params.Prompt,
		NegativePrompt: params.NegativePrompt,
		Model:          g.Model,
		Seed:           lo.Ternary(params.Seed >= 0, strconv.FormatInt(params.Seed, 10), ""),
		Width:          g.Width,
		Height:         g.Height,
		Steps:          g.Steps,
		Guidance:       g.Guiding,
	})
	if err != nil {
		return Image{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lo.Ternary(g.URL != "", g.URL, dezgoURL), bytes.NewReader(body))
	if err != nil {
		return Image{}, err
	}

	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("X-Dezgo-Key", g.Key)

	resp, err := g.Client.Do(req)
	if err != nil {
		return Image{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Image{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("dezgo returned status %d: %.200s", resp.StatusCode, data)
	}

	seed, err := strconv.ParseInt(resp.Header.Get("x-input-seed"), 10, 64)
	if err != nil {
		return Image{}, fmt.Errorf("parsing dezgo seed: %w", err)
	}
	log.Info("received image via api.dezgo.com", "seed", seed)

	return Image{Data: data, Seed: seed}, nil
}
