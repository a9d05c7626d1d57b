package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-logr/logr"
	"github.com/samber/lo"
)

// SDWebUIGenerator drives the txt2img endpoint of a Stable Diffusion WebUI
// server started with --api.
type SDWebUIGenerator struct {
	Client   *http.Client
	BaseURL  string
	Width    int
	Height   int
	Steps    int
	CFGScale float64
	Sampler  string
}

type txt2imgRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Seed           int64   `json:"seed"`
	BatchSize      int     `json:"batch_size"`
	NIter          int     `json:"n_iter"`
	Steps          int     `json:"steps,omitempty"`
	CFGScale       float64 `json:"cfg_scale,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	SamplerName    string  `json:"sampler_name,omitempty"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
	Info   string   `json:"info"`
}

type txt2imgInfo struct {
	Seed     int64   `json:"seed"`
	AllSeeds []int64 `json:"all_seeds"`
}

func (g *SDWebUIGenerator) Name() string { return "sdwebui" }

func (g *SDWebUIGenerator) Generate(ctx context.Context, params Params) (*Result, error) {
	log := logr.FromContextOrDiscard(ctx).WithName("sdwebui").WithValues("prompt", params.Prompt)
	log.Info("generating images via txt2img", "batch_size", params.BatchSize)

	body, err := json.Marshal(txt2imgRequest{
		Prompt:         params.Prompt,
		NegativePrompt: params.NegativePrompt,
		Seed:           params.Seed,
		BatchSize:      lo.Max([]int{params.BatchSize, 1}),
		NIter:          1,
		Steps:          g.Steps,
		CFGScale:       g.CFGScale,
		Width:          g.Width,
		Height:         g.Height,
		SamplerName:    g.Sampler,
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(g.BaseURL, "/") + "/sdapi/v1/txt2img"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("txt2img returned status %d: %.200s", resp.StatusCode, data)
	}

	var out txt2imgResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding txt2img response: %w", err)
	}
	if len(out.Images) == 0 {
		return nil, fmt.Errorf("txt2img returned no images")
	}

	var info txt2imgInfo
	if err := json.Unmarshal([]byte(out.Info), &info); err != nil {
		return nil, fmt.Errorf("decoding txt2img info: %w", err)
	}

	result := &Result{}
	for i, encoded := range out.Images {
		if comma := strings.Index(encoded, ","); comma >= 0 && strings.HasPrefix(encoded, "data:") {
			encoded = encoded[comma+1:]
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decoding image %d: %w", i, err)
		}
		// WebUI may append extra images (grids, masks) past the batch; they
		// have no seed of their own.
		if i >= len(info.AllSeeds) && i > 0 {
			break
		}
		seed := info.Seed
		if i < len(info.AllSeeds) {
			seed = info.AllSeeds[i]
		}
		result.Images = append(result.Images, Image{Data: data, Seed: seed})
	}

	log.Info("received images via txt2img", "count", len(result.Images), "seeds", info.AllSeeds)
	return result, nil
}
