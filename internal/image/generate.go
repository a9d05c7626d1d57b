package image

import "context"

// NegativePrompt is sent with every portrait request.
const NegativePrompt = "NSFW,logo,text,blurry,bad proportions,cropped,watermark,signature,low quality,out of focus,bad anatomy,username,sketches,lowres,normal quality,grayscale,monochrome,worstquality"

// RandomSeed asks the backend to pick a seed.
const RandomSeed int64 = -1

type Params struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Seed           int64  `json:"seed"`
	BatchSize      int    `json:"batch_size"`
}

type Image struct {
	Data []byte
	Seed int64
}

type Result struct {
	Images []Image
}

type Generator interface {
	Generate(context.Context, Params) (*Result, error)
	Name() string
}
