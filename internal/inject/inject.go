package inject

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/characterbot/internal/config"
	"github.com/dmorgan81/characterbot/internal/extract"
	"github.com/dmorgan81/characterbot/internal/feed"
	"github.com/dmorgan81/characterbot/internal/handler"
	"github.com/dmorgan81/characterbot/internal/image"
	"github.com/dmorgan81/characterbot/internal/log"
	"github.com/dmorgan81/characterbot/internal/metrics"
	"github.com/dmorgan81/characterbot/internal/page"
	"github.com/dmorgan81/characterbot/internal/param"
	"github.com/dmorgan81/characterbot/internal/portrait"
	"github.com/dmorgan81/characterbot/internal/prompt"
	"github.com/dmorgan81/characterbot/internal/store"
	"github.com/samber/do"
)

// Setup registers every component. AWS clients and secrets are only resolved
// when a configured component asks for them.
func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue[*config.Config](injector, cfg)

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*cloudfront.Client](injector, func(i *do.Injector) (*cloudfront.Client, error) {
		return cloudfront.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, &http.Client{Timeout: cfg.Image.Timeout.Duration})

	do.Provide[*param.Resolver](injector, func(i *do.Injector) (*param.Resolver, error) {
		return &param.Resolver{Fetcher: func() (param.Fetcher, error) {
			client, err := do.Invoke[*ssm.Client](i)
			if err != nil {
				return nil, err
			}
			return &param.ParameterStoreFetcher{Client: client}, nil
		}}, nil
	})
	do.ProvideNamed[string](injector, "llm_key", func(i *do.Injector) (string, error) {
		name := map[string]string{"openai": "OPENAI_API_KEY", "gemini": "GEMINI_API_KEY"}[cfg.LLM.Provider]
		if name == "" {
			return "", fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
		}
		return do.MustInvoke[*param.Resolver](i).Secret(ctx, name)
	})
	do.ProvideNamed[string](injector, "dezgo_key", func(i *do.Injector) (string, error) {
		return do.MustInvoke[*param.Resolver](i).Secret(ctx, "DEZGO_API_KEY")
	})

	do.Provide[*metrics.Metrics](injector, func(i *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})
	do.Provide[extract.Completer](injector, NewCompleter(ctx))
	do.Provide[*prompt.Extraction](injector, func(i *do.Injector) (*prompt.Extraction, error) {
		return &prompt.Extraction{}, nil
	})
	do.Provide[*extract.Extractor](injector, func(i *do.Injector) (*extract.Extractor, error) {
		completer, err := do.Invoke[extract.Completer](i)
		if err != nil {
			return nil, err
		}
		return &extract.Extractor{
			Completer: completer,
			Prompt:    do.MustInvoke[*prompt.Extraction](i),
			Attempts:  cfg.LLM.Attempts,
			Delay:     cfg.LLM.RetryDelay.Duration,
			Metrics:   do.MustInvoke[*metrics.Metrics](i),
		}, nil
	})

	do.Provide[image.Generator](injector, NewGenerator)
	do.Provide[store.Uploader](injector, NewUploader)
	do.Provide[store.Invalidator](injector, NewInvalidator)
	do.Provide[*portrait.Painter](injector, func(i *do.Injector) (*portrait.Painter, error) {
		gen, err := do.Invoke[image.Generator](i)
		if err != nil {
			return nil, err
		}
		return &portrait.Painter{
			Generator: gen,
			Uploader:  do.MustInvoke[store.Uploader](i),
			BatchSize: cfg.Image.BatchSize,
			Metrics:   do.MustInvoke[*metrics.Metrics](i),
		}, nil
	})
	do.Provide[*page.Templator](injector, func(i *do.Injector) (*page.Templator, error) {
		return &page.Templator{}, nil
	})
	do.Provide[*feed.Generator](injector, func(i *do.Injector) (*feed.Generator, error) {
		return &feed.Generator{BaseURL: cfg.Output.BaseURL}, nil
	})

	do.Provide[*handler.Handler](injector, handler.NewHandler)

	return injector
}

func NewCompleter(ctx context.Context) do.Provider[extract.Completer] {
	return func(i *do.Injector) (extract.Completer, error) {
		cfg := do.MustInvoke[*config.Config](i).LLM
		key, err := do.InvokeNamed[string](i, "llm_key")
		if err != nil {
			return nil, err
		}
		switch cfg.Provider {
		case "openai":
			return extract.NewOpenAICompleter(key, cfg.BaseURL, cfg.Model, cfg.Temperature), nil
		case "gemini":
			return extract.NewGeminiCompleter(ctx, key, cfg.BaseURL, cfg.Model, cfg.Temperature)
		}
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func NewGenerator(i *do.Injector) (image.Generator, error) {
	cfg := do.MustInvoke[*config.Config](i).Image
	client := do.MustInvoke[*http.Client](i)

	var gen image.Generator
	switch cfg.Backend {
	case "sdwebui":
		gen = &image.SDWebUIGenerator{
			Client:   client,
			BaseURL:  cfg.BaseURL,
			Width:    cfg.Width,
			Height:   cfg.Height,
			Steps:    cfg.Steps,
			CFGScale: cfg.CFGScale,
			Sampler:  cfg.Sampler,
		}
	case "dezgo":
		key, err := do.InvokeNamed[string](i, "dezgo_key")
		if err != nil {
			return nil, err
		}
		gen = &image.DezgoGenerator{
			Client:  client,
			Key:     key,
			URL:     cfg.BaseURL,
			Model:   cfg.Model,
			Width:   cfg.Width,
			Height:  cfg.Height,
			Steps:   cfg.Steps,
			Guiding: cfg.CFGScale,
		}
	default:
		return nil, fmt.Errorf("unknown image backend %q", cfg.Backend)
	}
	return image.NewLimited(gen, cfg.RateLimit.Duration), nil
}

func NewUploader(i *do.Injector) (store.Uploader, error) {
	cfg := do.MustInvoke[*config.Config](i).Output
	switch cfg.Backend {
	case "file":
		return &store.FileUploader{Root: cfg.Root}, nil
	case "s3":
		client, err := do.Invoke[*s3.Client](i)
		if err != nil {
			return nil, err
		}
		return &store.S3Uploader{Client: client, Bucket: cfg.Bucket, Prefix: cfg.Prefix}, nil
	}
	return nil, fmt.Errorf("unknown output backend %q", cfg.Backend)
}

func NewInvalidator(i *do.Injector) (store.Invalidator, error) {
	cfg := do.MustInvoke[*config.Config](i).Output
	if cfg.Distribution == "" {
		return store.NopInvalidator{}, nil
	}
	client, err := do.Invoke[*cloudfront.Client](i)
	if err != nil {
		return nil, err
	}
	return &store.CloudFrontInvalidator{Client: client, Distribution: cfg.Distribution, Prefix: cfg.Prefix}, nil
}
