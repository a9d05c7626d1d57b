package param

import (
	"context"
	"fmt"
	"os"
)

type Fetcher interface {
	Fetch(context.Context, string) (string, error)
}

// Resolver looks secrets up in the environment. When NAME is unset but
// NAME_PARAM is, the value is fetched from the parameter it names.
type Resolver struct {
	Fetcher func() (Fetcher, error)
	Getenv  func(string) string
}

func (r *Resolver) Secret(ctx context.Context, name string) (string, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv(name); v != "" {
		return v, nil
	}
	path := getenv(name + "_PARAM")
	if path == "" {
		return "", fmt.Errorf("neither %s nor %s_PARAM is set", name, name)
	}
	if r.Fetcher == nil {
		return "", fmt.Errorf("%s_PARAM is set but no parameter store is configured", name)
	}

	f, err := r.Fetcher()
	if err != nil {
		return "", err
	}
	v, err := f.Fetch(ctx, path)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", path, err)
	}
	return v, nil
}
