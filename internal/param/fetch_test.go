package param

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapFetcher map[string]string

func (m mapFetcher) Fetch(_ context.Context, path string) (string, error) {
	if v, ok := m[path]; ok {
		return v, nil
	}
	return "", errors.New("parameter not found")
}

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestSecretFromEnv(t *testing.T) {
	r := &Resolver{Getenv: env(map[string]string{"GEMINI_API_KEY": "direct"})}
	v, err := r.Secret(context.Background(), "GEMINI_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "direct", v)
}

func TestSecretFromParameterStore(t *testing.T) {
	r := &Resolver{
		Getenv: env(map[string]string{"DEZGO_API_KEY_PARAM": "/characterbot/dezgo"}),
		Fetcher: func() (Fetcher, error) {
			return mapFetcher{"/characterbot/dezgo": "stored"}, nil
		},
	}
	v, err := r.Secret(context.Background(), "DEZGO_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "stored", v)
}

func TestSecretMissing(t *testing.T) {
	r := &Resolver{Getenv: env(nil)}
	_, err := r.Secret(context.Background(), "OPENAI_API_KEY")
	assert.ErrorContains(t, err, "neither OPENAI_API_KEY nor OPENAI_API_KEY_PARAM is set")
}

func TestSecretFetchError(t *testing.T) {
	r := &Resolver{
		Getenv:  env(map[string]string{"OPENAI_API_KEY_PARAM": "/missing"}),
		Fetcher: func() (Fetcher, error) { return mapFetcher{}, nil },
	}
	_, err := r.Secret(context.Background(), "OPENAI_API_KEY")
	assert.ErrorContains(t, err, "fetching /missing")
}
