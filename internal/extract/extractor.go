package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmorgan81/characterbot/internal/log"
	"github.com/dmorgan81/characterbot/internal/metrics"
	"github.com/dmorgan81/characterbot/internal/prompt"
	"github.com/samber/lo"
)

type Extractor struct {
	Completer Completer
	Prompt    *prompt.Extraction
	Attempts  int
	Delay     time.Duration
	Metrics   *metrics.Metrics
}

// Extract asks the LLM for the characters in excerpt. The request is made at
// most Attempts times with a fixed Delay between tries.
func (e *Extractor) Extract(ctx context.Context, excerpt string) ([]Character, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("extractor").With("model", e.Completer.Model())

	human, err := e.Prompt.Human(ctx, excerpt)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	attempt := 0
	var chars []Character
	op := func() error {
		attempt++
		reply, err := e.Completer.Complete(ctx, e.Prompt.System(), human)
		if err == nil {
			chars, err = ParseCharacters(reply)
		}
		e.Metrics.ObserveExtraction(err == nil)
		if err != nil {
			log.Warn("extraction attempt failed", "attempt", attempt, "error", err)
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		return nil
	}

	attempts := lo.Ternary(e.Attempts > 0, e.Attempts, 1)
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(e.Delay), uint64(attempts-1)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, fmt.Errorf("character extraction failed: %w", err)
	}

	log.Info("extracted characters", "count", len(chars))
	for _, c := range chars {
		log.Info("character", "name", c.Name, "photo_prompt", c.PhotoPrompt)
	}
	return chars, nil
}
