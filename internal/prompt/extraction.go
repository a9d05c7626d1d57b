package prompt

import (
	"bytes"
	"context"
	"sync"
	"text/template"

	"github.com/go-logr/logr"
)

const systemPrompt = `You are an expert in novel analysis and Stable Diffusion prompt writing. You find every character in a novel and write a high quality Stable Diffusion positive prompt for each of them.

## Task
Extract every character that appears in the novel excerpt supplied by the user. Keep a character's name when the text gives one, otherwise invent a short code name. Write one portrait prompt per character.
Each prompt describes exactly one person. It is a front-facing portrait you infer from the novel, not a passage copied from it. It must be a single-person frontal portrait with no extra actions.

## Prompt rules
1. Keyword groups
   - Break the description into Stable Diffusion keyword phrases
   - Separate phrases with an English comma ,
2. Layers, in this order: subject (person) -> lighting -> view -> quality
   - Character features (blonde hair, long hair, smiling)
   - Lighting (sunlight, bright)
   - View and composition (close-up, upper body, front view)
   - Quality boosters (masterpiece, best quality, ultra-detailed, 8K, unreal engine rendered)
3. Weight at least one defining feature, for example (golden hair:1.2)
4. Never use negative vocabulary such as ugly, deformed, blurry, low quality
5. Describe only the character's frontal appearance. No environment, no scenery, no other people
6. Write prompts in English, around 8-10 keyword groups

## Output
Respond with ONLY valid JSON in exactly this format (no markdown, no explanation):
{
  "characters": [
    {
      "name": "character name",
      "photo_prompt": "the Stable Diffusion positive prompt"
    }
  ]
}`

const humanTemplate = `Novel excerpt:
{{ .Excerpt }}

Extract the character information following the rules above and write prompts in an anime illustration style.`

// Extraction renders the messages sent to the LLM when extracting characters.
type Extraction struct {
	tmpl *template.Template
	once sync.Once
}

func (e *Extraction) System() string {
	return systemPrompt
}

func (e *Extraction) Human(ctx context.Context, excerpt string) (string, error) {
	e.once.Do(func() {
		e.tmpl = template.Must(template.New("human").Parse(humanTemplate))
	})

	log := logr.FromContextOrDiscard(ctx).WithName("prompt")
	log.V(1).Info("rendering extraction prompt", "chars", len([]rune(excerpt)))

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, struct{ Excerpt string }{excerpt}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
