package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformed = errors.New("malformed response")

// Character is one extracted character and the portrait prompt written for it.
type Character struct {
	Name        string `json:"name"`
	PhotoPrompt string `json:"photo_prompt"`
}

// ParseCharacters finds the JSON document in an LLM reply and validates it
// against {"characters":[{"name":...,"photo_prompt":...}]}.
func ParseCharacters(text string) ([]Character, error) {
	doc, err := findJSON(text)
	if err != nil {
		return nil, err
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object", ErrMalformed)
	}
	raw, ok := obj["characters"]
	if !ok {
		return nil, fmt.Errorf("%w: missing characters", ErrMalformed)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: character list malformed", ErrMalformed)
	}

	chars := make([]Character, 0, len(list))
	for _, item := range list {
		entry, _ := item.(map[string]any)
		name, nameOK := entry["name"].(string)
		photo, photoOK := entry["photo_prompt"].(string)
		name, photo = strings.TrimSpace(name), strings.TrimSpace(photo)
		if !nameOK || !photoOK || name == "" || photo == "" {
			return nil, fmt.Errorf("%w: character %s missing fields", ErrMalformed, nameOrUnknown(entry))
		}
		chars = append(chars, Character{Name: name, PhotoPrompt: photo})
	}
	return chars, nil
}

func nameOrUnknown(entry map[string]any) string {
	if name, ok := entry["name"].(string); ok && strings.TrimSpace(name) != "" {
		return name
	}
	return "unknown"
}

// findJSON tries, in order: the whole text, fenced code blocks, and the span
// from the first { to the last }.
func findJSON(text string) (any, error) {
	text = strings.TrimSpace(text)

	candidates := []string{text}
	for _, fence := range []string{"```json", "```"} {
		if idx := strings.Index(text, fence); idx >= 0 {
			after := text[idx+len(fence):]
			if end := strings.Index(after, "```"); end >= 0 {
				candidates = append(candidates, strings.TrimSpace(after[:end]))
			}
		}
	}
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			candidates = append(candidates, text[start:end+1])
		}
	}

	for _, c := range candidates {
		var doc any
		if err := json.Unmarshal([]byte(c), &doc); err == nil {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("%w: no JSON found in %.200q", ErrMalformed, text)
}
