package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCharacters_Direct(t *testing.T) {
	input := `{"characters":[{"name":"萧炎","photo_prompt":"1boy, (black hair:1.2), sunlight, close-up, masterpiece"}]}`

	chars, err := ParseCharacters(input)
	require.NoError(t, err)
	require.Len(t, chars, 1)
	assert.Equal(t, "萧炎", chars[0].Name)
	assert.Equal(t, "1boy, (black hair:1.2), sunlight, close-up, masterpiece", chars[0].PhotoPrompt)
}

func TestParseCharacters_WithPreamble(t *testing.T) {
	input := `Here are the characters:
{
  "characters": [
    {"name": "Xun Er", "photo_prompt": "1girl, (purple dress:1.2)"},
    {"name": "Xiao Zhan", "photo_prompt": "1man, middle-aged"}
  ]
}
Hope this helps.`

	chars, err := ParseCharacters(input)
	require.NoError(t, err)
	assert.Len(t, chars, 2)
}

func TestParseCharacters_CodeBlock(t *testing.T) {
	input := "```json\n{\"characters\":[]}\n```"

	chars, err := ParseCharacters(input)
	require.NoError(t, err)
	assert.Empty(t, chars)
}

func TestParseCharacters_NotJSON(t *testing.T) {
	_, err := ParseCharacters("not json at all")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseCharacters_MissingCharacters(t *testing.T) {
	_, err := ParseCharacters(`{"people":[]}`)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.ErrorContains(t, err, "missing characters")
}

func TestParseCharacters_TopLevelArray(t *testing.T) {
	_, err := ParseCharacters(`[{"name":"a","photo_prompt":"b"}]`)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseCharacters_ListNotArray(t *testing.T) {
	_, err := ParseCharacters(`{"characters":{"name":"a"}}`)
	assert.ErrorContains(t, err, "character list malformed")
}

func TestParseCharacters_MissingField(t *testing.T) {
	_, err := ParseCharacters(`{"characters":[{"name":"Yao Lao"}]}`)
	assert.ErrorContains(t, err, "character Yao Lao missing fields")

	_, err = ParseCharacters(`{"characters":[{"photo_prompt":"1man"}]}`)
	assert.ErrorContains(t, err, "character unknown missing fields")
}

func TestParseCharacters_BlankFields(t *testing.T) {
	_, err := ParseCharacters(`{"characters":[{"name":"   ","photo_prompt":"x"}]}`)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.ErrorContains(t, err, "character unknown missing fields")

	_, err = ParseCharacters(`{"characters":[{"name":"Xiao Yan","photo_prompt":"\n\t"}]}`)
	assert.ErrorContains(t, err, "character Xiao Yan missing fields")
}
