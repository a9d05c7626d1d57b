package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/samber/lo"
)

// Portrait is the metadata kept for one generated character portrait.
type Portrait struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
	Seed   int64  `json:"seed"`
	Path   string `json:"path"`
}

type Entry struct {
	Key string
	Portrait
}

// Archive maps zero-padded, 1-based character indices to portraits and keeps
// them in insertion order.
type Archive struct {
	entries []Entry
}

func Key(index int) string {
	return fmt.Sprintf("%03d", index)
}

func (a *Archive) Add(index int, p Portrait) {
	a.entries = append(a.entries, Entry{Key: Key(index), Portrait: p})
}

func (a *Archive) Len() int { return len(a.entries) }

func (a *Archive) Entries() []Entry { return a.entries }

func (a *Archive) Portraits() []Portrait {
	return lo.Map(a.entries, func(e Entry, _ int) Portrait { return e.Portrait })
}

func (a *Archive) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range a.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(e.Key)
		if err != nil {
			return nil, err
		}
		value, err := marshal(e.Portrait)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a *Archive) UnmarshalJSON(data []byte) error {
	var m map[string]Portrait
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	keys := lo.Keys(m)
	sort.Slice(keys, func(i, j int) bool {
		ni, erri := strconv.Atoi(keys[i])
		nj, errj := strconv.Atoi(keys[j])
		if erri != nil || errj != nil {
			return keys[i] < keys[j]
		}
		return ni < nj
	})
	a.entries = lo.Map(keys, func(k string, _ int) Entry { return Entry{Key: k, Portrait: m[k]} })
	return nil
}

// Encode renders the archive as two-space indented JSON with non-ASCII and
// HTML characters left as they are.
func (a *Archive) Encode() ([]byte, error) {
	compact, err := a.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func Decode(data []byte) (*Archive, error) {
	a := &Archive{}
	if err := a.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("decoding archive: %w", err)
	}
	return a, nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
