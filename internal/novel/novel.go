package novel

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dmorgan81/characterbot/internal/log"
)

const (
	// ReadLimit is how many characters of the novel are read.
	ReadLimit = 5000
	// ExcerptLimit is how many of those characters are sent for extraction.
	ExcerptLimit = 3000
)

var (
	ErrEmptyText   = errors.New("novel text is empty")
	ErrInvalidName = errors.New("invalid novel name")
)

type Novel struct {
	Name string
	Text string
}

// Open reads the head of the novel at p.
func Open(ctx context.Context, p string) (*Novel, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("opening novel: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	n, err := Read(name, f)
	if err != nil {
		return nil, err
	}

	log.FromContextOrDiscard(ctx).Info("read novel", "name", n.Name, "path", p, "chars", len([]rune(n.Text)))
	return n, nil
}

// Read consumes at most ReadLimit characters from r. The name becomes a
// directory under the output root, so it must be a single local path element.
func Read(name string, r io.Reader) (*Novel, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	var sb strings.Builder
	for i := 0; i < ReadLimit; i++ {
		c, size, err := br.ReadRune()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading novel: %w", err)
		}
		if c == utf8.RuneError && size == 1 {
			return nil, fmt.Errorf("reading novel: invalid UTF-8 at character %d", i)
		}
		sb.WriteRune(c)
	}
	if sb.Len() == 0 {
		return nil, ErrEmptyText
	}
	return &Novel{Name: name, Text: sb.String()}, nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || !filepath.IsLocal(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (n *Novel) Excerpt() string {
	runes := []rune(n.Text)
	if len(runes) > ExcerptLimit {
		runes = runes[:ExcerptLimit]
	}
	return string(runes)
}

// Layout names the per-novel output locations, relative to the store root.
type Layout struct {
	Novel string
}

func (l Layout) PortraitDir() string { return path.Join(l.Novel, "character_portraits") }
func (l Layout) ImageDir() string    { return path.Join(l.Novel, "role_img") }
func (l Layout) MessageDir() string  { return path.Join(l.Novel, "role_message") }

func (l Layout) Archive() string {
	return path.Join(l.MessageDir(), "character_archive.json")
}

func (l Layout) Image(base string, index int) string {
	return path.Join(l.ImageDir(), fmt.Sprintf("%s_%d.png", base, index))
}

func (l Layout) Gallery() string { return path.Join(l.PortraitDir(), "index.html") }
func (l Layout) Feed() string    { return path.Join(l.PortraitDir(), "feed.atom") }
