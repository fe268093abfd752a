package dialog

import (
	"bufio"
	"embed"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"path"
	"strings"
)

// DefaultLang is used when a locale has no dialog directory
const DefaultLang = "en-us"

//go:embed locale
var localeFS embed.FS

// Renderer turns responses into text. Each dialog file holds one phrasing
// per line; lines starting with # are comments.
type Renderer struct {
	lang      string
	templates map[Name][]string
	pick      func(n int) int
}

// NewRenderer loads the templates of lang, falling back to DefaultLang
func NewRenderer(lang string) (*Renderer, error) {
	lang = strings.ToLower(lang)
	if lang == "" {
		lang = DefaultLang
	}
	if _, err := fs.Stat(localeFS, path.Join("locale", lang)); err != nil {
		lang = DefaultLang
	}

	dir := path.Join("locale", lang)
	entries, err := fs.ReadDir(localeFS, dir)
	if err != nil {
		return nil, fmt.Errorf("read dialogs: %w", err)
	}

	templates := make(map[Name][]string, len(entries))
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".dialog")
		if entry.IsDir() || !ok {
			continue
		}
		lines, err := readLines(path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if len(lines) > 0 {
			templates[Name(name)] = lines
		}
	}

	return &Renderer{lang: lang, templates: templates, pick: rand.IntN}, nil
}

func readLines(name string) ([]string, error) {
	f, err := localeFS.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return lines, nil
}

// Lang returns the locale the templates were loaded from
func (r *Renderer) Lang() string { return r.lang }

// Has reports whether a template exists for name
func (r *Renderer) Has(name Name) bool {
	_, ok := r.templates[name]
	return ok
}

// Render picks one phrasing and fills its {{slot}} placeholders. An unknown
// dialog renders as its name.
func (r *Renderer) Render(resp Response) string {
	alts := r.templates[resp.Dialog]
	if len(alts) == 0 {
		return string(resp.Dialog)
	}

	text := alts[r.pick(len(alts))]
	if len(resp.Data) == 0 {
		return text
	}

	pairs := make([]string, 0, len(resp.Data)*2)
	for k, v := range resp.Data {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
