package asset

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/snowglobe/internal/core"
)

//go:embed models/*.yaml
var builtinModels embed.FS

// ErrNotFound is returned when a model id has no file in the catalog.
var ErrNotFound = errors.New("asset: model not found")

// ParseError reports a model file that could not be decoded or validated.
type ParseError struct {
	ID  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("asset: cannot parse model %q: %v", e.ID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Loader loads a model by id.
type Loader interface {
	Load(ctx context.Context, id string) (*Model, error)
}

// Builtin returns the file system holding the bundled models.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtinModels, "models")
	if err != nil {
		panic(fmt.Sprintf("asset: embedded models missing: %v", err))
	}
	return sub
}

// modelFile is the YAML layout of a model file.
type modelFile struct {
	Name  string     `yaml:"name"`
	Parts []partFile `yaml:"parts"`
}

type partFile struct {
	Name   string      `yaml:"name"`
	Glyph  string      `yaml:"glyph"`
	Color  string      `yaml:"color"`
	Points [][]float64 `yaml:"points"`
	Edges  [][]int     `yaml:"edges"`
}

// Catalog loads models from <id>.yaml files in a file system and caches them.
// Every Load returns a fresh clone.
type Catalog struct {
	fsys  fs.FS
	mu    sync.Mutex
	cache map[string]*Model
}

// NewCatalog creates a catalog over fsys. A nil fsys uses the bundled models.
func NewCatalog(fsys fs.FS) *Catalog {
	if fsys == nil {
		fsys = Builtin()
	}
	return &Catalog{fsys: fsys, cache: make(map[string]*Model)}
}

// Load returns a clone of the model with the given id.
func (c *Catalog) Load(ctx context.Context, id string) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	cached, ok := c.cache[id]
	c.mu.Unlock()
	if ok {
		return cached.Clone(), nil
	}

	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}

	data, err := fs.ReadFile(c.fsys, id+".yaml")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return nil, fmt.Errorf("asset: cannot read model %q: %w", id, err)
	}

	m, err := Parse(id, data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[id] = m
	c.mu.Unlock()
	return m.Clone(), nil
}

// IDs lists the model ids available in the catalog, sorted.
func (c *Catalog) IDs() ([]string, error) {
	matches, err := fs.Glob(c.fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("asset: cannot list models: %w", err)
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(path.Base(m), ".yaml"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Parse decodes and validates a model file.
func Parse(id string, data []byte) (*Model, error) {
	var f modelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &ParseError{ID: id, Err: err}
	}

	m := &Model{ID: id, Name: f.Name, Parts: make([]Part, 0, len(f.Parts))}
	if m.Name == "" {
		m.Name = id
	}

	for _, pf := range f.Parts {
		p, err := pf.decode()
		if err != nil {
			return nil, &ParseError{ID: id, Err: err}
		}
		m.Parts = append(m.Parts, p)
	}

	if err := m.validate(); err != nil {
		return nil, &ParseError{ID: id, Err: err}
	}
	return m, nil
}

func (pf partFile) decode() (Part, error) {
	p := Part{Name: pf.Name, Glyph: '*', Color: core.ColorDefault}

	if pf.Glyph != "" {
		r, _ := utf8.DecodeRuneInString(pf.Glyph)
		if r == utf8.RuneError {
			return p, fmt.Errorf("part %q: invalid glyph %q", pf.Name, pf.Glyph)
		}
		p.Glyph = r
	}

	if pf.Color != "" {
		c, ok := core.ParseColor(pf.Color)
		if !ok {
			return p, fmt.Errorf("part %q: unknown color %q", pf.Name, pf.Color)
		}
		p.Color = c
	}

	p.Points = make([]core.Vec3, 0, len(pf.Points))
	for i, pt := range pf.Points {
		if len(pt) != 3 {
			return p, fmt.Errorf("part %q: point %d has %d coordinates, expected 3", pf.Name, i, len(pt))
		}
		p.Points = append(p.Points, core.V3(pt[0], pt[1], pt[2]))
	}

	p.Edges = make([][2]int, 0, len(pf.Edges))
	for i, e := range pf.Edges {
		if len(e) != 2 {
			return p, fmt.Errorf("part %q: edge %d has %d indices, expected 2", pf.Name, i, len(e))
		}
		p.Edges = append(p.Edges, [2]int{e[0], e[1]})
	}
	return p, nil
}

// Chain tries loaders in order, moving to the next one only when a loader
// reports ErrNotFound. It lets a user model directory override the bundled
// models while falling back to them.
type Chain []Loader

// Load implements Loader.
func (ch Chain) Load(ctx context.Context, id string) (*Model, error) {
	err := fmt.Errorf("%w: %q", ErrNotFound, id)
	for _, l := range ch {
		var m *Model
		m, err = l.Load(ctx, id)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, err
}
