package asset

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Appearance is the surface look of one visible part.
type Appearance struct {
	Color   uint32  `yaml:"color"`
	Opacity float64 `yaml:"opacity"`
}

type Part struct {
	ID         string `yaml:"id"`
	Appearance `yaml:",inline"`
}

// Renderable is a ready-to-use visual handed to the simulation once resolved.
type Renderable struct {
	Ref      string  `yaml:"-"`
	Name     string  `yaml:"name"`
	Scale    float64 `yaml:"scale"`
	Parts    []Part  `yaml:"parts"`
	Fallback bool    `yaml:"-"`
}

func (r *Renderable) Clone() *Renderable {
	if r == nil {
		return nil
	}
	out := *r
	out.Parts = append([]Part(nil), r.Parts...)
	return &out
}

// Source resolves an asset reference. It may block.
type Source interface {
	Acquire(ref string) (*Renderable, error)
}

const (
	fallbackColor = 0x8B4513
	fallbackPart  = "box"
)

// Fallback is the stand-in box used whenever acquisition fails.
func Fallback(ref string) *Renderable {
	return &Renderable{
		Ref:      ref,
		Name:     "fallback",
		Scale:    1,
		Parts:    []Part{{ID: fallbackPart, Appearance: Appearance{Color: fallbackColor, Opacity: 1}}},
		Fallback: true,
	}
}

// FileSource reads model descriptors (YAML) from a directory.
type FileSource struct {
	Root string
}

func (s FileSource) Acquire(ref string) (*Renderable, error) {
	path := filepath.Join(s.Root, filepath.Clean("/"+ref))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := &Renderable{}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", ref, err)
	}
	if len(r.Parts) == 0 {
		return nil, fmt.Errorf("model %s has no parts", ref)
	}
	for i := range r.Parts {
		if r.Parts[i].ID == "" {
			r.Parts[i].ID = fmt.Sprintf("part%d", i)
		}
		if r.Parts[i].Opacity == 0 {
			r.Parts[i].Opacity = 1
		}
	}
	if r.Scale == 0 {
		r.Scale = 1
	}
	r.Ref = ref
	return r, nil
}

// MapSource serves renderables from memory; unknown refs fail.
type MapSource map[string]*Renderable

func (m MapSource) Acquire(ref string) (*Renderable, error) {
	r, ok := m[ref]
	if !ok {
		return nil, fmt.Errorf("asset %q not found", ref)
	}
	out := r.Clone()
	out.Ref = ref
	return out, nil
}
