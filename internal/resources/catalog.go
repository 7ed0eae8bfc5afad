// Package resources loads the static element descriptors and texture names
// shared by every session.
package resources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/tankclient/internal/core/models"
)

var ErrNoParts = errors.New("element type has no parts")

// Catalog is the resource provider: element types and texture files by name.
type Catalog struct {
	types    map[string]*models.Type
	textures map[string]string
}

type rawPart struct {
	Img     string   `json:"img" yaml:"img"`
	XOffset *float64 `json:"xOffset" yaml:"xOffset"`
	YOffset *float64 `json:"yOffset" yaml:"yOffset"`
	Width   *float64 `json:"width" yaml:"width"`
	Height  *float64 `json:"height" yaml:"height"`
	BgColor *bool    `json:"bgColor" yaml:"bgColor"`
}

type rawType struct {
	Group  string    `json:"group" yaml:"group"`
	Width  float64   `json:"width" yaml:"width"`
	Height float64   `json:"height" yaml:"height"`
	HP     *float64  `json:"hp" yaml:"hp"`
	Parts  []rawPart `json:"parts" yaml:"parts"`
}

func New() *Catalog {
	return &Catalog{
		types:    make(map[string]*models.Type),
		textures: make(map[string]string),
	}
}

// Load reads element data and texture names from disk. The format is picked
// by extension: .yaml/.yml files are YAML, anything else JSON. An empty
// texturesPath skips textures.
func Load(elementDataPath, texturesPath string) (*Catalog, error) {
	c := New()

	f, err := os.Open(elementDataPath)
	if err != nil {
		return nil, fmt.Errorf("open element data: %w", err)
	}
	defer f.Close()
	if isYAML(elementDataPath) {
		err = c.LoadTypesYAML(f)
	} else {
		err = c.LoadTypesJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("load element data %s: %w", elementDataPath, err)
	}

	if texturesPath == "" {
		return c, nil
	}
	tf, err := os.Open(texturesPath)
	if err != nil {
		return nil, fmt.Errorf("open textures: %w", err)
	}
	defer tf.Close()
	if err := c.LoadTextures(tf, filepath.Ext(texturesPath)); err != nil {
		return nil, fmt.Errorf("load textures %s: %w", texturesPath, err)
	}
	return c, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadTypesJSON merges element types from a JSON object keyed by type name.
func (c *Catalog) LoadTypesJSON(r io.Reader) error {
	var raw map[string]rawType
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return err
	}
	return c.addTypes(raw)
}

// LoadTypesYAML is LoadTypesJSON for YAML documents.
func (c *Catalog) LoadTypesYAML(r io.Reader) error {
	var raw map[string]rawType
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return err
	}
	return c.addTypes(raw)
}

func (c *Catalog) addTypes(raw map[string]rawType) error {
	for name, rt := range raw {
		if len(rt.Parts) == 0 {
			return fmt.Errorf("%w: %q", ErrNoParts, name)
		}
		t := &models.Type{
			Name:   name,
			Group:  rt.Group,
			Width:  rt.Width,
			Height: rt.Height,
			HP:     rt.HP,
			Parts:  make([]models.Part, 0, len(rt.Parts)),
		}
		for _, p := range rt.Parts {
			t.Parts = append(t.Parts, models.Part{
				Img:     p.Img,
				XOffset: valueOr(p.XOffset, 0),
				YOffset: valueOr(p.YOffset, 0),
				Width:   valueOr(p.Width, 1),
				Height:  valueOr(p.Height, 1),
				BgColor: valueOr(p.BgColor, false),
			})
		}
		c.types[name] = t
	}
	return nil
}

func valueOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

// LoadTextures merges a name → file map. ext selects the decoder like Load.
func (c *Catalog) LoadTextures(r io.Reader, ext string) error {
	var raw map[string]string
	var err error
	if isYAML(ext) {
		err = yaml.NewDecoder(r).Decode(&raw)
	} else {
		err = json.NewDecoder(r).Decode(&raw)
	}
	if err != nil {
		return err
	}
	for name, file := range raw {
		c.textures[name] = file
	}
	return nil
}

// Type implements world.TypeCatalog.
func (c *Catalog) Type(name string) (*models.Type, bool) {
	t, ok := c.types[name]
	return t, ok
}

// Texture returns the texture file registered under name.
func (c *Catalog) Texture(name string) (string, bool) {
	f, ok := c.textures[name]
	return f, ok
}

// Names returns every type name, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Blocks returns the map-building palette: every type of the block group,
// sorted by name.
func (c *Catalog) Blocks() []*models.Type {
	var out []*models.Type
	for _, name := range c.Names() {
		if t := c.types[name]; t.Group == models.GroupBlock {
			out = append(out, t)
		}
	}
	return out
}

// MissingTextures lists part images that have no texture entry.
func (c *Catalog) MissingTextures() []string {
	seen := make(map[string]struct{})
	var missing []string
	for _, name := range c.Names() {
		for _, p := range c.types[name].Parts {
			if _, ok := c.textures[p.Img]; ok {
				continue
			}
			if _, dup := seen[p.Img]; dup {
				continue
			}
			seen[p.Img] = struct{}{}
			missing = append(missing, p.Img)
		}
	}
	return missing
}
