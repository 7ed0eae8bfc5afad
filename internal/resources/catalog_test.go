package resources

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tankclient/internal/core/models"
)

const elementData = `{
	"tank": {"group": "tank", "width": 0.8, "height": 0.8, "parts": [
		{"img": "tank-body", "bgColor": true},
		{"img": "tank-gun", "yOffset": -0.3, "width": 0.2, "height": 0.6}
	]},
	"wall": {"group": "block", "width": 1, "height": 1, "hp": 30, "parts": [{"img": "wall"}]},
	"grass": {"group": "block", "width": 1, "height": 1, "parts": [{"img": "grass"}]},
	"shell": {"group": "bullet", "width": 0.1, "height": 0.1, "parts": [{"img": "shell"}]}
}`

func TestLoadTypesFillsPartDefaults(t *testing.T) {
	c := New()
	require.NoError(t, c.LoadTypesJSON(strings.NewReader(elementData)))

	tank, ok := c.Type("tank")
	require.True(t, ok)
	assert.True(t, tank.IsTank())
	assert.Equal(t, "tank", tank.Name)
	require.Len(t, tank.Parts, 2)
	assert.Equal(t, models.Part{Img: "tank-body", Width: 1, Height: 1, BgColor: true}, tank.Parts[0])
	assert.Equal(t, models.Part{Img: "tank-gun", YOffset: -0.3, Width: 0.2, Height: 0.6}, tank.Parts[1])
	assert.Nil(t, tank.HP)

	wall, ok := c.Type("wall")
	require.True(t, ok)
	require.NotNil(t, wall.HP)
	assert.Equal(t, 30.0, *wall.HP)

	_, ok = c.Type("nope")
	assert.False(t, ok)
}

func TestLoadTypesYAML(t *testing.T) {
	c := New()
	doc := `
wall:
  group: block
  width: 1
  height: 1
  parts:
    - img: wall
      xOffset: 0.1
`
	require.NoError(t, c.LoadTypesYAML(strings.NewReader(doc)))
	wall, ok := c.Type("wall")
	require.True(t, ok)
	assert.Equal(t, models.Part{Img: "wall", XOffset: 0.1, Width: 1, Height: 1}, wall.Parts[0])
}

func TestLoadTypesRejectsEmptyParts(t *testing.T) {
	c := New()
	err := c.LoadTypesJSON(strings.NewReader(`{"x": {"group": "block", "parts": []}}`))
	assert.ErrorIs(t, err, ErrNoParts)
}

func TestBlocksAndTextures(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "element-data.json")
	texPath := filepath.Join(dir, "textures.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(elementData), 0o644))
	require.NoError(t, os.WriteFile(texPath, []byte(`{"wall": "wall.png", "grass": "grass.png", "shell": "shell.png"}`), 0o644))

	c, err := Load(dataPath, texPath)
	require.NoError(t, err)

	var names []string
	for _, b := range c.Blocks() {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"grass", "wall"}, names)

	file, ok := c.Texture("wall")
	require.True(t, ok)
	assert.Equal(t, "wall.png", file)
	assert.Equal(t, []string{"tank-body", "tank-gun"}, c.MissingTextures())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"), "")
	assert.Error(t, err)
}
