package badgesource_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credentialengine/obpublisher/internal/badgesource"
	"github.com/credentialengine/obpublisher/pkg/errors"
)

const badgeJSON = `{
  "id": "https://example.com/badges/1",
  "name": "Skillful Badge",
  "description": "Held by skillful people",
  "achievementType": "Certificate",
  "criteria": {"id": "https://example.com/badges/1/criteria", "narrative": "Do the *thing*"},
  "alignment": [
    {"targetUrl": "http://example.com/competency/1", "targetName": "Competency 1", "targetCode": "C1"}
  ]
}`

const badgesYAML = `
- id: https://example.com/badges/2
  name: Second
  description: Second badge
  tags: [welding, safety]
  alignment:
    - targetUrl: http://example.com/occupation/2
      targetName: Welder
- id: https://example.com/badges/3
  name: Third
  description: Third badge
`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDecodeJSONObjectOrList(t *testing.T) {
	one, err := badgesource.Decode(strings.NewReader(badgeJSON), badgesource.JSON)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "Skillful Badge", one[0].Name)
	assert.Equal(t, "Certificate", one[0].AchievementType)
	assert.Equal(t, "https://example.com/badges/1/criteria", one[0].Criteria.ID)
	require.Len(t, one[0].Alignment, 1)
	assert.Equal(t, "C1", one[0].Alignment[0].TargetCode)

	list, err := badgesource.Decode(strings.NewReader("["+badgeJSON+","+badgeJSON+"]"), badgesource.JSON)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	empty, err := badgesource.Decode(strings.NewReader("  "), badgesource.JSON)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecodeYAMLObjectOrList(t *testing.T) {
	list, err := badgesource.Decode(strings.NewReader(badgesYAML), badgesource.YAML)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"welding", "safety"}, list[0].Tags)
	require.Len(t, list[0].Alignment, 1)
	assert.Equal(t, "Welder", list[0].Alignment[0].TargetName)

	one, err := badgesource.Decode(strings.NewReader("id: https://example.com/badges/9\nname: Solo\n"), badgesource.YAML)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "Solo", one[0].Name)
}

func TestDecodeDropsBadgesWithoutID(t *testing.T) {
	list, err := badgesource.Decode(strings.NewReader(`[{"name": "No id"}, `+badgeJSON+`]`), badgesource.JSON)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Skillful Badge", list[0].Name)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.yaml", badgesYAML)
	write(t, dir, "a.json", badgeJSON)
	write(t, dir, "README.md", "# notes")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	list, err := badgesource.Load(dir)
	require.NoError(t, err)

	names := make([]string, len(list))
	for i, b := range list {
		names[i] = b.Name
	}
	assert.Equal(t, []string{"Skillful Badge", "Second", "Third"}, names)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := badgesource.LoadFile(write(t, dir, "badges.txt", badgeJSON))
	assert.True(t, errors.IsValidationError(err))

	broken := write(t, dir, "broken.json", `{"id": `)
	_, err = badgesource.LoadFile(broken)
	var parseErr *errors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, broken, parseErr.File)

	_, err = badgesource.Load(filepath.Join(dir, "missing.json"))
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestFormatFor(t *testing.T) {
	for path, want := range map[string]badgesource.Format{
		"a.json": badgesource.JSON,
		"a.YAML": badgesource.YAML,
		"a.yml":  badgesource.YAML,
	} {
		got, ok := badgesource.FormatFor(path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}
	_, ok := badgesource.FormatFor("a.csv")
	assert.False(t, ok)
}
