package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

const minimalScenario = `
name: minimal
description: "smoke"
views:
  - id: v
    template: "<Tags />"
things:
  - type: Post
    id: "1"
render:
  view: v
  entity: Post/1
`

func TestLoadScenarioMinimal(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, minimalScenario))
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, "v", s.Render.View)
	assert.Empty(t, s.Namespace)
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, `
name: typo
description: "unknown key"
views:
  - id: v
    template: "<Tags />"
render:
  view: v
  entity: Post/1
assertion: []
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scenario")
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadScenarioValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: `
description: "d"
views: [{id: v, template: "<Tags />"}]
render: {view: v, entity: Post/1}
`,
			want: "name is required",
		},
		{
			name: "missing views",
			yaml: `
name: n
description: "d"
render: {view: v, entity: Post/1}
`,
			want: "views list is required",
		},
		{
			name: "view without template",
			yaml: `
name: n
description: "d"
views: [{id: v}]
render: {view: v, entity: Post/1}
`,
			want: "template is required",
		},
		{
			name: "missing render entity",
			yaml: `
name: n
description: "d"
views: [{id: v, template: "<Tags />"}]
render: {view: v}
`,
			want: "render.entity is required",
		},
		{
			name: "edge without predicate",
			yaml: `
name: n
description: "d"
views: [{id: v, template: "<Tags />"}]
edges: [{from: Post/1, to: Tag/a}]
render: {view: v, entity: Post/1}
`,
			want: "edges[0]",
		},
		{
			name: "unknown mutation type",
			yaml: `
name: n
description: "d"
views: [{id: v, template: "<Tags />"}]
render: {view: v, entity: Post/1}
expect:
  mutations: [{type: detach, predicate: tag}]
`,
			want: `unknown type "detach"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
