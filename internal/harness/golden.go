package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares its rendered markdown
// against testdata/golden/{scenario.Name}.golden. When the scenario
// commits, the post-commit rendering is compared against
// {scenario.Name}_committed.golden as well.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, []byte(result.Markdown))
	if scenario.Commit {
		g.Assert(t, scenario.Name+"_committed", []byte(result.Final))
	}
	return result, nil
}
