// Package harness provides scenario-driven conformance testing for the
// view render and sync pipeline.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	views:
//	  - id: post-detail
//	    template: |
//	      ## Tags
//
//	      <Tags columns=["name"] />
//	things:
//	  - type: Post
//	    id: "1"
//	    data: { title: "My Post" }
//	edges:
//	  - from: Post/1
//	    predicate: tag
//	    to: Tag/a
//	render:
//	  view: post-detail
//	  entity: Post/1
//	edits:
//	  - old: "| bar |\n"
//	    new: ""
//	expect:
//	  mutations:
//	    - type: remove
//	      predicate: tag
//	      from: Post/1
//	      to: Tag/b
//
// Entity references use the short "Type/id" form and are resolved in
// the scenario's namespace; a full URL is passed through unchanged.
//
// Edits are literal string replacements applied to the rendered
// markdown. An edit whose old text does not occur fails the run, which
// catches scenarios drifting out of step with the renderer.
//
// # Deterministic Execution
//
// Each scenario runs against a fresh in-memory SQLite database with a
// deterministic clock and sequential id generation, so renders and
// sync results are identical across runs. RunWithGolden compares the
// rendered markdown against golden files in testdata/golden.
package harness
