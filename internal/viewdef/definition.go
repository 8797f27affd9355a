// Package viewdef compiles CUE view definitions into storable view
// documents.
//
// A definition file declares views under a top-level "view" struct:
//
//	view: "post-detail": {
//		entityType: "Post"
//		template: """
//			# {title}
//
//			## Tags
//
//			<Tags columns=["name"] />
//			"""
//	}
//
// Compilation uses the CUE Go API directly, not a CLI subprocess, and
// reports errors with source positions.
package viewdef

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/lattice/internal/template"
)

// Definition is one compiled view, ready for seeding into storage.
type Definition struct {
	// ID is the view document id, taken from the struct label.
	ID string

	// EntityType optionally names the context entity type the view is
	// designed for.
	EntityType string

	// Template is the markdown template with component tags.
	Template string
}

// CompileError is a definition error with source position.
type CompileError struct {
	View    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	field := e.Field
	if e.View != "" {
		field = e.View + "." + e.Field
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), field, e.Message)
	}
	return fmt.Sprintf("%s: %s", field, e.Message)
}

// CompileFile reads and compiles a CUE definition file.
func CompileFile(path string) ([]Definition, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read view definitions: %w", err)
	}
	return Compile(path, src)
}

// Compile parses CUE source into view definitions. filename is used in
// error positions only.
func Compile(filename string, src []byte) ([]Definition, error) {
	cctx := cuecontext.New()
	v := cctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError("", err)
	}

	views := v.LookupPath(cue.ParsePath("view"))
	if !views.Exists() {
		return nil, &CompileError{
			Field:   "view",
			Message: "no view declarations found",
			Pos:     v.Pos(),
		}
	}

	iter, err := views.Fields()
	if err != nil {
		return nil, formatCUEError("", err)
	}

	var defs []Definition
	for iter.Next() {
		// Quoted labels ("post-detail") stringify with their quotes.
		id := strings.Trim(iter.Selector().String(), `"`)
		def, err := compileDefinition(id, iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return nil, &CompileError{
			Field:   "view",
			Message: "at least one view is required",
			Pos:     views.Pos(),
		}
	}
	return defs, nil
}

func compileDefinition(id string, v cue.Value) (Definition, error) {
	def := Definition{ID: id}

	tmplVal := v.LookupPath(cue.ParsePath("template"))
	if !tmplVal.Exists() {
		return def, &CompileError{
			View:    id,
			Field:   "template",
			Message: "template is required",
			Pos:     v.Pos(),
		}
	}
	tmpl, err := tmplVal.String()
	if err != nil {
		return def, formatCUEError(id, err)
	}
	def.Template = tmpl

	etVal := v.LookupPath(cue.ParsePath("entityType"))
	if etVal.Exists() {
		et, err := etVal.String()
		if err != nil {
			return def, formatCUEError(id, err)
		}
		def.EntityType = et
	}

	if err := validateTemplate(id, tmpl, tmplVal.Pos()); err != nil {
		return def, err
	}
	return def, nil
}

// anyFormatAttr matches any format attribute, valid or not, so a typo
// like format=grid fails compilation instead of silently rendering a
// table.
var anyFormatAttr = regexp.MustCompile(`format="?([A-Za-z]+)"?`)

func validateTemplate(id, tmpl string, pos token.Pos) error {
	for _, m := range anyFormatAttr.FindAllStringSubmatch(tmpl, -1) {
		switch template.Format(m[1]) {
		case template.FormatTable, template.FormatList, template.FormatCards:
		default:
			return &CompileError{
				View:    id,
				Field:   "template",
				Message: fmt.Sprintf("unknown format %q (want table, list, or cards)", m[1]),
				Pos:     pos,
			}
		}
	}
	return nil
}

// formatCUEError extracts position info from a CUE error chain.
func formatCUEError(view string, err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &CompileError{
			View:    view,
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
