// Package schema validates state snapshots against a CUE definition.
//
// A Schema is compiled once from CUE source and reused: each snapshot is
// unified with the definition and checked for concreteness, so missing
// fields, wrong types, and violated constraints all surface as
// ValidationErrors with the offending path.
package schema

import (
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

// Validation error codes (E200-E299)
const (
	ErrSchemaSyntax   = "E200" // CUE source does not compile
	ErrSnapshotSyntax = "E201" // snapshot is not valid JSON
	ErrConstraint     = "E202" // snapshot violates the schema
)

// ValidationError is one schema violation in a snapshot.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Path, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Schema is a compiled CUE definition ready to validate snapshots.
type Schema struct {
	ctx   *cue.Context
	value cue.Value
}

// Compile builds a Schema from CUE source. The source's top-level value
// is the shape snapshots must satisfy.
func Compile(source string) (*Schema, error) {
	ctx := cuecontext.New()
	value := ctx.CompileString(source, cue.Filename("schema.cue"))
	if err := value.Err(); err != nil {
		return nil, ValidationError{
			Message: cueerrors.Details(err, nil),
			Code:    ErrSchemaSyntax,
		}
	}
	return &Schema{ctx: ctx, value: value}, nil
}

// CompileFile reads and compiles a CUE schema from disk.
func CompileFile(path string) (*Schema, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Compile(string(source))
}

// ValidateJSON checks a JSON snapshot against the schema. It returns all
// violations found, not just the first, each naming the snapshot path
// that failed. A nil slice means the snapshot is valid.
func (s *Schema) ValidateJSON(data []byte) []ValidationError {
	expr, err := cuejson.Extract("snapshot.json", data)
	if err != nil {
		return []ValidationError{{
			Message: err.Error(),
			Code:    ErrSnapshotSyntax,
		}}
	}

	snapshot := s.ctx.BuildExpr(expr)
	if err := snapshot.Err(); err != nil {
		return []ValidationError{{
			Message: cueerrors.Details(err, nil),
			Code:    ErrSnapshotSyntax,
		}}
	}

	unified := s.value.Unify(snapshot)
	err = unified.Validate(cue.Concrete(true), cue.Final())
	if err == nil {
		return nil
	}

	var errs []ValidationError
	for _, e := range cueerrors.Errors(err) {
		ve := ValidationError{
			Path:    strings.Join(cueerrors.Path(e), "."),
			Message: e.Error(),
			Code:    ErrConstraint,
		}
		for _, pos := range e.InputPositions() {
			if pos.IsValid() && pos.Filename() == "snapshot.json" {
				ve.Line = pos.Line()
				break
			}
		}
		errs = append(errs, ve)
	}
	return errs
}
