package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/stridefix/internal/batch"
	"github.com/roach88/stridefix/internal/fixture"
)

// Field roles reported by classify.
const (
	RoleStride    = "stride"
	RoleOffset    = "offset"
	RoleSequence  = "sequence"  // flat numeric base sequence
	RoleCompanion = "companion" // flat numeric <K>_out
)

// FieldInfo describes one top-level fixture field.
type FieldInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Role string `json:"role,omitempty"`
}

// ClassifyResult is the payload of the classify command.
type ClassifyResult struct {
	File   string      `json:"file"`
	Fields []FieldInfo `json:"fields"`
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <file.json>",
		Short: "Show how each field of a fixture is classified",
		Long: `Print every top-level field of a fixture with its shape class
(scalar, flat-numeric or other) and the role the transforms give it.

Examples:
  stridefix classify ./fixtures/daxpy.json
  stridefix classify ./fixtures/dgemv.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runClassify(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts, cmd.OutOrStdout())

	rec, err := fixture.ReadRecord(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return WrapExitError(ExitCommandError, "fixture not found", err)
		}
		if opts.Format == "json" {
			_ = formatter.Error(batch.ErrCodeParseFailed, err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "failed to load fixture", err)
	}

	result := Classify(rec)
	return formatter.Result(result, func(w io.Writer) {
		printClassification(w, result)
	})
}

// Classify describes every field of rec in document order.
func Classify(rec fixture.Record) ClassifyResult {
	result := ClassifyResult{File: rec.Name, Fields: []FieldInfo{}}
	for _, key := range rec.Fields.Keys() {
		v, _ := rec.Fields.Get(key)
		result.Fields = append(result.Fields, FieldInfo{
			Name: key,
			Kind: fixture.Classify(v).String(),
			Role: fieldRole(key, v),
		})
	}
	return result
}

func fieldRole(name string, v fixture.Value) string {
	switch {
	case fixture.IsStrideField(name):
		return RoleStride
	case fixture.IsOffsetField(name):
		return RoleOffset
	case !fixture.IsFlatNumeric(v):
		return ""
	case fixture.IsOutField(name):
		return RoleCompanion
	default:
		return RoleSequence
	}
}

func printClassification(w io.Writer, result ClassifyResult) {
	fmt.Fprintf(w, "%s\n", result.File)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range result.Fields {
		role := f.Role
		if role == "" {
			role = "-"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", f.Name, f.Kind, role)
	}
	_ = tw.Flush()
}
