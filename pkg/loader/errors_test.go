package loader

import (
	"errors"
	"io/fs"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "io",
			err:  newIOError("board.yaml", fs.ErrNotExist),
			want: "[io] board.yaml: failed to read description: file does not exist",
		},
		{
			name: "parse with position",
			err:  newParseError("board.yaml", 3, 7, "mapping values are not allowed", nil),
			want: "[parse] board.yaml:3:7: mapping values are not allowed",
		},
		{
			name: "parse without position",
			err:  newParseError("board.ini", 0, 0, `unsupported description format ".ini"`, nil),
			want: `[parse] board.ini: unsupported description format ".ini"`,
		},
		{
			name: "validation with more findings",
			err: newValidationError("board.yaml", []Finding{
				{Field: "pins[1].name", Reason: ReasonEmptyField, Message: "pin name must not be empty", Line: 5, Column: 11},
				{Field: "name", Reason: ReasonMissingField, Message: "missing required field"},
			}),
			want: "[validation] board.yaml:5:11: pins[1].name: pin name must not be empty (and 1 more)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := newValidationError("board.yaml", []Finding{
		{Field: "pins[2].name", Reason: ReasonDuplicatePin, Message: "duplicate pin"},
	})

	tests := []struct {
		name   string
		target error
		want   bool
	}{
		{name: "kind", target: ErrValidation, want: true},
		{name: "other kind", target: ErrParse, want: false},
		{name: "reason", target: ReasonError(ReasonDuplicatePin), want: true},
		{name: "other reason", target: ReasonError(ReasonMissingField), want: false},
		{name: "unrelated", target: fs.ErrNotExist, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(err, tt.target); got != tt.want {
				t.Errorf("errors.Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithPath(t *testing.T) {
	err := withPath(newParseError("board.yaml", 1, 1, "bad", nil), "board.yaml")

	var lerr *Error
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if lerr.Path != "board.yaml" || lerr.File != "" {
		t.Errorf("expected path set and file cleared, got %+v", lerr)
	}

	if KindOf(errors.New("plain")) != "" || ReasonOf(nil) != "" {
		t.Error("expected empty kind and reason for foreign errors")
	}
}

func TestFinding_String(t *testing.T) {
	f := Finding{Field: "name", Message: "missing required field"}
	if got := f.String(); got != "name: missing required field" {
		t.Errorf("String() = %q", got)
	}

	f.Line, f.Column = 2, 1
	if got := f.String(); got != "2:1: name: missing required field" {
		t.Errorf("String() = %q", got)
	}
}
