// Package loader reads MCU description files into validated mcu.Config values.
//
// # Overview
//
// A load runs in stages, each with its own failure kind:
//
//  1. read the file (KindIO)
//  2. parse it with the format bound to its extension (KindParse)
//  3. check the required structure: a non-empty name and a list of uniquely
//     named pins (KindValidation)
//  4. unify the tree with the built-in CUE #MCU schema and check the decoded
//     document with validator struct tags (KindValidation)
//  5. build the immutable mcu.Config
//
// Construction is all-or-nothing: Load returns a complete Config or an
// *Error, never both.
//
// # Formats
//
// Formats are selected by file extension, case-insensitively:
//
//	.yaml .yml   YAML, located to line and column
//	.json .cue   JSON and CUE, evaluated by the CUE runtime
//	.toml        TOML, syntax errors located
//	.hcl         HCL with pin, peripheral and memory blocks
//	.star        Starlark, evaluated with a step limit
//
// A Formats registry can be extended with custom Format implementations and
// handed to New with WithFormats.
//
// # Errors
//
// Every failure is an *Error. Match the kind with errors.Is against ErrIO,
// ErrParse or ErrValidation, or a specific validation reason with
// ReasonError:
//
//	cfg, err := loader.Load(ctx, "board.yaml")
//	switch {
//	case errors.Is(err, loader.ReasonError(loader.ReasonDuplicatePin)):
//	    // ...
//	case loader.IsValidation(err):
//	    var lerr *loader.Error
//	    errors.As(err, &lerr)
//	    for _, f := range lerr.Findings {
//	        fmt.Println(f)
//	    }
//	}
//
// Validation errors carry every finding sorted by position; the first is the
// primary one reported by Error.
//
// # Telemetry
//
// A Loader logs through telemetry.Logger, records load counters and
// durations in telemetry.Metrics and opens an mcu.load span per call. Each
// load is tagged with a fresh load id.
package loader
