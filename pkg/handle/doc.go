// Package handle exposes loaded MCU configurations through opaque integer
// handles for callers on the far side of a foreign-function boundary.
//
// # Ownership
//
// Create returns an owned ConfigHandle; the caller releases it exactly once
// with Release. Pins returns a borrowed TableHandle that is valid only while
// its ConfigHandle is live and is never released on its own. Strings handed
// out are independent copies.
//
// Failures collapse to the zero handle. CreateWithStatus additionally
// reports whether the file could not be read, did not parse, or was not a
// valid description.
//
// # Handle Values
//
// Config handles are even and table handles odd, so a table handle passed
// where a config handle is expected (or the reverse) is rejected rather than
// misread. Handles are never reused within a Registry, which turns most
// use-after-release mistakes into a lookup miss.
package handle
