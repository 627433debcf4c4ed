package handle

import (
	"github.com/openfroyo/mcuconf/pkg/loader"
)

// Status is the result code reported across the boundary.
type Status int32

const (
	StatusOK              Status = 0
	StatusIOError         Status = 1
	StatusParseError      Status = 2
	StatusValidationError Status = 3
	StatusInvalidArgument Status = 4
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusIOError:
		return "io_error"
	case StatusParseError:
		return "parse_error"
	case StatusValidationError:
		return "validation_error"
	case StatusInvalidArgument:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

// StatusOf maps a load error onto a Status. Errors that are not load errors,
// such as a canceled context, map to StatusInvalidArgument.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	switch loader.KindOf(err) {
	case loader.KindIO:
		return StatusIOError
	case loader.KindParse:
		return StatusParseError
	case loader.KindValidation:
		return StatusValidationError
	default:
		return StatusInvalidArgument
	}
}
