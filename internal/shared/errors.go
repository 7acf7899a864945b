package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Storage errors
	ErrStore        = fmt.Errorf("band store failure")
	ErrBandNotFound = fmt.Errorf("band not found")
	ErrDuplicate    = fmt.Errorf("band already exists")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
	ErrUnsupportedFile = fmt.Errorf("unsupported file format")
)
