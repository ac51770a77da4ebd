package capture

import "errors"

var (
	ErrDeviceNotFound = errors.New("capture device not found")
	ErrInvalidConfig  = errors.New("invalid capture configuration")
)
