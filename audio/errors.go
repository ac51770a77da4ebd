package audio

import "errors"

var (
	ErrChannelMismatch   = errors.New("sample count is not a multiple of the channel count")
	ErrNotConfigured     = errors.New("reassembler used before configure")
	ErrInvalidFrameSize  = errors.New("frame size must be positive")
	ErrUnsupportedFormat = errors.New("unsupported PCM format")
	ErrUnsupportedLayout = errors.New("unsupported channel layout conversion")
	ErrPartialFrame      = errors.New("buffer is not a whole number of sample frames")
)
