package audio

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrChannelMismatch,
		ErrNotConfigured,
		ErrInvalidFrameSize,
		ErrUnsupportedFormat,
		ErrUnsupportedLayout,
		ErrPartialFrame,
	}

	for i, err := range sentinels {
		t.Run(err.Error(), func(t *testing.T) {
			t.Parallel()

			wrapped := fmt.Errorf("frame %d: %w", i, err)
			if !errors.Is(wrapped, err) {
				t.Errorf("errors.Is() failed for wrapped %v", err)
			}

			for j, other := range sentinels {
				if i != j && errors.Is(wrapped, other) {
					t.Errorf("%v matches unrelated %v", err, other)
				}
			}
		})
	}
}
