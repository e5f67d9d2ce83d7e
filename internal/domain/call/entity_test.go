package call

import (
	"errors"
	"testing"

	xerrors "leadpulse-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	t.Run("callback disposition parses to the enum constant", func(t *testing.T) {
		// The "callback" disposition and the provider callback DTO live in
		// the same package under distinct names; the quality aggregator's
		// callbackRate keys off this constant.
		status, err := ParseStatus("callback")
		require.NoError(t, err)
		assert.Equal(t, StatusCallback, status)

		var _ ProviderStatusCallback
	})

	t.Run("unknown disposition fails validation", func(t *testing.T) {
		_, err := ParseStatus("ghosted")
		assert.True(t, errors.Is(err, xerrors.ErrValidation))
	})
}
