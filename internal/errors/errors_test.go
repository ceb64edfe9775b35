package errors

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsInternalOutOfPublicMessage(t *testing.T) {
	cause := stderrors.New("pq: connection refused")
	err := NewDatabaseError(cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsType(err, ErrorTypeDatabase))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, MsgStoreFailure, err.PublicMessage())
	assert.NotContains(t, err.PublicMessage(), "pq")
}

func TestPublicMessageByType(t *testing.T) {
	assert.Equal(t, "bad", NewValidationError("bad").PublicMessage())
	assert.Equal(t, "entry not found", NewNotFoundError("entry").PublicMessage())
	assert.Equal(t, MsgProviderFailure, NewExternalAPIError(stderrors.New("quota"), "gemini").PublicMessage())
	assert.Equal(t, MsgTooManyRequests, NewRateLimitError(time.Second).PublicMessage())
	assert.Equal(t, MsgInternal, NewInternalError(stderrors.New("x")).PublicMessage())
	assert.Equal(t, "Invalid token", NewUnauthorizedError("Invalid token").PublicMessage())
}

func TestTimeoutErrorKeepsCause(t *testing.T) {
	err := NewTimeoutError(context.DeadlineExceeded, "suggestion")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, ErrorTypeTimeout, err.Type)
	assert.Equal(t, "suggestion", err.Context["operation"])
	assert.Equal(t, MsgProviderFailure, err.PublicMessage())
}

func TestRetryAfterSecondsRoundsUp(t *testing.T) {
	assert.Equal(t, 2, NewRateLimitError(1500*time.Millisecond).RetryAfterSeconds())
	assert.Equal(t, 3600, NewRateLimitError(time.Hour).RetryAfterSeconds())
	assert.Equal(t, 1, NewRateLimitError(0).RetryAfterSeconds())
}

func TestAsThroughWrappedChain(t *testing.T) {
	wrapped := fmt.Errorf("loading day: %w", NewValidationError("nope"))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorTypeValidation, appErr.Type)
	assert.True(t, IsType(wrapped, ErrorTypeValidation))
	assert.False(t, IsType(wrapped, ErrorTypeDatabase))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeValidation))
}

func TestHandlerLogsByType(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(slog.New(slog.NewTextHandler(&buf, nil)))

	h.Handle(context.Background(), NewExternalAPIError(stderrors.New("upstream 503"), "openai"))
	assert.Contains(t, buf.String(), "Critical error")
	assert.Contains(t, buf.String(), "upstream 503")

	buf.Reset()
	h.Handle(context.Background(), NewRateLimitError(time.Minute))
	assert.Contains(t, buf.String(), "Rate limit error")

	buf.Reset()
	h.Handle(context.Background(), nil)
	assert.Empty(t, buf.String())
}
