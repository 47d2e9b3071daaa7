package errors

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	first := ErrWriteRejected.WithDetail("message", "Email is expected to be email")
	second := ErrWriteRejected.WithDetail("message", "Total Price is expected to be number")

	// The package-level sentinel must stay pristine, and each derived
	// error must keep the detail it was given.
	assert.Empty(t, ErrWriteRejected.Details)
	assert.Equal(t, "Email is expected to be email", first.Details["message"])
	assert.Equal(t, "Total Price is expected to be number", second.Details["message"])
	assert.Contains(t, first.Error(), "Email is expected to be email")
	assert.Contains(t, second.Error(), "Total Price is expected to be number")
}

func TestWithCauseDoesNotShareDetails(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("dial tcp: i/o timeout"), ErrDestinationUnreachable)
	require.NotNil(t, wrapped)

	wrapped = wrapped.WithDetail("database_id", "db-1")

	assert.Empty(t, ErrDestinationUnreachable.Details)
	assert.Equal(t, "db-1", wrapped.Details["database_id"])
	assert.True(t, Is(wrapped, ErrDestinationUnreachable))
}

func TestWithDetailConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			msg := fmt.Sprintf("rejection %d", n)
			for j := 0; j < 100; j++ {
				err := ErrWriteRejected.WithDetail("message", msg)
				assert.Equal(t, msg, err.Details["message"])
				assert.Contains(t, err.Error(), msg)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, ErrWriteRejected.Details)
}
