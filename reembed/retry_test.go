package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordWaits replaces the backoff sleep with one that only records the
// requested delays.
func recordWaits(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	orig := wait
	wait = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	t.Cleanup(func() { wait = orig })
	return &delays
}

// script returns an operation that yields outcomes in order and then nil.
func script(outcomes ...error) (func() error, *int) {
	calls := 0
	return func() error {
		calls++
		if calls <= len(outcomes) {
			return outcomes[calls-1]
		}
		return nil
	}, &calls
}

func TestRetryWithBackoff(t *testing.T) {
	transient := errors.New("connection refused")
	cause := errors.New("bad input")

	tests := []struct {
		name        string
		outcomes    []error
		maxAttempts int
		wantErr     error
		wantCalls   int
		wantDelays  []time.Duration
	}{
		{
			name:        "first try",
			maxAttempts: 3,
			wantCalls:   1,
		},
		{
			name:        "recovers on third attempt",
			outcomes:    []error{transient, transient},
			maxAttempts: 5,
			wantCalls:   3,
			wantDelays:  []time.Duration{10 * time.Millisecond, 20 * time.Millisecond},
		},
		{
			name:        "exhausted",
			outcomes:    []error{transient, transient, transient},
			maxAttempts: 3,
			wantErr:     transient,
			wantCalls:   3,
			wantDelays:  []time.Duration{10 * time.Millisecond, 20 * time.Millisecond},
		},
		{
			name:        "permanent stops at once",
			outcomes:    []error{Permanent(cause)},
			maxAttempts: 5,
			wantErr:     cause,
			wantCalls:   1,
		},
		{
			name:        "permanent after transient",
			outcomes:    []error{transient, Permanent(cause)},
			maxAttempts: 5,
			wantErr:     cause,
			wantCalls:   2,
			wantDelays:  []time.Duration{10 * time.Millisecond},
		},
		{
			name:        "zero attempts",
			maxAttempts: 0,
			wantErr:     ErrInvalidMaxAttempts,
		},
		{
			name:        "negative attempts",
			maxAttempts: -1,
			wantErr:     ErrInvalidMaxAttempts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delays := recordWaits(t)
			op, calls := script(tt.outcomes...)

			err := RetryWithBackoff(context.Background(), op, tt.maxAttempts, 10*time.Millisecond)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, *calls)
			assert.Equal(t, tt.wantDelays, *delays)
		})
	}
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	recordWaits(t)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls == 2 {
			cancel()
		}
		return errors.New("unavailable")
	}, 10, time.Millisecond)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}

func TestRetryWithBackoff_DeadlineDuringWait(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return errors.New("unavailable")
	}, 10, time.Hour)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}

func TestPermanent(t *testing.T) {
	assert.NoError(t, Permanent(nil))

	cause := errors.New("bad input")
	err := Permanent(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause.Error(), err.Error())
}
