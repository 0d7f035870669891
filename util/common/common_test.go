package common

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover(t *testing.T) {
	var got any
	func() {
		defer func() { got = recover() }()
		func() {
			defer Recover("recovered in test")
			panic("boom")
		}()
	}()
	assert.Nil(t, got, "Recover stops the panic from propagating")

	assert.NotPanics(t, func() {
		defer Recover("")
	})
}

func TestCombine(t *testing.T) {
	t.Run("NoErrors", func(t *testing.T) {
		assert.NoError(t, Combine(nil, nil))
	})

	t.Run("MultipleErrors", func(t *testing.T) {
		e1 := errors.New("error 1")
		e2 := errors.New("error 2")
		err := Combine(e1, nil, e2)
		require.Error(t, err)
		msg := err.Error()
		if !strings.Contains(msg, "error 1") || !strings.Contains(msg, "error 2") {
			t.Errorf("expected error to contain both errors, got '%s'", msg)
		}
	})
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found helper", NotFound("op", "Server", 7), ErrCodeNotFound},
		{"duplicate helper", Duplicate("op", "Client", "username", "bob"), ErrCodeDuplicate},
		{"invalid input", InvalidInput("op", "bad %s", "url"), ErrCodeInvalidInput},
		{"wrapped connection", Wrap("op", ErrConnectionFailed), ErrCodeConnectionFailed},
		{"external", ErrExternalAPI, ErrCodeExternal},
		{"sync in progress", ErrSyncInProgress, ErrCodeConflict},
		{"plain error", errors.New("boom"), ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCode(tt.err))
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("ServerService.GetServer", "Server", 42)
	assert.True(t, IsNotFoundError(err))
	assert.Contains(t, err.Error(), `Server with id "42"`)
	assert.Contains(t, err.Error(), "[ServerService.GetServer]")
}

func withNoSleep(t *testing.T) *[]time.Duration {
	var delays []time.Duration
	orig := sleep
	sleep = func(d time.Duration) { delays = append(delays, d) }
	t.Cleanup(func() { sleep = orig })
	return &delays
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	delays := withNoSleep(t)

	calls := 0
	var retried []int
	got, err := Retry(func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}, RetryOptions{
		Retries: 3,
		Delay:   100 * time.Millisecond,
		OnRetry: func(attempt int, err error) { retried = append(retried, attempt) },
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
	// 线性退避
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *delays)
}

func TestRetry_ReturnsLastError(t *testing.T) {
	withNoSleep(t)

	calls := 0
	err := RetryErr(func() error {
		calls++
		return fmt.Errorf("attempt %d", calls)
	}, RetryOptions{Retries: 2, Delay: time.Millisecond})

	require.Error(t, err)
	assert.Equal(t, "attempt 2", err.Error())
	assert.Equal(t, 2, calls)
}

func TestRetry_StopsOnNonRetryable(t *testing.T) {
	delays := withNoSleep(t)

	calls := 0
	err := RetryErr(func() error {
		calls++
		return ErrExternalAPI
	}, RetryOptions{Retries: 3, Delay: time.Millisecond, ShouldRetry: IsTransportError})

	assert.ErrorIs(t, err, ErrExternalAPI)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *delays)
}

func TestRetry_ZeroRetriesRunsOnce(t *testing.T) {
	withNoSleep(t)

	calls := 0
	_ = RetryErr(func() error {
		calls++
		return errors.New("x")
	}, RetryOptions{})
	assert.Equal(t, 1, calls)
}
