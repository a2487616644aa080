package httpclient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name        string
		result      Result[int]
		wantSuccess bool
		wantValue   int
		wantErr     error
	}{
		{
			name:        "given success, then holds value and no error",
			result:      Success(42),
			wantSuccess: true,
			wantValue:   42,
		},
		{
			name:    "given failure, then holds error and zero value",
			result:  Failure[int](errBoom),
			wantErr: errBoom,
		},
		{
			name:        "given zero result, then it is a success of the zero value",
			result:      Result[int]{},
			wantSuccess: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantSuccess, tt.result.IsSuccess())
			assert.Equal(t, !tt.wantSuccess, tt.result.IsFailure())

			v, ok := tt.result.SuccessValue()
			assert.Equal(t, tt.wantSuccess, ok)
			assert.Equal(t, tt.wantValue, v)
			assert.Equal(t, tt.wantErr, tt.result.FailureValue())

			got, err := tt.result.Get()
			assert.Equal(t, tt.wantValue, got)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestFailure_NilError(t *testing.T) {
	t.Run("given nil error, then panics", func(t *testing.T) {
		assert.Panics(t, func() { _ = Failure[int](nil) })
	})
}

func TestCatch(t *testing.T) {
	t.Run("given function returning value, then success", func(t *testing.T) {
		res := Catch(func() (string, error) { return "ok", nil })
		v, err := res.Get()
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})

	t.Run("given function returning error, then failure with that error", func(t *testing.T) {
		errBoom := errors.New("boom")
		res := Catch(func() (string, error) { return "ignored", errBoom })
		assert.Same(t, errBoom, res.FailureValue())
	})
}

func TestFlatMap(t *testing.T) {
	t.Run("given success, then applies function", func(t *testing.T) {
		res := FlatMap(Success(2), func(v int) Result[string] {
			return Success(string(rune('a' + v)))
		})
		v, ok := res.SuccessValue()
		require.True(t, ok)
		assert.Equal(t, "c", v)
	})

	t.Run("given failure, then passes error through without calling function", func(t *testing.T) {
		errBoom := errors.New("boom")
		called := false
		res := FlatMap(Failure[int](errBoom), func(int) Result[string] {
			called = true
			return Success("x")
		})
		assert.False(t, called)
		assert.Same(t, errBoom, res.FailureValue())
	})

	t.Run("given function failing, then returns its failure", func(t *testing.T) {
		errBoom := errors.New("boom")
		res := FlatMap(Success(1), func(int) Result[string] {
			return Failure[string](errBoom)
		})
		assert.Same(t, errBoom, res.FailureValue())
	})
}
