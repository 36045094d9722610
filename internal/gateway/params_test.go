package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaomegateam/taiga-bridge/internal/errors"
)

func TestAsInt(t *testing.T) {
	cases := []struct {
		in   any
		want int
		ok   bool
	}{
		{7, 7, true},
		{int64(7), 7, true},
		{float64(7), 7, true},
		{json.Number("7"), 7, true},
		{json.Number("7.5"), 0, false},
		{"7", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tc := range cases {
		got, ok := AsInt(tc.in)
		assert.Equal(t, tc.ok, ok, "input %v", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got)
		}
	}
}

func TestRequireInt_NumericString(t *testing.T) {
	got, err := RequireInt("42", "project_id")
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestRequireInt_Invalid(t *testing.T) {
	_, err := RequireInt("forty-two", "project_id")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.EqualError(t, err, "project_id must be an integer")
}

func TestOptionalInt_Nil(t *testing.T) {
	got, err := OptionalInt(nil, "epic_id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRequireList(t *testing.T) {
	for _, ok := range []any{nil, []any{"a"}, []string{"a"}} {
		_, err := RequireList(ok, "tags")
		assert.NoError(t, err)
	}
	_, err := RequireList("a,b", "tags")
	require.Error(t, err)
	assert.EqualError(t, err, "tags must be a list")
}

func TestValidateDueDate(t *testing.T) {
	got, err := ValidateDueDate("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", got)

	got, err = ValidateDueDate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, bad := range []any{"03/01/2026", "2026-13-01", "tomorrow", 20260301} {
		_, err := ValidateDueDate(bad)
		require.Error(t, err, "input %v", bad)
		assert.EqualError(t, err, "due_date must be in YYYY-MM-DD format")
	}
}

func TestUnsetSentinel(t *testing.T) {
	assert.True(t, IsUnset(Unset))
	assert.False(t, IsUnset(nil))
	assert.False(t, IsUnset("UNSET"))
	assert.Equal(t, "UNSET", Unset.(unsetType).String())
}
