package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeRangeInput(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"0", true},
		{"007", true},
		{"350", true},
		{"4294967", true},
		{"4294968", false},
		{"99999999999999999999", false},
		{"-1", false},
		{"1.5", false},
		{"12a", false},
		{" 12", false},
		{"１２", false},
	}

	for _, c := range cases {
		if got := SanitizeRangeInput(c.in); got != c.want {
			t.Fatalf("SanitizeRangeInput(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRangeFormRejectsNonNumeric(t *testing.T) {
	notices := NewNoticeLog()
	f := NewRangeForm(notices)

	require.NoError(t, f.SetCurrent("50"))
	err := f.SetCurrent("5o")
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Equal(t, "50", f.Values().CurrentRange)

	n, ok := notices.Last()
	require.True(t, ok)
	assert.Equal(t, ErrInvalidRange.Error(), n.Message)
}

func TestRangeFormRejectIsIdempotent(t *testing.T) {
	f := NewRangeForm(NewNoticeLog())
	require.NoError(t, f.SetMax("100"))
	require.NoError(t, f.SetCurrent("50"))

	for i := 0; i < 3; i++ {
		err := f.SetCurrent("150")
		assert.ErrorIs(t, err, ErrRangeOrder)
		v := f.Values()
		assert.Equal(t, "50", v.CurrentRange)
		assert.Equal(t, "100", v.MaxRange)
	}
}

func TestRangeFormOrderRuleAppliesToBothFields(t *testing.T) {
	f := NewRangeForm(NewNoticeLog())
	require.NoError(t, f.SetCurrent("80"))
	require.NoError(t, f.SetMax("100"))

	assert.ErrorIs(t, f.SetMax("40"), ErrRangeOrder)
	assert.Equal(t, "100", f.Values().MaxRange)

	// Equal values are allowed.
	require.NoError(t, f.SetMax("80"))

	// With one side empty there is nothing to compare.
	require.NoError(t, f.SetMax(""))
	require.NoError(t, f.SetCurrent("150"))
	assert.ErrorIs(t, f.SetMax("100"), ErrRangeOrder)
	assert.Equal(t, "", f.Values().MaxRange)
}

func TestFormValuesRangeSpec(t *testing.T) {
	_, err := FormValues{CurrentRange: "10"}.RangeSpec()
	assert.ErrorIs(t, err, ErrRangeMissing)

	_, err = FormValues{CurrentRange: "60", MaxRange: "50"}.RangeSpec()
	assert.ErrorIs(t, err, ErrRangeOrder)

	spec, err := FormValues{CurrentRange: "50", MaxRange: "300"}.RangeSpec()
	require.NoError(t, err)
	assert.EqualValues(t, 50, spec.Current)
	assert.EqualValues(t, 300, spec.Max)
}

func TestRangeFormModeAndObjective(t *testing.T) {
	f := NewRangeForm(NewNoticeLog())
	v := f.Values()
	assert.Equal(t, "car", string(v.Mode))
	assert.Equal(t, "time", string(v.Objective))

	f.SetMode("walk")
	f.SetObjective("distance")
	f.SetCurrent("1")
	f.Clear()

	assert.Equal(t, FormValues{Mode: "car", Objective: "time"}, f.Values())
}
