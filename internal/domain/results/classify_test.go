package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBetweenRange(t *testing.T) {
	cases := []struct {
		value string
		rng   string
		want  Status
	}{
		{"105", "70-99", StatusHigh},
		{"160", "70-99", StatusCritical}, // >= 99 * 1.5
		{"99", "70-99", StatusNormal},    // inclusive upper bound
		{"70", "70-99", StatusNormal},    // inclusive lower bound
		{"60", "70-99", StatusLow},
		{"30", "70-99", StatusCritical}, // <= 70 * 0.5
		{"85", "70-99", StatusNormal},
	}
	for _, c := range cases {
		got, ok := Classify(c.value, c.rng, DefaultCriticalMultiplier)
		assert.True(t, ok, "range %q should be authoritative", c.rng)
		assert.Equal(t, c.want, got, "value=%s range=%s", c.value, c.rng)
	}
}

func TestClassifyBoundRanges(t *testing.T) {
	got, ok := Classify("210", "<200", DefaultCriticalMultiplier)
	assert.True(t, ok)
	assert.Equal(t, StatusHigh, got)

	got, _ = Classify("320", "<200", DefaultCriticalMultiplier)
	assert.Equal(t, StatusCritical, got)

	got, _ = Classify("200", "<200", DefaultCriticalMultiplier)
	assert.Equal(t, StatusNormal, got)

	got, _ = Classify("35", ">40", DefaultCriticalMultiplier)
	assert.Equal(t, StatusLow, got)

	got, _ = Classify("15", ">40", DefaultCriticalMultiplier)
	assert.Equal(t, StatusCritical, got)

	got, _ = Classify("40", ">40", DefaultCriticalMultiplier)
	assert.Equal(t, StatusNormal, got)
}

func TestClassifyUnparseableRangeDefaultsNormal(t *testing.T) {
	for _, rng := range []string{"", "negative", "see note", "within normal limits"} {
		got, ok := Classify("120", rng, DefaultCriticalMultiplier)
		assert.Equal(t, StatusNormal, got)
		assert.False(t, ok, "range %q must not be authoritative", rng)
	}
}

func TestClassifyNonNumericValue(t *testing.T) {
	got, ok := Classify("positive", "70-99", DefaultCriticalMultiplier)
	assert.Equal(t, StatusNormal, got)
	assert.False(t, ok)
}

func TestClassifyRangeWithUnits(t *testing.T) {
	got, ok := Classify("250", "125-200 mg/dL", DefaultCriticalMultiplier)
	assert.True(t, ok)
	assert.Equal(t, StatusHigh, got)
}

func TestClassifyCustomMultiplier(t *testing.T) {
	// at 0.2 beyond-bound, 125 is already critical against 70-99
	got, _ := Classify("125", "70-99", 0.2)
	assert.Equal(t, StatusCritical, got)
	// default multiplier keeps it high
	got, _ = Classify("125", "70-99", DefaultCriticalMultiplier)
	assert.Equal(t, StatusHigh, got)
}
