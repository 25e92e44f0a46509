package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMeasurementLine(t *testing.T) {
	rs := Extract("Cholesterol 250 mg/dL (ref 125-200)", DefaultCriticalMultiplier)
	require.Len(t, rs, 1)
	assert.Equal(t, "Cholesterol", rs[0].Biomarker)
	assert.Equal(t, "250", rs[0].Value)
	assert.Equal(t, "mg/dL", rs[0].Unit)
	assert.Equal(t, "125-200", rs[0].ReferenceRange)
	assert.Equal(t, StatusHigh, rs[0].Status)
	assert.Equal(t, "Lipids", rs[0].Category)
}

func TestExtractMultipleLinesAndFormats(t *testing.T) {
	text := "Hemoglobin: 13.5 g/dL (13.0-17.0)\n" +
		"Glucose 160 mg/dL (reference: 70-99)\n" +
		"TSH 2.1 mIU/L\n" +
		"\n" +
		"Reviewed by Dr. Smith on arrival, follow up in two weeks\n"
	rs := Extract(text, DefaultCriticalMultiplier)
	require.Len(t, rs, 3)

	assert.Equal(t, "Hemoglobin", rs[0].Biomarker)
	assert.Equal(t, StatusNormal, rs[0].Status)
	assert.Equal(t, "CBC", rs[0].Category)

	assert.Equal(t, "Glucose", rs[1].Biomarker)
	assert.Equal(t, StatusCritical, rs[1].Status) // 160 >= 99 * 1.5
	assert.Equal(t, "Metabolic", rs[1].Category)

	// no range: classified normal, range not authoritative
	assert.Equal(t, "TSH", rs[2].Biomarker)
	assert.Equal(t, StatusNormal, rs[2].Status)
	assert.Equal(t, "", rs[2].ReferenceRange)
}

func TestExtractSkipsNonMeasurementText(t *testing.T) {
	text := "LABORATORY REPORT\n" +
		"=================\n" +
		"Patient fasting sample collected in the morning before intake\n"
	assert.Empty(t, Extract(text, DefaultCriticalMultiplier))
}

func TestExtractUnknownBiomarkerUncategorized(t *testing.T) {
	rs := Extract("Homocysteine 8.2 umol/L (5-15)", DefaultCriticalMultiplier)
	require.Len(t, rs, 1)
	assert.Equal(t, "", rs[0].Category)
}
