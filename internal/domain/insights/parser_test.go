package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoldHeaders(t *testing.T) {
	n := Parse("**Insights**\n- A\n- B\n**Warnings**\n- C")
	assert.Equal(t, []string{"A", "B"}, n.Insights)
	assert.Equal(t, []string{"C"}, n.Warnings)
	assert.Equal(t, []string{DefaultRecommendation}, n.Recommendations)
	assert.Empty(t, n.FollowUps)
}

func TestParsePlainHeaders(t *testing.T) {
	text := "Insights:\n" +
		"- Hemoglobin is within range\n" +
		"Recommendations:\n" +
		"1. Reduce sugar intake\n" +
		"2. Re-test in 3 months\n" +
		"Follow-up Tests:\n" +
		"- HbA1c\n"
	n := Parse(text)
	assert.Equal(t, []string{"Hemoglobin is within range"}, n.Insights)
	assert.Equal(t, []string{"Reduce sugar intake", "Re-test in 3 months"}, n.Recommendations)
	assert.Equal(t, []string{"HbA1c"}, n.FollowUps)
	assert.Empty(t, n.Warnings)
}

func TestParseNonBulletLinesKept(t *testing.T) {
	text := "**Insights**\nYour cholesterol is elevated compared to last year.\nKidney markers look stable.\n"
	n := Parse(text)
	assert.Equal(t, []string{
		"Your cholesterol is elevated compared to last year.",
		"Kidney markers look stable.",
	}, n.Insights)
}

func TestParseSkipsRulesAndBareHeaders(t *testing.T) {
	text := "**Insights**\n=====\nSummary:\n- Glucose slightly high\n####\n"
	n := Parse(text)
	assert.Equal(t, []string{"Glucose slightly high"}, n.Insights)
}

func TestParseEmptyTextReturnsDefaults(t *testing.T) {
	n := Parse("")
	assert.Equal(t, []string{DefaultInsight}, n.Insights)
	assert.Equal(t, []string{DefaultRecommendation}, n.Recommendations)
	assert.Empty(t, n.Warnings)
	assert.Empty(t, n.FollowUps)
	require.NotNil(t, n.Warnings)
	require.NotNil(t, n.FollowUps)
}

func TestParseHeuristicFallback(t *testing.T) {
	text := "Your blood work shows mostly healthy values across all panels.\n\n" +
		"You should consider more iron-rich foods to raise ferritin.\n\n" +
		"Caution: glucose is trending upward and is concerning.\n"
	n := Parse(text)
	assert.Equal(t, []string{"Your blood work shows mostly healthy values across all panels."}, n.Insights)
	assert.Equal(t, []string{"You should consider more iron-rich foods to raise ferritin."}, n.Recommendations)
	assert.Equal(t, []string{"Caution: glucose is trending upward and is concerning."}, n.Warnings)
	assert.Empty(t, n.FollowUps)
}

func TestParseHeuristicShortFirstParagraph(t *testing.T) {
	// first paragraph too short to qualify as an insight
	n := Parse("All good.\n\nEverything in this lab report sits comfortably inside its range.")
	assert.Equal(t, []string{"Everything in this lab report sits comfortably inside its range."}, n.Insights)
	assert.Equal(t, []string{DefaultRecommendation}, n.Recommendations)
}

func TestParseCaseInsensitiveHeaders(t *testing.T) {
	n := Parse("**INSIGHTS**\n- a\nwarnings:\n- b")
	assert.Equal(t, []string{"a"}, n.Insights)
	assert.Equal(t, []string{"b"}, n.Warnings)
}

func TestParseNeverReturnsNilLists(t *testing.T) {
	for _, text := range []string{"", "plain text", "**Warnings**\n- only warnings"} {
		n := Parse(text)
		require.NotNil(t, n.Insights, "text=%q", text)
		require.NotNil(t, n.Recommendations, "text=%q", text)
		require.NotNil(t, n.Warnings, "text=%q", text)
		require.NotNil(t, n.FollowUps, "text=%q", text)
	}
}
