package reports

import "regexp"

// FallbackTestType is returned when no panel rule matches.
const FallbackTestType = "General Blood Panel"

// Ordered detection rules. Output order must follow declaration order, not
// match order, so the slice order is part of the contract (see tests).
var testTypeRules = []struct {
	label string
	re    *regexp.Regexp
}{
	{"CBC", regexp.MustCompile(`(?i)hemoglobin|hematocrit|\bRBC\b|\bWBC\b|platelet`)},
	{"Lipid Panel", regexp.MustCompile(`(?i)cholesterol|triglycerid|\bHDL\b|\bLDL\b`)},
	{"Metabolic Panel", regexp.MustCompile(`(?i)glucose|creatinine|\bBUN\b|sodium|potassium|calcium`)},
	{"Liver Function", regexp.MustCompile(`(?i)\bALT\b|\bAST\b|bilirubin|albumin|alkaline phosphatase`)},
	{"Kidney Function", regexp.MustCompile(`(?i)\beGFR\b|urea|uric acid`)},
	{"Thyroid Panel", regexp.MustCompile(`(?i)\bTSH\b|\bT3\b|\bT4\b|thyroid`)},
	{"Diabetes Panel", regexp.MustCompile(`(?i)hba1c|\ba1c\b|glycated`)},
	{"Vitamin Panel", regexp.MustCompile(`(?i)vitamin|ferritin|folate|\bB12\b`)},
	{"Urinalysis", regexp.MustCompile(`(?i)urinalysis|urine|specific gravity`)},
}

// DetectTestTypes classifies raw extracted text into known lab-panel
// categories. Pure and total: it never fails and always returns at least
// one label. A label appears at most once even when several of its
// alternatives match.
func DetectTestTypes(text string) []string {
	var labels []string
	for _, rule := range testTypeRules {
		if rule.re.MatchString(text) {
			labels = append(labels, rule.label)
		}
	}
	if len(labels) == 0 {
		return []string{FallbackTestType}
	}
	return labels
}
