package results

import (
	"regexp"
	"strings"
)

// lineRe matches "Biomarker 12.3 unit (ref 10-20)" style lines. Unit and
// reference range are optional; the range may be prefixed with "ref" or
// "reference".
var lineRe = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9 ()/%.-]*?)\s*[:\-]?\s+(\d+(?:\.\d+)?)\s*([A-Za-z%µ][\w/%^.µ]*)?\s*(?:\(\s*(?:ref(?:erence)?\.?\s*:?\s*)?([^)]*\d[^)]*)\))?\s*$`)

// Ordered category rules: first match wins, unknown biomarkers stay
// uncategorized.
var categoryRules = []struct {
	category string
	re       *regexp.Regexp
}{
	{"CBC", regexp.MustCompile(`(?i)hemoglobin|hematocrit|\bRBC\b|\bWBC\b|platelet|\bMCV\b|\bMCH\b`)},
	{"Lipids", regexp.MustCompile(`(?i)cholesterol|triglycerid|\bHDL\b|\bLDL\b|\bVLDL\b`)},
	{"Metabolic", regexp.MustCompile(`(?i)glucose|creatinine|\bBUN\b|sodium|potassium|calcium|chloride`)},
	{"Liver", regexp.MustCompile(`(?i)\bALT\b|\bAST\b|bilirubin|albumin|alkaline phosphatase|\bGGT\b`)},
	{"Thyroid", regexp.MustCompile(`(?i)\bTSH\b|\bT3\b|\bT4\b|thyroid`)},
	{"Vitamins", regexp.MustCompile(`(?i)vitamin|ferritin|folate|\bB12\b|iron`)},
}

// Extract pulls biomarker measurements out of raw extracted text, one
// candidate per line, classifying each against its reference range as it
// goes. Lines that do not look like a measurement are skipped, never
// fatal; the line format is internal and deliberately loose.
func Extract(text string, multiplier float64) []*Result {
	var out []*Result
	for _, line := range strings.Split(text, "\n") {
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if name == "" || looksLikeProse(name) {
			continue
		}
		status, _ := Classify(m[2], m[4], multiplier)
		out = append(out, &Result{
			Biomarker:      name,
			Value:          m[2],
			Unit:           m[3],
			ReferenceRange: strings.TrimSpace(m[4]),
			Status:         status,
			Category:       categoryFor(name),
		})
	}
	return out
}

func categoryFor(biomarker string) string {
	for _, rule := range categoryRules {
		if rule.re.MatchString(biomarker) {
			return rule.category
		}
	}
	return ""
}

// looksLikeProse filters out sentence fragments the line regex would
// otherwise accept as a biomarker name.
func looksLikeProse(name string) bool {
	return len(strings.Fields(name)) > 4
}
