package insights

import (
	"regexp"
	"sort"
	"strings"
)

// Fixed fallback sentences. The UI keys off their presence, so tests pin
// them verbatim; change them and the client must change too.
const (
	DefaultInsight        = "No specific insights could be identified from this report."
	DefaultRecommendation = "Please consult your healthcare provider to review these results."
)

// Narrative is the parsed form of the generated free-text report.
type Narrative struct {
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
	Warnings        []string `json:"warnings"`
	FollowUps       []string `json:"follow_ups"`
}

type section int

const (
	secInsights section = iota
	secRecommendations
	secWarnings
	secFollowUps
)

// Section headers are recognized in markdown-bold form ("**Insights**",
// with or without a colon) and plain "Label:" form at line start.
// Declaration order here is fixed; marker positions, not this order,
// decide section boundaries.
var sectionRes = []struct {
	sec section
	re  *regexp.Regexp
}{
	{secInsights, headerRe(`insights|key insights|key findings`)},
	{secRecommendations, headerRe(`recommendations?`)},
	{secWarnings, headerRe(`warnings?`)},
	{secFollowUps, headerRe(`follow[- ]?up tests?|follow[- ]?ups?`)},
}

func headerRe(alts string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)\*\*\s*(?:` + alts + `)\s*:?\s*\*\*:?[ \t]*|^[ \t]*(?:` + alts + `)[ \t]*:[ \t]*`)
}

var (
	bulletRe     = regexp.MustCompile(`^\s*(?:[-•*]|\d+\.)\s+`)
	ruleLineRe   = regexp.MustCompile(`^[#=]+$`)
	bareHeaderRe = regexp.MustCompile(`^(?:\*\*[^*]+\*\*|[A-Za-z][A-Za-z /-]{0,40}:)$`)
	paragraphRe  = regexp.MustCompile(`\n\s*\n`)
)

var recommendKeywords = []string{"should", "recommend", "consider", "try", "increase", "decrease", "maintain"}
var warningKeywords = []string{"warning", "caution", "alert", "danger", "critical", "concerning", "urgent"}

// Parse extracts the four narrative sections from generated text. It never
// fails: when the expected structure is absent it degrades through bullet
// extraction, then a keyword heuristic over paragraphs, and finally fixed
// default sentences for insights and recommendations. Warnings and
// follow-ups may legitimately stay empty.
func Parse(text string) Narrative {
	n := Narrative{}

	type marker struct {
		sec        section
		start, end int
	}
	var markers []marker
	for _, sr := range sectionRes {
		for _, loc := range sr.re.FindAllStringIndex(text, -1) {
			markers = append(markers, marker{sec: sr.sec, start: loc[0], end: loc[1]})
		}
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].start < markers[j].start })

	for i, m := range markers {
		bodyEnd := len(text)
		if i+1 < len(markers) {
			bodyEnd = markers[i+1].start
		}
		items := extractItems(text[m.end:bodyEnd])
		switch m.sec {
		case secInsights:
			n.Insights = append(n.Insights, items...)
		case secRecommendations:
			n.Recommendations = append(n.Recommendations, items...)
		case secWarnings:
			n.Warnings = append(n.Warnings, items...)
		case secFollowUps:
			n.FollowUps = append(n.FollowUps, items...)
		}
	}

	if len(n.Insights) == 0 && len(n.Recommendations) == 0 &&
		len(n.Warnings) == 0 && len(n.FollowUps) == 0 && strings.TrimSpace(text) != "" {
		n = heuristicFallback(text)
	}

	if len(n.Insights) == 0 {
		n.Insights = []string{DefaultInsight}
	}
	if len(n.Recommendations) == 0 {
		n.Recommendations = []string{DefaultRecommendation}
	}
	if n.Warnings == nil {
		n.Warnings = []string{}
	}
	if n.FollowUps == nil {
		n.FollowUps = []string{}
	}
	return n
}

// extractItems turns a section body into individual items: bullet lines
// are stripped of their marker, other non-empty lines are kept as-is
// unless they look like a bare header or a #/= rule.
func extractItems(body string) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || ruleLineRe.MatchString(line) {
			continue
		}
		if bulletRe.MatchString(line) {
			if item := strings.TrimSpace(bulletRe.ReplaceAllString(line, "")); item != "" {
				items = append(items, item)
			}
			continue
		}
		if bareHeaderRe.MatchString(line) {
			continue
		}
		items = append(items, line)
	}
	return items
}

// heuristicFallback handles fully unstructured text: the first substantial
// paragraph becomes the sole insight, keyword-bearing paragraphs feed
// recommendations and warnings.
func heuristicFallback(text string) Narrative {
	n := Narrative{}
	for _, para := range paragraphRe.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(n.Insights) == 0 && len(para) > 20 {
			n.Insights = []string{para}
		}
		lower := strings.ToLower(para)
		if containsAny(lower, recommendKeywords) {
			n.Recommendations = append(n.Recommendations, para)
		}
		if containsAny(lower, warningKeywords) {
			n.Warnings = append(n.Warnings, para)
		}
	}
	return n
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
