package mysql

import (
	"encoding/json"
	"strings"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// joinLabels stores a label list as a comma-separated column; labels never
// contain commas.
func joinLabels(labels []string) string {
	return strings.Join(labels, ",")
}

func splitLabels(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// jsonList encodes a string list for a JSON text column; nil becomes [].
func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func parseJSONList(s string) []string {
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return []string{}
	}
	if items == nil {
		items = []string{}
	}
	return items
}
