package postgres

import (
	"encoding/json"
	"strings"
)

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func joinLabels(labels []string) string {
	return strings.Join(labels, ",")
}

func splitLabels(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

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
