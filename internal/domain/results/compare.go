package results

// Change is one biomarker's transition between two reports.
type Change struct {
	Biomarker string `json:"biomarker"`
	From      Status `json:"from"`
	To        Status `json:"to"`
}

// Comparison partitions the biomarkers present in both reports.
type Comparison struct {
	Improved  []Change `json:"improved"`
	Worsened  []Change `json:"worsened"`
	Unchanged []Change `json:"unchanged"`
}

// Compare diffs two result sets for the same subject, where newer is
// chronologically later than older. Biomarkers are keyed by name; names
// absent from the older set are skipped entirely. Transitions are ranked
// by the severity ordinal, where low and high share a tier, so a direct
// low→high swing counts as unchanged.
func Compare(older, newer []*Result) Comparison {
	prev := make(map[string]*Result, len(older))
	for _, r := range older {
		prev[r.Biomarker] = r // last write wins on duplicates
	}

	var cmp Comparison
	for _, r := range newer {
		before, ok := prev[r.Biomarker]
		if !ok {
			continue
		}
		change := Change{Biomarker: r.Biomarker, From: before.Status, To: r.Status}
		switch {
		case statusOrdinal[r.Status] < statusOrdinal[before.Status]:
			cmp.Improved = append(cmp.Improved, change)
		case statusOrdinal[r.Status] > statusOrdinal[before.Status]:
			cmp.Worsened = append(cmp.Worsened, change)
		default:
			cmp.Unchanged = append(cmp.Unchanged, change)
		}
	}
	return cmp
}
