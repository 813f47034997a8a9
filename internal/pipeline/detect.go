package pipeline

import "pepco/internal"

const LayoutUnknown = "unknown"

type LayoutMatch struct {
	Layout string
	Score  float64
	Hits   int
	Rules  int
}

// DetectLayout scores every layout by the share of its rules that match and
// reports the best one. Ties go to the earlier layout. Extraction does not
// depend on the result.
func (l *Library) DetectLayout(pages internal.PageText) LayoutMatch {
	best := LayoutMatch{Layout: LayoutUnknown}
	first := pages.Page(1)
	all := pages.Joined()
	for _, layout := range l.layouts {
		if len(layout.Rules) == 0 {
			continue
		}
		hits := 0
		for _, r := range layout.Rules {
			text := first
			if r.Scope == ScopeAllPages {
				text = all
			}
			if r.Pattern.MatchString(text) {
				hits++
			}
		}
		score := float64(hits) / float64(len(layout.Rules))
		if hits > 0 && score > best.Score {
			best = LayoutMatch{Layout: layout.Name, Score: score, Hits: hits, Rules: len(layout.Rules)}
		}
	}
	return best
}
