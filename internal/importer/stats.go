package importer

import (
	"sort"

	"github.com/rumor-ml/commons.systems/qifimport/internal/categorize"
	"github.com/rumor-ml/commons.systems/qifimport/internal/record"
	"github.com/rumor-ml/commons.systems/qifimport/internal/report"
)

// Stats tracks how well the rules covered the run. Records that fell
// through to an imbalance account count as unmatched; explicit overrides on
// the record are counted separately since no rule was consulted.
type Stats struct {
	RulesMatched   int
	RulesUnmatched int
	Overrides      int

	// unmatched groups example payees by their normalized form so that
	// "CAFE AROMA 001" and "Cafe  Aroma 002" surface as one gap in the
	// rules rather than two.
	unmatched map[string]string
}

func newStats() Stats {
	return Stats{unmatched: make(map[string]string)}
}

func (s *Stats) noteResolution(rec *record.Record, dest string) {
	if rec.SplitCategory != "" {
		s.Overrides++
		return
	}
	if categorize.IsImbalance(dest) {
		s.RulesUnmatched++
		key := categorize.NormalizePayee(rec.Payee)
		if _, seen := s.unmatched[key]; !seen {
			s.unmatched[key] = rec.Payee
		}
		return
	}
	s.RulesMatched++
}

// Coverage returns the percentage of rule-eligible records a rule matched.
// A run with no rule-eligible records has full coverage.
func (s *Stats) Coverage() float64 {
	total := s.RulesMatched + s.RulesUnmatched
	if total == 0 {
		return 100.0
	}
	return float64(s.RulesMatched) / float64(total) * 100.0
}

// UnmatchedExamples returns one representative payee per normalized group,
// sorted for stable output.
func (s *Stats) UnmatchedExamples() []string {
	keys := make([]string, 0, len(s.unmatched))
	for key := range s.unmatched {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	examples := make([]string, 0, len(keys))
	for _, key := range keys {
		examples = append(examples, s.unmatched[key])
	}
	return examples
}

// fill copies the run totals into the report.
func (s *Stats) fill(rep *report.Report) {
	for _, fr := range rep.Files {
		rep.Posted += fr.Posted
		rep.Duplicates += fr.Duplicates
		rep.Ignored += fr.Ignored
	}
	rep.RulesMatched = s.RulesMatched
	rep.RulesUnmatched = s.RulesUnmatched
	rep.RuleCoverage = s.Coverage()
}
