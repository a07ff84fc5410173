package hook

import "time"

// Summary aggregates the outcomes of a set of hook results.
//
// The non-passing statuses are broken out per kind: Errors counts only
// invocation failures (StatusError), not failed or timed-out hooks. The
// overall non-passed count is Total - Passed.
type Summary struct {
	Total         int           `json:"total"`
	Passed        int           `json:"passed"`
	Failed        int           `json:"failed"`
	Timeout       int           `json:"timeout"`
	Errors        int           `json:"errors"`
	CacheHits     int           `json:"cache_hits"`
	TotalDuration time.Duration `json:"total_duration"`

	// SuccessRate is Passed/Total as a percentage, 0 when Total is 0.
	SuccessRate float64 `json:"success_rate"`
}

// AllPassed reports whether every hook in the summary passed.
func (s Summary) AllPassed() bool {
	return s.Total > 0 && s.Passed == s.Total
}

// Summarize aggregates results into a Summary. TotalDuration is the sum of
// per-hook durations, which can exceed wall clock time when hooks ran
// concurrently.
func Summarize(results []Result) Summary {
	var s Summary
	s.Total = len(results)

	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusTimeout:
			s.Timeout++
		case StatusError:
			s.Errors++
		}
		if r.CacheHit {
			s.CacheHits++
		}
		s.TotalDuration += r.Duration
	}

	if s.Total > 0 {
		s.SuccessRate = float64(s.Passed) / float64(s.Total) * 100
	}
	return s
}
