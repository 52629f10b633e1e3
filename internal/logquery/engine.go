// Package logquery filters and sorts call-log snapshots for the review
// screen. Everything here is a pure function of (records, filter, sort);
// no I/O, no shared state.
package logquery

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"salescoach-platform/internal/calllog"
)

// SortKey selects the ordering of the filtered rows. The zero value and
// any unknown key both resolve to date-newest-first.
type SortKey string

const (
	SortDefault  SortKey = ""
	SortNameAsc  SortKey = "a-z"
	SortNameDesc SortKey = "z-a"
	SortDateNew  SortKey = "date-new"
	SortDateOld  SortKey = "date-old"
)

// Filter is the conjunction of the three review-screen filters. Each
// predicate is pure, so application order does not matter.
type Filter struct {
	// Query matches case-insensitively against either participant name.
	// Empty passes every record.
	Query string

	// From/To bound the record date inclusively, widened to whole days.
	// A zero bound on either side disables the date filter.
	From time.Time
	To   time.Time

	// MinScore/MaxScore bound the overall score inclusively. Records
	// without a well-formed overall score are excluded.
	MinScore float64
	MaxScore float64
}

// DefaultFilter passes every record that has a well-formed overall score.
func DefaultFilter() Filter {
	return Filter{MinScore: 0, MaxScore: 100}
}

// Apply returns the records passing all three filters, ordered by key.
// The result is always a subset of records; sorting is stable, so equal
// keys keep their input order.
func Apply(records []calllog.Record, f Filter, key SortKey) []calllog.Record {
	out := make([]calllog.Record, 0, len(records))
	for _, r := range records {
		if matchesQuery(r, f.Query) && matchesDate(r, f.From, f.To) && matchesScore(r, f.MinScore, f.MaxScore) {
			out = append(out, r)
		}
	}

	sortRecords(out, key)
	return out
}

func matchesQuery(r calllog.Record, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(r.UserName), q) ||
		strings.Contains(strings.ToLower(r.AgentName), q)
}

func matchesDate(r calllog.Record, from, to time.Time) bool {
	if from.IsZero() || to.IsZero() {
		return true
	}
	start := startOfDay(from)
	end := endOfDay(to)
	d := r.Date.Time
	return !d.Before(start) && !d.After(end)
}

func matchesScore(r calllog.Record, min, max float64) bool {
	if r.OverallScore == nil {
		return false
	}
	v := *r.OverallScore
	return v >= min && v <= max
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

func sortRecords(records []calllog.Record, key SortKey) {
	switch key {
	case SortNameAsc, SortNameDesc:
		// Collator buffers are not safe for concurrent use; build one
		// per call.
		col := collate.New(language.English)
		asc := key == SortNameAsc
		sort.SliceStable(records, func(i, j int) bool {
			cmp := col.CompareString(records[i].UserName, records[j].UserName)
			if asc {
				return cmp < 0
			}
			return cmp > 0
		})
	case SortDateOld:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Date.Time.Before(records[j].Date.Time)
		})
	default:
		// SortDateNew, SortDefault and unknown keys.
		sort.SliceStable(records, func(i, j int) bool {
			return records[j].Date.Time.Before(records[i].Date.Time)
		})
	}
}
