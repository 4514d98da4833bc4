// Package detect mines transaction history for repeating obligations and
// proposes candidate definitions for human approval.
package detect

import (
	"math"
	"sort"
	"strings"
	"time"

	"duetrack/internal/model"
)

// Candidate recurrence intervals, tested in order; the first one whose gap
// match ratio clears the threshold wins.
var candidateIntervals = []int{1, 2, 3, 6, 12}

// Criteria are the detection thresholds. The defaults preserve the tuned
// constants of the original heuristic; they are configuration, not knobs
// the algorithm is expected to behave well outside of.
type Criteria struct {
	MinOccurrences     int     // smallest transaction group worth proposing
	MinTitleSimilarity float64 // group/suppression similarity floor
	IntervalMatchRatio float64 // share of gaps that must fit the interval
	DayToleranceDays   int     // allowed drift around the expected gap
	AmountCVTolerance  float64 // coefficient-of-variation ceiling for "stable"
}

// DefaultCriteria returns the standard thresholds.
func DefaultCriteria() Criteria {
	return Criteria{
		MinOccurrences:     3,
		MinTitleSimilarity: 0.80,
		IntervalMatchRatio: 0.70,
		DayToleranceDays:   3,
		AmountCVTolerance:  0.15,
	}
}

// group is a set of transactions with similar titles.
type group struct {
	title      string // display title (first seen, trimmed)
	normalized string
	txs        []model.Transaction
}

// Suggestions runs the full heuristic: group by title similarity, fit a
// recurrence interval, infer a day-of-month pattern, score confidence, and
// drop anything that matches an existing definition. Read-only.
func Suggestions(txs []model.Transaction, existing []*model.Definition, c Criteria) []model.Suggestion {
	groups := groupByTitle(txs, c.MinTitleSimilarity)

	var out []model.Suggestion
	for _, g := range groups {
		if len(g.txs) < c.MinOccurrences {
			continue
		}
		if suppressedByExisting(g.normalized, existing, c.MinTitleSimilarity) {
			continue
		}

		sort.Slice(g.txs, func(i, j int) bool { return g.txs[i].Date.Before(g.txs[j].Date) })

		interval, ok := fitInterval(g.txs, c)
		if !ok {
			continue
		}

		stable := amountStable(g.txs, c.AmountCVTolerance)
		out = append(out, model.Suggestion{
			Name:             g.title,
			Amount:           g.txs[len(g.txs)-1].Amount, // most recent payment
			RecurrenceMonths: interval,
			DayPattern:       inferDayPattern(g.txs),
			Confidence:       confidence(len(g.txs), interval, stable),
			Occurrences:      len(g.txs),
			StableAmount:     stable,
			FirstSeen:        g.txs[0].Date,
			LastSeen:         g.txs[len(g.txs)-1].Date,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

func groupByTitle(txs []model.Transaction, minSimilarity float64) []*group {
	var groups []*group
	for _, tx := range txs {
		norm := normalizeTitle(tx.Title)
		if norm == "" {
			continue
		}
		var target *group
		for _, g := range groups {
			if g.normalized == norm || similarity(g.normalized, norm) >= minSimilarity {
				target = g
				break
			}
		}
		if target == nil {
			target = &group{title: trimmedTitle(tx.Title), normalized: norm}
			groups = append(groups, target)
		}
		target.txs = append(target.txs, tx)
	}
	return groups
}

// fitInterval tries each candidate interval and accepts the first where
// enough consecutive gaps land within the day tolerance of the expected
// month advance.
func fitInterval(txs []model.Transaction, c Criteria) (int, bool) {
	if len(txs) < 2 {
		return 0, false
	}
	for _, interval := range candidateIntervals {
		matches := 0
		for i := 1; i < len(txs); i++ {
			expected := txs[i-1].Date.AddDate(0, interval, 0)
			drift := txs[i].Date.Sub(expected)
			if drift < 0 {
				drift = -drift
			}
			if drift <= time.Duration(c.DayToleranceDays)*24*time.Hour {
				matches++
			}
		}
		if float64(matches)/float64(len(txs)-1) >= c.IntervalMatchRatio {
			return interval, true
		}
	}
	return 0, false
}

// inferDayPattern proposes end-of-month when every observed day sits in the
// month's tail, otherwise the most frequent fixed day.
func inferDayPattern(txs []model.Transaction) model.DayPattern {
	allLate := true
	counts := make(map[int]int)
	for _, tx := range txs {
		day := tx.Date.Day()
		if day < 25 {
			allLate = false
		}
		counts[day]++
	}
	if allLate {
		return model.EndOfMonth()
	}

	best, bestCount := 1, 0
	for day, n := range counts {
		if n > bestCount || (n == bestCount && day < best) {
			best, bestCount = day, n
		}
	}
	return model.FixedDay(best)
}

// amountStable checks the coefficient of variation of the group's amounts
// against the tolerance.
func amountStable(txs []model.Transaction, tolerance float64) bool {
	var sum float64
	for _, tx := range txs {
		sum += tx.Amount.InexactFloat64()
	}
	mean := sum / float64(len(txs))
	if mean == 0 {
		return false
	}

	var variance float64
	for _, tx := range txs {
		d := tx.Amount.InexactFloat64() - mean
		variance += d * d
	}
	variance /= float64(len(txs))

	return math.Sqrt(variance)/math.Abs(mean) <= tolerance
}

// confidence scores a group: occurrence count up to 0.5, +0.3 for a stable
// amount, +0.2 for monthly cadence (0.1 otherwise), capped at 1.0.
func confidence(occurrences, interval int, stable bool) float64 {
	score := math.Min(float64(occurrences)/12, 0.5)
	if stable {
		score += 0.3
	}
	if interval == 1 {
		score += 0.2
	} else {
		score += 0.1
	}
	return math.Min(score, 1.0)
}

func suppressedByExisting(normalized string, existing []*model.Definition, minSimilarity float64) bool {
	for _, def := range existing {
		if similarity(normalized, normalizeTitle(def.Name)) >= minSimilarity {
			return true
		}
	}
	return false
}

// trimmedTitle keeps the user's casing, just trimmed and with inner
// whitespace collapsed.
func trimmedTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
