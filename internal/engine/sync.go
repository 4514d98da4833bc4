package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"duetrack/internal/calendar"
	"duetrack/internal/model"
	"duetrack/internal/schedule"
)

// lockedOccurrence wraps an occurrence whose status is completed or
// cancelled. The diff only ever reads it; the wrapper is what keeps the
// engine from touching settled history.
type lockedOccurrence struct {
	occ model.Occurrence
}

func (l lockedOccurrence) scheduled() time.Time       { return l.occ.Scheduled }
func (l lockedOccurrence) occurrence() model.Occurrence { return l.occ }

// diff partitions the outcome of one reconciliation pass.
type diff struct {
	created []model.Occurrence
	updated []model.Occurrence
	removed []model.Occurrence
	final   []model.Occurrence // new canonical set, sorted by scheduled date
}

// reconcile diffs the targets a definition implies against its existing
// occurrences. Locked occurrences are untouched; editable ones are matched
// by calendar day and updated in place, new targets become planned
// occurrences, and editable leftovers are removed. Exactly one pending
// occurrence ends up in the saving status.
//
// The diff-based approach preserves occurrence identity across repeated
// synchronizations, which keeps external settling-transaction references
// valid and makes a second run with the same inputs a no-op.
func reconcile(def *model.Definition, reference time.Time, horizon int, calc *calendar.Calculator, now time.Time) diff {
	reference = calendar.DateOnly(reference)

	var locked []lockedOccurrence
	var pool []model.Occurrence
	for _, occ := range def.Occurrences {
		if occ.Locked() {
			locked = append(locked, lockedOccurrence{occ: occ})
		} else {
			pool = append(pool, occ)
		}
	}

	targets := schedule.Generate(def, seedDate(def), reference, horizon, calc)

	lockedDays := make(map[string]struct{}, len(locked))
	for _, l := range locked {
		lockedDays[dayKey(l.scheduled())] = struct{}{}
	}

	var d diff
	var kept []model.Occurrence  // matched, possibly updated in place
	dirty := make(map[string]bool) // occurrence ID -> fields changed

	for _, t := range targets {
		if _, ok := lockedDays[dayKey(t.Date)]; ok {
			// History already settled this day; the target is satisfied.
			continue
		}

		idx := -1
		for i := range pool {
			if calendar.SameDay(pool[i].Scheduled, t.Date) {
				idx = i
				break
			}
		}
		if idx < 0 {
			d.created = append(d.created, model.Occurrence{
				ID:             uuid.NewString(),
				DefinitionID:   def.ID,
				Scheduled:      t.Date,
				ExpectedAmount: t.Amount,
				Status:         model.StatusPlanned,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
			continue
		}

		occ := pool[idx]
		pool = append(pool[:idx], pool[idx+1:]...)
		if !occ.ExpectedAmount.Equal(t.Amount) {
			occ.ExpectedAmount = t.Amount
			dirty[occ.ID] = true
		}
		if !occ.Scheduled.Equal(t.Date) {
			occ.Scheduled = t.Date // same day, normalized timestamp
			dirty[occ.ID] = true
		}
		kept = append(kept, occ)
	}

	// Whatever the targets no longer imply is stale: the interval or
	// pattern changed underneath it.
	d.removed = append(d.removed, pool...)

	electSaving(kept, d.created, reference, dirty)

	for i := range kept {
		if dirty[kept[i].ID] {
			kept[i].UpdatedAt = now
			d.updated = append(d.updated, kept[i])
		}
	}

	d.final = make([]model.Occurrence, 0, len(kept)+len(d.created)+len(locked))
	d.final = append(d.final, kept...)
	d.final = append(d.final, d.created...)
	for _, l := range locked {
		d.final = append(d.final, l.occurrence())
	}
	sort.Slice(d.final, func(i, j int) bool {
		return d.final[i].Scheduled.Before(d.final[j].Scheduled)
	})

	return d
}

// seedDate picks the anchor the target generator starts from: the first
// due date when nothing is completed, otherwise one interval past the
// latest completed scheduled date. The generator itself falls back to the
// first due date when it now lies before the seed, which backfills the gap
// after a retroactive start-date edit.
func seedDate(def *model.Definition) time.Time {
	var latest time.Time
	for _, occ := range def.Occurrences {
		if occ.Status == model.StatusCompleted && occ.Scheduled.After(latest) {
			latest = occ.Scheduled
		}
	}
	if latest.IsZero() {
		return calendar.DateOnly(def.FirstDue)
	}
	y, m := calendar.AddPeriods(latest.Year(), latest.Month(), def.RecurrenceMonths)
	day := latest.Day()
	if max := calendar.DaysIn(y, m); day > max {
		day = max
	}
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// electSaving marks exactly one pending occurrence as saving: the earliest
// upcoming one, or the earliest overall when nothing is upcoming. Every
// other editable occurrence goes back to planned.
func electSaving(kept, created []model.Occurrence, reference time.Time, dirty map[string]bool) {
	all := make([]*model.Occurrence, 0, len(kept)+len(created))
	for i := range kept {
		all = append(all, &kept[i])
	}
	for i := range created {
		all = append(all, &created[i])
	}
	if len(all) == 0 {
		return
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Scheduled.Before(all[j].Scheduled)
	})

	elect := all[0]
	for _, occ := range all {
		if !occ.Scheduled.Before(reference) {
			elect = occ
			break
		}
	}

	for _, occ := range all {
		want := model.StatusPlanned
		if occ == elect {
			want = model.StatusSaving
		}
		if occ.Status != want {
			occ.Status = want
			dirty[occ.ID] = true
		}
	}
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
