// Package schedule generates due-date occurrences for a debt and reconciles
// them against its payment history. Everything here is a pure function of a
// debt record, a target month, and a reference day; callers own all I/O.
package schedule

import (
	"deudas/internal/core"
)

// DefaultCap bounds generated occurrences when repeticiones/meses are absent.
const DefaultCap = 100

const (
	StatusPaid    Status = "Pagado"
	StatusPending Status = "Pendiente"
)

type (
	Status string

	// Occurrence is one concrete due date with its reconciled status.
	Occurrence struct {
		Date   core.Date `json:"fecha"`
		Status Status    `json:"estado"`
	}

	// MonthState holds the roll-up facts the month view derives from the
	// first in-month occurrence.
	MonthState struct {
		OverdueToday bool `json:"venceHoy"`
		OverdueOther bool `json:"vencida"`
		DueThisWeek  bool `json:"venceEstaSemana"`
		Completed    bool `json:"completada"`
	}

	DisplayTier string
)

const (
	TierCompleted DisplayTier = "completada"
	TierWarning   DisplayTier = "por_vencer"
	TierOverdue   DisplayTier = "vencida"
	TierPaid      DisplayTier = "pagada"
	TierNeutral   DisplayTier = "neutral"
)

// Occurrences produces the finite due-date sequence for a debt. Anomalies
// (zero anchor, non-positive interval, empty custom list) yield an empty
// sequence, never an error: the debt just disappears from month views until
// corrected.
func Occurrences(d core.Debt) []core.Date {
	switch d.Frequency {
	case core.OneOff:
		if d.StartDate.IsZero() {
			return nil
		}
		return []core.Date{d.StartDate}
	case core.EveryNDays:
		if d.StartDate.IsZero() || d.IntervalDays <= 0 {
			return nil
		}
		return daySteps(d.StartDate, d.IntervalDays, capOrDefault(d.Repetitions))
	case core.Weekly:
		if d.StartDate.IsZero() {
			return nil
		}
		return daySteps(d.StartDate, 7, capOrDefault(d.Repetitions))
	case core.FixedDay:
		return monthSteps(d.StartDate, capOrDefault(d.Months), fixedDayOf)
	case core.MonthStart:
		return monthSteps(d.StartDate, capOrDefault(d.Months), firstDayOf)
	case core.MonthEnd:
		return monthSteps(d.StartDate, capOrDefault(d.Months), lastDayOf)
	case core.Custom:
		out := make([]core.Date, 0, len(d.CustomDates))
		for _, cd := range d.CustomDates {
			if cd.IsZero() {
				continue
			}
			out = append(out, cd)
		}
		return out
	}
	return nil
}

// InMonth filters Occurrences to the target year/month and tags each date
// Pagado when it appears among the history's payment dates, Pendiente
// otherwise. Generation order is preserved.
func InMonth(d core.Debt, year, month int) []Occurrence {
	paid := make(map[string]struct{}, len(d.History))
	for _, p := range d.History {
		paid[p.DayKey()] = struct{}{}
	}

	var out []Occurrence
	for _, date := range Occurrences(d) {
		if !date.SameMonth(year, month) {
			continue
		}
		status := StatusPending
		if _, ok := paid[date.ISO()]; ok {
			status = StatusPaid
		}
		out = append(out, Occurrence{Date: date, Status: status})
	}
	return out
}

// Classify derives the month-level state from the first in-month occurrence.
//
// DueThisWeek deliberately keeps the source behavior of not bounding the
// 7-day window from below, so an already-past date also satisfies it; the
// distinct OverdueOther flag is still reported for callers that want it.
func Classify(d core.Debt, occs []Occurrence, today core.Date) MonthState {
	state := MonthState{
		Completed: len(d.History) >= d.ExpectedTotal(),
	}
	if len(occs) == 0 || occs[0].Status != StatusPending {
		return state
	}

	rep := occs[0].Date
	days := int(rep.Sub(today.Time).Hours() / 24)
	state.OverdueToday = rep.Equal(today.Time)
	state.OverdueOther = rep.Before(today.Time)
	state.DueThisWeek = days <= 7
	return state
}

// Tier maps a month state to its display urgency. Precedence: completed,
// then due-today/this-week, then overdue, then an already-paid first
// occurrence, then neutral.
func Tier(state MonthState, occs []Occurrence) DisplayTier {
	switch {
	case state.Completed:
		return TierCompleted
	case state.OverdueToday || state.DueThisWeek:
		return TierWarning
	case state.OverdueOther:
		return TierOverdue
	case len(occs) > 0 && occs[0].Status == StatusPaid:
		return TierPaid
	}
	return TierNeutral
}

// FirstPendingIndex locates the earliest still-pending occurrence in the
// month-filtered list. ok is false when nothing is pending, which disables
// the mark-paid action for that month.
func FirstPendingIndex(occs []Occurrence) (int, bool) {
	for i, o := range occs {
		if o.Status == StatusPending {
			return i, true
		}
	}
	return 0, false
}

// NextDue returns the earliest generated occurrence on or after today,
// regardless of month. ok is false when the whole schedule is in the past.
func NextDue(d core.Debt, today core.Date) (core.Date, bool) {
	var best core.Date
	for _, date := range Occurrences(d) {
		if date.Before(today.Time) {
			continue
		}
		if best.IsZero() || date.Before(best.Time) {
			best = date
		}
	}
	return best, !best.IsZero()
}

func capOrDefault(n int) int {
	if n > 0 {
		return n
	}
	return DefaultCap
}

func daySteps(anchor core.Date, step, count int) []core.Date {
	out := make([]core.Date, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, core.Date{Time: anchor.AddDate(0, 0, i*step)})
	}
	return out
}

func monthSteps(anchor core.Date, count int, dayOf func(anchor core.Date, i int) core.Date) []core.Date {
	if anchor.IsZero() {
		return nil
	}
	out := make([]core.Date, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, dayOf(anchor, i))
	}
	return out
}

// fixedDayOf keeps the anchor's day of month, clamped to the last valid day
// of the target month so a Jan 31 anchor yields Feb 29 rather than rolling
// into March.
func fixedDayOf(anchor core.Date, i int) core.Date {
	year, month, day := anchor.Date()
	last := lastDayOf(anchor, i)
	if day > last.Day() {
		return last
	}
	return core.NewDate(year, int(month)+i, day)
}

func firstDayOf(anchor core.Date, i int) core.Date {
	year, month, _ := anchor.Date()
	return core.NewDate(year, int(month)+i, 1)
}

// lastDayOf is day zero of the following month.
func lastDayOf(anchor core.Date, i int) core.Date {
	year, month, _ := anchor.Date()
	return core.NewDate(year, int(month)+i+1, 0)
}
