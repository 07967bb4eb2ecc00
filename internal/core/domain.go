package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// Frequency values match the persisted blob format.
	OneOff     Frequency = "único"
	EveryNDays Frequency = "dias"
	Weekly     Frequency = "semanal"
	Custom     Frequency = "personalizada"
	FixedDay   Frequency = "fija"
	MonthStart Frequency = "inicio_mes"
	MonthEnd   Frequency = "fin_mes"
)

type (
	Frequency string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// PaymentRecord is one settled occurrence: an opaque receipt reference
	// plus the due date it settles. History entries are append-only.
	//
	// When carries the occurrence's due date, not the wall clock: it is the
	// key month views reconcile against, so paying late must still flip that
	// occurrence to Pagado. The actual payment time lives in PaidAt.
	PaymentRecord struct {
		URI    string `json:"uri"`
		When   string `json:"fecha"`              // due date, older records may hold a full timestamp
		PaidAt string `json:"pagadoEn,omitempty"` // RFC3339 wall-clock time of the payment
	}

	// Debt is one tracked obligation. Which optional fields are meaningful
	// depends on Frequency; the per-variant constructors enforce that at
	// creation so readers never have to re-check.
	Debt struct {
		ID           int64           `json:"id"`
		Reason       string          `json:"motivo"`
		Amount       Money           `json:"montoTotal"`
		Frequency    Frequency       `json:"frecuencia"`
		StartDate    Date            `json:"fechaInicio"`
		IntervalDays int             `json:"intervaloDias,omitempty"`
		Repetitions  int             `json:"repeticiones,omitempty"`
		Months       int             `json:"meses,omitempty"`
		CustomDates  []Date          `json:"fechas,omitempty"`
		History      []PaymentRecord `json:"historialPagos"`
		Settled      bool            `json:"estaPagada"`
	}
)

var (
	ErrEmptyReason      = errors.New("empty reason")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidStartDate = errors.New("invalid start date")
	ErrInvalidInterval  = errors.New("invalid interval days")
	ErrNoCustomDates    = errors.New("custom frequency requires dates")
)

// NewDate creates a day-granular date (UTC midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO YYYY-MM-DD string. The zero Date signals
// absent-or-unparseable; schedule generation treats it as "no occurrences".
func ParseDate(s string) Date {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}
	}
	return Date{Time: t}
}

func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// SameMonth reports whether the date falls in the given year and month.
func (d Date) SameMonth(year, month int) bool {
	return d.Year() == year && int(d.Month()) == month
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

// UnmarshalJSON tolerates malformed dates: an unparseable value produces the
// zero Date instead of failing the whole blob. The record then simply
// generates no occurrences.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	*d = ParseDate(s)
	return nil
}

// DayKey returns the date part of the payment timestamp, the key used to
// reconcile history entries against generated occurrences.
func (p PaymentRecord) DayKey() string {
	if len(p.When) >= 10 {
		return p.When[:10]
	}
	return p.When
}

func (f Frequency) IsValid() bool {
	switch f {
	case OneOff, EveryNDays, Weekly, Custom, FixedDay, MonthStart, MonthEnd:
		return true
	}
	return false
}

// ExpectedTotal is the number of payments that settles the debt:
// repeticiones when set, else meses, else a single payment. A zero value in
// the blob counts as absent, like the source data.
func (d Debt) ExpectedTotal() int {
	if d.Repetitions > 0 {
		return d.Repetitions
	}
	if d.Months > 0 {
		return d.Months
	}
	return 1
}

func (d Debt) Validate() error {
	if len(strings.TrimSpace(d.Reason)) == 0 {
		return ErrEmptyReason
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if !d.Frequency.IsValid() {
		return ErrInvalidFrequency
	}
	switch d.Frequency {
	case Custom:
		if len(d.CustomDates) == 0 {
			return ErrNoCustomDates
		}
	case EveryNDays:
		if d.IntervalDays <= 0 {
			return ErrInvalidInterval
		}
		if d.StartDate.IsZero() {
			return ErrInvalidStartDate
		}
	default:
		if d.StartDate.IsZero() {
			return ErrInvalidStartDate
		}
	}
	return nil
}

// NewOneOffDebt builds a single-payment debt due on the anchor date.
func NewOneOffDebt(reason string, amount Money, start Date) (Debt, error) {
	return build(Debt{Reason: reason, Amount: amount, Frequency: OneOff, StartDate: start})
}

// NewIntervalDebt builds a debt due every intervalDays days from the anchor.
// repetitions caps the generated occurrences; zero means the default cap.
func NewIntervalDebt(reason string, amount Money, start Date, intervalDays, repetitions int) (Debt, error) {
	return build(Debt{
		Reason:       reason,
		Amount:       amount,
		Frequency:    EveryNDays,
		StartDate:    start,
		IntervalDays: intervalDays,
		Repetitions:  repetitions,
	})
}

// NewWeeklyDebt builds a debt due every 7 days from the anchor.
func NewWeeklyDebt(reason string, amount Money, start Date, repetitions int) (Debt, error) {
	return build(Debt{
		Reason:      reason,
		Amount:      amount,
		Frequency:   Weekly,
		StartDate:   start,
		Repetitions: repetitions,
	})
}

// NewCustomDebt builds a debt due on an explicit list of dates,
// in the given order.
func NewCustomDebt(reason string, amount Money, dates []Date) (Debt, error) {
	return build(Debt{Reason: reason, Amount: amount, Frequency: Custom, CustomDates: dates})
}

// NewFixedDayDebt builds a monthly debt anchored to the anchor's day of
// month. months caps the generated occurrences; zero means the default cap.
func NewFixedDayDebt(reason string, amount Money, start Date, months int) (Debt, error) {
	return build(Debt{Reason: reason, Amount: amount, Frequency: FixedDay, StartDate: start, Months: months})
}

// NewMonthStartDebt builds a monthly debt due on the 1st.
func NewMonthStartDebt(reason string, amount Money, start Date, months int) (Debt, error) {
	return build(Debt{Reason: reason, Amount: amount, Frequency: MonthStart, StartDate: start, Months: months})
}

// NewMonthEndDebt builds a monthly debt due on the last day of the month.
func NewMonthEndDebt(reason string, amount Money, start Date, months int) (Debt, error) {
	return build(Debt{Reason: reason, Amount: amount, Frequency: MonthEnd, StartDate: start, Months: months})
}

func build(d Debt) (Debt, error) {
	d.Reason = strings.TrimSpace(d.Reason)
	if err := d.Validate(); err != nil {
		return Debt{}, err
	}
	return d, nil
}
