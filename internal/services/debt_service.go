// Package services orchestrates debt operations between the schedule
// engine and the store. The engine stays pure; every mutation happens here.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"deudas/internal/attachments"
	"deudas/internal/core"
	applog "deudas/internal/log"
	"deudas/internal/schedule"
	"deudas/internal/store"
)

var (
	ErrDebtNotFound = errors.New("debt not found")

	// ErrNothingPending gates the mark-paid action: every occurrence in the
	// requested month is already settled.
	ErrNothingPending = errors.New("no pending occurrence in month")
)

type (
	// DebtMonthView is one home-list row: the debt plus everything the
	// month view derives from it.
	DebtMonthView struct {
		ID          int64                 `json:"id"`
		Reason      string                `json:"motivo"`
		Amount      core.Money            `json:"montoTotal"`
		Frequency   core.Frequency        `json:"frecuencia"`
		Occurrences []schedule.Occurrence `json:"cuotas"`
		State       schedule.MonthState   `json:"estado"`
		Tier        schedule.DisplayTier  `json:"nivel"`
		NextDue     string                `json:"proximoPago"`
		CanMarkPaid bool                  `json:"puedeMarcarPago"`
	}

	// PaymentView is one history entry with its preview hint.
	PaymentView struct {
		URI     string `json:"uri"`
		When    string `json:"fecha"`
		PaidAt  string `json:"pagadoEn,omitempty"`
		IsImage bool   `json:"esImagen"`
	}
)

// settledLabel is what the home list shows instead of a next due date once
// the schedule holds nothing upcoming.
const settledLabel = "✔ Pagado"

type DebtService struct {
	store store.DebtStore
}

func NewDebtService(st store.DebtStore) *DebtService {
	return &DebtService{store: st}
}

// CreateDebt validates and stores a new debt, returning its assigned id.
// Nothing is persisted when validation fails.
func (s *DebtService) CreateDebt(ctx context.Context, d core.Debt) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.Append(ctx, d)
	if err != nil {
		return 0, fmt.Errorf("append debt: %w", err)
	}

	slog.InfoContext(ctx, "Debt created",
		applog.FieldDebtID, id,
		applog.FieldReason, d.Reason,
		applog.FieldFrequency, d.Frequency,
		applog.FieldAmount, d.Amount.Cents)
	return id, nil
}

// MonthView builds the home-list rows for one month. Debts with no
// occurrence in the month (including records whose schedule generates
// nothing at all) are left out.
func (s *DebtService) MonthView(ctx context.Context, year, month int, today core.Date) ([]DebtMonthView, error) {
	debts, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}

	var views []DebtMonthView
	for _, d := range debts {
		occs := schedule.InMonth(d, year, month)
		if len(occs) == 0 {
			continue
		}

		state := schedule.Classify(d, occs, today)
		_, pending := schedule.FirstPendingIndex(occs)

		next := settledLabel
		if date, ok := schedule.NextDue(d, today); ok {
			next = date.ISO()
		}

		views = append(views, DebtMonthView{
			ID:          d.ID,
			Reason:      d.Reason,
			Amount:      d.Amount,
			Frequency:   d.Frequency,
			Occurrences: occs,
			State:       state,
			Tier:        schedule.Tier(state, occs),
			NextDue:     next,
			CanMarkPaid: pending,
		})
	}
	return views, nil
}

// MarkPaid settles the earliest pending occurrence of the given month:
// appends a payment record carrying the receipt reference and recomputes the
// whole-debt settled flag. Returns ErrNothingPending when the month holds no
// pending occurrence.
func (s *DebtService) MarkPaid(ctx context.Context, id int64, year, month int, receiptURI string, paidAt time.Time) error {
	d, err := s.findDebt(ctx, id)
	if err != nil {
		return err
	}

	occs := schedule.InMonth(d, year, month)
	idx, ok := schedule.FirstPendingIndex(occs)
	if !ok {
		return ErrNothingPending
	}

	// The record keys on the occurrence's due date so reconciliation flips
	// exactly this occurrence to Pagado even when the payment lands on a
	// different day.
	history := append(append([]core.PaymentRecord{}, d.History...), core.PaymentRecord{
		URI:    receiptURI,
		When:   occs[idx].Date.ISO(),
		PaidAt: paidAt.UTC().Format(time.RFC3339),
	})
	settled := len(history) >= d.ExpectedTotal()

	patch := store.DebtPatch{History: history, Settled: &settled}
	if err := s.store.Patch(ctx, id, patch); err != nil {
		return fmt.Errorf("patch debt: %w", err)
	}

	slog.InfoContext(ctx, "Occurrence marked paid",
		applog.FieldDebtID, id,
		applog.FieldOccurrence, occs[idx].Date.ISO(),
		"payments", len(history),
		"settled", settled)
	return nil
}

// History returns the payment history of a debt, newest last.
func (s *DebtService) History(ctx context.Context, id int64) ([]PaymentView, error) {
	d, err := s.findDebt(ctx, id)
	if err != nil {
		return nil, err
	}

	views := make([]PaymentView, len(d.History))
	for i, p := range d.History {
		views[i] = PaymentView{
			URI:     p.URI,
			When:    p.When,
			PaidAt:  p.PaidAt,
			IsImage: attachments.IsImage(p.URI),
		}
	}
	return views, nil
}

func (s *DebtService) findDebt(ctx context.Context, id int64) (core.Debt, error) {
	debts, err := s.store.ListAll(ctx)
	if err != nil {
		return core.Debt{}, fmt.Errorf("list debts: %w", err)
	}
	for _, d := range debts {
		if d.ID == id {
			return d, nil
		}
	}
	return core.Debt{}, ErrDebtNotFound
}
