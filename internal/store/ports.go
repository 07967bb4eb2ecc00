// Package store defines the outbound ports for debt persistence.
package store

import (
	"context"

	"deudas/internal/core"
)

type (
	// DebtAppender stores a new debt. The implementation assigns the id and
	// resets historialPagos/estaPagada regardless of caller-supplied values.
	DebtAppender interface {
		Append(ctx context.Context, d core.Debt) (id int64, err error)
	}

	// DebtLister returns the full snapshot in insertion order.
	DebtLister interface {
		ListAll(ctx context.Context) ([]core.Debt, error)
	}

	// DebtPatcher merges partial fields into the record with the given id.
	// An unknown id is logged and swallowed, not returned as an error;
	// callers cannot rely on an error signal for an invalid id.
	DebtPatcher interface {
		Patch(ctx context.Context, id int64, p DebtPatch) error
	}

	// DebtStore is the full persistence contract.
	DebtStore interface {
		DebtAppender
		DebtLister
		DebtPatcher
	}
)

// DebtPatch carries the mutable fields of a debt. Nil pointers (and a nil
// history slice) leave the stored value untouched. History is a full
// replacement at the storage level; append-only growth is the caller's
// discipline.
type DebtPatch struct {
	Reason  *string
	Amount  *core.Money
	Settled *bool
	History []core.PaymentRecord
}

// Apply merges the patch into a debt record.
func (p DebtPatch) Apply(d *core.Debt) {
	if p.Reason != nil {
		d.Reason = *p.Reason
	}
	if p.Amount != nil {
		d.Amount = *p.Amount
	}
	if p.Settled != nil {
		d.Settled = *p.Settled
	}
	if p.History != nil {
		d.History = p.History
	}
}
