package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/listenupapp/recipebox-server/internal/domain"
	domainerrors "github.com/listenupapp/recipebox-server/internal/errors"
	"github.com/listenupapp/recipebox-server/internal/metrics"
	"github.com/listenupapp/recipebox-server/internal/store"
)

// Reconciler resolves tag and ingredient names to stable per-owner records.
// One implementation serves both kinds.
type Reconciler struct {
	logger *slog.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(logger *slog.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// Reconcile returns one label per distinct name, in first-seen order.
// Existing labels of the same owner and name are reused; missing ones are
// created. Runs inside the caller's transaction.
func (r *Reconciler) Reconcile(ctx context.Context, tx store.Tx, kind domain.LabelKind, ownerID int64, names []string) ([]domain.Label, error) {
	labels := make([]domain.Label, 0, len(names))
	seen := make(map[string]struct{}, len(names))

	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		label, err := r.resolve(ctx, tx, kind, ownerID, name)
		if err != nil {
			return nil, err
		}
		labels = append(labels, *label)
	}
	return labels, nil
}

// resolve retries a reconcile miss once. A second miss is reported as internal.
func (r *Reconciler) resolve(ctx context.Context, tx store.Tx, kind domain.LabelKind, ownerID int64, name string) (*domain.Label, error) {
	label, err := tx.ReconcileLabel(ctx, kind, ownerID, name)
	if errors.Is(err, store.ErrReconcileMiss) {
		metrics.LabelReconcileRetry(kind.String())
		r.logger.Warn("label reconcile missed, retrying",
			"kind", kind,
			"user_id", ownerID,
			"name", name,
		)
		label, err = tx.ReconcileLabel(ctx, kind, ownerID, name)
	}
	if err == nil {
		return label, nil
	}

	if errors.Is(err, store.ErrReconcileMiss) {
		r.logger.Error("label reconcile failed after retry",
			"kind", kind,
			"user_id", ownerID,
			"name", name,
		)
		return nil, domainerrors.Wrapf(err, domainerrors.CodeInternal, "could not resolve %s", kind)
	}
	return nil, translateStoreError(err, kind.String())
}

// labelIDs extracts IDs in order.
func labelIDs(labels []domain.Label) []int64 {
	ids := make([]int64, len(labels))
	for i, l := range labels {
		ids[i] = l.ID
	}
	return ids
}
