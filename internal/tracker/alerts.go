package tracker

import (
	"context"
	"time"

	"portfoliotracker/internal/alert"
	"portfoliotracker/internal/apperr"
	"portfoliotracker/internal/domain"
	"portfoliotracker/internal/store"
)

type AlertInput struct {
	AssetType   domain.AssetType `json:"asset_type"`
	Symbol      string           `json:"symbol"`
	Name        string           `json:"name"`
	CoinID      string           `json:"coin_id"`
	TargetPrice float64          `json:"target_price"`
	Condition   domain.Condition `json:"condition"`
}

func (s *Service) ListAlerts(ctx context.Context, owner string) ([]domain.PriceAlert, error) {
	if err := requireOwner(owner); err != nil { return nil, err }
	out, err := s.alerts.Find(ctx, store.Filter{"owner_id": owner})
	return out, storeErr(err, "alert")
}

func (s *Service) CreateAlert(ctx context.Context, owner string, in AlertInput) (domain.PriceAlert, error) {
	if err := requireOwner(owner); err != nil { return domain.PriceAlert{}, err }
	a := domain.PriceAlert{
		ID:          domain.NewID(),
		OwnerID:     owner,
		AssetType:   in.AssetType,
		Symbol:      in.Symbol,
		Name:        in.Name,
		CoinID:      in.CoinID,
		TargetPrice: in.TargetPrice,
		Condition:   in.Condition,
		CreatedAt:   s.now().UTC(),
	}
	if err := a.Validate(); err != nil { return domain.PriceAlert{}, err }
	if err := s.alerts.Insert(ctx, a); err != nil { return domain.PriceAlert{}, storeErr(err, "alert") }
	return a, nil
}

func (s *Service) DeleteAlert(ctx context.Context, owner, id string) error {
	if err := requireOwner(owner); err != nil { return err }
	n, err := s.alerts.Delete(ctx, store.Filter{"owner_id": owner, "id": id})
	if err != nil { return storeErr(err, "alert") }
	if n == 0 { return apperr.NotFound("alert not found") }
	return nil
}

// CheckAlerts evaluates the owner's active alerts and persists triggers.
func (s *Service) CheckAlerts(ctx context.Context, owner string) (alert.Result, error) {
	if err := requireOwner(owner); err != nil { return alert.Result{}, err }
	active, err := s.alerts.Find(ctx, store.Filter{"owner_id": owner, "triggered": false})
	if err != nil { return alert.Result{}, storeErr(err, "alert") }
	ev := s.evaluator
	ev.Recorder = alertRecorder{s: s, owner: owner}
	res, err := ev.Check(ctx, active)
	if err != nil { return alert.Result{}, apperr.Internal(err) }
	return res, nil
}

// ResetAlert re-arms a triggered alert. Resetting an active alert is a no-op.
func (s *Service) ResetAlert(ctx context.Context, owner, id string) (domain.PriceAlert, error) {
	if err := requireOwner(owner); err != nil { return domain.PriceAlert{}, err }
	f := store.Filter{"owner_id": owner, "id": id}
	if err := s.alerts.Update(ctx, f, map[string]any{"triggered": false, "triggered_at": nil}); err != nil {
		return domain.PriceAlert{}, storeErr(err, "alert")
	}
	a, err := s.alerts.FindOne(ctx, f)
	return a, storeErr(err, "alert")
}

type alertRecorder struct {
	s     *Service
	owner string
}

func (r alertRecorder) MarkTriggered(ctx context.Context, id string, price float64, at time.Time) error {
	return r.s.alerts.Update(ctx, store.Filter{"owner_id": r.owner, "id": id}, map[string]any{
		"triggered":     true,
		"triggered_at":  at,
		"current_price": price,
	})
}
