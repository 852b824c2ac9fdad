package tracking

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/apperr"
)

// DateLayout formats estimated delivery dates, e.g. "January 2, 2006".
const DateLayout = "January 2, 2006"

const (
	DeliveredText  = "Delivered"
	ShippingMethod = "Standard Shipping"
)

// Step is one entry of the four-step progress indicator.
type Step struct {
	Label     string `json:"label"`
	Active    bool   `json:"active"`
	Completed bool   `json:"completed"`
}

// Report is everything the tracking page shows for an order.
type Report struct {
	OrderID           string `json:"order_id"`
	Stage             Stage  `json:"stage"`
	Label             string `json:"label"`
	Progress          int    `json:"progress"`
	EstimatedDelivery string `json:"estimated_delivery"`
	ShippingMethod    string `json:"shipping_method"`
	Steps             []Step `json:"steps"`
}

// Tracker builds reports from a StatusProvider.
type Tracker struct {
	provider StatusProvider
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now as the reference for delivery estimates.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(provider StatusProvider, logger *zap.Logger, opts ...Option) *Tracker {
	t := &Tracker{provider: provider, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track looks up the stage of orderID and renders its report.
func (t *Tracker) Track(ctx context.Context, orderID string) (Report, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Report{}, apperr.Validation("Order number is required", apperr.Violation{
			Field: "orderId", Rule: "required", Message: "Order number is required",
		})
	}

	stage, err := t.provider.Status(ctx, orderID)
	if err != nil {
		return Report{}, err
	}
	if !stage.Valid() {
		t.logger.Warn("status provider returned an invalid stage", zap.String("order_id", orderID), zap.Int("stage", int(stage)))
		stage = StageConfirmed
	}

	t.logger.Debug("order tracked", zap.String("order_id", orderID), zap.Stringer("stage", stage))
	return NewReport(orderID, stage, t.now()), nil
}

// NewReport renders the report for stage as seen at now.
func NewReport(orderID string, stage Stage, now time.Time) Report {
	return Report{
		OrderID:           orderID,
		Stage:             stage,
		Label:             stage.Label(),
		Progress:          stage.Progress(),
		EstimatedDelivery: EstimatedDelivery(stage, now),
		ShippingMethod:    ShippingMethod,
		Steps:             Steps(stage),
	}
}

// EstimatedDelivery is the expected delivery date, or "Delivered" for the final stage.
func EstimatedDelivery(stage Stage, now time.Time) string {
	if stage == StageDelivered {
		return DeliveredText
	}
	days := 0
	if stage.Valid() {
		days = deliveryDays[stage]
	}
	return now.AddDate(0, 0, days).Format(DateLayout)
}

// Steps marks every step up to stage active and every step before it completed.
// The final step is never shown as completed.
func Steps(stage Stage) []Step {
	steps := make([]Step, StageCount)
	for i := range steps {
		s := Stage(i)
		steps[i] = Step{
			Label:     stepText[i],
			Active:    stage >= s,
			Completed: stage > s && s != StageDelivered,
		}
	}
	return steps
}
