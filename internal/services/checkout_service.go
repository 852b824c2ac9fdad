package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/pricing"
	"storefront/internal/store"
	"storefront/internal/validation"
	"storefront/pkg/rabbitmq"
)

const (
	// DefaultPaymentMethod is used when the form leaves the payment method empty.
	DefaultPaymentMethod = "credit-card"

	ErrMsgCartEmpty      = "Cart is empty"
	ErrMsgMissingDetails = "Please fill in all required fields to continue."

	// EmptyCartRedirect is where a checkout of an empty cart sends the shopper.
	EmptyCartRedirect = "/products"
)

// CheckoutForm is the shopper's contact, shipping and payment details.
type CheckoutForm struct {
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required"`
	Address       string `json:"address" validate:"required"`
	City          string `json:"city" validate:"required"`
	PostalCode    string `json:"postalCode" validate:"required"`
	Country       string `json:"country" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,oneof=credit-card paypal cash"`
	SaveInfo      bool   `json:"saveInfo"`
}

func (f *CheckoutForm) normalize() {
	for _, field := range []*string{&f.FirstName, &f.LastName, &f.Email, &f.Phone, &f.Address, &f.City, &f.PostalCode, &f.Country, &f.PaymentMethod} {
		*field = strings.TrimSpace(*field)
	}
	if f.PaymentMethod == "" {
		f.PaymentMethod = DefaultPaymentMethod
	}
}

// Receipt is the outcome of a successful checkout.
type Receipt struct {
	Order    models.Order    `json:"order"`
	Summary  pricing.Summary `json:"summary"`
	Redirect string          `json:"redirect"`
}

// TrackingRoute is the page that tracks order id.
func TrackingRoute(id int64) string {
	return fmt.Sprintf("/order-tracking/%d", id)
}

// OrderIDGenerator issues order numbers.
type OrderIDGenerator interface {
	NewOrderID() int64
}

// RandomOrderIDGenerator issues uniformly random 8-digit order numbers. Collisions are not checked.
type RandomOrderIDGenerator struct{}

func (RandomOrderIDGenerator) NewOrderID() int64 {
	return 10000000 + rand.Int64N(90000000)
}

// CheckoutService turns the cart into a placed order.
type CheckoutService struct {
	cart      *store.Cart
	validator *validation.Validator
	ids       OrderIDGenerator
	publisher rabbitmq.Publisher
	notifier  notify.Notifier
	logger    *zap.Logger
	delay     time.Duration
}

// NewCheckoutService creates a new CheckoutService. delay simulates order processing.
func NewCheckoutService(
	cart *store.Cart,
	validator *validation.Validator,
	ids OrderIDGenerator,
	publisher rabbitmq.Publisher,
	notifier notify.Notifier,
	logger *zap.Logger,
	delay time.Duration,
) *CheckoutService {
	return &CheckoutService{
		cart:      cart,
		validator: validator,
		ids:       ids,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
		delay:     delay,
	}
}

// PlaceOrder validates form against the current cart, waits for the processing delay
// and then clears the cart. Cancelling ctx during the delay leaves the cart untouched.
// The order is not stored anywhere; the receipt is the only record of it.
func (s *CheckoutService) PlaceOrder(ctx context.Context, form CheckoutForm) (*Receipt, error) {
	if s.cart.IsEmpty() {
		return nil, s.emptyCart()
	}

	form.normalize()
	violations, err := s.validator.Struct(form)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		title, description := "Missing Information", ErrMsgMissingDetails
		if len(violations) == 1 && violations[0].Field == "email" && violations[0].Rule == "email" {
			title, description = "Invalid Email", "Please enter a valid email address."
		}
		s.notifier.Notify(notify.Failure(title, description))
		return nil, apperr.Validation(description, violations...)
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("checkout abandoned", zap.Error(ctx.Err()))
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, s.emptyCart()
	}
	summary := pricing.Calculate(lines)

	order := models.Order{
		ID:              s.ids.NewOrderID(),
		CustomerName:    form.FirstName + " " + form.LastName,
		CustomerEmail:   form.Email,
		Status:          models.OrderStatusPending,
		Items:           models.SnapshotLines(lines),
		TotalAmount:     summary.Total,
		ShippingAddress: strings.Join([]string{form.Address, form.City, form.PostalCode, form.Country}, ", "),
		OrderDate:       time.Now().UTC(),
		PaymentMethod:   form.PaymentMethod,
	}

	s.cart.Clear()
	s.logger.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.TotalAmount.StringFixed(2)))
	s.notifier.Notify(notify.Info("Order Placed Successfully", fmt.Sprintf("Your order #%d has been placed.", order.ID)))

	event := rabbitmq.Event{
		Type:       rabbitmq.EventOrderPlaced,
		OrderID:    order.ID,
		Status:     string(order.Status),
		Total:      order.TotalAmount,
		OccurredAt: order.OrderDate,
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish order event", zap.Int64("order_id", order.ID), zap.Error(err))
	}

	return &Receipt{Order: order, Summary: summary, Redirect: TrackingRoute(order.ID)}, nil
}

func (s *CheckoutService) emptyCart() error {
	s.notifier.Notify(notify.Failure(ErrMsgCartEmpty, "Add some products to your cart before checking out."))
	return apperr.Validation(ErrMsgCartEmpty).WithRedirect(EmptyCartRedirect)
}
