package order

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/guntanalaganesh-web/shoe-store/internal/cart"
	"github.com/guntanalaganesh-web/shoe-store/internal/pricing"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalid         = errors.New("invalid order request")
)

// CartAccess is the slice of the cart service checkout needs.
type CartAccess interface {
	Get(ctx context.Context, sessionID string) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID string) (*cart.Cart, error)
}

// EventPublisher emits domain events after state changes. Publishing is best
// effort; failures are logged, never surfaced to the customer.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, o *Order) error
	PublishOrderCancelled(ctx context.Context, o *Order) error
	PublishOrderStatusChanged(ctx context.Context, o *Order, previous Status) error
	PublishStockDepleted(ctx context.Context, orderID string, b DepletedBucket) error
}

type Service struct {
	repo   Repository
	carts  CartAccess
	events EventPublisher
	rates  pricing.Rates
	logger *log.Logger
}

func NewService(repo Repository, carts CartAccess, events EventPublisher, rates pricing.Rates, logger *log.Logger) *Service {
	return &Service{repo: repo, carts: carts, events: events, rates: rates, logger: logger}
}

type CheckoutInput struct {
	ShippingAddress Address                `json:"shippingAddress"`
	BillingAddress  *Address               `json:"billingAddress"`
	PaymentMethod   PaymentMethod          `json:"paymentMethod"`
	ShippingMethod  pricing.ShippingMethod `json:"shippingMethod"`
}

// Checkout turns the session cart into an order. Totals come from the cart
// lines' price snapshots; stock is revalidated and decremented inside the
// repository transaction. On success the cart is cleared and events go out,
// both best effort.
func (s *Service) Checkout(ctx context.Context, sessionID, userID string, in CheckoutInput) (*Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if !in.ShippingAddress.Valid() {
		return nil, fmt.Errorf("shipping address is incomplete: %w", ErrInvalid)
	}
	if !ValidPaymentMethod(in.PaymentMethod) {
		return nil, fmt.Errorf("unknown payment method %q: %w", in.PaymentMethod, ErrInvalid)
	}
	if !pricing.ValidMethod(in.ShippingMethod) {
		return nil, fmt.Errorf("unknown shipping method %q: %w", in.ShippingMethod, ErrInvalid)
	}
	billing := in.ShippingAddress
	if in.BillingAddress != nil {
		if !in.BillingAddress.Valid() {
			return nil, fmt.Errorf("billing address is incomplete: %w", ErrInvalid)
		}
		billing = *in.BillingAddress
	}

	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items := make([]Item, len(c.Items))
	subtotal := decimal.Zero
	for i, line := range c.Items {
		items[i] = Item{
			ProductID: line.ProductID,
			Name:      line.Name,
			Brand:     line.Brand,
			Slug:      line.Slug,
			ImageURL:  line.ImageURL,
			Price:     line.Price,
			Size:      line.Size,
			Color:     line.Color,
			Quantity:  line.Quantity,
		}
		subtotal = subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = pricing.Round(subtotal)

	o := &Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Status:          StatusConfirmed,
		Items:           items,
		Subtotal:        subtotal,
		ShippingCost:    s.rates.ShippingCost(in.ShippingMethod, subtotal),
		Tax:             s.rates.Tax(subtotal),
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   PaymentStatusPending,
		ShippingMethod:  in.ShippingMethod,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  billing,
	}
	o.Total = o.Subtotal.Add(o.ShippingCost).Add(o.Tax)

	depleted, err := s.repo.PlaceOrder(ctx, o)
	if err != nil {
		return nil, err
	}

	if _, err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logger.Printf("order %s: clear cart: %v", o.ID, err)
	}
	if err := s.events.PublishOrderPlaced(ctx, o); err != nil {
		s.logger.Printf("order %s: publish order placed: %v", o.ID, err)
	}
	for _, b := range depleted {
		if err := s.events.PublishStockDepleted(ctx, o.ID, b); err != nil {
			s.logger.Printf("order %s: publish stock depleted: %v", o.ID, err)
		}
	}
	return o, nil
}

// Cancel lets the order's owner cancel while the order is still pending or
// confirmed. Stock restoration happens in the repository transaction.
func (s *Service) Cancel(ctx context.Context, orderID, userID string) (*Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	o, err := s.repo.Cancel(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.events.PublishOrderCancelled(ctx, o); err != nil {
		s.logger.Printf("order %s: publish order cancelled: %v", o.ID, err)
	}
	return o, nil
}

// AdminUpdateStatus overwrites the status, optionally attaches a tracking
// number, and records a history entry.
func (s *Service) AdminUpdateStatus(ctx context.Context, orderID string, status Status, trackingNumber, note string) (*Order, error) {
	if !KnownStatus(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrInvalid)
	}

	o, previous, err := s.repo.UpdateStatus(ctx, orderID, status, trackingNumber, note)
	if err != nil {
		return nil, err
	}

	if err := s.events.PublishOrderStatusChanged(ctx, o, previous); err != nil {
		s.logger.Printf("order %s: publish status change: %v", o.ID, err)
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetForUser(ctx context.Context, id, userID string) (*Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.repo.GetForUser(ctx, id, userID)
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.repo.ListByUser(ctx, userID)
}

// ListByStatus is the back-office listing; an empty status means all orders.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	if status != "" && !KnownStatus(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrInvalid)
	}
	return s.repo.ListByStatus(ctx, status)
}
