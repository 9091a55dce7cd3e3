package order

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/guntanalaganesh-web/shoe-store/internal/cart"
	"github.com/guntanalaganesh-web/shoe-store/internal/pricing"
)

type fakeRepo struct {
	placed   []*Order
	depleted []DepletedBucket
	placeErr error

	cancelled *Order
	cancelErr error

	updated    *Order
	previous   Status
	updateErr  error
	updateArgs []any

	orders map[string]*Order

	listStatus Status
}

func (f *fakeRepo) PlaceOrder(ctx context.Context, o *Order) ([]DepletedBucket, error) {
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	f.placed = append(f.placed, o)
	return f.depleted, nil
}

func (f *fakeRepo) Cancel(ctx context.Context, orderID, userID string) (*Order, error) {
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	return f.cancelled, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, orderID string, status Status, trackingNumber, note string) (*Order, Status, error) {
	if f.updateErr != nil {
		return nil, "", f.updateErr
	}
	f.updateArgs = []any{orderID, status, trackingNumber, note}
	return f.updated, f.previous, nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (f *fakeRepo) GetForUser(ctx context.Context, id, userID string) (*Order, error) {
	o, ok := f.orders[id]
	if !ok || o.UserID != userID {
		return nil, ErrNotFound
	}
	return o, nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	var out []Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	f.listStatus = status
	return nil, nil
}

type fakeCarts struct {
	cart     *cart.Cart
	getErr   error
	cleared  []string
	clearErr error
}

func (f *fakeCarts) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.cart, nil
}

func (f *fakeCarts) Clear(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if f.clearErr != nil {
		return nil, f.clearErr
	}
	f.cleared = append(f.cleared, sessionID)
	return cart.Empty(), nil
}

type publishedDepletion struct {
	orderID string
	bucket  DepletedBucket
}

type statusChange struct {
	order    *Order
	previous Status
}

type fakePublisher struct {
	placed     []*Order
	cancelled  []*Order
	changes    []statusChange
	depletions []publishedDepletion
	err        error
}

func (f *fakePublisher) PublishOrderPlaced(ctx context.Context, o *Order) error {
	if f.err != nil {
		return f.err
	}
	f.placed = append(f.placed, o)
	return nil
}

func (f *fakePublisher) PublishOrderCancelled(ctx context.Context, o *Order) error {
	if f.err != nil {
		return f.err
	}
	f.cancelled = append(f.cancelled, o)
	return nil
}

func (f *fakePublisher) PublishOrderStatusChanged(ctx context.Context, o *Order, previous Status) error {
	if f.err != nil {
		return f.err
	}
	f.changes = append(f.changes, statusChange{order: o, previous: previous})
	return nil
}

func (f *fakePublisher) PublishStockDepleted(ctx context.Context, orderID string, b DepletedBucket) error {
	if f.err != nil {
		return f.err
	}
	f.depletions = append(f.depletions, publishedDepletion{orderID: orderID, bucket: b})
	return nil
}

func newTestService(repo *fakeRepo, carts *fakeCarts, pub *fakePublisher, out io.Writer) *Service {
	if out == nil {
		out = io.Discard
	}
	return NewService(repo, carts, pub, pricing.Default(), log.New(out, "", 0))
}

func checkoutCart() *cart.Cart {
	return &cart.Cart{Items: []cart.Item{
		{ProductID: "p1", Name: "Air Glide 2", Brand: "Stride", Slug: "air-glide-2", Price: dec("40"), Size: 9, Quantity: 3},
	}}
}

func validCheckout() CheckoutInput {
	return CheckoutInput{
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentCard,
		ShippingMethod:  pricing.ShippingStandard,
	}
}

func TestServiceCheckout(t *testing.T) {
	repo := &fakeRepo{}
	carts := &fakeCarts{cart: checkoutCart()}
	pub := &fakePublisher{}
	svc := newTestService(repo, carts, pub, nil)

	o, err := svc.Checkout(context.Background(), "sess-1", "u1", validCheckout())
	require.NoError(t, err)

	_, err = uuid.Parse(o.ID)
	require.NoError(t, err)
	require.Equal(t, "u1", o.UserID)
	require.Equal(t, StatusConfirmed, o.Status)
	require.Equal(t, PaymentStatusPending, o.PaymentStatus)

	require.True(t, dec("120").Equal(o.Subtotal), "subtotal %s", o.Subtotal)
	require.True(t, o.ShippingCost.IsZero(), "shipping %s", o.ShippingCost)
	require.True(t, dec("9.6").Equal(o.Tax), "tax %s", o.Tax)
	require.True(t, dec("129.6").Equal(o.Total), "total %s", o.Total)

	require.Len(t, o.Items, 1)
	require.Equal(t, "Air Glide 2", o.Items[0].Name)
	require.Equal(t, 3, o.Items[0].Quantity)
	require.Equal(t, o.ShippingAddress, o.BillingAddress)

	require.Len(t, repo.placed, 1)
	require.Equal(t, []string{"sess-1"}, carts.cleared)
	require.Len(t, pub.placed, 1)
	require.Same(t, o, pub.placed[0])
}

func TestServiceCheckout_ExpressWithBillingAddress(t *testing.T) {
	repo := &fakeRepo{}
	carts := &fakeCarts{cart: &cart.Cart{Items: []cart.Item{
		{ProductID: "p1", Name: "Air Glide 2", Price: dec("40"), Size: 9, Quantity: 1},
	}}}
	svc := newTestService(repo, carts, &fakePublisher{}, nil)

	billing := testAddress()
	billing.FullName = "Accounts Payable"
	in := validCheckout()
	in.ShippingMethod = pricing.ShippingExpress
	in.BillingAddress = &billing

	o, err := svc.Checkout(context.Background(), "sess-1", "u1", in)
	require.NoError(t, err)

	require.True(t, dec("40").Equal(o.Subtotal), "subtotal %s", o.Subtotal)
	require.True(t, dec("25").Equal(o.ShippingCost), "shipping %s", o.ShippingCost)
	require.True(t, dec("3.2").Equal(o.Tax), "tax %s", o.Tax)
	require.True(t, dec("68.2").Equal(o.Total), "total %s", o.Total)
	require.Equal(t, "Accounts Payable", o.BillingAddress.FullName)
	require.NotEqual(t, o.ShippingAddress, o.BillingAddress)
}

func TestServiceCheckout_EmptyCart(t *testing.T) {
	repo := &fakeRepo{}
	carts := &fakeCarts{cart: cart.Empty()}
	svc := newTestService(repo, carts, &fakePublisher{}, nil)

	_, err := svc.Checkout(context.Background(), "sess-1", "u1", validCheckout())
	require.ErrorIs(t, err, ErrEmptyCart)
	require.Empty(t, repo.placed)
}

func TestServiceCheckout_RequiresAuth(t *testing.T) {
	svc := newTestService(&fakeRepo{}, &fakeCarts{cart: checkoutCart()}, &fakePublisher{}, nil)

	_, err := svc.Checkout(context.Background(), "sess-1", "", validCheckout())
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestServiceCheckout_Validation(t *testing.T) {
	cases := map[string]func(in *CheckoutInput){
		"missing shipping address": func(in *CheckoutInput) { in.ShippingAddress = Address{} },
		"no postal code":           func(in *CheckoutInput) { in.ShippingAddress.PostalCode = "" },
		"unknown payment method":   func(in *CheckoutInput) { in.PaymentMethod = "barter" },
		"unknown shipping method":  func(in *CheckoutInput) { in.ShippingMethod = "drone" },
		"incomplete billing":       func(in *CheckoutInput) { in.BillingAddress = &Address{City: "Austin"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &fakeRepo{}
			svc := newTestService(repo, &fakeCarts{cart: checkoutCart()}, &fakePublisher{}, nil)

			in := validCheckout()
			mutate(&in)
			_, err := svc.Checkout(context.Background(), "sess-1", "u1", in)
			require.ErrorIs(t, err, ErrInvalid)
			require.Empty(t, repo.placed)
		})
	}
}

func TestServiceCheckout_StockShortfall(t *testing.T) {
	shortfall := &InsufficientStockError{ProductID: "p1", Name: "Air Glide 2", Size: 9, Requested: 3, Available: 1}
	repo := &fakeRepo{placeErr: shortfall}
	carts := &fakeCarts{cart: checkoutCart()}
	pub := &fakePublisher{}
	svc := newTestService(repo, carts, pub, nil)

	_, err := svc.Checkout(context.Background(), "sess-1", "u1", validCheckout())

	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.Empty(t, carts.cleared, "cart must survive a failed checkout")
	require.Empty(t, pub.placed)
}

func TestServiceCheckout_PublishesDepletedBuckets(t *testing.T) {
	repo := &fakeRepo{depleted: []DepletedBucket{
		{ProductID: "p1", Name: "Air Glide 2", Size: 9},
		{ProductID: "p2", Name: "Trail Fox", Size: 10},
	}}
	pub := &fakePublisher{}
	svc := newTestService(repo, &fakeCarts{cart: checkoutCart()}, pub, nil)

	o, err := svc.Checkout(context.Background(), "sess-1", "u1", validCheckout())
	require.NoError(t, err)

	require.Len(t, pub.depletions, 2)
	require.Equal(t, o.ID, pub.depletions[0].orderID)
	require.Equal(t, "Trail Fox", pub.depletions[1].bucket.Name)
}

func TestServiceCheckout_SideEffectsAreBestEffort(t *testing.T) {
	var buf bytes.Buffer
	repo := &fakeRepo{}
	carts := &fakeCarts{cart: checkoutCart(), clearErr: errors.New("redis down")}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newTestService(repo, carts, pub, &buf)

	o, err := svc.Checkout(context.Background(), "sess-1", "u1", validCheckout())
	require.NoError(t, err, "checkout must not fail on side effects")
	require.NotNil(t, o)
	require.Contains(t, buf.String(), "clear cart")
	require.Contains(t, buf.String(), "publish order placed")
}

func TestServiceCancel(t *testing.T) {
	cancelled := &Order{ID: "o1", UserID: "u1", Status: StatusCancelled}
	repo := &fakeRepo{cancelled: cancelled}
	pub := &fakePublisher{}
	svc := newTestService(repo, &fakeCarts{}, pub, nil)

	o, err := svc.Cancel(context.Background(), "o1", "u1")
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, o.Status)
	require.Len(t, pub.cancelled, 1)
}

func TestServiceCancel_RepoErrorsPassThrough(t *testing.T) {
	repo := &fakeRepo{cancelErr: ErrInvalidTransition}
	pub := &fakePublisher{}
	svc := newTestService(repo, &fakeCarts{}, pub, nil)

	_, err := svc.Cancel(context.Background(), "o1", "u1")
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Empty(t, pub.cancelled)

	_, err = svc.Cancel(context.Background(), "o1", "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestServiceAdminUpdateStatus(t *testing.T) {
	updated := &Order{ID: "o1", Status: StatusShipped, TrackingNumber: "TRK-9"}
	repo := &fakeRepo{updated: updated, previous: StatusProcessing}
	pub := &fakePublisher{}
	svc := newTestService(repo, &fakeCarts{}, pub, nil)

	o, err := svc.AdminUpdateStatus(context.Background(), "o1", StatusShipped, "TRK-9", "Handed to carrier")
	require.NoError(t, err)
	require.Equal(t, StatusShipped, o.Status)
	require.Equal(t, []any{"o1", StatusShipped, "TRK-9", "Handed to carrier"}, repo.updateArgs)

	require.Len(t, pub.changes, 1)
	require.Equal(t, StatusProcessing, pub.changes[0].previous)
}

func TestServiceAdminUpdateStatus_UnknownStatus(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &fakeCarts{}, &fakePublisher{}, nil)

	_, err := svc.AdminUpdateStatus(context.Background(), "o1", "misplaced", "", "")
	require.ErrorIs(t, err, ErrInvalid)
	require.Nil(t, repo.updateArgs)
}

func TestServiceListByStatus(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &fakeCarts{}, &fakePublisher{}, nil)

	_, err := svc.ListByStatus(context.Background(), StatusShipped)
	require.NoError(t, err)
	require.Equal(t, StatusShipped, repo.listStatus)

	_, err = svc.ListByStatus(context.Background(), "")
	require.NoError(t, err)

	_, err = svc.ListByStatus(context.Background(), "misplaced")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestServiceGetForUser(t *testing.T) {
	repo := &fakeRepo{orders: map[string]*Order{
		"o1": {ID: "o1", UserID: "u1"},
	}}
	svc := newTestService(repo, &fakeCarts{}, &fakePublisher{}, nil)

	o, err := svc.GetForUser(context.Background(), "o1", "u1")
	require.NoError(t, err)
	require.Equal(t, "o1", o.ID)

	_, err = svc.GetForUser(context.Background(), "o1", "u2")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetForUser(context.Background(), "o1", "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}
