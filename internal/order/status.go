package order

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// KnownStatus reports whether s names a real order status. The back office
// may overwrite any known status with any other; only customer cancellation
// is constrained.
func KnownStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Terminal reports whether s ends the order's storefront lifecycle.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// CanCancel reports whether the customer may still cancel an order in
// status s.
func CanCancel(s Status) bool {
	return s == StatusPending || s == StatusConfirmed
}

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentPaypal PaymentMethod = "paypal"
	PaymentCOD    PaymentMethod = "cod"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCard, PaymentPaypal, PaymentCOD:
		return true
	}
	return false
}

// PaymentStatus records where the money stands. Nothing is actually charged;
// delivery flips cod orders to paid and a refunded order is marked refunded.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)
