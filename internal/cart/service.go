package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/guntanalaganesh-web/shoe-store/internal/catalog"
	"github.com/guntanalaganesh-web/shoe-store/internal/pricing"
)

var (
	ErrOutOfStock   = errors.New("not enough stock")
	ErrLineNotFound = errors.New("cart line not found")
	ErrInvalid      = errors.New("invalid cart request")
)

// ProductSource is the live catalog view the cart validates against.
type ProductSource interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
}

type Service struct {
	store    Store
	products ProductSource
	rates    pricing.Rates
}

func NewService(store Store, products ProductSource, rates pricing.Rates) *Service {
	return &Service{store: store, products: products, rates: rates}
}

type AddInput struct {
	ProductID string  `json:"productId"`
	Size      float64 `json:"size"`
	Color     string  `json:"color"`
	Quantity  int     `json:"quantity"`
}

func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	return s.store.Get(ctx, sessionID)
}

// Add appends a line or, when a line with the same product, size and color
// already exists, sums the quantities. The cumulative quantity is validated
// against live bucket stock; failure leaves the stored cart untouched.
func (s *Service) Add(ctx context.Context, sessionID string, in AddInput) (*Cart, error) {
	if in.ProductID == "" {
		return nil, fmt.Errorf("productId is required: %w", ErrInvalid)
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrInvalid)
	}

	p, err := s.products.Get(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, catalog.ErrNotFound
	}
	stock, carried := p.StockForSize(in.Size)
	if !carried {
		return nil, fmt.Errorf("%s is not available in size %v: %w", p.Name, in.Size, ErrOutOfStock)
	}

	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	line := findLine(c, in.ProductID, in.Size, in.Color)
	cumulative := qty
	if line != nil {
		cumulative += line.Quantity
	}
	if cumulative > stock {
		return nil, fmt.Errorf("%s size %v: only %d in stock: %w", p.Name, in.Size, stock, ErrOutOfStock)
	}

	if line != nil {
		line.Quantity = cumulative
	} else {
		c.Items = append(c.Items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Brand:     p.Brand,
			Slug:      p.Slug,
			ImageURL:  p.ImageURL,
			Price:     p.EffectivePrice(),
			Size:      in.Size,
			Color:     in.Color,
			Quantity:  qty,
			MaxStock:  stock,
		})
	}

	return s.save(ctx, sessionID, c)
}

// Update sets the first line matching product and size to an exact quantity,
// revalidated against live stock. A quantity of zero or less removes the
// line.
func (s *Service) Update(ctx context.Context, sessionID, productID string, size float64, quantity int) (*Cart, error) {
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].Size == size {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrLineNotFound
	}

	if quantity <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		return s.save(ctx, sessionID, c)
	}

	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	stock, carried := p.StockForSize(size)
	if !carried || quantity > stock {
		return nil, fmt.Errorf("%s size %v: only %d in stock: %w", p.Name, size, stock, ErrOutOfStock)
	}

	c.Items[idx].Quantity = quantity
	return s.save(ctx, sessionID, c)
}

// Remove drops every line for the product and size, color variants included.
func (s *Service) Remove(ctx context.Context, sessionID, productID string, size float64) (*Cart, error) {
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kept := c.Items[:0]
	removed := false
	for _, it := range c.Items {
		if it.ProductID == productID && it.Size == size {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	if !removed {
		return nil, ErrLineNotFound
	}
	c.Items = kept

	return s.save(ctx, sessionID, c)
}

func (s *Service) Clear(ctx context.Context, sessionID string) (*Cart, error) {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return nil, err
	}
	c := Empty()
	c.Recalculate(s.rates)
	return c, nil
}

func (s *Service) save(ctx context.Context, sessionID string, c *Cart) (*Cart, error) {
	c.Recalculate(s.rates)
	if err := s.store.Put(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func findLine(c *Cart, productID string, size float64, color string) *Item {
	for i := range c.Items {
		it := &c.Items[i]
		if it.ProductID == productID && it.Size == size && it.Color == color {
			return it
		}
	}
	return nil
}
