package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"MiniShop/internal/store"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("item not found in cart")
)

type Service struct {
	Store *store.Store
}

func (s *Service) CreateCart() store.Cart {
	c := &store.Cart{
		ID:        uuid.NewString(),
		Items:     []store.CartItem{},
		CreatedAt: time.Now().UTC(),
	}
	_ = s.Store.Update(func(st *store.State) error {
		st.Carts[c.ID] = c
		return nil
	})
	return c.Snapshot()
}

func (s *Service) GetCart(id string) (store.Cart, error) {
	c, ok := s.Store.GetCart(id)
	if !ok {
		return store.Cart{}, ErrCartNotFound
	}
	return c, nil
}

// AddItem merges into an existing line for the product if one exists,
// otherwise appends a new line. A cart never holds two lines for the same
// product.
func (s *Service) AddItem(cartID, productID string, qty int) (store.Cart, error) {
	var out store.Cart
	err := s.Store.Update(func(st *store.State) error {
		c, ok := st.Carts[cartID]
		if !ok {
			return ErrCartNotFound
		}
		if _, ok := st.Products[productID]; !ok {
			return ErrProductNotFound
		}

		merged := false
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				c.Items[i].Quantity += qty
				merged = true
				break
			}
		}
		if !merged {
			c.Items = append(c.Items, store.CartItem{ProductID: productID, Quantity: qty})
		}

		out = c.Snapshot()
		return nil
	})
	return out, err
}

// UpdateQuantity overwrites the line's quantity; qty <= 0 removes the line.
func (s *Service) UpdateQuantity(cartID, productID string, qty int) (store.Cart, error) {
	var out store.Cart
	err := s.Store.Update(func(st *store.State) error {
		c, ok := st.Carts[cartID]
		if !ok {
			return ErrCartNotFound
		}

		idx := -1
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrItemNotFound
		}

		if qty <= 0 {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		} else {
			c.Items[idx].Quantity = qty
		}

		out = c.Snapshot()
		return nil
	})
	return out, err
}

// RemoveItem is idempotent: removing an absent product leaves the cart
// unchanged.
func (s *Service) RemoveItem(cartID, productID string) (store.Cart, error) {
	var out store.Cart
	err := s.Store.Update(func(st *store.State) error {
		c, ok := st.Carts[cartID]
		if !ok {
			return ErrCartNotFound
		}

		kept := c.Items[:0]
		for _, it := range c.Items {
			if it.ProductID != productID {
				kept = append(kept, it)
			}
		}
		c.Items = kept

		out = c.Snapshot()
		return nil
	})
	return out, err
}
