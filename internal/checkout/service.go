package checkout

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MiniShop/internal/admin"
	"MiniShop/internal/cache"
	"MiniShop/internal/store"
)

const discountRate = 0.10

var (
	ErrCartNotFound  = errors.New("cart not found")
	ErrCartEmpty     = errors.New("cart is empty")
	ErrInvalidCode   = errors.New("invalid discount code")
	ErrCodeUsed      = errors.New("discount code already used")
	ErrOrderNotFound = errors.New("order not found")
)

type Service struct {
	Store   *store.Store
	Cache   *cache.Cache
	Metrics *Metrics
	Log     *zap.Logger
}

// Checkout turns a cart into an order. The whole sequence runs inside one
// store.Update closure: validation happens before any mutation, so a failed
// checkout leaves the counter, the cart and the discount code untouched, and
// two checkouts can never consume the same code.
func (s *Service) Checkout(cartID, code string) (store.Order, error) {
	var (
		order    store.Order
		redeemed bool
		minted   bool
	)

	err := s.Store.Update(func(st *store.State) error {
		c, ok := st.Carts[cartID]
		if !ok {
			return ErrCartNotFound
		}
		if len(c.Items) == 0 {
			return ErrCartEmpty
		}

		var subtotal float64
		for _, it := range c.Items {
			subtotal += st.Products[it.ProductID].Price * float64(it.Quantity)
		}

		var (
			discountAmount float64
			codeUsed       *string
		)
		if code != "" {
			dc, ok := st.DiscountCodes[code]
			if !ok {
				return ErrInvalidCode
			}
			if dc.IsUsed {
				return ErrCodeUsed
			}
			// Not rounded here; amounts are only rounded at the
			// statistics reporting boundary.
			discountAmount = subtotal * discountRate
			dc.IsUsed = true
			cc := code
			codeUsed = &cc
			redeemed = true
		}

		st.OrderCounter++

		order = store.Order{
			ID:               uuid.NewString(),
			CartID:           cartID,
			Items:            c.Snapshot().Items,
			Subtotal:         subtotal,
			DiscountAmount:   discountAmount,
			Total:            subtotal - discountAmount,
			DiscountCodeUsed: codeUsed,
			CreatedAt:        time.Now().UTC(),
		}
		st.Orders[order.ID] = order

		// The cart ceases to exist once checked out.
		delete(st.Carts, cartID)

		// Nth-order trigger, checked against the post-increment counter.
		if st.OrderCounter%st.NthOrder == 0 {
			store.MintDiscountCode(st)
			minted = true
		}
		return nil
	})
	if err != nil {
		return store.Order{}, err
	}

	s.Cache.InvalidateByPrefix(admin.StatsCachePrefix)

	if s.Metrics != nil {
		s.Metrics.OrdersPlaced.Inc()
		if redeemed {
			s.Metrics.DiscountsRedeemed.Inc()
		}
		if minted {
			s.Metrics.CodesMinted.Inc()
		}
	}
	if s.Log != nil {
		s.Log.Info("checkout completed",
			zap.String("order_id", order.ID),
			zap.String("cart_id", cartID),
			zap.Float64("total", order.Total),
			zap.Bool("discount_applied", redeemed),
			zap.Bool("code_minted", minted),
		)
	}

	return order, nil
}

func (s *Service) ListOrders() []store.Order {
	return s.Store.ListOrdersSortedByTime()
}

func (s *Service) GetOrder(id string) (store.Order, error) {
	o, ok := s.Store.GetOrder(id)
	if !ok {
		return store.Order{}, ErrOrderNotFound
	}
	return o, nil
}
