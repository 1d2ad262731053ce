package admin

import (
	"fmt"
	"math"
	"sort"
	"time"

	"MiniShop/internal/cache"
	"MiniShop/internal/store"
)

const (
	// StatsCachePrefix is shared with checkout, which invalidates it after
	// every successful order.
	StatsCachePrefix = "admin_stats"

	statsTTL = time.Minute
)

type Statistics struct {
	TotalItemsPurchased int                  `json:"total_items_purchased"`
	TotalPurchaseAmount float64              `json:"total_purchase_amount"`
	DiscountCodes       []store.DiscountCode `json:"discount_codes"`
	TotalDiscountAmount float64              `json:"total_discount_amount"`
	TotalOrders         int                  `json:"total_orders"`
	NthOrderValue       int                  `json:"nth_order_value"`
}

type MintReport struct {
	Message         string              `json:"message"`
	DiscountCode    *store.DiscountCode `json:"discount_code,omitempty"`
	OrdersUntilNext int                 `json:"orders_until_next,omitempty"`
}

type Service struct {
	Store *store.Store
	Cache *cache.Cache
}

// GenerateDiscountCode mints only when the order counter already sits on an
// exact nth-order multiple; otherwise it reports how many orders remain. It
// mirrors the automatic checkout trigger through the same mint primitive and
// is never an error.
func (s *Service) GenerateDiscountCode() MintReport {
	var report MintReport
	_ = s.Store.Update(func(st *store.State) error {
		if st.OrderCounter%st.NthOrder == 0 {
			dc := store.MintDiscountCode(st)
			report = MintReport{
				Message:      "Discount code generated",
				DiscountCode: &dc,
			}
			return nil
		}

		remaining := st.NthOrder - st.OrderCounter%st.NthOrder
		report = MintReport{
			Message:         fmt.Sprintf("Discount not available yet. %d more orders needed.", remaining),
			OrdersUntilNext: remaining,
		}
		return nil
	})
	return report
}

// Statistics is cache-backed under the "admin_stats" prefix with a one-minute
// TTL. Amounts accumulate unrounded and are rounded to 2 decimals only here,
// at the reporting boundary.
func (s *Service) Statistics() Statistics {
	key := cache.Key(StatsCachePrefix, "statistics")
	if v, ok := s.Cache.Get(key, statsTTL); ok {
		return v.(Statistics)
	}

	var out Statistics
	s.Store.View(func(st *store.State) {
		var purchase, discount float64
		for _, o := range st.Orders {
			for _, it := range o.Items {
				out.TotalItemsPurchased += it.Quantity
			}
			purchase += o.Total
			discount += o.DiscountAmount
		}

		out.DiscountCodes = make([]store.DiscountCode, 0, len(st.DiscountCodes))
		for _, dc := range st.DiscountCodes {
			out.DiscountCodes = append(out.DiscountCodes, *dc)
		}

		out.TotalPurchaseAmount = round2(purchase)
		out.TotalDiscountAmount = round2(discount)
		out.TotalOrders = len(st.Orders)
		out.NthOrderValue = st.NthOrder
	})

	sort.Slice(out.DiscountCodes, func(i, j int) bool {
		a, b := out.DiscountCodes[i], out.DiscountCodes[j]
		if a.OrderNumber == b.OrderNumber {
			return a.Code < b.Code
		}
		return a.OrderNumber < b.OrderNumber
	})

	s.Cache.Set(key, out)
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
