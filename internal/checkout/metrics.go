package checkout

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	OrdersPlaced      prometheus.Counter
	DiscountsRedeemed prometheus.Counter
	CodesMinted       prometheus.Counter
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_orders_total",
			Help: "Successful checkouts",
		}),
		DiscountsRedeemed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_discounts_redeemed_total",
			Help: "Discount codes consumed at checkout",
		}),
		CodesMinted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_discount_codes_minted_total",
			Help: "Discount codes minted by the nth-order trigger",
		}),
	}

	reg.MustRegister(m.OrdersPlaced, m.DiscountsRedeemed, m.CodesMinted)
	return m
}
