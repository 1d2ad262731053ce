package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
}

type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}

type Order struct {
	ID               string     `json:"id"`
	CartID           string     `json:"cart_id"`
	Items            []CartItem `json:"items"`
	Subtotal         float64    `json:"subtotal"`
	DiscountAmount   float64    `json:"discount_amount"`
	Total            float64    `json:"total"`
	DiscountCodeUsed *string    `json:"discount_code_used"`
	CreatedAt        time.Time  `json:"created_at"`
}

type DiscountCode struct {
	Code        string    `json:"code"`
	OrderNumber int       `json:"order_number"`
	IsUsed      bool      `json:"is_used"`
	CreatedAt   time.Time `json:"created_at"`
}

// State is the full mutable state of the shop. It is only reachable through
// Store.View and Store.Update, so a closure observes and mutates it under a
// single lock acquisition.
type State struct {
	Products      map[string]Product
	Carts         map[string]*Cart
	Orders        map[string]Order
	DiscountCodes map[string]*DiscountCode

	OrderCounter int
	NthOrder     int
}

// Store owns all mutable collections and the order counter. It performs no
// validation; absent keys are reported to callers via map lookups inside
// View/Update closures.
type Store struct {
	mu sync.RWMutex
	s  State
}

const DefaultNthOrder = 3

func New(nthOrder int) *Store {
	if nthOrder <= 0 {
		nthOrder = DefaultNthOrder
	}

	st := &Store{s: State{
		Products:      map[string]Product{},
		Carts:         map[string]*Cart{},
		Orders:        map[string]Order{},
		DiscountCodes: map[string]*DiscountCode{},
		NthOrder:      nthOrder,
	}}

	for _, p := range seedProducts() {
		st.s.Products[p.ID] = p
	}
	return st
}

func (st *Store) View(fn func(s *State)) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	fn(&st.s)
}

// Update runs fn under the write lock. If fn returns an error it must leave
// the state untouched; checkout relies on validate-then-mutate inside one
// closure.
func (st *Store) Update(fn func(s *State) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return fn(&st.s)
}

func (st *Store) GetProduct(id string) (Product, bool) {
	var (
		p  Product
		ok bool
	)
	st.View(func(s *State) { p, ok = s.Products[id] })
	return p, ok
}

func (st *Store) ListProductsSortedByID() []Product {
	var out []Product
	st.View(func(s *State) {
		out = make([]Product, 0, len(s.Products))
		for _, p := range s.Products {
			out = append(out, p)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (st *Store) GetCart(id string) (Cart, bool) {
	var (
		c  Cart
		ok bool
	)
	st.View(func(s *State) {
		if cp, found := s.Carts[id]; found {
			c = cp.Snapshot()
			ok = true
		}
	})
	return c, ok
}

func (st *Store) GetOrder(id string) (Order, bool) {
	var (
		o  Order
		ok bool
	)
	st.View(func(s *State) { o, ok = s.Orders[id] })
	return o, ok
}

func (st *Store) ListOrdersSortedByTime() []Order {
	var out []Order
	st.View(func(s *State) {
		out = make([]Order, 0, len(s.Orders))
		for _, o := range s.Orders {
			out = append(out, o)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Snapshot returns a copy of the cart with its own items slice, decoupled
// from later cart mutations.
func (c *Cart) Snapshot() Cart {
	out := *c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

// MintDiscountCode creates and stores a fresh unused discount code stamped
// with the current order counter. Both the checkout nth-order trigger and the
// admin mint endpoint share this primitive; the exact-multiple checks stay in
// the callers.
func MintDiscountCode(s *State) DiscountCode {
	code := "SAVE10-" + strings.ToUpper(uuid.NewString()[:8])
	dc := DiscountCode{
		Code:        code,
		OrderNumber: s.OrderCounter,
		IsUsed:      false,
		CreatedAt:   time.Now().UTC(),
	}
	s.DiscountCodes[code] = &dc
	return dc
}

func seedProducts() []Product {
	return []Product{
		{ID: "1", Name: "Wireless Headphones", Price: 99.99,
			Description: "High-quality wireless headphones with noise cancellation",
			ImageURL:    "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500&q=80"},
		{ID: "2", Name: "Smart Watch", Price: 299.99,
			Description: "Fitness tracking smartwatch with heart rate monitor",
			ImageURL:    "https://images.unsplash.com/photo-1579586337278-3befd40fd17a?w=500&q=80"},
		{ID: "3", Name: "AirPods Pro", Price: 249.99,
			Description: "Wireless earbuds with active noise cancellation",
			ImageURL:    "https://images.unsplash.com/photo-1606841837239-c5a1a4a07af7?w=500&q=80"},
		{ID: "4", Name: "Mechanical Keyboard", Price: 149.99,
			Description: "RGB mechanical gaming keyboard with Red Switches",
			ImageURL:    "https://images.unsplash.com/photo-1595225476474-87563907a212?w=500&q=80"},
		{ID: "5", Name: "Wireless Mouse", Price: 79.99,
			Description: "Ergonomic wireless mouse with precision tracking",
			ImageURL:    "https://images.unsplash.com/photo-1527814050087-3793815479db?w=500&q=80"},
		{ID: "6", Name: "4K Monitor", Price: 399.99,
			Description: "27-inch 4K UHD monitor with HDR support",
			ImageURL:    "https://images.unsplash.com/photo-1527443224154-c4a3942d3acf?w=500&q=80"},
	}
}
