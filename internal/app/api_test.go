package app_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"MiniShop/internal/admin"
	"MiniShop/internal/app"
	"MiniShop/internal/cache"
	"MiniShop/internal/store"
)

func newTS(t *testing.T) *httptest.Server {
	t.Helper()

	h := app.NewHandler(app.Deps{
		Log:     zap.NewNop(),
		Service: "shop",
		// Registry: nil
		Store: store.New(3),
		Cache: cache.New(),
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

type cartResp struct {
	Message string     `json:"message"`
	Cart    store.Cart `json:"cart"`
}

func approx(a, b float64) bool { return math.Abs(a-b) < 0.001 }

func TestShopAPI_HappyPath(t *testing.T) {
	ts := newTS(t)
	c := &http.Client{}

	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/products", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("list products status=%d", resp.StatusCode)
		}
		var products []store.Product
		if err := json.Unmarshal(raw, &products); err != nil {
			t.Fatalf("decode products: %v body=%s", err, string(raw))
		}
		if len(products) != 6 {
			t.Fatalf("products=%d want 6", len(products))
		}
	}

	var cartID string
	{
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/cart", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("create cart status=%d body=%s", resp.StatusCode, string(raw))
		}
		var created store.Cart
		if err := json.Unmarshal(raw, &created); err != nil {
			t.Fatalf("decode cart: %v body=%s", err, string(raw))
		}
		if created.ID == "" {
			t.Fatalf("empty cart id")
		}
		cartID = created.ID
	}

	{
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/cart/"+cartID+"/items", map[string]any{
			"product_id": "1",
			"quantity":   2,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add item status=%d body=%s", resp.StatusCode, string(raw))
		}

		resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/cart/"+cartID+"/items", map[string]any{
			"product_id": "1",
			"quantity":   1,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add item again status=%d body=%s", resp.StatusCode, string(raw))
		}

		var cr cartResp
		if err := json.Unmarshal(raw, &cr); err != nil {
			t.Fatalf("decode cart wrapper: %v body=%s", err, string(raw))
		}
		if len(cr.Cart.Items) != 1 || cr.Cart.Items[0].Quantity != 3 {
			t.Fatalf("want one merged line qty=3, got %+v", cr.Cart.Items)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodPut, ts.URL+"/cart/"+cartID+"/items/1?quantity=5", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("update quantity status=%d body=%s", resp.StatusCode, string(raw))
		}
		var cr cartResp
		if err := json.Unmarshal(raw, &cr); err != nil {
			t.Fatalf("decode cart wrapper: %v body=%s", err, string(raw))
		}
		if cr.Cart.Items[0].Quantity != 5 {
			t.Fatalf("qty=%d want 5", cr.Cart.Items[0].Quantity)
		}
	}

	var orderID string
	{
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/checkout", map[string]any{
			"cart_id": cartID,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("checkout status=%d body=%s", resp.StatusCode, string(raw))
		}
		var o store.Order
		if err := json.Unmarshal(raw, &o); err != nil {
			t.Fatalf("decode order: %v body=%s", err, string(raw))
		}
		if !approx(o.Subtotal, 499.95) || !approx(o.Total, 499.95) {
			t.Fatalf("subtotal=%v total=%v", o.Subtotal, o.Total)
		}
		orderID = o.ID
	}

	{
		resp, _ := doJSON(t, c, http.MethodGet, ts.URL+"/cart/"+cartID, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("cart after checkout status=%d want 404", resp.StatusCode)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/orders/"+orderID, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("get order status=%d body=%s", resp.StatusCode, string(raw))
		}

		resp, raw = doJSON(t, c, http.MethodGet, ts.URL+"/orders", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("list orders status=%d", resp.StatusCode)
		}
		var orders []store.Order
		if err := json.Unmarshal(raw, &orders); err != nil {
			t.Fatalf("decode orders: %v body=%s", err, string(raw))
		}
		if len(orders) != 1 || orders[0].ID != orderID {
			t.Fatalf("orders=%+v", orders)
		}
	}
}

func TestShopAPI_Errors(t *testing.T) {
	ts := newTS(t)
	c := &http.Client{}

	{
		resp, _ := doJSON(t, c, http.MethodGet, ts.URL+"/products/999", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("unknown product status=%d want 404", resp.StatusCode)
		}
	}

	{
		resp, _ := doJSON(t, c, http.MethodGet, ts.URL+"/cart/nonexistent", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("unknown cart status=%d want 404", resp.StatusCode)
		}
	}

	var cartID string
	{
		_, raw := doJSON(t, c, http.MethodPost, ts.URL+"/cart", nil)
		var created store.Cart
		if err := json.Unmarshal(raw, &created); err != nil {
			t.Fatalf("decode cart: %v", err)
		}
		cartID = created.ID
	}

	{
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/cart/"+cartID+"/items", map[string]any{
			"product_id": "1",
			"quantity":   0,
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("zero quantity status=%d body=%s", resp.StatusCode, string(raw))
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/checkout", map[string]any{
			"cart_id": cartID,
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("empty cart checkout status=%d body=%s", resp.StatusCode, string(raw))
		}
	}

	{
		doJSON(t, c, http.MethodPost, ts.URL+"/cart/"+cartID+"/items", map[string]any{
			"product_id": "1",
			"quantity":   1,
		})
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/checkout", map[string]any{
			"cart_id":       cartID,
			"discount_code": "INVALID",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("invalid code checkout status=%d body=%s", resp.StatusCode, string(raw))
		}
	}
}

func TestShopAPI_DiscountLifecycle(t *testing.T) {
	ts := newTS(t)
	c := &http.Client{}

	type mintReport struct {
		Message         string              `json:"message"`
		DiscountCode    *store.DiscountCode `json:"discount_code"`
		OrdersUntilNext int                 `json:"orders_until_next"`
	}

	var code string
	{
		// Counter 0 is an exact multiple of 3, so the manual mint succeeds.
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/admin/generate-discount", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("generate status=%d body=%s", resp.StatusCode, string(raw))
		}
		var mr mintReport
		if err := json.Unmarshal(raw, &mr); err != nil {
			t.Fatalf("decode mint report: %v body=%s", err, string(raw))
		}
		if mr.DiscountCode == nil {
			t.Fatalf("no code minted: %s", string(raw))
		}
		code = mr.DiscountCode.Code
	}

	checkout := func(discountCode string) (*http.Response, []byte) {
		_, raw := doJSON(t, c, http.MethodPost, ts.URL+"/cart", nil)
		var created store.Cart
		if err := json.Unmarshal(raw, &created); err != nil {
			t.Fatalf("decode cart: %v", err)
		}
		doJSON(t, c, http.MethodPost, ts.URL+"/cart/"+created.ID+"/items", map[string]any{
			"product_id": "1",
			"quantity":   1,
		})
		body := map[string]any{"cart_id": created.ID}
		if discountCode != "" {
			body["discount_code"] = discountCode
		}
		return doJSON(t, c, http.MethodPost, ts.URL+"/checkout", body)
	}

	{
		resp, raw := checkout(code)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("discounted checkout status=%d body=%s", resp.StatusCode, string(raw))
		}
		var o store.Order
		if err := json.Unmarshal(raw, &o); err != nil {
			t.Fatalf("decode order: %v", err)
		}
		if !approx(o.DiscountAmount, 9.999) || !approx(o.Total, 89.991) {
			t.Fatalf("discount=%v total=%v", o.DiscountAmount, o.Total)
		}
	}

	{
		resp, raw := checkout(code)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("reused code status=%d body=%s", resp.StatusCode, string(raw))
		}
	}

	{
		// Second and third orders; the third trips the nth-order trigger.
		checkout("")
		checkout("")

		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/admin/statistics", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("statistics status=%d", resp.StatusCode)
		}
		var stats admin.Statistics
		if err := json.Unmarshal(raw, &stats); err != nil {
			t.Fatalf("decode statistics: %v body=%s", err, string(raw))
		}

		if stats.TotalOrders != 3 {
			t.Fatalf("total_orders=%d want 3", stats.TotalOrders)
		}
		if stats.TotalItemsPurchased != 3 {
			t.Fatalf("total_items=%d want 3", stats.TotalItemsPurchased)
		}
		// One manual code (redeemed) plus one auto-minted at order 3.
		if len(stats.DiscountCodes) != 2 {
			t.Fatalf("discount_codes=%d want 2 (%s)", len(stats.DiscountCodes), string(raw))
		}
		if !stats.DiscountCodes[0].IsUsed {
			t.Fatalf("manual code should be marked used")
		}
		if stats.DiscountCodes[1].OrderNumber != 3 {
			t.Fatalf("auto code order_number=%d want 3", stats.DiscountCodes[1].OrderNumber)
		}
	}
}
