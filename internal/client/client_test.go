package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanvale/njord/internal/domain"
)

func TestDollarsToCents(t *testing.T) {
	assert.Equal(t, int64(2999), dollarsToCents(29.99))
	assert.Equal(t, int64(1000), dollarsToCents(10))
	assert.Equal(t, int64(1), dollarsToCents(0.01))
	// 19.99 is not exactly representable; rounding must still land on 1999
	assert.Equal(t, int64(1999), dollarsToCents(19.99))
}

func TestCartClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "u1", r.URL.Query().Get("user"))

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"_id":  "c1",
				"user": "u1",
				"items": []map[string]any{
					{"product": map[string]any{"_id": "p1", "title": "Mug", "price": 12.50}, "quantity": 2},
				},
			},
		})
	}))
	defer srv.Close()

	c := NewCartClient(srv.URL, srv.Client())
	cart, err := c.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, cart)

	assert.Equal(t, "c1", cart.ID)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "p1", cart.Lines[0].ProductID)
	assert.Equal(t, int64(2), cart.Lines[0].Quantity)
	assert.Equal(t, int64(1250), cart.Lines[0].UnitPriceCents)
}

func TestCartClientGetNoCart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewCartClient(srv.URL, srv.Client())
	cart, err := c.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, cart, "absent cart is a normal state, not an error")
}

func TestCartClientUpdateSendsFullLineSet(t *testing.T) {
	var body struct {
		Items []cartLineInputJSON `json:"items"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/c1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"_id": "c1", "user": "u1", "items": []any{}},
		})
	}))
	defer srv.Close()

	c := NewCartClient(srv.URL, srv.Client())
	_, err := c.Update(context.Background(), "c1", []CartLineInput{
		{ProductID: "p1", Quantity: 5},
		{ProductID: "p2", Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, body.Items, 2)
	assert.Equal(t, "p1", body.Items[0].Product)
	assert.Equal(t, int64(5), body.Items[0].Quantity)
}

func TestCartClientUpdateNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewCartClient(srv.URL, srv.Client())
	_, err := c.Update(context.Background(), "gone", nil)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestCartClientNonJSONErrorBody(t *testing.T) {
	// Error responses carry arbitrary bodies; the status must drive the
	// mapping, not a decode failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream timeout</html>"))
	}))
	defer srv.Close()

	c := NewCartClient(srv.URL, srv.Client())
	_, err := c.Get(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}

func TestCartClientMalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewCartClient(srv.URL, srv.Client())
	_, err := c.Get(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}

func TestCartClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewCartClient(srv.URL, srv.Client())
	_, err := c.Get(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}

func TestOrderClientCreateSendsIdempotencyKey(t *testing.T) {
	var gotKey string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"_id":         "o42",
				"user":        "u1",
				"totalAmount": 29.99,
				"status":      "processing",
			},
		})
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL, srv.Client())
	order, err := c.Create(context.Background(), CreateOrderParams{
		UserID:         "u1",
		Lines:          []domain.OrderLine{{ProductID: "p1", Quantity: 2, UnitPriceCents: 1000}},
		TotalCents:     2999,
		PaymentMethod:  "stripe",
		IdempotencyKey: "key-123",
	})
	require.NoError(t, err)

	assert.Equal(t, "key-123", gotKey)
	assert.Equal(t, 29.99, gotBody["totalAmount"])
	assert.Equal(t, "o42", order.ID)
	assert.Equal(t, domain.StatusProcessing, order.Status)
	assert.Equal(t, int64(2999), order.TotalCents)
}

func TestOrderClientUpdateStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/o42", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cancelled", body["status"])

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"_id": "o42", "status": "cancelled", "refunded": false},
		})
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL, srv.Client())
	order, err := c.UpdateStatus(context.Background(), "o42", domain.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, order.Status)
}

func TestProductClientDecrementStock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/p1/stock", r.URL.Path)

		var body map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(3), body["quantity"])

		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"_id": "p1"}})
	}))
	defer srv.Close()

	c := NewProductClient(srv.URL, srv.Client())
	require.NoError(t, c.DecrementStock(context.Background(), "p1", 3))
}

func TestWishlistClientGetEmptyForNewUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewWishlistClient(srv.URL, srv.Client())
	list, err := c.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", list.UserID)
	assert.Empty(t, list.Entries)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Connection-level failure: hijack and close without a response
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer srv.Close()

	c := NewProductClient(srv.URL, srv.Client())
	for i := 0; i < 5; i++ {
		_, err := c.List(context.Background())
		require.Error(t, err)
		assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
	}

	// Breaker is now open; the failure surfaces without a round trip.
	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}
