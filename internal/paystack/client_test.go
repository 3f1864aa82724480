package paystack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVerifyTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/MHH-1-ABCDE-2", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {"reference": "MHH-1-ABCDE-2", "status": "success", "amount": 2160, "currency": "NGN", "paid_at": "2024-06-10T08:00:00.000Z"}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "sk_test", time.Second, zap.NewNop())
	tx, err := client.VerifyTransaction(context.Background(), "MHH-1-ABCDE-2")
	require.NoError(t, err)

	assert.True(t, tx.Succeeded())
	assert.Equal(t, int64(2160), tx.Amount)
	assert.Equal(t, "NGN", tx.Currency)
}

func TestVerifyTransaction_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusUnauthorized, `{"status":false,"message":"Invalid key"}`},
		{"not found", http.StatusOK, `{"status":false,"message":"Transaction reference not found"}`},
		{"no data", http.StatusOK, `{"status":true,"message":"ok"}`},
		{"garbage", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "sk_test", time.Second, nil).VerifyTransaction(context.Background(), "ref")
			assert.Error(t, err)
		})
	}
}

func TestVerifyTransaction_NotConfigured(t *testing.T) {
	_, err := NewClient("", "", 0, nil).VerifyTransaction(context.Background(), "ref")
	assert.Error(t, err)
}

func TestVerifyTransaction_BreakerOpens(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", time.Second, zap.NewNop())
	for i := 0; i < 5; i++ {
		_, err := client.VerifyTransaction(context.Background(), "ref")
		require.Error(t, err)
	}

	_, err := client.VerifyTransaction(context.Background(), "ref")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), atomic.LoadInt32(&hits))
}
