package paystack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyTransactionSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref-1", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		w.Write([]byte(`{"status": true, "data": {"status": "success"}}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, SecretKey: "sk_test"})

	err := client.VerifyTransaction(context.Background(), "ref-1")
	require.NoError(t, err)
}

func TestVerifyTransactionFailedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": true, "data": {"status": "abandoned"}}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, SecretKey: "sk_test"})

	err := client.VerifyTransaction(context.Background(), "ref-1")
	assert.ErrorIs(t, err, ErrTransactionNotSuccessful)
}

func TestVerifyTransactionAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status": false, "message": "Transaction reference not found"}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, SecretKey: "sk_test"})

	err := client.VerifyTransaction(context.Background(), "nope")
	assert.ErrorContains(t, err, "status 404")
}
