package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erp-access-api/internal/models"
)

func TestCollectorClientStore(t *testing.T) {
	var received models.AuditLog
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewCollectorClient(server.URL, time.Second)
	log := &models.AuditLog{
		ID:         "1700000000000-aabbccdd",
		EntityType: "Customer",
		EntityID:   "c-1",
		Action:     models.AuditActionCreate,
		Timestamp:  time.Now().UTC(),
	}

	require.NoError(t, client.Store(context.Background(), log))
	assert.Equal(t, log.ID, received.ID)
	assert.Equal(t, "Customer", received.EntityType)
}

func TestCollectorClientRejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewCollectorClient(server.URL, time.Second)
	err := client.Store(context.Background(), &models.AuditLog{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestCollectorClientUnreachable(t *testing.T) {
	client := NewCollectorClient("http://127.0.0.1:1", 200*time.Millisecond)
	err := client.Store(context.Background(), &models.AuditLog{ID: "x"})
	assert.Error(t, err)
}
