package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frmai/coin-ledger/pkg/handlers"
	"github.com/frmai/coin-ledger/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
)

func TestNewRouter(t *testing.T) {
	t.Run("Websocket Route Is Gated", func(t *testing.T) {
		router := handlers.NewRouter(handlers.Config{Store: new(mocks.Storage)})

		req := httptest.NewRequest(http.MethodGet, "/ws?user_id=user-a", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Websocket Route Is Mounted When Enabled", func(t *testing.T) {
		router := handlers.NewRouter(handlers.Config{Store: new(mocks.Storage), EnableWebsockets: true})

		// Not a websocket handshake; reaching the upgrader's rejection
		// proves the route is mounted.
		req := httptest.NewRequest(http.MethodGet, "/ws?user_id=user-a", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Connect Without A User Is Rejected", func(t *testing.T) {
		router := handlers.NewRouter(handlers.Config{Store: new(mocks.Storage), EnableWebsockets: true})

		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
