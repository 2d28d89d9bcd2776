package me

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/portfolio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/portfolio/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio/internal/models"
)

func TestMeHandler_ServeHTTP(t *testing.T) {
	h := New(sl.Discard())

	t.Run("identity in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req = req.WithContext(middlewarectx.WithIdentity(req.Context(),
			models.Identity{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin}))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"user":{"id":1,"email":"admin@example.com","role":"admin"}}`, rec.Body.String())
	})

	t.Run("no identity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
