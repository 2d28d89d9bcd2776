package setrole

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/portfolio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/portfolio/internal/lib/apperr"
	"github.com/magabrotheeeer/portfolio/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) SetRole(ctx context.Context, actor models.Identity, id int64, role string) error {
	return m.Called(ctx, actor, id, role).Error(0)
}

func TestSetRoleHandler_ServeHTTP(t *testing.T) {
	admin := models.Identity{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin}

	tests := []struct {
		name           string
		id             string
		body           string
		setupMock      func(m *ServiceMock)
		wantStatusCode int
		wantBody       string
	}{
		{
			name: "promote",
			id:   "2",
			body: `{"role":"admin"}`,
			setupMock: func(m *ServiceMock) {
				m.On("SetRole", mock.Anything, admin, int64(2), "admin").Return(nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"role updated"}`,
		},
		{
			name:           "bad id",
			id:             "abc",
			body:           `{"role":"admin"}`,
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"error":"invalid id"}`,
		},
		{
			name:           "unknown role",
			id:             "2",
			body:           `{"role":"root"}`,
			wantStatusCode: http.StatusBadRequest,
			wantBody: `{"error":"validation failed","errors":[
				{"field":"role","message":"field role must be one of: admin user"}]}`,
		},
		{
			name: "self demotion",
			id:   "1",
			body: `{"role":"user"}`,
			setupMock: func(m *ServiceMock) {
				m.On("SetRole", mock.Anything, admin, int64(1), "user").
					Return(apperr.Msg("auth.SetRole", apperr.KindValidation, "cannot change your own role")).Once()
			},
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"error":"cannot change your own role"}`,
		},
		{
			name: "not found",
			id:   "99",
			body: `{"role":"user"}`,
			setupMock: func(m *ServiceMock) {
				m.On("SetRole", mock.Anything, admin, int64(99), "user").
					Return(apperr.Msg("auth.SetRole", apperr.KindNotFound, "user not found")).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantBody:       `{"error":"user not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.setupMock != nil {
				tt.setupMock(serviceMock)
			}

			r := chi.NewRouter()
			r.Patch("/api/auth/users/{id}/role", New(sl.Discard(), serviceMock).ServeHTTP)

			req := httptest.NewRequest(http.MethodPatch, "/api/auth/users/"+tt.id+"/role", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithIdentity(req.Context(), admin))
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			serviceMock.AssertExpectations(t)
		})
	}
}
