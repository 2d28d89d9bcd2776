package remove

import (
	"context"
	"errors"
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

func (m *ServiceMock) DeleteUser(ctx context.Context, actor models.Identity, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func TestRemoveHandler_ServeHTTP(t *testing.T) {
	admin := models.Identity{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin}

	tests := []struct {
		name           string
		id             string
		mockErr        error
		callsService   bool
		wantStatusCode int
		wantBody       string
	}{
		{
			name:           "deleted",
			id:             "2",
			callsService:   true,
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"user deleted"}`,
		},
		{
			name:           "negative id",
			id:             "-3",
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"error":"invalid id"}`,
		},
		{
			name:           "self delete",
			id:             "2",
			callsService:   true,
			mockErr:        apperr.Msg("auth.DeleteUser", apperr.KindValidation, "cannot delete your own account"),
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"error":"cannot delete your own account"}`,
		},
		{
			name:           "not found",
			id:             "2",
			callsService:   true,
			mockErr:        apperr.Msg("auth.DeleteUser", apperr.KindNotFound, "user not found"),
			wantStatusCode: http.StatusNotFound,
			wantBody:       `{"error":"user not found"}`,
		},
		{
			name:           "store failure",
			id:             "2",
			callsService:   true,
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.callsService {
				serviceMock.On("DeleteUser", mock.Anything, admin, int64(2)).Return(tt.mockErr).Once()
			}

			r := chi.NewRouter()
			r.Delete("/api/auth/users/{id}", New(sl.Discard(), serviceMock).ServeHTTP)

			req := httptest.NewRequest(http.MethodDelete, "/api/auth/users/"+tt.id, nil)
			req = req.WithContext(middlewarectx.WithIdentity(req.Context(), admin))
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			serviceMock.AssertExpectations(t)
		})
	}
}
