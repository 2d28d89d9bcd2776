package portfolio

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/portfolio/internal/config"
	"github.com/magabrotheeeer/portfolio/internal/lib/jwt"
	"github.com/magabrotheeeer/portfolio/internal/lib/metrics"
	"github.com/magabrotheeeer/portfolio/internal/lib/password"
	"github.com/magabrotheeeer/portfolio/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio/internal/models"
	authservice "github.com/magabrotheeeer/portfolio/internal/services/auth"
	"github.com/magabrotheeeer/portfolio/internal/storage"
)

// memoryUsers — UserRepository в памяти.
type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{nextID: 1, users: make(map[int64]*models.User)}
}

func (m *memoryUsers) CreateUser(_ context.Context, email, passwordHash, role string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return 0, storage.ErrUserExists
		}
	}
	id := m.nextID
	m.nextID++
	m.users[id] = &models.User{ID: id, Email: email, PasswordHash: passwordHash, Role: role, CreatedAt: time.Now()}
	return id, nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *memoryUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (m *memoryUsers) ListUsers(_ context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		c := *u
		res = append(res, &c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memoryUsers) UpdateUserRole(_ context.Context, id int64, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (m *memoryUsers) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return storage.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type testServer struct {
	router http.Handler
	users  *memoryUsers
	hasher *password.Hasher
	maker  *jwt.MakerImpl
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	users := newMemoryUsers()
	hasher, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	maker, err := jwt.NewJWTMaker("routes_test_secret_0123456789abcdef", time.Hour)
	require.NoError(t, err)

	log := sl.Discard()
	svc := authservice.NewService(log, users, authservice.NewDatabaseBacked(users, hasher), hasher, maker)

	r := chi.NewRouter()
	RegisterRoutes(r, log, svc, okPinger{}, metrics.New(prometheus.NewRegistry()))
	return &testServer{router: r, users: users, hasher: hasher, maker: maker}
}

func (s *testServer) addUser(t *testing.T, email, rawPassword, role string) int64 {
	t.Helper()
	hash, err := s.hasher.GetHash(rawPassword)
	require.NoError(t, err)
	id, err := s.users.CreateUser(context.Background(), email, hash, role)
	require.NoError(t, err)
	return id
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email, rawPassword string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", "",
		`{"email":"`+email+`","password":"`+rawPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func TestRoutes_LoginAndMe(t *testing.T) {
	s := newTestServer(t)
	id := s.addUser(t, "admin@example.com", "admin123", models.RoleAdmin)

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"admin@example.com","password":"admin123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string          `json:"token"`
		User  models.Identity `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	want := models.Identity{ID: id, Email: "admin@example.com", Role: models.RoleAdmin}
	assert.Equal(t, want, resp.User)

	claims, err := s.maker.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	rec = s.do(t, http.MethodGet, "/api/auth/me", resp.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":{"id":1,"email":"admin@example.com","role":"admin"}}`, rec.Body.String())
}

func TestRoutes_LoginFailuresAreIdentical(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "user@example.com", "password", models.RoleUser)

	wrongPassword := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"user@example.com","password":"wrong1"}`)
	unknownEmail := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"nobody@example.com","password":"wrong1"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.Bytes(), unknownEmail.Body.Bytes())
	assert.JSONEq(t, `{"error":"invalid credentials"}`, wrongPassword.Body.String())
}

func TestRoutes_AdminGate(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@example.com", "admin123", models.RoleAdmin)
	userID := s.addUser(t, "user@example.com", "password", models.RoleUser)

	adminToken := s.login(t, "admin@example.com", "admin123")
	userToken := s.login(t, "user@example.com", "password")

	rec := s.do(t, http.MethodGet, "/api/auth/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/auth/users", userToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"admin access required"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/auth/users", adminToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/auth/users/2/role", adminToken, `{"role":"admin"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	u, err := s.users.GetUserByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	rec = s.do(t, http.MethodDelete, "/api/auth/users/1", adminToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/auth/users/2", adminToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Токен удалённого пользователя больше не принимается.
	rec = s.do(t, http.MethodGet, "/api/auth/me", userToken, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid or expired token"}`, rec.Body.String())
}

func TestRoutes_TamperedToken(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "user@example.com", "password", models.RoleUser)
	token := s.login(t, "user@example.com", "password")

	last := token[len(token)-2]
	replacement := byte('A')
	if last == 'A' {
		replacement = 'B'
	}
	tampered := token[:len(token)-2] + string(replacement) + token[len(token)-1:]

	rec := s.do(t, http.MethodGet, "/api/auth/me", tampered, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_RegisterThenLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", `{"email":"New@Example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"user registered","userId":1}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/auth/register", "", `{"email":"new@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	token := s.login(t, "new@example.com", "secret1")
	rec = s.do(t, http.MethodGet, "/api/auth/me", token, "")
	assert.JSONEq(t, `{"user":{"id":1,"email":"new@example.com","role":"user"}}`, rec.Body.String())
}

func TestRoutes_ConcurrentLogins(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@example.com", "admin123", models.RoleAdmin)

	var wg sync.WaitGroup
	recs := make([]*httptest.ResponseRecorder, 2)
	for i := range recs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recs[i] = s.do(t, http.MethodPost, "/api/auth/login", "",
				`{"email":"admin@example.com","password":"admin123"}`)
		}()
	}
	wg.Wait()

	tokens := make([]string, len(recs))
	for i, rec := range recs {
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		tokens[i] = resp.Token
	}
	assert.NotEqual(t, tokens[0], tokens[1])
	for _, tok := range tokens {
		rec := s.do(t, http.MethodGet, "/api/auth/me", tok, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRoutes_HealthAndNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = s.do(t, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portfolio_http_request_duration_seconds")
}

func TestNewCredentialSource(t *testing.T) {
	users := newMemoryUsers()
	hasher, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{Env: config.EnvLocal}
	_, ok := NewCredentialSource(cfg, users, hasher, sl.Discard()).(*authservice.DatabaseBacked)
	assert.True(t, ok)

	cfg.Auth.DevFallback = true
	cfg.Admin = config.Admin{Email: "admin@example.com", Password: "admin123"}
	_, ok = NewCredentialSource(cfg, users, hasher, sl.Discard()).(*authservice.FixedFallback)
	assert.True(t, ok)
}
