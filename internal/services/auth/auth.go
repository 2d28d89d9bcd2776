// Package auth содержит бизнес-логику аутентификации и управления пользователями:
// вход, регистрацию, проверку токена, выход и администрирование ролей.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/portfolio/internal/lib/apperr"
	"github.com/magabrotheeeer/portfolio/internal/lib/jwt"
	"github.com/magabrotheeeer/portfolio/internal/lib/password"
	"github.com/magabrotheeeer/portfolio/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio/internal/models"
	"github.com/magabrotheeeer/portfolio/internal/storage"
)

// LoginResult — результат успешного входа.
type LoginResult struct {
	Token string
	User  models.Identity
}

// Service отвечает за вход, регистрацию, валидацию JWT и администрирование пользователей.
type Service struct {
	log      *slog.Logger
	users    UserRepository
	creds    CredentialSource
	hasher   PasswordHasher
	jwtMaker jwt.Maker
	denylist Denylist
	events   EventPublisher
	now      func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithDenylist подключает список отозванных токенов.
func WithDenylist(d Denylist) Option {
	return func(s *Service) {
		s.denylist = d
	}
}

// WithEvents подключает публикацию событий.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService создает новый экземпляр Service.
func NewService(
	log *slog.Logger,
	users UserRepository,
	creds CredentialSource,
	hasher PasswordHasher,
	jwtMaker jwt.Maker,
	opts ...Option,
) *Service {
	s := &Service{
		log:      log,
		users:    users,
		creds:    creds,
		hasher:   hasher,
		jwtMaker: jwtMaker,
		denylist: NoopDenylist{},
		events:   NoopPublisher{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login проверяет учётные данные и выпускает токен.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*LoginResult, error) {
	const op = "auth.Login"

	user, err := s.creds.Verify(ctx, email, rawPassword)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperr.E(op, apperr.KindServerFault, err)
	}

	s.publish(ctx, EventUserLoggedIn, user.ID, user.Email, user.Role)
	return &LoginResult{Token: token, User: user.Identity()}, nil
}

// Register создает нового пользователя с ролью user и возвращает его ID.
func (s *Service) Register(ctx context.Context, email, rawPassword string) (int64, error) {
	const op = "auth.Register"

	email = models.NormalizeEmail(email)
	hashed, err := s.hasher.GetHash(rawPassword)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return 0, &apperr.Error{Op: op, Kind: apperr.KindValidation, Msg: "password is too long", Err: err}
		}
		return 0, apperr.E(op, apperr.KindServerFault, err)
	}

	id, err := s.users.CreateUser(ctx, email, hashed, models.RoleUser)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return 0, &apperr.Error{Op: op, Kind: apperr.KindConflict, Msg: "user already exists", Err: err}
		}
		return 0, apperr.E(op, apperr.KindServerFault, err)
	}

	s.publish(ctx, EventUserRegistered, id, email, models.RoleUser)
	return id, nil
}

// Authenticate проверяет токен и возвращает данные пользователя из него.
//
// Пользователь дополнительно ищется в хранилище, чтобы токен удалённой
// учётной записи не принимался. Роль берётся из токена.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	const op = "auth.Authenticate"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, apperr.E(op, apperr.KindInvalidToken, err)
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperr.E(op, apperr.KindServerFault, err)
	}
	if revoked {
		return nil, apperr.Msg(op, apperr.KindInvalidToken, "token revoked")
	}

	if _, err = s.creds.Lookup(ctx, claims.UserID); err != nil {
		return nil, err
	}

	return &models.Identity{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

// Logout отзывает токен до окончания его срока действия.
func (s *Service) Logout(ctx context.Context, token string) error {
	const op = "auth.Logout"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return apperr.E(op, apperr.KindInvalidToken, err)
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err = s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperr.E(op, apperr.KindServerFault, err)
	}
	return nil
}

// ListUsers возвращает всех пользователей.
func (s *Service) ListUsers(ctx context.Context) ([]models.Identity, error) {
	const op = "auth.ListUsers"

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, apperr.E(op, apperr.KindServerFault, err)
	}
	result := make([]models.Identity, 0, len(users))
	for _, u := range users {
		result = append(result, u.Identity())
	}
	return result, nil
}

// SetRole меняет роль пользователя. Администратор не может понизить сам себя.
func (s *Service) SetRole(ctx context.Context, actor models.Identity, id int64, role string) error {
	const op = "auth.SetRole"

	if !models.ValidRole(role) {
		return apperr.Msg(op, apperr.KindValidation, "role must be admin or user")
	}
	if actor.ID == id && role != models.RoleAdmin {
		return apperr.Msg(op, apperr.KindValidation, "cannot change your own role")
	}

	if err := s.users.UpdateUserRole(ctx, id, role); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return &apperr.Error{Op: op, Kind: apperr.KindNotFound, Msg: "user not found", Err: err}
		}
		return apperr.E(op, apperr.KindServerFault, err)
	}

	s.publish(ctx, EventUserRoleChanged, id, "", role)
	return nil
}

// DeleteUser удаляет пользователя. Администратор не может удалить сам себя.
func (s *Service) DeleteUser(ctx context.Context, actor models.Identity, id int64) error {
	const op = "auth.DeleteUser"

	if actor.ID == id {
		return apperr.Msg(op, apperr.KindValidation, "cannot delete your own account")
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return &apperr.Error{Op: op, Kind: apperr.KindNotFound, Msg: "user not found", Err: err}
		}
		return apperr.E(op, apperr.KindServerFault, err)
	}

	s.publish(ctx, EventUserDeleted, id, "", "")
	return nil
}

// publish отправляет событие; ошибка публикации не влияет на результат операции.
func (s *Service) publish(ctx context.Context, eventType string, userID int64, email, role string) {
	event := Event{
		Type:   eventType,
		UserID: userID,
		Email:  email,
		Role:   role,
		At:     s.now().UTC(),
	}
	if err := s.events.Publish(ctx, eventType, event); err != nil {
		s.log.Warn("failed to publish auth event",
			slog.String("event", eventType),
			sl.Err(err),
		)
	}
}
