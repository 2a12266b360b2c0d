// Package auth cuida de hash de senha e login de usuários do painel.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/store"
	"github.com/Werneck0live/cadastro-leads/internal/validation"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// MaxPasswordBytes é o limite do bcrypt; acima disso GenerateFromPassword falha.
const MaxPasswordBytes = 72

func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// isHash reconhece os prefixos de bcrypt ($2a$, $2b$, $2y$).
func isHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

// CheckPassword compara com bcrypt; valores antigos gravados em texto puro
// são comparados em tempo constante. legacy=true indica que vale regravar com hash.
func CheckPassword(stored, plain string) (ok, legacy bool) {
	if isHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil, false
	}
	if stored == "" {
		return false, false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1, true
}

// Users é o recorte do store usado aqui.
type Users interface {
	CreateUser(ctx context.Context, in models.User) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	UpdateUser(ctx context.Context, id int64, p models.UserPatch) (models.User, error)
}

type Service struct {
	users  Users
	logger *slog.Logger
}

func NewService(users Users, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, logger: logger.With("cmp", "auth")}
}

// Login não distingue usuário inexistente de senha errada.
func (s *Service) Login(ctx context.Context, username, password string) (models.User, error) {
	u, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	ok, legacy := CheckPassword(u.Password, password)
	if !ok {
		s.logger.Info("login_failed", "username", u.Username)
		return models.User{}, ErrInvalidCredentials
	}
	if legacy {
		if h, err := HashPassword(password); err == nil {
			if updated, err := s.users.UpdateUser(ctx, u.ID, models.UserPatch{Password: &h}); err == nil {
				u = updated
				s.logger.Info("password_rehashed", "id", u.ID)
			} else {
				s.logger.Warn("password_rehash_failed", "id", u.ID, "err", err)
			}
		}
	}
	return u, nil
}

type CreateUserInput struct {
	Username string
	Password string
	Name     string
	Email    string
	Role     models.Role
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (models.User, error) {
	var v validation.Collector
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		v.Add("username", "is required")
	}
	if in.Password == "" {
		v.Add("password", "is required")
	} else if len(in.Password) > MaxPasswordBytes {
		v.Add("password", fmt.Sprintf("must have at most %d bytes", MaxPasswordBytes))
	}
	if strings.TrimSpace(in.Name) == "" {
		v.Add("name", "is required")
	}
	if in.Role == "" {
		in.Role = models.RoleConsultant
	}
	if !in.Role.Valid() {
		v.Add("role", "must be one of admin consultant")
	}
	if err := v.Err(); err != nil {
		return models.User{}, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.users.CreateUser(ctx, models.User{
		Username: in.Username,
		Password: hash,
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Role:     in.Role,
	})
	if err != nil {
		return models.User{}, err
	}
	s.logger.Info("user_created", "id", u.ID, "username", u.Username, "role", u.Role)
	return u, nil
}

// DefaultAdmin monta o admin de bootstrap com a senha já em hash.
func DefaultAdmin(password string) (models.User, error) {
	h, err := HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	return models.User{Username: "admin", Password: h, Name: "Administrador", Role: models.RoleAdmin}, nil
}
