package store

import (
	"context"

	"github.com/Werneck0live/cadastro-leads/internal/models"
)

// CreateUser não faz hash: quem chama (auth) entrega Password pronto para gravar.
func (s *Store) CreateUser(ctx context.Context, in models.User) (models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleConsultant
	}
	unique := func(existing models.User) error {
		if existing.Username == in.Username {
			return duplicate("username", in.Username)
		}
		return nil
	}
	return s.users.insert(ctx, unique, func(id int64) models.User {
		u := in
		u.ID = id
		u.CreatedAt = s.stamp()
		return u
	})
}

func (s *Store) GetUser(_ context.Context, id int64) (models.User, error) {
	return s.users.get(id)
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	return s.users.find(func(u models.User) bool { return u.Username == username })
}

// LookupUser resolve uma referência fraca (consultantId): ausência não é erro.
func (s *Store) LookupUser(id *int64) (models.User, bool) {
	if id == nil {
		return models.User{}, false
	}
	u, err := s.users.get(*id)
	return u, err == nil
}

// UpdateUser faz merge raso dos campos informados e grava a nova versão no log.
func (s *Store) UpdateUser(ctx context.Context, id int64, p models.UserPatch) (models.User, error) {
	var unique func(models.User) error
	if p.Username != nil {
		name := *p.Username
		unique = func(existing models.User) error {
			if existing.Username == name {
				return duplicate("username", name)
			}
			return nil
		}
	}
	return s.users.mutate(ctx, id, unique, func(u *models.User) error {
		if p.Username != nil {
			u.Username = *p.Username
		}
		if p.Password != nil {
			u.Password = *p.Password
		}
		if p.Name != nil {
			u.Name = *p.Name
		}
		if p.Email != nil {
			u.Email = *p.Email
		}
		if p.Role != nil {
			u.Role = *p.Role
		}
		return nil
	})
}

// DeleteUser não cascateia: leads e propostas mantêm o consultantId pendurado.
// O log de usuários é compactado para o removido não voltar no restart.
func (s *Store) DeleteUser(ctx context.Context, id int64) (models.User, error) {
	return s.users.remove(ctx, id)
}

func (s *Store) ListUsers(_ context.Context) []models.User {
	return s.users.list(nil)
}

func (s *Store) ListConsultants(_ context.Context) []models.User {
	return s.users.list(func(u models.User) bool { return u.Role == models.RoleConsultant })
}
