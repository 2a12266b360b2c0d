// Package admin reúne as tarefas avulsas do binário da API (-task).
package admin

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Werneck0live/cadastro-leads/internal/auth"
	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/recordlog"
	"github.com/Werneck0live/cadastro-leads/internal/store"
)

//go:embed seeds/consultants.json
var consultantsJSON []byte

type seedItem struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type UserCreator interface {
	CreateUser(ctx context.Context, in auth.CreateUserInput) (models.User, error)
}

// SeedConsultants é idempotente: cria se não existir; se já existir, ignora.
func SeedConsultants(ctx context.Context, users UserCreator, password string, log *slog.Logger) (int, error) {
	var items []seedItem
	if err := json.Unmarshal(consultantsJSON, &items); err != nil {
		return 0, err
	}

	created := 0
	for _, s := range items {
		// timeout curto por item pra não travar
		ictx, cancel := context.WithTimeout(ctx, 3*time.Second)
		_, err := users.CreateUser(ictx, auth.CreateUserInput{
			Username: s.Username,
			Password: password,
			Name:     s.Name,
			Email:    s.Email,
			Role:     models.RoleConsultant,
		})
		cancel()

		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				log.Info("seed_consultant_exists", "username", s.Username)
				continue
			}
			return created, err
		}
		created++
		log.Info("seed_consultant_created", "username", s.Username)
	}

	log.Info("seed_consultants_done", "count", len(items), "created", created)
	return created, nil
}

type Compactor interface {
	Compact(ctx context.Context) (map[recordlog.Kind]int, error)
}

// Compact reescreve cada log só com a versão atual de cada registro.
func Compact(ctx context.Context, c Compactor, log *slog.Logger) error {
	counts, err := c.Compact(ctx)
	if err != nil {
		return err
	}
	for kind, n := range counts {
		log.Info("compact_done", "kind", kind, "records", n)
	}
	return nil
}
