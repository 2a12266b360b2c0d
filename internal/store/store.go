// Package store é o índice autoritativo em memória dos quatro tipos de registro
// e das configurações, na frente do log durável (internal/recordlog).
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/recordlog"
)

var ErrReservedKey = errors.New("reserved setting key")

type Options struct {
	Logger *slog.Logger
	// Now permite fixar o relógio nos testes.
	Now func() time.Time
	// DefaultAdmin é criado quando nenhum usuário sobra depois do replay.
	// Password já deve vir com hash. Username vazio desliga o seed.
	DefaultAdmin models.User
}

type Store struct {
	log    recordlog.Log
	logger *slog.Logger
	now    func() time.Time

	users     *table[models.User]
	companies *table[models.Company]
	leads     *table[models.Lead]
	proposals *table[models.Proposal]
	settings  *settingsTable
}

// Open reconstrói o estado relendo cada stream na ordem de escrita.
// Qualquer falha de leitura (fora "arquivo ausente") é fatal para o chamador.
func Open(ctx context.Context, log recordlog.Log, opts Options) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Store{
		log:       log,
		logger:    opts.Logger.With("cmp", "store"),
		now:       opts.Now,
		users:     newTable(recordlog.Users, log, func(u models.User) int64 { return u.ID }),
		companies: newTable(recordlog.Companies, log, func(c models.Company) int64 { return c.ID }),
		leads:     newTable(recordlog.Leads, log, func(l models.Lead) int64 { return l.ID }),
		proposals: newTable(recordlog.Proposals, log, func(p models.Proposal) int64 { return p.ID }),
		settings:  &settingsTable{log: log, values: make(map[string]string)},
	}

	if err := s.settings.replay(ctx, s.logger); err != nil {
		return nil, err
	}
	replays := []struct {
		kind recordlog.Kind
		fn   func(context.Context, *slog.Logger) error
		bump func(int64)
	}{
		{recordlog.Users, s.users.replay, s.users.bumpNextID},
		{recordlog.Companies, s.companies.replay, s.companies.bumpNextID},
		{recordlog.Leads, s.leads.replay, s.leads.bumpNextID},
		{recordlog.Proposals, s.proposals.replay, s.proposals.bumpNextID},
	}
	for _, r := range replays {
		if err := r.fn(ctx, s.logger); err != nil {
			return nil, err
		}
		r.bump(s.settings.savedSeq(r.kind))
	}
	for _, t := range []interface {
		setSaveSeq(func(context.Context, recordlog.Kind, int64) error)
	}{s.users, s.companies, s.leads, s.proposals} {
		t.setSaveSeq(s.settings.saveSeq)
	}

	s.logger.Info("store_loaded",
		"users", s.users.count(),
		"companies", s.companies.count(),
		"leads", s.leads.count(),
		"proposals", s.proposals.count(),
	)

	if s.users.count() == 0 && opts.DefaultAdmin.Username != "" {
		admin := opts.DefaultAdmin
		admin.Role = models.RoleAdmin
		u, err := s.CreateUser(ctx, admin)
		if err != nil {
			return nil, fmt.Errorf("seed default admin: %w", err)
		}
		s.logger.Info("default_admin_created", "id", u.ID, "username", u.Username)
	}
	return s, nil
}

// Compact reescreve cada stream só com a versão atual dos registros.
func (s *Store) Compact(ctx context.Context) (map[recordlog.Kind]int, error) {
	out := make(map[recordlog.Kind]int, len(recordlog.Kinds))
	steps := []struct {
		kind recordlog.Kind
		fn   func(context.Context) (int, error)
	}{
		{recordlog.Users, s.users.compact},
		{recordlog.Companies, s.companies.compact},
		{recordlog.Leads, s.leads.compact},
		{recordlog.Proposals, s.proposals.compact},
		// por último: os compacts acima podem ter gravado chaves _seq
		{recordlog.Settings, s.settings.compact},
	}
	for _, st := range steps {
		n, err := st.fn(ctx)
		if err != nil {
			return out, err
		}
		out[st.kind] = n
	}
	return out, nil
}

// Close fecha o log. Usar o Store depois disso é erro do chamador.
func (s *Store) Close() error {
	return s.log.Close()
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}
