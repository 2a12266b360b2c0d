// Package intake resolve um CNPJ para a empresa (cache local ou cadastro
// público) e registra o lead do formulário público.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/registry"
	"github.com/Werneck0live/cadastro-leads/internal/store"
	"github.com/Werneck0live/cadastro-leads/internal/utils"
	"github.com/Werneck0live/cadastro-leads/internal/validation"
)

type Companies interface {
	GetCompanyByCNPJ(ctx context.Context, cnpj string) (models.Company, error)
	CreateCompany(ctx context.Context, in models.Company) (models.Company, error)
}

type LeadCreator interface {
	Create(ctx context.Context, in models.Lead) (models.Lead, error)
}

type RateSource interface {
	DefaultRates(ctx context.Context) models.Rates
}

type Metrics interface {
	CNPJLookup(outcome string)
}

type Service struct {
	companies Companies
	registry  registry.Lookuper
	leads     LeadCreator
	rates     RateSource
	metrics   Metrics
	logger    *slog.Logger

	// consultas simultâneas do mesmo CNPJ viram uma chamada ao cadastro
	flight singleflight.Group
}

func NewService(companies Companies, reg registry.Lookuper, leads LeadCreator, rates RateSource, metrics Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		companies: companies,
		registry:  reg,
		leads:     leads,
		rates:     rates,
		metrics:   metrics,
		logger:    logger.With("cmp", "intake"),
	}
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.CNPJLookup(outcome)
	}
}

func normalize(taxID string) (string, error) {
	cnpj := utils.SanitizeCNPJ(taxID)
	if !utils.ValidateCNPJ(cnpj) {
		return "", validation.Field("cnpj", "invalid cnpj")
	}
	return cnpj, nil
}

// Resolve devolve a empresa do cache ou consulta o cadastro e grava.
// Falha do cadastro (inexistente ou fora do ar) chega como store.ErrNotFound.
func (s *Service) Resolve(ctx context.Context, taxID string) (models.Company, error) {
	cnpj, err := normalize(taxID)
	if err != nil {
		return models.Company{}, err
	}
	return s.resolve(ctx, cnpj)
}

func (s *Service) resolve(ctx context.Context, cnpj string) (models.Company, error) {
	if c, err := s.companies.GetCompanyByCNPJ(ctx, cnpj); err == nil {
		s.count("cache_hit")
		return c, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.Company{}, err
	}

	v, err, shared := s.flight.Do(cnpj, func() (any, error) {
		// outro chamador pode ter gravado enquanto esperávamos
		if c, err := s.companies.GetCompanyByCNPJ(ctx, cnpj); err == nil {
			return c, nil
		}
		return s.fetch(context.WithoutCancel(ctx), cnpj)
	})
	if err != nil {
		return models.Company{}, err
	}
	if shared {
		s.logger.Debug("cnpj_lookup_shared", "cnpj", cnpj)
	}
	return v.(models.Company), nil
}

func (s *Service) fetch(ctx context.Context, cnpj string) (models.Company, error) {
	rec, err := s.registry.Lookup(ctx, cnpj)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		s.count("not_found")
		s.logger.Info("registry_not_found", "cnpj", cnpj)
		return models.Company{}, fmt.Errorf("cnpj %s: %w", cnpj, store.ErrNotFound)
	case err != nil:
		s.count("upstream_error")
		s.logger.Error("registry_upstream_error", "cnpj", cnpj, "err", err)
		return models.Company{}, fmt.Errorf("cnpj %s: %w (%w)", cnpj, store.ErrNotFound, err)
	}
	s.count("registry_ok")

	name := strings.TrimSpace(rec.Name)
	c, err := s.companies.CreateCompany(ctx, models.Company{
		CNPJ:     cnpj,
		Name:     name,
		Status:   rec.Status,
		Size:     rec.Size,
		Activity: rec.Activity,
		OpenDate: rec.OpenDate,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return s.companies.GetCompanyByCNPJ(ctx, cnpj)
	}
	if err != nil {
		return models.Company{}, err
	}
	s.logger.Info("company_cached", "id", c.ID, "cnpj", c.CNPJ, "name", c.Name)
	return c, nil
}

// Lookup é o fluxo do formulário público: resolve a empresa e sempre abre
// um lead pendente, mesmo quando a empresa já estava no cache.
func (s *Service) Lookup(ctx context.Context, taxID, phone string) (models.Company, error) {
	cnpj, err := normalize(taxID)
	if err != nil {
		return models.Company{}, err
	}
	c, err := s.resolve(ctx, cnpj)
	if err != nil {
		return models.Company{}, err
	}
	if _, err := s.leads.Create(ctx, models.Lead{
		CNPJ:        c.CNPJ,
		CompanyName: c.Name,
		Phone:       strings.TrimSpace(phone),
		Status:      models.LeadPending,
	}); err != nil {
		return models.Company{}, err
	}
	return c, nil
}

type Autofill struct {
	Company      models.Company `json:"company"`
	DefaultRates models.Rates   `json:"defaultRates"`
}

// Autofill preenche o formulário de proposta; não cria lead.
func (s *Service) Autofill(ctx context.Context, taxID string) (Autofill, error) {
	c, err := s.Resolve(ctx, taxID)
	if err != nil {
		return Autofill{}, err
	}
	out := Autofill{Company: c}
	if s.rates != nil {
		out.DefaultRates = s.rates.DefaultRates(ctx)
	}
	return out, nil
}
