package proposals

import (
	"context"

	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/validation"
)

// Defaults são as taxas usadas quando nem o chamador nem os settings informam.
var Defaults = models.Rates{
	PixRate:          "0.00",
	DebitRate:        "0.51",
	CreditRate:       "1.01",
	Credit12xRate:    "1.29",
	AnticipationRate: "2.49",
}

// DefaultRates: setting gravado vence a constante, chave a chave.
func (s *Service) DefaultRates(_ context.Context) models.Rates {
	out := Defaults
	for _, k := range models.RateKeys {
		if v, ok := s.store.GetSetting(k); ok && v != "" {
			out.Set(k, v)
		}
	}
	return out
}

// resolveRates: valor explícito > setting > constante.
func (s *Service) resolveRates(ctx context.Context, explicit models.Rates) models.Rates {
	out := s.DefaultRates(ctx)
	for _, k := range models.RateKeys {
		if v := explicit.Get(k); v != "" {
			out.Set(k, v)
		}
	}
	return out
}

func validateRates(r models.Rates, v *validation.Collector) {
	for _, k := range models.RateKeys {
		if val := r.Get(k); val != "" && !validation.ValidRate(val) {
			v.Add(k, "must be a decimal with two fraction digits")
		}
	}
}

// SetDefaultRates grava só as chaves informadas.
func (s *Service) SetDefaultRates(ctx context.Context, partial models.Rates) (models.Rates, error) {
	var v validation.Collector
	validateRates(partial, &v)
	if err := v.Err(); err != nil {
		return models.Rates{}, err
	}
	for _, k := range models.RateKeys {
		if val := partial.Get(k); val != "" {
			if err := s.store.SetSetting(ctx, k, val); err != nil {
				return models.Rates{}, err
			}
		}
	}
	s.logger.Info("default_rates_updated")
	return s.DefaultRates(ctx), nil
}
