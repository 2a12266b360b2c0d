package store

import (
	"context"

	"github.com/Werneck0live/cadastro-leads/internal/models"
)

// CreateCompany recusa CNPJ repetido com ErrDuplicate; não existe update de empresa.
func (s *Store) CreateCompany(ctx context.Context, in models.Company) (models.Company, error) {
	unique := func(existing models.Company) error {
		if existing.CNPJ == in.CNPJ {
			return duplicate("cnpj", in.CNPJ)
		}
		return nil
	}
	return s.companies.insert(ctx, unique, func(id int64) models.Company {
		c := in
		c.ID = id
		c.CreatedAt = s.stamp()
		return c
	})
}

func (s *Store) GetCompany(_ context.Context, id int64) (models.Company, error) {
	return s.companies.get(id)
}

func (s *Store) GetCompanyByCNPJ(_ context.Context, cnpj string) (models.Company, error) {
	return s.companies.find(func(c models.Company) bool { return c.CNPJ == cnpj })
}

func (s *Store) ListCompanies(_ context.Context) []models.Company {
	return s.companies.list(nil)
}
