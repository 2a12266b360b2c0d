package store

import (
	"context"

	"github.com/Werneck0live/cadastro-leads/internal/models"
)

func (s *Store) CreateLead(ctx context.Context, in models.Lead) (models.Lead, error) {
	if in.Status == "" {
		in.Status = models.LeadPending
	}
	return s.leads.insert(ctx, nil, func(id int64) models.Lead {
		l := in
		l.ID = id
		l.CreatedAt = s.stamp()
		return l
	})
}

func (s *Store) GetLead(_ context.Context, id int64) (models.Lead, error) {
	return s.leads.get(id)
}

// UpdateLead faz merge raso e grava a nova versão (o log guarda as anteriores).
func (s *Store) UpdateLead(ctx context.Context, id int64, p models.LeadPatch) (models.Lead, error) {
	return s.MutateLead(ctx, id, func(l *models.Lead) error {
		if p.ConsultantID != nil {
			cid := *p.ConsultantID
			l.ConsultantID = &cid
		}
		if p.Status != nil {
			l.Status = *p.Status
		}
		if p.Phone != nil {
			l.Phone = *p.Phone
		}
		if p.Notes != nil {
			l.Notes = *p.Notes
		}
		return nil
	})
}

// MutateLead roda fn com o lock de leads seguro: é o check-and-set usado
// pelas transições de status. Erro de fn não grava nada.
func (s *Store) MutateLead(ctx context.Context, id int64, fn func(*models.Lead) error) (models.Lead, error) {
	return s.leads.mutate(ctx, id, nil, fn)
}

func (s *Store) ListLeads(_ context.Context) []models.Lead {
	return s.leads.list(nil)
}

func (s *Store) ListPendingLeads(_ context.Context) []models.Lead {
	return s.leads.list(func(l models.Lead) bool { return l.Status == models.LeadPending })
}

func (s *Store) ListLeadsByConsultant(_ context.Context, consultantID int64) []models.Lead {
	return s.leads.list(func(l models.Lead) bool {
		return l.ConsultantID != nil && *l.ConsultantID == consultantID
	})
}
