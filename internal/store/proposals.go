package store

import (
	"context"

	"github.com/Werneck0live/cadastro-leads/internal/models"
)

// CreateProposal grava o registro como veio; defaults de taxa são resolvidos
// antes, no pacote proposals.
func (s *Store) CreateProposal(ctx context.Context, in models.Proposal) (models.Proposal, error) {
	if in.Status == "" {
		in.Status = models.ProposalDraft
	}
	return s.proposals.insert(ctx, nil, func(id int64) models.Proposal {
		p := in
		p.ID = id
		p.CreatedAt = s.stamp()
		return p
	})
}

func (s *Store) GetProposal(_ context.Context, id int64) (models.Proposal, error) {
	return s.proposals.get(id)
}

func (s *Store) UpdateProposal(ctx context.Context, id int64, p models.ProposalPatch) (models.Proposal, error) {
	return s.proposals.mutate(ctx, id, nil, func(pr *models.Proposal) error {
		if p.Status != nil {
			pr.Status = *p.Status
		}
		if p.Phone != nil {
			pr.Phone = *p.Phone
		}
		return nil
	})
}

func (s *Store) ListProposals(_ context.Context) []models.Proposal {
	return s.proposals.list(nil)
}

func (s *Store) ListProposalsByConsultant(_ context.Context, consultantID int64) []models.Proposal {
	return s.proposals.list(func(p models.Proposal) bool {
		return p.ConsultantID != nil && *p.ConsultantID == consultantID
	})
}

// DeleteProposal remove e compacta o log de propostas (rewrite explícito).
func (s *Store) DeleteProposal(ctx context.Context, id int64) (models.Proposal, error) {
	return s.proposals.remove(ctx, id)
}

// DeleteAllProposals limpa memória e log como uma unidade, sob o lock de propostas.
func (s *Store) DeleteAllProposals(ctx context.Context) error {
	return s.proposals.clear(ctx)
}
