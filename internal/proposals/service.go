// Package proposals cria e mantém propostas de taxa, a partir do formulário
// do admin ou de um lead existente.
package proposals

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Werneck0live/cadastro-leads/internal/broker"
	"github.com/Werneck0live/cadastro-leads/internal/document"
	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/utils"
	"github.com/Werneck0live/cadastro-leads/internal/validation"
)

// porte usado quando nem o chamador nem o cache de empresas informam
const DefaultCompanySize = "Micro Empresa"

type Store interface {
	CreateProposal(ctx context.Context, in models.Proposal) (models.Proposal, error)
	GetProposal(ctx context.Context, id int64) (models.Proposal, error)
	UpdateProposal(ctx context.Context, id int64, p models.ProposalPatch) (models.Proposal, error)
	ListProposals(ctx context.Context) []models.Proposal
	ListProposalsByConsultant(ctx context.Context, consultantID int64) []models.Proposal
	DeleteProposal(ctx context.Context, id int64) (models.Proposal, error)
	DeleteAllProposals(ctx context.Context) error

	GetLead(ctx context.Context, id int64) (models.Lead, error)
	GetCompanyByCNPJ(ctx context.Context, cnpj string) (models.Company, error)
	LookupUser(id *int64) (models.User, bool)

	GetSetting(key string) (string, bool)
	SetSetting(ctx context.Context, key, value string) error
}

type LeadConverter interface {
	MarkConverted(ctx context.Context, leadID, consultantID int64) (models.Lead, error)
}

type Events interface {
	Emit(ctx context.Context, ev broker.Event)
}

type Observer interface {
	Observe(operation string, success bool, d time.Duration)
}

type Options struct {
	Leads   LeadConverter
	Events  Events
	Metrics Observer
	Logger  *slog.Logger
}

type Service struct {
	store   Store
	leads   LeadConverter
	events  Events
	metrics Observer
	logger  *slog.Logger
}

func NewService(st Store, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		store:   st,
		leads:   opts.Leads,
		events:  opts.Events,
		metrics: opts.Metrics,
		logger:  opts.Logger.With("cmp", "proposals"),
	}
}

func (s *Service) observe(op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.Observe(op, err == nil, time.Since(start))
	}
}

func (s *Service) emit(ctx context.Context, typ string, p models.Proposal) {
	if s.events == nil {
		return
	}
	s.events.Emit(ctx, broker.Event{
		Type:         typ,
		ProposalID:   p.ID,
		CNPJ:         p.CNPJ,
		CompanyName:  p.CompanyName,
		ConsultantID: p.ConsultantID,
		Status:       string(p.Status),
	})
}

// Input é o formulário do admin. Taxa vazia cai no default.
type Input struct {
	CNPJ           string
	CompanyName    string
	CompanySize    string
	ConsultantID   *int64
	ConsultantName string
	Phone          string
	Rates          models.Rates
	Status         models.ProposalStatus
}

func (s *Service) CreateFromForm(ctx context.Context, in Input) (p models.Proposal, err error) {
	defer func(start time.Time) { s.observe("create_proposal", start, err) }(time.Now())

	var v validation.Collector
	cnpj := utils.SanitizeCNPJ(in.CNPJ)
	switch {
	case cnpj == "":
		v.Add("cnpj", "is required")
	case !utils.ValidateCNPJ(cnpj):
		v.Add("cnpj", "invalid cnpj")
	}
	if strings.TrimSpace(in.CompanyName) == "" {
		v.Add("companyName", "is required")
	}
	if in.ConsultantID == nil {
		v.Add("consultantId", "is required")
	} else if *in.ConsultantID <= 0 {
		v.Add("consultantId", "must be a positive id")
	}
	if strings.TrimSpace(in.ConsultantName) == "" {
		v.Add("consultantName", "is required")
	}
	if in.Status != "" && !in.Status.Valid() {
		v.Add("status", "must be one of draft sent approved rejected")
	}
	validateRates(in.Rates, &v)
	if err := v.Err(); err != nil {
		return models.Proposal{}, err
	}

	return s.create(ctx, models.Proposal{
		CNPJ:           cnpj,
		CompanyName:    strings.TrimSpace(in.CompanyName),
		CompanySize:    strings.TrimSpace(in.CompanySize),
		ConsultantID:   in.ConsultantID,
		ConsultantName: strings.TrimSpace(in.ConsultantName),
		Phone:          strings.TrimSpace(in.Phone),
		Rates:          s.resolveRates(ctx, in.Rates),
		Status:         in.Status,
	})
}

type FromLeadInput struct {
	LeadID         int64
	ConsultantID   *int64
	ConsultantName string
	CompanySize    string
	Phone          string
	Rates          models.Rates
	// MarkConverted leva o lead para converted depois de gravar a proposta;
	// lead pendente sem consultor fica com o consultor da proposta.
	MarkConverted bool
}

func (s *Service) CreateFromLead(ctx context.Context, in FromLeadInput) (p models.Proposal, err error) {
	defer func(start time.Time) { s.observe("create_proposal_from_lead", start, err) }(time.Now())

	var v validation.Collector
	if in.ConsultantID != nil && *in.ConsultantID <= 0 {
		v.Add("consultantId", "must be a positive id")
	}
	validateRates(in.Rates, &v)
	if err := v.Err(); err != nil {
		return models.Proposal{}, err
	}

	lead, err := s.store.GetLead(ctx, in.LeadID)
	if err != nil {
		return models.Proposal{}, err
	}

	consultantID := in.ConsultantID
	if consultantID == nil {
		consultantID = lead.ConsultantID
	}
	if consultantID == nil {
		return models.Proposal{}, validation.Field("consultantId", "required when the lead has no consultant")
	}
	name := strings.TrimSpace(in.ConsultantName)
	if name == "" {
		if u, ok := s.store.LookupUser(consultantID); ok {
			name = u.Name
		}
	}
	if name == "" {
		return models.Proposal{}, validation.Field("consultantName", "required: consultant not found")
	}

	size := strings.TrimSpace(in.CompanySize)
	if size == "" {
		if c, err := s.store.GetCompanyByCNPJ(ctx, lead.CNPJ); err == nil && c.Size != "" {
			size = c.Size
		}
	}
	if size == "" {
		size = DefaultCompanySize
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		phone = lead.Phone
	}

	cid := *consultantID
	p, err = s.create(ctx, models.Proposal{
		CNPJ:           lead.CNPJ,
		CompanyName:    lead.CompanyName,
		CompanySize:    size,
		ConsultantID:   &cid,
		ConsultantName: name,
		Phone:          phone,
		Rates:          s.resolveRates(ctx, in.Rates),
	})
	if err != nil {
		return models.Proposal{}, err
	}

	if in.MarkConverted && s.leads != nil {
		// qualquer estado aberto converte; sobra só falha de storage, e a proposta já existe
		if _, err := s.leads.MarkConverted(ctx, lead.ID, cid); err != nil {
			s.logger.Warn("lead_convert_failed", "lead_id", lead.ID, "proposal_id", p.ID, "err", err)
		}
	}
	return p, nil
}

func (s *Service) create(ctx context.Context, in models.Proposal) (models.Proposal, error) {
	p, err := s.store.CreateProposal(ctx, in)
	if err != nil {
		return models.Proposal{}, err
	}
	s.logger.Info("proposal_created", "id", p.ID, "cnpj", p.CNPJ, "consultant_id", consultantAttr(p.ConsultantID))
	s.emit(ctx, broker.ProposalCreated, p)
	return p, nil
}

// consultantAttr evita logar o endereço do ponteiro; 0 quando ausente.
func consultantAttr(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

// SortNewestFirst: createdAt desc, id desc no empate.
func SortNewestFirst(ps []models.Proposal) {
	sort.SliceStable(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		}
		return ps[i].ID > ps[j].ID
	})
}

func (s *Service) List(ctx context.Context) []models.Proposal {
	ps := s.store.ListProposals(ctx)
	SortNewestFirst(ps)
	return ps
}

func (s *Service) ByConsultant(ctx context.Context, consultantID int64) []models.Proposal {
	ps := s.store.ListProposalsByConsultant(ctx, consultantID)
	SortNewestFirst(ps)
	return ps
}

func (s *Service) Get(ctx context.Context, id int64) (models.Proposal, error) {
	return s.store.GetProposal(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status models.ProposalStatus) (models.Proposal, error) {
	if !status.Valid() {
		return models.Proposal{}, validation.Field("status", "must be one of draft sent approved rejected")
	}
	p, err := s.store.UpdateProposal(ctx, id, models.ProposalPatch{Status: &status})
	if err != nil {
		return models.Proposal{}, err
	}
	s.logger.Info("proposal_status_changed", "id", p.ID, "status", p.Status)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.store.DeleteProposal(ctx, id)
	if err != nil {
		return err
	}
	s.logger.Info("proposal_deleted", "id", id)
	s.emit(ctx, broker.ProposalDeleted, p)
	return nil
}

func (s *Service) DeleteAll(ctx context.Context) error {
	if err := s.store.DeleteAllProposals(ctx); err != nil {
		return err
	}
	s.logger.Warn("proposals_deleted_all")
	return nil
}

// RenderDocument devolve o HTML imprimível da proposta.
func (s *Service) RenderDocument(ctx context.Context, id int64, now time.Time) (string, error) {
	p, err := s.store.GetProposal(ctx, id)
	if err != nil {
		return "", err
	}
	return document.Render(p, now)
}
