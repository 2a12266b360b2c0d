package leads

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Werneck0live/cadastro-leads/internal/broker"
	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/utils"
	"github.com/Werneck0live/cadastro-leads/internal/validation"
)

type Store interface {
	CreateLead(ctx context.Context, in models.Lead) (models.Lead, error)
	GetLead(ctx context.Context, id int64) (models.Lead, error)
	MutateLead(ctx context.Context, id int64, fn func(*models.Lead) error) (models.Lead, error)
	ListLeads(ctx context.Context) []models.Lead
	ListPendingLeads(ctx context.Context) []models.Lead
	ListLeadsByConsultant(ctx context.Context, consultantID int64) []models.Lead
	LookupUser(id *int64) (models.User, bool)
}

type Events interface {
	Emit(ctx context.Context, ev broker.Event)
}

type Observer interface {
	Observe(operation string, success bool, d time.Duration)
}

type Options struct {
	Events  Events
	Metrics Observer
	Logger  *slog.Logger
	Now     func() time.Time
}

type Service struct {
	store   Store
	events  Events
	metrics Observer
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(st Store, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:   st,
		events:  opts.Events,
		metrics: opts.Metrics,
		logger:  opts.Logger.With("cmp", "leads"),
		now:     opts.Now,
	}
}

func (s *Service) observe(op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.Observe(op, err == nil, time.Since(start))
	}
}

func (s *Service) emit(ctx context.Context, typ string, l models.Lead) {
	if s.events == nil {
		return
	}
	s.events.Emit(ctx, broker.Event{
		Type:         typ,
		LeadID:       l.ID,
		CNPJ:         l.CNPJ,
		CompanyName:  l.CompanyName,
		ConsultantID: l.ConsultantID,
		Status:       string(l.Status),
	})
}

// Create grava um lead já validado (fluxo de intake) e publica lead.created.
func (s *Service) Create(ctx context.Context, in models.Lead) (l models.Lead, err error) {
	defer func(start time.Time) { s.observe("create_lead", start, err) }(time.Now())

	l, err = s.store.CreateLead(ctx, in)
	if err != nil {
		return models.Lead{}, err
	}
	s.logger.Info("lead_created", "id", l.ID, "cnpj", l.CNPJ, "status", l.Status)
	s.emit(ctx, broker.LeadCreated, l)
	return l, nil
}

type RegisterInput struct {
	CNPJ         string
	CompanyName  string
	Phone        string
	Notes        string
	ConsultantID *int64
}

// Register é o cadastro manual feito pelo consultor. Com consultor informado
// o lead já nasce atribuído.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.Lead, error) {
	var v validation.Collector
	cnpj := utils.SanitizeCNPJ(in.CNPJ)
	if !utils.ValidateCNPJ(cnpj) {
		v.Add("cnpj", "invalid cnpj")
	}
	name := strings.TrimSpace(in.CompanyName)
	if name == "" {
		v.Add("companyName", "is required")
	}
	if in.ConsultantID != nil && *in.ConsultantID <= 0 {
		v.Add("consultantId", "must be a positive id")
	}
	if err := v.Err(); err != nil {
		return models.Lead{}, err
	}

	l := models.Lead{
		CNPJ:        cnpj,
		CompanyName: name,
		Phone:       strings.TrimSpace(in.Phone),
		Notes:       strings.TrimSpace(in.Notes),
		Status:      models.LeadPending,
	}
	if in.ConsultantID != nil {
		cid := *in.ConsultantID
		l.ConsultantID = &cid
		l.Status = models.LeadAssigned
	}
	return s.Create(ctx, l)
}

// Assign liga o lead ao consultor e põe em assigned. O consultor não precisa
// existir: a referência pendurada aparece nas views.
func (s *Service) Assign(ctx context.Context, leadID, consultantID int64) (l models.Lead, err error) {
	defer func(start time.Time) { s.observe("assign_lead", start, err) }(time.Now())

	if consultantID <= 0 {
		return models.Lead{}, validation.Field("consultantId", "must be a positive id")
	}
	l, err = s.store.MutateLead(ctx, leadID, func(l *models.Lead) error {
		if !canAssign(l.Status) {
			return transitionError(l.Status, models.LeadAssigned)
		}
		cid := consultantID
		l.ConsultantID = &cid
		l.Status = models.LeadAssigned
		return nil
	})
	if err != nil {
		return models.Lead{}, err
	}
	if _, ok := s.store.LookupUser(l.ConsultantID); !ok {
		s.logger.Warn("lead_assigned_unknown_consultant", "id", l.ID, "consultant_id", consultantID)
	}
	s.logger.Info("lead_assigned", "id", l.ID, "consultant_id", consultantID)
	s.emit(ctx, broker.LeadAssigned, l)
	return l, nil
}

// SetStatus aplica a tabela de transições; mesmo status devolve o lead sem gravar.
func (s *Service) SetStatus(ctx context.Context, leadID int64, status models.LeadStatus) (l models.Lead, err error) {
	defer func(start time.Time) { s.observe("set_lead_status", start, err) }(time.Now())

	if !status.Valid() {
		return models.Lead{}, validation.Field("status", "must be one of pending assigned converted completed")
	}

	var from models.LeadStatus
	var same models.Lead
	l, err = s.store.MutateLead(ctx, leadID, func(l *models.Lead) error {
		from = l.Status
		// comparação sob o lock: pedidos concorrentes ao mesmo status viram no-op
		if l.Status == status {
			same = *l
			return errUnchanged
		}
		if !CanTransition(l.Status, status) {
			return transitionError(l.Status, status)
		}
		l.Status = status
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return same, nil
	}
	if err != nil {
		return models.Lead{}, err
	}
	s.logger.Info("lead_status_changed", "id", l.ID, "from", from, "to", l.Status)
	s.emit(ctx, broker.LeadStatusChanged, l)
	return l, nil
}

// MarkConverted fecha o lead quando vira proposta. Aceita pending (fila do
// admin), assigned e completed; sem consultor, o lead fica com o da proposta.
// Lead já convertido é no-op.
func (s *Service) MarkConverted(ctx context.Context, leadID, consultantID int64) (l models.Lead, err error) {
	defer func(start time.Time) { s.observe("convert_lead", start, err) }(time.Now())

	var same models.Lead
	l, err = s.store.MutateLead(ctx, leadID, func(l *models.Lead) error {
		if l.Status == models.LeadConverted {
			same = *l
			return errUnchanged
		}
		if !canConvert(l.Status) {
			return transitionError(l.Status, models.LeadConverted)
		}
		if l.ConsultantID == nil {
			if consultantID <= 0 {
				return validation.Field("consultantId", "required to convert a lead without consultant")
			}
			cid := consultantID
			l.ConsultantID = &cid
		}
		l.Status = models.LeadConverted
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return same, nil
	}
	if err != nil {
		return models.Lead{}, err
	}
	s.logger.Info("lead_converted", "id", l.ID, "consultant_id", *l.ConsultantID)
	s.emit(ctx, broker.LeadStatusChanged, l)
	return l, nil
}

func (s *Service) Get(ctx context.Context, id int64) (View, error) {
	l, err := s.store.GetLead(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(l, s.now()), nil
}

func (s *Service) Pending(ctx context.Context) []View {
	return s.views(s.store.ListPendingLeads(ctx))
}

func (s *Service) All(ctx context.Context) []View {
	return s.views(s.store.ListLeads(ctx))
}

func (s *Service) ByConsultant(ctx context.Context, consultantID int64) []View {
	return s.views(s.store.ListLeadsByConsultant(ctx, consultantID))
}
