package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Werneck0live/cadastro-leads/internal/auth"
	"github.com/Werneck0live/cadastro-leads/internal/intake"
	"github.com/Werneck0live/cadastro-leads/internal/leads"
	"github.com/Werneck0live/cadastro-leads/internal/message"
	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/proposals"
	"github.com/Werneck0live/cadastro-leads/internal/store"
	"github.com/Werneck0live/cadastro-leads/internal/utils"
	"github.com/Werneck0live/cadastro-leads/internal/validation"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (models.User, error)
	CreateUser(ctx context.Context, in auth.CreateUserInput) (models.User, error)
}

type UserRepository interface {
	ListConsultants(ctx context.Context) []models.User
	DeleteUser(ctx context.Context, id int64) (models.User, error)
}

type IntakeService interface {
	Lookup(ctx context.Context, taxID, phone string) (models.Company, error)
	Resolve(ctx context.Context, taxID string) (models.Company, error)
	Autofill(ctx context.Context, taxID string) (intake.Autofill, error)
}

type LeadService interface {
	Pending(ctx context.Context) []leads.View
	All(ctx context.Context) []leads.View
	ByConsultant(ctx context.Context, consultantID int64) []leads.View
	Register(ctx context.Context, in leads.RegisterInput) (models.Lead, error)
	Assign(ctx context.Context, leadID, consultantID int64) (models.Lead, error)
	SetStatus(ctx context.Context, leadID int64, status models.LeadStatus) (models.Lead, error)
}

type ProposalService interface {
	CreateFromForm(ctx context.Context, in proposals.Input) (models.Proposal, error)
	CreateFromLead(ctx context.Context, in proposals.FromLeadInput) (models.Proposal, error)
	List(ctx context.Context) []models.Proposal
	ByConsultant(ctx context.Context, consultantID int64) []models.Proposal
	UpdateStatus(ctx context.Context, id int64, status models.ProposalStatus) (models.Proposal, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	RenderDocument(ctx context.Context, id int64, now time.Time) (string, error)
	DefaultRates(ctx context.Context) models.Rates
	SetDefaultRates(ctx context.Context, partial models.Rates) (models.Rates, error)
	WhatsappTemplate(ctx context.Context) string
	SetWhatsappTemplate(ctx context.Context, tpl string) error
	RenderMessage(ctx context.Context, f message.Fields) string
}

type API struct {
	Auth      AuthService
	Users     UserRepository
	Intake    IntakeService
	Leads     LeadService
	Proposals ProposalService
	Logger    *slog.Logger
	// Now fixa a data impressa no documento da proposta nos testes.
	Now func() time.Time
}

func (a *API) log() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

func (a *API) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// Routes registra todas as rotas no mux (padrões com método, Go 1.22+).
func (a *API) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", a.Health)

	mux.HandleFunc("POST /api/auth/login", a.Login)

	mux.HandleFunc("POST /api/cnpj-lookup", a.CNPJLookup)
	mux.HandleFunc("GET /api/cnpj/{cnpj}", a.CNPJGet)
	mux.HandleFunc("POST /api/cnpj-autofill", a.CNPJAutofill)

	mux.HandleFunc("POST /api/users", a.CreateUser)
	mux.HandleFunc("GET /api/users/consultants", a.ListConsultants)
	mux.HandleFunc("DELETE /api/users/{id}", a.DeleteUser)

	mux.HandleFunc("POST /api/proposals", a.CreateProposal)
	mux.HandleFunc("GET /api/proposals", a.ListProposals)
	mux.HandleFunc("DELETE /api/proposals", a.DeleteAllProposals)
	mux.HandleFunc("PATCH /api/proposals/{id}", a.UpdateProposalStatus)
	mux.HandleFunc("DELETE /api/proposals/{id}", a.DeleteProposal)
	// "/consultant/{id}" e "/{id}/pdf" se sobrepõem no ServeMux; um handler decide
	mux.HandleFunc("GET /api/proposals/{a}/{b}", a.ProposalSubresource)

	mux.HandleFunc("GET /api/leads/pending", a.PendingLeads)
	mux.HandleFunc("GET /api/leads/all", a.AllLeads)
	mux.HandleFunc("GET /api/leads/consultant/{id}", a.LeadsByConsultant)
	mux.HandleFunc("POST /api/leads", a.RegisterLead)
	mux.HandleFunc("PUT /api/leads/{id}/assign", a.AssignLead)
	mux.HandleFunc("PUT /api/leads/{id}/status", a.SetLeadStatus)
	mux.HandleFunc("POST /api/leads/{id}/proposal", a.CreateProposalFromLead)

	mux.HandleFunc("POST /api/whatsapp-message", a.RenderMessage)
	mux.HandleFunc("GET /api/settings/default-rates", a.GetDefaultRates)
	mux.HandleFunc("POST /api/settings/default-rates", a.SetDefaultRates)
	mux.HandleFunc("GET /api/settings/whatsapp-template", a.GetWhatsappTemplate)
	mux.HandleFunc("POST /api/settings/whatsapp-template", a.SetWhatsappTemplate)
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError traduz erros de domínio para status HTTP.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *validation.Error
	switch {
	case errors.As(err, &ve):
		utils.WriteFieldErrors(w, "validation failed", ve.Fields)
	case errors.Is(err, store.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicate):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, leads.ErrInvalidTransition):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		utils.WriteError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		a.log().Error("request_failed", "method", r.Method, "path", r.URL.Path, "err", err)
		utils.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode lê o corpo estrito e roda as tags de validação do DTO.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := utils.DecodeStrict(r.Body, dst); err != nil {
		utils.BadRequest(w, utils.FormatUnknownFieldError(err))
		return false
	}
	if err := validation.Struct(dst); err != nil {
		var ve *validation.Error
		if errors.As(err, &ve) {
			utils.WriteFieldErrors(w, "validation failed", ve.Fields)
			return false
		}
		utils.BadRequest(w, err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		utils.BadRequest(w, "invalid "+name)
		return 0, false
	}
	return id, true
}

func message200(w http.ResponseWriter, msg string) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
}
