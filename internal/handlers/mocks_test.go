package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/Werneck0live/cadastro-leads/internal/auth"
	"github.com/Werneck0live/cadastro-leads/internal/intake"
	"github.com/Werneck0live/cadastro-leads/internal/leads"
	"github.com/Werneck0live/cadastro-leads/internal/message"
	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/proposals"
)

type authMock struct {
	LoginFn      func(ctx context.Context, username, password string) (models.User, error)
	CreateUserFn func(ctx context.Context, in auth.CreateUserInput) (models.User, error)
}

func (m *authMock) Login(ctx context.Context, username, password string) (models.User, error) {
	if m.LoginFn == nil {
		return models.User{}, errors.New("LoginFn not set")
	}
	return m.LoginFn(ctx, username, password)
}
func (m *authMock) CreateUser(ctx context.Context, in auth.CreateUserInput) (models.User, error) {
	if m.CreateUserFn == nil {
		return models.User{}, errors.New("CreateUserFn not set")
	}
	return m.CreateUserFn(ctx, in)
}

type usersMock struct {
	ListConsultantsFn func(ctx context.Context) []models.User
	DeleteUserFn      func(ctx context.Context, id int64) (models.User, error)
}

func (m *usersMock) ListConsultants(ctx context.Context) []models.User {
	if m.ListConsultantsFn == nil {
		return nil
	}
	return m.ListConsultantsFn(ctx)
}
func (m *usersMock) DeleteUser(ctx context.Context, id int64) (models.User, error) {
	if m.DeleteUserFn == nil {
		return models.User{}, errors.New("DeleteUserFn not set")
	}
	return m.DeleteUserFn(ctx, id)
}

type intakeMock struct {
	LookupFn   func(ctx context.Context, taxID, phone string) (models.Company, error)
	ResolveFn  func(ctx context.Context, taxID string) (models.Company, error)
	AutofillFn func(ctx context.Context, taxID string) (intake.Autofill, error)
}

func (m *intakeMock) Lookup(ctx context.Context, taxID, phone string) (models.Company, error) {
	if m.LookupFn == nil {
		return models.Company{}, errors.New("LookupFn not set")
	}
	return m.LookupFn(ctx, taxID, phone)
}
func (m *intakeMock) Resolve(ctx context.Context, taxID string) (models.Company, error) {
	if m.ResolveFn == nil {
		return models.Company{}, errors.New("ResolveFn not set")
	}
	return m.ResolveFn(ctx, taxID)
}
func (m *intakeMock) Autofill(ctx context.Context, taxID string) (intake.Autofill, error) {
	if m.AutofillFn == nil {
		return intake.Autofill{}, errors.New("AutofillFn not set")
	}
	return m.AutofillFn(ctx, taxID)
}

type leadsMock struct {
	PendingFn      func(ctx context.Context) []leads.View
	AllFn          func(ctx context.Context) []leads.View
	ByConsultantFn func(ctx context.Context, consultantID int64) []leads.View
	RegisterFn     func(ctx context.Context, in leads.RegisterInput) (models.Lead, error)
	AssignFn       func(ctx context.Context, leadID, consultantID int64) (models.Lead, error)
	SetStatusFn    func(ctx context.Context, leadID int64, status models.LeadStatus) (models.Lead, error)
}

func (m *leadsMock) Pending(ctx context.Context) []leads.View {
	if m.PendingFn == nil {
		return nil
	}
	return m.PendingFn(ctx)
}
func (m *leadsMock) All(ctx context.Context) []leads.View {
	if m.AllFn == nil {
		return nil
	}
	return m.AllFn(ctx)
}
func (m *leadsMock) ByConsultant(ctx context.Context, consultantID int64) []leads.View {
	if m.ByConsultantFn == nil {
		return nil
	}
	return m.ByConsultantFn(ctx, consultantID)
}
func (m *leadsMock) Register(ctx context.Context, in leads.RegisterInput) (models.Lead, error) {
	if m.RegisterFn == nil {
		return models.Lead{}, errors.New("RegisterFn not set")
	}
	return m.RegisterFn(ctx, in)
}
func (m *leadsMock) Assign(ctx context.Context, leadID, consultantID int64) (models.Lead, error) {
	if m.AssignFn == nil {
		return models.Lead{}, errors.New("AssignFn not set")
	}
	return m.AssignFn(ctx, leadID, consultantID)
}
func (m *leadsMock) SetStatus(ctx context.Context, leadID int64, status models.LeadStatus) (models.Lead, error) {
	if m.SetStatusFn == nil {
		return models.Lead{}, errors.New("SetStatusFn not set")
	}
	return m.SetStatusFn(ctx, leadID, status)
}

type proposalsMock struct {
	CreateFromFormFn      func(ctx context.Context, in proposals.Input) (models.Proposal, error)
	CreateFromLeadFn      func(ctx context.Context, in proposals.FromLeadInput) (models.Proposal, error)
	ListFn                func(ctx context.Context) []models.Proposal
	ByConsultantFn        func(ctx context.Context, consultantID int64) []models.Proposal
	UpdateStatusFn        func(ctx context.Context, id int64, status models.ProposalStatus) (models.Proposal, error)
	DeleteFn              func(ctx context.Context, id int64) error
	DeleteAllFn           func(ctx context.Context) error
	RenderDocumentFn      func(ctx context.Context, id int64, now time.Time) (string, error)
	DefaultRatesFn        func(ctx context.Context) models.Rates
	SetDefaultRatesFn     func(ctx context.Context, partial models.Rates) (models.Rates, error)
	WhatsappTemplateFn    func(ctx context.Context) string
	SetWhatsappTemplateFn func(ctx context.Context, tpl string) error
	RenderMessageFn       func(ctx context.Context, f message.Fields) string
}

func (m *proposalsMock) CreateFromForm(ctx context.Context, in proposals.Input) (models.Proposal, error) {
	if m.CreateFromFormFn == nil {
		return models.Proposal{}, errors.New("CreateFromFormFn not set")
	}
	return m.CreateFromFormFn(ctx, in)
}
func (m *proposalsMock) CreateFromLead(ctx context.Context, in proposals.FromLeadInput) (models.Proposal, error) {
	if m.CreateFromLeadFn == nil {
		return models.Proposal{}, errors.New("CreateFromLeadFn not set")
	}
	return m.CreateFromLeadFn(ctx, in)
}
func (m *proposalsMock) List(ctx context.Context) []models.Proposal {
	if m.ListFn == nil {
		return nil
	}
	return m.ListFn(ctx)
}
func (m *proposalsMock) ByConsultant(ctx context.Context, consultantID int64) []models.Proposal {
	if m.ByConsultantFn == nil {
		return nil
	}
	return m.ByConsultantFn(ctx, consultantID)
}
func (m *proposalsMock) UpdateStatus(ctx context.Context, id int64, status models.ProposalStatus) (models.Proposal, error) {
	if m.UpdateStatusFn == nil {
		return models.Proposal{}, errors.New("UpdateStatusFn not set")
	}
	return m.UpdateStatusFn(ctx, id, status)
}
func (m *proposalsMock) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn == nil {
		return errors.New("DeleteFn not set")
	}
	return m.DeleteFn(ctx, id)
}
func (m *proposalsMock) DeleteAll(ctx context.Context) error {
	if m.DeleteAllFn == nil {
		return errors.New("DeleteAllFn not set")
	}
	return m.DeleteAllFn(ctx)
}
func (m *proposalsMock) RenderDocument(ctx context.Context, id int64, now time.Time) (string, error) {
	if m.RenderDocumentFn == nil {
		return "", errors.New("RenderDocumentFn not set")
	}
	return m.RenderDocumentFn(ctx, id, now)
}
func (m *proposalsMock) DefaultRates(ctx context.Context) models.Rates {
	if m.DefaultRatesFn == nil {
		return models.Rates{}
	}
	return m.DefaultRatesFn(ctx)
}
func (m *proposalsMock) SetDefaultRates(ctx context.Context, partial models.Rates) (models.Rates, error) {
	if m.SetDefaultRatesFn == nil {
		return models.Rates{}, errors.New("SetDefaultRatesFn not set")
	}
	return m.SetDefaultRatesFn(ctx, partial)
}
func (m *proposalsMock) WhatsappTemplate(ctx context.Context) string {
	if m.WhatsappTemplateFn == nil {
		return ""
	}
	return m.WhatsappTemplateFn(ctx)
}
func (m *proposalsMock) SetWhatsappTemplate(ctx context.Context, tpl string) error {
	if m.SetWhatsappTemplateFn == nil {
		return errors.New("SetWhatsappTemplateFn not set")
	}
	return m.SetWhatsappTemplateFn(ctx, tpl)
}
func (m *proposalsMock) RenderMessage(ctx context.Context, f message.Fields) string {
	if m.RenderMessageFn == nil {
		return ""
	}
	return m.RenderMessageFn(ctx, f)
}
