package handlers

import (
	"time"

	"github.com/Werneck0live/cadastro-leads/internal/models"
)

type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CNPJLookupDTO struct {
	CNPJ  string `json:"cnpj" validate:"required,cnpj"`
	Phone string `json:"phone"`
}

type CNPJAutofillDTO struct {
	CNPJ string `json:"cnpj" validate:"required,cnpj"`
}

type UserCreateDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=4,max=72"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"omitempty,oneof=admin consultant"`
}

// RatesDTO: taxa omitida fica com o default (setting ou constante).
type RatesDTO struct {
	PixRate          string `json:"pixRate" validate:"omitempty,rate"`
	DebitRate        string `json:"debitRate" validate:"omitempty,rate"`
	CreditRate       string `json:"creditRate" validate:"omitempty,rate"`
	Credit12xRate    string `json:"credit12xRate" validate:"omitempty,rate"`
	AnticipationRate string `json:"anticipationRate" validate:"omitempty,rate"`
}

func (d RatesDTO) rates() models.Rates {
	return models.Rates{
		PixRate:          d.PixRate,
		DebitRate:        d.DebitRate,
		CreditRate:       d.CreditRate,
		Credit12xRate:    d.Credit12xRate,
		AnticipationRate: d.AnticipationRate,
	}
}

type ProposalCreateDTO struct {
	CNPJ           string `json:"cnpj" validate:"required,cnpj"`
	CompanyName    string `json:"companyName" validate:"required"`
	CompanySize    string `json:"companySize"`
	ConsultantID   *int64 `json:"consultantId" validate:"required,gt=0"`
	ConsultantName string `json:"consultantName" validate:"required"`
	Phone          string `json:"phone"`
	Status         string `json:"status" validate:"omitempty,oneof=draft sent approved rejected"`
	RatesDTO
}

type ProposalFromLeadDTO struct {
	ConsultantID   *int64 `json:"consultantId" validate:"omitempty,gt=0"`
	ConsultantName string `json:"consultantName"`
	CompanySize    string `json:"companySize"`
	Phone          string `json:"phone"`
	MarkConverted  bool   `json:"markConverted"`
	RatesDTO
}

type ProposalStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=draft sent approved rejected"`
}

type LeadCreateDTO struct {
	CNPJ         string `json:"cnpj" validate:"required,cnpj"`
	CompanyName  string `json:"companyName" validate:"required"`
	Phone        string `json:"phone"`
	Notes        string `json:"notes"`
	ConsultantID *int64 `json:"consultantId" validate:"omitempty,gt=0"`
}

type LeadAssignDTO struct {
	ConsultantID *int64 `json:"consultantId" validate:"required,gt=0"`
}

type LeadStatusDTO struct {
	Status string `json:"status" validate:"required"`
}

type TemplateDTO struct {
	Template string `json:"template" validate:"required"`
}

// UserResponse é o usuário sem o hash de senha.
type UserResponse struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Name      string      `json:"name"`
	Email     string      `json:"email,omitempty"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}
