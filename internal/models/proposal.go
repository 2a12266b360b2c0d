package models

import "time"

type ProposalStatus string

const (
	ProposalDraft    ProposalStatus = "draft"
	ProposalSent     ProposalStatus = "sent"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalDraft, ProposalSent, ProposalApproved, ProposalRejected:
		return true
	}
	return false
}

// Rates são strings decimais com duas casas ("1.01"), nunca float:
// o valor digitado precisa chegar igual no documento impresso.
type Rates struct {
	PixRate          string `json:"pixRate"`
	DebitRate        string `json:"debitRate"`
	CreditRate       string `json:"creditRate"`
	Credit12xRate    string `json:"credit12xRate"`
	AnticipationRate string `json:"anticipationRate"`
}

// Chaves dos settings de taxa padrão, na ordem em que aparecem na proposta.
var RateKeys = []string{"pixRate", "debitRate", "creditRate", "credit12xRate", "anticipationRate"}

func (r Rates) Get(key string) string {
	switch key {
	case "pixRate":
		return r.PixRate
	case "debitRate":
		return r.DebitRate
	case "creditRate":
		return r.CreditRate
	case "credit12xRate":
		return r.Credit12xRate
	case "anticipationRate":
		return r.AnticipationRate
	}
	return ""
}

func (r *Rates) Set(key, v string) {
	switch key {
	case "pixRate":
		r.PixRate = v
	case "debitRate":
		r.DebitRate = v
	case "creditRate":
		r.CreditRate = v
	case "credit12xRate":
		r.Credit12xRate = v
	case "anticipationRate":
		r.AnticipationRate = v
	}
}

type Proposal struct {
	ID             int64  `json:"id"`
	CNPJ           string `json:"cnpj"`
	CompanyName    string `json:"companyName"`
	CompanySize    string `json:"companySize"`
	ConsultantID   *int64 `json:"consultantId"`
	ConsultantName string `json:"consultantName"`
	Phone          string `json:"phone,omitempty"`
	Rates
	Status    ProposalStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

type ProposalPatch struct {
	Status *ProposalStatus
	Phone  *string
}

// Setting é a linha persistida do key-value de configurações.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

const SettingWhatsappTemplate = "whatsappTemplate"
