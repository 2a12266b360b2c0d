package models

import "time"

type LeadStatus string

const (
	LeadPending   LeadStatus = "pending"
	LeadAssigned  LeadStatus = "assigned"
	LeadConverted LeadStatus = "converted"
	LeadCompleted LeadStatus = "completed"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadPending, LeadAssigned, LeadConverted, LeadCompleted:
		return true
	}
	return false
}

type Lead struct {
	ID           int64      `json:"id"`
	CNPJ         string     `json:"cnpj"`
	CompanyName  string     `json:"companyName"`
	Phone        string     `json:"phone,omitempty"`
	ConsultantID *int64     `json:"consultantId"`
	Status       LeadStatus `json:"status"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type LeadPatch struct {
	ConsultantID *int64
	Status       *LeadStatus
	Phone        *string
	Notes        *string
}
