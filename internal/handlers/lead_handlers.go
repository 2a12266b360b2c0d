package handlers

import (
	"net/http"

	"github.com/Werneck0live/cadastro-leads/internal/leads"
	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/utils"
)

func (a *API) PendingLeads(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, a.Leads.Pending(r.Context()))
}

func (a *API) AllLeads(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, a.Leads.All(r.Context()))
}

func (a *API) LeadsByConsultant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, a.Leads.ByConsultant(r.Context(), id))
}

func (a *API) RegisterLead(w http.ResponseWriter, r *http.Request) {
	var in LeadCreateDTO
	if !decode(w, r, &in) {
		return
	}
	l, err := a.Leads.Register(r.Context(), leads.RegisterInput{
		CNPJ:         in.CNPJ,
		CompanyName:  in.CompanyName,
		Phone:        in.Phone,
		Notes:        in.Notes,
		ConsultantID: in.ConsultantID,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, l)
}

func (a *API) AssignLead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in LeadAssignDTO
	if !decode(w, r, &in) {
		return
	}
	l, err := a.Leads.Assign(r.Context(), id, *in.ConsultantID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, l)
}

// status desconhecido é rejeitado pelo serviço (400 por campo)
func (a *API) SetLeadStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in LeadStatusDTO
	if !decode(w, r, &in) {
		return
	}
	l, err := a.Leads.SetStatus(r.Context(), id, models.LeadStatus(in.Status))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, l)
}
