package handlers

import (
	"net/http"
	"strconv"

	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/proposals"
	"github.com/Werneck0live/cadastro-leads/internal/utils"
)

func (a *API) CreateProposal(w http.ResponseWriter, r *http.Request) {
	var in ProposalCreateDTO
	if !decode(w, r, &in) {
		return
	}
	p, err := a.Proposals.CreateFromForm(r.Context(), proposals.Input{
		CNPJ:           in.CNPJ,
		CompanyName:    in.CompanyName,
		CompanySize:    in.CompanySize,
		ConsultantID:   in.ConsultantID,
		ConsultantName: in.ConsultantName,
		Phone:          in.Phone,
		Rates:          in.rates(),
		Status:         models.ProposalStatus(in.Status),
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, p)
}

// POST /api/leads/{id}/proposal
func (a *API) CreateProposalFromLead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in ProposalFromLeadDTO
	if !decode(w, r, &in) {
		return
	}
	p, err := a.Proposals.CreateFromLead(r.Context(), proposals.FromLeadInput{
		LeadID:         id,
		ConsultantID:   in.ConsultantID,
		ConsultantName: in.ConsultantName,
		CompanySize:    in.CompanySize,
		Phone:          in.Phone,
		Rates:          in.rates(),
		MarkConverted:  in.MarkConverted,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, p)
}

func (a *API) ListProposals(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, a.Proposals.List(r.Context()))
}

// GET /api/proposals/{a}/{b}: "consultant/{id}" lista por consultor,
// "{id}/pdf" devolve o documento.
func (a *API) ProposalSubresource(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("a"), r.PathValue("b")
	switch {
	case first == "consultant":
		id, err := strconv.ParseInt(second, 10, 64)
		if err != nil || id <= 0 {
			utils.BadRequest(w, "invalid consultant id")
			return
		}
		utils.WriteJSON(w, http.StatusOK, a.Proposals.ByConsultant(r.Context(), id))
	case second == "pdf":
		id, err := strconv.ParseInt(first, 10, 64)
		if err != nil || id <= 0 {
			utils.BadRequest(w, "invalid id")
			return
		}
		a.proposalDocument(w, r, id)
	default:
		utils.WriteError(w, http.StatusNotFound, "not found")
	}
}

func (a *API) proposalDocument(w http.ResponseWriter, r *http.Request, id int64) {
	html, err := a.Proposals.RenderDocument(r.Context(), id, a.now())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", "inline; filename=proposta-"+strconv.FormatInt(id, 10)+".html")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (a *API) UpdateProposalStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in ProposalStatusDTO
	if !decode(w, r, &in) {
		return
	}
	p, err := a.Proposals.UpdateStatus(r.Context(), id, models.ProposalStatus(in.Status))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (a *API) DeleteProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.Proposals.Delete(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	message200(w, "proposal deleted")
}

func (a *API) DeleteAllProposals(w http.ResponseWriter, r *http.Request) {
	if err := a.Proposals.DeleteAll(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	message200(w, "all proposals deleted")
}
