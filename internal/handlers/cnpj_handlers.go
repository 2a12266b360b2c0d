package handlers

import (
	"net/http"

	"github.com/Werneck0live/cadastro-leads/internal/utils"
)

// POST /api/cnpj-lookup: formulário público, sempre abre um lead pendente.
func (a *API) CNPJLookup(w http.ResponseWriter, r *http.Request) {
	var in CNPJLookupDTO
	if !decode(w, r, &in) {
		return
	}
	c, err := a.Intake.Lookup(r.Context(), in.CNPJ, in.Phone)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

// GET /api/cnpj/{cnpj}: só resolve, sem lead.
func (a *API) CNPJGet(w http.ResponseWriter, r *http.Request) {
	c, err := a.Intake.Resolve(r.Context(), r.PathValue("cnpj"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (a *API) CNPJAutofill(w http.ResponseWriter, r *http.Request) {
	var in CNPJAutofillDTO
	if !decode(w, r, &in) {
		return
	}
	out, err := a.Intake.Autofill(r.Context(), in.CNPJ)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}
