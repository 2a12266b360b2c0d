package handlers

import (
	"net/http"

	"github.com/Werneck0live/cadastro-leads/internal/message"
	"github.com/Werneck0live/cadastro-leads/internal/utils"
)

// POST /api/whatsapp-message -> {"message": texto}
func (a *API) RenderMessage(w http.ResponseWriter, r *http.Request) {
	var in message.Fields
	if err := utils.DecodeStrict(r.Body, &in); err != nil {
		utils.BadRequest(w, utils.FormatUnknownFieldError(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": a.Proposals.RenderMessage(r.Context(), in)})
}

func (a *API) GetDefaultRates(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, a.Proposals.DefaultRates(r.Context()))
}

// atualização parcial: só as taxas enviadas mudam
func (a *API) SetDefaultRates(w http.ResponseWriter, r *http.Request) {
	var in RatesDTO
	if !decode(w, r, &in) {
		return
	}
	rates, err := a.Proposals.SetDefaultRates(r.Context(), in.rates())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rates)
}

func (a *API) GetWhatsappTemplate(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"template": a.Proposals.WhatsappTemplate(r.Context())})
}

func (a *API) SetWhatsappTemplate(w http.ResponseWriter, r *http.Request) {
	var in TemplateDTO
	if !decode(w, r, &in) {
		return
	}
	if err := a.Proposals.SetWhatsappTemplate(r.Context(), in.Template); err != nil {
		a.writeError(w, r, err)
		return
	}
	message200(w, "whatsapp template updated")
}
