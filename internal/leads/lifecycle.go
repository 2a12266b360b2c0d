// Package leads implementa o ciclo de vida do lead: atribuição, transições
// de status e as consultas usadas pelos painéis.
package leads

import (
	"errors"
	"fmt"
	"time"

	"github.com/Werneck0live/cadastro-leads/internal/models"
)

var ErrInvalidTransition = errors.New("invalid lead status transition")

// errUnchanged aborta o MutateLead sem gravar quando o lead já está no alvo.
var errUnchanged = errors.New("lead unchanged")

// RecencyWindow: um lead pendente mais novo que isso é "novo" para notificação.
const RecencyWindow = 30 * time.Second

// transições aceitas por SetStatus. pending -> assigned só via Assign.
var transitions = map[models.LeadStatus][]models.LeadStatus{
	models.LeadAssigned:  {models.LeadCompleted, models.LeadConverted},
	models.LeadCompleted: {models.LeadAssigned, models.LeadConverted},
}

func CanTransition(from, to models.LeadStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// canAssign: pendente ou reatribuição de um lead já atribuído.
func canAssign(from models.LeadStatus) bool {
	return from == models.LeadPending || from == models.LeadAssigned
}

// canConvert: conversão por proposta vale de qualquer estado aberto.
func canConvert(from models.LeadStatus) bool {
	return from == models.LeadPending || from == models.LeadAssigned || from == models.LeadCompleted
}

func transitionError(from, to models.LeadStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// IsNew vale para lead pendente criado há menos de RecencyWindow.
func IsNew(l models.Lead, now time.Time) bool {
	if l.Status != models.LeadPending || l.CreatedAt.IsZero() {
		return false
	}
	age := now.Sub(l.CreatedAt)
	return age >= 0 && age < RecencyWindow
}
