package leads

import (
	"time"

	"github.com/Werneck0live/cadastro-leads/internal/models"
)

type ConsultantRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// View é o lead como os painéis consomem: flag de recência e o consultor
// resolvido. ConsultantMissing marca consultantId que não aponta para ninguém.
type View struct {
	models.Lead
	IsNew             bool           `json:"isNew"`
	Consultant        *ConsultantRef `json:"consultant,omitempty"`
	ConsultantMissing bool           `json:"consultantMissing,omitempty"`
}

func (s *Service) view(l models.Lead, now time.Time) View {
	v := View{Lead: l, IsNew: IsNew(l, now)}
	if l.ConsultantID != nil {
		if u, ok := s.store.LookupUser(l.ConsultantID); ok {
			v.Consultant = &ConsultantRef{ID: u.ID, Name: u.Name, Username: u.Username}
		} else {
			v.ConsultantMissing = true
		}
	}
	return v
}

func (s *Service) views(in []models.Lead) []View {
	now := s.now()
	out := make([]View, 0, len(in))
	for _, l := range in {
		out = append(out, s.view(l, now))
	}
	return out
}
