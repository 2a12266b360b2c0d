package proposals

import (
	"context"
	"strings"

	"github.com/Werneck0live/cadastro-leads/internal/message"
	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/validation"
)

// WhatsappTemplate devolve o template gravado ou o padrão embutido.
func (s *Service) WhatsappTemplate(_ context.Context) string {
	v, _ := s.store.GetSetting(models.SettingWhatsappTemplate)
	return message.Template(v)
}

func (s *Service) SetWhatsappTemplate(ctx context.Context, tpl string) error {
	if strings.TrimSpace(tpl) == "" {
		return validation.Field("template", "is required")
	}
	if err := s.store.SetSetting(ctx, models.SettingWhatsappTemplate, tpl); err != nil {
		return err
	}
	s.logger.Info("whatsapp_template_updated", "len", len(tpl))
	return nil
}

func (s *Service) RenderMessage(ctx context.Context, f message.Fields) string {
	return message.Render(s.WhatsappTemplate(ctx), f)
}

// MessageFields monta os campos do template a partir de uma proposta gravada.
func MessageFields(p models.Proposal) message.Fields {
	return message.Fields{
		ConsultantName:   p.ConsultantName,
		CompanyName:      p.CompanyName,
		CNPJ:             p.CNPJ,
		CompanySize:      p.CompanySize,
		PixRate:          p.PixRate,
		DebitRate:        p.DebitRate,
		CreditRate:       p.CreditRate,
		Credit12xRate:    p.Credit12xRate,
		AnticipationRate: p.AnticipationRate,
	}
}
