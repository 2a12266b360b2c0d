// Package document gera a proposta imprimível em HTML. Render é puro:
// mesma proposta e mesmo instante produzem o mesmo documento.
package document

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/utils"
)

//go:embed templates/proposal.html
var files embed.FS

var proposalTmpl = template.Must(template.ParseFS(files, "templates/proposal.html"))

type rateRow struct {
	Label       string
	Value       string
	Description string
}

type page struct {
	Proposal    models.Proposal
	CNPJ        string
	GeneratedAt string
	Rates       []rateRow
}

// Labels fixos por modalidade, na ordem do documento.
var rateLabels = []struct {
	key, label, description string
}{
	{"pixRate", "PIX", "Transferência instantânea"},
	{"debitRate", "Cartão de Débito", "Débito à vista"},
	{"creditRate", "Cartão de Crédito à Vista", "Crédito à vista"},
	{"credit12xRate", "Cartão de Crédito 12x", "Parcelado em 12 vezes"},
	{"anticipationRate", "Antecipação de Recebíveis", "Antecipação do valor"},
}

func Render(p models.Proposal, generatedAt time.Time) (string, error) {
	data := page{
		Proposal:    p,
		CNPJ:        utils.FormatCNPJ(p.CNPJ),
		GeneratedAt: generatedAt.Format("02/01/2006 15:04"),
		Rates:       make([]rateRow, 0, len(rateLabels)),
	}
	for _, r := range rateLabels {
		data.Rates = append(data.Rates, rateRow{Label: r.label, Value: p.Rates.Get(r.key), Description: r.description})
	}

	var buf bytes.Buffer
	if err := proposalTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render proposal %d: %w", p.ID, err)
	}
	return buf.String(), nil
}
