// Package message monta o texto de WhatsApp a partir de um template com
// placeholders {{campo}}.
package message

import "strings"

// Fields são os valores aceitos no template; campo vazio vira string vazia.
type Fields struct {
	ConsultantName   string `json:"consultantName"`
	CompanyName      string `json:"companyName"`
	CNPJ             string `json:"cnpj"`
	CompanySize      string `json:"companySize"`
	PixRate          string `json:"pixRate"`
	DebitRate        string `json:"debitRate"`
	CreditRate       string `json:"creditRate"`
	Credit12xRate    string `json:"credit12xRate"`
	AnticipationRate string `json:"anticipationRate"`
}

// Placeholders reconhecidos, na ordem em que aparecem no template padrão.
var Placeholders = []string{
	"consultantName", "companyName", "cnpj", "companySize",
	"pixRate", "debitRate", "creditRate", "credit12xRate", "anticipationRate",
}

func (f Fields) values() []string {
	return []string{
		f.ConsultantName, f.CompanyName, f.CNPJ, f.CompanySize,
		f.PixRate, f.DebitRate, f.CreditRate, f.Credit12xRate, f.AnticipationRate,
	}
}

// Render nunca falha: token desconhecido fica como está.
func Render(template string, f Fields) string {
	vals := f.values()
	pairs := make([]string, 0, 2*len(Placeholders))
	for i, name := range Placeholders {
		pairs = append(pairs, "{{"+name+"}}", vals[i])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Template escolhe o template gravado; vazio cai no padrão.
func Template(stored string) string {
	if strings.TrimSpace(stored) == "" {
		return DefaultTemplate
	}
	return stored
}

const DefaultTemplate = `🏦 PROPOSTA EXCLUSIVA PAGBANK

Olá! Meu nome é {{consultantName}}, seu novo gerente de conta no PagBank.

📋 Dados da Empresa:
• Empresa: {{companyName}}
• CNPJ: {{cnpj}}
• Status: Ativa
• Porte: {{companySize}}

🎯 OPORTUNIDADE ESPECIAL
Identificamos uma oportunidade de reduzir significativamente suas taxas de vendas no cartão, contribuindo para a retomada do crescimento do seu negócio.

💳 NOVA PROPOSTA DE TAXAS:
• PIX: {{pixRate}}%
• Cartão de Débito: {{debitRate}}%
• Cartão de Crédito à Vista: {{creditRate}}%
• Cartão de Crédito em 12x: {{credit12xRate}}%
• Antecipação de Recebíveis: {{anticipationRate}}%

✅ VANTAGENS INCLUÍDAS:
• Maquininha GRÁTIS
• Conta digital sem taxa de manutenção
• Saque GRÁTIS ilimitado`
