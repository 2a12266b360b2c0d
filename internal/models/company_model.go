package models

import "time"

// Company é o cache local de um registro da Receita; nunca é alterada depois de criada.
type Company struct {
	ID        int64     `json:"id"`
	CNPJ      string    `json:"cnpj"` // armazenado normalizado (apenas dígitos)
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Size      string    `json:"size"`
	Activity  string    `json:"activity,omitempty"`
	OpenDate  string    `json:"openDate,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
