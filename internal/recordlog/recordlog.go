// Package recordlog guarda cada criação/alteração de entidade como uma linha
// serializada, em um stream append-only por tipo. O estado em memória é
// reconstruído relendo os streams na ordem em que foram escritos.
package recordlog

import (
	"context"
	"fmt"
)

type Kind string

const (
	Users     Kind = "users"
	Companies Kind = "companies"
	Leads     Kind = "leads"
	Proposals Kind = "proposals"
	Settings  Kind = "settings"
)

var Kinds = []Kind{Users, Companies, Leads, Proposals, Settings}

// Log é o meio durável. Appends de um mesmo Kind nunca se intercalam;
// a ordem de leitura é a ordem de escrita.
type Log interface {
	// Append grava uma linha e só retorna depois do ponto de durabilidade.
	Append(ctx context.Context, kind Kind, line []byte) error
	// Rewrite substitui o stream inteiro (compactação). Única forma de remover linhas.
	Rewrite(ctx context.Context, kind Kind, lines [][]byte) error
	// ReadAll devolve as linhas não vazias; stream ausente equivale a vazio.
	ReadAll(ctx context.Context, kind Kind) ([][]byte, error)
	Close() error
}

func validKind(k Kind) error {
	for _, known := range Kinds {
		if k == known {
			return nil
		}
	}
	return fmt.Errorf("recordlog: unknown kind %q", k)
}
