// Package registry consulta o cadastro público de CNPJ (ReceitaWS).
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Werneck0live/cadastro-leads/internal/utils"
)

var (
	// ErrNotFound: o cadastro respondeu, mas não conhece o CNPJ.
	ErrNotFound = errors.New("registry: cnpj not found")
	// ErrUpstream: rede, timeout, limite de requisições ou resposta ilegível.
	ErrUpstream = errors.New("registry: upstream failure")
)

type Record struct {
	CNPJ     string
	Name     string
	Status   string
	Size     string
	Activity string
	OpenDate string
}

// Lookuper é o que o intake precisa; facilita fakes nos testes.
type Lookuper interface {
	Lookup(ctx context.Context, cnpj string) (Record, error)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type receitaResponse struct {
	Status             string `json:"status"`
	Message            string `json:"message"`
	CNPJ               string `json:"cnpj"`
	Nome               string `json:"nome"`
	Fantasia           string `json:"fantasia"`
	Situacao           string `json:"situacao"`
	Porte              string `json:"porte"`
	Abertura           string `json:"abertura"`
	AtividadePrincipal []struct {
		Code string `json:"code"`
		Text string `json:"text"`
	} `json:"atividade_principal"`
}

// Lookup espera cnpj já sanitizado (14 dígitos).
func (c *Client) Lookup(ctx context.Context, cnpj string) (Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+cnpj, nil)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Record{}, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return Record{}, fmt.Errorf("%w: http status %d", ErrUpstream, resp.StatusCode)
	}

	var body receitaResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return Record{}, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}

	switch strings.ToUpper(body.Status) {
	case "OK":
	case "ERROR":
		return Record{}, ErrNotFound
	default:
		return Record{}, fmt.Errorf("%w: unexpected status %q", ErrUpstream, body.Status)
	}

	rec := Record{
		CNPJ:     utils.SanitizeCNPJ(body.CNPJ),
		Name:     body.Nome,
		Status:   body.Situacao,
		Size:     body.Porte,
		OpenDate: body.Abertura,
	}
	if rec.CNPJ == "" {
		rec.CNPJ = cnpj
	}
	if rec.Name == "" {
		rec.Name = body.Fantasia
	}
	if len(body.AtividadePrincipal) > 0 {
		rec.Activity = body.AtividadePrincipal[0].Text
	}
	return rec, nil
}
