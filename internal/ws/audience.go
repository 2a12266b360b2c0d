package ws

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"

	"github.com/Werneck0live/cadastro-leads/internal/broker"
)

var ErrNoAudience = errors.New("ws: informe role=admin ou consultant={id}")

// NewClient monta o cliente a partir da query string do upgrade.
func NewClient(q url.Values, buf int) (*Client, error) {
	if q.Get("role") == "admin" {
		return &Client{Admin: true, Send: make(chan []byte, buf)}, nil
	}
	if v := q.Get("consultant"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return nil, ErrNoAudience
		}
		return &Client{ConsultantID: id, Send: make(chan []byte, buf)}, nil
	}
	return nil, ErrNoAudience
}

// Dispatch encaminha uma mensagem do broker. Corpo que não é evento vai só para admins.
func (h *Hub) Dispatch(body []byte) {
	var ev broker.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		h.log.Warn("dispatch_undecodable", "err", err)
		h.Route(body, nil)
		return
	}
	h.Route(body, ev.ConsultantID)
}
