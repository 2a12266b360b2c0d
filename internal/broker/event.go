package broker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	LeadCreated       = "lead.created"
	LeadAssigned      = "lead.assigned"
	LeadStatusChanged = "lead.status_changed"
	ProposalCreated   = "proposal.created"
	ProposalDeleted   = "proposal.deleted"
)

// Event é o corpo JSON publicado na fila e repassado pelo serviço de websocket.
type Event struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	LeadID       int64     `json:"leadId,omitempty"`
	ProposalID   int64     `json:"proposalId,omitempty"`
	CNPJ         string    `json:"cnpj,omitempty"`
	CompanyName  string    `json:"companyName,omitempty"`
	ConsultantID *int64    `json:"consultantId,omitempty"`
	Status       string    `json:"status,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func (e Event) headers() amqp.Table {
	h := amqp.Table{"event_type": e.Type, "event_id": e.ID}
	if e.ConsultantID != nil {
		h["consultant_id"] = strconv.FormatInt(*e.ConsultantID, 10)
	}
	return h
}

// Observer recebe o resultado de cada publicação (métricas).
type Observer interface {
	EventPublished(eventType string, ok bool)
}

// Emitter serializa eventos e publica fora do caminho crítico: falha de
// publicação só gera log, nunca volta para quem originou a mutação.
type Emitter struct {
	sink    Sink
	log     *slog.Logger
	obs     Observer
	timeout time.Duration
	now     func() time.Time
}

func NewEmitter(sink Sink, log *slog.Logger, obs Observer) *Emitter {
	if sink == nil {
		sink = Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Emitter{sink: sink, log: log.With("cmp", "broker"), obs: obs, timeout: 2 * time.Second, now: time.Now}
}

func (e *Emitter) Emit(ctx context.Context, ev Event) {
	if e == nil {
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = e.now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		e.log.Error("event_encode_error", "type", ev.Type, "err", err)
		return
	}

	// o request pode já ter terminado; a publicação tem prazo próprio
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()
	err = e.sink.Publish(pctx, body, ev.headers())
	if e.obs != nil {
		e.obs.EventPublished(ev.Type, err == nil)
	}
	if err != nil {
		e.log.Warn("event_publish_error", "type", ev.Type, "id", ev.ID, "err", err)
		return
	}
	e.log.Debug("event_published", "type", ev.Type, "id", ev.ID)
}
