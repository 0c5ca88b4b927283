// Package feed connects the engine to NATS: resolved encounter outcomes are
// recorded into the per-group results, and encounter start requests are
// answered with a generated encounter.
package feed

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/config"
	"github.com/cory-johannsen/adventure/internal/game/adventure"
	"github.com/cory-johannsen/adventure/internal/game/encounter"
	"github.com/cory-johannsen/adventure/internal/game/inventory"
	"github.com/cory-johannsen/adventure/internal/observability"
)

// ErrNoGroup is returned for messages that do not name a group.
var ErrNoGroup = errors.New("feed: message has no group")

// Outcome is the payload published on the outcome subject.
type Outcome struct {
	Group string `json:"group"`
	adventure.RaidOutcome
}

// StartRequest is the payload of an encounter start request. A non-zero Seed
// replays that encounter instead of starting a new one.
type StartRequest struct {
	Group    string `json:"group"`
	OriginID uint64 `json:"origin_id"`
	Seed     uint64 `json:"seed,omitempty"`
}

// StartReply answers a StartRequest. On failure only Error is set.
type StartReply struct {
	Seed      uint64             `json:"seed,omitempty"`
	Axis      string             `json:"axis,omitempty"`
	Min       float64            `json:"min"`
	Max       float64            `json:"max"`
	Monster   string             `json:"monster,omitempty"`
	HP        int                `json:"hp,omitempty"`
	Diplomacy int                `json:"dipl,omitempty"`
	Boss      bool               `json:"boss,omitempty"`
	Roll      int                `json:"roll,omitempty"`
	Currency  int                `json:"currency,omitempty"`
	Chests    inventory.Treasure `json:"chests"`
	Error     string             `json:"error,omitempty"`
}

// Handler decodes feed messages and applies them.
//
// Handler is safe for concurrent use.
type Handler struct {
	results   *adventure.Results
	generator *encounter.Generator
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewHandler creates a Handler. metrics may be nil.
//
// Precondition: results, generator and logger must be non-nil.
func NewHandler(results *adventure.Results, generator *encounter.Generator, metrics *observability.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		results:   results,
		generator: generator,
		metrics:   metrics,
		logger:    logger,
	}
}

// HandleOutcome records one outcome message into the group's results.
//
// Postcondition: malformed messages change nothing and return an error.
func (h *Handler) HandleOutcome(data []byte) error {
	var msg Outcome
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decoding outcome: %w", err)
	}
	if msg.Group == "" {
		return ErrNoGroup
	}
	if msg.Action != adventure.ActionTalk {
		msg.Action = adventure.ActionAttack
	}
	h.results.Record(msg.Group, msg.RaidOutcome)
	if h.metrics != nil {
		h.metrics.ObserveOutcome(string(msg.Action), msg.Success)
	}
	h.logger.Debug("outcome recorded",
		zap.String("group", msg.Group),
		zap.String("action", string(msg.Action)),
		zap.Float64("amount", msg.Amount),
		zap.Int("party", msg.PartySize),
		zap.Bool("success", msg.Success),
	)
	return nil
}

// HandleStart answers a start request. Errors are reported inside the reply
// so the requester always gets an answer.
func (h *Handler) HandleStart(data []byte) StartReply {
	var req StartRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return StartReply{Error: fmt.Sprintf("decoding start request: %v", err)}
	}
	if req.Group == "" {
		return StartReply{Error: ErrNoGroup.Error()}
	}

	var e *encounter.Encounter
	if req.Seed != 0 {
		e = h.generator.FromSeed(req.Group, adventure.DecodeGameSeed(req.Seed))
	} else {
		var err error
		e, err = h.generator.Start(req.Group, req.OriginID)
		if err != nil {
			return StartReply{Error: err.Error()}
		}
	}
	if h.metrics != nil {
		h.metrics.ObserveEncounter(e.Seed.Range.Axis.String(), e.Base.Boss)
	}
	return replyFor(e)
}

func replyFor(e *encounter.Encounter) StartReply {
	return StartReply{
		Seed:      e.Seed.Uint64(),
		Axis:      e.Seed.Range.Axis.String(),
		Min:       e.Seed.Range.Min,
		Max:       e.Seed.Range.Max,
		Monster:   e.Monster.Name,
		HP:        e.Monster.HP,
		Diplomacy: e.Monster.Diplomacy,
		Boss:      e.Monster.Boss,
		Roll:      e.ScaleRoll.Total(),
		Currency:  e.Loot.Currency,
		Chests:    e.Loot.Chests,
	}
}

// Subscribe attaches the handler to the configured subjects, joining
// cfg.Queue when set so replicas share the load.
//
// Postcondition: on error no subscription is left active.
func (h *Handler) Subscribe(nc *nats.Conn, cfg config.NATSConfig) ([]*nats.Subscription, error) {
	outcomes, err := h.subscribe(nc, cfg.OutcomeSubject, cfg.Queue, h.onOutcome)
	if err != nil {
		return nil, err
	}
	starts, err := h.subscribe(nc, cfg.StartSubject, cfg.Queue, h.onStart)
	if err != nil {
		_ = outcomes.Unsubscribe()
		return nil, err
	}
	h.logger.Info("feed subscribed",
		zap.String("outcomes", cfg.OutcomeSubject),
		zap.String("starts", cfg.StartSubject),
		zap.String("queue", cfg.Queue),
	)
	return []*nats.Subscription{outcomes, starts}, nil
}

func (h *Handler) subscribe(nc *nats.Conn, subject, queue string, cb nats.MsgHandler) (*nats.Subscription, error) {
	var (
		sub *nats.Subscription
		err error
	)
	if queue != "" {
		sub, err = nc.QueueSubscribe(subject, queue, cb)
	} else {
		sub, err = nc.Subscribe(subject, cb)
	}
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	return sub, nil
}

func (h *Handler) onOutcome(msg *nats.Msg) {
	if err := h.HandleOutcome(msg.Data); err != nil {
		h.logger.Warn("dropping outcome", zap.String("subject", msg.Subject), zap.Error(err))
	}
}

func (h *Handler) onStart(msg *nats.Msg) {
	reply := h.HandleStart(msg.Data)
	if reply.Error != "" {
		h.logger.Warn("encounter start failed", zap.String("subject", msg.Subject), zap.String("error", reply.Error))
	}
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(reply)
	if err != nil {
		h.logger.Error("encoding start reply", zap.Error(err))
		return
	}
	if err := msg.Respond(data); err != nil {
		h.logger.Warn("responding to start request", zap.Error(err))
	}
}
