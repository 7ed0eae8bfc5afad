package events

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/zeusync/tankclient/internal/core/models"
)

// Event is one immutable, timestamped state change. Params holds the whole
// wire record; dispatch decodes it into the kind-specific payload.
type Event struct {
	T      int64
	Kind   Kind
	Type   string
	Params json.RawMessage
}

type header struct {
	Type string   `json:"type"`
	T    *float64 `json:"t"`
}

// Decode parses one wire record. Records whose type has no Kind return an
// *UnknownEventKindError; a missing timestamp is treated as 0.
func Decode(data []byte) (Event, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return Event{}, fmt.Errorf("decode event header: %w", err)
	}
	if h.Type == "" {
		return Event{}, ErrEmptyType
	}
	var t int64
	if h.T != nil {
		t = int64(math.Floor(*h.T))
	}
	kind, ok := ParseKind(h.Type)
	if !ok {
		return Event{}, &UnknownEventKindError{Type: h.Type, T: t}
	}
	params := make(json.RawMessage, len(data))
	copy(params, data)
	return Event{T: t, Kind: kind, Type: h.Type, Params: params}, nil
}

// New builds an event from a Go value. Object params are completed into a
// full wire record carrying "type" and "t", so Params round-trips through
// Decode. Mostly useful in tests and tooling.
func New(t int64, kind Kind, params any) (Event, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s params: %w", kind, err)
	}
	var record map[string]json.RawMessage
	if json.Unmarshal(raw, &record) == nil && record != nil {
		if _, ok := record["type"]; !ok {
			record["type"], _ = json.Marshal(kind.String())
		}
		if _, ok := record["t"]; !ok {
			record["t"], _ = json.Marshal(t)
		}
		if raw, err = json.Marshal(record); err != nil {
			return Event{}, fmt.Errorf("encode %s record: %w", kind, err)
		}
	}
	return Event{T: t, Kind: kind, Type: kind.String(), Params: raw}, nil
}

// Bind unmarshals the params record into v.
func (e Event) Bind(v any) error {
	if len(e.Params) == 0 {
		return nil
	}
	return json.Unmarshal(e.Params, v)
}

// Fields returns the params record as a generic map, for rules that inspect
// which keys are present.
func (e Event) Fields() (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if len(e.Params) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(e.Params, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Init is the bootstrap record: the pricing rule to run and the starting
// stats of every player.
type Init struct {
	T           int64                 `json:"t"`
	PricingRule string                `json:"pricingRule"`
	Player      models.PlayerDefaults `json:"plr"`
}

// DecodeInit parses the bootstrap record.
func DecodeInit(data []byte) (Init, error) {
	var raw struct {
		Type        string                `json:"type"`
		T           float64               `json:"t"`
		PricingRule string                `json:"pricingRule"`
		Player      models.PlayerDefaults `json:"plr"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Init{}, fmt.Errorf("decode init record: %w", err)
	}
	if raw.Type != KindInit {
		return Init{}, fmt.Errorf("%w: got type %q", ErrNotInit, raw.Type)
	}
	return Init{T: int64(raw.T), PricingRule: raw.PricingRule, Player: raw.Player}, nil
}

// EncodeInit renders i as a wire Init record.
func EncodeInit(i Init) ([]byte, error) {
	return json.Marshal(struct {
		Type        string                `json:"type"`
		T           int64                 `json:"t"`
		PricingRule string                `json:"pricingRule"`
		Player      models.PlayerDefaults `json:"plr"`
	}{KindInit, i.T, i.PricingRule, i.Player})
}
