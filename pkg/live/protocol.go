package live

import (
	"encoding/json"
	"strconv"

	"github.com/vango-dev/elements/internal/errors"
	"github.com/vango-dev/elements/pkg/dom"
)

// Message types.
const (
	TypeInit    = "init"
	TypePatches = "patches"
	TypeError   = "error"
	TypeEvent   = "event"
	TypeAttr    = "attr"
)

// Patch is one DOM operation for the client to apply.
type Patch struct {
	Op     string `json:"op"`
	Target uint64 `json:"target"`
	Parent uint64 `json:"parent,omitempty"`
	Index  int    `json:"index,omitempty"`
	Before uint64 `json:"before,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
	HTML   string `json:"html,omitempty"`
}

// ServerMessage is a message sent to the client.
type ServerMessage struct {
	Type     string  `json:"type"`
	Session  string  `json:"session,omitempty"`
	Seq      uint64  `json:"seq,omitempty"`
	Patches  []Patch `json:"patches,omitempty"`
	HTML     string  `json:"html,omitempty"`
	Body     uint64  `json:"body,omitempty"`
	Document uint64  `json:"document,omitempty"`
	Code     string  `json:"code,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// ClientMessage is a message received from the client. Value is nil for an
// attribute removal.
type ClientMessage struct {
	Type   string  `json:"type"`
	Target string  `json:"target"`
	Event  string  `json:"event,omitempty"`
	Key    string  `json:"key,omitempty"`
	Value  *string `json:"value,omitempty"`
}

var opNames = map[dom.MutationOp]string{
	dom.MutationSetText:      "setText",
	dom.MutationSetAttr:      "setAttr",
	dom.MutationRemoveAttr:   "removeAttr",
	dom.MutationInsertNode:   "insertNode",
	dom.MutationRemoveNode:   "removeNode",
	dom.MutationMoveNode:     "moveNode",
	dom.MutationAttachShadow: "attachShadow",
	dom.MutationAdoptSheet:   "adoptSheet",
	dom.MutationSetSheet:     "setSheet",
}

// PatchesFrom converts a mutation log into patches. Unknown operations are
// skipped.
func PatchesFrom(muts []dom.Mutation) []Patch {
	patches := make([]Patch, 0, len(muts))
	for _, m := range muts {
		op, ok := opNames[m.Op]
		if !ok {
			continue
		}
		patches = append(patches, Patch{
			Op:     op,
			Target: m.Target,
			Parent: m.Parent,
			Index:  m.Index,
			Before: m.Before,
			Key:    m.Key,
			Value:  m.Value,
			HTML:   m.HTML,
		})
	}
	return patches
}

// DecodeClientMessage parses and validates a client message. Failures are
// E109 errors.
func DecodeClientMessage(data []byte) (*ClientMessage, uint64, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, 0, errors.New(errors.ErrLiveProtocol.Code).Wrap(err)
	}
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrLiveProtocol.Code).WithDetailf(format, args...)
	}

	target, err := strconv.ParseUint(msg.Target, 10, 64)
	if err != nil || target == 0 {
		return nil, 0, invalid("bad target %q", msg.Target)
	}
	switch msg.Type {
	case TypeEvent:
		if msg.Event == "" {
			return nil, 0, invalid("event message without event type")
		}
	case TypeAttr:
		if msg.Key == "" {
			return nil, 0, invalid("attr message without key")
		}
	default:
		return nil, 0, invalid("unknown message type %q", msg.Type)
	}
	return &msg, target, nil
}
