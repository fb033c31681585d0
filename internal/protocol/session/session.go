package session

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/danmuck/mcdbg/internal/protocol"
	"github.com/danmuck/mcdbg/internal/protocol/packet"
)

var (
	ErrBadRule      = errors.New("session: bad transition rule")
	ErrNoTransition = errors.New("session: no transition for value")
)

// Rule moves the tracker out of From when a packet named Packet decodes
// there. With Field set, the integer value of that field selects the next
// namespace from Values; otherwise the tracker moves to To.
type Rule struct {
	From   string
	Packet string
	Field  string
	Values map[int64]string
	To     string
}

func (r Rule) Validate() error {
	if strings.TrimSpace(r.From) == "" {
		return fmt.Errorf("%w: missing from", ErrBadRule)
	}
	if strings.TrimSpace(r.Packet) == "" {
		return fmt.Errorf("%w: %s: missing packet", ErrBadRule, r.From)
	}
	if r.Field == "" {
		if strings.TrimSpace(r.To) == "" {
			return fmt.Errorf("%w: %s/%s: needs to or field", ErrBadRule, r.From, r.Packet)
		}
		return nil
	}
	if len(r.Values) == 0 {
		return fmt.Errorf("%w: %s/%s: field %q has no values", ErrBadRule, r.From, r.Packet, r.Field)
	}
	for v, to := range r.Values {
		if strings.TrimSpace(to) == "" {
			return fmt.Errorf("%w: %s/%s: value %d has no namespace", ErrBadRule, r.From, r.Packet, v)
		}
	}
	return nil
}

// DefaultRules covers the state changes of protocol 763 as named in
// protocols/763.proto. Serverbound captures start in "handshake",
// clientbound login captures in "login_clientbound".
func DefaultRules() []Rule {
	return []Rule{
		{
			From:   "handshake",
			Packet: "Handshake",
			Field:  "next_state",
			Values: map[int64]string{1: "status_serverbound", 2: "login_serverbound"},
		},
		{From: "login_clientbound", Packet: "LoginSuccess", To: "play_clientbound"},
	}
}

// Transition records one namespace change.
type Transition struct {
	Index  int
	Packet string
	From   string
	To     string
}

// Tracker is not safe for concurrent use; one tracker follows one stream.
type Tracker struct {
	current string
	rules   map[string][]Rule
	history []Transition
}

func NewTracker(start string, rules []Rule) (*Tracker, error) {
	if strings.TrimSpace(start) == "" {
		return nil, fmt.Errorf("%w: empty start namespace", ErrBadRule)
	}
	t := &Tracker{current: start, rules: make(map[string][]Rule, len(rules))}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		t.rules[r.From] = append(t.rules[r.From], r)
	}
	return t, nil
}

// Namespace is the namespace the next frame should be decoded with.
func (t *Tracker) Namespace() string { return t.current }

func (t *Tracker) History() []Transition {
	out := make([]Transition, len(t.history))
	copy(out, t.history)
	return out
}

// Observe applies the first rule matching tree in the current namespace.
// On error the tracker stays where it was.
func (t *Tracker) Observe(index int, tree *packet.Node) (Transition, bool, error) {
	if tree == nil {
		return Transition{}, false, nil
	}
	for _, r := range t.rules[t.current] {
		if r.Packet != tree.Name() {
			continue
		}
		to := r.To
		if r.Field != "" {
			v, err := fieldInt(tree, r.Field)
			if err != nil {
				return Transition{}, false, err
			}
			next, ok := r.Values[v]
			if !ok {
				return Transition{}, false, protocol.Wrap(protocol.KindInvalidPacket, "session.Observe", r.Field, ErrNoTransition,
					"%s/%s: %s = %d, want one of %v", t.current, r.Packet, r.Field, v, valueKeys(r.Values))
			}
			to = next
		}
		tr := Transition{Index: index, Packet: tree.Name(), From: t.current, To: to}
		t.current = to
		t.history = append(t.history, tr)
		return tr, true, nil
	}
	return Transition{}, false, nil
}

func fieldInt(tree *packet.Node, name string) (int64, error) {
	if tree.Kind() != packet.KindBundle {
		return 0, protocol.Errorf(protocol.KindInvalidPacket, "session.Observe", "%s is a %s, not a bundle", tree.Name(), tree.Kind())
	}
	field, ok := tree.Bundle().Lookup(name)
	if !ok {
		return 0, protocol.Errorf(protocol.KindInvalidPacket, "session.Observe", "%s has no field %q", tree.Name(), name)
	}
	switch v := field.Value().(type) {
	case packet.Varint:
		return int64(v), nil
	case packet.Varlong:
		return int64(v), nil
	case packet.Byte:
		return int64(v), nil
	case packet.Ubyte:
		return int64(v), nil
	case packet.Short:
		return int64(v), nil
	case packet.Ushort:
		return int64(v), nil
	case packet.Int:
		return int64(v), nil
	case packet.Uint:
		return int64(v), nil
	case packet.Long:
		return int64(v), nil
	case packet.Ulong:
		if uint64(v) > math.MaxInt64 {
			return 0, protocol.Errorf(protocol.KindInvalidPacket, "session.Observe", "field %q = %d does not fit an int64", name, uint64(v))
		}
		return int64(v), nil
	default:
		return 0, protocol.Errorf(protocol.KindInvalidPacket, "session.Observe", "field %q is %s, not an integer", name, field.Kind())
	}
}

func valueKeys(m map[int64]string) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
