package session

import (
	"errors"
	"math"
	"testing"

	"github.com/danmuck/mcdbg/internal/protocol"
	"github.com/danmuck/mcdbg/internal/protocol/packet"
	"github.com/danmuck/mcdbg/internal/testutil/testlog"
)

func handshake(next int32) *packet.Node {
	root := packet.NewBundle("Handshake")
	root.Bundle().Set(packet.NewVarint("protocol_version", 763))
	root.Bundle().Set(packet.NewVarint("next_state", next))
	return root
}

func TestHandshakeSelectsNamespace(t *testing.T) {
	testlog.Start(t)
	for next, want := range map[int32]string{1: "status_serverbound", 2: "login_serverbound"} {
		tr, err := NewTracker("handshake", DefaultRules())
		if err != nil {
			t.Fatalf("new tracker: %v", err)
		}
		moved, ok, err := tr.Observe(0, handshake(next))
		if err != nil || !ok {
			t.Fatalf("expected transition for next_state %d, got ok=%v err=%v", next, ok, err)
		}
		if tr.Namespace() != want || moved.To != want || moved.From != "handshake" {
			t.Fatalf("expected %s, got %s (%+v)", want, tr.Namespace(), moved)
		}
	}
}

func TestUnknownValueKeepsNamespace(t *testing.T) {
	testlog.Start(t)
	tr, err := NewTracker("handshake", DefaultRules())
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	_, ok, err := tr.Observe(0, handshake(9))
	if ok || !errors.Is(err, ErrNoTransition) || !errors.Is(err, protocol.ErrInvalidPacket) {
		t.Fatalf("expected no-transition invalid packet error, got ok=%v err=%v", ok, err)
	}
	if tr.Namespace() != "handshake" {
		t.Fatalf("expected tracker to stay in handshake, got %s", tr.Namespace())
	}
}

func TestFixedTransitionAndHistory(t *testing.T) {
	testlog.Start(t)
	tr, err := NewTracker("login_clientbound", DefaultRules())
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	if _, ok, _ := tr.Observe(0, packet.NewBundle("SetCompression")); ok {
		t.Fatalf("expected SetCompression not to move the tracker")
	}
	if _, ok, err := tr.Observe(1, packet.NewBundle("LoginSuccess")); !ok || err != nil {
		t.Fatalf("expected LoginSuccess to move the tracker, got ok=%v err=%v", ok, err)
	}
	if tr.Namespace() != "play_clientbound" {
		t.Fatalf("expected play_clientbound, got %s", tr.Namespace())
	}
	// Rules are keyed by namespace; LoginSuccess in play is just a packet.
	if _, ok, _ := tr.Observe(2, packet.NewBundle("LoginSuccess")); ok {
		t.Fatalf("expected no rule outside login_clientbound")
	}
	hist := tr.History()
	if len(hist) != 1 || hist[0].Index != 1 || hist[0].Packet != "LoginSuccess" {
		t.Fatalf("unexpected history %+v", hist)
	}
}

func TestFieldErrors(t *testing.T) {
	testlog.Start(t)
	tr, err := NewTracker("handshake", DefaultRules())
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	if _, _, err := tr.Observe(0, packet.NewBundle("Handshake")); !errors.Is(err, protocol.ErrInvalidPacket) {
		t.Fatalf("expected missing field error, got %v", err)
	}
	wrong := packet.NewBundle("Handshake")
	wrong.Bundle().Set(packet.NewString("next_state", []byte("login")))
	if _, _, err := tr.Observe(0, wrong); !errors.Is(err, protocol.ErrInvalidPacket) {
		t.Fatalf("expected non-integer field error, got %v", err)
	}
	if _, ok, err := tr.Observe(0, nil); ok || err != nil {
		t.Fatalf("expected nil tree to be ignored, got ok=%v err=%v", ok, err)
	}
}

func TestRuleValidation(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name string
		rule Rule
	}{
		{name: "from", rule: Rule{Packet: "P", To: "x"}},
		{name: "packet", rule: Rule{From: "a", To: "x"}},
		{name: "target", rule: Rule{From: "a", Packet: "P"}},
		{name: "values", rule: Rule{From: "a", Packet: "P", Field: "f"}},
		{name: "empty value", rule: Rule{From: "a", Packet: "P", Field: "f", Values: map[int64]string{1: " "}}},
	}
	for _, tc := range cases {
		if _, err := NewTracker("a", []Rule{tc.rule}); !errors.Is(err, ErrBadRule) {
			t.Fatalf("%s: expected ErrBadRule, got %v", tc.name, err)
		}
	}
	if _, err := NewTracker("", nil); !errors.Is(err, ErrBadRule) {
		t.Fatalf("expected empty start to fail, got %v", err)
	}
}

func TestUlongFieldSelectsNamespace(t *testing.T) {
	testlog.Start(t)
	rules := []Rule{{From: "a", Packet: "Switch", Field: "target", Values: map[int64]string{7: "b"}}}
	tr, err := NewTracker("a", rules)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	huge := packet.NewBundle("Switch")
	huge.Bundle().Set(packet.NewUlong("target", math.MaxUint64))
	if _, _, err := tr.Observe(0, huge); !errors.Is(err, protocol.ErrInvalidPacket) {
		t.Fatalf("expected out-of-range ulong to fail, got %v", err)
	}
	sw := packet.NewBundle("Switch")
	sw.Bundle().Set(packet.NewUlong("target", 7))
	if _, ok, err := tr.Observe(1, sw); !ok || err != nil {
		t.Fatalf("expected ulong field to move the tracker, got ok=%v err=%v", ok, err)
	}
	if tr.Namespace() != "b" {
		t.Fatalf("expected b, got %s", tr.Namespace())
	}
}
