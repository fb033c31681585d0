package inspector

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/danmuck/mcdbg/internal/protocol"
	"github.com/danmuck/mcdbg/internal/protocol/frame"
	"github.com/danmuck/mcdbg/internal/protocol/registry"
	"github.com/danmuck/mcdbg/internal/protocol/session"
	"github.com/danmuck/mcdbg/internal/testutil/testlog"
)

const sessionSchema = `
version_info(){ "protocol_number": 763 }
enums(){ "Intent": enum(){ 1: "status", 2: "login" } }
namespace("handshake")[
    packet(0, "Handshake")[
        varint("protocol_version"), string("server_address", 255),
        ushort("server_port"), varint_enum("next_state", "Intent"),
    ]
]
namespace("status_serverbound")[ packet(1, "PingRequest")[ long("payload") ] ]
namespace("login_serverbound")[ packet(0, "LoginStart")[ string("name", 16) ] ]
`

func writeFrames(t *testing.T, frames ...frame.Frame) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, f := range frames {
		if err := frame.WriteFrame(&buf, f, frame.DefaultLimits()); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}
	return buf.Bytes()
}

func loginHandshake() []byte {
	body := append([]byte(nil), handshakeBody...)
	body[len(body)-1] = 0x02
	return body
}

func TestDecodeSessionFollowsHandshake(t *testing.T) {
	testlog.Start(t)
	v, err := registry.Load(sessionSchema)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	stream := writeFrames(t,
		frame.Frame{ID: 0, Body: loginHandshake()},
		frame.Frame{ID: 0, Body: []byte{0x05, 'S', 't', 'e', 'v', 'e'}},
	)
	tracker, err := session.NewTracker("handshake", session.DefaultRules())
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	entries, err := DecodeSession(v, tracker, bytes.NewReader(stream), frame.DefaultLimits())
	if err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Namespace != "handshake" || entries[1].Namespace != "login_serverbound" {
		t.Fatalf("expected handshake then login, got %s then %s", entries[0].Namespace, entries[1].Namespace)
	}
	if entries[1].Err != nil || entries[1].Tree.Name() != "LoginStart" {
		t.Fatalf("expected LoginStart, got %+v", entries[1])
	}
	if tracker.Namespace() != "login_serverbound" {
		t.Fatalf("expected tracker in login_serverbound, got %s", tracker.Namespace())
	}
}

func TestDecodeStreamStaysInNamespace(t *testing.T) {
	testlog.Start(t)
	v, err := registry.Load(sessionSchema)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	stream := writeFrames(t,
		frame.Frame{ID: 0, Body: loginHandshake()},
		frame.Frame{ID: 0, Body: loginHandshake()},
	)
	entries, err := DecodeStream(v, "handshake", bytes.NewReader(stream), frame.DefaultLimits())
	if err != nil {
		t.Fatalf("decode stream: %v", err)
	}
	for _, e := range entries {
		if e.Namespace != "handshake" || e.Err != nil {
			t.Fatalf("expected both frames decoded as handshake, got %+v", e)
		}
	}

	if _, err := DecodeStream(v, "play", bytes.NewReader(stream), frame.DefaultLimits()); !errors.Is(err, protocol.ErrNotFound) {
		t.Fatalf("expected unknown namespace to be not found, got %v", err)
	}
}

func TestDecodeSessionBadTransitionValue(t *testing.T) {
	testlog.Start(t)
	v, err := registry.Load(sessionSchema)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	body := loginHandshake()
	body[len(body)-1] = 0x07
	stream := writeFrames(t, frame.Frame{ID: 0, Body: body}, frame.Frame{ID: 0, Body: handshakeBody})
	tracker, _ := session.NewTracker("handshake", session.DefaultRules())
	entries, err := DecodeSession(v, tracker, bytes.NewReader(stream), frame.DefaultLimits())
	if err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if !errors.Is(entries[0].Err, session.ErrNoTransition) {
		t.Fatalf("expected first frame to carry the transition error, got %v", entries[0].Err)
	}
	if entries[1].Namespace != "handshake" {
		t.Fatalf("expected stream to stay in handshake, got %s", entries[1].Namespace)
	}
}

func TestCaptureRouteFollow(t *testing.T) {
	testlog.Start(t)
	i := newTestInspector(t)
	stream := writeFrames(t, frame.Frame{ID: 0, Body: handshakeBody}, frame.Frame{ID: 1, Body: make([]byte, 8)})

	// The test schema names its status namespace "status", so following
	// the handshake leads nowhere and the stream stops after one frame.
	rr := do(t, i, http.MethodPost, "/namespaces/handshake/capture?follow=true", stream, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	body := decodeJSON(t, rr)
	frames, _ := body["frames"].([]any)
	if len(frames) != 1 {
		t.Fatalf("expected one frame before the stream stopped, got %#v", body)
	}
	if _, ok := body["error"]; !ok {
		t.Fatalf("expected missing namespace to be reported, got %#v", body)
	}
}
