package inspector

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/mcdbg/internal/protocol/frame"
	"github.com/danmuck/mcdbg/internal/protocol/registry"
	"github.com/danmuck/mcdbg/internal/testutil/testlog"
	"github.com/fxamacker/cbor/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const testSchema = `
version_info(){ "protocol_number": 763 }
enums(){ "Intent": enum(){ 1: "status", 2: "login" } }
namespace("handshake")[
    packet(0, "Handshake")[
        varint("protocol_version"), string("server_address", 255),
        ushort("server_port"), varint_enum("next_state", "Intent"),
    ]
]
namespace("status")[
    packet(0, "StatusRequest")[],
    packet(1, "PingRequest")[ long("payload") ],
]
`

var handshakeBody = []byte{0x0f, 0x09, 'l', 'o', 'c', 'a', 'l', 'h', 'o', 's', 't', 0x63, 0xdd, 0x01}

func newTestInspector(t *testing.T) *Inspector {
	t.Helper()
	gin.SetMode(gin.TestMode)
	v, err := registry.Load(testSchema)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	i := New(ServiceConfig{Name: "mcdbgd-test", MaxBodyBytes: 1024}, v)
	i.RegisterRoutes()
	return i
}

func do(t *testing.T, i *Inspector, method, path string, body []byte, accept string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rr := httptest.NewRecorder()
	i.HTTPRouter().ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rr.Body.String())
	}
	return body
}

func TestHealthAndVersion(t *testing.T) {
	testlog.Start(t)
	i := newTestInspector(t)

	rr := do(t, i, http.MethodGet, "/health", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := decodeJSON(t, rr); body["service"] != "mcdbgd-test" {
		t.Fatalf("unexpected health body: %#v", body)
	}

	body := decodeJSON(t, do(t, i, http.MethodGet, "/version", nil, ""))
	if body["protocol"] != float64(763) || body["namespaces"] != float64(2) {
		t.Fatalf("unexpected version body: %#v", body)
	}
}

func TestListNamespacesAndPackets(t *testing.T) {
	testlog.Start(t)
	i := newTestInspector(t)

	body := decodeJSON(t, do(t, i, http.MethodGet, "/namespaces", nil, ""))
	list, _ := body["namespaces"].([]any)
	if len(list) != 2 {
		t.Fatalf("expected 2 namespaces, got %#v", body)
	}

	body = decodeJSON(t, do(t, i, http.MethodGet, "/namespaces/status/packets", nil, ""))
	packets, _ := body["packets"].([]any)
	if len(packets) != 2 {
		t.Fatalf("expected 2 packets, got %#v", body)
	}
	ping := packets[1].(map[string]any)
	if ping["name"] != "PingRequest" || ping["fields"] != float64(1) {
		t.Fatalf("unexpected packet info %#v", ping)
	}

	rr := do(t, i, http.MethodGet, "/namespaces/play/packets", nil, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if body := decodeJSON(t, rr); body["kind"] != "not_found" {
		t.Fatalf("expected not_found kind, got %#v", body)
	}
}

func TestDecodeRoute(t *testing.T) {
	testlog.Start(t)
	i := newTestInspector(t)

	rr := do(t, i, http.MethodPost, "/namespaces/handshake/packets/0/decode", handshakeBody, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	body := decodeJSON(t, rr)
	fields := body["fields"].(map[string]any)
	if body["packet"] != "Handshake" || fields["server_address"] != "localhost" || fields["server_port"] != float64(25565) {
		t.Fatalf("unexpected decode body: %#v", body)
	}
	if body["trailing"] != float64(0) {
		t.Fatalf("expected no trailing bytes, got %v", body["trailing"])
	}
	log.Debug().Msgf("inspector/http: decode status=%d packet=%v", rr.Code, body["packet"])
}

func TestDecodeRouteHexAndCBOR(t *testing.T) {
	testlog.Start(t)
	i := newTestInspector(t)

	hexBody := []byte("0f 09 6c6f63616c686f7374\n63dd 01")
	rr := do(t, i, http.MethodPost, "/namespaces/handshake/packets/0x00/decode?encoding=hex", hexBody, MIMECBOR)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, MIMECBOR) {
		t.Fatalf("expected cbor content type, got %q", ct)
	}
	var res DecodeResult
	if err := cbor.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("cbor decode: %v", err)
	}
	if res.Packet != "Handshake" || res.Consumed != len(handshakeBody) {
		t.Fatalf("unexpected cbor result %+v", res)
	}
}

func TestDecodeRouteErrors(t *testing.T) {
	testlog.Start(t)
	i := newTestInspector(t)

	cases := []struct {
		path   string
		body   []byte
		status int
		kind   string
	}{
		{"/namespaces/handshake/packets/0/decode", handshakeBody[:5], http.StatusUnprocessableEntity, "invalid_packet"},
		{"/namespaces/handshake/packets/7/decode", handshakeBody, http.StatusNotFound, "not_found"},
		{"/namespaces/play/packets/0/decode", handshakeBody, http.StatusNotFound, "not_found"},
		{"/namespaces/handshake/packets/abc/decode", handshakeBody, http.StatusBadRequest, "unknown"},
		{"/namespaces/handshake/packets/0/decode?encoding=hex", []byte("zz"), http.StatusBadRequest, "unknown"},
		{"/namespaces/handshake/packets/0/decode", bytes.Repeat([]byte{1}, 2048), http.StatusRequestEntityTooLarge, "unknown"},
	}
	for _, tc := range cases {
		rr := do(t, i, http.MethodPost, tc.path, tc.body, "")
		if rr.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d body=%s", tc.path, tc.status, rr.Code, rr.Body.String())
		}
		if body := decodeJSON(t, rr); body["kind"] != tc.kind {
			t.Fatalf("%s: expected kind %q, got %#v", tc.path, tc.kind, body)
		}
	}
}

func TestCaptureRoute(t *testing.T) {
	testlog.Start(t)
	i := newTestInspector(t)

	var stream bytes.Buffer
	frames := []frame.Frame{
		{ID: 1, Body: []byte{0, 0, 0, 0, 0, 0, 0, 7}},
		{ID: 1, Body: []byte{0, 0}},
		{ID: 9, Body: nil},
		{ID: 0, Body: nil},
	}
	for _, f := range frames {
		if err := frame.WriteFrame(&stream, f, frame.DefaultLimits()); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}

	rr := do(t, i, http.MethodPost, "/namespaces/status/capture", stream.Bytes(), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	body := decodeJSON(t, rr)
	got, _ := body["frames"].([]any)
	if len(got) != 4 {
		t.Fatalf("expected 4 frames, got %#v", body)
	}
	first := got[0].(map[string]any)
	if first["packet"] != "PingRequest" || first["fields"].(map[string]any)["payload"] != float64(7) {
		t.Fatalf("unexpected first frame %#v", first)
	}
	if second := got[1].(map[string]any); second["kind"] != "invalid_packet" {
		t.Fatalf("expected short ping to fail, got %#v", second)
	}
	if third := got[2].(map[string]any); third["kind"] != "not_found" {
		t.Fatalf("expected unknown id to be not_found, got %#v", third)
	}
	if fourth := got[3].(map[string]any); fourth["packet"] != "StatusRequest" {
		t.Fatalf("expected empty status request, got %#v", fourth)
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("expected clean stream, got error %v", body["error"])
	}

	truncated := append(stream.Bytes(), 0x05, 0x01)
	body = decodeJSON(t, do(t, i, http.MethodPost, "/namespaces/status/capture", truncated, ""))
	if _, ok := body["error"]; !ok {
		t.Fatalf("expected framing error to be reported")
	}

	if rr := do(t, i, http.MethodPost, "/namespaces/play/capture", stream.Bytes(), ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown namespace, got %d", rr.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	testlog.Start(t)
	i := newTestInspector(t)

	do(t, i, http.MethodPost, "/namespaces/handshake/packets/0/decode", handshakeBody, "")
	rr := do(t, i, http.MethodGet, "/metrics", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "mcdbg_decode_packets_total") {
		t.Fatalf("expected decode counter in metrics output")
	}
}

func TestDecodeRouteNonFiniteDouble(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	v, err := registry.Load(`namespace("p")[ packet(0, "Reading")[ double("d"), float("f") ] ]`)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	i := New(ServiceConfig{Name: "mcdbgd-test", MaxBodyBytes: 1024}, v)
	i.RegisterRoutes()

	body := []byte{0x7f, 0xf8, 0, 0, 0, 0, 0, 0, 0xff, 0x80, 0, 0}
	rr := do(t, i, http.MethodPost, "/namespaces/p/packets/0/decode", body, "")
	if rr.Code != http.StatusOK || rr.Body.Len() == 0 {
		t.Fatalf("expected 200 with a body, got %d body=%q", rr.Code, rr.Body.String())
	}
	fields := decodeJSON(t, rr)["fields"].(map[string]any)
	if fields["d"] != "NaN" || fields["f"] != "-Inf" {
		t.Fatalf("expected NaN and -Inf as text, got %#v", fields)
	}
}
