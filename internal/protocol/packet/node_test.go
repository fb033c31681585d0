package packet

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/danmuck/mcdbg/internal/protocol/namehash"
	"github.com/danmuck/mcdbg/internal/testutil/testlog"
	"github.com/google/uuid"
)

func expectKindPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if _, ok := r.(*KindError); !ok {
			t.Fatalf("expected *KindError panic, got %v", r)
		}
	}()
	fn()
}

func TestNodeHashTracksName(t *testing.T) {
	testlog.Start(t)

	n := NewVarint("protocol_version", 763)
	if n.Hash() != namehash.Hash("protocol_version") {
		t.Fatalf("expected hash of name, got %#x", n.Hash())
	}
	n.Rename("next_state")
	if n.Name() != "next_state" || n.Hash() != namehash.Hash("next_state") {
		t.Fatalf("expected renamed node, got %q %#x", n.Name(), n.Hash())
	}

	long := strings.Repeat("a", namehash.MaxNameLen+10)
	n.Rename(long)
	if len(n.Name()) != namehash.MaxNameLen {
		t.Fatalf("expected name clamped to %d, got %d", namehash.MaxNameLen, len(n.Name()))
	}
	if n.Hash() != namehash.Hash(long) {
		t.Fatalf("expected clamped name to hash like the full name")
	}
}

func TestTypedAccessors(t *testing.T) {
	testlog.Start(t)

	if NewBool("b", true).Bool() != true {
		t.Fatalf("expected bool true")
	}
	if NewByte("b", -3).Byte() != -3 {
		t.Fatalf("expected byte -3")
	}
	if NewUshort("p", 25565).Ushort() != 25565 {
		t.Fatalf("expected port 25565")
	}
	if NewVarlong("l", -1).Varlong() != -1 {
		t.Fatalf("expected varlong -1")
	}
	if got := NewString("s", []byte("localhost")).Text(); got != "localhost" {
		t.Fatalf("expected localhost, got %q", got)
	}
	pos := Position{X: -1, Y: 64, Z: 33554431}
	if NewPosition("pos", pos).Position() != pos {
		t.Fatalf("expected position round trip")
	}

	n := NewInt("i", 7)
	n.Set(Int(9))
	if n.Int() != 9 {
		t.Fatalf("expected 9, got %d", n.Int())
	}
	expectKindPanic(t, func() { n.Set(Long(9)) })
	expectKindPanic(t, func() { n.Varint() })
	expectKindPanic(t, func() { NewBundle("b").List() })
}

func TestBundleSetReplacesByHash(t *testing.T) {
	testlog.Start(t)

	root := NewBundle("Handshake")
	b := root.Bundle()
	b.Set(NewVarint("protocol_version", 763))
	b.Set(NewString("server_address", []byte("localhost")))
	b.Set(NewVarint("protocol_version", 764))

	if b.Len() != 2 {
		t.Fatalf("expected 2 children, got %d", b.Len())
	}
	got, ok := b.Lookup("protocol_version")
	if !ok || got.Varint() != 764 {
		t.Fatalf("expected replaced value 764, got %v", got)
	}
	if first := b.Nodes()[0]; first.Name() != "protocol_version" {
		t.Fatalf("expected replacement to keep position, got %q", first.Name())
	}
	if _, ok := b.Get(namehash.Hash("missing")); ok {
		t.Fatalf("expected missing lookup to fail")
	}
}

func TestRenameBeforeBundleInsert(t *testing.T) {
	testlog.Start(t)

	b := NewBundle("").Bundle()
	child := NewVarint("", 5).Rename("next_state")
	b.Set(child)
	got, ok := b.Get(namehash.Hash("next_state"))
	if !ok || got != child {
		t.Fatalf("expected renamed child under new hash")
	}
}

func TestListCapacity(t *testing.T) {
	testlog.Start(t)

	l := NewListCap("items", 2).List()
	for i := 0; i < 2; i++ {
		if err := l.Append(NewVarint("", int32(i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := l.Append(NewVarint("", 2)); !errors.Is(err, ErrListFull) {
		t.Fatalf("expected ErrListFull, got %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", l.Len())
	}
	if item, ok := l.At(1); !ok || item.Varint() != 1 {
		t.Fatalf("expected item 1")
	}
	if _, ok := l.At(2); ok {
		t.Fatalf("expected out of range lookup to fail")
	}
	if NewList("x").List().Cap() != DefaultListCap {
		t.Fatalf("expected default cap %d", DefaultListCap)
	}
}

func TestUUIDText(t *testing.T) {
	testlog.Start(t)

	id := uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5")
	u := UUIDFrom(id)
	if u.High != 0x069a79f444e94726 || u.Low != 0xa5befca90e38aaf5 {
		t.Fatalf("expected split halves, got %#x %#x", u.High, u.Low)
	}
	if u.String() != id.String() {
		t.Fatalf("expected %s, got %s", id, u)
	}
}

func TestDumpAndJSON(t *testing.T) {
	testlog.Start(t)

	root := NewBundle("Handshake")
	b := root.Bundle()
	b.Set(NewVarint("protocol_version", 15))
	b.Set(NewString("server_address", []byte("localhost")))
	items := NewList("items")
	_ = items.List().Append(NewAngle("", 64))
	b.Set(items)

	out := Sprint(root)
	for _, want := range []string{
		"Handshake (BUNDLE, 3 fields)",
		"  protocol_version (VARINT) = 15",
		`  server_address (STRING) = "localhost"`,
		"    <unnamed> (ANGLE) = 64 (90.00 deg)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected dump to contain %q, got:\n%s", want, out)
		}
	}

	raw, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	const want = `{"items":[64],"protocol_version":15,"server_address":"localhost"}`
	if string(raw) != want {
		t.Fatalf("expected %s, got %s", want, raw)
	}
}

func TestNonFiniteFloatsExportAsText(t *testing.T) {
	testlog.Start(t)
	root := NewBundle("Floats")
	root.Bundle().Set(NewDouble("nan", math.NaN()))
	root.Bundle().Set(NewDouble("up", math.Inf(1)))
	root.Bundle().Set(NewFloat("down", float32(math.Inf(-1))))
	root.Bundle().Set(NewFloat("plain", 1.5))

	raw, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("expected non-finite floats to marshal, got %v", err)
	}
	want := `{"down":"-Inf","nan":"NaN","plain":1.5,"up":"+Inf"}`
	if string(raw) != want {
		t.Fatalf("expected %s, got %s", want, raw)
	}
}
