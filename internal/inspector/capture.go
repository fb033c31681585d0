package inspector

import (
	"bufio"
	"errors"
	"io"
	"time"

	"github.com/danmuck/mcdbg/internal/observability"
	"github.com/danmuck/mcdbg/internal/protocol/frame"
	"github.com/danmuck/mcdbg/internal/protocol/packet"
	"github.com/danmuck/mcdbg/internal/protocol/registry"
	"github.com/danmuck/mcdbg/internal/protocol/session"
	"github.com/rs/zerolog/log"
)

// Entry is one frame of a decoded capture.
type Entry struct {
	Index     int
	Namespace string
	ID        int32
	Size      int
	Consumed  int
	Tree      *packet.Node
	Err       error
}

// DecodeStream reads frames from r and decodes each body with the
// packets of namespace. A packet that fails to decode is recorded in its
// Entry and the stream continues; a framing error stops the stream and
// is returned with the entries read so far.
func DecodeStream(v *registry.Version, namespace string, r io.Reader, limits frame.Limits) ([]Entry, error) {
	if _, err := v.Namespace(namespace); err != nil {
		return nil, err
	}
	tracker, err := session.NewTracker(namespace, nil)
	if err != nil {
		return nil, err
	}
	return DecodeSession(v, tracker, r, limits)
}

// DecodeSession is DecodeStream with the namespace taken from tracker
// before every frame. Decoded packets are fed back to the tracker, so a
// Handshake can switch the rest of the stream to login.
func DecodeSession(v *registry.Version, tracker *session.Tracker, r io.Reader, limits frame.Limits) ([]Entry, error) {
	if _, err := v.Namespace(tracker.Namespace()); err != nil {
		return nil, err
	}
	br, ok := r.(frame.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var entries []Entry
	for i := 0; ; i++ {
		name := tracker.Namespace()
		ns, err := v.Namespace(name)
		if err != nil {
			return entries, err
		}
		f, err := frame.ReadFrame(br, limits)
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			observability.RecordFrame(name, err)
			return entries, err
		}
		observability.RecordFrame(name, nil)

		e := decodeFrame(v, ns, i, f)
		if e.Err == nil {
			moved, ok, err := tracker.Observe(i, e.Tree)
			if err != nil {
				e.Err = err
			} else if ok {
				log.Debug().Int("frame", i).Str("from", moved.From).Str("to", moved.To).Msg("capture namespace changed")
			}
		}
		entries = append(entries, e)
	}
}

func decodeFrame(v *registry.Version, ns *registry.Namespace, index int, f frame.Frame) Entry {
	e := Entry{Index: index, Namespace: ns.Name, ID: f.ID, Size: len(f.Body)}
	p, err := ns.Packet(int(f.ID))
	if err != nil {
		e.Err = err
		observability.RecordDecode(ns.Name, "", len(f.Body), 0, err)
		return e
	}
	start := time.Now()
	cursor := 0
	tree, err := p.Decode(v.Decoder(), f.Body, &cursor)
	observability.RecordDecode(ns.Name, p.Name, len(f.Body), time.Since(start), err)
	e.Tree, e.Err, e.Consumed = tree, err, cursor
	return e
}
