package registry

import (
	"errors"

	"github.com/danmuck/mcdbg/internal/protocol/namehash"
	"github.com/danmuck/mcdbg/internal/protocol/protofile"
	"github.com/danmuck/mcdbg/internal/protocol/serde"
	"github.com/rs/zerolog/log"
)

type options struct {
	limits serde.Limits
}

// Option tunes Build and Load.
type Option func(*options)

// WithLimits sets the decode limits used by Version.Decode.
func WithLimits(l serde.Limits) Option {
	return func(o *options) { o.limits = l }
}

// Load parses text and builds a Version from it. Build errors carry the
// line and column of the offending declaration.
func Load(text string, opts ...Option) (*Version, error) {
	root, err := protofile.Parse(text)
	if err != nil {
		log.Error().Err(err).Msg("registry.Load parse failed")
		return nil, err
	}
	v, err := Build(root, opts...)
	if err != nil {
		var be *BuildError
		if errors.As(err, &be) {
			if line, col, _, ok := protofile.Locate(text, be.Offset); ok {
				be.Line, be.Column = line, col
			}
		}
		return nil, err
	}
	return v, nil
}

// Build walks the top-level declarations of root. Any malformed or
// duplicate declaration aborts the build; no partial Version is returned.
func Build(root protofile.List, opts ...Option) (*Version, error) {
	o := options{limits: serde.DefaultLimits()}
	for _, opt := range opts {
		opt(&o)
	}
	log.Debug().Int("items", len(root)).Msg("registry.Build start")

	b := &builder{v: &Version{
		Root:    root,
		byHash:  make(map[uint64][]*Namespace),
		enums:   make(map[uint64]*Enum),
		decoder: serde.NewDecoder(o.limits),
	}}
	for _, item := range root {
		if err := b.declaration(item); err != nil {
			log.Error().Err(err).Msg("registry.Build failed")
			return nil, err
		}
	}
	log.Info().
		Int64("protocol", b.v.Protocol).
		Int("namespaces", len(b.v.namespaces)).
		Int("enums", len(b.v.enumOrder)).
		Msg("registry.Build ok")
	return b.v, nil
}

type builder struct {
	v          *Version
	sawVersion bool
}

func (b *builder) declaration(item protofile.Node) error {
	obj, ok := item.(*protofile.Object)
	if !ok {
		return buildErrorf(item.Offset(), "expected a declaration object, got %s", item.Type())
	}
	switch obj.NameHash {
	case namehash.VersionInfo:
		return b.versionInfo(obj)
	case namehash.Enums:
		return b.enumBlock(obj)
	case namehash.Namespace:
		return b.namespace(obj)
	default:
		log.Warn().Str("name", obj.Name).Int("offset", obj.Start).Msg("registry.Build skipping unknown declaration")
		return nil
	}
}

func (b *builder) versionInfo(obj *protofile.Object) error {
	if b.sawVersion {
		return buildErrorf(obj.Start, "duplicate version_info declaration")
	}
	b.sawVersion = true
	if obj.AttachedDict == nil {
		return buildErrorf(obj.Start, "version_info must carry a {key: value} dict")
	}
	found := false
	for _, p := range *obj.AttachedDict {
		key, ok := p.Key.(*protofile.String)
		if !ok {
			return buildErrorf(p.Key.Offset(), "version_info keys must be strings, got %s", p.Key.Type())
		}
		if key.Text != "protocol_number" {
			return buildErrorf(key.Start, "unexpected version_info entry %q", key.Text)
		}
		num, ok := p.Value.(*protofile.Number)
		if !ok {
			return buildErrorf(p.Value.Offset(), "protocol_number must be an integer, got %s", p.Value.Type())
		}
		n, err := num.Int()
		if err != nil {
			return buildErrorf(num.Start, "protocol_number must be an integer, got %s", num.Text)
		}
		b.v.Protocol = n
		found = true
	}
	if !found {
		return buildErrorf(obj.Start, "version_info must contain protocol_number")
	}
	log.Debug().Int64("protocol", b.v.Protocol).Msg("registry.Build version_info")
	return nil
}

func (b *builder) enumBlock(obj *protofile.Object) error {
	if obj.AttachedDict == nil {
		return buildErrorf(obj.Start, "enums must carry a {name: enum(){...}} dict")
	}
	for _, p := range *obj.AttachedDict {
		key, ok := p.Key.(*protofile.String)
		if !ok {
			return buildErrorf(p.Key.Offset(), "enum names must be strings, got %s", p.Key.Type())
		}
		name, err := key.Value()
		if err != nil {
			return buildErrorf(key.Start, "bad enum name %q: %v", key.Text, err)
		}
		if err := namehash.Check(name); err != nil {
			return buildErrorf(key.Start, "enum name too long: %v", err)
		}
		body, ok := p.Value.(*protofile.Object)
		if !ok || body.NameHash != namehash.Enum || body.AttachedDict == nil {
			return buildErrorf(p.Value.Offset(), "enum %q must be declared as enum(){int: \"label\", ...}", name)
		}
		hash := namehash.Hash(name)
		if _, dup := b.v.enums[hash]; dup {
			return buildErrorf(key.Start, "duplicate enum %q", name)
		}
		e, err := enumValues(name, body)
		if err != nil {
			return err
		}
		e.Hash = hash
		b.v.enums[hash] = e
		b.v.enumOrder = append(b.v.enumOrder, e)
		log.Debug().Str("enum", name).Int("values", len(e.Values)).Msg("registry.Build enum")
	}
	return nil
}

func enumValues(name string, body *protofile.Object) (*Enum, error) {
	e := &Enum{Name: name, labels: make(map[int64]string)}
	for _, p := range *body.AttachedDict {
		num, ok := p.Key.(*protofile.Number)
		if !ok {
			return nil, buildErrorf(p.Key.Offset(), "enum %q values must be integers, got %s", name, p.Key.Type())
		}
		v, err := num.Int()
		if err != nil {
			return nil, buildErrorf(num.Start, "enum %q value %s is not an integer", name, num.Text)
		}
		lit, ok := p.Value.(*protofile.String)
		if !ok {
			return nil, buildErrorf(p.Value.Offset(), "enum %q labels must be strings, got %s", name, p.Value.Type())
		}
		label, err := lit.Value()
		if err != nil {
			return nil, buildErrorf(lit.Start, "bad enum label %q: %v", lit.Text, err)
		}
		if _, dup := e.labels[v]; dup {
			return nil, buildErrorf(num.Start, "enum %q repeats value %d", name, v)
		}
		e.labels[v] = label
		e.Values = append(e.Values, EnumValue{Value: v, Label: label})
	}
	return e, nil
}

func (b *builder) namespace(obj *protofile.Object) error {
	lit, ok := obj.StringArg(0)
	if !ok {
		return buildErrorf(obj.Start, "namespace must be named by a string argument")
	}
	name, err := lit.Value()
	if err != nil {
		return buildErrorf(lit.Start, "bad namespace name %q: %v", lit.Text, err)
	}
	if err := namehash.Check(name); err != nil {
		return buildErrorf(lit.Start, "namespace name too long: %v", err)
	}
	if _, err := b.v.Namespace(name); err == nil {
		return buildErrorf(lit.Start, "duplicate namespace %q", name)
	}
	if obj.AttachedList == nil {
		return buildErrorf(obj.Start, "namespace %q must carry a [packet(...)] list", name)
	}

	ns := &Namespace{Name: name, Hash: namehash.Hash(name)}
	for _, item := range *obj.AttachedList {
		if err := declarePacket(ns, item); err != nil {
			return err
		}
	}
	b.v.namespaces = append(b.v.namespaces, ns)
	b.v.byHash[ns.Hash] = append(b.v.byHash[ns.Hash], ns)
	log.Debug().Str("namespace", name).Int("packets", ns.count).Msg("registry.Build namespace")
	return nil
}

func declarePacket(ns *Namespace, item protofile.Node) error {
	obj, ok := item.(*protofile.Object)
	if !ok || obj.NameHash != namehash.Packet {
		return buildErrorf(item.Offset(), "namespace %q may only contain packet(id, \"name\")[...] declarations", ns.Name)
	}
	num, ok := obj.NumberArg(0)
	if !ok {
		return buildErrorf(obj.Start, "packet id must be a number")
	}
	id, err := num.Int()
	if err != nil {
		return buildErrorf(num.Start, "packet id %s must be an integer", num.Text)
	}
	if id < 0 || id > MaxPacketID {
		return buildErrorf(num.Start, "packet id %d out of range 0..%d", id, MaxPacketID)
	}
	lit, ok := obj.StringArg(1)
	if !ok {
		return buildErrorf(obj.Start, "packet %d must be named by a string second argument", id)
	}
	name, err := lit.Value()
	if err != nil {
		return buildErrorf(lit.Start, "bad packet name %q: %v", lit.Text, err)
	}
	if err := namehash.Check(name); err != nil {
		return buildErrorf(lit.Start, "packet name too long: %v", err)
	}
	if obj.AttachedList == nil {
		return buildErrorf(obj.Start, "packet %q must carry a [field, ...] list", name)
	}
	if prev := ns.packets[id]; prev != nil {
		return buildErrorf(num.Start, "duplicate packet id %d in namespace %q (%q and %q)", id, ns.Name, prev.Name, name)
	}
	ns.packets[id] = &Packet{ID: int(id), Name: name, Definition: *obj.AttachedList, Offset: obj.Start}
	ns.count++
	return nil
}
