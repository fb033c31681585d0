package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/danmuck/mcdbg/internal/inspector"
	"github.com/danmuck/mcdbg/internal/observability"
	"github.com/danmuck/mcdbg/internal/protocol/protofile"
	"github.com/danmuck/mcdbg/internal/protocol/registry"
	"github.com/danmuck/mcdbg/internal/protocol/session"
	"github.com/rs/zerolog/log"
)

const usage = `usage: mcdbg <command> [flags]

commands:
  parse       check a schema file and print it (-style dump|canonical)
  decode      decode one packet body (-id, -hex or a file, - for stdin)
  capture     decode a stream of length-prefixed frames (-follow tracks state changes)
  namespaces  list namespaces, packets and enums of a schema

common flags: -config file.toml -schema file.proto -namespace name -format text|json|cbor`

var errUsage = errors.New(usage)

func main() {
	observability.InitLogger("mcdbg")
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("mcdbg failed")
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "parse":
		return runParse(rest, stdin, stdout)
	case "decode":
		return runDecode(rest, stdin, stdout)
	case "capture":
		return runCapture(rest, stdin, stdout)
	case "namespaces":
		return runNamespaces(rest, stdout)
	case "help", "-h", "-help", "--help":
		return errUsage
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

type commonFlags struct {
	config    string
	schema    string
	namespace string
	format    string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "optional TOML file with defaults")
	fs.StringVar(&c.schema, "schema", "", "schema (.proto) file")
	fs.StringVar(&c.namespace, "namespace", "", "namespace to decode with")
	fs.StringVar(&c.format, "format", "", "output format: text|json|cbor")
}

// resolve layers the config file (if any) under the flags that were set.
func (c *commonFlags) resolve(fs *flag.FlagSet) (cliConfig, error) {
	cfg := defaultCLIConfig()
	if c.config != "" {
		loaded, err := loadCLIConfig(c.config)
		if err != nil {
			return cliConfig{}, err
		}
		cfg = loaded
	}
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "schema":
			cfg.Schema = c.schema
		case "namespace":
			cfg.Namespace = c.namespace
		case "format":
			cfg.Format, err = parseFormat(c.format)
		}
	})
	return cfg, err
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func loadVersion(cfg cliConfig) (*registry.Version, error) {
	if cfg.Schema == "" {
		return nil, errors.New("no schema given (-schema or schema = in -config)")
	}
	raw, err := os.ReadFile(cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	v, err := registry.Load(string(raw), registry.WithLimits(cfg.Limits))
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", cfg.Schema, err)
	}
	return v, nil
}

// readInput returns the bytes of path, or of stdin for "-" or "".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func runParse(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := newFlagSet("parse")
	style := fs.String("style", "canonical", "output style: canonical|dump|check")
	if err := fs.Parse(args); err != nil {
		return err
	}
	raw, err := readInput(fs.Arg(0), stdin)
	if err != nil {
		return err
	}
	root, err := protofile.Parse(string(raw))
	if err != nil {
		return err
	}
	switch *style {
	case "canonical":
		_, err = io.WriteString(stdout, protofile.Format(root))
	case "dump":
		protofile.Dump(stdout, root)
	case "check":
		_, err = fmt.Fprintf(stdout, "ok: %d top-level items\n", len(root))
	default:
		err = fmt.Errorf("unknown style %q", *style)
	}
	return err
}

func runDecode(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := newFlagSet("decode")
	var common commonFlags
	common.register(fs)
	idFlag := fs.String("id", "", "packet id (decimal or 0x hex)")
	hexBody := fs.String("hex", "", "packet body as hex; spaces allowed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := common.resolve(fs)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(*idFlag, 0, 32)
	if err != nil {
		return fmt.Errorf("bad -id %q: %w", *idFlag, err)
	}

	var body []byte
	if *hexBody != "" {
		body, err = hex.DecodeString(strings.Join(strings.Fields(*hexBody), ""))
	} else {
		body, err = readInput(fs.Arg(0), stdin)
	}
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	v, err := loadVersion(cfg)
	if err != nil {
		return err
	}
	ns, err := v.Namespace(cfg.Namespace)
	if err != nil {
		return err
	}
	p, err := ns.Packet(int(id))
	if err != nil {
		return err
	}
	cursor := 0
	tree, err := p.Decode(v.Decoder(), body, &cursor)
	if err != nil {
		return fmt.Errorf("decode %s/%s: %w", ns.Name, p.Name, err)
	}
	if trailing := len(body) - cursor; trailing > 0 {
		log.Warn().Str("packet", p.Name).Int("trailing", trailing).Msg("bytes left after decode")
	}
	return writeTree(stdout, cfg.Format, tree)
}

func runCapture(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := newFlagSet("capture")
	var common commonFlags
	common.register(fs)
	follow := fs.Bool("follow", false, "switch namespaces on handshake and login success")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := common.resolve(fs)
	if err != nil {
		return err
	}
	v, err := loadVersion(cfg)
	if err != nil {
		return err
	}
	if _, err := v.Namespace(cfg.Namespace); err != nil {
		return err
	}
	var rules []session.Rule
	if *follow {
		rules = session.DefaultRules()
	}
	tracker, err := session.NewTracker(cfg.Namespace, rules)
	if err != nil {
		return err
	}

	var in io.Reader = stdin
	if path := fs.Arg(0); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	entries, streamErr := inspector.DecodeSession(v, tracker, in, cfg.FrameLimits)
	failed := 0
	for _, e := range entries {
		if e.Err != nil {
			failed++
		}
	}
	log.Info().Int("frames", len(entries)).Int("failed", failed).Str("namespace", tracker.Namespace()).Msg("capture decoded")

	summary := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		item := map[string]any{"index": e.Index, "namespace": e.Namespace, "id": e.ID, "size": e.Size}
		if e.Err != nil {
			item["error"] = e.Err.Error()
		} else {
			item["packet"] = e.Tree.Name()
			item["fields"] = e.Tree.Interface()
		}
		summary = append(summary, item)
	}
	err = writeValue(stdout, cfg.Format, summary, func(w io.Writer) error {
		for _, e := range entries {
			fmt.Fprintf(w, "#%d %s id=0x%02x size=%d\n", e.Index, e.Namespace, e.ID, e.Size)
			if e.Err != nil {
				fmt.Fprintf(w, "  error: %v\n", e.Err)
				continue
			}
			if err := writeTree(w, "text", e.Tree); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if streamErr != nil {
		return fmt.Errorf("capture stopped after %d frames: %w", len(entries), streamErr)
	}
	return nil
}

func runNamespaces(args []string, stdout io.Writer) error {
	fs := newFlagSet("namespaces")
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := common.resolve(fs)
	if err != nil {
		return err
	}
	v, err := loadVersion(cfg)
	if err != nil {
		return err
	}

	type packetView struct {
		ID   int    `json:"id" cbor:"id"`
		Name string `json:"name" cbor:"name"`
	}
	view := map[string]any{"protocol": v.Protocol}
	spaces := map[string][]packetView{}
	for _, ns := range v.Namespaces() {
		for _, p := range ns.Packets() {
			spaces[ns.Name] = append(spaces[ns.Name], packetView{ID: p.ID, Name: p.Name})
		}
	}
	view["namespaces"] = spaces
	view["enums"] = v.EnumNames()

	return writeValue(stdout, cfg.Format, view, func(w io.Writer) error {
		fmt.Fprintf(w, "protocol %d\n", v.Protocol)
		for _, ns := range v.Namespaces() {
			fmt.Fprintf(w, "namespace %s (%d packets)\n", ns.Name, ns.Len())
			for _, p := range ns.Packets() {
				fmt.Fprintf(w, "  0x%02x %s (%d fields)\n", p.ID, p.Name, len(p.Definition))
			}
		}
		for _, e := range v.Enums() {
			fmt.Fprintf(w, "enum %s (%d values)\n", e.Name, len(e.Values))
		}
		return nil
	})
}
