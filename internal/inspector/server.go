package inspector

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/mcdbg/internal/observability"
	"github.com/danmuck/mcdbg/internal/protocol"
	"github.com/danmuck/mcdbg/internal/protocol/frame"
	"github.com/danmuck/mcdbg/internal/protocol/registry"
	"github.com/danmuck/mcdbg/internal/protocol/session"
	"github.com/fxamacker/cbor/v2"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	ServiceVersion = "0.1.0"
	MIMECBOR       = "application/cbor"
)

var ErrBadPacketID = errors.New("inspector: bad packet id")

type ServiceConfig struct {
	Name         string
	Addr         string
	CorsOrigins  []string
	MaxBodyBytes int64
	FrameLimits  frame.Limits
}

type Inspector struct {
	Name     string
	Addr     string
	Appeared time.Time

	cfg     ServiceConfig
	version *registry.Version
	router  *gin.Engine
}

// New builds the gin engine around a loaded registry. Routes are added
// by RegisterRoutes.
func New(cfg ServiceConfig, version *registry.Version) *Inspector {
	if cfg.Name == "" {
		cfg.Name = "mcdbgd"
	}
	if cfg.FrameLimits.MaxFrameBytes <= 0 {
		cfg.FrameLimits = frame.DefaultLimits()
	}
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Inspector{
		Name:     cfg.Name,
		Addr:     cfg.Addr,
		Appeared: time.Now(),
		cfg:      cfg,
		version:  version,
		router:   r,
	}
}

func (i *Inspector) HTTPRouter() *gin.Engine {
	return i.router
}

func (i *Inspector) RegisterRoutes() {
	r := i.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(i.Appeared).String(),
			"service": i.Name,
			"version": ServiceVersion,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/version", func(c *gin.Context) {
		respond(c, http.StatusOK, gin.H{
			"protocol":   i.version.Protocol,
			"namespaces": len(i.version.Namespaces()),
			"enums":      i.version.EnumNames(),
		})
	})

	r.GET("/namespaces", func(c *gin.Context) {
		respond(c, http.StatusOK, gin.H{"namespaces": i.ListNamespaces()})
	})

	r.GET("/namespaces/:namespace/packets", func(c *gin.Context) {
		list, err := i.ListPackets(c.Param("namespace"))
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, gin.H{"namespace": c.Param("namespace"), "packets": list})
	})

	r.POST("/namespaces/:namespace/packets/:id/decode", func(c *gin.Context) {
		id, err := parsePacketID(c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		body, err := i.readBody(c)
		if err != nil {
			fail(c, err)
			return
		}
		res, err := i.DecodePacket(c.Param("namespace"), id, body)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, res)
	})

	r.POST("/namespaces/:namespace/capture", func(c *gin.Context) {
		body, err := i.readBody(c)
		if err != nil {
			fail(c, err)
			return
		}
		ns := c.Param("namespace")
		var entries []Entry
		if follow, _ := strconv.ParseBool(c.Query("follow")); follow {
			tracker, terr := session.NewTracker(ns, session.DefaultRules())
			if terr != nil {
				fail(c, &requestError{status: http.StatusBadRequest, err: terr})
				return
			}
			entries, err = DecodeSession(i.version, tracker, bytes.NewReader(body), i.cfg.FrameLimits)
		} else {
			entries, err = DecodeStream(i.version, ns, bytes.NewReader(body), i.cfg.FrameLimits)
		}
		if err != nil && entries == nil && protocol.KindOf(err) == protocol.KindNotFound {
			fail(c, err)
			return
		}
		out := gin.H{"namespace": ns, "frames": captureView(entries)}
		if err != nil {
			out["error"] = err.Error()
		}
		respond(c, http.StatusOK, out)
	})
}

func (i *Inspector) Serve() error {
	i.RegisterRoutes()
	log.Info().Str("service", i.Name).Str("addr", i.Addr).Int64("protocol", i.version.Protocol).Msg("inspector listening")
	return i.router.Run(i.Addr)
}

type NamespaceInfo struct {
	Name    string `json:"name" cbor:"name"`
	Packets int    `json:"packets" cbor:"packets"`
}

type PacketInfo struct {
	ID     int    `json:"id" cbor:"id"`
	Name   string `json:"name" cbor:"name"`
	Fields int    `json:"fields" cbor:"fields"`
}

// DecodeResult is the response of a single packet decode.
type DecodeResult struct {
	Namespace string `json:"namespace" cbor:"namespace"`
	ID        int    `json:"id" cbor:"id"`
	Packet    string `json:"packet" cbor:"packet"`
	Consumed  int    `json:"consumed" cbor:"consumed"`
	Trailing  int    `json:"trailing" cbor:"trailing"`
	Fields    any    `json:"fields" cbor:"fields"`
}

func (i *Inspector) ListNamespaces() []NamespaceInfo {
	list := make([]NamespaceInfo, 0)
	for _, ns := range i.version.Namespaces() {
		list = append(list, NamespaceInfo{Name: ns.Name, Packets: ns.Len()})
	}
	return list
}

func (i *Inspector) ListPackets(namespace string) ([]PacketInfo, error) {
	ns, err := i.version.Namespace(namespace)
	if err != nil {
		return nil, err
	}
	list := make([]PacketInfo, 0, ns.Len())
	for _, p := range ns.Packets() {
		list = append(list, PacketInfo{ID: p.ID, Name: p.Name, Fields: len(p.Definition)})
	}
	return list, nil
}

// DecodePacket decodes one body and records the outcome.
func (i *Inspector) DecodePacket(namespace string, id int, body []byte) (DecodeResult, error) {
	ns, err := i.version.Namespace(namespace)
	if err != nil {
		return DecodeResult{}, err
	}
	p, err := ns.Packet(id)
	if err != nil {
		observability.RecordDecode(namespace, "", len(body), 0, err)
		return DecodeResult{}, err
	}

	start := time.Now()
	cursor := 0
	tree, err := p.Decode(i.version.Decoder(), body, &cursor)
	observability.RecordDecode(namespace, p.Name, len(body), time.Since(start), err)
	if err != nil {
		log.Debug().Err(err).Str("namespace", namespace).Str("packet", p.Name).Int("bytes", len(body)).Msg("decode failed")
		return DecodeResult{}, err
	}
	return DecodeResult{
		Namespace: namespace,
		ID:        id,
		Packet:    p.Name,
		Consumed:  cursor,
		Trailing:  len(body) - cursor,
		Fields:    tree.Interface(),
	}, nil
}

func (i *Inspector) readBody(c *gin.Context) ([]byte, error) {
	r := io.Reader(c.Request.Body)
	if i.cfg.MaxBodyBytes > 0 {
		r = http.MaxBytesReader(c.Writer, c.Request.Body, i.cfg.MaxBodyBytes)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &requestError{status: http.StatusRequestEntityTooLarge, err: err}
	}
	if c.Query("encoding") != "hex" {
		return raw, nil
	}
	decoded, err := hex.DecodeString(strings.Join(strings.Fields(string(raw)), ""))
	if err != nil {
		return nil, &requestError{status: http.StatusBadRequest, err: fmt.Errorf("bad hex body: %w", err)}
	}
	return decoded, nil
}

func parsePacketID(raw string) (int, error) {
	id, err := strconv.ParseInt(raw, 0, 32)
	if err != nil || id < 0 || id > registry.MaxPacketID {
		return 0, &requestError{status: http.StatusBadRequest, err: fmt.Errorf("%w: %q", ErrBadPacketID, raw)}
	}
	return int(id), nil
}

type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// StatusFor maps an error to the HTTP status the inspector answers with.
func StatusFor(err error) int {
	var re *requestError
	if errors.As(err, &re) {
		return re.status
	}
	switch protocol.KindOf(err) {
	case protocol.KindNotFound:
		return http.StatusNotFound
	case protocol.KindInvalidPacket, protocol.KindInvalidPacketFormat:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	respond(c, StatusFor(err), gin.H{
		"error": err.Error(),
		"kind":  protocol.KindOf(err).String(),
	})
}

// respond writes body as CBOR when the client asks for it, JSON otherwise.
func respond(c *gin.Context, status int, body any) {
	if c.NegotiateFormat(gin.MIMEJSON, MIMECBOR) == MIMECBOR {
		raw, err := cbor.Marshal(body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(status, MIMECBOR, raw)
		return
	}
	c.JSON(status, body)
}

func captureView(entries []Entry) []gin.H {
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		item := gin.H{"index": e.Index, "namespace": e.Namespace, "id": e.ID, "size": e.Size}
		if e.Err != nil {
			item["error"] = e.Err.Error()
			item["kind"] = protocol.KindOf(e.Err).String()
		} else {
			item["packet"] = e.Tree.Name()
			item["fields"] = e.Tree.Interface()
			item["consumed"] = e.Consumed
		}
		out = append(out, item)
	}
	return out
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
