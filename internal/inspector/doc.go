// Package inspector serves a built protocol registry over HTTP.
//
// Routes:
//
//	GET  /health
//	GET  /version
//	GET  /namespaces
//	GET  /namespaces/:namespace/packets
//	POST /namespaces/:namespace/packets/:id/decode   raw packet body
//	POST /namespaces/:namespace/capture              framed stream; ?follow=true tracks state changes
//	GET  /metrics
//
// Bodies may be sent hex encoded with ?encoding=hex. Responses are JSON
// unless the request accepts application/cbor.
package inspector
