// Package server exposes a template Renderer over HTTP.
//
// Routes:
//
//	GET  /healthz            liveness probe
//	GET  /templates          template names, titles and descriptions as JSON
//	GET  /render/{name}      render with the query string as context
//	POST /render/{name}      render with a JSON or YAML body as context
//	GET  /metrics            Prometheus metrics (when enabled)
//	GET  /preview/ws         websocket live preview (when enabled)
//
// Render requests accept ?page=1 to wrap the output in a full HTML
// document and ?stream=1 to flush the head before the body is rendered.
//
// Errors are returned as JSON objects with "error" and "code" fields.
// Unknown templates are 404, unrenderable context is 422 and malformed
// request bodies are 400.
//
// # Live Preview
//
// A preview client sends JSON messages over the websocket:
//
//	{"id": "1", "document": "body: {tag: b, children: hi}", "context": {}}
//	{"id": "2", "template": "index", "context": {"user": "Ada"}}
//
// and receives one reply per message:
//
//	{"id": "1", "type": "html", "html": "<b>hi</b>"}
//	{"id": "2", "type": "error", "error": "...", "code": "H040"}
package server
