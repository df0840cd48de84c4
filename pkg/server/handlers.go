package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	herrors "github.com/vango-dev/htmlfn/internal/errors"
	"github.com/vango-dev/htmlfn/pkg/markup"
	"github.com/vango-dev/htmlfn/pkg/render"
)

// TemplateInfo describes a template in GET /templates.
type TemplateInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"templates": s.renderer.Set().Len(),
	})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	set := s.renderer.Set()
	infos := make([]TemplateInfo, 0, set.Len())
	for _, name := range set.Names() {
		t, err := set.Get(name)
		if err != nil {
			continue
		}
		infos = append(infos, TemplateInfo{Name: t.Name, Title: t.Title, Description: t.Description})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")

	data, err := s.requestContext(w, r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	query := r.URL.Query()
	page := flag(query.Get("page"))

	if page && flag(query.Get("stream")) {
		if _, err := s.renderer.Template(name); err != nil {
			s.writeError(w, r, statusFor(err), err)
			return
		}
		// Status and headers go out with the first flush, so later
		// failures can only be logged.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		sr := render.NewStreamingRenderer(w, s.renderer)
		if err := sr.RenderPage(r.Context(), name, data, render.PageData{}); err != nil {
			s.logger.Error("streaming render failed", "template", name, "error", err)
		}
		return
	}

	var out string
	if page {
		var buf strings.Builder
		err = s.renderer.RenderPage(r.Context(), &buf, name, data, render.PageData{})
		out = buf.String()
	} else {
		out, err = s.renderer.RenderToString(r.Context(), name, data)
	}
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, out)
}

// requestContext builds the render context: the decoded body for POST,
// the query string (minus render options) for GET. An empty request
// yields nil so the template's defaults apply.
func (s *Server) requestContext(w http.ResponseWriter, r *http.Request) (any, error) {
	if r.Method == http.MethodPost {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
		if err != nil {
			return nil, herrors.New("H050").WithDetail(err.Error()).Wrap(err)
		}
		return decodeContext(body)
	}

	values := r.URL.Query()
	data := make(map[string]any, len(values))
	for key, vals := range values {
		if key == "page" || key == "stream" {
			continue
		}
		if len(vals) == 1 {
			data[key] = vals[0]
			continue
		}
		list := make([]any, len(vals))
		for i, v := range vals {
			list[i] = v
		}
		data[key] = list
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// decodeContext parses a YAML or JSON document. An empty body is nil.
func decodeContext(body []byte) (any, error) {
	var data any
	if err := yaml.Unmarshal(body, &data); err != nil {
		return nil, herrors.New("H050").WithDetail(err.Error()).Wrap(err)
	}
	return data, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var he *herrors.Error
	if herrors.As(err, &he) {
		resp.Code = he.Code
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("render failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, resp)
}

// statusFor maps render errors to HTTP status codes.
func statusFor(err error) int {
	var he *herrors.Error
	switch {
	case herrors.Is(err, markup.ErrRenderType), herrors.Is(err, markup.ErrArgumentType):
		return http.StatusUnprocessableEntity
	case herrors.As(err, &he) && he.Code == "H040":
		return http.StatusNotFound
	case herrors.As(err, &he) && he.Category == herrors.CategoryCLI:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func flag(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
