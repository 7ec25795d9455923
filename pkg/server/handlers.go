package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/kubetopo/pkg/diagram"
	"github.com/matzehuels/kubetopo/pkg/errors"
	"github.com/matzehuels/kubetopo/pkg/pipeline"
	"github.com/matzehuels/kubetopo/pkg/topology"
)

// Request is the body of the layout and render endpoints.
type Request struct {
	Graph   *topology.Graph  `json:"graph"`
	Options pipeline.Options `json:"options"`
}

// LayoutResponse is the body answered by POST /api/v1/layout.
type LayoutResponse struct {
	RequestID string          `json:"request_id"`
	Cached    bool            `json:"cached"`
	Diagram   diagram.Diagram `json:"diagram"`
}

// RenderResponse is the body answered by POST /api/v1/render. Artifacts
// are base64 encoded by encoding/json.
type RenderResponse struct {
	RequestID string            `json:"request_id"`
	RunID     string            `json:"run_id"`
	GraphHash string            `json:"graph_hash"`
	Diagram   diagram.Diagram   `json:"diagram"`
	Artifacts map[string][]byte `json:"artifacts"`
	Stats     Stats             `json:"stats"`
	Cache     CacheInfo         `json:"cache"`
}

// Stats mirrors pipeline.Stats with durations in milliseconds.
type Stats struct {
	Nodes        int   `json:"nodes"`
	Edges        int   `json:"edges"`
	Surviving    int   `json:"surviving"`
	Sections     int   `json:"sections"`
	LayoutMillis int64 `json:"layout_ms"`
	RenderMillis int64 `json:"render_ms"`
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	Layout bool `json:"layout"`
	Render bool `json:"render"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), req.Graph, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{
		RequestID: RequestID(r.Context()),
		Cached:    hit,
		Diagram:   d,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), req.Graph, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{
		RequestID: RequestID(r.Context()),
		RunID:     res.RunID,
		GraphHash: res.GraphHash,
		Diagram:   res.Diagram,
		Artifacts: res.Artifacts,
		Stats: Stats{
			Nodes:        res.Stats.NodeCount,
			Edges:        res.Stats.EdgeCount,
			Surviving:    res.Stats.Surviving,
			Sections:     res.Stats.SectionCount,
			LayoutMillis: res.Stats.LayoutTime.Milliseconds(),
			RenderMillis: res.Stats.RenderTime.Milliseconds(),
		},
		Cache: CacheInfo{Layout: res.CacheInfo.LayoutHit, Render: res.CacheInfo.RenderHit},
	})
}

func (s *Server) decode(r *http.Request) (Request, error) {
	req := Request{Options: s.baseOptions()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return req, errors.Wrap(errors.ErrCodeTooLarge, err, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed request body")
	}
	if req.Graph == nil {
		return req, errors.New(errors.ErrCodeInvalidInput, "request has no graph")
	}
	req.Options.Logger = s.logger.With("request", RequestID(r.Context()))
	return req, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	id := RequestID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", id, "code", code, "err", err)
	} else {
		s.logger.Warn("request rejected", "id", id, "code", code, "err", err)
	}
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   errors.UserMessage(err),
		RequestID: id,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
