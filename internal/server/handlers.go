package server

import (
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/partree/pkg/buildinfo"
	"github.com/matzehuels/partree/pkg/core/tree"
	"github.com/matzehuels/partree/pkg/errors"
	"github.com/matzehuels/partree/pkg/history"
	"github.com/matzehuels/partree/pkg/pipeline"
)

// MaxHistoryLimit bounds the limit query parameter.
const MaxHistoryLimit = 500

// treeRequest is the body of POST /api/v1/trees.
type treeRequest struct {
	Expression string            `json:"expression"`
	Formats    []string          `json:"formats,omitempty"`
	CellWidth  int               `json:"cell_width,omitempty"`
	Detailed   bool              `json:"detailed,omitempty"`
	Headers    bool              `json:"headers,omitempty"`
	Evaluator  string            `json:"evaluator,omitempty"`
	Precision  uint              `json:"precision,omitempty"`
	Vars       map[string]string `json:"vars,omitempty"`
}

// treeResponse is the answer to POST /api/v1/trees. Binary artifacts (png,
// pdf) are base64 encoded.
type treeResponse struct {
	ID        string            `json:"id"`
	Tree      string            `json:"tree"`
	Grid      [][]string        `json:"grid"`
	Lines     []string          `json:"lines"`
	Value     string            `json:"value"`
	EvalError bool              `json:"eval_error,omitempty"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
	Stats     treeStats         `json:"stats"`
}

type treeStats struct {
	Nodes  int  `json:"nodes"`
	Leaves int  `json:"leaves"`
	Depth  int  `json:"depth"`
	Width  int  `json:"width"`
	Cached bool `json:"cached"`
}

type errorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	Detail    string      `json:"detail,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) handleCreateTree(w http.ResponseWriter, r *http.Request) {
	var req treeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body: %v", err))
		return
	}

	opts := s.options(req)
	res, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.record(r, history.NewEntry(req.Expression, "", nil, "", err))
		s.cfg.Logger.Debug("tree request failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeError(w, withRequestID(err, r))
		return
	}

	entry := history.NewEntry(req.Expression, res.Root.String(), res.Lines, res.Value, nil)
	s.record(r, entry)

	resp := treeResponse{
		ID:        entry.ID,
		Tree:      res.Root.String(),
		Grid:      res.Grid.Rows,
		Lines:     res.Lines,
		Value:     res.Value,
		EvalError: res.EvalErr != nil,
		Artifacts: encodeArtifacts(res.Artifacts),
		Stats: treeStats{
			Nodes:  res.Stats.Nodes,
			Leaves: res.Stats.Leaves,
			Depth:  res.Stats.Depth,
			Width:  res.Stats.Width,
			Cached: res.CacheInfo.EvalHit || res.CacheInfo.RenderHit,
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

// options merges a request with the server's defaults.
func (s *Server) options(req treeRequest) pipeline.Options {
	opts := pipeline.Options{
		Expression: req.Expression,
		Formats:    req.Formats,
		CellWidth:  req.CellWidth,
		Detailed:   req.Detailed,
		Headers:    req.Headers,
		Evaluator:  req.Evaluator,
		Precision:  req.Precision,
		Vars:       req.Vars,
		Plain:      true,
	}
	if opts.Evaluator == "" {
		opts.Evaluator = s.cfg.Evaluator
	}
	if opts.Precision == 0 {
		opts.Precision = s.cfg.Precision
	}
	if opts.CellWidth == 0 {
		opts.CellWidth = s.cfg.CellWidth
	}
	if len(opts.Vars) == 0 {
		opts.Vars = s.cfg.Vars
	}
	return opts
}

func (s *Server) record(r *http.Request, e *history.Entry) {
	if err := s.cfg.History.Add(r.Context(), e); err != nil {
		s.cfg.Logger.Warn("history write failed", "error", err)
	}
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := history.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxHistoryLimit {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be an integer between 1 and %d", MaxHistoryLimit))
			return
		}
		limit = n
	}

	entries, err := s.cfg.History.List(r.Context(), limit)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeHistory, err, "history unavailable"))
		return
	}
	if entries == nil {
		entries = []*history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func encodeArtifacts(in map[string][]byte) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for format, data := range in {
		switch format {
		case pipeline.FormatPNG, pipeline.FormatPDF:
			out[format] = base64.StdEncoding.EncodeToString(data)
		default:
			out[format] = string(data)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// requestError carries the request ID alongside a pipeline error.
type requestError struct {
	err error
	id  string
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func withRequestID(err error, r *http.Request) error {
	return &requestError{err: err, id: middleware.GetReqID(r.Context())}
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{
		Code:    errors.GetCode(err),
		Message: errors.UserMessage(err),
	}
	if resp.Code == "" {
		resp.Code = errors.ErrCodeInternal
		resp.Message = "internal error"
	}
	var ie *tree.InvalidExpressionError
	if stderrors.As(err, &ie) {
		resp.Detail = ie.Detail()
	}
	var re *requestError
	if stderrors.As(err, &re) {
		resp.RequestID = re.id
	}
	writeJSON(w, errors.HTTPStatus(err), resp)
}

func notFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}
