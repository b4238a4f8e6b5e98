package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cardstack/pkg/analysis"
	"github.com/matzehuels/cardstack/pkg/buildinfo"
	"github.com/matzehuels/cardstack/pkg/cache"
	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/errors"
	"github.com/matzehuels/cardstack/pkg/generator"
	"github.com/matzehuels/cardstack/pkg/history"
	"github.com/matzehuels/cardstack/pkg/render/schematic"
	"github.com/matzehuels/cardstack/pkg/render/sink"
)

// Endpoints lists the finalize endpoints reported by /api/status.
var Endpoints = []string{"/api/generate_encryption", "/api/history", "/api/status"}

// missingCircuitData is the 400 message for a finalize request without cards.
const missingCircuitData = "Missing required circuit data"

// =============================================================================
// Finalize
// =============================================================================

type finalizeRequest struct {
	Cards     json.RawMessage `json:"cards"`
	Timestamp string          `json:"timestamp"`
}

type finalizeResponse struct {
	Algorithm string           `json:"algorithm"`
	Analysis  analysis.Summary `json:"analysis"`
}

func (s *Server) handleGenerateEncryption(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Cards) == 0 || string(req.Cards) == "null" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: missingCircuitData})
		return
	}
	var cards []circuit.Card
	if err := json.Unmarshal(req.Cards, &cards); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode cards"))
		return
	}

	ctx := r.Context()
	data, hit, err := cache.Memoize(ctx, s.cache, s.keyer.AlgorithmKey(cards), s.ttl, func() ([]byte, error) {
		doc, summary, err := analysis.Generate(cards)
		if err != nil {
			return nil, err
		}
		return json.Marshal(finalizeResponse{Algorithm: doc, Analysis: summary})
	})
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "generate algorithm"))
		return
	}

	var resp finalizeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "decode cached algorithm"))
		return
	}
	s.record(ctx, len(cards), resp)
	s.logger.Debug("generated algorithm",
		"cards", len(cards),
		"complexity", resp.Analysis.ComplexityScore,
		"cached", hit,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// record appends a history entry. Store failures are logged, the request
// still succeeds.
func (s *Server) record(ctx context.Context, cards int, resp finalizeResponse) {
	s.metrics.observeAlgorithm(resp.Analysis.ComplexityScore)
	rec := history.NewRecord(s.now(), cards, resp.Analysis.ComplexityScore, len(resp.Algorithm))
	if err := s.history.Add(ctx, rec); err != nil {
		s.logger.Warn("record history", "err", err)
	}
}

// =============================================================================
// History and status
// =============================================================================

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.history.List(r.Context())
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "list history"))
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleHistoryRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "online",
		"version":   buildinfo.Version,
		"endpoints": Endpoints,
	})
}

// =============================================================================
// Presets and generation
// =============================================================================

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"cards": s.library.All()})
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	c, err := s.library.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleGenerateCard decodes generator parameters over the defaults, so an
// empty body yields the default card. ?seed= makes the result reproducible,
// ?save=true adds it to the preset library.
func (s *Server) handleGenerateCard(w http.ResponseWriter, r *http.Request) {
	p := generator.DefaultParams()
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil && !stderrors.Is(err, io.EOF) {
		s.writeError(w, decodeError(err))
		return
	}
	if err := p.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	var opts []generator.Option
	if v := r.URL.Query().Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidParams, "seed must be an unsigned integer, got %q", v))
			return
		}
		opts = append(opts, generator.WithSeed(seed))
	}
	card := generator.Generate(p, opts...)

	status := http.StatusOK
	if r.URL.Query().Get("save") == "true" {
		if err := s.library.Add(card); err != nil {
			s.writeError(w, err)
			return
		}
		status = http.StatusCreated
	}
	writeJSON(w, status, card)
}

// =============================================================================
// Scene rendering
// =============================================================================

// Scene formats accepted by /api/scene.
const (
	FormatJSON      = "json"
	FormatSVG       = "svg"
	FormatPNG       = "png"
	FormatText      = "text"
	FormatDOT       = "dot"
	FormatSchematic = "schematic"
)

var contentTypes = map[string]string{
	FormatJSON:      "application/json",
	FormatSVG:       "image/svg+xml",
	FormatPNG:       "image/png",
	FormatText:      "text/plain; charset=utf-8",
	FormatDOT:       "text/vnd.graphviz; charset=utf-8",
	FormatSchematic: "image/svg+xml",
}

const maxSceneSize = 4096

type sceneRequest struct {
	Cards  []circuit.Card `json:"cards"`
	Format string         `json:"format"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Links  bool           `json:"links"`
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	var req sceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, decodeError(err))
		return
	}
	if req.Format == "" {
		req.Format = FormatJSON
	}
	contentType, ok := contentTypes[req.Format]
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown scene format %q", req.Format))
		return
	}
	if req.Width < 0 || req.Height < 0 || req.Width > maxSceneSize || req.Height > maxSceneSize {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "scene size must be within 0..%d", maxSceneSize))
		return
	}

	ctx := r.Context()
	key := s.keyer.SceneKey(req.Cards, cache.SceneKeyOpts{
		Format: req.Format, Width: req.Width, Height: req.Height, Links: req.Links,
	})
	data, _, err := cache.Memoize(ctx, s.cache, key, s.ttl, func() ([]byte, error) {
		return renderScene(ctx, req)
	})
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render %s", req.Format))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func renderScene(ctx context.Context, req sceneRequest) ([]byte, error) {
	switch req.Format {
	case FormatDOT:
		return []byte(schematic.ToDOT(req.Cards, schematic.Options{})), nil
	case FormatSchematic:
		return schematic.RenderSVG(ctx, schematic.ToDOT(req.Cards, schematic.Options{}))
	}

	sc := sink.NewScene(req.Cards)
	var opts []sink.Option
	if req.Width > 0 && req.Height > 0 {
		opts = append(opts, sink.WithSize(req.Width, req.Height))
	}
	if req.Links {
		opts = append(opts, sink.WithLinks())
	}
	switch req.Format {
	case FormatSVG:
		return sink.RenderSVG(sc, opts...), nil
	case FormatPNG:
		return sink.RenderPNG(sc, opts...)
	case FormatText:
		return []byte(sink.RenderText(sc, opts...)), nil
	default:
		return sink.RenderJSON(sc)
	}
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Error: errors.UserMessage(err), Code: string(code)})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidParams, errors.ErrCodeInvalidVariant, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeCardNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decodeError(err error) error {
	return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
}
