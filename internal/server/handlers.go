package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/n8l/dungeonmap/pkg/buildinfo"
	derrors "github.com/n8l/dungeonmap/pkg/errors"
	dio "github.com/n8l/dungeonmap/pkg/io"
	"github.com/n8l/dungeonmap/pkg/observability"
	"github.com/n8l/dungeonmap/pkg/pipeline"
	"github.com/n8l/dungeonmap/pkg/storage"
)

// createRequest is the body of POST /api/v1/dungeons. All fields are
// optional.
type createRequest struct {
	MaxRooms int    `json:"max_rooms,omitempty"`
	Seed     uint64 `json:"seed,omitempty"`
	Fit      bool   `json:"fit,omitempty"`
	Fitter   string `json:"fitter,omitempty"` // implies fit
}

type listResponse struct {
	IDs []string `json:"ids"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    derrors.Code `json:"code"`
	Field   string       `json:"field,omitempty"`
	Message string       `json:"message"`
}

var contentTypes = map[string]string{
	pipeline.FormatJSON:     "application/json",
	pipeline.FormatPNG:      "image/png",
	pipeline.FormatSVG:      "image/svg+xml",
	pipeline.FormatText:     "text/plain; charset=utf-8",
	pipeline.FormatDOT:      "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatGraphSVG: "image/svg+xml",
	pipeline.FormatGraphPNG: "image/png",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	opts := s.Defaults
	if req.MaxRooms != 0 {
		opts.MaxRooms = req.MaxRooms
	}
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}
	if req.Fitter != "" {
		opts.Fitter = req.Fitter
	}
	if err := opts.ValidateForGenerate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := opts.ValidateForFit(); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	d, err := s.Runner.Generate(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc := dio.NewDocument(d, nil)
	if req.Fit || req.Fitter != "" {
		layout, err := s.Runner.Fit(ctx, d, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		doc.SetLayout(layout.Fitter, layout.Grid, layout.Bounds)
	}

	if _, err := s.Store.Put(ctx, doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/dungeons/"+doc.ID)
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, listResponse{IDs: ids})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := derrors.ValidateDungeonID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	opts := s.Defaults
	if f := r.URL.Query().Get("fitter"); f != "" {
		opts.Fitter = f
	}
	if err := opts.ValidateForFit(); err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := doc.Dungeon()
	if err != nil {
		s.writeError(w, r, derrors.Wrap(derrors.ErrCodeInternal, err, "stored dungeon is inconsistent"))
		return
	}
	layout, err := s.Runner.Fit(r.Context(), d, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc.SetLayout(layout.Fitter, layout.Grid, layout.Bounds)
	if _, err := s.Store.Put(r.Context(), doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.Defaults
	opts.Formats = []string{format}
	if cs := r.URL.Query().Get("cell_size"); cs != "" {
		n, err := strconv.Atoi(cs)
		if err != nil {
			s.writeError(w, r, derrors.Invalid("cell_size", "must be an integer, got %q", cs))
			return
		}
		if err := derrors.ValidateCellSize(n); err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.CellSize = n
	}
	opts.Detailed = r.URL.Query().Get("detailed") == "true"

	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	out, err := s.Runner.RenderDocument(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out[format])
}

// load fetches the document named by the {id} parameter, writing an error
// response when it cannot.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (*dio.Document, bool) {
	id := chi.URLParam(r, "id")
	if err := derrors.ValidateDungeonID(id); err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	doc, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return doc, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.Logger.Warn("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := classify(err)
	status := derrors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		s.Logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	detail := errorDetail{Code: code, Message: err.Error()}
	if e, ok := derrors.As(err); ok {
		detail.Message, detail.Field = e.Message, e.Field
	}
	s.writeJSON(w, status, errorBody{Error: detail})
}

// classify maps package errors onto API error codes.
func classify(err error) derrors.Code {
	if code := derrors.GetCode(err); code != "" {
		return code
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return derrors.ErrCodeDungeonNotFound
	case errors.Is(err, storage.ErrInvalidID):
		return derrors.ErrCodeInvalidID
	case errors.Is(err, dio.ErrNoLayout):
		return derrors.ErrCodeLayoutNotFound
	}
	return derrors.ErrCodeInternal
}
