package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/filter"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/pipeline"
)

// Response is the body of a successful layout request.
type Response struct {
	RunID  string         `json:"run_id"`
	Layout graph.Layout   `json:"layout"`
	Report graph.Report   `json:"report"`
	Stats  pipeline.Stats `json:"stats"`
	SVG    string         `json:"svg,omitempty"`
	DOT    string         `json:"dot,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

// apiFormats are the formats a JSON response can carry.
var apiFormats = map[string]bool{
	pipeline.FormatJSON: true,
	pipeline.FormatSVG:  true,
	pipeline.FormatDOT:  true,
}

// postLayout handles POST /api/v1/layout.
func (s *Server) postLayout(w http.ResponseWriter, r *http.Request) {
	opts := s.defaults()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if opts.Dataset == nil {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "dataset is required"))
		return
	}
	opts.Project = ""
	s.run(w, r, opts)
}

// getProjectGraph handles GET /api/v1/projects/{project}/graph.
func (s *Server) getProjectGraph(w http.ResponseWriter, r *http.Request) {
	opts := s.defaults()
	opts.Project = chi.URLParam(r, "project")

	q := r.URL.Query()
	if err := applyQuery(&opts, q); err != nil {
		s.fail(w, r, err)
		return
	}

	if q.Get("format") == pipeline.FormatSVG {
		opts.Formats = []string{pipeline.FormatSVG}
		res, err := s.runner.Execute(r.Context(), opts)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("X-Run-ID", res.RunID)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Artifacts[pipeline.FormatSVG])
		return
	}
	s.run(w, r, opts)
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	for _, f := range opts.Formats {
		if !apiFormats[f] {
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "format %q is not available over the API", f))
			return
		}
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		RunID:  res.RunID,
		Layout: res.Layout,
		Report: res.Report,
		Stats:  res.Stats,
		SVG:    string(res.Artifacts[pipeline.FormatSVG]),
		DOT:    string(res.Artifacts[pipeline.FormatDOT]),
	})
}

// defaults returns a fresh copy of the configured request defaults.
func (s *Server) defaults() pipeline.Options {
	d := s.opts.Defaults
	return pipeline.Options{
		Kinds:        append([]string(nil), d.Kinds...),
		Strength:     d.Strength,
		Reference:    d.Reference,
		GlobalDedupe: d.GlobalDedupe,
		Layout:       d.Layout,
		Width:        d.Width,
		Height:       d.Height,
		RankDir:      d.RankDir,
		Engine:       d.Engine,
		Seed:         d.Seed,
		Detailed:     d.Detailed,
	}
}

// applyQuery overlays query parameters on opts.
func applyQuery(opts *pipeline.Options, q url.Values) error {
	if v := q.Get("layout"); v != "" {
		opts.Layout = v
	}
	if v, ok := q["kinds"]; ok {
		opts.Kinds = nil
		for _, part := range strings.Split(strings.Join(v, ","), ",") {
			if part = strings.TrimSpace(part); part != "" {
				opts.Kinds = append(opts.Kinds, part)
			}
		}
	}
	if q.Has("min") || q.Has("max") {
		rng := filter.DefaultRange()
		if opts.Strength != nil {
			rng = *opts.Strength
		}
		if err := parseInt(q, "min", &rng.Min); err != nil {
			return err
		}
		if err := parseInt(q, "max", &rng.Max); err != nil {
			return err
		}
		opts.Strength = &rng
	}
	if v := q.Get("ref"); v != "" {
		ref, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "ref")
		}
		opts.Reference = ref
	}
	if err := parseFloat(q, "width", &opts.Width); err != nil {
		return err
	}
	if err := parseFloat(q, "height", &opts.Height); err != nil {
		return err
	}
	if v := q.Get("rankdir"); v != "" {
		opts.RankDir = v
	}
	if v := q.Get("engine"); v != "" {
		opts.Engine = v
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "seed")
		}
		opts.Seed = seed
	}
	if err := parseBool(q, "detailed", &opts.Detailed); err != nil {
		return err
	}
	if err := parseBool(q, "global", &opts.GlobalDedupe); err != nil {
		return err
	}
	if v := q.Get("format"); v != "" && v != pipeline.FormatSVG {
		opts.Formats = []string{v}
	}
	return nil
}

func parseInt(q url.Values, key string, dst *int) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", key)
	}
	*dst = n
	return nil
}

func parseBool(q url.Values, key string, dst *bool) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", key)
	}
	*dst = b
	return nil
}

func parseFloat(q url.Values, key string, dst *float64) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", key)
	}
	*dst = f
	return nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	msg := errors.UserMessage(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
