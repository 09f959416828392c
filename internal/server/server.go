// Package server exposes string-art generation over HTTP, streaming progress
// as newline-delimited JSON.
package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"

	"stria/internal/generator"
	"stria/internal/report"
)

// MaxUploadBytes bounds the size of an uploaded image.
const MaxUploadBytes = 32 << 20

// Options configures the HTTP server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	Defaults       generator.Params
	Limits         generator.Limits
}

// DefaultOptions returns the options used by stringartd when no flags are given.
func DefaultOptions() Options {
	return Options{
		Addr:           ":5000",
		AllowedOrigins: []string{"*"},
		Defaults:       generator.DefaultParams(),
		Limits:         generator.DefaultLimits(),
	}
}

// Handler returns the API routes wrapped in CORS handling.
func Handler(opts Options) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", generateHandler(opts.Defaults, opts.Limits))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok\n")
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	})
	return c.Handler(mux)
}

// New returns an http.Server for opts. Writes have a long timeout because a
// run streams for as long as the greedy loop takes.
func New(opts Options) *http.Server {
	return &http.Server{
		Addr:              opts.Addr,
		Handler:           Handler(opts),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      600 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// formInt parses an optional integer form field. An absent or empty field
// yields def; anything else must be a base-10 integer.
func formInt(r *http.Request, name string, def int) (int, error) {
	q := r.FormValue(name)
	if q == "" {
		return def, nil
	}
	v, err := strconv.Atoi(q)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", generator.ErrInvalidParameter, name, q)
	}
	return v, nil
}

// formParams reads n_nails, max_lines and min_distance, falling back to
// defaults for absent fields, and checks the result against limits.
func formParams(r *http.Request, defaults generator.Params, limits generator.Limits) (generator.Params, error) {
	var p generator.Params
	var err error
	if p.Nails, err = formInt(r, "n_nails", defaults.Nails); err != nil {
		return p, err
	}
	if p.MaxLines, err = formInt(r, "max_lines", defaults.MaxLines); err != nil {
		return p, err
	}
	if p.MinDistance, err = formInt(r, "min_distance", defaults.MinDistance); err != nil {
		return p, err
	}
	return p, p.ValidateWithin(limits)
}

// generateHandler accepts a multipart upload with an "image" file and
// optional n_nails, max_lines and min_distance fields, and streams the run.
// Malformed or out-of-bounds parameters are rejected before any image work.
func generateHandler(defaults generator.Params, limits generator.Limits) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
		if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "No image provided")
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "failed to read upload: "+err.Error())
			return
		}

		params, err := formParams(r, defaults, limits)
		if err != nil {
			log.Printf("generate: %s rejected: %v", header.Filename, err)
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("generate: %s (%d bytes) %s", header.Filename, len(data), params)

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)

		out := report.NewNDJSONWriter(w)
		start := time.Now()
		rep, err := report.Run(r.Context(), report.Request{Image: data, Params: params}, out.Emit)
		switch {
		case err == nil:
			log.Printf("generate: %s done, %d lines in %s", header.Filename, rep.Result.Lines, time.Since(start).Round(time.Millisecond))
		case errors.Is(err, report.ErrConsumerGone) || r.Context().Err() != nil:
			log.Printf("generate: %s abandoned by client: %v", header.Filename, err)
		default:
			log.Printf("generate: %s failed: %v", header.Filename, err)
		}
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	report.NewNDJSONWriter(w).Emit(report.ErrorEvent{Type: report.EventError, Error: msg})
}
