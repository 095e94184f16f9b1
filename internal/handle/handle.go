// Package handle exposes the solver over HTTP. It owns the wire shapes and
// the compatibility rules: provider failures ride inside 200 payloads as
// "Error: ..." strings, validation failures map to 400, panics to 500.
package handle

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"solver-relay/internal/solver"
)

// Solver is what the handlers need from the orchestration layer.
type Solver interface {
	Solve(ctx context.Context, domain, question string) (solver.SolveResult, error)
	Chat(ctx context.Context, selector, message, chatContext, domain string) (string, error)
}

type Handle struct {
	svc Solver
	log *slog.Logger
}

func New(svc Solver, log *slog.Logger) *Handle {
	if log == nil {
		log = slog.Default()
	}
	return &Handle{svc: svc, log: log}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeSolverError maps typed orchestration failures onto the historical
// client-error messages; anything unexpected becomes a 500.
func (h *Handle) writeSolverError(w http.ResponseWriter, err error) {
	var serr *solver.Error
	if errors.As(err, &serr) {
		switch serr.Code {
		case solver.ErrorInvalidInput:
			writeError(w, http.StatusBadRequest, "Invalid input")
			return
		case solver.ErrorUnknownProvider:
			writeError(w, http.StatusBadRequest, "Invalid model specified")
			return
		}
	}
	h.log.Error("request failed", "err", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// Test is the liveness probe kept for compatibility with existing callers.
func (h *Handle) Test(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Server is running!"})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
