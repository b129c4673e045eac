package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/featlint/internal/apperr"
	"github.com/starford/featlint/internal/engine"
	"github.com/starford/featlint/internal/scan"
)

// Handler holds API route handlers.
type Handler struct {
	eng  *engine.Engine
	root string
}

// NewHandler creates a new Handler scanning under root.
func NewHandler(eng *engine.Engine, root string) *Handler {
	return &Handler{eng: eng, root: root}
}

// RuleInfo describes one catalog rule.
type RuleInfo struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// ListRules handles GET /api/rules.
func (h *Handler) ListRules(w http.ResponseWriter, _ *http.Request) {
	rules := h.eng.Rules().Rules()
	out := make([]RuleInfo, 0, len(rules))
	for _, r := range rules {
		roles := make([]string, 0, len(r.Roles))
		for _, role := range r.Roles {
			roles = append(roles, role.String())
		}
		out = append(out, RuleInfo{Name: r.Name, Roles: roles})
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": out})
}

type lintRequest struct {
	Feature string `json:"feature"`
}

// RuleOutcome is one rule's result within a directory.
type RuleOutcome struct {
	Rule   string `json:"rule"`
	Passed bool   `json:"passed"`
}

// DirReport is one subdirectory's block of the lint response.
type DirReport struct {
	Role     string        `json:"role"`
	Path     string        `json:"path"`
	NoRules  bool          `json:"no_rules"`
	Outcomes []RuleOutcome `json:"outcomes"`
}

// LintResponse is the full lint response.
type LintResponse struct {
	Feature string      `json:"feature"`
	Dirs    []DirReport `json:"dirs"`
}

// Lint handles POST /api/lint.
func (h *Handler) Lint(w http.ResponseWriter, r *http.Request) {
	var req lintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Feature == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("feature is required"))
		return
	}

	results, err := h.eng.Collect(h.root, req.Feature)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
			return
		}
		slog.Error("lint failed",
			slog.String("feature", req.Feature),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	writeJSON(w, http.StatusOK, toResponse(req.Feature, results))
}

func toResponse(feature string, results []*scan.Result) LintResponse {
	resp := LintResponse{Feature: feature, Dirs: make([]DirReport, 0, len(results))}
	for _, res := range results {
		d := DirReport{
			Role:     res.Subdir.Role.String(),
			Path:     res.Subdir.Path,
			NoRules:  res.NoRules(),
			Outcomes: []RuleOutcome{},
		}
		for _, rl := range res.Rules {
			d.Outcomes = append(d.Outcomes, RuleOutcome{
				Rule:   rl.Name,
				Passed: res.Outcomes[rl.Name],
			})
		}
		resp.Dirs = append(resp.Dirs, d)
	}
	return resp
}
