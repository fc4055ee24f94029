package api

import (
	"net/http"

	service "github.com/Erokopotomus/survivor-fantasy-tracker/internal/app"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
)

// RulesHandler handles rule catalog management.
type RulesHandler struct {
	svc *service.Service
}

// NewRulesHandler creates a new rules handler.
func NewRulesHandler(svc *service.Service) *RulesHandler {
	return &RulesHandler{svc: svc}
}

// HandleListRules handles GET /api/v1/seasons/{seasonID}/rules. The
// active=true query narrows to the catalog view the scoring path uses.
func (h *RulesHandler) HandleListRules(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var rules []model.ScoringRule
	if r.URL.Query().Get("active") == "true" {
		rules, err = h.svc.Store().ActiveRules(r.Context(), seasonID)
	} else {
		rules, err = h.svc.Store().Rules(r.Context(), seasonID)
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

type ruleRequest struct {
	RuleKey     string           `json:"rule_key"`
	RuleName    string           `json:"rule_name"`
	Points      float64          `json:"points"`
	Multiplier  model.Multiplier `json:"multiplier"`
	Phase       model.Phase      `json:"phase"`
	Description string           `json:"description"`
	IsActive    *bool            `json:"is_active"`
	SortOrder   int              `json:"sort_order"`
}

// HandleCreateRule handles POST /api/v1/seasons/{seasonID}/rules.
func (h *RulesHandler) HandleCreateRule(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req ruleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.RuleKey == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if _, err := h.svc.Store().Season(r.Context(), seasonID); err != nil {
		writeStoreError(w, err)
		return
	}

	rule := model.ScoringRule{
		SeasonID:    seasonID,
		RuleKey:     req.RuleKey,
		RuleName:    req.RuleName,
		Points:      req.Points,
		Multiplier:  req.Multiplier,
		Phase:       req.Phase,
		Description: req.Description,
		IsActive:    true,
		SortOrder:   req.SortOrder,
	}
	if rule.Phase == "" {
		rule.Phase = model.AnyPhase
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if err := h.svc.CreateRule(r.Context(), &rule); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

// HandleUpdateRule handles PUT /api/v1/rules/{ruleID}. The rule key and
// season binding stay fixed; everything else is editable. Cached scores are
// untouched until an explicit rescore.
func (h *RulesHandler) HandleUpdateRule(w http.ResponseWriter, r *http.Request) {
	ruleID, err := pathID(r, "ruleID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req ruleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	rule, err := h.svc.Store().Rule(r.Context(), ruleID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if req.RuleName != "" {
		rule.RuleName = req.RuleName
	}
	rule.Points = req.Points
	if req.Multiplier != "" {
		rule.Multiplier = req.Multiplier
	}
	if req.Phase != "" {
		rule.Phase = req.Phase
	}
	if req.Description != "" {
		rule.Description = req.Description
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.SortOrder != 0 {
		rule.SortOrder = req.SortOrder
	}
	if err := h.svc.UpdateRule(r.Context(), &rule); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// HandleSeedRules handles POST /api/v1/seasons/{seasonID}/rules/seed,
// installing the canonical default catalog.
func (h *RulesHandler) HandleSeedRules(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if _, err := h.svc.Store().Season(r.Context(), seasonID); err != nil {
		writeStoreError(w, err)
		return
	}
	seeded, err := h.svc.SeedDefaultRules(r.Context(), seasonID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, seeded)
}

type copyRulesRequest struct {
	FromSeasonID int64 `json:"from_season_id"`
}

// HandleCopyRules handles POST /api/v1/seasons/{seasonID}/rules/copy.
func (h *RulesHandler) HandleCopyRules(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req copyRulesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.FromSeasonID < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if _, err := h.svc.Store().Season(r.Context(), seasonID); err != nil {
		writeStoreError(w, err)
		return
	}
	copied, err := h.svc.CopyRules(r.Context(), req.FromSeasonID, seasonID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, copied)
}
