package services

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SkillGapEndpoints struct {
	skillGaps *SkillGapService
	logger    *zap.Logger
}

func NewSkillGapEndpoints(skillGaps *SkillGapService, logger *zap.Logger) *SkillGapEndpoints {
	return &SkillGapEndpoints{skillGaps: skillGaps, logger: logger}
}

type AnalyzeSkillGapsRequest struct {
	ForceReanalyze bool `json:"force_reanalyze"`
}

func (e *SkillGapEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/skill-gaps", func(r chi.Router) {
		r.Get("/", e.UserSkillGapsHandler)
		r.Post("/analyze/{id}", e.AnalyzeHandler)
		r.Get("/interview/{id}", e.InterviewSkillGapsHandler)
	})
}

func (e *SkillGapEndpoints) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeSkillGapsRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	report, err := e.skillGaps.Analyze(r.Context(), principal(r), chi.URLParam(r, "id"), req.ForceReanalyze)
	if err != nil {
		writeError(w, e.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (e *SkillGapEndpoints) UserSkillGapsHandler(w http.ResponseWriter, r *http.Request) {
	report, err := e.skillGaps.ForUser(r.Context(), principal(r))
	if err != nil {
		writeError(w, e.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (e *SkillGapEndpoints) InterviewSkillGapsHandler(w http.ResponseWriter, r *http.Request) {
	report, err := e.skillGaps.ForSession(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, e.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
