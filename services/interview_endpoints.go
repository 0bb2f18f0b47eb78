package services

import (
	"net/http"
	"strconv"

	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type InterviewEndpoints struct {
	interviews *InterviewService
	evaluation *EvaluationService
	scoring    *ScoringService
	logger     *zap.Logger
}

func NewInterviewEndpoints(interviews *InterviewService, evaluation *EvaluationService, scoring *ScoringService, logger *zap.Logger) *InterviewEndpoints {
	return &InterviewEndpoints{
		interviews: interviews,
		evaluation: evaluation,
		scoring:    scoring,
		logger:     logger,
	}
}

type CreateInterviewRequest struct {
	JobRole      string             `json:"job_role"`
	Difficulty   models.Difficulty  `json:"difficulty,omitempty"`
	NumQuestions *int               `json:"num_questions,omitempty"`
	QuestionType models.QuestionMix `json:"question_type,omitempty"`
}

type SubmitAnswerRequest struct {
	Answer    string `json:"user_answer"`
	TimeTaken *int   `json:"time_taken_seconds"`
}

func (e *InterviewEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/interviews", func(r chi.Router) {
		r.Post("/", e.CreateInterviewHandler)
		r.Get("/", e.ListInterviewsHandler)
		r.Get("/{id}", e.GetInterviewHandler)
		r.Delete("/{id}", e.DeleteInterviewHandler)
		r.Post("/{id}/complete", e.CompleteInterviewHandler)
		r.Post("/{id}/questions/{questionID}/answer", e.SubmitAnswerHandler)
		r.Get("/{id}/results", e.ResultsHandler)
		r.Get("/{id}/score", e.ScoreHandler)
	})
}

func (e *InterviewEndpoints) CreateInterviewHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateInterviewRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	in := CreateInterviewInput{
		JobRole:      req.JobRole,
		Difficulty:   req.Difficulty,
		NumQuestions: DefaultQuestionCount,
		QuestionType: req.QuestionType,
	}
	if in.Difficulty == "" {
		in.Difficulty = models.DifficultyIntermediate
	}
	if in.QuestionType == "" {
		in.QuestionType = models.MixMixed
	}
	if req.NumQuestions != nil {
		in.NumQuestions = *req.NumQuestions
	}

	detail, err := e.interviews.Create(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, e.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (e *InterviewEndpoints) ListInterviewsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := e.interviews.List(r.Context(), principal(r))
	if err != nil {
		writeError(w, e.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (e *InterviewEndpoints) GetInterviewHandler(w http.ResponseWriter, r *http.Request) {
	detail, err := e.interviews.Get(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, e.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (e *InterviewEndpoints) DeleteInterviewHandler(w http.ResponseWriter, r *http.Request) {
	if err := e.interviews.Delete(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, e.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Interview deleted successfully"})
}

func (e *InterviewEndpoints) CompleteInterviewHandler(w http.ResponseWriter, r *http.Request) {
	result, err := e.interviews.Complete(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, e.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (e *InterviewEndpoints) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswerRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := e.evaluation.Submit(r.Context(), principal(r), chi.URLParam(r, "id"), chi.URLParam(r, "questionID"), SubmitAnswerInput{
		Answer:    req.Answer,
		TimeTaken: req.TimeTaken,
	})
	if err != nil {
		writeError(w, e.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (e *InterviewEndpoints) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	results, err := e.evaluation.Results(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, e.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// ScoreHandler computes the score breakdown; ?summary=false skips the
// generated summary.
func (e *InterviewEndpoints) ScoreHandler(w http.ResponseWriter, r *http.Request) {
	includeSummary := true
	if v := r.URL.Query().Get("summary"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "Invalid summary parameter", http.StatusBadRequest)
			return
		}
		includeSummary = parsed
	}

	report, err := e.scoring.Compute(r.Context(), principal(r), chi.URLParam(r, "id"), includeSummary)
	if err != nil {
		writeError(w, e.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
