package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"daily-spark-service/internal/app"
	"daily-spark-service/internal/domain"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// ErrAnswerTooShort is the caller-level length check; the engine itself
// only rejects empty answers.
var ErrAnswerTooShort = errors.New("answer too short")

// APIHandler serves the JSON endpoints of the practice service.
type APIHandler struct {
	service   *app.PracticeService
	minAnswer int
	log       logrus.FieldLogger
}

func NewAPIHandler(service *app.PracticeService, minAnswer int, log logrus.FieldLogger) *APIHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &APIHandler{service: service, minAnswer: minAnswer, log: log}
}

// Register mounts the endpoints on r.
func (h *APIHandler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/question", h.getQuestion).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/stats", h.getStats).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/answers", h.getAnswers).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/answers", h.postAnswer).Methods(http.MethodPost)
}

type submitRequest struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *APIHandler) getQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.service.DailyQuestion(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (h *APIHandler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), mux.Vars(r)["userID"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *APIHandler) getAnswers(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.History(r.Context(), mux.Vars(r)["userID"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *APIHandler) postAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "invalid_request", Message: "invalid answer payload"})
		return
	}
	answer, err := submit(r.Context(), h.service, mux.Vars(r)["userID"], req, h.minAnswer)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, answer)
}

func submit(ctx context.Context, service *app.PracticeService, userID string, req submitRequest, minAnswer int) (domain.Answer, error) {
	if err := validateAnswer(req.Answer, minAnswer); err != nil {
		return domain.Answer{}, err
	}
	return service.Submit(ctx, userID, req.QuestionID, req.Answer)
}

// validateAnswer applies the minimum length to non-empty answers; empty
// ones are left to the service so they surface as domain.ErrEmptyAnswer.
func validateAnswer(text string, minAnswer int) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || minAnswer <= 0 {
		return nil
	}
	if utf8.RuneCountInString(trimmed) < minAnswer {
		return fmt.Errorf("%w: at least %d characters", ErrAnswerTooShort, minAnswer)
	}
	return nil
}

// errorStatus maps service errors to an HTTP status and a status token.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyAnswer):
		return http.StatusBadRequest, "empty_answer"
	case errors.Is(err, ErrAnswerTooShort):
		return http.StatusBadRequest, "answer_too_short"
	case errors.Is(err, domain.ErrAlreadyAnswered):
		return http.StatusConflict, "already_answered"
	case errors.Is(err, domain.ErrQuestionNotActive):
		return http.StatusConflict, "question_not_active"
	case errors.Is(err, domain.ErrEmptyPool):
		return http.StatusServiceUnavailable, "no_question"
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusServiceUnavailable, "storage_unavailable"
	}
	return http.StatusInternalServerError, "internal"
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	code, status := errorStatus(err)
	if code >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("status", status).Error("request failed")
	}
	writeJSON(w, code, errorResponse{Status: status, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
