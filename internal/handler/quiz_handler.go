package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cpptutor/cpptutor-backend/internal/llm"
	"github.com/cpptutor/cpptutor-backend/internal/middleware"
	"github.com/cpptutor/cpptutor-backend/internal/model"
	"github.com/cpptutor/cpptutor-backend/internal/response"
	"github.com/cpptutor/cpptutor-backend/internal/service"
	"github.com/cpptutor/cpptutor-backend/internal/validator"
)

// answerFieldPrefix matches the browser form fields question_0,
// question_1, ... carrying the selected label per item index.
const answerFieldPrefix = "question_"

// QuizHandler handles quiz generation, display, and grading.
type QuizHandler struct {
	quizService    *service.QuizService
	attemptService *service.AttemptService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService, attemptService *service.AttemptService) *QuizHandler {
	return &QuizHandler{quizService: quizService, attemptService: attemptService}
}

// ShowDifficultySelect godoc
// GET /quiz
// Returns the difficulty selection page payload. The labels are
// suggestions; the server accepts any caller-selected label.
func (h *QuizHandler) ShowDifficultySelect(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"page":         "quiz_select",
		"difficulties": []string{"beginner", "intermediate", "advanced"},
	})
}

// GenerateQuiz godoc
// POST /quiz
// Generates a quiz for the chosen difficulty, stashes it in the session,
// and sends the browser to /take_quiz.
func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.GenerateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	stash, err := h.quizService.Generate(c.Request.Context(), claims.UserID, req.Difficulty)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadQuizFormat):
			response.Fail(c, http.StatusBadGateway, response.ErrQuizFormat)
		case errors.Is(err, llm.ErrRemoteService):
			response.Fail(c, http.StatusBadGateway, response.ErrRemoteService)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	if acceptsHTML(c) {
		c.Redirect(http.StatusFound, "/take_quiz")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"difficulty": stash.Difficulty,
		"item_count": len(stash.Items),
	})
}

// ShowQuiz godoc
// GET /take_quiz
// Renders the stashed quiz without correct labels, or sends the browser
// back to the difficulty selector when no quiz is in session.
func (h *QuizHandler) ShowQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)

	stash, err := h.quizService.ActiveQuiz(c.Request.Context(), claims.UserID)
	if err != nil {
		h.failNoQuiz(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"page":       "quiz",
		"difficulty": stash.Difficulty,
		"questions":  service.PaperFor(stash),
		"submitted":  false,
	})
}

// SubmitQuiz godoc
// POST /take_quiz
// Grades the submission against the stashed quiz. Answers arrive as
// question_{i} form fields (or a JSON answers object); unanswered items
// count as incorrect.
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)

	answers, err := parseAnswers(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	result, err := h.quizService.Grade(c.Request.Context(), claims.UserID, answers)
	if err != nil {
		h.failNoQuiz(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"page":      "quiz",
		"score":     fmt.Sprintf("%d / %d", result.Score, result.Total),
		"questions": result.Items,
		"submitted": true,
	})
}

// History godoc
// GET /history
// Returns the user's past attempts, newest first.
func (h *QuizHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	attempts, pagination, err := h.attemptService.ListByUser(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, pagination)
}

// failNoQuiz maps a missing stash to the generator redirect for browsers
// and a JSON error otherwise.
func (h *QuizHandler) failNoQuiz(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNoActiveQuiz) {
		if acceptsHTML(c) {
			c.Redirect(http.StatusFound, "/quiz")
			return
		}
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveQuiz)
		return
	}
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// parseAnswers collects the submitted labels keyed by item index.
func parseAnswers(c *gin.Context) (map[int]string, error) {
	answers := make(map[int]string)

	if strings.Contains(c.ContentType(), "application/json") {
		var body struct {
			Answers map[string]string `json:"answers"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, err
		}
		for k, v := range body.Answers {
			idx, err := strconv.Atoi(k)
			if err != nil {
				return nil, fmt.Errorf("invalid answer index %q", k)
			}
			answers[idx] = v
		}
		return answers, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	for key, values := range c.Request.PostForm {
		if !strings.HasPrefix(key, answerFieldPrefix) || len(values) == 0 {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(key, answerFieldPrefix))
		if err != nil {
			continue // Ignore unrelated fields
		}
		answers[idx] = values[0]
	}
	return answers, nil
}
