package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpptutor/cpptutor-backend/internal/service"
)

func newFormContext(t *testing.T, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/take_quiz", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c
}

func newJSONContext(t *testing.T, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/take_quiz", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestFailNoQuiz_BrowserRedirectsToSelector(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/take_quiz", nil)
	c.Request.Header.Set("Accept", "text/html")

	h := &QuizHandler{}
	h.failNoQuiz(c, service.ErrNoActiveQuiz)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, 302, w.Code)
	assert.Equal(t, "/quiz", w.Header().Get("Location"))
}

func TestFailNoQuiz_APICallerGets404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/take_quiz", nil)

	h := &QuizHandler{}
	h.failNoQuiz(c, service.ErrNoActiveQuiz)

	assert.Equal(t, 404, w.Code)
	assert.Contains(t, w.Body.String(), "NO_ACTIVE_QUIZ")
}

func TestParseAnswers_FormFields(t *testing.T) {
	c := newFormContext(t, "question_0=A&question_1=C&question_19=D")

	answers, err := parseAnswers(c)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "A", 1: "C", 19: "D"}, answers)
}

func TestParseAnswers_IgnoresUnrelatedFields(t *testing.T) {
	c := newFormContext(t, "question_0=B&csrf_token=abc&question_x=D")

	answers, err := parseAnswers(c)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "B"}, answers)
}

func TestParseAnswers_EmptyFormMeansNoAnswers(t *testing.T) {
	c := newFormContext(t, "")

	answers, err := parseAnswers(c)
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestParseAnswers_JSONBody(t *testing.T) {
	c := newJSONContext(t, `{"answers": {"0": "A", "7": "D"}}`)

	answers, err := parseAnswers(c)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "A", 7: "D"}, answers)
}

func TestParseAnswers_JSONBadIndex(t *testing.T) {
	c := newJSONContext(t, `{"answers": {"first": "A"}}`)

	_, err := parseAnswers(c)
	assert.Error(t, err)
}

func TestParseAnswers_MalformedJSON(t *testing.T) {
	c := newJSONContext(t, `{"answers":`)

	_, err := parseAnswers(c)
	assert.Error(t, err)
}
