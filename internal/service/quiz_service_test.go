package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpptutor/cpptutor-backend/internal/model"
)

func sampleItems() []model.QuizItem {
	return []model.QuizItem{
		{
			Question: "What does sizeof(char) evaluate to?",
			Options:  []string{"A) 1", "B) 2", "C) 4", "D) Implementation defined"},
			Answer:   "A",
		},
		{
			Question: "Which container guarantees sorted iteration order?",
			Options:  []string{"A) std::vector", "B) std::map", "C) std::unordered_map", "D) std::deque"},
			Answer:   "B",
		},
		{
			Question: "What happens when delete is called twice on the same pointer?",
			Options:  []string{"A) Nothing", "B) Compile error", "C) Undefined behavior", "D) Exception"},
			Answer:   "C",
		},
	}
}

func TestParseQuizPayload_BareArray(t *testing.T) {
	raw := `[
		{"question": "Q1?", "options": ["A) x", "B) y", "C) z", "D) w"], "answer": "A"},
		{"question": "Q2?", "options": ["A) x", "B) y", "C) z", "D) w"], "answer": "D"}
	]`

	items, err := ParseQuizPayload([]byte(raw))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Q1?", items[0].Question)
	assert.Equal(t, "D", items[1].Answer)
}

func TestParseQuizPayload_QuestionsEnvelope(t *testing.T) {
	raw := `{"questions": [
		{"question": "Q1?", "options": ["A) x", "B) y", "C) z", "D) w"], "answer": "B"}
	]}`

	items, err := ParseQuizPayload([]byte(raw))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].Answer)
}

func TestParseQuizPayload_ObjectWithoutQuestions(t *testing.T) {
	_, err := ParseQuizPayload([]byte(`{"items": []}`))
	assert.ErrorIs(t, err, ErrBadQuizFormat)
}

func TestParseQuizPayload_NotJSON(t *testing.T) {
	for _, raw := range []string{"", "Sure! Here are your questions:", "42", "null"} {
		_, err := ParseQuizPayload([]byte(raw))
		assert.ErrorIs(t, err, ErrBadQuizFormat, "payload %q", raw)
	}
}

func TestParseQuizPayload_MalformedJSON(t *testing.T) {
	_, err := ParseQuizPayload([]byte(`[{"question": "Q1?",`))
	assert.ErrorIs(t, err, ErrBadQuizFormat)
}

func TestParseQuizPayload_DropsInvalidItems(t *testing.T) {
	raw := `[
		{"question": "Valid?", "options": ["A) x", "B) y", "C) z", "D) w"], "answer": "A"},
		{"question": "", "options": ["A) x", "B) y", "C) z", "D) w"], "answer": "A"},
		{"question": "Three options", "options": ["A) x", "B) y", "C) z"], "answer": "A"},
		{"question": "Answer not a label", "options": ["A) x", "B) y", "C) z", "D) w"], "answer": "E"},
		{"question": "No answer", "options": ["A) x", "B) y", "C) z", "D) w"], "answer": ""}
	]`

	items, err := ParseQuizPayload([]byte(raw))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Valid?", items[0].Question)
}

func TestParseQuizPayload_AllItemsInvalid(t *testing.T) {
	raw := `[{"question": "", "options": [], "answer": ""}]`
	_, err := ParseQuizPayload([]byte(raw))
	assert.ErrorIs(t, err, ErrBadQuizFormat)
}

func TestParseQuizPayload_TrimsAnswerWhitespace(t *testing.T) {
	raw := `[{"question": "Q?", "options": ["A) x", "B) y", "C) z", "D) w"], "answer": " C "}]`

	items, err := ParseQuizPayload([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "C", items[0].Answer)
}

func TestOptionLabel(t *testing.T) {
	assert.Equal(t, "A", optionLabel("A) Option 1"))
	assert.Equal(t, "D", optionLabel("  D) Option 4"))
	assert.Equal(t, "", optionLabel("no label here"))
}

func TestGradeItems_AllCorrect(t *testing.T) {
	items := sampleItems()
	result := GradeItems(items, map[int]string{0: "A", 1: "B", 2: "C"})

	assert.Equal(t, 3, result.Score)
	assert.Equal(t, 3, result.Total)
	for _, g := range result.Items {
		assert.True(t, g.Correct)
	}
}

func TestGradeItems_AllWrong(t *testing.T) {
	items := sampleItems()
	result := GradeItems(items, map[int]string{0: "B", 1: "C", 2: "D"})

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 3, result.Total)
}

func TestGradeItems_UnansweredCountsIncorrect(t *testing.T) {
	items := sampleItems()
	result := GradeItems(items, map[int]string{0: "A"})

	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 3, result.Total)
	assert.True(t, result.Items[0].Correct)
	assert.False(t, result.Items[1].Correct)
	assert.Empty(t, result.Items[1].Selected)
}

func TestGradeItems_ExactLabelMatchOnly(t *testing.T) {
	items := sampleItems()
	// Full option text and lowercase labels must not match.
	result := GradeItems(items, map[int]string{0: "A) 1", 1: "b", 2: "C"})

	assert.Equal(t, 1, result.Score)
}

func TestGradeItems_Deterministic(t *testing.T) {
	items := sampleItems()
	answers := map[int]string{0: "A", 1: "C"}

	first := GradeItems(items, answers)
	second := GradeItems(items, answers)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Items, second.Items)
}

func TestShuffleItems_IsPermutation(t *testing.T) {
	items := make([]model.QuizItem, 20)
	for i := range items {
		items[i] = model.QuizItem{
			Question: string(rune('A' + i)),
			Options:  []string{"A) w", "B) x", "C) y", "D) z"},
			Answer:   "A",
		}
	}

	counts := func(set []model.QuizItem) map[string]int {
		m := make(map[string]int)
		for _, item := range set {
			m[item.Question]++
		}
		return m
	}
	before := counts(items)

	shuffleItems(items)

	assert.Len(t, items, 20)
	assert.Equal(t, before, counts(items))
}

func TestPaperFor_StripsAnswers(t *testing.T) {
	stash := &model.QuizStash{Difficulty: "beginner", Items: sampleItems()}

	paper := PaperFor(stash)
	require.Len(t, paper, 3)
	for i, q := range paper {
		assert.Equal(t, i, q.Index)
		assert.Equal(t, stash.Items[i].Question, q.Question)
		assert.Equal(t, stash.Items[i].Options, q.Options)
	}
}
