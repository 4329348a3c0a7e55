package generation

import (
	"fmt"
	"strings"

	"github.com/trezcool/darslik/core/llm"
)

type Section struct {
	Heading  string   `json:"heading"`
	Content  string   `json:"content"`
	Examples []string `json:"examples"`
}

// LessonContent is the structured lesson a model writes from the course material.
type LessonContent struct {
	Title        string    `json:"title"`
	Introduction string    `json:"introduction"`
	Sections     []Section `json:"main_content"`
	Summary      string    `json:"summary"`
	KeyPoints    []string  `json:"key_points"`
}

// Labels are the headings the formatted lesson uses, in the lesson language.
type Labels struct {
	Introduction string
	Examples     string
	Summary      string
	KeyPoints    string
}

var labels = map[string]Labels{
	"english": {Introduction: "Introduction", Examples: "Examples", Summary: "Summary", KeyPoints: "Key points"},
	"uzbek":   {Introduction: "Kirish", Examples: "Misollar", Summary: "Xulosa", KeyPoints: "Asosiy fikrlar"},
	"russian": {Introduction: "Введение", Examples: "Примеры", Summary: "Заключение", KeyPoints: "Основные мысли"},
}

// LabelsFor returns the headings of `language`, English when unknown.
func LabelsFor(language string) Labels {
	if l, ok := labels[strings.ToLower(strings.TrimSpace(language))]; ok {
		return l
	}
	return labels["english"]
}

// Format flattens the lesson into one markdown text: title, introduction, each section with its numbered examples,
// summary and bulleted key points, in that order.
func (lc LessonContent) Format(l Labels) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", strings.TrimSpace(lc.Title))
	fmt.Fprintf(&b, "## %s\n%s\n\n", l.Introduction, strings.TrimSpace(lc.Introduction))

	for _, s := range lc.Sections {
		fmt.Fprintf(&b, "## %s\n%s\n\n", strings.TrimSpace(s.Heading), strings.TrimSpace(s.Content))
		examples := nonBlank(s.Examples)
		if len(examples) == 0 {
			continue
		}
		fmt.Fprintf(&b, "**%s:**\n", l.Examples)
		for i, ex := range examples {
			fmt.Fprintf(&b, "%d. %s\n", i+1, ex)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## %s\n%s\n\n", l.Summary, strings.TrimSpace(lc.Summary))
	fmt.Fprintf(&b, "## %s:\n", l.KeyPoints)
	for _, p := range nonBlank(lc.KeyPoints) {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	return strings.TrimRight(b.String(), "\n")
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

var lessonSchema = &llm.Schema{
	Name:        "lesson-content",
	Description: "A structured lesson written from the course material",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"title", "introduction", "main_content", "summary", "key_points"},
		"properties": map[string]any{
			"title":        map[string]any{"type": "string", "description": "Lesson title"},
			"introduction": map[string]any{"type": "string", "description": "Introduction to the lesson"},
			"main_content": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"heading", "content", "examples"},
					"properties": map[string]any{
						"heading":  map[string]any{"type": "string", "description": "Section heading"},
						"content":  map[string]any{"type": "string", "description": "Section body"},
						"examples": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Worked examples; may be empty"},
					},
				},
			},
			"summary":    map[string]any{"type": "string", "description": "Lesson summary"},
			"key_points": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Key takeaways"},
		},
	},
}

type quizPayload struct {
	Questions []quizQuestion `json:"questions"`
}

type quizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Topic         string   `json:"topic"`
	Explanation   string   `json:"explanation"`
}

var quizSchema = &llm.Schema{
	Name:        "lesson-quiz",
	Description: "Multiple choice questions checking the understanding of a lesson",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"questions"},
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 5,
				"maxItems": 10,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"id", "question", "options", "correct_answer", "topic", "explanation"},
					"properties": map[string]any{
						"id":       map[string]any{"type": "string", "description": "Stable question id, e.g. q1"},
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":     "array",
							"minItems": 4,
							"maxItems": 4,
							"items":    map[string]any{"type": "string"},
						},
						"correct_answer": map[string]any{"type": "integer", "minimum": 0, "maximum": 3, "description": "Zero-based index of the correct option"},
						"topic":          map[string]any{"type": "string", "description": "Topic the question checks"},
						"explanation":    map[string]any{"type": "string", "description": "Why the answer is correct; may be empty"},
					},
				},
			},
		},
	},
}

// LessonSchema returns the schema lesson content is generated against.
func LessonSchema() *llm.Schema { return lessonSchema }

// QuizSchema returns the schema quizzes are generated against.
func QuizSchema() *llm.Schema { return quizSchema }
