package generation

import (
	"fmt"
	"strings"
)

func lessonSystem(language string) string {
	return fmt.Sprintf("You are an experienced teacher writing course lessons. "+
		"Write clear, well structured lessons for students. Write all content in %s.", language)
}

func lessonPrompt(in LessonInput) string {
	return fmt.Sprintf(`Write a lesson from the course material below.

Lesson title: %s
Lesson duration: %d hours

Material:
%s

The lesson must contain:
1. An introduction to the topic
2. Main content split into sections, each with a heading, explanation and practical examples when useful
3. A summary
4. The key points to remember

Size the lesson so a student can study it within the lesson duration.`,
		in.Title, in.DurationHours, in.Material)
}

func quizSystem(language string) string {
	return fmt.Sprintf("You write multiple choice tests that check whether students understood a lesson. "+
		"Write all questions, options and explanations in %s.", language)
}

func quizPrompt(lessonTitle, content string) string {
	return fmt.Sprintf(`Write a test for the lesson below.

Lesson title: %s

Lesson content:
%s

Rules:
- between 5 and 10 questions
- exactly 4 options per question
- correct_answer is the zero-based index (0 to 3) of the correct option
- tag every question with the topic it checks
- give every question a short unique id such as q1, q2`, lessonTitle, content)
}

func feedbackSystem(language string) string {
	return fmt.Sprintf("You are a supportive teacher giving students feedback on their test results. "+
		"Write in %s, in a warm and encouraging tone.", language)
}

func feedbackPrompt(in FeedbackInput) string {
	weak := "none"
	if len(in.WeakTopics) > 0 {
		weak = strings.Join(in.WeakTopics, ", ")
	}
	return fmt.Sprintf(`A student finished the test of the lesson "%s".

Score: %d/%d (%d%%)
Weak topics: %s

Write feedback that:
1. Comments on the result
2. Briefly explains the weak topics
3. Gives advice for further study
4. Motivates the student`, in.LessonTitle, in.Score, in.MaxScore, in.Percentage, weak)
}

func simplifySystem(language string) string {
	return fmt.Sprintf("You explain complex topics in simple words to students. Write in %s.", language)
}

func simplifyPrompt(content string) string {
	return fmt.Sprintf(`Rewrite the lesson below so that it is easier to understand.

Lesson:
%s

Use plain language, add simple examples, and finish with a few questions and answers that check understanding.`, content)
}

const testPrompt = "Say 'AI provider is working!' in one short sentence."
