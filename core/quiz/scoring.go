package quiz

import (
	"fmt"
	"strings"

	"github.com/trezcool/darslik/core"
)

type templates struct {
	congrats string
	// review takes the comma joined weak topics.
	review string
}

var feedbackTemplates = map[string]templates{
	"english": {
		congrats: "Great job! Keep it up!",
		review:   "You are advised to study the following topics further: %s",
	},
	"uzbek": {
		congrats: "Ajoyib natija! Davom eting!",
		review:   "Sizga quyidagi mavzularda qo'shimcha o'rganish tavsiya etiladi: %s",
	},
	"russian": {
		congrats: "Отличный результат! Продолжайте!",
		review:   "Рекомендуется дополнительно изучить следующие темы: %s",
	},
}

// Score counts the answers matching the correct option and collects the distinct topics of the wrong ones,
// in question order. Missing answers count as wrong.
func Score(questions []Question, answers []int) (score int, weakTopics []string) {
	wrong := make([]string, 0, len(questions))
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			score++
			continue
		}
		wrong = append(wrong, q.Topic)
	}
	return score, core.UniqueStrings(wrong)
}

// TemplateFeedback is the feedback given without any model call, in the generation language.
// Unknown languages fall back to English.
func TemplateFeedback(language string, weakTopics []string) string {
	tpl, ok := feedbackTemplates[strings.ToLower(strings.TrimSpace(language))]
	if !ok {
		tpl = feedbackTemplates["english"]
	}
	if len(weakTopics) == 0 {
		return tpl.congrats
	}
	return fmt.Sprintf(tpl.review, strings.Join(weakTopics, ", "))
}
