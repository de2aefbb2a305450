package interview

import (
	"fmt"
	"strings"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

const (
	questionsMaxTokens     = 800
	defaultDurationMinutes = 10
	timePerQuestion        = "1 minute"
	// fixedQuestions — вопросы вне технического блока: 2 вводных, поведенческий,
	// коммуникационный и заключительный.
	fixedQuestions = 5
)

// fallbackQuestions отдаются, когда модель недоступна.
var fallbackQuestions = []string{
	"1. [Introduction] Tell me about yourself.",
	"2. [Introduction] Why are you interested in this role?",
	"3. [Behavioral] Describe a time you solved a difficult problem under pressure.",
	"4. [Communication] How would you explain a complex technical idea to a non-technical colleague?",
	"5. [Technical] Walk me through a project you are proud of and the tools you used.",
	"6. [Technical] How do you make sure your work is correct before it ships?",
	"7. [Technical] Describe how you would debug an issue that only happens in production.",
	"8. [Technical] What trade-offs do you consider when choosing between two technical approaches?",
	"9. [Technical] How do you keep your skills up to date with industry practices?",
	"10. [Closing] Do you have any questions for us?",
}

// QuestionCount — число вопросов для длительности: по одному на минуту.
func QuestionCount(duration string) int {
	return domain.ParseDurationMinutes(duration, defaultDurationMinutes)
}

// QuestionsPrompt собирает промпт генерации вопросов интервью.
func QuestionsPrompt(form domain.InterviewForm, total int, nonce string) string {
	company := form.CompanyName
	if strings.TrimSpace(company) == "" {
		company = "a tech company"
	}
	return fmt.Sprintf(`You are a professional technical interviewer for %[1]s.
You are conducting a %[2]s level interview for a %[3]s role in the %[4]s domain.
The interview should last approximately %[5]s and include exactly %[6]d questions.

%[7]s Use it to make the questions different every time, even for the same interview config.

Follow this question structure **strictly**:
1. Begin with 2 [Introduction] questions (e.g., "Tell me about yourself", "Why this role?")
2. Add 1 [Behavioral] question (e.g., problem-solving, teamwork, stress-handling)
3. Add 1 [Communication] question (e.g., explaining technical ideas, handling disagreements)
4. Add %[8]d [Technical] questions focused on %[9]s, relevant to a %[3]s role in %[4]s
5. End with 1 [Closing] question (e.g., "Do you have any questions for us?")

**Formatting rules**:
- Number each question (1 to %[6]d)
- Label the category in square brackets like this:
  1. [Introduction] Tell me about yourself.
- Do **not** add any introductions, summaries, or extra text. Just list the questions only.
- Ensure the [Technical] questions match the %[2]s level and reflect industry-standard tools, practices, and technologies used in %[4]s, especially for %[3]s roles.

Now, generate exactly %[6]d interview questions as per the instructions above.`,
		company, form.DifficultyLevel, form.SubJobCategory, form.JobCategory, form.Duration,
		total, nonce, max(total-fixedQuestions, 0), strings.Join(form.InterviewFocus, ", "))
}

// SplitQuestions разбивает ответ модели на непустые строки.
func SplitQuestions(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// FallbackQuestions возвращает не больше total запасных вопросов.
func FallbackQuestions(total int) []string {
	n := min(max(total, 0), len(fallbackQuestions))
	return append([]string(nil), fallbackQuestions[:n]...)
}
