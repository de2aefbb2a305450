package feedback

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

const (
	analysisMaxTokens = 8000
	analysisRetries   = 2

	scoreMarker     = "OVERALL INTERVIEW SCORE:"
	questionsMarker = "INDIVIDUAL QUESTION ANALYSIS"
	questionBlock   = "**Question"
	howToAnswer     = "HOW TO ANSWER THIS QUESTION PROPERLY"
)

// Значения по умолчанию для полей, не найденных в анализе.
const (
	DefaultStatus     = "Analysis Complete"
	DefaultTimeline   = "2-4 weeks"
	DefaultConfidence = "Medium"
)

var (
	overallScoreRe = regexp.MustCompile(`(?i)OVERALL INTERVIEW SCORE:\s*(\d+)\s*/\s*100`)
	statusRe       = regexp.MustCompile(`(?i)Current Status\*\*:\s*([^\n]+)`)
	timelineRe     = regexp.MustCompile(`(?i)Estimated Timeline to Interview-Ready\*\*:\s*([^\n]+)`)
	confidenceRe   = regexp.MustCompile(`(?i)Confidence Recommendation\*\*:\s*([^\n]+)`)
)

const analysisTemplate = `You are an expert interview coach and evaluator. Analyze the provided interview responses and give detailed feedback with scoring.

CRITICAL INSTRUCTIONS:
1. You MUST provide detailed analysis for EACH individual question with the exact format specified below.
2. Do NOT skip any questions or provide generic feedback.
3. You MUST include the "HOW TO ANSWER THIS QUESTION PROPERLY" section for EVERY single question.
4. Follow the exact format for ALL questions from Question 1 to Question %[1]d.

EVALUATION CRITERIA (Total: 100 points):
1. Content Quality (25 points) - Relevance, completeness, accuracy, specificity
2. Communication Skills (25 points) - Clarity, structure, grammar, conciseness
3. Professional Competence (25 points) - Technical knowledge, experience demonstration, problem-solving
4. Behavioral Indicators (25 points) - Confidence, enthusiasm, professionalism, cultural fit

SCORING SCALE:
- 90-100: Exceptional, interview-ready
- 80-89: Strong with minor improvements
- 70-79: Good foundation, needs preparation
- 60-69: Basic competence, major gaps
- 50-59: Below average, extensive prep needed
- Below 50: Poor, fundamental development required

REQUIRED OUTPUT FORMAT (FOLLOW EXACTLY FOR ALL QUESTIONS):

## OVERALL INTERVIEW SCORE: X/100

### INDIVIDUAL QUESTION ANALYSIS

**Question 1: [Question Text]**
Your Response: [User's exact response]
- **Score**: X/100
- **Content Quality**: X/25 (Specific feedback on relevance and completeness)
- **Communication**: X/25 (Grammar, clarity, structure issues)
- **Professionalism**: X/25 (Technical competence and experience)
- **Behavioral**: X/25 (Confidence, enthusiasm, cultural fit)
- **Key Issues**: [List 2-3 specific problems with their response]
- **Improvements**: [Provide 2-3 actionable suggestions]

**HOW TO ANSWER THIS QUESTION PROPERLY:**
- **Structure**: [Explain the ideal structure for this type of question]
- **Key Points to Include**: [List 3-5 essential points that should be covered]
- **Example Response**: [Provide a well-structured example answer for this specific question]
- **Common Mistakes to Avoid**: [List 2-3 common mistakes people make with this question]
- **Pro Tips**: [Give 2-3 professional tips for answering this question effectively]

[Continue this exact format for ALL remaining questions until you have covered ALL %[1]d questions]

### COMPREHENSIVE ANALYSIS

#### Category Scores:
- **Introduction & Personal Branding**: X/100
- **Interest & Motivation**: X/100
- **Behavioral & Teamwork**: X/100
- **Communication & Technical**: X/100
- **Role-Specific Competence**: X/100
- **Closing & Engagement**: X/100

#### Top 3 Strengths:
1. [Specific strength with example]

#### Top 5 Critical Issues:
1. [Specific issue with impact]

### IMPROVEMENT ACTION PLAN

#### Immediate Actions (1-2 weeks):
#### Medium-term Development (1-3 months):
#### Long-term Growth (3-6 months):

### INTERVIEW READINESS ASSESSMENT

**Current Status**: [Ready/Needs Preparation/Requires Extensive Work]
**Estimated Timeline to Interview-Ready**: [X weeks/months]
**Confidence Recommendation**: [High/Medium/Low confidence for similar interviews]
**Next Steps Priority**: [Most critical area to focus on first]

FINAL REMINDER: You MUST analyze EVERY single question provided. Do NOT skip any questions. Provide the "HOW TO ANSWER THIS QUESTION PROPERLY" section for EVERY question. You have %[1]d questions to analyze.

Now analyze the following interview responses:`

// AnalysisPrompt собирает промпт с контекстом и всеми парами вопрос-ответ.
func AnalysisPrompt(req domain.AnalysisRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, analysisTemplate, len(req.Responses))
	fmt.Fprintf(&b, "\n\nInterview Context:\nRole: %s\nDifficulty Level: %s\nFocus Areas: %s\n\nInterview Responses:\n",
		req.JobRole, req.DifficultyLevel, strings.Join(req.InterviewFocus, ", "))
	for i, r := range req.Responses {
		fmt.Fprintf(&b, "\nQ%d: %s\nA%d: %s\n", i+1, r.Question, i+1, r.Answer)
	}
	return b.String()
}

// IsCompleteAnalysis проверяет наличие обязательных разделов и блоков по каждому вопросу.
func IsCompleteAnalysis(text string, questions int) bool {
	if len(strings.TrimSpace(text)) <= 100 {
		return false
	}
	if !strings.Contains(text, scoreMarker) || !strings.Contains(text, questionsMarker) {
		return false
	}
	return strings.Count(text, questionBlock) >= questions && strings.Count(text, howToAnswer) >= questions
}

// ExtractSummary достаёт итоговые поля. Не найденные поля получают значения по умолчанию.
func ExtractSummary(text string) domain.AnalysisSummary {
	sum := domain.AnalysisSummary{
		CurrentStatus:   DefaultStatus,
		TimelineToReady: DefaultTimeline,
		ConfidenceLevel: DefaultConfidence,
	}
	if m := overallScoreRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			sum.OverallScore = min(n, 100)
		}
	}
	if v := firstGroup(statusRe, text); v != "" {
		sum.CurrentStatus = v
	}
	if v := firstGroup(timelineRe, text); v != "" {
		sum.TimelineToReady = v
	}
	if v := firstGroup(confidenceRe, text); v != "" {
		sum.ConfidenceLevel = v
	}
	return sum
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// AnswerScore оценивает ответ по его длине.
func AnswerScore(answer string) int {
	switch n := len(strings.TrimSpace(answer)); {
	case n < 20:
		return 5
	case n < 50:
		return 15
	default:
		return 25
	}
}

// fallbackAverage считает общую оценку по своей шкале длины ответа.
func fallbackAverage(responses []domain.QAPair) int {
	if len(responses) == 0 {
		return 0
	}
	total := 0
	for _, r := range responses {
		switch n := len(strings.TrimSpace(r.Answer)); {
		case n > 50:
			total += 20
		case n > 20:
			total += 10
		default:
			total += 5
		}
	}
	return total / len(responses)
}

type guidance struct {
	kind, structure, keyPoints, example, mistakes, tips string
}

var guidanceByKind = []struct {
	words []string
	g     guidance
}{
	{
		words: []string{"introduce", "yourself", "about you"},
		g: guidance{
			kind:      "Introduction",
			structure: "Start with your current role/status, mention relevant experience, and connect to the position.",
			keyPoints: "Current role, relevant experience, key achievements, career goals, connection to the role",
			example:   "I'm a software developer with 3 years of experience in web development. I've worked on several projects using React and Node.js, including an e-commerce platform that increased sales by 25%. I'm passionate about creating user-friendly applications and I'm excited about this opportunity to contribute to your team.",
			mistakes:  "Being too brief, not connecting to the role, mentioning irrelevant personal details",
			tips:      "Keep it under 2 minutes, focus on professional experience, show enthusiasm for the role",
		},
	},
	{
		words: []string{"why", "motivation", "interest"},
		g: guidance{
			kind:      "Motivation",
			structure: "Show research about the company, connect your skills to their needs, express genuine interest.",
			keyPoints: "Company research, role alignment, career goals, specific reasons for interest",
			example:   "I'm excited about this role because of your company's innovative approach to AI and your commitment to user privacy. My experience in machine learning aligns perfectly with your current projects, and I'm drawn to your collaborative culture and opportunities for growth.",
			mistakes:  "Generic answers, not doing company research, focusing only on salary/benefits",
			tips:      "Research the company thoroughly, be specific about why you want this role, show enthusiasm",
		},
	},
	{
		words: []string{"strength", "weakness", "improve"},
		g: guidance{
			kind:      "Self-Assessment",
			structure: "For strengths: specific examples. For weaknesses: acknowledge, show improvement efforts.",
			keyPoints: "Relevant strengths with examples, honest weaknesses, improvement strategies, growth mindset",
			example:   "My greatest strength is problem-solving - I recently debugged a critical system issue that saved our team 20 hours of work. My weakness is public speaking, but I've been taking courses and practicing presentations to improve.",
			mistakes:  "Claiming no weaknesses, mentioning irrelevant strengths, not showing improvement efforts",
			tips:      "Prepare 3-4 relevant strengths with examples, choose a real weakness you're working on",
		},
	},
}

var generalGuidance = guidance{
	kind:      "General",
	structure: "Use the STAR method: Situation, Task, Action, Result. Be specific and relevant.",
	keyPoints: "Specific situation, your role, actions taken, measurable results, relevance to role",
	example:   "In my previous role, I was tasked with improving our website's loading speed. I analyzed the codebase, identified bottlenecks, and implemented optimizations that reduced load time by 40% and improved user satisfaction scores.",
	mistakes:  "Being vague, not providing examples, not connecting to the role, rambling",
	tips:      "Use the STAR method, prepare specific examples, keep answers focused and relevant",
}

func guidanceFor(question string) guidance {
	q := strings.ToLower(question)
	for _, entry := range guidanceByKind {
		for _, w := range entry.words {
			if strings.Contains(q, w) {
				return entry.g
			}
		}
	}
	return generalGuidance
}

func answerFeedback(score int) string {
	switch score {
	case 5:
		return "Response too brief. Provide more detailed answers with specific examples and experiences."
	case 15:
		return "Response needs more detail. Include specific examples, achievements, and relevant experience."
	default:
		return "Good response length. Focus on providing specific examples and demonstrating relevant skills."
	}
}

// FallbackAnalysis строит анализ без модели. Формат совпадает с ожидаемым от модели,
// поэтому ExtractSummary работает и для него.
func FallbackAnalysis(req domain.AnalysisRequest) string {
	avg := fallbackAverage(req.Responses)
	var b strings.Builder
	fmt.Fprintf(&b, "## %s %d/100\n\nThis interview analysis was generated automatically due to processing limitations. The responses indicate a need for improvement in interview preparation and communication skills.\n\n### %s\n\n", scoreMarker, avg, questionsMarker)

	for i, r := range req.Responses {
		score := AnswerScore(r.Answer)
		g := guidanceFor(r.Question)
		fmt.Fprintf(&b, "**Question %d: %s**\nQuestion Type: %s\nYour Response: %s\n", i+1, r.Question, g.kind, r.Answer)
		fmt.Fprintf(&b, "- **Score**: %d/100\n", score)
		fmt.Fprintf(&b, "- **Content Quality**: %d/25 (Response needs more detail and specific examples)\n", score/4)
		fmt.Fprintf(&b, "- **Communication**: %d/25 (Clarity and structure need improvement)\n", score/4)
		fmt.Fprintf(&b, "- **Professionalism**: %d/25 (Professional presentation requires enhancement)\n", score/4)
		fmt.Fprintf(&b, "- **Behavioral**: %d/25 (Confidence and cultural fit indicators need development)\n", score/4)
		fmt.Fprintf(&b, "- **Key Issues**: %s\n", answerFeedback(score))
		b.WriteString("- **Improvements**: Provide more detailed responses with specific examples, use the STAR method for behavioral questions, and demonstrate relevant technical knowledge.\n\n")
		fmt.Fprintf(&b, "**%s:**\n", howToAnswer)
		fmt.Fprintf(&b, "- **Structure**: %s\n- **Key Points to Include**: %s\n- **Example Response**: %q\n- **Common Mistakes to Avoid**: %s\n- **Pro Tips**: %s\n\n",
			g.structure, g.keyPoints, g.example, g.mistakes, g.tips)
	}

	b.WriteString("### COMPREHENSIVE ANALYSIS\n\n#### Category Scores:\n")
	for _, c := range []string{"Introduction & Personal Branding", "Interest & Motivation", "Behavioral & Teamwork", "Communication & Technical", "Role-Specific Competence", "Closing & Engagement"} {
		fmt.Fprintf(&b, "- **%s**: %d/100\n", c, avg)
	}
	b.WriteString(`
#### Top 3 Strengths:
1. Willingness to participate in the interview process
2. Basic understanding of interview structure
3. Opportunity for significant improvement

#### Top 5 Critical Issues:
1. Responses are too brief and lack detail
2. Missing specific examples and achievements
3. Limited demonstration of technical knowledge
4. Need for better communication structure
5. Lack of role-specific preparation

### IMPROVEMENT ACTION PLAN

#### Immediate Actions (1-2 weeks):
1. Practice answering common interview questions with detailed responses
2. Prepare specific examples using the STAR method
3. Research the company and role requirements thoroughly

#### Medium-term Development (1-3 months):
1. Build a portfolio of relevant projects and achievements
2. Practice technical interviews and coding challenges
3. Improve communication and presentation skills

#### Long-term Growth (3-6 months):
1. Gain hands-on experience in relevant technologies
2. Network with professionals in the field
3. Continue learning and staying updated with industry trends

### INTERVIEW READINESS ASSESSMENT

**Current Status**: Needs Preparation
**Estimated Timeline to Interview-Ready**: 4-6 weeks
**Confidence Recommendation**: Medium confidence with proper preparation
**Next Steps Priority**: Focus on providing detailed, specific responses with examples
`)
	return b.String()
}
