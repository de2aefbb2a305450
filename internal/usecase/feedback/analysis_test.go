package feedback

import (
	"strings"
	"testing"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

func TestAnswerScoreGrowsWithLength(t *testing.T) {
	short := AnswerScore(strings.Repeat("a", 10))
	medium := AnswerScore(strings.Repeat("a", 30))
	long := AnswerScore(strings.Repeat("a", 80))
	if !(short < medium && medium < long) {
		t.Fatalf("оценка должна расти с длиной ответа: %d, %d, %d", short, medium, long)
	}
	if short != 5 || medium != 15 || long != 25 {
		t.Fatalf("неожиданные оценки: %d, %d, %d", short, medium, long)
	}
}

func TestIsCompleteAnalysis(t *testing.T) {
	block := "**Question 1: Tell me about yourself**\n- **Score**: 70/100\n**HOW TO ANSWER THIS QUESTION PROPERLY:**\n- **Structure**: start with your role and experience.\n"
	full := "## OVERALL INTERVIEW SCORE: 72/100\n\n### INDIVIDUAL QUESTION ANALYSIS\n\n" + block + strings.ReplaceAll(block, "Question 1", "Question 2")

	tests := []struct {
		name      string
		text      string
		questions int
		want      bool
	}{
		{name: "полный", text: full, questions: 2, want: true},
		{name: "не хватает блоков", text: full, questions: 3, want: false},
		{name: "нет итоговой оценки", text: strings.Replace(full, scoreMarker, "SCORE", 1), questions: 2, want: false},
		{name: "нет раздела вопросов", text: strings.Replace(full, questionsMarker, "QUESTIONS", 1), questions: 2, want: false},
		{name: "слишком короткий", text: "OVERALL INTERVIEW SCORE: 1/100 INDIVIDUAL QUESTION ANALYSIS", questions: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCompleteAnalysis(tt.text, tt.questions); got != tt.want {
				t.Fatalf("ожидали %v, получили %v", tt.want, got)
			}
		})
	}
}

func TestExtractSummary(t *testing.T) {
	text := "OVERALL INTERVIEW SCORE: 64 / 100\n**Current Status**: Almost Ready\n**Estimated Timeline to Interview-Ready**: 1-2 weeks\n**Confidence Recommendation**: High\n"
	got := ExtractSummary(text)
	want := domain.AnalysisSummary{OverallScore: 64, CurrentStatus: "Almost Ready", TimelineToReady: "1-2 weeks", ConfidenceLevel: "High"}
	if got != want {
		t.Fatalf("ожидали %+v, получили %+v", want, got)
	}

	empty := ExtractSummary("nothing useful here")
	if empty.OverallScore != 0 || empty.CurrentStatus != DefaultStatus || empty.TimelineToReady != DefaultTimeline || empty.ConfidenceLevel != DefaultConfidence {
		t.Fatalf("ожидали значения по умолчанию, получили %+v", empty)
	}

	if s := ExtractSummary("OVERALL INTERVIEW SCORE: 250/100"); s.OverallScore != 100 {
		t.Fatalf("оценка должна ограничиваться 100, получили %d", s.OverallScore)
	}
}

func TestFallbackAnalysisIsComplete(t *testing.T) {
	req := domain.AnalysisRequest{
		JobRole: "Backend Developer",
		Responses: []domain.QAPair{
			{Question: "Please introduce yourself", Answer: "Hi"},
			{Question: "Why do you want this job?", Answer: "Because I like building reliable systems"},
			{Question: "Describe a hard bug", Answer: strings.Repeat("I traced a race in the cache layer. ", 3)},
		},
	}
	text := FallbackAnalysis(req)
	if !IsCompleteAnalysis(text, len(req.Responses)) {
		t.Fatalf("запасной анализ должен проходить проверку полноты")
	}
	sum := ExtractSummary(text)
	if sum.OverallScore != (5+10+20)/3 {
		t.Fatalf("неожиданная итоговая оценка %d", sum.OverallScore)
	}
	if sum.CurrentStatus != "Needs Preparation" || sum.TimelineToReady != "4-6 weeks" {
		t.Fatalf("неожиданная готовность: %+v", sum)
	}
	for _, kind := range []string{"Question Type: Introduction", "Question Type: Motivation", "Question Type: General"} {
		if !strings.Contains(text, kind) {
			t.Fatalf("в анализе нет %q", kind)
		}
	}
}

func TestAnalysisPromptListsResponses(t *testing.T) {
	req := domain.AnalysisRequest{
		JobRole:        "QA",
		InterviewFocus: []string{"Technical", "Coding"},
		Responses:      []domain.QAPair{{Question: "Q one", Answer: "A one"}, {Question: "Q two", Answer: "A two"}},
	}
	p := AnalysisPrompt(req)
	for _, want := range []string{"Q1: Q one", "A2: A two", "Focus Areas: Technical, Coding", "Role: QA"} {
		if !strings.Contains(p, want) {
			t.Fatalf("в промпте нет %q", want)
		}
	}
}

func TestVersantScore(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"TOTAL SCORE: 56/80\n- Grammar: 14/20", 56},
		{"TOTAL SCORE: 95 / 80", 80},
		{"no score", 0},
	}
	for _, tt := range tests {
		if got := VersantScore(tt.text); got != tt.want {
			t.Fatalf("%q: ожидали %d, получили %d", tt.text, tt.want, got)
		}
	}
}
