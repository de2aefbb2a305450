package content

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

// PromptParams влияют на текст промпта.
type PromptParams struct {
	Difficulty string
}

// PromptBuilder собирает промпты. Кроме nonce сессии результат детерминирован.
type PromptBuilder struct {
	now  func() time.Time
	rand func(n int) int
}

// NewPromptBuilder создаёт билдер с системными часами.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{now: time.Now, rand: rand.IntN}
}

// Nonce возвращает метку вида [Session ID: 1234-20250101120000].
func (b *PromptBuilder) Nonce() string {
	return SessionNonce(b.rand, b.now())
}

// SessionNonce формирует метку сессии. Модель её не возвращает, парсер её не ищет.
func SessionNonce(intn func(int) int, now time.Time) string {
	return fmt.Sprintf("[Session ID: %d-%s]", 1000+intn(9000), now.UTC().Format("20060102150405"))
}

// Build возвращает промпт для категории.
func (b *PromptBuilder) Build(p Profile, params PromptParams) string {
	nonce := b.Nonce()
	var prompt string
	switch p.Category {
	case domain.CategoryReadingSentence:
		prompt = readingPrompt(p, nonce)
	case domain.CategoryRepeatSentence:
		prompt = repeatPrompt(p, nonce)
	case domain.CategoryShortAnswer:
		prompt = shortAnswerPrompt(p, nonce)
	case domain.CategoryStory:
		prompt = storyPrompt(p, nonce)
	case domain.CategorySentenceBuild:
		prompt = sentenceBuildPrompt(p, nonce)
	case domain.CategoryOpenQuestion:
		prompt = openQuestionPrompt(p, nonce)
	}
	if d := strings.TrimSpace(params.Difficulty); d != "" && p.shape == shapeLines {
		prompt += "\nTarget difficulty: " + d + "."
	}
	return prompt
}

func readingPrompt(p Profile, nonce string) string {
	return fmt.Sprintf(`You are an English language test content generator for a professional English fluency assessment focused on advanced daily routines in modern life and work settings.

Your task is to generate exactly %[1]d unique sentences per batch. Each sentence must:

- Contain between %[2]d and %[3]d words
- Be grammatically correct and natural-sounding
- Use moderately advanced vocabulary (CEFR B2 to low C1 level)
- Describe realistic daily routines that involve mental effort, responsibility, or structured activity
- Focus on work, learning, meetings, planning, preparation, productivity, or digital routines
- Vary in structure and tone to test pacing, rhythm, and fluency during reading
- Avoid basic or trivial routines (e.g., brushing teeth, drinking water)
- Avoid slang, idioms, contractions, or overly technical words

%[4]s

CRITICAL REQUIREMENTS:
1. Sentences MUST be about meaningful daily routines (work, learning, planning, tech use)
2. Each sentence MUST be grammatically rich and professionally relevant
3. Avoid casual or personal themes like cooking, cleaning, or watching TV

Output exactly %[1]d unique, well-formed sentences. Place each sentence on a new line.
Do not add headers, numbering, or any other text.`, p.Count, p.MinWords, p.MaxWords, nonce)
}

func repeatPrompt(p Profile, nonce string) string {
	return fmt.Sprintf(`You are an English language test content generator for a high-level fluency assessment exam (e.g., academic or corporate communication).

Generate advanced, grammatically complex English sentences for a reading test. Each sentence must:

- Contain %[2]d to %[3]d words
- Use formal or academic vocabulary (CEFR level C1-C2)
- Reflect abstract, professional, or intellectual themes (e.g., technology, ethics, innovation, policy, science, global affairs)
- Vary in structure, using compound or complex sentences
- Avoid everyday routines, idioms, slang, or contractions
- Be challenging to read aloud but still clear and meaningful

CRITICAL REQUIREMENTS:
1. Each sentence MUST be unique and significantly different from others
2. Focus on professional and technical topics:
   - Technology trends and digital transformation
   - Scientific research and methodology
   - Corporate strategy and management
   - Global economics and policy
   - Innovation and development
   - Professional ethics and responsibility
3. Use advanced sentence structures: subordinate clauses, passive voice, conditional statements, advanced connectors
4. Include domain-specific vocabulary: technical terminology, academic language, industry-specific terms

%[4]s

Output exactly %[1]d unique, well-formed sentences. Place each sentence on a new line.
DO NOT include any annotations, labels, numbering, or formatting - just output clean sentences.`, p.Count, p.MinWords, p.MaxWords, nonce)
}

func shortAnswerPrompt(p Profile, nonce string) string {
	return fmt.Sprintf(`You are a content generator for an advanced spoken English fluency test like the Versant test. Generate exactly %[1]d professional questions that test a candidate's ability to respond thoughtfully within 15 seconds.

QUESTION REQUIREMENTS:
- Each question must be %[2]d-%[3]d words long
- Must be clear and easy to understand in one listen
- Should require 1-2 sentence responses (no yes/no answers)
- Focus on workplace scenarios and professional development
- Use natural, formal language without idioms or slang

TOPICS TO COVER:
1. Professional Development: skill improvement, learning strategies, career growth
2. Workplace Dynamics: team collaboration, communication, problem-solving
3. Project Management: time management, resource allocation, priority setting
4. Leadership & Initiative: decision making, team support, conflict resolution

CRITICAL INSTRUCTIONS:
- DO NOT include any headers, numbering, or labels
- DO NOT use phrases like "Here are the questions" or similar
- Output ONLY the questions, one per line
- Each question must be unique and professionally relevant
- Questions should encourage analytical thinking and specific examples

%[4]s

Generate %[1]d questions now, one per line.`, p.Count, p.MinWords, p.MaxWords, nonce)
}

func storyPrompt(p Profile, nonce string) string {
	var format strings.Builder
	for i := 1; i <= p.Count; i++ {
		fmt.Fprintf(&format, "Story %d: <text>\n", i)
	}
	return fmt.Sprintf(`You are a language assessment assistant trained to generate unique short stories for the "Story Retelling" section of a Versant-style English speaking test.

Your goal is to create short spoken stories that test a user's ability to listen, understand, and then retell the main points in their own words.

STORY REQUIREMENTS:
- Each story must be 3 to 5 sentences long
- Use clear English (CEFR B1-B2 level)
- Follow a logical structure: beginning, middle, and end
- Create engaging, unexpected situations
- Avoid slang, idioms, or complex vocabulary
- Keep stories culturally universal

CRITICAL DIVERSITY RULES:
1. Use completely different situations, outcomes, scales and time frames in every story.
2. Avoid learning or improvement journeys, community service projects, technology adoption stories and simple problem-solution narratives.
3. Story 1 is Adventure & Discovery (scientific breakthrough, unexpected travel, sports challenge, wildlife encounter).
   Story 2 is Work & Innovation (startup, creative problem-solving at work, industry innovation, market research).
   Story 3 is Society & Culture (cultural festival, historical preservation, art exhibition, culinary traditions).
4. Use diverse, international character names. Never use common names like "Sarah", "David", "John", "Mary". Do not reuse names across stories.
5. Each story has a clear goal, an action taken, an outcome and a meaningful impact.

%[2]s

Generate %[1]d unique stories. Format each as:
%[3]s`, p.Count, nonce, strings.TrimRight(format.String(), "\n"))
}

func sentenceBuildPrompt(p Profile, nonce string) string {
	return fmt.Sprintf(`You are a test assistant for English fluency exams like the Versant Speaking Test.
Generate exactly %[1]d sentence building questions. For each question:
- Provide three jumbled sentence fragments (not in correct order), separated by commas.
- The correct answer must be a simple, complete sentence (4-8 words), using all three fragments in the right order.
- The fragments must be short, natural, and not full sentences.
- The answer must NOT repeat the fragments in parentheses or as a list, just the correct sentence.
- The content must be simple, grammatically correct, and suitable for B1-B2 level learners.

For each question, output as:
Phrases: fragment1, fragment2, fragment3
Answer: The correct sentence.

Do NOT output anything except the %[1]d question blocks in the format above. Do NOT number them. Do NOT include the fragments in the answer. Do NOT use parentheses. Example:
Phrases: went to, yesterday, the market
Answer: She went to the market yesterday.

%[2]s

Now generate %[1]d such questions.`, p.Count, nonce)
}

func openQuestionPrompt(p Profile, nonce string) string {
	return fmt.Sprintf(`You are an expert English language assessor for a professional language proficiency test.
Generate exactly %[1]d open-ended questions that test the speaker's ability to express complex thoughts, opinions, and experiences in English.

Guidelines:
1. Questions must require detailed responses (at least 1-2 minutes of speaking).
2. Questions should test critical thinking and ability to structure a response.
3. Focus on professional and academic topics like:
   - Career development and workplace challenges
   - Technology and innovation impact
   - Education and learning experiences
   - Global issues and cultural perspectives
4. Format: Output exactly %[1]d questions, one per line, no numbering or extra text.
5. Each question should be 1-2 sentences, clear and direct.
6. Avoid yes/no questions or simple opinion questions.

%[2]s`, p.Count, nonce)
}
