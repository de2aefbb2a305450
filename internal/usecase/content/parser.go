package content

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

// Причины отклонения кандидатов.
const (
	ReasonHeader      = "header"
	ReasonLabel       = "label"
	ReasonMarkup      = "markup"
	ReasonTooShort    = "too_short"
	ReasonTooLong     = "too_long"
	ReasonNotQuestion = "not_question"
	ReasonMalformed   = "malformed"
	ReasonEmpty       = "empty"
	ReasonDuplicate   = "duplicate"
)

var (
	listPrefixRe    = regexp.MustCompile(`^(\d+[.)]|[-*•]+)\s*`)
	labelRe         = regexp.MustCompile(`(?i)^(question|sentence|answer)s?(\s*\d+)?\s*([:.)\-]|$)`)
	storyLabelRe    = regexp.MustCompile(`(?im)^\s*\**story\s*\d+\s*:`)
	sentenceBuildRe = regexp.MustCompile(`(?i)Phrases:[ \t]*(.+)\s*Answer:[ \t]*(.+)`)
)

var headerPrefixes = []string{"here are", "here is", "here's", "okay", "sure"}

var openQuestionPrefixes = []string{"okay", "here", "question"}

// Parse разбирает ответ модели по правилам категории. Не возвращает ошибок:
// всё, что не прошло проверки, попадает в Rejected с причиной.
func Parse(p Profile, raw string) domain.ParseResult {
	switch p.shape {
	case shapeStory:
		return parseStories(raw)
	case shapeSentenceBuild:
		return parseSentenceBuild(raw)
	case shapeOpenQuestion:
		return parseOpenQuestions(raw)
	default:
		return parseLines(p, raw)
	}
}

func parseLines(p Profile, raw string) domain.ParseResult {
	var res domain.ParseResult
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		text := cleanLine(line)
		if isHeader(line) || isHeader(text) {
			res.Rejected = append(res.Rejected, domain.Rejection{Text: line, Reason: ReasonHeader})
			continue
		}
		if reason := rejectLine(p, text); reason != "" {
			res.Rejected = append(res.Rejected, domain.Rejection{Text: line, Reason: reason})
			continue
		}
		res.Accepted = append(res.Accepted, domain.ContentItem{Text: text})
	}
	return res
}

func rejectLine(p Profile, text string) string {
	if !hasLetter(text) {
		return ReasonMarkup
	}
	if labelRe.MatchString(text) {
		return ReasonLabel
	}
	if p.bounded() {
		n := len(strings.Fields(text))
		if n < p.MinWords {
			return ReasonTooShort
		}
		if n > p.MaxWords {
			return ReasonTooLong
		}
	}
	return ""
}

func parseOpenQuestions(raw string) domain.ParseResult {
	var res domain.ParseResult
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		text := cleanLine(line)
		if hasAnyPrefix(strings.ToLower(text), openQuestionPrefixes) || strings.HasSuffix(text, ":") {
			res.Rejected = append(res.Rejected, domain.Rejection{Text: line, Reason: ReasonHeader})
			continue
		}
		if !hasLetter(text) {
			res.Rejected = append(res.Rejected, domain.Rejection{Text: line, Reason: ReasonMarkup})
			continue
		}
		if len(text) <= 20 || !(strings.HasSuffix(text, "?") || strings.HasSuffix(text, ".")) {
			res.Rejected = append(res.Rejected, domain.Rejection{Text: line, Reason: ReasonNotQuestion})
			continue
		}
		res.Accepted = append(res.Accepted, domain.ContentItem{Text: text})
	}
	return res
}

// parseStories режет текст по меткам "Story N:" и склеивает каждый блок в одну строку.
func parseStories(raw string) domain.ParseResult {
	var res domain.ParseResult
	locs := storyLabelRe.FindAllStringIndex(raw, -1)
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		text := normalizeSpace(strings.Trim(raw[loc[1]:end], " \t\r\n*"))
		if text == "" {
			res.Rejected = append(res.Rejected, domain.Rejection{Text: raw[loc[0]:loc[1]], Reason: ReasonEmpty})
			continue
		}
		res.Accepted = append(res.Accepted, domain.ContentItem{Text: text})
	}
	return res
}

func parseSentenceBuild(raw string) domain.ParseResult {
	var res domain.ParseResult
	for _, m := range sentenceBuildRe.FindAllStringSubmatch(raw, -1) {
		var phrases []string
		for _, ph := range strings.Split(m[1], ",") {
			if ph = strings.Trim(ph, " \t\r*"); ph != "" {
				phrases = append(phrases, ph)
			}
		}
		answer := strings.Trim(m[2], " \t\r*")
		if len(phrases) < 2 || answer == "" {
			res.Rejected = append(res.Rejected, domain.Rejection{Text: strings.TrimSpace(m[0]), Reason: ReasonMalformed})
			continue
		}
		res.Accepted = append(res.Accepted, domain.ContentItem{Text: answer, Phrases: phrases})
	}
	return res
}

func isHeader(line string) bool {
	return hasAnyPrefix(strings.ToLower(line), headerPrefixes) || strings.HasSuffix(line, ":")
}

func cleanLine(line string) string {
	line = listPrefixRe.ReplaceAllString(line, "")
	return strings.TrimSpace(strings.Trim(line, `*_"`))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
