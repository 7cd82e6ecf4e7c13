package llm

import (
	"math"
	"regexp"
	"strings"

	"github.com/nikogura/job-tracker/pkg/models"
	"github.com/tidwall/gjson"
)

var (
	fenceRe     = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_+\\-]+)?\\s*(.*?)\\s*```")
	jsonFenceRe = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")
)

// StripFences returns the interior of the first fenced code block, or the trimmed text when there is none.
func StripFences(text string) (cleaned string) {
	match := fenceRe.FindStringSubmatch(text)
	if match != nil {
		cleaned = strings.TrimSpace(match[1])
		return cleaned
	}
	cleaned = strings.TrimSpace(text)
	return cleaned
}

// ExtractJSON finds the JSON object in a model reply.
// It prefers a ```json block, then any fenced block holding an object, then the first balanced {...} span.
func ExtractJSON(text string) (raw string, err error) {
	if m := jsonFenceRe.FindStringSubmatch(text); m != nil && gjson.Valid(m[1]) {
		raw = m[1]
		return raw, err
	}

	for _, m := range fenceRe.FindAllStringSubmatch(text, -1) {
		body := strings.TrimSpace(m[1])
		if strings.HasPrefix(body, "{") && gjson.Valid(body) {
			raw = body
			return raw, err
		}
	}

	for start := strings.IndexByte(text, '{'); start >= 0; {
		end := matchingBrace(text, start)
		if end < 0 {
			break
		}
		candidate := text[start : end+1]
		if gjson.Valid(candidate) {
			raw = candidate
			return raw, err
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	err = parseErrorf("json", text, "no JSON object found")
	return raw, err
}

// matchingBrace returns the index of the brace closing the one at start, or -1.
func matchingBrace(text string, start int) (end int) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i
				return end
			}
		}
	}

	end = -1
	return end
}

// ParseQuestions validates a question generation reply.
// Every item must carry question, category and difficulty; one bad item rejects the whole reply.
func ParseQuestions(text string) (questions []models.InterviewQuestion, err error) {
	var raw string
	raw, err = ExtractJSON(text)
	if err != nil {
		err = parseErrorf("questions", text, "no JSON object found")
		return questions, err
	}

	list := gjson.Get(raw, "questions")
	if !list.IsArray() {
		err = parseErrorf("questions", text, "missing questions array")
		return questions, err
	}

	items := list.Array()
	if len(items) == 0 {
		err = parseErrorf("questions", text, "questions array is empty")
		return questions, err
	}

	questions = make([]models.InterviewQuestion, 0, len(items))
	for i, item := range items {
		q := models.InterviewQuestion{
			Question:   stringField(item, "question"),
			Category:   normalizeEnum(stringField(item, "category")),
			Difficulty: normalizeEnum(stringField(item, "difficulty")),
		}

		switch {
		case q.Question == "":
			err = parseErrorf("questions", text, "question %d has no question text", i)
		case q.Category == "":
			err = parseErrorf("questions", text, "question %d has no category", i)
		case q.Difficulty == "":
			err = parseErrorf("questions", text, "question %d has no difficulty", i)
		case !models.ValidCategory(q.Category):
			err = parseErrorf("questions", text, "question %d has unknown category %q", i, q.Category)
		case !models.ValidDifficulty(q.Difficulty):
			err = parseErrorf("questions", text, "question %d has unknown difficulty %q", i, q.Difficulty)
		}
		if err != nil {
			questions = nil
			return questions, err
		}

		questions = append(questions, q)
	}

	return questions, err
}

// ParseFeedback validates an answer feedback reply. question and answer are echoed into the result.
func ParseFeedback(text, question, answer string) (feedback models.AnswerFeedback, err error) {
	var raw string
	raw, err = ExtractJSON(text)
	if err != nil {
		err = parseErrorf("feedback", text, "no JSON object found")
		return feedback, err
	}

	score := gjson.Get(raw, "score")
	if score.Type != gjson.Number || score.Num != math.Trunc(score.Num) {
		err = parseErrorf("feedback", text, "score must be an integer")
		return feedback, err
	}
	if score.Num < 1 || score.Num > 10 {
		err = parseErrorf("feedback", text, "score %v out of range 1-10", score.Num)
		return feedback, err
	}

	body := stringField(gjson.Parse(raw), "feedback")
	if body == "" {
		err = parseErrorf("feedback", text, "missing feedback text")
		return feedback, err
	}

	var suggestions, ideal []string
	suggestions, err = stringList(raw, "improvement_suggestions", text)
	if err != nil {
		return feedback, err
	}
	ideal, err = stringList(raw, "ideal_points", text)
	if err != nil {
		return feedback, err
	}

	feedback = models.AnswerFeedback{
		Question:               question,
		UserAnswer:             answer,
		Feedback:               body,
		Score:                  int(score.Num),
		ImprovementSuggestions: suggestions,
		IdealPoints:            ideal,
	}
	return feedback, err
}

func stringField(item gjson.Result, key string) (value string) {
	field := item.Get(key)
	if field.Type != gjson.String {
		return value
	}
	value = strings.TrimSpace(field.String())
	return value
}

func stringList(raw, key, text string) (values []string, err error) {
	list := gjson.Get(raw, key)
	if !list.IsArray() {
		err = parseErrorf("feedback", text, "missing %s array", key)
		return values, err
	}

	values = make([]string, 0)
	for _, v := range list.Array() {
		s := strings.TrimSpace(v.String())
		if s != "" {
			values = append(values, s)
		}
	}
	return values, err
}

// normalizeEnum lower-cases a label and joins words with hyphens, so "Company Specific" matches "company-specific".
func normalizeEnum(label string) (normalized string) {
	normalized = strings.ToLower(strings.TrimSpace(label))
	normalized = strings.NewReplacer(" ", "-", "_", "-").Replace(normalized)
	return normalized
}
