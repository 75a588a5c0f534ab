package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"alfredoptarigan/resume-assistant/internal/apperror"
	"alfredoptarigan/resume-assistant/internal/models"
)

const rawRewriteNote = "Model returned non-JSON response; used raw text as regenerated resume."

// ParseResponse coerces a model response into the strict result for kind.
// It is a pure function of its arguments.
func ParseResponse(kind models.TaskKind, resp *models.ModelResponse, fileType models.FileFormat) (models.Result, error) {
	if resp == nil || strings.TrimSpace(resp.RawText) == "" {
		return nil, apperror.New(apperror.KindMalformedModelOutput, "model returned an empty response")
	}

	fields, err := extractJSONObject(resp.RawText)
	if err != nil {
		if kind == models.TaskResumeRewrite {
			return models.ResumeRewriteResult{
				RegeneratedResume: strings.TrimSpace(stripCodeFences(resp.RawText)),
				ModelUsed:         resp.ModelName,
				Notes:             rawRewriteNote,
			}, nil
		}
		return nil, err
	}

	switch kind {
	case models.TaskATSScore:
		return parseATSScore(fields, fileType)
	case models.TaskCoverLetter:
		return parseCoverLetter(fields, resp.ModelName)
	case models.TaskResumeRewrite:
		return parseResumeRewrite(fields, resp.ModelName)
	default:
		return nil, apperror.Newf(apperror.KindInvalidRequest, "unknown task %q", kind)
	}
}

func parseATSScore(fields map[string]json.RawMessage, fileType models.FileFormat) (models.Result, error) {
	score, err := scoreField(fields, "score")
	if err != nil {
		return nil, err
	}
	feedback, err := requiredString(fields, "feedback")
	if err != nil {
		return nil, err
	}

	return models.ATSScoreResult{
		Score:           score,
		Feedback:        feedback,
		Strengths:       stringList(fields["strengths"]),
		Weaknesses:      stringList(fields["weaknesses"]),
		Recommendations: stringList(fields["recommendations"]),
		FileType:        fileType,
	}, nil
}

func parseCoverLetter(fields map[string]json.RawMessage, model string) (models.Result, error) {
	letter, err := requiredString(fields, "cover_letter")
	if err != nil {
		return nil, err
	}

	return models.CoverLetterResult{
		CoverLetter: letter,
		ModelUsed:   model,
		JobTitle:    optionalString(fields["job_title"]),
		CompanyName: optionalString(fields["company_name"]),
		Notes:       optionalString(fields["notes"]),
	}, nil
}

func parseResumeRewrite(fields map[string]json.RawMessage, model string) (models.Result, error) {
	resume, err := requiredString(fields, "regenerated_resume")
	if err != nil {
		return nil, err
	}

	return models.ResumeRewriteResult{
		RegeneratedResume: resume,
		ModelUsed:         model,
		Notes:             optionalString(fields["notes"]),
	}, nil
}

// extractJSONObject finds the first balanced {...} in text that decodes to a
// JSON object. Prose and code fences around the object are ignored.
func extractJSONObject(text string) (map[string]json.RawMessage, error) {
	text = strings.TrimSpace(text)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err == nil && fields != nil {
		return fields, nil
	}

	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchingBrace(text, start); end > start {
			fields = nil
			if err := json.Unmarshal([]byte(text[start:end+1]), &fields); err == nil && fields != nil {
				return fields, nil
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	return nil, apperror.New(apperror.KindMalformedModelOutput, "no JSON object found in model response")
}

// matchingBrace returns the index of the brace closing the one at start,
// skipping braces inside JSON strings, or -1.
func matchingBrace(text string, start int) int {
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
				return i
			}
		}
	}
	return -1
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	return strings.TrimSuffix(strings.TrimSpace(text), "```")
}

func scoreField(fields map[string]json.RawMessage, name string) (float64, error) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return 0, apperror.Newf(apperror.KindMalformedModelOutput, "missing %q field", name)
	}

	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, apperror.Wrap(apperror.KindMalformedModelOutput, fmt.Sprintf("invalid %q field", name), err)
	}

	switch t := v.(type) {
	case json.Number:
		num = t
	case string:
		num = json.Number(normalizeNumeric(t))
	default:
		return 0, apperror.Newf(apperror.KindMalformedModelOutput, "%q must be a number, got %s", name, string(raw))
	}

	value, err := strconv.ParseFloat(string(num), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, apperror.Newf(apperror.KindMalformedModelOutput, "%q must be a number, got %s", name, string(raw))
	}

	return clampScore(value), nil
}

// normalizeNumeric accepts forms like "85", "85%" and "85/100".
func normalizeNumeric(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}

func clampScore(score float64) float64 {
	score = math.Max(0, math.Min(100, score))
	return math.Round(score*100) / 100
}

func requiredString(fields map[string]json.RawMessage, name string) (string, error) {
	value := optionalString(fields[name])
	if value == "" {
		return "", apperror.Newf(apperror.KindMalformedModelOutput, "model response did not contain a non-empty %q field", name)
	}
	return value, nil
}

func optionalString(raw json.RawMessage) string {
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}

// stringList decodes a list field. Absent or null yields an empty slice, a
// bare string yields one item, and non-string items are rendered as text.
func stringList(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 || isNull(raw) {
		return out
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single = strings.TrimSpace(single); single != "" {
			out = append(out, single)
		}
		return out
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, item := range items {
		var s string
		switch v := item.(type) {
		case nil:
			continue
		case string:
			s = v
		case map[string]any, []any:
			b, _ := json.Marshal(v)
			s = string(b)
		default:
			s = fmt.Sprint(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
