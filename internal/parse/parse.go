package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"ChannelScanner/internal/domain"
)

var fencedExpr = regexp.MustCompile("(?is)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractObject locates the JSON object inside raw completion output. A
// fenced block wins; otherwise the trimmed text must itself be a braced
// object.
func ExtractObject(raw string) (string, error) {
	if match := fencedExpr.FindStringSubmatch(raw); match != nil {
		return match[1], nil
	}

	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed, nil
	}

	return "", fmt.Errorf("%w: no JSON object found in output", domain.ErrMalformedResponse)
}

// Parse extracts, decodes, and structurally validates one completion
// response, producing the typed extraction envelope. Field-level tolerance
// on individual updates is deferred to the assembler.
func Parse(raw string) (domain.ExtractionResult, error) {
	var result domain.ExtractionResult

	object, err := ExtractObject(raw)
	if err != nil {
		return result, err
	}

	if !json.Valid([]byte(object)) {
		return result, fmt.Errorf("%w: extracted block is not valid JSON", domain.ErrMalformedResponse)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(object), &fields); err != nil {
		return result, fmt.Errorf("%w: top-level value is not an object", domain.ErrSchemaViolation)
	}

	updatesRaw, hasUpdates := fields["identified_updates"]
	_, hasGuide := fields["is_guide"]
	if !hasUpdates && !hasGuide {
		return result, fmt.Errorf("%w: missing identified_updates", domain.ErrSchemaViolation)
	}

	if hasUpdates {
		if isNull(updatesRaw) {
			return result, fmt.Errorf("%w: identified_updates is not a list", domain.ErrSchemaViolation)
		}
		if err := json.Unmarshal(updatesRaw, &result.Updates); err != nil {
			return result, fmt.Errorf("%w: identified_updates is not a list", domain.ErrSchemaViolation)
		}
	}

	// Guide fields are decoded tolerantly: a wrong type degrades to the
	// zero value instead of failing the whole response.
	if guideRaw, ok := fields["is_guide"]; ok {
		_ = json.Unmarshal(guideRaw, &result.IsGuide)
	}
	if summaryRaw, ok := fields["guide_summary"]; ok {
		_ = json.Unmarshal(summaryRaw, &result.GuideSummary)
	}
	if subjectRaw, ok := fields["primary_subject_project"]; ok {
		_ = json.Unmarshal(subjectRaw, &result.PrimarySubjectProject)
	}

	return result, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
