package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrNoEntries = errors.New("mirror: no journal entries to reflect on")
	ErrRefused   = errors.New("mirror: model refused to reflect on these entries")
	ErrMalformed = errors.New("mirror: reply is not a valid mirror document")
	ErrNoScreens = errors.New("mirror: reply has no usable screens")
)

var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

type reply struct {
	Document
	Refused bool   `json:"refused"`
	Reason  string `json:"reason"`
}

// Clean strips markdown fences and prose around the outermost JSON object
// and drops trailing commas.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return trailingComma.ReplaceAllString(s, "$1")
}

// Parse validates a model reply and returns the document. Screens without a
// body are dropped; at least one must remain.
func Parse(raw string) (*Document, error) {
	cleaned := Clean(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformed)
	}

	var r reply
	if err := json.Unmarshal([]byte(cleaned), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if r.Refused {
		if r.Reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrRefused, r.Reason)
		}
		return nil, ErrRefused
	}

	doc := &Document{Title: strings.TrimSpace(r.Title)}
	for _, s := range r.Screens {
		s.Body = strings.TrimSpace(s.Body)
		if s.Body == "" {
			continue
		}
		s.Type = strings.ToLower(strings.TrimSpace(s.Type))
		if s.Type == "" {
			s.Type = ScreenReflection
		}
		s.Heading = strings.TrimSpace(s.Heading)
		doc.Screens = append(doc.Screens, s)
	}
	if len(doc.Screens) == 0 {
		return nil, ErrNoScreens
	}
	if doc.Title == "" {
		doc.Title = defaultTitle(doc.Screens)
	}
	return doc, nil
}

func defaultTitle(screens []Screen) string {
	for _, s := range screens {
		if s.Heading != "" {
			return s.Heading
		}
	}
	return "Your Mirror"
}
