package dashboard

import (
	"strconv"
	"strings"

	"github.com/accessboard/accessboard/internal/standards"
)

// parseActions splits the one-action-per-line textarea value, dropping blank
// lines.
func parseActions(raw string) []string {
	if raw == "" {
		return nil
	}
	var actions []string
	for _, line := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == '\r' }) {
		line = strings.TrimSpace(line)
		if line != "" {
			actions = append(actions, line)
		}
	}
	return actions
}

// parseHeaders parses "Name: value" lines into a header map. Lines without a
// colon are ignored.
func parseHeaders(raw string) map[string]string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	headers := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		headers[name] = strings.TrimSpace(value)
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

// formInt parses an optional numeric form field; empty or invalid input
// yields zero.
func formInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// joinActions renders an action list back into textarea form.
func joinActions(actions []string) string {
	return strings.Join(actions, "\n")
}

// joinHeaders renders a header map back into textarea form.
func joinHeaders(headers map[string]string) string {
	lines := make([]string, 0, len(headers))
	for name, value := range headers {
		lines = append(lines, name+": "+value)
	}
	return strings.Join(lines, "\n")
}

// standardOption is a standard with form selection state.
type standardOption struct {
	Title    string
	Selected bool
	Rules    []ruleOption
}

// ruleOption is an ignorable rule with form selection state.
type ruleOption struct {
	Name    string
	Ignored bool
}

// standardOptions builds the standards select for the task forms, marking
// the chosen standard and any ignored rules.
func standardOptions(selected string, ignore []string) []standardOption {
	ignored := make(map[string]struct{}, len(ignore))
	for _, rule := range ignore {
		ignored[rule] = struct{}{}
	}

	all := standards.All()
	opts := make([]standardOption, len(all))
	for i, s := range all {
		opt := standardOption{Title: s.Title, Selected: s.Title == selected}
		opt.Rules = make([]ruleOption, len(s.Rules))
		for j, rule := range s.Rules {
			_, isIgnored := ignored[rule]
			opt.Rules[j] = ruleOption{Name: rule, Ignored: isIgnored}
		}
		opts[i] = opt
	}
	return opts
}
