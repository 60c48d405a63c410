package assistant

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Rule maps any of its trigger substrings to Intent. Rules are evaluated in
// slice order and the first match wins, so their order is part of the contract.
type Rule struct {
	Intent   Intent
	Triggers []string
}

// defaultRules is the priority order: grades, attendance, schedule, courses,
// fees, exam results. A query mentioning "exam" and "schedule" is a schedule query.
var defaultRules = []Rule{
	{Intent: IntentGrades, Triggers: []string{"cgpa", "grade", "gpa"}},
	{Intent: IntentAttendance, Triggers: []string{"attendance", "present"}},
	{Intent: IntentSchedule, Triggers: []string{"schedule", "class", "timetable", "today"}},
	{Intent: IntentCourses, Triggers: []string{"course", "enroll", "subject"}},
	{Intent: IntentFees, Triggers: []string{"fee", "payment", "due"}},
	{Intent: IntentResults, Triggers: []string{"result", "exam", "mark", "score"}},
}

// DefaultRules returns a copy of the built-in rule list.
func DefaultRules() []Rule {
	out := make([]Rule, len(defaultRules))
	for i, r := range defaultRules {
		out[i] = Rule{Intent: r.Intent, Triggers: append([]string(nil), r.Triggers...)}
	}
	return out
}

// Classifier maps free text to an intent by first-match keyword rules.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// NewClassifier validates that every intent the rules (and the default
// fallback) can produce has a catalog entry.
func NewClassifier(catalog *Catalog, rules []Rule) (*Classifier, error) {
	if catalog == nil {
		return nil, fmt.Errorf("classifier requires a catalog")
	}
	if !catalog.Has(IntentDefault) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntent, IntentDefault)
	}

	normalized := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if !catalog.Has(r.Intent) {
			return nil, fmt.Errorf("%w: rule %d targets %s", ErrUnknownIntent, i, r.Intent)
		}
		if len(r.Triggers) == 0 {
			return nil, fmt.Errorf("rule %d (%s) has no triggers", i, r.Intent)
		}
		triggers := make([]string, len(r.Triggers))
		for j, t := range r.Triggers {
			t = fold(strings.TrimSpace(t))
			if t == "" {
				return nil, fmt.Errorf("rule %d (%s) has an empty trigger", i, r.Intent)
			}
			triggers[j] = t
		}
		normalized = append(normalized, Rule{Intent: r.Intent, Triggers: triggers})
	}

	return &Classifier{rules: normalized}, nil
}

// NewDefaultClassifier wires the built-in rules to catalog.
func NewDefaultClassifier(catalog *Catalog) (*Classifier, error) {
	return NewClassifier(catalog, defaultRules)
}

// Classify returns the intent of the first rule with a trigger contained in
// the case-folded query, or IntentDefault.
func (c *Classifier) Classify(query string) Intent {
	intent, _, _ := c.Match(query)
	return intent
}

// Match is Classify plus the rule and trigger that fired. ok is false when
// the query fell through to IntentDefault.
func (c *Classifier) Match(query string) (intent Intent, trigger string, ok bool) {
	q := fold(query)
	for _, r := range c.rules {
		for _, t := range r.Triggers {
			if strings.Contains(q, t) {
				return r.Intent, t, true
			}
		}
	}
	return IntentDefault, "", false
}

// Rules returns the rules in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// fold case-folds s. A Caser is stateful, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
