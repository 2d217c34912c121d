// Package intent turns a student utterance into a structured classification.
// Classification is pure and deterministic: the same text always yields the
// same result, and no input makes it fail.
package intent

import (
	"strconv"
	"strings"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// Intent is the closed set of things a student can ask for.
type Intent string

const (
	IntentGreeting          Intent = "greeting"
	IntentGenerateQuestions Intent = "generate_questions"
	IntentAnswerQuestion    Intent = "answer_question"
	IntentExplainConcept    Intent = "explain_concept"
	IntentCheckAnswer       Intent = "check_answer"
	IntentRequestHelp       Intent = "request_help"
	IntentPraiseEncourage   Intent = "praise_encourage"
	IntentChangeSubject     Intent = "change_subject"
	IntentFeedback          Intent = "feedback"
	IntentGeneral           Intent = "general"
)

// DefaultQuestionCount is used when the text carries no number.
const DefaultQuestionCount = 5

// String returns the string representation.
func (i Intent) String() string {
	return string(i)
}

// Classification is the result of classifying one utterance.
type Classification struct {
	Intent        Intent
	Grade         *shared.Grade
	Subject       *shared.Subject
	Topic         *shared.Topic
	QuestionCount int

	// UnsupportedGrade is set when the text names a grade outside
	// [MinGrade, MaxGrade]. Grade stays nil in that case.
	UnsupportedGrade bool
}

// Classify runs every extractor over text.
func Classify(text string) Classification {
	grade, unsupported := ExtractGrade(text)
	return Classification{
		Intent:           ClassifyIntent(text),
		Grade:            grade,
		Subject:          ExtractSubject(text),
		Topic:            ExtractTopic(text),
		QuestionCount:    ExtractQuestionCount(text),
		UnsupportedGrade: unsupported,
	}
}

// ClassifyIntent returns the first intent whose patterns match, or IntentGeneral.
func ClassifyIntent(text string) Intent {
	if text == "" {
		return IntentGeneral
	}
	for _, g := range groups {
		for _, p := range g.patterns {
			if p.MatchString(text) {
				return g.intent
			}
		}
	}
	return IntentGeneral
}

// ExtractGrade finds a grade marker like "三年级" or "3 年级".
// The second return value reports a marker that named an unsupported grade.
func ExtractGrade(text string) (*shared.Grade, bool) {
	value, found := 0, false

	if m := gradeHanPattern.FindStringSubmatch(text); m != nil {
		value, found = hanDigits[m[1]], true
	} else if m := gradeDigitPattern.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			value, found = n, true
		}
	}

	if !found {
		return nil, false
	}

	g := shared.Grade(value)
	if !g.IsSupported() {
		return nil, true
	}
	return &g, false
}

// ExtractSubject checks keyword sets in subject order on the lower-cased text.
func ExtractSubject(text string) *shared.Subject {
	lower := strings.ToLower(text)
	for _, s := range shared.AllSubjects() {
		for _, kw := range subjectKeywords[s] {
			if strings.Contains(lower, kw) {
				subject := s
				return &subject
			}
		}
	}
	return nil
}

// ExtractTopic returns the first topic whose keyword appears in text.
func ExtractTopic(text string) *shared.Topic {
	for _, rule := range topicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				topic := rule.topic
				return &topic
			}
		}
	}
	return nil
}

// ExtractQuestionCount returns the first integer in text, or DefaultQuestionCount.
func ExtractQuestionCount(text string) int {
	token := countPattern.FindString(text)
	if token == "" {
		return DefaultQuestionCount
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return DefaultQuestionCount
	}
	return n
}
