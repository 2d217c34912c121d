// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// Subject
// ══════════════════════════════════════════════════════════════════════════════

// Subject is one of the three supported school subjects.
type Subject string

const (
	SubjectMath    Subject = "math"
	SubjectEnglish Subject = "english"
	SubjectChinese Subject = "chinese"
)

// AllSubjects returns the subjects in their canonical order.
// Keyword matching and reports iterate in this order.
func AllSubjects() []Subject {
	return []Subject{SubjectMath, SubjectEnglish, SubjectChinese}
}

// IsValid checks if the subject is one of the supported ones.
func (s Subject) IsValid() bool {
	switch s {
	case SubjectMath, SubjectEnglish, SubjectChinese:
		return true
	}
	return false
}

// String returns the string representation.
func (s Subject) String() string {
	return string(s)
}

// DisplayName returns the Chinese name shown to students.
func (s Subject) DisplayName() string {
	switch s {
	case SubjectMath:
		return "数学"
	case SubjectEnglish:
		return "英语"
	case SubjectChinese:
		return "语文"
	default:
		return "综合"
	}
}

// ParseSubject parses a subject tag.
func ParseSubject(raw string) (Subject, error) {
	s := Subject(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSubject, raw)
	}
	return s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// Grade
// ══════════════════════════════════════════════════════════════════════════════

// Grade is a primary-school grade.
type Grade int

const (
	// MinGrade is the lowest supported grade.
	MinGrade Grade = 2

	// MaxGrade is the highest supported grade.
	MaxGrade Grade = 5

	// DefaultGrade is used when nothing else is known about the student.
	DefaultGrade Grade = 3
)

var gradeNames = map[Grade]string{
	1: "一年级",
	2: "二年级",
	3: "三年级",
	4: "四年级",
	5: "五年级",
	6: "六年级",
}

// IsSupported reports whether the tutor has content for this grade.
func (g Grade) IsSupported() bool {
	return g >= MinGrade && g <= MaxGrade
}

// Int returns the underlying int value.
func (g Grade) Int() int {
	return int(g)
}

// Chinese returns the grade in Chinese, e.g. "三年级".
func (g Grade) Chinese() string {
	if name, ok := gradeNames[g]; ok {
		return name
	}
	return fmt.Sprintf("%d年级", int(g))
}

// NewGrade creates a Grade with validation.
func NewGrade(value int) (Grade, error) {
	g := Grade(value)
	if !g.IsSupported() {
		return 0, fmt.Errorf("%w: grade %d", ErrValueOutOfRange, value)
	}
	return g, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// Topic
// ══════════════════════════════════════════════════════════════════════════════

// Topic is a fine-grained knowledge point within a subject.
type Topic string

// Math topics.
const (
	TopicAddition       Topic = "addition"
	TopicSubtraction    Topic = "subtraction"
	TopicMultiplication Topic = "multiplication"
	TopicDivision       Topic = "division"
	TopicMixed          Topic = "mixed"
	TopicFraction       Topic = "fraction"
	TopicDecimal        Topic = "decimal"
	TopicPercentage     Topic = "percentage"
	TopicGeometry       Topic = "geometry"
	TopicApplication    Topic = "application"
)

// English topics.
const (
	TopicVocabulary Topic = "vocabulary"
	TopicGrammar    Topic = "grammar"
	TopicReading    Topic = "reading"
	TopicWriting    Topic = "writing"
)

// Chinese topics.
const (
	TopicCharacters           Topic = "characters"
	TopicReadingComprehension Topic = "reading_comprehension"
	TopicComposition          Topic = "composition"
	TopicPoetry               Topic = "poetry"
)

var topicNames = map[Topic]string{
	TopicAddition:             "加法",
	TopicSubtraction:          "减法",
	TopicMultiplication:       "乘法",
	TopicDivision:             "除法",
	TopicMixed:                "混合运算",
	TopicFraction:             "分数",
	TopicDecimal:              "小数",
	TopicPercentage:           "百分数",
	TopicGeometry:             "几何图形",
	TopicApplication:          "应用题",
	TopicVocabulary:           "词汇",
	TopicGrammar:              "语法",
	TopicReading:              "阅读",
	TopicWriting:              "写作",
	TopicCharacters:           "识字写字",
	TopicReadingComprehension: "阅读理解",
	TopicComposition:          "作文",
	TopicPoetry:               "古诗词",
}

// String returns the string representation.
func (t Topic) String() string {
	return string(t)
}

// DisplayName returns the Chinese name of the topic, or the tag itself when unknown.
func (t Topic) DisplayName() string {
	if name, ok := topicNames[t]; ok {
		return name
	}
	return string(t)
}

// ══════════════════════════════════════════════════════════════════════════════
// Difficulty
// ══════════════════════════════════════════════════════════════════════════════

// Difficulty of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ══════════════════════════════════════════════════════════════════════════════
// Role
// ══════════════════════════════════════════════════════════════════════════════

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleAssistant marks replies produced by the tutor itself.
	RoleAssistant Role = "assistant"

	// RoleUser marks the student's utterances and requests forwarded to the
	// external language-generation collaborator.
	RoleUser Role = "user"
)

// Percent renders correct/total as a rounded percentage, 0 when total is 0.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(correct)/float64(total)*100 + 0.5)
}

// ══════════════════════════════════════════════════════════════════════════════
// Features
// ══════════════════════════════════════════════════════════════════════════════

// Gamification feature names, toggled per user by the feature flags.
const (
	FeatureAchievements   = "gamification.achievements"
	FeatureDailyTasks     = "gamification.daily_tasks"
	FeatureKnowledgeGraph = "gamification.knowledge_graph"
	FeatureChallenges     = "gamification.challenges"
	FeaturePet            = "gamification.pet"
	FeatureTeam           = "gamification.team"
)

// FeatureGate reports whether a feature is enabled for a user.
type FeatureGate interface {
	IsEnabledFor(feature, userID string) bool
}

// AllFeatures enables every feature.
type AllFeatures struct{}

// IsEnabledFor implements FeatureGate.
func (AllFeatures) IsEnabledFor(string, string) bool { return true }
