package model

import (
	"encoding/json"
	"fmt"
)

// MaxReadiness is the upper bound of a student's readiness score.
const MaxReadiness = 100

// Readiness increments awarded by study actions.
const (
	ReadinessPerMaterial = 10
	ReadinessPerAnswer   = 20
)

// Student is a learner preparing for exams.
type Student struct {
	ID                  string            `json:"id"`
	LastName            string            `json:"last_name"`
	FirstName           string            `json:"first_name"`
	ExamResult          map[string]string `json:"exam_result"`
	Materials           []MaterialRecord  `json:"materials"`
	Readiness           int               `json:"readiness"`
	PlannedStudyMinutes int               `json:"planned_study_time_minutes"`
}

// NewStudent returns a student with empty progress.
func NewStudent(id, lastName, firstName string) *Student {
	return &Student{
		ID:         id,
		LastName:   lastName,
		FirstName:  firstName,
		ExamResult: map[string]string{},
		Materials:  []MaterialRecord{},
	}
}

// Normalize fills nil collections so the student serializes as {} and [] instead of
// null, and brings hand-edited readiness and planned time back into range.
func (s *Student) Normalize() {
	s.Readiness = clampReadiness(s.Readiness)
	if s.PlannedStudyMinutes < 0 {
		s.PlannedStudyMinutes = 0
	}
	if s.ExamResult == nil {
		s.ExamResult = map[string]string{}
	}
	if s.Materials == nil {
		s.Materials = []MaterialRecord{}
	}
}

// DisplayName returns "First Last".
func (s *Student) DisplayName() string {
	return s.FirstName + " " + s.LastName
}

// AddReadiness raises readiness by delta, clamped to [0, MaxReadiness].
func (s *Student) AddReadiness(delta int) {
	s.Readiness = clampReadiness(s.Readiness + delta)
}

func clampReadiness(v int) int {
	if v > MaxReadiness {
		return MaxReadiness
	}
	if v < 0 {
		return 0
	}
	return v
}

// HasMaterial reports whether a record of the given kind and topic is already held.
func (s *Student) HasMaterial(kind MaterialKind, topic string) bool {
	for _, m := range s.Materials {
		if m.Kind == kind && m.Topic == topic {
			return true
		}
	}
	return false
}

// AddMaterial appends rec unless a record with the same kind and topic exists.
// It returns false when nothing was added.
func (s *Student) AddMaterial(rec MaterialRecord) bool {
	if s.HasMaterial(rec.Kind, rec.Topic) {
		return false
	}
	s.Materials = append(s.Materials, rec)
	return true
}

// RecordExam stores the "correct/total" result for subject.
func (s *Student) RecordExam(subject string, correct, total int) {
	if s.ExamResult == nil {
		s.ExamResult = map[string]string{}
	}
	s.ExamResult[subject] = FormatScore(correct, total)
}

// FormatScore renders an exam score the way it is stored.
func FormatScore(correct, total int) string {
	return fmt.Sprintf("%d/%d", correct, total)
}

// Question is one (topic, question, answer) triple of an exam.
type Question struct {
	Topic  string
	Text   string
	Answer string
}

// MarshalJSON encodes the question as a three-element array.
func (q Question) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{q.Topic, q.Text, q.Answer})
}

// UnmarshalJSON decodes a [topic, question, answer] array.
func (q *Question) UnmarshalJSON(data []byte) error {
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("question: %w", err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("question: want 3 elements, got %d", len(parts))
	}
	q.Topic, q.Text, q.Answer = parts[0], parts[1], parts[2]
	return nil
}

// Exam is a mock exam for one subject.
type Exam struct {
	Subject   string     `json:"subject"`
	Questions []Question `json:"questions"`
}

// Topic is a simple named topic a student can mark as studied.
type Topic struct {
	Name string `json:"name"`
}

// Record returns the student-side record for the topic.
func (t Topic) Record() MaterialRecord {
	return MaterialRecord{Kind: KindTopic, Topic: t.Name}
}

// EducationalMaterial is a topic with bibliographic details, used for consultation.
type EducationalMaterial struct {
	Topic   string `json:"topic"`
	Subject string `json:"subject,omitempty"`
	Title   string `json:"title,omitempty"`
	Author  string `json:"author,omitempty"`
}

// Record returns the student-side record for the material.
func (m EducationalMaterial) Record() MaterialRecord {
	return MaterialRecord{
		Kind:    KindEducational,
		Topic:   m.Topic,
		Subject: m.Subject,
		Title:   m.Title,
		Author:  m.Author,
	}
}

// MaterialKind distinguishes the two material variants.
type MaterialKind string

const (
	// KindTopic is a simple topic, stored as {"name": ...}.
	KindTopic MaterialKind = "topic"
	// KindEducational is an educational material, stored as {"topic": ...}.
	KindEducational MaterialKind = "educational"
)

// MaterialRecord is an entry in a student's materials list.
// Only Topic is meaningful for KindTopic.
type MaterialRecord struct {
	Kind    MaterialKind
	Topic   string
	Subject string
	Title   string
	Author  string
}

type topicRecordJSON struct {
	Name string `json:"name"`
}

// MarshalJSON writes {"name"} for simple topics and {"topic", ...} for educational materials.
func (r MaterialRecord) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindTopic:
		return json.Marshal(topicRecordJSON{Name: r.Topic})
	case KindEducational:
		return json.Marshal(EducationalMaterial{
			Topic:   r.Topic,
			Subject: r.Subject,
			Title:   r.Title,
			Author:  r.Author,
		})
	default:
		return nil, fmt.Errorf("material record: unknown kind %q", r.Kind)
	}
}

// UnmarshalJSON selects the kind by the presence of the "name" field.
func (r *MaterialRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("material record: %w", err)
	}
	if _, ok := fields["name"]; ok {
		var t topicRecordJSON
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("material record: %w", err)
		}
		*r = MaterialRecord{Kind: KindTopic, Topic: t.Name}
		return nil
	}
	var m EducationalMaterial
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("material record: %w", err)
	}
	*r = m.Record()
	return nil
}

// Config holds runtime settings resolved from flags, environment and config file.
type Config struct {
	DataDir        string
	Lang           string
	StrictCatalogs bool // fail on corrupt catalog files instead of reading them as empty
}
