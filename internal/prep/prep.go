// Package prep implements the exam-preparation operations on top of the JSON store:
// consultation, topic study, mock exams, study planning, and the teacher's
// catalog maintenance.
package prep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pavelanni/examprep/internal/model"
	"github.com/pavelanni/examprep/internal/store"
)

var (
	// ErrInvalidInput marks blank required fields and malformed numbers.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks an unknown student, exam, material or topic.
	ErrNotFound = store.ErrNotFound
	// ErrDuplicate marks an attempt to create an entity whose key already exists.
	ErrDuplicate = errors.New("already exists")
	// ErrAlreadyRecorded marks a material the student already holds.
	ErrAlreadyRecorded = errors.New("already recorded")
)

// Repository is the storage the service needs. *store.Store implements it.
type Repository interface {
	LoadStudent(id string) (*model.Student, error)
	SaveStudent(st *model.Student) error
	DeleteStudent(id string) (bool, error)
	ListStudents() ([]model.Student, error)

	LoadExam(subject string) (*model.Exam, error)
	LoadAllExams() (map[string]model.Exam, error)
	SaveExam(e model.Exam) error
	DeleteExam(subject string) (bool, error)

	LoadEducationalMaterial(topic string) (*model.EducationalMaterial, error)
	LoadAllEducationalMaterials() (map[string]model.EducationalMaterial, error)
	SaveEducationalMaterial(m model.EducationalMaterial) error
	DeleteEducationalMaterial(topic string) (bool, error)

	LoadSimpleTopic(name string) (*model.Topic, error)
	LoadAllSimpleTopics() (map[string]model.Topic, error)
	SaveSimpleTopic(t model.Topic) error
	DeleteSimpleTopic(name string) (bool, error)
}

// Service holds shared dependencies for preparation operations.
type Service struct {
	repo Repository
	tag  language.Tag
	fold cases.Caser
}

// New creates a Service. lang selects the collation used for listings.
func New(repo Repository, lang string) (*Service, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("parse language %q: %w", lang, err)
	}
	return &Service{repo: repo, tag: tag, fold: cases.Fold()}, nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required: %w", field, ErrInvalidInput)
	}
	return nil
}

// Login resolves a student by ID.
func (s *Service) Login(id string) (*model.Student, error) {
	if err := required("student id", id); err != nil {
		return nil, err
	}
	st, err := s.repo.LoadStudent(id)
	if err != nil {
		return nil, err
	}
	slog.Info("student logged in", "id", st.ID)
	return st, nil
}

// SaveStudent persists the student.
func (s *Service) SaveStudent(st *model.Student) error {
	return s.repo.SaveStudent(st)
}

// Consult records the educational material for topic on the student and raises
// readiness. The material is returned even when the student already holds it, in
// which case the error is ErrAlreadyRecorded. The caller persists the student.
func (s *Service) Consult(st *model.Student, topic string) (*model.EducationalMaterial, error) {
	if err := required("topic", topic); err != nil {
		return nil, err
	}
	m, err := s.repo.LoadEducationalMaterial(topic)
	if err != nil {
		return nil, err
	}
	if !st.AddMaterial(m.Record()) {
		return m, fmt.Errorf("material %q: %w", topic, ErrAlreadyRecorded)
	}
	st.AddReadiness(model.ReadinessPerMaterial)
	slog.Debug("consultation recorded", "student", st.ID, "topic", topic, "readiness", st.Readiness)
	return m, nil
}

// StudyTopic marks a simple topic as studied and raises readiness.
// The caller persists the student.
func (s *Service) StudyTopic(st *model.Student, name string) error {
	if err := required("topic", name); err != nil {
		return err
	}
	t, err := s.repo.LoadSimpleTopic(name)
	if err != nil {
		return err
	}
	if !st.AddMaterial(t.Record()) {
		return fmt.Errorf("topic %q: %w", name, ErrAlreadyRecorded)
	}
	st.AddReadiness(model.ReadinessPerMaterial)
	slog.Debug("topic studied", "student", st.ID, "topic", name, "readiness", st.Readiness)
	return nil
}

// PlanStudyTime adds the minutes in input to the student's planned study time and
// returns the new total. Non-numeric, negative and overflowing input leaves the
// student unchanged.
func (s *Service) PlanStudyTime(st *model.Student, input string) (int, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return st.PlannedStudyMinutes, fmt.Errorf("minutes %q: %w", input, ErrInvalidInput)
	}
	if minutes < 0 {
		return st.PlannedStudyMinutes, fmt.Errorf("minutes must not be negative: %w", ErrInvalidInput)
	}
	if minutes > math.MaxInt-st.PlannedStudyMinutes {
		return st.PlannedStudyMinutes, fmt.Errorf("minutes %d would overflow the planned total: %w", minutes, ErrInvalidInput)
	}
	st.PlannedStudyMinutes += minutes
	return st.PlannedStudyMinutes, nil
}

// Report builds the progress report for every student.
func (s *Service) Report() ([]model.StudentProgress, error) {
	students, err := s.repo.ListStudents()
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	report := make([]model.StudentProgress, 0, len(students))
	for _, st := range students {
		p := model.StudentProgress{
			ID:                  st.ID,
			DisplayName:         st.DisplayName(),
			Readiness:           st.Readiness,
			PlannedStudyMinutes: st.PlannedStudyMinutes,
			ExamResults:         st.ExamResult,
			StudiedTopics:       []string{},
			Consulted:           []model.EducationalMaterial{},
		}
		for _, m := range st.Materials {
			switch m.Kind {
			case model.KindTopic:
				p.StudiedTopics = append(p.StudiedTopics, m.Topic)
			case model.KindEducational:
				p.Consulted = append(p.Consulted, model.EducationalMaterial{
					Topic: m.Topic, Subject: m.Subject, Title: m.Title, Author: m.Author,
				})
			}
		}
		report = append(report, p)
	}
	return report, nil
}

// sortStrings orders values for display in the service language.
func (s *Service) sortStrings(values []string) {
	collate.New(s.tag).SortStrings(values)
}

// ListExamSubjects returns the subjects of all exams in display order.
func (s *Service) ListExamSubjects() ([]string, error) {
	exams, err := s.repo.LoadAllExams()
	if err != nil {
		return nil, err
	}
	subjects := make([]string, 0, len(exams))
	for subject := range exams {
		subjects = append(subjects, subject)
	}
	s.sortStrings(subjects)
	return subjects, nil
}

// ListTopics returns the names of all simple topics in display order.
func (s *Service) ListTopics() ([]string, error) {
	topics, err := s.repo.LoadAllSimpleTopics()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(topics))
	for _, t := range topics {
		names = append(names, t.Name)
	}
	s.sortStrings(names)
	return names, nil
}

// ListEducationalMaterials returns all educational materials ordered by topic.
func (s *Service) ListEducationalMaterials() ([]model.EducationalMaterial, error) {
	docs, err := s.repo.LoadAllEducationalMaterials()
	if err != nil {
		return nil, err
	}
	materials := make([]model.EducationalMaterial, 0, len(docs))
	for _, m := range docs {
		materials = append(materials, m)
	}
	c := collate.New(s.tag)
	sort.SliceStable(materials, func(i, j int) bool {
		return c.CompareString(materials[i].Topic, materials[j].Topic) < 0
	})
	return materials, nil
}

// answersMatch compares answers ignoring case, including non-ASCII letters.
func (s *Service) answersMatch(given, want string) bool {
	return s.fold.String(strings.TrimSpace(given)) == s.fold.String(strings.TrimSpace(want))
}

// Examinee supplies answers during a mock exam and is told how each was graded.
type Examinee interface {
	Answer(ctx context.Context, n int, q model.Question) (string, error)
	Graded(ctx context.Context, n int, q model.Question, correct bool, readiness int)
}

// MockExamResult is the outcome of one mock exam.
type MockExamResult struct {
	Subject string
	Correct int
	Total   int
}

// TakeMockExam asks every question of the subject's exam in order, raises readiness
// for each correct answer, records the score and saves the student.
func (s *Service) TakeMockExam(ctx context.Context, st *model.Student, subject string, examinee Examinee) (MockExamResult, error) {
	res := MockExamResult{Subject: subject}
	if err := required("subject", subject); err != nil {
		return res, err
	}
	exam, err := s.repo.LoadExam(subject)
	if err != nil {
		return res, err
	}
	res.Total = len(exam.Questions)

	for i, q := range exam.Questions {
		answer, err := examinee.Answer(ctx, i+1, q)
		if err != nil {
			return res, fmt.Errorf("answer question %d: %w", i+1, err)
		}
		correct := s.answersMatch(answer, q.Answer)
		if correct {
			res.Correct++
			st.AddReadiness(model.ReadinessPerAnswer)
		}
		examinee.Graded(ctx, i+1, q, correct, st.Readiness)
	}

	st.RecordExam(subject, res.Correct, res.Total)
	if err := s.repo.SaveStudent(st); err != nil {
		return res, fmt.Errorf("save student: %w", err)
	}
	slog.Info("mock exam finished", "student", st.ID, "subject", subject,
		"correct", res.Correct, "total", res.Total)
	return res, nil
}
