package store

import (
	"fmt"
	"log/slog"

	"github.com/pavelanni/examprep/internal/model"
)

// LoadExam returns the exam for subject.
func (s *Store) LoadExam(subject string) (*model.Exam, error) {
	docs, err := s.exams.readAll()
	if err != nil {
		return nil, err
	}
	doc, ok := docs[subject]
	if !ok {
		return nil, fmt.Errorf("exam %q: %w", subject, ErrNotFound)
	}
	return &doc, nil
}

// LoadAllExams returns every exam keyed by subject.
func (s *Store) LoadAllExams() (map[string]model.Exam, error) {
	return s.exams.readAll()
}

// SaveExam inserts or replaces the exam keyed by subject.
// Rejecting duplicates is up to the caller.
func (s *Store) SaveExam(e model.Exam) error {
	if err := s.exams.upsert(e.Subject, e); err != nil {
		return err
	}
	slog.Debug("saved exam", "subject", e.Subject, "questions", len(e.Questions))
	return nil
}

// DeleteExam removes the exam for subject. It returns false when there is none.
func (s *Store) DeleteExam(subject string) (bool, error) {
	ok, err := s.exams.remove(subject)
	if ok {
		slog.Info("deleted exam", "subject", subject)
	}
	return ok, err
}
