package store

import (
	"fmt"
	"log/slog"

	"github.com/pavelanni/examprep/internal/model"
)

// LoadStudent returns the student with the given ID.
func (s *Store) LoadStudent(id string) (*model.Student, error) {
	docs, err := s.students.readAll()
	if err != nil {
		return nil, err
	}
	doc, ok := docs[id]
	if !ok {
		return nil, fmt.Errorf("student %q: %w", id, ErrNotFound)
	}
	doc.Normalize()
	return &doc, nil
}

// SaveStudent inserts or replaces the student keyed by its ID.
func (s *Store) SaveStudent(st *model.Student) error {
	doc := *st
	doc.Normalize()
	if err := s.students.upsert(st.ID, doc); err != nil {
		slog.Error("failed to save student", "id", st.ID, "error", err)
		return err
	}
	slog.Debug("saved student", "id", st.ID, "readiness", st.Readiness)
	return nil
}

// DeleteStudent removes the student. It returns false when no such student exists.
func (s *Store) DeleteStudent(id string) (bool, error) {
	ok, err := s.students.remove(id)
	if ok {
		slog.Info("deleted student", "id", id)
	}
	return ok, err
}

// ListStudents returns all students ordered by ID.
func (s *Store) ListStudents() ([]model.Student, error) {
	docs, err := s.students.readAll()
	if err != nil {
		return nil, err
	}
	students := make([]model.Student, 0, len(docs))
	for _, k := range sortedKeys(docs) {
		st := docs[k]
		st.Normalize()
		students = append(students, st)
	}
	return students, nil
}
