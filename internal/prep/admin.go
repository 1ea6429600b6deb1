package prep

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pavelanni/examprep/internal/model"
)

// exists turns a load result into a duplicate check. Errors other than
// ErrNotFound (a corrupt roster, say) abort the creation.
func exists(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// AddStudent creates a student with empty progress.
func (s *Service) AddStudent(id, lastName, firstName string) (*model.Student, error) {
	if err := required("student id", id); err != nil {
		return nil, err
	}
	if err := required("last name", lastName); err != nil {
		return nil, err
	}
	if err := required("first name", firstName); err != nil {
		return nil, err
	}
	_, err := s.repo.LoadStudent(id)
	found, err := exists(err)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, fmt.Errorf("student %q: %w", id, ErrDuplicate)
	}

	st := model.NewStudent(id, lastName, firstName)
	if err := s.repo.SaveStudent(st); err != nil {
		return nil, err
	}
	slog.Info("created student", "id", id)
	return st, nil
}

// StudentExists reports whether a student with id is on the roster.
func (s *Service) StudentExists(id string) (bool, error) {
	_, err := s.repo.LoadStudent(id)
	return exists(err)
}

// AddExam creates an exam. Every question field is required and at least one
// question must be given.
func (s *Service) AddExam(subject string, questions []model.Question) error {
	if err := required("subject", subject); err != nil {
		return err
	}
	if len(questions) == 0 {
		return fmt.Errorf("exam needs at least one question: %w", ErrInvalidInput)
	}
	for i, q := range questions {
		if err := ValidateQuestion(q); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	found, err := s.ExamExists(subject)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("exam %q: %w", subject, ErrDuplicate)
	}
	if err := s.repo.SaveExam(model.Exam{Subject: subject, Questions: questions}); err != nil {
		return err
	}
	slog.Info("created exam", "subject", subject, "questions", len(questions))
	return nil
}

// ExamExists reports whether an exam for subject is stored.
func (s *Service) ExamExists(subject string) (bool, error) {
	_, err := s.repo.LoadExam(subject)
	return exists(err)
}

// ValidateQuestion checks that topic, text and answer are all present.
func ValidateQuestion(q model.Question) error {
	if err := required("question topic", q.Topic); err != nil {
		return err
	}
	if err := required("question text", q.Text); err != nil {
		return err
	}
	return required("correct answer", q.Answer)
}

// AddEducationalMaterial creates an educational material. Subject is optional.
func (s *Service) AddEducationalMaterial(m model.EducationalMaterial) error {
	if err := required("topic", m.Topic); err != nil {
		return err
	}
	if err := required("title", m.Title); err != nil {
		return err
	}
	if err := required("author", m.Author); err != nil {
		return err
	}
	_, err := s.repo.LoadEducationalMaterial(m.Topic)
	found, err := exists(err)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("educational material %q: %w", m.Topic, ErrDuplicate)
	}
	if err := s.repo.SaveEducationalMaterial(m); err != nil {
		return err
	}
	slog.Info("created educational material", "topic", m.Topic)
	return nil
}

// AddTopic creates a simple topic.
func (s *Service) AddTopic(name string) error {
	if err := required("topic", name); err != nil {
		return err
	}
	_, err := s.repo.LoadSimpleTopic(name)
	found, err := exists(err)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("topic %q: %w", name, ErrDuplicate)
	}
	if err := s.repo.SaveSimpleTopic(model.Topic{Name: name}); err != nil {
		return err
	}
	slog.Info("created topic", "name", name)
	return nil
}

// deleted converts a repository delete result into an error.
func deleted(kind, key string, ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %q: %w", kind, key, ErrNotFound)
	}
	return nil
}

// DeleteStudent removes a student from the roster.
func (s *Service) DeleteStudent(id string) error {
	if err := required("student id", id); err != nil {
		return err
	}
	ok, err := s.repo.DeleteStudent(id)
	return deleted("student", id, ok, err)
}

// DeleteExam removes the exam for subject.
func (s *Service) DeleteExam(subject string) error {
	if err := required("subject", subject); err != nil {
		return err
	}
	ok, err := s.repo.DeleteExam(subject)
	return deleted("exam", subject, ok, err)
}

// DeleteEducationalMaterial removes the educational material for topic.
func (s *Service) DeleteEducationalMaterial(topic string) error {
	if err := required("topic", topic); err != nil {
		return err
	}
	ok, err := s.repo.DeleteEducationalMaterial(topic)
	return deleted("educational material", topic, ok, err)
}

// DeleteTopic removes a simple topic.
func (s *Service) DeleteTopic(name string) error {
	if err := required("topic", name); err != nil {
		return err
	}
	ok, err := s.repo.DeleteSimpleTopic(name)
	return deleted("topic", name, ok, err)
}
