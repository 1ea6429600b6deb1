package store

import (
	"fmt"

	"github.com/pavelanni/examprep/internal/model"
)

// Snapshot reads every collection into one value.
func (s *Store) Snapshot() (model.Snapshot, error) {
	var snap model.Snapshot

	students, err := s.ListStudents()
	if err != nil {
		return snap, fmt.Errorf("list students: %w", err)
	}
	exams, err := s.LoadAllExams()
	if err != nil {
		return snap, fmt.Errorf("load exams: %w", err)
	}
	materials, err := s.LoadAllEducationalMaterials()
	if err != nil {
		return snap, fmt.Errorf("load educational materials: %w", err)
	}
	topics, err := s.LoadAllSimpleTopics()
	if err != nil {
		return snap, fmt.Errorf("load topics: %w", err)
	}

	snap.Students = students
	for _, k := range sortedKeys(exams) {
		snap.Exams = append(snap.Exams, exams[k])
	}
	snap.Materials = materials
	snap.Topics = topics
	return snap, nil
}
