package model

import "time"

// ProgressReport is the top-level JSON structure written by the export command.
type ProgressReport struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Students    []StudentProgress `json:"students"`
}

// StudentProgress holds one student's preparation state for export.
type StudentProgress struct {
	ID                  string                `json:"id"`
	DisplayName         string                `json:"display_name"`
	Readiness           int                   `json:"readiness"`
	PlannedStudyMinutes int                   `json:"planned_study_time_minutes"`
	ExamResults         map[string]string     `json:"exam_results"`
	StudiedTopics       []string              `json:"studied_topics"`
	Consulted           []EducationalMaterial `json:"consulted_materials"`
}

// Snapshot is a full copy of every collection, used by the archive command.
type Snapshot struct {
	Students  []Student
	Exams     []Exam
	Materials map[string]EducationalMaterial // keyed as stored
	Topics    map[string]Topic
}

// ArchiveSummary holds row counts of an archived snapshot.
type ArchiveSummary struct {
	Students  int
	Results   int
	Records   int
	Exams     int
	Questions int
	Materials int
	Topics    int
}
