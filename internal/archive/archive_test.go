package archive

import (
	"path/filepath"
	"testing"

	"github.com/pavelanni/examprep/internal/model"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := New(filepath.Join(t.TempDir(), "prep.db"))
	if err != nil {
		t.Fatalf("newTestArchive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func testSnapshot() model.Snapshot {
	jane := model.NewStudent("S1", "Doe", "Jane")
	jane.Readiness = 30
	jane.ExamResult["Math"] = "1/2"
	jane.AddMaterial(model.Topic{Name: "Biology"}.Record())
	jane.AddMaterial(model.EducationalMaterial{Topic: "Optics", Title: "Light", Author: "Newton"}.Record())

	john := model.NewStudent("S2", "Smith", "John")
	john.Readiness = 50

	return model.Snapshot{
		Students: []model.Student{*jane, *john},
		Exams: []model.Exam{{
			Subject: "Math",
			Questions: []model.Question{
				{Topic: "Algebra", Text: "2+2=?", Answer: "4"},
				{Topic: "Algebra", Text: "3*3=?", Answer: "9"},
			},
		}},
		Materials: map[string]model.EducationalMaterial{
			"Optics": {Topic: "Optics", Title: "Light", Author: "Newton"},
		},
		Topics: map[string]model.Topic{
			"Biology": {Name: "Biology"},
			"Физика":  {Name: "Физика"},
		},
	}
}

func TestWriteAndSummary(t *testing.T) {
	a := newTestArchive(t)

	if err := a.Write(testSnapshot()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := a.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	want := model.ArchiveSummary{
		Students:  2,
		Results:   1,
		Records:   2,
		Exams:     1,
		Questions: 2,
		Materials: 1,
		Topics:    2,
	}
	if got != want {
		t.Errorf("Summary = %+v, want %+v", got, want)
	}
}

func TestWriteReplacesPreviousSnapshot(t *testing.T) {
	a := newTestArchive(t)

	if err := a.Write(testSnapshot()); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	smaller := model.Snapshot{Students: []model.Student{*model.NewStudent("S3", "Roe", "Ann")}}
	if err := a.Write(smaller); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	got, err := a.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got != (model.ArchiveSummary{Students: 1}) {
		t.Errorf("Summary after replace = %+v", got)
	}
}

func TestWriteIsAtomic(t *testing.T) {
	a := newTestArchive(t)

	if err := a.Write(testSnapshot()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Duplicate student IDs violate the primary key and abort the run.
	st := model.NewStudent("S9", "Dup", "Dup")
	bad := model.Snapshot{Students: []model.Student{*st, *st}}
	if err := a.Write(bad); err == nil {
		t.Fatal("expected error for duplicate student IDs")
	}

	got, err := a.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got.Students != 2 || got.Questions != 2 {
		t.Errorf("previous snapshot not kept: %+v", got)
	}
}

func TestReadinessRanking(t *testing.T) {
	a := newTestArchive(t)
	if err := a.Write(testSnapshot()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := a.ReadinessRanking()
	if err != nil {
		t.Fatalf("ReadinessRanking: %v", err)
	}
	want := []RankedStudent{
		{ID: "S2", Name: "John Smith", Readiness: 50, Materials: 0},
		{ID: "S1", Name: "Jane Doe", Readiness: 30, Materials: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("ReadinessRanking = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rank %d = %+v, want %+v", i+1, got[i], want[i])
		}
	}
}

func TestNewFailsForMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "prep.db"))
	if err == nil {
		t.Fatal("expected error for a database in a missing directory")
	}
}

func TestEmptySnapshot(t *testing.T) {
	a := newTestArchive(t)
	if err := a.Write(model.Snapshot{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := a.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got != (model.ArchiveSummary{}) {
		t.Errorf("Summary = %+v, want zero", got)
	}
}
