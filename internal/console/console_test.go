package console

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appI18n "github.com/pavelanni/examprep/internal/i18n"
	"github.com/pavelanni/examprep/internal/model"
	"github.com/pavelanni/examprep/internal/prep"
	"github.com/pavelanni/examprep/internal/store"
)

func TestNextTransitions(t *testing.T) {
	tests := []struct {
		state  State
		choice string
		want   Step
	}{
		{StateInitial, "1", Step{ActionLogin, StateStudent}},
		{StateInitial, "2", Step{ActionNone, StateTeacher}},
		{StateInitial, "0", Step{ActionExit, StateInitial}},
		{StateInitial, "3", Step{ActionInvalid, StateInitial}},

		{StateStudent, "0", Step{ActionLogout, StateInitial}},
		{StateStudent, "1", Step{ActionSelfAssess, StateStudent}},
		{StateStudent, "2", Step{ActionConsult, StateStudent}},
		{StateStudent, "3", Step{ActionStudy, StateStudent}},
		{StateStudent, "4", Step{ActionMockExam, StateStudent}},
		{StateStudent, "5", Step{ActionPlanTime, StateStudent}},
		{StateStudent, "6", Step{ActionInvalid, StateStudent}},

		{StateTeacher, "1", Step{ActionNone, StateAdded}},
		{StateTeacher, "2", Step{ActionNone, StateDeleted}},
		{StateTeacher, "0", Step{ActionLogout, StateInitial}},
		{StateTeacher, "x", Step{ActionInvalid, StateTeacher}},

		{StateAdded, "0", Step{ActionNone, StateTeacher}},
		{StateAdded, "1", Step{ActionAddStudent, StateAdded}},
		{StateAdded, "2", Step{ActionAddExam, StateAdded}},
		{StateAdded, "3", Step{ActionAddMaterial, StateAdded}},
		{StateAdded, "4", Step{ActionAddTopic, StateAdded}},
		{StateAdded, "5", Step{ActionInvalid, StateAdded}},

		{StateDeleted, "0", Step{ActionNone, StateTeacher}},
		{StateDeleted, "1", Step{ActionDeleteStudent, StateDeleted}},
		{StateDeleted, "2", Step{ActionDeleteExam, StateDeleted}},
		{StateDeleted, "3", Step{ActionDeleteMaterial, StateDeleted}},
		{StateDeleted, "4", Step{ActionDeleteTopic, StateDeleted}},
		{StateDeleted, "", Step{ActionInvalid, StateDeleted}},
	}
	for _, tt := range tests {
		t.Run(tt.state.String()+"/"+tt.choice, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.state, tt.choice))
		})
	}
}

func TestMenusCoverEveryState(t *testing.T) {
	for _, s := range []State{StateInitial, StateStudent, StateTeacher, StateAdded, StateDeleted} {
		menu := MenuFor(s)
		assert.NotEmpty(t, menu.TitleID, s.String())
		assert.NotEmpty(t, menu.Items, s.String())
	}
}

type fixture struct {
	svc  *prep.Service
	repo *store.Store
	ctx  context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	require.NoError(t, appI18n.Init("en"))
	repo := store.New(t.TempDir())
	svc, err := prep.New(repo, "en")
	require.NoError(t, err)
	return fixture{svc: svc, repo: repo, ctx: appI18n.Context(context.Background(), "en")}
}

func (f fixture) run(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	c := New(f.svc, strings.NewReader(input), &out)
	require.NoError(t, c.Run(f.ctx))
	return out.String()
}

func lines(l ...string) string {
	return strings.Join(l, "\n") + "\n"
}

func TestStudentStudiesTopic(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.AddTopic("Biology"))
	_, err := f.svc.AddStudent("S1", "Doe", "Jane")
	require.NoError(t, err)

	out := f.run(t, lines("1", "S1", "3", "Biology", "3", "Biology", "0", "0"))

	assert.Contains(t, out, "Welcome, Jane Doe!")
	assert.Contains(t, out, "1 topic available for study:")
	assert.Contains(t, out, "Topic 'Biology' studied.")
	assert.Contains(t, out, "[Update] Readiness: 10%")
	assert.Contains(t, out, "Topic 'Biology' was already studied.")

	st, err := f.repo.LoadStudent("S1")
	require.NoError(t, err)
	assert.Equal(t, 10, st.Readiness)
	assert.Equal(t, []model.MaterialRecord{{Kind: model.KindTopic, Topic: "Biology"}}, st.Materials)
}

func TestStudentMockExamAndPlan(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.AddExam("Math", []model.Question{{Topic: "Algebra", Text: "2+2=?", Answer: "4"}}))
	_, err := f.svc.AddStudent("S1", "Doe", "Jane")
	require.NoError(t, err)

	out := f.run(t, lines("1", "S1", "4", "Math", "4", "5", "30", "5", "-5", "1", "0", "0"))

	assert.Contains(t, out, "Question 1 on topic 'Algebra':")
	assert.Contains(t, out, "2+2=?")
	assert.Contains(t, out, "Correct!")
	assert.Contains(t, out, "You scored 1 of 1 in 'Math'.")
	assert.Contains(t, out, "Planned study time is now 30 min.")
	assert.Contains(t, out, "Error: the value is empty or invalid.")
	assert.Contains(t, out, "[Self-assessment] Current readiness: 20%")
	assert.Contains(t, out, "- Math: 1/1")

	st, err := f.repo.LoadStudent("S1")
	require.NoError(t, err)
	assert.Equal(t, "1/1", st.ExamResult["Math"])
	assert.Equal(t, 20, st.Readiness)
	assert.Equal(t, 30, st.PlannedStudyMinutes)
}

func TestStudentConsultation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.AddEducationalMaterial(model.EducationalMaterial{Topic: "Optics", Title: "Light", Author: "Newton"}))
	_, err := f.svc.AddStudent("S1", "Doe", "Jane")
	require.NoError(t, err)

	out := f.run(t, lines("1", "S1", "2", "Optics", "2", "Optics", "2", "Sound", "0", "0"))

	assert.Contains(t, out, "1. Optics (Title: Light, Author: Newton)")
	assert.Contains(t, out, "Recommended material added:")
	assert.Contains(t, out, "- Light (Author: Newton)")
	assert.Contains(t, out, "Material was already added earlier:")
	assert.Contains(t, out, "Material for topic 'Sound' was not found.")

	st, err := f.repo.LoadStudent("S1")
	require.NoError(t, err)
	assert.Equal(t, 10, st.Readiness)
	assert.Len(t, st.Materials, 1)
}

func TestEmptyCatalogsSkipOperation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddStudent("S1", "Doe", "Jane")
	require.NoError(t, err)

	out := f.run(t, lines("1", "S1", "2", "3", "4", "0", "0"))

	assert.Contains(t, out, "There are no materials available for consultation.")
	assert.Contains(t, out, "There are no topics available for study.")
	assert.Contains(t, out, "There are no exams available.")
}

func TestLoginFailureStaysInitial(t *testing.T) {
	f := newFixture(t)

	out := f.run(t, lines("1", "nobody", "1", "", "0"))

	assert.Contains(t, out, "Student 'nobody' was not found in the list.")
	assert.Contains(t, out, "Error: the value is empty or invalid.")
	assert.NotContains(t, out, "Main menu")
}

func TestTeacherAddAndDelete(t *testing.T) {
	f := newFixture(t)

	out := f.run(t, lines(
		"2", "1",
		"1", "S1", "Doe", "Jane",
		"1", "S1",
		"2", "Math", "Algebra", "2+2=?", "4", "", "0",
		"2", "Math",
		"3", "", "Optics", "Light", "Newton",
		"4", "Biology",
		"4", "Biology",
		"0", "2",
		"2", "Math",
		"2", "Math",
		"4", "Biology",
		"1", "S1",
		"0", "0", "0",
	))

	assert.Contains(t, out, "Student added.")
	assert.Contains(t, out, "Error: a student with ID 'S1' already exists. Nothing was added.")
	assert.Contains(t, out, "Exam added.")
	assert.Contains(t, out, "Error: an exam for subject 'Math' already exists. Nothing was added.")
	assert.Contains(t, out, "Additional literature added.")
	assert.Contains(t, out, "Topic added.")
	assert.Contains(t, out, "Error: topic 'Biology' already exists. Nothing was added.")
	assert.Contains(t, out, "Exam deleted.")
	assert.Contains(t, out, "Exam for subject 'Math' was not found.")
	assert.Contains(t, out, "Topic deleted.")
	assert.Contains(t, out, "Student deleted.")

	_, err := f.repo.LoadStudent("S1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	m, err := f.repo.LoadEducationalMaterial("Optics")
	require.NoError(t, err)
	assert.Equal(t, "Light", m.Title)
	assert.Empty(t, m.Subject)
}

func TestAddExamNeedsQuestion(t *testing.T) {
	f := newFixture(t)

	out := f.run(t, lines("2", "1", "2", "Math", "0", "0", "0", "0"))

	assert.Contains(t, out, "Error: an exam must contain at least one question.")
	_, err := f.repo.LoadExam("Math")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInvalidChoice(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, lines("9", "0"))
	assert.Contains(t, out, "Invalid choice!")
}

func TestEndOfInput(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "2\n")
	assert.Contains(t, out, "Teacher menu")
	assert.Contains(t, out, "Program terminated.")
}

func TestCancelWhileWaiting(t *testing.T) {
	f := newFixture(t)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(f.ctx)
	var out bytes.Buffer
	c := New(f.svc, pr, &out)

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Contains(t, out.String(), "Program terminated.")
}

func TestPanicIsRecovered(t *testing.T) {
	require.NoError(t, appI18n.Init("en"))
	ctx := appI18n.Context(context.Background(), "en")
	var out bytes.Buffer
	// A nil service panics on first use.
	c := New(nil, strings.NewReader(lines("1", "S1", "0")), &out)

	require.NoError(t, c.Run(ctx))
	assert.Contains(t, out.String(), "An error occurred:")
	assert.Contains(t, out.String(), "Choose an option")
}

func TestCorruptRosterReported(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.repo.Dir(), store.StudentsFile), []byte("{"), 0o644))

	out := f.run(t, lines("1", "S1", "0"))

	assert.Contains(t, out, "Error: a data file is damaged")
	assert.NotContains(t, out, "Main menu")
}
