package console

import (
	"context"
	"errors"
	"sort"

	appI18n "github.com/pavelanni/examprep/internal/i18n"
	"github.com/pavelanni/examprep/internal/model"
	"github.com/pavelanni/examprep/internal/prep"
)

func (c *Console) login(ctx context.Context, sess *Session) error {
	id, err := c.askRequired(ctx, "PromptStudentID")
	if err != nil {
		return err
	}
	st, err := c.svc.Login(id)
	if err != nil {
		return explain(err, "StudentNotFound", "", map[string]any{"ID": id})
	}
	sess.Student = st
	c.println(appI18n.Td(ctx, "Welcome", map[string]any{"Name": st.DisplayName()}))
	return nil
}

func (c *Console) readiness(ctx context.Context, st *model.Student) {
	c.println(appI18n.Td(ctx, "ReadinessUpdate", map[string]any{"Readiness": st.Readiness}))
}

func (c *Console) selfAssess(ctx context.Context, st *model.Student) {
	c.println(appI18n.Td(ctx, "SelfAssessment", map[string]any{"Readiness": st.Readiness}))
	c.println()
	c.println(appI18n.Td(ctx, "StatusLine", map[string]any{
		"Name":      st.DisplayName(),
		"Readiness": st.Readiness,
		"Minutes":   st.PlannedStudyMinutes,
	}))

	c.println(appI18n.T(ctx, "StudiedMaterials"))
	if len(st.Materials) == 0 {
		c.println(appI18n.T(ctx, "NoStudiedMaterials"))
	}
	for i, m := range st.Materials {
		if m.Kind == model.KindTopic {
			c.println(appI18n.Td(ctx, "StudiedTopicItem", map[string]any{"N": i + 1, "Topic": m.Topic}))
			continue
		}
		c.println(appI18n.Td(ctx, "StudiedMaterialItem", map[string]any{
			"N":      i + 1,
			"Topic":  m.Topic,
			"Title":  orDefault(ctx, m.Title, "NoTitle"),
			"Author": orDefault(ctx, m.Author, "UnknownAuthor"),
		}))
	}

	if len(st.ExamResult) > 0 {
		c.println(appI18n.T(ctx, "ExamResults"))
		subjects := make([]string, 0, len(st.ExamResult))
		for subject := range st.ExamResult {
			subjects = append(subjects, subject)
		}
		sort.Strings(subjects)
		for _, subject := range subjects {
			c.println(appI18n.Td(ctx, "ExamResultItem", map[string]any{
				"Subject": subject,
				"Score":   st.ExamResult[subject],
			}))
		}
	}
}

func orDefault(ctx context.Context, v, fallbackID string) string {
	if v != "" {
		return v
	}
	return appI18n.T(ctx, fallbackID)
}

func (c *Console) consult(ctx context.Context, st *model.Student) error {
	materials, err := c.svc.ListEducationalMaterials()
	if err != nil {
		return err
	}
	if len(materials) == 0 {
		c.println(appI18n.T(ctx, "NoMaterials"))
		return nil
	}
	c.println()
	c.println(appI18n.Tp(ctx, "MaterialsAvailable", len(materials)))
	for i, m := range materials {
		c.println(appI18n.Td(ctx, "MaterialListItem", map[string]any{
			"N":      i + 1,
			"Topic":  m.Topic,
			"Title":  orDefault(ctx, m.Title, "NoTitle"),
			"Author": orDefault(ctx, m.Author, "UnknownAuthor"),
		}))
	}

	topic, err := c.askRequired(ctx, "PromptConsultTopic")
	if err != nil {
		return err
	}
	c.println(appI18n.Td(ctx, "ConsultHeader", map[string]any{"Topic": topic}))

	m, err := c.svc.Consult(st, topic)
	switch {
	case err == nil:
		c.println(appI18n.T(ctx, "MaterialAdded"))
	case errors.Is(err, prep.ErrAlreadyRecorded):
		c.println(appI18n.T(ctx, "MaterialAlreadyAdded"))
	default:
		return explain(err, "MaterialNotFound", "", map[string]any{"Topic": topic})
	}
	c.println(appI18n.Td(ctx, "MaterialLine", map[string]any{
		"Title":  orDefault(ctx, m.Title, "NoTitle"),
		"Author": orDefault(ctx, m.Author, "UnknownAuthor"),
	}))
	if err != nil {
		return nil
	}
	c.readiness(ctx, st)
	return c.svc.SaveStudent(st)
}

func (c *Console) study(ctx context.Context, st *model.Student) error {
	topics, err := c.svc.ListTopics()
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		c.println(appI18n.T(ctx, "NoTopics"))
		return nil
	}
	c.println()
	c.println(appI18n.Tp(ctx, "TopicsAvailable", len(topics)))
	for i, name := range topics {
		c.println(appI18n.Td(ctx, "ListItem", map[string]any{"N": i + 1, "Name": name}))
	}

	name, err := c.askRequired(ctx, "PromptStudyTopic")
	if err != nil {
		return err
	}
	data := map[string]any{"Topic": name}
	err = c.svc.StudyTopic(st, name)
	if errors.Is(err, prep.ErrAlreadyRecorded) {
		c.println(appI18n.Td(ctx, "TopicAlreadyStudied", data))
		return nil
	}
	if err != nil {
		return explain(err, "TopicNotFound", "", data)
	}
	c.println(appI18n.Td(ctx, "TopicStudied", data))
	c.readiness(ctx, st)
	return c.svc.SaveStudent(st)
}

// consoleExaminee asks mock exam questions on the console.
type consoleExaminee struct {
	c *Console
}

func (e consoleExaminee) Answer(ctx context.Context, n int, q model.Question) (string, error) {
	e.c.println()
	e.c.println(appI18n.Td(ctx, "QuestionHeader", map[string]any{"N": n, "Topic": q.Topic}))
	e.c.println(q.Text)
	return e.c.ask(ctx, "PromptAnswer")
}

func (e consoleExaminee) Graded(ctx context.Context, _ int, q model.Question, correct bool, readiness int) {
	if correct {
		e.c.println(appI18n.T(ctx, "AnswerCorrect"))
	} else {
		e.c.println(appI18n.Td(ctx, "AnswerWrong", map[string]any{"Answer": q.Answer}))
	}
	e.c.println(appI18n.Td(ctx, "ReadinessUpdate", map[string]any{"Readiness": readiness}))
}

func (c *Console) mockExam(ctx context.Context, st *model.Student) error {
	subjects, err := c.svc.ListExamSubjects()
	if err != nil {
		return err
	}
	if len(subjects) == 0 {
		c.println(appI18n.T(ctx, "NoExams"))
		return nil
	}
	c.println()
	c.println(appI18n.Tp(ctx, "ExamsAvailable", len(subjects)))
	for i, subject := range subjects {
		c.println(appI18n.Td(ctx, "ListItem", map[string]any{"N": i + 1, "Name": subject}))
	}

	subject, err := c.askRequired(ctx, "PromptMockSubject")
	if err != nil {
		return err
	}
	res, err := c.svc.TakeMockExam(ctx, st, subject, consoleExaminee{c: c})
	if err != nil {
		return explain(err, "ExamNotFound", "", map[string]any{"Subject": subject})
	}
	c.println()
	c.println(appI18n.Td(ctx, "ExamScore", map[string]any{
		"Correct": res.Correct,
		"Total":   res.Total,
		"Subject": res.Subject,
	}))
	return nil
}

func (c *Console) planTime(ctx context.Context, st *model.Student) error {
	input, err := c.ask(ctx, "PromptMinutes")
	if err != nil {
		return err
	}
	total, err := c.svc.PlanStudyTime(st, input)
	if err != nil {
		return err
	}
	c.println(appI18n.Td(ctx, "PlannedTime", map[string]any{"Total": total}))
	return c.svc.SaveStudent(st)
}
