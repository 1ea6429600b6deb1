package console

import (
	"context"

	appI18n "github.com/pavelanni/examprep/internal/i18n"
	"github.com/pavelanni/examprep/internal/model"
	"github.com/pavelanni/examprep/internal/prep"
)

func (c *Console) addStudent(ctx context.Context) error {
	id, err := c.askRequired(ctx, "PromptStudentID")
	if err != nil {
		return err
	}
	data := map[string]any{"ID": id}
	// Reject a taken ID before asking for the rest.
	found, err := c.svc.StudentExists(id)
	if err != nil {
		return err
	}
	if found {
		return &notice{id: "StudentExists", data: data, err: prep.ErrDuplicate}
	}
	lastName, err := c.askRequired(ctx, "PromptLastName")
	if err != nil {
		return err
	}
	firstName, err := c.askRequired(ctx, "PromptFirstName")
	if err != nil {
		return err
	}
	if _, err := c.svc.AddStudent(id, lastName, firstName); err != nil {
		return explain(err, "", "StudentExists", data)
	}
	c.println(appI18n.T(ctx, "StudentAdded"))
	return nil
}

func (c *Console) addExam(ctx context.Context) error {
	subject, err := c.askRequired(ctx, "PromptExamSubject")
	if err != nil {
		return err
	}
	data := map[string]any{"Subject": subject}
	found, err := c.svc.ExamExists(subject)
	if err != nil {
		return err
	}
	if found {
		return &notice{id: "ExamExists", data: data, err: prep.ErrDuplicate}
	}

	questions, err := c.readQuestions(ctx)
	if err != nil {
		return err
	}
	if err := c.svc.AddExam(subject, questions); err != nil {
		return explain(err, "", "ExamExists", data)
	}
	c.println(appI18n.T(ctx, "ExamAdded"))
	return nil
}

// readQuestions collects questions until "0" is entered as a topic. A blank field
// discards the question being entered and starts the next one.
func (c *Console) readQuestions(ctx context.Context) ([]model.Question, error) {
	c.println(appI18n.T(ctx, "PromptQuestionsIntro"))
	var questions []model.Question
	for {
		topic, err := c.ask(ctx, "PromptQuestionTopic")
		if err != nil {
			return nil, err
		}
		if topic == "0" {
			if len(questions) == 0 {
				return nil, &notice{id: "ExamNeedsQuestion", err: prep.ErrInvalidInput}
			}
			return questions, nil
		}
		q := model.Question{Topic: topic}
		if q.Topic != "" {
			if q.Text, err = c.ask(ctx, "PromptQuestionText"); err != nil {
				return nil, err
			}
		}
		if q.Topic != "" && q.Text != "" {
			if q.Answer, err = c.ask(ctx, "PromptCorrectAnswer"); err != nil {
				return nil, err
			}
		}
		if err := prep.ValidateQuestion(q); err != nil {
			c.report(ctx, err)
			continue
		}
		questions = append(questions, q)
	}
}

func (c *Console) addMaterial(ctx context.Context) error {
	subject, err := c.ask(ctx, "PromptMaterialSubject")
	if err != nil {
		return err
	}
	m := model.EducationalMaterial{Subject: subject}
	if m.Topic, err = c.askRequired(ctx, "PromptMaterialTopic"); err != nil {
		return err
	}
	if m.Title, err = c.askRequired(ctx, "PromptMaterialTitle"); err != nil {
		return err
	}
	if m.Author, err = c.askRequired(ctx, "PromptMaterialAuthor"); err != nil {
		return err
	}
	if err := c.svc.AddEducationalMaterial(m); err != nil {
		return explain(err, "", "MaterialExists", map[string]any{"Topic": m.Topic})
	}
	c.println(appI18n.T(ctx, "MaterialAddedByTeacher"))
	return nil
}

func (c *Console) addTopic(ctx context.Context) error {
	name, err := c.askRequired(ctx, "PromptTopicName")
	if err != nil {
		return err
	}
	if err := c.svc.AddTopic(name); err != nil {
		return explain(err, "", "TopicExists", map[string]any{"Topic": name})
	}
	c.println(appI18n.T(ctx, "TopicAdded"))
	return nil
}

// deleteWith prompts for a key, runs del and prints doneID on success.
func (c *Console) deleteWith(ctx context.Context, promptID, notFoundID, field, doneID string, del func(string) error) error {
	key, err := c.askRequired(ctx, promptID)
	if err != nil {
		return err
	}
	if err := del(key); err != nil {
		return explain(err, notFoundID, "", map[string]any{field: key})
	}
	c.println(appI18n.T(ctx, doneID))
	return nil
}

func (c *Console) deleteStudent(ctx context.Context) error {
	return c.deleteWith(ctx, "PromptStudentID", "StudentNotFound", "ID", "StudentDeleted", c.svc.DeleteStudent)
}

func (c *Console) deleteExam(ctx context.Context) error {
	return c.deleteWith(ctx, "PromptExamSubject", "ExamNotFound", "Subject", "ExamDeleted", c.svc.DeleteExam)
}

func (c *Console) deleteMaterial(ctx context.Context) error {
	return c.deleteWith(ctx, "PromptMaterialTopic", "MaterialNotFound", "Topic", "MaterialDeleted", c.svc.DeleteEducationalMaterial)
}

func (c *Console) deleteTopic(ctx context.Context) error {
	return c.deleteWith(ctx, "PromptTopicName", "TopicNotFound", "Topic", "TopicDeleted", c.svc.DeleteTopic)
}
