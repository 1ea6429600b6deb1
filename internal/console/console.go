// Package console runs the interactive menu loop over the preparation service.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	appI18n "github.com/pavelanni/examprep/internal/i18n"
	"github.com/pavelanni/examprep/internal/model"
	"github.com/pavelanni/examprep/internal/prep"
	"github.com/pavelanni/examprep/internal/store"
)

// Session is the state of one interactive run: the current menu state and the
// logged-in student, if any.
type Session struct {
	State   State
	Student *model.Student
}

// Console reads choices from an input stream and writes localized output.
type Console struct {
	svc *prep.Service
	in  *lineReader
	out io.Writer
}

// New creates a Console. The context passed to Run must carry a localizer.
func New(svc *prep.Service, in io.Reader, out io.Writer) *Console {
	return &Console{svc: svc, in: newLineReader(in), out: out}
}

// Run shows menus and handles choices until the user exits from the initial menu,
// the input ends, or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	sess := &Session{State: StateInitial}
	for {
		c.render(ctx, sess.State)
		choice, err := c.ask(ctx, "PromptChoice")
		if err != nil {
			return c.finish(ctx, err)
		}
		exit, err := c.handle(ctx, sess, choice)
		if err != nil {
			return c.finish(ctx, err)
		}
		if exit {
			return nil
		}
	}
}

// finish ends the loop. End of input and cancellation are normal exits.
func (c *Console) finish(ctx context.Context, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		c.println()
		c.println(appI18n.T(ctx, "Goodbye"))
		return nil
	}
	return err
}

func (c *Console) render(ctx context.Context, s State) {
	menu := MenuFor(s)
	c.println()
	c.println(appI18n.T(ctx, menu.TitleID))
	for _, item := range menu.Items {
		c.printf("%s. %s\n", item.Key, appI18n.T(ctx, item.MessageID))
	}
}

// handle runs the step for choice. It returns exit=true when the program should
// stop, and a non-nil error only when input has ended or ctx is cancelled. Every
// other failure is reported and leaves the state unchanged.
func (c *Console) handle(ctx context.Context, sess *Session, choice string) (exit bool, err error) {
	step := Next(sess.State, choice)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered from panic in menu action", "state", sess.State, "choice", choice, "panic", r)
			c.println(appI18n.Td(ctx, "UnexpectedError", map[string]any{"Error": r}))
			exit, err = false, nil
		}
	}()

	if step.Action == ActionExit {
		return true, nil
	}
	if step.Action == ActionInvalid {
		c.println(appI18n.T(ctx, "InvalidChoice"))
		return false, nil
	}

	if actErr := c.perform(ctx, sess, step.Action); actErr != nil {
		if isEndOfInput(actErr) {
			return false, actErr
		}
		c.report(ctx, actErr)
		return false, nil
	}
	slog.Debug("menu transition", "from", sess.State, "to", step.Next, "choice", choice)
	sess.State = step.Next
	return false, nil
}

func (c *Console) perform(ctx context.Context, sess *Session, action Action) error {
	switch action {
	case ActionNone:
		return nil
	case ActionLogin:
		return c.login(ctx, sess)
	case ActionLogout:
		sess.Student = nil
		return nil
	case ActionAddStudent:
		return c.addStudent(ctx)
	case ActionAddExam:
		return c.addExam(ctx)
	case ActionAddMaterial:
		return c.addMaterial(ctx)
	case ActionAddTopic:
		return c.addTopic(ctx)
	case ActionDeleteStudent:
		return c.deleteStudent(ctx)
	case ActionDeleteExam:
		return c.deleteExam(ctx)
	case ActionDeleteMaterial:
		return c.deleteMaterial(ctx)
	case ActionDeleteTopic:
		return c.deleteTopic(ctx)
	}

	// Remaining actions belong to a logged-in student.
	if sess.Student == nil {
		return &notice{id: "NotLoggedIn"}
	}
	switch action {
	case ActionSelfAssess:
		c.selfAssess(ctx, sess.Student)
		return nil
	case ActionConsult:
		return c.consult(ctx, sess.Student)
	case ActionStudy:
		return c.study(ctx, sess.Student)
	case ActionMockExam:
		return c.mockExam(ctx, sess.Student)
	case ActionPlanTime:
		return c.planTime(ctx, sess.Student)
	}
	return fmt.Errorf("unhandled action %d", action)
}

// notice is a failure with a localized message.
type notice struct {
	id   string
	data map[string]any
	err  error
}

func (n *notice) Error() string {
	if n.err != nil {
		return n.id + ": " + n.err.Error()
	}
	return n.id
}

func (n *notice) Unwrap() error { return n.err }

// explain attaches a localized message to not-found and duplicate errors.
func explain(err error, notFoundID, duplicateID string, data map[string]any) error {
	switch {
	case err == nil:
		return nil
	case notFoundID != "" && errors.Is(err, prep.ErrNotFound):
		return &notice{id: notFoundID, data: data, err: err}
	case duplicateID != "" && errors.Is(err, prep.ErrDuplicate):
		return &notice{id: duplicateID, data: data, err: err}
	}
	return err
}

func (c *Console) report(ctx context.Context, err error) {
	var n *notice
	switch {
	case errors.As(err, &n):
		c.println(appI18n.Td(ctx, n.id, n.data))
	case errors.Is(err, prep.ErrInvalidInput):
		c.println(appI18n.T(ctx, "InvalidInput"))
	case errors.Is(err, store.ErrCorrupt):
		slog.Error("data file is corrupt", "error", err)
		c.println(appI18n.Td(ctx, "CorruptData", map[string]any{"Error": err}))
	default:
		slog.Error("operation failed", "error", err)
		c.println(appI18n.Td(ctx, "OperationFailed", map[string]any{"Error": err}))
	}
}

func isEndOfInput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled)
}

// ask prints a localized prompt and returns the trimmed reply.
func (c *Console) ask(ctx context.Context, promptID string) (string, error) {
	c.printf("%s", appI18n.T(ctx, promptID))
	line, err := c.in.readLine(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// askRequired is ask that rejects a blank reply with prep.ErrInvalidInput.
func (c *Console) askRequired(ctx context.Context, promptID string) (string, error) {
	v, err := c.ask(ctx, promptID)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%s: %w", promptID, prep.ErrInvalidInput)
	}
	return v, nil
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

// lineReader delivers input lines from a background scanner so that a blocked
// read can be abandoned when the context is cancelled.
type lineReader struct {
	lines chan string
	err   error // set before lines is closed
}

func newLineReader(r io.Reader) *lineReader {
	l := &lineReader{lines: make(chan string)}
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			l.lines <- sc.Text()
		}
		l.err = sc.Err()
		if l.err == nil {
			l.err = io.EOF
		}
		close(l.lines)
	}()
	return l
}

func (l *lineReader) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-l.lines:
		if !ok {
			return "", l.err
		}
		return line, nil
	}
}
