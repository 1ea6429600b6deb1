// Package archive copies the JSON collections into a SQLite database for reporting.
package archive

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pavelanni/examprep/internal/model"

	_ "modernc.org/sqlite"
)

type Archive struct {
	db *sql.DB
}

func New(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return a, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		last_name TEXT NOT NULL,
		first_name TEXT NOT NULL,
		readiness INTEGER NOT NULL DEFAULT 0,
		planned_study_minutes INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS exam_results (
		student_id TEXT NOT NULL,
		subject TEXT NOT NULL,
		result TEXT NOT NULL,
		PRIMARY KEY (student_id, subject),
		FOREIGN KEY (student_id) REFERENCES students(id)
	);

	CREATE TABLE IF NOT EXISTS student_materials (
		student_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		kind TEXT NOT NULL,
		topic TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (student_id, position),
		FOREIGN KEY (student_id) REFERENCES students(id)
	);

	CREATE TABLE IF NOT EXISTS exams (
		subject TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS exam_questions (
		subject TEXT NOT NULL,
		position INTEGER NOT NULL,
		topic TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		PRIMARY KEY (subject, position),
		FOREIGN KEY (subject) REFERENCES exams(subject)
	);

	CREATE TABLE IF NOT EXISTS educational_materials (
		key TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS topics (
		key TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	`
	_, err := a.db.Exec(schema)
	return err
}

// tables lists every table in dependency order for clearing.
var tables = []string{
	"exam_results", "student_materials", "students",
	"exam_questions", "exams",
	"educational_materials", "topics",
}

// Write replaces the archived data with snap inside one transaction.
func (a *Archive) Write(snap model.Snapshot) error {
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range tables {
		if _, err := tx.Exec(`DELETE FROM ` + t); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}

	for _, st := range snap.Students {
		if _, err := tx.Exec(
			`INSERT INTO students (id, last_name, first_name, readiness, planned_study_minutes)
			 VALUES (?, ?, ?, ?, ?)`,
			st.ID, st.LastName, st.FirstName, st.Readiness, st.PlannedStudyMinutes,
		); err != nil {
			return fmt.Errorf("insert student %s: %w", st.ID, err)
		}
		for subject, result := range st.ExamResult {
			if _, err := tx.Exec(
				`INSERT INTO exam_results (student_id, subject, result) VALUES (?, ?, ?)`,
				st.ID, subject, result,
			); err != nil {
				return fmt.Errorf("insert result %s/%s: %w", st.ID, subject, err)
			}
		}
		for i, m := range st.Materials {
			if _, err := tx.Exec(
				`INSERT INTO student_materials (student_id, position, kind, topic, subject, title, author)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				st.ID, i, string(m.Kind), m.Topic, m.Subject, m.Title, m.Author,
			); err != nil {
				return fmt.Errorf("insert material %s/%d: %w", st.ID, i, err)
			}
		}
	}

	for _, e := range snap.Exams {
		if _, err := tx.Exec(`INSERT INTO exams (subject) VALUES (?)`, e.Subject); err != nil {
			return fmt.Errorf("insert exam %s: %w", e.Subject, err)
		}
		for i, q := range e.Questions {
			if _, err := tx.Exec(
				`INSERT INTO exam_questions (subject, position, topic, question, answer) VALUES (?, ?, ?, ?, ?)`,
				e.Subject, i, q.Topic, q.Text, q.Answer,
			); err != nil {
				return fmt.Errorf("insert question %s/%d: %w", e.Subject, i, err)
			}
		}
	}

	for key, m := range snap.Materials {
		if _, err := tx.Exec(
			`INSERT INTO educational_materials (key, topic, subject, title, author) VALUES (?, ?, ?, ?, ?)`,
			key, m.Topic, m.Subject, m.Title, m.Author,
		); err != nil {
			return fmt.Errorf("insert educational material %s: %w", key, err)
		}
	}

	for key, t := range snap.Topics {
		if _, err := tx.Exec(`INSERT INTO topics (key, name) VALUES (?, ?)`, key, t.Name); err != nil {
			return fmt.Errorf("insert topic %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("archived snapshot", "students", len(snap.Students), "exams", len(snap.Exams))
	return nil
}

// Summary returns row counts of the archived tables.
func (a *Archive) Summary() (model.ArchiveSummary, error) {
	var sum model.ArchiveSummary
	counts := []struct {
		table string
		dst   *int
	}{
		{"students", &sum.Students},
		{"exam_results", &sum.Results},
		{"student_materials", &sum.Records},
		{"exams", &sum.Exams},
		{"exam_questions", &sum.Questions},
		{"educational_materials", &sum.Materials},
		{"topics", &sum.Topics},
	}
	for _, c := range counts {
		if err := a.db.QueryRow(`SELECT COUNT(*) FROM ` + c.table).Scan(c.dst); err != nil {
			return sum, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return sum, nil
}

// RankedStudent is one row of the readiness ranking.
type RankedStudent struct {
	ID        string
	Name      string
	Readiness int
	Materials int
}

// ReadinessRanking returns archived students ordered by readiness, highest first,
// with the number of materials each has recorded.
func (a *Archive) ReadinessRanking() ([]RankedStudent, error) {
	rows, err := a.db.Query(`
		SELECT s.id, s.first_name || ' ' || s.last_name, s.readiness, COUNT(m.position)
		FROM students s
		LEFT JOIN student_materials m ON m.student_id = s.id
		GROUP BY s.id
		ORDER BY s.readiness DESC, s.id`)
	if err != nil {
		return nil, fmt.Errorf("query ranking: %w", err)
	}
	defer rows.Close()
	var ranking []RankedStudent
	for rows.Next() {
		var r RankedStudent
		if err := rows.Scan(&r.ID, &r.Name, &r.Readiness, &r.Materials); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		ranking = append(ranking, r)
	}
	return ranking, rows.Err()
}
