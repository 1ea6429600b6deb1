package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pavelanni/examprep/internal/archive"
	"github.com/pavelanni/examprep/internal/console"
	appI18n "github.com/pavelanni/examprep/internal/i18n"
	"github.com/pavelanni/examprep/internal/model"
	"github.com/pavelanni/examprep/internal/prep"
	"github.com/pavelanni/examprep/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "examprep",
		Short:        "Console exam preparation tracker for students and teachers",
		RunE:         runConsole,
		SilenceUsage: true,
	}
	addCommonFlags(root.Flags())
	root.AddCommand(exportCmd(), archiveCmd())
	return root
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export student progress as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	addCommonFlags(f)
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	return cmd
}

func archiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Copy all data files into a SQLite database",
		RunE:  runArchive,
	}
	f := cmd.Flags()
	addCommonFlags(f)
	f.String("db", "examprep.db", "SQLite database path")
	return cmd
}

func addCommonFlags(f *pflag.FlagSet) {
	f.String("data-dir", "storage", "Directory holding the JSON data files")
	f.StringP("lang", "l", "ru", "UI language (en, ru)")
	f.Bool("strict-catalogs", false, "Fail on damaged exam, material and topic files instead of reading them as empty")
	f.String("log-level", "warn", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("EXAMPREP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("examprep")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/examprep")
	v.AddConfigPath("/etc/examprep")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// loadConfig resolves logging and the runtime settings shared by all commands.
func loadConfig(cmd *cobra.Command) (model.Config, error) {
	v := viperForCmd(cmd)
	setupLogging(v)

	cfg := model.Config{
		DataDir:        v.GetString("data-dir"),
		Lang:           strings.ToLower(strings.TrimSpace(v.GetString("lang"))),
		StrictCatalogs: v.GetBool("strict-catalogs"),
	}
	if cfg.DataDir == "" {
		return cfg, fmt.Errorf("data-dir must not be empty")
	}
	if !appI18n.Supported(cfg.Lang) {
		return cfg, fmt.Errorf("unsupported language %q (want en or ru)", cfg.Lang)
	}
	slog.Debug("configuration", "data_dir", cfg.DataDir, "lang", cfg.Lang, "strict_catalogs", cfg.StrictCatalogs)
	return cfg, nil
}

func openStore(cfg model.Config) *store.Store {
	return store.New(cfg.DataDir, store.WithStrictCatalogs(cfg.StrictCatalogs))
}

func runConsole(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := appI18n.Init(cfg.Lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	svc, err := prep.New(openStore(cfg), cfg.Lang)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting console", "data_dir", cfg.DataDir, "lang", cfg.Lang)
	return console.New(svc, os.Stdin, os.Stdout).Run(appI18n.Context(ctx, cfg.Lang))
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := prep.New(openStore(cfg), cfg.Lang)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	students, err := svc.Report()
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	report := model.ProgressReport{
		GeneratedAt: time.Now().UTC(),
		Students:    students,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := viperForCmd(cmd).GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)

	slog.Info("exported progress report", "students", len(students), "output", outPath)
	return nil
}

func runArchive(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	snap, err := openStore(cfg).Snapshot()
	if err != nil {
		return fmt.Errorf("read data files: %w", err)
	}

	dbPath := viperForCmd(cmd).GetString("db")
	db, err := archive.New(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Write(snap); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	sum, err := db.Summary()
	if err != nil {
		return fmt.Errorf("summarize archive: %w", err)
	}

	slog.Info("archive written",
		"db", dbPath,
		"students", sum.Students,
		"exam_results", sum.Results,
		"student_materials", sum.Records,
		"exams", sum.Exams,
		"exam_questions", sum.Questions,
		"educational_materials", sum.Materials,
		"topics", sum.Topics,
	)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d students, %d exams (%d questions), %d materials, %d topics\n",
		dbPath, sum.Students, sum.Exams, sum.Questions, sum.Materials, sum.Topics)

	ranking, err := db.ReadinessRanking()
	if err != nil {
		return fmt.Errorf("readiness ranking: %w", err)
	}
	for i, r := range ranking {
		fmt.Fprintf(out, "%d. %s (%s) readiness %d%%, %d materials\n", i+1, r.Name, r.ID, r.Readiness, r.Materials)
	}
	return nil
}
