package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prepdesk/prepdesk/internal/handler"
	"github.com/prepdesk/prepdesk/internal/interview"
	"github.com/prepdesk/prepdesk/internal/question"
	"github.com/prepdesk/prepdesk/internal/scorer"
	"github.com/prepdesk/prepdesk/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "prepdesk",
		Short: "Timed interview practice server with automatic scoring",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `prepdesk --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP interview server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "", "SQLite database path (empty = in-memory, nothing survives restart)")
	f.StringP("questions", "q", "", "Path to a custom question bank JSON file")
	f.String("scorer", "heuristic", "Scoring backend (heuristic, llm)")
	f.Bool("score-jitter", false, "Randomize heuristic scores within +/-20% to mimic evaluator variance")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM scoring")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export candidate results as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "", "SQLite database path (required)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
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

	v.SetEnvPrefix("PREPDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("prepdesk")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/prepdesk")
	v.AddConfigPath("/etc/prepdesk")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	repo, err := openRepository(v.GetString("db"))
	if err != nil {
		return err
	}
	defer repo.Close()

	bank, err := loadBank(repo, v.GetString("questions"))
	if err != nil {
		return fmt.Errorf("load question bank: %w", err)
	}

	sc, err := buildScorer(v)
	if err != nil {
		return err
	}

	svc := interview.New(bank, sc, repo)
	defer svc.Close()

	// Surface interrupted attempts so the UI can offer resume-or-restart.
	if c, err := svc.Resumable(context.Background()); err == nil && c != nil {
		slog.Info("found resumable attempt", "candidate_id", c.ID, "name", c.Name, "answers", len(c.Answers))
	}

	h := handler.New(svc, repo)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"healthy","time":%q}`, time.Now().UTC().Format(time.RFC3339))
	})
	r.Route("/api/v1", h.Routes)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"scorer", v.GetString("scorer"),
		"questions", v.GetString("questions"),
	)
	return http.ListenAndServe(addr, r)
}

func openRepository(dbPath string) (store.Repository, error) {
	if dbPath == "" {
		slog.Warn("no database configured, candidate data will not survive a restart")
		return store.NewMemory(), nil
	}
	repo, err := store.NewSQLite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return repo, nil
}

// loadBank picks the question bank. A custom bank file is pinned by
// content hash in the database so a silent edit cannot retroactively
// desynchronize stored transcripts from the questions that produced them.
func loadBank(repo store.Repository, path string) (*question.Bank, error) {
	if path == "" {
		return question.Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	bank, err := question.Load(path)
	if err != nil {
		return nil, err
	}

	if s, ok := repo.(*store.SQLite); ok {
		hash := sha256sum(data)
		stored, err := s.GetMetadata("question_bank_hash")
		if err != nil {
			return nil, fmt.Errorf("check question bank hash: %w", err)
		}
		if stored != "" && stored != hash {
			slog.Warn("question bank file changed since first use; stored transcripts keep the question text they were asked with", "path", path)
		}
		if err := s.SetMetadata("question_bank_hash", hash); err != nil {
			return nil, fmt.Errorf("record question bank hash: %w", err)
		}
	}

	slog.Info("loaded question bank", "path", path, "count", bank.Len())
	return bank, nil
}

func buildScorer(v *viper.Viper) (scorer.Scorer, error) {
	switch strings.ToLower(v.GetString("scorer")) {
	case "llm":
		llm := scorer.NewLLM(
			v.GetString("llm-url"),
			v.GetString("llm-key"),
			v.GetString("llm-model"),
		)
		if err := llm.Ping(context.Background()); err != nil {
			return nil, fmt.Errorf("LLM health check: %w", err)
		}
		slog.Info("LLM scorer OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))
		return llm, nil
	case "heuristic":
		if v.GetBool("score-jitter") {
			return scorer.NewHeuristicWithJitter(uint64(time.Now().UnixNano())), nil
		}
		return scorer.NewHeuristic(), nil
	default:
		return nil, fmt.Errorf("unknown scorer %q (want heuristic or llm)", v.GetString("scorer"))
	}
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	repo, err := store.NewSQLite(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()

	export, err := store.ExportAll(context.Background(), repo)
	if err != nil {
		return fmt.Errorf("export candidates: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
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

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
