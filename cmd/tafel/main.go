// Package main provides the CLI entrypoint for tafel.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mkonijn/tafel/internal/config"
	"github.com/mkonijn/tafel/internal/game"
	"github.com/mkonijn/tafel/internal/generator"
	"github.com/mkonijn/tafel/internal/historyui"
	"github.com/mkonijn/tafel/internal/model"
	"github.com/mkonijn/tafel/internal/store"
	"github.com/mkonijn/tafel/internal/tui"
)

const (
	defaultQuestions    = 40
	defaultTimeLimit    = 6.0
	defaultDwellCorrect = 0.8
	defaultDwellWrong   = 2.0
	defaultPassCorrect  = 36
	defaultPassPoints   = 120
	defaultWeakBelow    = 0.8
	defaultCurveWindow  = 5
)

var (
	playTables       string
	playQuestions    int
	playTimeLimit    float64
	playDwellCorrect float64
	playDwellWrong   float64
	playPassCorrect  int
	playPassPoints   int
	playWeakBelow    float64
	playSeed         int64

	historyType   string
	historyLast   int
	historyWindow int

	clearYes bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tafel",
		Short:         "TUI times tables trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playTables, "tables", "", "preselect tables, e.g. 3,7,8")
	rootCmd.Flags().IntVar(&playQuestions, "questions", defaultQuestions, "questions per session")
	rootCmd.Flags().Float64Var(&playTimeLimit, "time-limit", defaultTimeLimit, "seconds per question in test sessions")
	rootCmd.Flags().Float64Var(&playDwellCorrect, "dwell-correct", defaultDwellCorrect, "feedback hold after a correct answer (seconds)")
	rootCmd.Flags().Float64Var(&playDwellWrong, "dwell-wrong", defaultDwellWrong, "feedback hold after a wrong answer or timeout (seconds)")
	rootCmd.Flags().IntVar(&playPassCorrect, "pass-correct", defaultPassCorrect, "correct answers needed to pass a test")
	rootCmd.Flags().IntVar(&playPassPoints, "pass-points", defaultPassPoints, "points needed to pass a test")
	rootCmd.Flags().Float64Var(&playWeakBelow, "weak-below", defaultWeakBelow, "accuracy below which a table needs practice (0-1)")
	rootCmd.Flags().Int64Var(&playSeed, "seed", 0, "question generator seed (0 uses the clock)")

	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "questions", &playQuestions, fileCfg.Game.Questions)
	applyFloatConfig(cmd, "time-limit", &playTimeLimit, fileCfg.Game.TimeLimit)
	applyFloatConfig(cmd, "dwell-correct", &playDwellCorrect, fileCfg.Game.DwellCorrect)
	applyFloatConfig(cmd, "dwell-wrong", &playDwellWrong, fileCfg.Game.DwellWrong)
	applyIntConfig(cmd, "pass-correct", &playPassCorrect, fileCfg.Game.PassCorrect)
	applyIntConfig(cmd, "pass-points", &playPassPoints, fileCfg.Game.PassPoints)
	applyFloatConfig(cmd, "weak-below", &playWeakBelow, fileCfg.Game.WeakBelow)

	rules := model.Rules{
		Questions:    playQuestions,
		TimeLimit:    secondsToDuration(playTimeLimit),
		DwellCorrect: secondsToDuration(playDwellCorrect),
		DwellWrong:   secondsToDuration(playDwellWrong),
		PassCorrect:  playPassCorrect,
		PassPoints:   playPassPoints,
		WeakBelow:    playWeakBelow,
	}
	if err := validateRules(rules); err != nil {
		return err
	}
	tables, err := parseTables(playTables)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	history, err := st.LoadHistory(ctx)
	if err != nil {
		logErrf("failed to load history: %v\n", err)
		history = nil
	}
	colors, err := st.LoadColors(ctx, config.DefaultColors())
	if err != nil {
		logErrf("failed to load colors: %v\n", err)
		colors = config.DefaultColors()
	}
	config.ApplyColorOverrides(colors, fileCfg.Colors)

	gen := generator.New()
	if playSeed != 0 {
		gen = generator.NewSeeded(playSeed)
	}
	controller := game.NewController(rules, game.SystemClock{}, gen)
	controller.PreselectTables(tables)

	model := tui.NewModel(controller, st, game.SystemClock{}, colors, history)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse session history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyType, "type", "", "filter by session type (practice or test)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&historyWindow, "window", defaultCurveWindow, "moving average window")
	return cmd
}

func runHistoryCmd(_ *cobra.Command, _ []string) error {
	var typ model.SessionType
	switch historyType {
	case "":
	case string(model.Practice):
		typ = model.Practice
	case string(model.Test):
		typ = model.Test
	default:
		return fmt.Errorf("--type must be %q or %q", model.Practice, model.Test)
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if historyWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	filter := model.HistoryFilter{
		Type:        typ,
		Last:        historyLast,
		CurveWindow: historyWindow,
	}
	model := historyui.NewModel(st, filter)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear session history",
		Args:  cobra.NoArgs,
		RunE:  runClearCmd,
	}
	cmd.Flags().BoolVar(&clearYes, "yes", false, "confirm clearing the history")
	return cmd
}

func runClearCmd(_ *cobra.Command, _ []string) error {
	if !clearYes {
		return fmt.Errorf("refusing to clear history without --yes")
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if err := st.ClearHistory(context.Background()); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	logErrln("History cleared.")
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func parseTables(input string) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	parts := strings.Split(input, ",")
	tables := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < model.MinTable || n > model.MaxTable {
			return nil, fmt.Errorf("invalid table %q (use %d-%d)", part, model.MinTable, model.MaxTable)
		}
		tables = append(tables, n)
	}
	return tables, nil
}

func validateRules(rules model.Rules) error {
	if rules.Questions <= 0 {
		return fmt.Errorf("--questions must be > 0")
	}
	if rules.TimeLimit <= 0 {
		return fmt.Errorf("--time-limit must be > 0")
	}
	if rules.DwellCorrect < 0 || rules.DwellWrong < 0 {
		return fmt.Errorf("dwell durations must be >= 0")
	}
	if rules.PassCorrect < 0 || rules.PassCorrect > rules.Questions {
		return fmt.Errorf("--pass-correct must be between 0 and --questions")
	}
	if rules.PassPoints < 0 {
		return fmt.Errorf("--pass-points must be >= 0")
	}
	if rules.WeakBelow < 0 || rules.WeakBelow > 1 {
		return fmt.Errorf("--weak-below must be between 0 and 1")
	}
	return nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tafel configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# questions = %d        # Questions per session
# time-limit = %.1f     # Seconds per question in test sessions
# dwell-correct = %.1f  # Feedback hold after a correct answer (seconds)
# dwell-wrong = %.1f    # Feedback hold after a wrong answer or timeout (seconds)
# pass-correct = %d     # Correct answers needed to pass a test
# pass-points = %d      # Points needed to pass a test
# weak-below = %.1f     # Accuracy below which a table needs practice (0-1)

[colors]
# Override per-table colors, e.g.:
# 7 = "#FF8800"
`,
		defaultQuestions,
		defaultTimeLimit,
		defaultDwellCorrect,
		defaultDwellWrong,
		defaultPassCorrect,
		defaultPassPoints,
		defaultWeakBelow,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
