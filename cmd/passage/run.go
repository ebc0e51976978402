package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/passage-cli/passage/internal/domain/config"
	"github.com/passage-cli/passage/internal/domain/flowdef"
	"github.com/passage-cli/passage/internal/domain/session"
	"github.com/passage-cli/passage/internal/domain/wizard"
	"github.com/passage-cli/passage/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run <flow-file>",
	Short: "Run a flow as an interactive wizard",
	Long: `Run walks through the steps of a flow file, validating input before
each forward move.

Interrupted runs are saved as sessions and can be resumed with --resume.
With --no-input the flow runs headless: field defaults and --set values
are applied and every step is validated without prompting.

Examples:
  passage run flows/open-position.yaml
  passage run flows/open-position.yaml --resume
  passage run flows/open-position.yaml --no-input --set symbol=AAPL --set quantity=100
  passage run flows/open-position.yaml --output result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var (
	runResume     bool
	runNoInput    bool
	runOutput     string
	runSessionDir string
	runJump       bool
	runSetValues  []string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runResume, "resume", false, "Resume the most recent session for this flow")
	runCmd.Flags().BoolVar(&runNoInput, "no-input", false, "Run headless using defaults and --set values")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Write collected data to this file instead of stdout")
	runCmd.Flags().StringVar(&runSessionDir, "session-dir", "", "Directory for saved sessions")
	runCmd.Flags().BoolVar(&runJump, "jump", false, "Allow jumping forward from the step rail")
	runCmd.Flags().StringArrayVar(&runSetValues, "set", nil, "Set a field value (key=value), repeatable")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	def, err := loadFlow(args[0])
	if err != nil {
		return err
	}

	overrides, err := parseSetValues(runSetValues)
	if err != nil {
		return err
	}

	if runNoInput {
		return runHeadless(ctx, cfg, def, overrides)
	}

	store, err := openSessionStore(cfg)
	if err != nil {
		return err
	}
	return runInteractive(ctx, cfg, def, store, overrides)
}

func runInteractive(ctx context.Context, cfg config.Config, def *flowdef.Definition, store *session.Store, overrides map[string]any) error {
	sess, seed := resumeOrNewSession(store, def)
	for k, v := range overrides {
		seed[k] = v
	}

	opts := tui.NewWizardOptions().
		WithSeed(seed).
		WithAllowStepJump(runJump).
		WithNoColor(cfg.NoColor)
	if sess.StepID != "" {
		opts = opts.WithStartStep(sess.StepID)
	}

	result, err := tui.RunWizard(ctx, def, opts)
	if err != nil {
		return err
	}

	sess.Touch(result.StepID, result.Data, result.StepErrors)

	if result.Cancelled {
		if err := store.Save(sess); err != nil {
			return err
		}
		fmt.Printf("Flow interrupted. Resume with: passage run %s --resume\n", def.SourcePath)
		return nil
	}

	if result.Completed {
		sess.MarkCompleted()
		if err := store.Save(sess); err != nil {
			return err
		}
		return writeResult(cfg, def, result.Data)
	}
	return nil
}

// runHeadless validates every step against defaults and --set values
// without prompting. Designed for scripting and CI.
func runHeadless(ctx context.Context, cfg config.Config, def *flowdef.Definition, overrides map[string]any) error {
	seq, err := wizard.NewSequencer(def.Build())
	if err != nil {
		return err
	}

	seed := def.Defaults()
	for k, v := range overrides {
		seed[k] = v
	}
	seq.UpdateData(seed)

	for !seq.OnLastStep() {
		before := seq.CurrentIndex()
		if err := seq.Next(ctx); err != nil {
			return stepError(def, err)
		}
		if seq.CurrentIndex() == before {
			// Disabled steps at the tail leave no forward target.
			break
		}
	}

	if err := seq.Complete(ctx); err != nil {
		return stepError(def, err)
	}
	return writeResult(cfg, def, seq.Data())
}

func resumeOrNewSession(store *session.Store, def *flowdef.Definition) (*session.Session, map[string]any) {
	if runResume {
		if prior, err := store.Latest(def.Name); err == nil && prior != nil {
			return prior, prior.Data
		}
	}
	return session.New(def.Name, def.SourcePath), map[string]any{}
}

func openSessionStore(cfg config.Config) (*session.Store, error) {
	switch {
	case runSessionDir != "":
		return session.NewStoreWithDir(runSessionDir), nil
	case cfg.SessionDir != "":
		return session.NewStoreWithDir(cfg.SessionDir), nil
	default:
		return session.NewStore()
	}
}

// loadFlow parses the flow file and maps failures to user-facing errors.
func loadFlow(path string) (*flowdef.Definition, error) {
	def, err := flowdef.ParseFile(path)
	if err == nil {
		return def, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return nil, config.NewUserError(config.ErrCodeFlowNotFound, "flow file not found").
			WithContext(path).
			WithSuggestion("check the path, or create the flow file first").
			WithUnderlying(err)
	}

	var parseErr *flowdef.ParseError
	if errors.As(err, &parseErr) {
		return nil, config.NewUserError(config.ErrCodeFlowParse, parseErr.Message).
			WithContext(fmt.Sprintf("%s:%d", parseErr.Path, parseErr.Line)).
			WithSuggestion("fix the flow file and run 'passage validate' to check it").
			WithUnderlying(err)
	}
	return nil, err
}

func parseSetValues(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, config.NewUserError(config.ErrCodeFlowInvalid, fmt.Sprintf("invalid --set value %q", pair)).
				WithSuggestion("use --set key=value")
		}
		switch value {
		case "true":
			values[key] = true
		case "false":
			values[key] = false
		default:
			values[key] = value
		}
	}
	return values, nil
}

func stepError(def *flowdef.Definition, err error) error {
	var invalid *wizard.StepInvalidError
	if errors.As(err, &invalid) {
		return config.NewUserError(config.ErrCodeStepInvalid, invalid.Message).
			WithContext(fmt.Sprintf("%s, step %q", def.SourcePath, invalid.StepID)).
			WithSuggestion("provide the value with --set, or set a default in the flow file").
			WithUnderlying(err)
	}

	var completion *wizard.CompletionError
	if errors.As(err, &completion) {
		return config.NewUserError(config.ErrCodeCompletionFailed, "flow completion failed").
			WithUnderlying(completion.Err)
	}
	return err
}

// runResultOutput is the JSON document emitted for a completed flow.
type runResultOutput struct {
	Flow        string         `json:"flow"`
	CompletedAt time.Time      `json:"completed_at"`
	Data        map[string]any `json:"data"`
}

func writeResult(cfg config.Config, def *flowdef.Definition, data map[string]any) error {
	out := runResultOutput{
		Flow:        def.Name,
		CompletedAt: time.Now().UTC(),
		Data:        data,
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	encoded = append(encoded, '\n')

	target := runOutput
	if target == "" && cfg.OutputDir != "" {
		target = filepath.Join(cfg.OutputDir, def.Name+".json")
	}
	if target == "" {
		_, err := os.Stdout.Write(encoded)
		return err
	}

	if err := os.WriteFile(target, encoded, 0644); err != nil {
		return config.NewUserError(config.ErrCodeOutputWrite, "failed to write result file").
			WithContext(target).
			WithUnderlying(err)
	}
	fmt.Printf("✓ Flow completed, result written to %s\n", target)
	return nil
}
