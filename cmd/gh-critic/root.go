package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/criticdev/gh-critic/internal/cache"
	"github.com/criticdev/gh-critic/internal/config"
	"github.com/criticdev/gh-critic/internal/core"
	"github.com/criticdev/gh-critic/internal/github"
	"github.com/criticdev/gh-critic/internal/gitutil"
	"github.com/criticdev/gh-critic/internal/jobs"
	"github.com/criticdev/gh-critic/internal/llm"
	"github.com/criticdev/gh-critic/internal/logger"
)

var (
	noCache bool
	dryRun  bool
	verbose bool
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	dimColor     = color.New(color.FgHiBlack)
)

var rootCmd = &cobra.Command{
	Use:   "gh-critic [pr-url]",
	Short: "Review a GitHub Pull Request with an AI model",
	Long: `Review a GitHub Pull Request with an AI model.

gh-critic fetches the PR metadata and diff through the authenticated gh
CLI, sends them to an OpenAI-compatible endpoint, caches the result
keyed by diff content, and posts the review back as a PR comment.

Examples:
  gh-critic https://github.com/owner/repo/pull/123
  gh-critic --dry-run --model gpt-4o https://github.com/owner/repo/pull/123`,
	Args:          cobra.ExactArgs(1),
	RunE:          runReview,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the cache and force a fresh AI call")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Generate the review but don't post it to GitHub")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with timing information")
	rootCmd.Flags().String("model", "", "Model identifier (default "+config.DefaultModel+")")
	rootCmd.Flags().String("prompt", "", "Path to a YAML prompt template overriding the built-in one")
	rootCmd.PersistentFlags().String("cache-dir", "", "Review cache directory (default "+config.DefaultCacheDir+")")

	bindings := map[string]string{
		"MODEL":       "model",
		"PROMPT_FILE": "prompt",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, rootCmd.Flags().Lookup(flag)); err != nil {
			slog.Error("error binding flag", "flag", flag, "error", err)
			os.Exit(1)
		}
	}
	if err := viper.BindPFlag("CACHE_DIR", rootCmd.PersistentFlags().Lookup("cache-dir")); err != nil {
		slog.Error("error binding flag", "flag", "cache-dir", "error", err)
		os.Exit(1)
	}
}

// initConfig reads ENV variables if set.
func initConfig() {
	viper.AutomaticEnv()
}

// stepTimer tracks timing for verbose output
type stepTimer struct {
	stepNum    int
	totalSteps int
	start      time.Time
	verbose    bool
}

func newStepTimer(totalSteps int, verbose bool) *stepTimer {
	return &stepTimer{totalSteps: totalSteps, verbose: verbose}
}

func (t *stepTimer) step(name string) {
	t.stepNum++
	t.start = time.Now()
	if t.verbose {
		titleColor.Printf("\nStep %d/%d: %s...\n", t.stepNum, t.totalSteps, name)
	} else {
		fmt.Printf("%s...\n", name)
	}
}

func (t *stepTimer) done(details ...string) {
	if t.verbose {
		elapsed := time.Since(t.start).Round(time.Millisecond)
		successColor.Printf("   done (%s)\n", elapsed)
		for _, d := range details {
			dimColor.Printf("   %s\n", d)
		}
	}
}

func runReview(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	ref, err := gitutil.ParsePullRequestURL(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, nil)
	slog.SetDefault(log)

	timer := newStepTimer(2, verbose)
	overallStart := time.Now()

	titleColor.Println("gh-critic - AI Pull Request Review")
	dimColor.Printf("   Target: %s\n", ref.String())
	dimColor.Printf("   Model:  %s\n\n", cfg.Model)

	timer.step("Initializing")
	store, err := cache.NewStore(cfg.CacheDir, log)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	promptTmpl, err := llm.LoadPromptTemplate(cfg.PromptFile)
	if err != nil {
		return fmt.Errorf("failed to load prompt template: %w", err)
	}

	runner := github.CLIRunner{}
	job := jobs.NewReviewJob(
		github.NewFetcher(runner, log),
		store,
		llm.NewGenerator(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.Model, promptTmpl, log),
		github.NewPublisher(runner, log),
		log,
	)
	timer.done(fmt.Sprintf("Cache: %s", store.Dir()))

	timer.step("Reviewing pull request")
	result, err := job.Run(ctx, ref, jobs.Options{NoCache: noCache, DryRun: dryRun})
	if err != nil {
		return err
	}
	timer.done(fmt.Sprintf("Source: %s", result.Source))

	if verbose {
		dimColor.Printf("\nTotal time: %s\n", time.Since(overallStart).Round(time.Millisecond))
	}

	if result.Source == core.SourceCache {
		warnColor.Println("Using cached review")
	}
	printReview(result.Text)

	if dryRun {
		warnColor.Println("\nDry run mode - review not posted")
	} else {
		successColor.Println("\n✓ Review posted successfully!")
	}
	return nil
}

// printReview renders the review markdown for the terminal, falling
// back to plain text when rendering is not possible.
func printReview(text string) {
	fmt.Println()
	titleColor.Println("Generated Review")
	fmt.Println()

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		if out, renderErr := renderer.Render(text); renderErr == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Println(text)
}
