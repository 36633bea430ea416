// Package commands implements CLI command handlers for gitvars.
package commands

import (
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitvars/pkg/collector"
	"github.com/Sumatoshi-tech/gitvars/pkg/config"
	"github.com/Sumatoshi-tech/gitvars/pkg/deadline"
	"github.com/Sumatoshi-tech/gitvars/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitvars/pkg/observability"
	"github.com/Sumatoshi-tech/gitvars/pkg/shellvars"
)

// NewRootCommand builds the gitvars root command. The root command itself
// performs the summarization; `eval "$(gitvars)"` is the intended use, so
// the variable stream is the command's stdout and diagnostics go to stderr.
func NewRootCommand() *cobra.Command {
	var (
		configPath string
		timeout    string
		prefix     string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "gitvars [repository...]",
		Short: "Summarize git repository status as shell variables",
		Long: `gitvars inspects a git repository and prints its status as shell-evaluable
variable assignments, intended for use in shell prompts:

  eval "$(gitvars)"

With no repository argument the repository is located from GIT_DIR or by
searching upward from the current directory. Collection is bounded by a
wall-clock deadline; a run that exceeds it still prints every field
collected so far plus a terminal Error classification.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("timeout") {
				cfg.Timeout = timeout
			}

			if cmd.Flags().Changed("prefix") {
				cfg.Prefix = prefix
			}

			if verbose {
				cfg.Logging.Level = "debug"
			}

			budget, err := config.ParseTimeout(cfg.Timeout)
			if err != nil {
				return err
			}

			summarizeAll(cmd.OutOrStdout(), cmd.ErrOrStderr(), args, cfg, budget)

			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file path")
	cmd.Flags().StringVarP(&timeout, "timeout", "t", config.DefaultTimeout,
		`collection deadline: a duration like "200ms", bare seconds like "2", or "none"`)
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "prefix for each output line (e.g. 'local ')")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log substep timings to stderr")

	return cmd
}

// summarizeAll runs collection for each requested repository. Every
// recognized classification, including timeouts, is a successful run.
func summarizeAll(out, errOut io.Writer, repoPaths []string, cfg *config.Config, budget time.Duration) {
	logger := observability.NewLogger(errOut, cfg.Logging.Level)

	ctl := deadline.NewController()
	ctl.Arm(budget, cfg.Grace)
	defer ctl.Disarm()

	writer := shellvars.NewWriter(out, cfg.Prefix)

	switch len(repoPaths) {
	case 0:
		repo, err := gitlib.OpenRepositoryFromEnv()
		summarizeOne(writer, repo, err, ctl, logger)
	case 1:
		repo, err := gitlib.OpenRepository(repoPaths[0])
		summarizeOne(writer, repo, err, ctl, logger)
	default:
		writer.WriteVar("repo_count", len(repoPaths))

		for i, path := range repoPaths {
			if i > 0 {
				ctl.Resume()
			}

			_, _ = io.WriteString(out, "\n")

			group := writer.GroupN("repo", i+1)
			group.WriteVar("path", path)

			repo, err := gitlib.OpenRepository(path)
			summarizeOne(group, repo, err, ctl, logger)
		}
	}
}

// summarizeOne runs one collection and releases the repository handle.
func summarizeOne(writer *shellvars.Writer, repo *gitlib.Repository, openErr error, ctl *deadline.Controller, logger *slog.Logger) {
	if repo != nil {
		defer repo.Free()
	}

	state := collector.Summarize(writer, repo, openErr, ctl, logger)
	logger.Debug("collection finished", "state", string(state))
}
