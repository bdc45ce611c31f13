package commands

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gitfleet/gitfleet/pkg/actions"
	"github.com/gitfleet/gitfleet/pkg/credentials"
	"github.com/gitfleet/gitfleet/pkg/engine"
	"github.com/gitfleet/gitfleet/pkg/selectors"
	"github.com/gitfleet/gitfleet/pkg/telemetry"
)

func newRunCommand() *cobra.Command {
	var (
		workingDir       string
		selectorExpr     string
		actionCmd        string
		finalizationCmd  string
		accessToken      string
		strictFail       bool
		cleanup          bool
		sshKeyPath       string
		sshInsecureHosts bool
		metricsListen    string
		traceExporter    string
		traceEndpoint    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a command across a set of repositories",
		Long: `Resolve a set of repositories, clone each into the working directory,
and run the given command in every working copy.

Selector expressions:
  list:uri[,uri...]             fixed list of repository URIs
  file:path[;path...]           newline-delimited files of URIs
  stdin                         newline-delimited URIs on standard input
  org-repo-prefix:org/prefix    GitHub organization + name prefix
                                (requires --access-token)

The command runs with the repository's working tree as its current
directory and inherits gitfleet's standard streams. It sees
GITFLEET_INVOKE_DIR and GITFLEET_WORKING_DIR in its environment.

The command string is split on whitespace, not parsed by a shell;
wrap the invocation in a script when arguments contain spaces.`,
		Example: `  # Run a script in three repositories
  gitfleet run -s "file:repos.txt" -a "./migrate.sh"

  # Lenient run over a GitHub organization, removing clones afterwards
  gitfleet run -s "org-repo-prefix:acme/service-" -t "$GITHUB_TOKEN" \
    -a "make lint" --strict-fail=false --cleanup

  # Primary action plus a finalization pass
  gitfleet run -s "stdin" -a "./rewrite.sh" --finalization-action "git push"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				fc, err := loadFileConfig(configPath)
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("dir") && fc.WorkingDir != "" {
					workingDir = fc.WorkingDir
				}
				if !cmd.Flags().Changed("strict-fail") && fc.StrictFail != nil {
					strictFail = *fc.StrictFail
				}
				if !cmd.Flags().Changed("cleanup") && fc.Cleanup != nil {
					cleanup = *fc.Cleanup
				}
				if accessToken == "" && fc.AccessTokenEnv != "" {
					accessToken = os.Getenv(fc.AccessTokenEnv)
				}
				if metricsListen == "" {
					metricsListen = fc.MetricsListen
				}
			}
			selector, err := selectors.Parse(selectorExpr, accessToken)
			if err != nil {
				return err
			}
			action, err := actions.Command(strings.Fields(actionCmd)...)
			if err != nil {
				return err
			}
			var finalization engine.Action
			if finalizationCmd != "" {
				finalization, err = actions.Command(strings.Fields(finalizationCmd)...)
				if err != nil {
					return err
				}
			}

			var creds engine.Credentials
			switch {
			case sshKeyPath != "":
				creds = credentials.SSHKey(credentials.SSHKeyConfig{
					PrivateKeyPath:      sshKeyPath,
					InsecureSkipHostKey: sshInsecureHosts,
				})
			case accessToken != "":
				creds = credentials.Token(accessToken, "")
			}

			metrics := telemetry.NewMetrics(telemetry.MetricsConfig{
				Enabled:   metricsListen != "",
				Namespace: "gitfleet",
			})
			if metricsListen != "" {
				go func() {
					if err := http.ListenAndServe(metricsListen, metrics.Handler()); err != nil {
						log.Warn().Err(err).Msg("metrics listener stopped")
					}
				}()
			}

			runnerCfg := engine.Config{
				Selector:           selector,
				Action:             action,
				FinalizationAction: finalization,
				Credentials:        creds,
				StatusListener:     &consoleListener{},
				WorkingDir:         workingDir,
				ContinueOnError:    !strictFail,
				Cleanup:            cleanup,
				Logger:             &log.Logger,
				Metrics:            metrics,
			}

			if traceExporter != "" {
				tracer, err := telemetry.NewTracer(telemetry.TracingConfig{
					Enabled:      true,
					Exporter:     traceExporter,
					Endpoint:     traceEndpoint,
					Insecure:     true,
					SamplingRate: 1.0,
				}, "gitfleet", cmd.Root().Version)
				if err != nil {
					return err
				}
				defer func() {
					if err := tracer.Shutdown(cmd.Context()); err != nil {
						log.Warn().Err(err).Msg("trace shutdown failed")
					}
				}()
				runnerCfg.Tracer = tracer.Tracer()
			}

			runner, err := engine.NewRunner(runnerCfg)
			if err != nil {
				return err
			}

			res, err := runner.DoActions(cmd.Context())
			if err != nil {
				return err
			}
			for uri, errs := range res.Errs() {
				for _, e := range errs {
					log.Warn().Str("repository", uri).Err(e).Msg("recorded failure")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workingDir, "dir", "d", engine.DefaultWorkingDir, "working directory for repositories")
	cmd.Flags().StringVarP(&selectorExpr, "selector", "s", "", "repository selector expression (\"slug:content\")")
	cmd.Flags().StringVarP(&actionCmd, "action", "a", "", "command to run in each repository (split on whitespace; shell quoting is not interpreted)")
	cmd.Flags().StringVar(&finalizationCmd, "finalization-action", "", "command to run in each repository after all primary actions (split on whitespace)")
	cmd.Flags().StringVarP(&accessToken, "access-token", "t", "", "access token for the platform API and HTTPS clones")
	cmd.Flags().BoolVar(&strictFail, "strict-fail", true, "abort the whole run on the first error")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "remove all repository files when done")
	cmd.Flags().StringVar(&sshKeyPath, "ssh-key", "", "private key for SSH remotes")
	cmd.Flags().BoolVar(&sshInsecureHosts, "ssh-insecure-host-keys", false, "disable SSH host key verification (trusts any host)")
	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "address to expose Prometheus metrics on (e.g. :9090)")
	cmd.Flags().StringVar(&traceExporter, "trace-exporter", "", "trace exporter (otlp, stdout)")
	cmd.Flags().StringVar(&traceEndpoint, "trace-endpoint", "", "OTLP trace endpoint")
	_ = cmd.MarkFlagRequired("selector")
	_ = cmd.MarkFlagRequired("action")

	return cmd
}

// consoleListener renders engine status through the process logger, in
// the same shape the run's own log lines use.
type consoleListener struct{}

func (consoleListener) OnProgress(fraction float64) {
	log.Info().Msg(fmt.Sprintf("Progress: %.1f%%", fraction*100))
}

func (consoleListener) OnMessage(msg string) {
	log.Info().Msg(msg)
}
