package commands

import (
	"sprintlens/internal/config"
	"sprintlens/internal/eventlog"
	"sprintlens/internal/jira"
	"sprintlens/internal/logging"
	"sprintlens/internal/mcp"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	jiraClient jira.Client
	store      *eventlog.Store
)

var rootCmd = &cobra.Command{
	Use:   "sprintlens",
	Short: "SprintLens is a sprint analytics MCP Server for Jira",
	Long: `A specialized MCP Server that reconstructs issue timelines and sprint scope-change
logs from Jira Data Center and derives burndown series, time-in-status residency,
lifecycle metrics and risk scores from them.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		// Initialize Jira Client and the sprint event store
		jiraClient = jira.NewClient(cfg.Jira)
		store = eventlog.NewStore()

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("SprintLens starting")
	},
	Run: func(cmd *cobra.Command, args []string) {
		log.Info().Msg("MCP Server starting Stdio loop")
		server := mcp.NewServer(jiraClient, store, cfg)
		if err := server.Serve(); err != nil {
			log.Fatal().Err(err).Msg("Stdio loop terminated")
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
