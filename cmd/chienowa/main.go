package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mshibata/chienowa/config"
	"github.com/mshibata/chienowa/internal/extract"
	"github.com/mshibata/chienowa/internal/index"
	"github.com/mshibata/chienowa/internal/ingest"
	"github.com/mshibata/chienowa/internal/ledger"
	"github.com/mshibata/chienowa/internal/llm"
	"github.com/mshibata/chienowa/internal/rag"
	"github.com/mshibata/chienowa/internal/server"
	"github.com/mshibata/chienowa/internal/source/drive"
	"github.com/mshibata/chienowa/internal/source/slack"
	"github.com/mshibata/chienowa/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	root := &cobra.Command{Use: "chienowa", Short: "Internal knowledge FAQ assistant"}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/config.json)")

	root.AddCommand(serveCMD(&cfgPath), ingestCMD(&cfgPath), askCMD(&cfgPath))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the wired dependency graph shared by all commands.
type app struct {
	cfg      *config.Config
	store    *index.Store
	engine   *rag.Engine
	ingestor *ingest.Ingestor
	ledger   *ledger.Ledger
}

func buildApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	store, err := index.Open(cfg.Index.Dir)
	if err != nil {
		return nil, err
	}

	provider := llm.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	tracker := telemetry.NewUsageTracker()

	extractor := extract.New(provider, tracker, extract.Options{
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	engine := rag.New(provider, store, tracker, rag.Options{
		Model: cfg.LLM.Model,
		TopK:  cfg.Index.TopK,
	})

	var processed *ledger.Ledger
	if cfg.Redis.Addr != "" {
		processed, err = ledger.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			return nil, err
		}
	}

	var driveSource ingest.DriveSource
	if cfg.Drive.FolderID != "" || cfg.Drive.CredentialsFile != "" {
		driveClient, err := drive.NewClient(ctx, cfg.Drive.CredentialsFile)
		if err != nil {
			return nil, err
		}
		driveSource = driveClient
	}

	var slackSource ingest.SlackSource
	if cfg.Slack.Token != "" {
		slackSource = slack.NewClient(cfg.Slack.Token, "", cfg.LLM.Timeout)
	}

	ingestor := ingest.New(driveSource, slackSource, extractor, store, processed, ingest.Options{
		MaxChunkSize:  cfg.Pipeline.MaxChunkSize,
		SlackDaysBack: cfg.Slack.DaysBack,
	})

	return &app{cfg: cfg, store: store, engine: engine, ingestor: ingestor, ledger: processed}, nil
}

func (a *app) close() {
	_ = a.store.Close()
	_ = a.ledger.Close()
}

func serveCMD(cfgPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer a.close()

			if addr == "" {
				addr = a.cfg.Server.Address
			}
			srv := server.New(a.engine, a.ingestor, server.Options{
				DriveFolderID:  a.cfg.Drive.FolderID,
				SlackChannelID: a.cfg.Slack.ChannelID,
			})
			log.Printf("listening on %s", addr)
			return srv.Run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func ingestCMD(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Generate FAQs from configured sources",
	}

	driveCmd := &cobra.Command{
		Use:   "drive [folder-id]",
		Short: "Ingest PDF documents from a Google Drive folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer a.close()

			folderID := a.cfg.Drive.FolderID
			if len(args) > 0 {
				folderID = args[0]
			}
			if folderID == "" {
				return fmt.Errorf("no drive folder configured (drive.folder_id)")
			}
			summary, err := a.ingestor.IngestDrive(cmd.Context(), folderID)
			if err != nil {
				return err
			}
			fmt.Printf("processed %d files (%d skipped, %d failed), generated %d FAQs\n",
				summary.Sources, summary.Skipped, summary.Failed, summary.Faqs)
			return nil
		},
	}

	slackCmd := &cobra.Command{
		Use:   "slack [channel-id]",
		Short: "Ingest conversations from a Slack channel",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer a.close()

			channelID := a.cfg.Slack.ChannelID
			if len(args) > 0 {
				channelID = args[0]
			}
			if channelID == "" {
				return fmt.Errorf("no slack channel configured (slack.channel_id)")
			}
			summary, err := a.ingestor.IngestSlack(cmd.Context(), channelID)
			if err != nil {
				return err
			}
			fmt.Printf("processed %d threads (%d skipped, %d failed), generated %d FAQs\n",
				summary.Sources, summary.Skipped, summary.Failed, summary.Faqs)
			return nil
		},
	}

	cmd.AddCommand(driveCmd, slackCmd)
	return cmd
}

func askCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question against the indexed knowledge",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer a.close()

			res := a.engine.Answer(cmd.Context(), args[0])
			fmt.Println(res.Answer)
			if len(res.Sources) > 0 {
				fmt.Println("\n参照ソース:")
				for _, src := range res.Sources {
					fmt.Printf("- %s (%s)\n", src.Title, src.URL)
				}
			}
			return res.Err
		},
	}
}
