package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	discordpkg "github.com/foxseedlab/vclog/internal/discord"
	"github.com/foxseedlab/vclog/internal/tracker"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

const discordConnectTimeout = 20 * time.Second

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Discord bot that records voice presence",
	Long: `Connect to the Discord gateway, record voice channel joins and leaves of
the configured guild into the event log, and answer the usage slash commands.`,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	injector := setupDI(cfg)

	closeLog, err := openEventLog(injector)
	if err != nil {
		return err
	}
	defer closeLog()

	dc, err := do.Invoke[discordpkg.Client](injector)
	if err != nil {
		return fmt.Errorf("failed to resolve discord client: %w", err)
	}
	manager, err := do.Invoke[*tracker.Manager](injector)
	if err != nil {
		return fmt.Errorf("failed to resolve presence tracker: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancel()

	slog.Info("startup: connecting to discord gateway")
	if err := dc.Connect(ctx); err != nil {
		return fmt.Errorf("discord connect failed: %w", err)
	}
	slog.Info("startup: discord connected")
	defer func() {
		if err := dc.Close(); err != nil {
			slog.Error("discord close failed", "error", err)
		}
	}()

	if err := dc.SetActivity(tracker.ActivityName); err != nil {
		slog.Warn("failed to set bot activity", "error", err)
	}
	if err := dc.UpsertGuildSlashCommands(cfg.DiscordGuildID, tracker.SlashCommandDefinitions()); err != nil {
		return fmt.Errorf("failed to upsert slash commands for guild %s: %w", cfg.DiscordGuildID, err)
	}

	dc.RegisterVoiceStateUpdateHandler(manager.HandleVoiceStateUpdate)
	dc.RegisterSlashCommandHandler(manager.HandleSlashCommand)
	slog.Info("discord handlers registered", "guild_id", cfg.DiscordGuildID, "commands", tracker.SlashCommandNames())

	done := make(chan struct{})
	go func() {
		slog.Info("startup: entering discord run loop")
		if err := dc.Run(); err != nil {
			slog.Error("discord run failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-done:
	}
	return nil
}
