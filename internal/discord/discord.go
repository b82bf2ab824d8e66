package discord

import (
	"context"
	"time"
)

type SlashCommandOption struct {
	Name        string
	Description string
	Required    bool
	MinValue    int
	MaxValue    int
}

// SlashCommandDefinition options are always integer options.
type SlashCommandDefinition struct {
	Name        string
	Description string
	Options     []SlashCommandOption
}

type SlashCommandEvent struct {
	GuildID          string
	ChannelID        string
	CommandName      string
	UserID           string
	IntOptions       map[string]int64
	Respond          func(content string) error
	RespondEphemeral func(content string) error
}

type VoiceStateEvent struct {
	GuildID           string
	UserID            string
	UserIsBot         bool
	BeforeChannelID   string
	BeforeChannelName string
	AfterChannelID    string
	AfterChannelName  string
	// ReceivedAt is when the gateway delivered the update; zero means unknown.
	ReceivedAt time.Time
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	SetActivity(name string) error
	RegisterVoiceStateUpdateHandler(handler func(VoiceStateEvent))
	RegisterSlashCommandHandler(handler func(SlashCommandEvent))
	UpsertGuildSlashCommands(guildID string, defs []SlashCommandDefinition) error
	Run() error
}
