package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/foxseedlab/vclog/internal/discord"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	channelNameCacheSize = 512
	channelNameCacheTTL  = 10 * time.Minute
)

type Client struct {
	session      *discordgo.Session
	token        string
	channelNames *expirable.LRU[string, string]
	done         chan struct{}
	closeOnce    sync.Once
}

func NewClient(token string) discordpkg.Client {
	return newClient(token)
}

func newClient(token string) *Client {
	return &Client{
		token:        token,
		channelNames: expirable.NewLRU[string, string](channelNameCacheSize, nil, channelNameCacheTTL),
		done:         make(chan struct{}),
	}
}

func (c *Client) Connect(ctx context.Context) error {
	_ = ctx
	s, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return err
	}
	c.session = s
	configureSession(s)
	return s.Open()
}

// Voice state updates are dispatched synchronously so each one is stamped
// and appended in gateway order; slash commands move to their own goroutine
// in RegisterSlashCommandHandler.
func configureSession(s *discordgo.Session) {
	s.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates)
	s.State.TrackVoice = true
	s.State.TrackChannels = true
	s.SyncEvents = true
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

func (c *Client) SetActivity(name string) error {
	if c.session == nil {
		return fmt.Errorf("discord session is not initialized")
	}
	return c.session.UpdateGameStatus(0, name)
}

func (c *Client) RegisterVoiceStateUpdateHandler(handler func(discordpkg.VoiceStateEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
		// Stamp before any channel name REST lookups.
		if ev, ok := c.voiceStateEvent(vs, time.Now()); ok {
			handler(ev)
		}
	})
}

func (c *Client) voiceStateEvent(vs *discordgo.VoiceStateUpdate, receivedAt time.Time) (discordpkg.VoiceStateEvent, bool) {
	if vs == nil || vs.VoiceState == nil {
		return discordpkg.VoiceStateEvent{}, false
	}
	beforeChannelID := ""
	if vs.BeforeUpdate != nil {
		beforeChannelID = vs.BeforeUpdate.ChannelID
	}
	afterChannelID := vs.ChannelID
	// Mute, deafen and stream toggles keep the channel.
	if beforeChannelID == afterChannelID {
		return discordpkg.VoiceStateEvent{}, false
	}
	if vs.GuildID == "" || vs.UserID == "" {
		return discordpkg.VoiceStateEvent{}, false
	}
	return discordpkg.VoiceStateEvent{
		GuildID:           vs.GuildID,
		UserID:            vs.UserID,
		UserIsBot:         c.resolveUserIsBot(vs.GuildID, vs.UserID, vs.VoiceState),
		BeforeChannelID:   beforeChannelID,
		BeforeChannelName: c.resolveChannelName(beforeChannelID),
		AfterChannelID:    afterChannelID,
		AfterChannelName:  c.resolveChannelName(afterChannelID),
		ReceivedAt:        receivedAt,
	}, true
}

func (c *Client) RegisterSlashCommandHandler(handler func(discordpkg.SlashCommandEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic == nil || ic.Type != discordgo.InteractionApplicationCommand {
			return
		}
		data := ic.ApplicationCommandData()
		if data.Name == "" {
			return
		}
		userID := ""
		if ic.Member != nil && ic.Member.User != nil {
			userID = ic.Member.User.ID
		}
		if userID == "" && ic.User != nil {
			userID = ic.User.ID
		}
		if userID == "" {
			return
		}
		slog.Info("slash command interaction received", "guild_id", ic.GuildID, "channel_id", ic.ChannelID, "command", data.Name, "user_id", userID)
		respond := func(content string, flags discordgo.MessageFlags) error {
			slog.Debug("responding to slash interaction", "command", data.Name, "guild_id", ic.GuildID, "user_id", userID)
			return s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Content: content,
					Flags:   flags,
				},
			})
		}
		go handler(discordpkg.SlashCommandEvent{
			GuildID:     ic.GuildID,
			ChannelID:   ic.ChannelID,
			CommandName: data.Name,
			UserID:      userID,
			IntOptions:  intOptions(data.Options),
			Respond: func(content string) error {
				return respond(content, 0)
			},
			RespondEphemeral: func(content string) error {
				return respond(content, discordgo.MessageFlagsEphemeral)
			},
		})
	})
}

func intOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]int64 {
	values := make(map[string]int64, len(opts))
	for _, opt := range opts {
		if opt == nil || opt.Type != discordgo.ApplicationCommandOptionInteger {
			continue
		}
		values[opt.Name] = opt.IntValue()
	}
	return values
}

func (c *Client) UpsertGuildSlashCommands(guildID string, defs []discordpkg.SlashCommandDefinition) error {
	appID := c.applicationID()
	if appID == "" {
		return fmt.Errorf("discord application id is not available")
	}
	existing, err := c.session.ApplicationCommands(appID, guildID)
	if err != nil {
		return err
	}
	existingByName := make(map[string]*discordgo.ApplicationCommand, len(existing))
	for _, cmd := range existing {
		if cmd == nil || cmd.Name == "" {
			continue
		}
		existingByName[cmd.Name] = cmd
	}
	for _, def := range defs {
		if err := c.upsertGuildSlashCommand(appID, guildID, def, existingByName); err != nil {
			return fmt.Errorf("upsert slash command %q: %w", def.Name, err)
		}
	}
	return nil
}

func (c *Client) upsertGuildSlashCommand(appID, guildID string, def discordpkg.SlashCommandDefinition, existingByName map[string]*discordgo.ApplicationCommand) error {
	if def.Name == "" {
		return nil
	}
	payload := applicationCommand(def)
	cmd, ok := existingByName[def.Name]
	if !ok {
		_, err := c.session.ApplicationCommandCreate(appID, guildID, payload)
		return err
	}
	if sameCommand(cmd, payload) {
		return nil
	}
	_, err := c.session.ApplicationCommandEdit(appID, guildID, cmd.ID, payload)
	return err
}

func applicationCommand(def discordpkg.SlashCommandDefinition) *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Name:        def.Name,
		Description: def.Description,
	}
	for _, opt := range def.Options {
		minValue := float64(opt.MinValue)
		cmd.Options = append(cmd.Options, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        opt.Name,
			Description: opt.Description,
			Required:    opt.Required,
			MinValue:    &minValue,
			MaxValue:    float64(opt.MaxValue),
		})
	}
	return cmd
}

func sameCommand(existing, want *discordgo.ApplicationCommand) bool {
	if existing.Description != want.Description || len(existing.Options) != len(want.Options) {
		return false
	}
	for i, opt := range want.Options {
		got := existing.Options[i]
		if got == nil || got.Name != opt.Name || got.Type != opt.Type || got.Required != opt.Required || got.Description != opt.Description {
			return false
		}
		if got.MaxValue != opt.MaxValue || got.MinValue == nil || *got.MinValue != *opt.MinValue {
			return false
		}
	}
	return true
}

func (c *Client) resolveUserIsBot(guildID, userID string, state *discordgo.VoiceState) bool {
	if isBot, ok := botFlagFromVoiceState(state); ok {
		return isBot
	}
	if isBot, ok := c.botFlagFromSessionState(guildID, userID); ok {
		return isBot
	}
	return c.botFlagFromUserAPI(userID)
}

func botFlagFromVoiceState(state *discordgo.VoiceState) (bool, bool) {
	if state != nil && state.Member != nil && state.Member.User != nil {
		return state.Member.User.Bot, true
	}
	return false, false
}

func (c *Client) botFlagFromSessionState(guildID, userID string) (bool, bool) {
	if c.session == nil || c.session.State == nil {
		return false, false
	}
	if c.session.State.User != nil && c.session.State.User.ID == userID {
		return true, true
	}
	member, err := c.session.State.Member(guildID, userID)
	if err == nil && member != nil && member.User != nil {
		return member.User.Bot, true
	}
	return false, false
}

func (c *Client) botFlagFromUserAPI(userID string) bool {
	u, err := c.session.User(userID)
	if err != nil {
		return false
	}
	return u.Bot
}

// resolveChannelName looks in the gateway state first, then the name cache,
// then the REST API. An unresolvable channel yields "".
func (c *Client) resolveChannelName(channelID string) string {
	if channelID == "" || c.session == nil {
		return ""
	}
	if c.session.State != nil {
		channel, err := c.session.State.Channel(channelID)
		if err == nil && channel != nil && channel.Name != "" {
			c.channelNames.Add(channelID, channel.Name)
			return channel.Name
		}
	}
	if name, ok := c.channelNames.Get(channelID); ok {
		return name
	}
	channel, err := c.session.Channel(channelID)
	if err != nil || channel == nil || channel.Name == "" {
		slog.Warn("discord channel name could not be resolved", "channel_id", channelID, "error", err)
		return ""
	}
	c.channelNames.Add(channelID, channel.Name)
	return channel.Name
}

func (c *Client) applicationID() string {
	if c.session == nil || c.session.State == nil {
		return ""
	}
	if c.session.State.Application != nil && c.session.State.Application.ID != "" {
		return c.session.State.Application.ID
	}
	if c.session.State.User != nil {
		return c.session.State.User.ID
	}
	return ""
}

// Run blocks until Close is called.
func (c *Client) Run() error {
	<-c.done
	return nil
}
