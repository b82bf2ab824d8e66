package tracker

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/foxseedlab/vclog/internal/config"
	"github.com/foxseedlab/vclog/internal/discord"
	"github.com/foxseedlab/vclog/internal/eventlog"
	"github.com/foxseedlab/vclog/internal/metrics"
	"github.com/foxseedlab/vclog/internal/presence"
	"github.com/foxseedlab/vclog/internal/stats"
)

const (
	appendTimeout = 5 * time.Second
	queryTimeout  = 10 * time.Second

	dropReasonInvalidID    = "invalid_id"
	dropReasonAppendFailed = "append_failed"
)

// Manager records voice presence into the event log and answers the usage
// slash commands.
type Manager struct {
	cfg    *config.Config
	events eventlog.Writer
	stats  *stats.Service
	clock  stats.Clock
}

func NewManager(cfg *config.Config, events eventlog.Writer, svc *stats.Service, clock stats.Clock) *Manager {
	if clock == nil {
		clock = stats.RealClock{}
	}
	return &Manager{
		cfg:    cfg,
		events: events,
		stats:  svc,
		clock:  clock,
	}
}

// HandleVoiceStateUpdate appends leave(before) and join(after) events. A move
// between channels produces both with the same timestamp, leave first.
func (m *Manager) HandleVoiceStateUpdate(event discord.VoiceStateEvent) {
	slog.Debug("voice state update received", "guild_id", event.GuildID, "user_id", event.UserID, "before_channel_id", event.BeforeChannelID, "after_channel_id", event.AfterChannelID)
	if event.GuildID != m.cfg.DiscordGuildID {
		slog.Debug("ignoring voice event for different guild", "event_guild_id", event.GuildID, "configured_guild_id", m.cfg.DiscordGuildID)
		return
	}
	if event.UserIsBot && !m.cfg.DiscordTrackBots {
		slog.Debug("ignoring voice event for bot user", "user_id", event.UserID)
		return
	}
	if event.BeforeChannelID == event.AfterChannelID {
		return
	}

	at := event.ReceivedAt
	if at.IsZero() {
		at = m.clock.Now()
	}
	events, err := presenceEvents(event, at)
	if err != nil {
		slog.Warn("dropping voice state update", "error", err, "user_id", event.UserID)
		metrics.EventsDropped.WithLabelValues(dropReasonInvalidID).Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()
	if err := m.events.Append(ctx, events...); err != nil {
		slog.Error("failed to append presence events", "error", err, "user_id", event.UserID)
		metrics.EventsDropped.WithLabelValues(dropReasonAppendFailed).Add(float64(len(events)))
		return
	}
	for _, ev := range events {
		metrics.EventsRecorded.WithLabelValues(string(ev.Action)).Inc()
		slog.Info("presence event recorded", "user_id", ev.UserID, "channel_id", ev.ChannelID, "channel_name", ev.ChannelName, "action", ev.Action)
	}
}

func presenceEvents(event discord.VoiceStateEvent, at time.Time) ([]presence.PresenceEvent, error) {
	userID, err := strconv.ParseInt(event.UserID, 10, 64)
	if err != nil {
		return nil, errors.Join(errInvalidSnowflake, err)
	}
	events := make([]presence.PresenceEvent, 0, 2)
	if event.BeforeChannelID != "" {
		ev, err := presenceEvent(userID, event.BeforeChannelID, event.BeforeChannelName, presence.ActionLeave, at)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if event.AfterChannelID != "" {
		ev, err := presenceEvent(userID, event.AfterChannelID, event.AfterChannelName, presence.ActionJoin, at)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

var errInvalidSnowflake = errors.New("invalid discord snowflake")

func presenceEvent(userID int64, channelID, channelName string, action presence.Action, at time.Time) (presence.PresenceEvent, error) {
	id, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return presence.PresenceEvent{}, errors.Join(errInvalidSnowflake, err)
	}
	if channelName == "" {
		channelName = channelID
	}
	return presence.PresenceEvent{
		UserID:      userID,
		ChannelID:   id,
		ChannelName: channelName,
		Action:      action,
		Timestamp:   at,
	}, nil
}

func (m *Manager) HandleSlashCommand(event discord.SlashCommandEvent) {
	if event.GuildID != m.cfg.DiscordGuildID {
		m.respondEphemeral(event, messageEphemeralWrongGuild)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var (
		content   string
		ephemeral bool
		err       error
	)
	switch event.CommandName {
	case commandToday:
		content, err = m.todayReply(ctx)
	case commandWeekly:
		content, err = m.weeklyReply(ctx)
	case commandTotal:
		content, err = m.totalReply(ctx)
	case commandRanking:
		content, err = m.rankingReply(ctx)
	case commandMonthly:
		content, err = m.monthlyReply(ctx, event.IntOptions)
	case commandMe:
		ephemeral = true
		content, err = m.meReply(ctx, event.UserID)
	default:
		m.respondEphemeral(event, messageEphemeralUnknownCommand)
		return
	}

	switch {
	case errors.Is(err, stats.ErrInvalidArgument):
		m.respondEphemeral(event, messageEphemeralInvalidArgument)
	case err != nil:
		slog.Error("usage query failed", "error", err, "command", event.CommandName, "user_id", event.UserID)
		m.respondEphemeral(event, messageEphemeralQueryFailed)
	case ephemeral:
		m.respondEphemeral(event, content)
	default:
		m.respond(event, content)
	}
}

func (m *Manager) respond(event discord.SlashCommandEvent, content string) {
	if event.Respond == nil {
		return
	}
	if err := event.Respond(content); err != nil {
		slog.Error("failed to respond to slash command", "error", err, "command", event.CommandName)
	}
}

func (m *Manager) respondEphemeral(event discord.SlashCommandEvent, content string) {
	if event.RespondEphemeral == nil {
		return
	}
	if err := event.RespondEphemeral(content); err != nil {
		slog.Error("failed to respond to slash command", "error", err, "command", event.CommandName)
	}
}

func (m *Manager) todayReply(ctx context.Context) (string, error) {
	usages, err := m.stats.TodayUsage(ctx)
	if err != nil {
		return "", err
	}
	if len(usages) == 0 {
		return messageNoDataToday, nil
	}
	lines := make([]string, 0, len(usages))
	for _, u := range usages {
		lines = append(lines, channelLine(u.ChannelName, u.Duration))
	}
	return buildMessage(messageTodayTitle, lines), nil
}

func (m *Manager) weeklyReply(ctx context.Context) (string, error) {
	usages, err := m.stats.WeeklyUsage(ctx)
	if err != nil {
		return "", err
	}
	if len(usages) == 0 {
		return messageNoDataWeekly, nil
	}
	lines := make([]string, 0, len(usages))
	for _, u := range usages {
		lines = append(lines, dailyChannelLine(u.Date.String(), u.ChannelName, u.Duration))
	}
	return buildMessage(messageWeeklyTitle, lines), nil
}

func (m *Manager) totalReply(ctx context.Context) (string, error) {
	usages, err := m.stats.TotalUsage(ctx)
	if err != nil {
		return "", err
	}
	if len(usages) == 0 {
		return messageNoDataTotal, nil
	}
	lines := make([]string, 0, len(usages))
	for _, u := range usages {
		lines = append(lines, channelLine(u.ChannelName, u.Duration))
	}
	return buildMessage(messageTotalTitle, lines), nil
}

func (m *Manager) rankingReply(ctx context.Context) (string, error) {
	channels, err := m.stats.Ranking(ctx)
	if err != nil {
		return "", err
	}
	users, err := m.stats.UserRanking(ctx)
	if err != nil {
		return "", err
	}
	if len(channels) == 0 && len(users) == 0 {
		return messageNoDataTotal, nil
	}
	lines := make([]string, 0, len(channels)+len(users)+2)
	lines = append(lines, messageRankingChannelsHeading)
	for _, r := range channels {
		lines = append(lines, rankLine(r.Rank, r.ChannelName, r.Duration))
	}
	lines = append(lines, messageRankingUsersHeading)
	for _, r := range users {
		lines = append(lines, rankLine(r.Rank, userMention(r.UserID), r.Duration))
	}
	return buildMessage(messageRankingTitle, lines), nil
}

func (m *Manager) monthlyReply(ctx context.Context, options map[string]int64) (string, error) {
	year, okYear := options[optionYear]
	month, okMonth := options[optionMonth]
	if !okYear || !okMonth {
		return "", stats.ErrInvalidArgument
	}
	report, err := m.stats.MonthlyReport(ctx, int(year), int(month))
	if err != nil {
		return "", err
	}
	title := monthlyTitle(report.Year, int(report.Month))
	if len(report.Daily) == 0 {
		return buildMessage(title, []string{messageNoDataMonthly}), nil
	}
	lines := make([]string, 0, len(report.Daily)+1)
	lines = append(lines, totalLine(report.TotalDuration))
	for _, d := range report.Daily {
		lines = append(lines, channelLine(d.Date.String(), d.Duration))
	}
	return buildMessage(title, lines), nil
}

func (m *Manager) meReply(ctx context.Context, rawUserID string) (string, error) {
	userID, err := strconv.ParseInt(rawUserID, 10, 64)
	if err != nil {
		return "", errors.Join(stats.ErrInvalidArgument, err)
	}
	summary, err := m.stats.UserSummary(ctx, userID)
	if err != nil {
		return "", err
	}
	return userSummaryMessage(summary), nil
}
