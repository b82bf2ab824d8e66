package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/vclog/internal/stats"
)

// Discord rejects message content over 2000 characters.
const maxMessageLength = 1900

const (
	ActivityName = "勉強時間をトラッキング中！"

	messageEphemeralWrongGuild      = ":warning: **このサーバーでは実行できません。**"
	messageEphemeralUnknownCommand  = ":warning: **不明なコマンドです。**"
	messageEphemeralInvalidArgument = ":warning: **指定された年月が正しくありません。**"
	messageEphemeralQueryFailed     = ":warning: **利用記録の読み込みに失敗しました。**"

	messageNoDataToday   = ":zzz: **今日はまだボイスチャンネルの利用記録がありません。**"
	messageNoDataWeekly  = ":zzz: **過去7日間のボイスチャンネルの利用記録がありません。**"
	messageNoDataTotal   = ":zzz: **ボイスチャンネルの利用記録がまだありません。**"
	messageNoDataMonthly = "-# この月の利用記録はありません。"

	messageTodayTitle             = ":calendar: **今日のボイスチャンネル利用時間**"
	messageWeeklyTitle            = ":calendar_spiral: **過去7日間のボイスチャンネル利用時間**"
	messageTotalTitle             = ":hourglass: **ボイスチャンネルの累計利用時間**"
	messageRankingTitle           = ":trophy: **利用時間ランキング**"
	messageRankingChannelsHeading = "**チャンネル**"
	messageRankingUsersHeading    = "**メンバー**"
	messageMonthlyTitleFormat     = ":bar_chart: **%d年%d月の利用レポート**"
	messageMeTitleFormat          = ":bust_in_silhouette: <@%d> **さんの利用時間**"
	messageTruncated              = "-# 一部のみ表示しています。"
)

func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Minute)
	hours := int64(d / time.Hour)
	minutes := int64((d % time.Hour) / time.Minute)
	if hours == 0 {
		return fmt.Sprintf("%d分", minutes)
	}
	return fmt.Sprintf("%d時間%02d分", hours, minutes)
}

func channelLine(name string, d time.Duration) string {
	return fmt.Sprintf("- %s: %s", name, formatDuration(d))
}

func dailyChannelLine(date, name string, d time.Duration) string {
	return fmt.Sprintf("- %s %s: %s", date, name, formatDuration(d))
}

func rankLine(rank int, name string, d time.Duration) string {
	return fmt.Sprintf("%d. %s: %s", rank, name, formatDuration(d))
}

func totalLine(d time.Duration) string {
	return fmt.Sprintf("合計: **%s**", formatDuration(d))
}

func userMention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}

func monthlyTitle(year, month int) string {
	return fmt.Sprintf(messageMonthlyTitleFormat, year, month)
}

func userSummaryMessage(s stats.UserSummary) string {
	return buildMessage(fmt.Sprintf(messageMeTitleFormat, s.UserID), []string{
		"- 今日: " + formatDuration(s.Today),
		"- 過去7日間: " + formatDuration(s.Week),
		"- 累計: " + formatDuration(s.Total),
	})
}

// buildMessage drops trailing lines that would push the message past the
// Discord length limit.
func buildMessage(title string, lines []string) string {
	var b strings.Builder
	b.WriteString(title)
	for _, line := range lines {
		if b.Len()+len(line)+len(messageTruncated)+2 > maxMessageLength {
			b.WriteString("\n")
			b.WriteString(messageTruncated)
			break
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}
