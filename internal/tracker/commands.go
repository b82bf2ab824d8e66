package tracker

import "github.com/foxseedlab/vclog/internal/discord"

const (
	commandToday   = "vc-today"
	commandWeekly  = "vc-weekly"
	commandTotal   = "vc-total"
	commandRanking = "vc-ranking"
	commandMonthly = "vc-monthly"
	commandMe      = "vc-me"

	optionYear  = "year"
	optionMonth = "month"
)

func SlashCommandDefinitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{Name: commandToday, Description: "今日のボイスチャンネル利用時間を表示します。"},
		{Name: commandWeekly, Description: "過去7日間のボイスチャンネル利用時間を日別に表示します。"},
		{Name: commandTotal, Description: "ボイスチャンネルごとの累計利用時間を表示します。"},
		{Name: commandRanking, Description: "利用時間の上位10件を表示します。"},
		{
			Name:        commandMonthly,
			Description: "指定した月の利用レポートを表示します。",
			Options: []discord.SlashCommandOption{
				{Name: optionYear, Description: "年 (例: 2025)", Required: true, MinValue: 1, MaxValue: 9999},
				{Name: optionMonth, Description: "月 (1-12)", Required: true, MinValue: 1, MaxValue: 12},
			},
		},
		{Name: commandMe, Description: "あなたの利用時間を表示します。"},
	}
}

func SlashCommandNames() []string {
	defs := SlashCommandDefinitions()
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	return names
}
