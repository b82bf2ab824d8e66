package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foxseedlab/vclog/internal/eventlog"
	"github.com/foxseedlab/vclog/internal/metrics"
	"github.com/foxseedlab/vclog/internal/presence"
	"github.com/foxseedlab/vclog/internal/usage"
)

var ErrInvalidArgument = errors.New("invalid argument")

const (
	queryTodayUsage    = "today_usage"
	queryWeeklyUsage   = "weekly_usage"
	queryTotalUsage    = "total_usage"
	queryRanking       = "ranking"
	queryUserRanking   = "user_ranking"
	queryMonthlyReport = "monthly_report"
	queryUserSummary   = "user_summary"

	weeklyWindow = 7 * 24 * time.Hour
)

// Service answers usage queries. Every call reads a fresh snapshot of the log
// and keeps no state between calls, so it is safe for concurrent use.
type Service struct {
	events eventlog.Reader
	clock  Clock
	loc    *time.Location
}

func NewService(events eventlog.Reader, clock Clock, loc *time.Location) *Service {
	if clock == nil {
		clock = RealClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{events: events, clock: clock, loc: loc}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) TodayUsage(ctx context.Context) (result []ChannelUsage, err error) {
	defer observe(queryTodayUsage, time.Now(), &err)

	sessions, err := s.sessions(ctx)
	if err != nil {
		return nil, err
	}
	window := s.todayWindow(s.clock.Now())
	return channelUsages(usage.Aggregate(sessions, &window, usage.ByChannel, s.loc)), nil
}

func (s *Service) WeeklyUsage(ctx context.Context) (result []DailyChannelUsage, err error) {
	defer observe(queryWeeklyUsage, time.Now(), &err)

	sessions, err := s.sessions(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	window := usage.Window{From: now.Add(-weeklyWindow), To: now}
	groups := usage.Aggregate(sessions, &window, usage.ByDateChannel, s.loc)

	out := make([]DailyChannelUsage, 0, len(groups))
	for _, g := range groups {
		out = append(out, DailyChannelUsage{
			Date:        g.Key.Date,
			ChannelID:   g.Key.ChannelID,
			ChannelName: g.Key.ChannelName,
			Duration:    g.Duration,
		})
	}
	return out, nil
}

func (s *Service) TotalUsage(ctx context.Context) (result []ChannelUsage, err error) {
	defer observe(queryTotalUsage, time.Now(), &err)

	sessions, err := s.sessions(ctx)
	if err != nil {
		return nil, err
	}
	groups := usage.Aggregate(sessions, nil, usage.ByChannel, s.loc)
	usage.SortByDurationDesc(groups)
	return channelUsages(groups), nil
}

func (s *Service) Ranking(ctx context.Context) (result []ChannelRank, err error) {
	defer observe(queryRanking, time.Now(), &err)

	sessions, err := s.sessions(ctx)
	if err != nil {
		return nil, err
	}
	groups := topGroups(usage.Aggregate(sessions, nil, usage.ByChannel, s.loc))

	out := make([]ChannelRank, 0, len(groups))
	for i, g := range groups {
		out = append(out, ChannelRank{
			Rank:        i + 1,
			ChannelID:   g.Key.ChannelID,
			ChannelName: g.Key.ChannelName,
			Duration:    g.Duration,
		})
	}
	return out, nil
}

func (s *Service) UserRanking(ctx context.Context) (result []UserRank, err error) {
	defer observe(queryUserRanking, time.Now(), &err)

	sessions, err := s.sessions(ctx)
	if err != nil {
		return nil, err
	}
	groups := topGroups(usage.Aggregate(sessions, nil, usage.ByUser, s.loc))

	out := make([]UserRank, 0, len(groups))
	for i, g := range groups {
		out = append(out, UserRank{Rank: i + 1, UserID: g.Key.UserID, Duration: g.Duration})
	}
	return out, nil
}

func (s *Service) MonthlyReport(ctx context.Context, year, month int) (result MonthlyReport, err error) {
	defer observe(queryMonthlyReport, time.Now(), &err)

	if err := validateYearMonth(year, month); err != nil {
		return MonthlyReport{}, err
	}
	sessions, err := s.sessions(ctx)
	if err != nil {
		return MonthlyReport{}, err
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	window := usage.Window{From: from, To: from.AddDate(0, 1, 0)}
	report := MonthlyReport{
		Year:          year,
		Month:         time.Month(month),
		TotalDuration: usage.Total(sessions, &window),
		Daily:         make([]DailyUsage, 0),
	}
	for _, g := range usage.Aggregate(sessions, &window, usage.ByDate, s.loc) {
		report.Daily = append(report.Daily, DailyUsage{Date: g.Key.Date, Duration: g.Duration})
	}
	return report, nil
}

func (s *Service) UserSummary(ctx context.Context, userID int64) (result UserSummary, err error) {
	defer observe(queryUserSummary, time.Now(), &err)

	sessions, err := s.sessions(ctx)
	if err != nil {
		return UserSummary{}, err
	}
	own := make([]presence.Session, 0)
	for _, sess := range sessions {
		if sess.UserID == userID {
			own = append(own, sess)
		}
	}

	now := s.clock.Now()
	today := s.todayWindow(now)
	week := usage.Window{From: now.Add(-weeklyWindow), To: now}
	return UserSummary{
		UserID: userID,
		Today:  usage.Total(own, &today),
		Week:   usage.Total(own, &week),
		Total:  usage.Total(own, nil),
	}, nil
}

func (s *Service) sessions(ctx context.Context) ([]presence.Session, error) {
	events, err := s.events.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load presence events: %w", err)
	}
	return presence.Reconstruct(events), nil
}

func (s *Service) todayWindow(now time.Time) usage.Window {
	y, m, d := now.In(s.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	return usage.Window{From: start, To: start.AddDate(0, 0, 1)}
}

func validateYearMonth(year, month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12, got %d", ErrInvalidArgument, month)
	}
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: year must be between 1 and 9999, got %d", ErrInvalidArgument, year)
	}
	return nil
}

func channelUsages(groups []usage.Group) []ChannelUsage {
	out := make([]ChannelUsage, 0, len(groups))
	for _, g := range groups {
		out = append(out, ChannelUsage{
			ChannelID:   g.Key.ChannelID,
			ChannelName: g.Key.ChannelName,
			Duration:    g.Duration,
		})
	}
	return out
}

func topGroups(groups []usage.Group) []usage.Group {
	usage.SortByDurationDesc(groups)
	if len(groups) > RankingLimit {
		groups = groups[:RankingLimit]
	}
	return groups
}

func observe(query string, startedAt time.Time, errp *error) {
	outcome := metrics.OutcomeOK
	switch {
	case *errp == nil:
	case errors.Is(*errp, ErrInvalidArgument):
		outcome = metrics.OutcomeInvalidInput
	default:
		outcome = metrics.OutcomeError
	}
	metrics.ObserveQuery(query, outcome, startedAt)
}
