package services

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sarveshwaran777333/Water-buddy/models"
	"github.com/sarveshwaran777333/Water-buddy/utils"
)

// Standard daily targets by age bracket, in milliliters.
var ageGoalsML = map[string]int{
	models.AgeGroupChild:  1600,
	models.AgeGroupTeen:   2000,
	models.AgeGroupAdult:  2500,
	models.AgeGroupSenior: 2200,
	models.AgeGroupElder:  2000,
}

// Progress thresholds that fire a one-time notification per day.
var milestoneThresholds = []int{25, 50, 75, 100}

// Days of trailing history kept after rollover.
const historyWindow = 7

const cupsToML = 236.588

var hydrationTips = []string{
	"Keep a filled water bottle visible on your desk.",
	"Drink a glass (250 ml) after every bathroom break.",
	"Start your day with a glass of water.",
	"Add lemon or cucumber for natural flavor.",
	"Set small hourly reminders and sip regularly.",
}

// HydrationService derives daily goals and tracks logged volume against
// them, rolling the mutable "today" record over at local date change.
type HydrationService struct {
	repo    *Repository
	weather WeatherProvider
	logger  *zap.Logger
	now     func() time.Time
}

func NewHydrationService(repo *Repository, weather WeatherProvider, logger *zap.Logger) *HydrationService {
	return &HydrationService{
		repo:    repo,
		weather: weather,
		logger:  logger,
		now:     time.Now,
	}
}

// DayStatus is the dashboard view of one day.
type DayStatus struct {
	Date          string `json:"date"`
	IntakeML      int    `json:"intake_ml"`
	GoalML        int    `json:"goal_ml"`
	GoalSource    string `json:"goal_source"`
	RemainingML   int    `json:"remaining_ml"`
	Percent       int    `json:"percent"`
	Milestones    []int  `json:"milestones"`
	NewMilestones []int  `json:"new_milestones,omitempty"`
}

type HistoryDay struct {
	Date     string `json:"date"`
	IntakeML int    `json:"intake_ml"`
}

type Task struct {
	Title    string `json:"title"`
	TargetML int    `json:"target_ml"`
	Done     bool   `json:"done"`
}

func (s *HydrationService) today() string {
	return s.now().Format("2006-01-02")
}

// StandardGoal looks up the age-bracket target; unknown brackets get the
// adult default.
func StandardGoal(ageGroup string) int {
	if goal, ok := ageGoalsML[ageGroup]; ok {
		return goal
	}
	return ageGoalsML[models.AgeGroupAdult]
}

// WeatherGoal scales the target by current temperature.
func WeatherGoal(tempC float64) int {
	switch {
	case tempC >= 35:
		return 3500
	case tempC >= 30:
		return 3000
	case tempC >= 25:
		return 2500
	default:
		return 2000
	}
}

// PercentOfGoal clamps to [0, 100]; a non-positive goal reads as 0%.
func PercentOfGoal(loggedML, goalML int) int {
	if goalML <= 0 || loggedML <= 0 {
		return 0
	}
	pct := 100 * loggedML / goalML
	if pct > 100 {
		pct = 100
	}
	return pct
}

// EffectiveGoal resolves the active target: manual override first, then the
// weather-derived target when the profile asks for it, then the age bracket.
// A failed weather lookup falls back to the fixed default instead of
// failing the caller.
func (s *HydrationService) EffectiveGoal(ctx context.Context, user *models.User) (int, string) {
	p := user.Profile
	if p.GoalSource == models.GoalSourceManual && p.GoalML > 0 {
		return p.GoalML, models.GoalSourceManual
	}
	if p.GoalSource == models.GoalSourceWeather {
		temp, err := s.currentTemperatureFor(ctx, &p)
		if err != nil {
			s.logger.Warn("weather_fallback",
				zap.String("uid", user.UID),
				zap.String("city", p.City),
				zap.Error(err),
			)
			return models.DefaultGoalML, models.GoalSourceWeather
		}
		return WeatherGoal(temp), models.GoalSourceWeather
	}
	return StandardGoal(p.AgeGroup), models.GoalSourceAge
}

func (s *HydrationService) currentTemperatureFor(ctx context.Context, p *models.Profile) (float64, error) {
	lat, lon := p.Latitude, p.Longitude
	if lat == 0 && lon == 0 {
		if p.City == "" {
			return 0, ErrWeatherUnavailable
		}
		var err error
		lat, lon, err = s.weather.ResolveCoordinates(ctx, p.City)
		if err != nil {
			return 0, err
		}
	}
	return s.weather.CurrentTemperature(ctx, lat, lon)
}

// RolloverIfNewDay compares the stored last-active date with the current
// local date. On mismatch it starts a fresh "today" and prunes stored days
// beyond the trailing window. Calling it twice on the same day is a no-op
// the second time.
func (s *HydrationService) RolloverIfNewDay(ctx context.Context, user *models.User) error {
	today := s.today()
	if user.LastActiveDate == today {
		return nil
	}

	prev := user.LastActiveDate
	if err := s.repo.SetLastActiveDate(ctx, user.UID, today); err != nil {
		return err
	}
	user.LastActiveDate = today

	if err := s.pruneHistory(ctx, user.UID); err != nil {
		// history pruning is best-effort; the new day is already active
		s.logger.Warn("history_prune_failed", zap.String("uid", user.UID), zap.Error(err))
	}

	if prev != "" {
		s.logger.Info("day_rollover",
			zap.String("uid", user.UID),
			zap.String("from", prev),
			zap.String("to", today),
		)
	}
	return nil
}

// pruneHistory drops stored days older than the trailing window (today plus
// six prior days). ISO dates compare correctly as strings.
func (s *HydrationService) pruneHistory(ctx context.Context, uid string) error {
	dates, err := s.repo.ListDayDates(ctx, uid)
	if err != nil {
		return err
	}
	cutoff := s.now().AddDate(0, 0, -(historyWindow - 1)).Format("2006-01-02")
	for _, d := range dates {
		if d < cutoff {
			if err := s.repo.DeleteDay(ctx, uid, d); err != nil {
				return err
			}
		}
	}
	return nil
}

// LogIntake adds amount to today's total. The in-memory update and the
// write-back are one unit: a failed write surfaces as an error and leaves
// the stored total untouched.
func (s *HydrationService) LogIntake(ctx context.Context, uid string, amountML int, note string) (*DayStatus, error) {
	if amountML <= 0 {
		return nil, ErrInvalidAmount
	}

	user, err := s.repo.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := s.RolloverIfNewDay(ctx, user); err != nil {
		return nil, err
	}

	today := s.today()
	day, err := s.repo.GetDay(ctx, uid, today)
	if err != nil {
		return nil, err
	}

	goal, source := s.EffectiveGoal(ctx, user)
	newTotal := day.IntakeML + amountML
	newPercent := PercentOfGoal(newTotal, goal)

	fired := s.newMilestones(day.Milestones, newPercent)
	milestones := append(append([]int{}, day.Milestones...), fired...)
	sort.Ints(milestones)

	if err := s.repo.SetDayTotal(ctx, uid, today, newTotal, milestones); err != nil {
		return nil, err
	}
	if _, err := s.repo.AppendEntry(ctx, uid, today, models.IntakeEntry{
		AmountML: amountML,
		Note:     note,
		LoggedAt: s.now().UTC(),
	}); err != nil {
		// The total is already durable. Failing here would invite a retry
		// that double-counts, so the lost detail entry is only logged.
		s.logger.Warn("intake_entry_lost",
			zap.String("uid", uid),
			zap.String("date", today),
			zap.Int("amount_ml", amountML),
			zap.Error(err),
		)
	}

	utils.IntakeLogged.Inc()
	for _, m := range fired {
		utils.MilestonesFired.WithLabelValues(strconv.Itoa(m)).Inc()
		s.logger.Info("milestone_reached",
			zap.String("uid", uid),
			zap.Int("threshold", m),
			zap.String("date", today),
		)
	}

	return &DayStatus{
		Date:          today,
		IntakeML:      newTotal,
		GoalML:        goal,
		GoalSource:    source,
		RemainingML:   maxInt(goal-newTotal, 0),
		Percent:       newPercent,
		Milestones:    milestones,
		NewMilestones: fired,
	}, nil
}

// newMilestones returns thresholds crossed by percent that have not fired
// yet today, ascending.
func (s *HydrationService) newMilestones(already []int, percent int) []int {
	seen := map[int]bool{}
	for _, m := range already {
		seen[m] = true
	}
	var fired []int
	for _, t := range milestoneThresholds {
		if percent >= t && !seen[t] {
			fired = append(fired, t)
		}
	}
	return fired
}

// ResetToday is the explicit manual reset; automatic rollover happens
// regardless at date change.
func (s *HydrationService) ResetToday(ctx context.Context, uid string) (*DayStatus, error) {
	user, err := s.repo.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := s.RolloverIfNewDay(ctx, user); err != nil {
		return nil, err
	}
	today := s.today()
	if err := s.repo.ResetDay(ctx, uid, today); err != nil {
		return nil, err
	}
	goal, source := s.EffectiveGoal(ctx, user)
	return &DayStatus{
		Date:        today,
		GoalML:      goal,
		GoalSource:  source,
		RemainingML: goal,
		Milestones:  []int{},
	}, nil
}

// Status assembles the dashboard for today without mutating the total.
func (s *HydrationService) Status(ctx context.Context, uid string) (*DayStatus, error) {
	user, err := s.repo.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := s.RolloverIfNewDay(ctx, user); err != nil {
		return nil, err
	}
	day, err := s.repo.GetDay(ctx, uid, s.today())
	if err != nil {
		return nil, err
	}
	goal, source := s.EffectiveGoal(ctx, user)
	return &DayStatus{
		Date:        day.Date,
		IntakeML:    day.IntakeML,
		GoalML:      goal,
		GoalSource:  source,
		RemainingML: maxInt(goal-day.IntakeML, 0),
		Percent:     PercentOfGoal(day.IntakeML, goal),
		Milestones:  day.Milestones,
	}, nil
}

// History returns totals for the last n days, today first. Missing days
// read as zero.
func (s *HydrationService) History(ctx context.Context, uid string, n int) ([]HistoryDay, error) {
	if n <= 0 || n > 31 {
		n = historyWindow
	}
	out := make([]HistoryDay, 0, n)
	for i := 0; i < n; i++ {
		date := s.now().AddDate(0, 0, -i).Format("2006-01-02")
		day, err := s.repo.GetDay(ctx, uid, date)
		if err != nil {
			return nil, err
		}
		out = append(out, HistoryDay{Date: date, IntakeML: day.IntakeML})
	}
	return out, nil
}

// Tasks derives the daily checklist from today's total.
func (s *HydrationService) Tasks(ctx context.Context, uid string) ([]Task, error) {
	status, err := s.Status(ctx, uid)
	if err != nil {
		return nil, err
	}
	return []Task{
		{Title: "Drink 500 ml water", TargetML: 500, Done: status.IntakeML >= 500},
		{Title: "Drink 1 litre water", TargetML: 1000, Done: status.IntakeML >= 1000},
		{Title: "Complete daily goal", TargetML: status.GoalML, Done: status.IntakeML >= status.GoalML},
	}, nil
}

func RandomTip() string {
	return hydrationTips[rand.Intn(len(hydrationTips))]
}

func CupsToML(cups float64) float64 {
	return cups * cupsToML
}

func MLToCups(ml float64) float64 {
	return ml / cupsToML
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
