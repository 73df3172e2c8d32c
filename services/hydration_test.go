package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sarveshwaran777333/Water-buddy/models"
	"github.com/sarveshwaran777333/Water-buddy/store"
)

type fakeWeather struct {
	lat, lon float64
	temp     float64
	geoErr   error
	tempErr  error
	lastCity string
}

func (f *fakeWeather) ResolveCoordinates(ctx context.Context, city string) (float64, float64, error) {
	f.lastCity = city
	if f.geoErr != nil {
		return 0, 0, f.geoErr
	}
	return f.lat, f.lon, nil
}

func (f *fakeWeather) CurrentTemperature(ctx context.Context, lat, lon float64) (float64, error) {
	if f.tempErr != nil {
		return 0, f.tempErr
	}
	return f.temp, nil
}

type hydrationFixture struct {
	svc     *HydrationService
	repo    *Repository
	weather *fakeWeather
	uid     string
	clock   *time.Time
}

func newHydrationFixture(t *testing.T) *hydrationFixture {
	t.Helper()
	repo := NewRepository(store.NewMemStore(), zap.NewNop())
	weather := &fakeWeather{lat: 43.24, lon: 76.89, temp: 22}
	svc := NewHydrationService(repo, weather, zap.NewNop())

	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	clock := &now
	svc.now = func() time.Time { return *clock }

	accounts := NewAccountService(repo, zap.NewNop())
	uid, err := accounts.Register(context.Background(), "alice", "pass")
	require.NoError(t, err)

	return &hydrationFixture{svc: svc, repo: repo, weather: weather, uid: uid, clock: clock}
}

func (f *hydrationFixture) advanceDays(n int) {
	*f.clock = f.clock.AddDate(0, 0, n)
}

func TestStandardGoalTable(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1600, StandardGoal(models.AgeGroupChild))
	assert.Equal(t, 2000, StandardGoal(models.AgeGroupTeen))
	assert.Equal(t, 2500, StandardGoal(models.AgeGroupAdult))
	assert.Equal(t, 2200, StandardGoal(models.AgeGroupSenior))
	assert.Equal(t, 2000, StandardGoal(models.AgeGroupElder))
	assert.Equal(t, 2500, StandardGoal("unknown"), "unknown bracket falls back to adult")
}

func TestWeatherGoalThresholds(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 3500, WeatherGoal(35))
	assert.Equal(t, 3500, WeatherGoal(41.5))
	assert.Equal(t, 3000, WeatherGoal(30))
	assert.Equal(t, 2500, WeatherGoal(25))
	assert.Equal(t, 2000, WeatherGoal(24.9))
	assert.Equal(t, 2000, WeatherGoal(-5))
}

func TestPercentOfGoal(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, PercentOfGoal(0, 2500))
	assert.Equal(t, 30, PercentOfGoal(750, 2500))
	assert.Equal(t, 100, PercentOfGoal(2500, 2500))
	assert.Equal(t, 100, PercentOfGoal(9000, 2500), "clamped at 100")
	assert.Equal(t, 0, PercentOfGoal(500, 0), "non-positive goal reads as 0%")
	assert.Equal(t, 0, PercentOfGoal(500, -10))
}

func TestPercentOfGoal_Monotonic(t *testing.T) {
	t.Parallel()
	prev := 0
	for logged := 0; logged <= 6000; logged += 100 {
		pct := PercentOfGoal(logged, 2500)
		assert.GreaterOrEqual(t, pct, prev)
		assert.LessOrEqual(t, pct, 100)
		prev = pct
	}
}

func TestLogIntake_SumsWithinDay(t *testing.T) {
	t.Parallel()
	f := newHydrationFixture(t)
	ctx := context.Background()

	_, err := f.svc.LogIntake(ctx, f.uid, 300, "")
	require.NoError(t, err)
	status, err := f.svc.LogIntake(ctx, f.uid, 450, "after run")
	require.NoError(t, err)

	assert.Equal(t, 750, status.IntakeML)
	assert.Equal(t, "2026-08-31", status.Date)
}

func TestLogIntake_RejectsNonPositive(t *testing.T) {
	t.Parallel()
	f := newHydrationFixture(t)
	ctx := context.Background()

	_, err := f.svc.LogIntake(ctx, f.uid, 0, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = f.svc.LogIntake(ctx, f.uid, -250, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	status, err := f.svc.Status(ctx, f.uid)
	require.NoError(t, err)
	assert.Equal(t, 0, status.IntakeML, "rejected amounts must not change the total")
}

func TestLogIntake_MilestoneFiresExactlyOnce(t *testing.T) {
	t.Parallel()
	f := newHydrationFixture(t)
	ctx := context.Background()

	// adult bracket, goal 2500: three logs of 250 reach 750 ml = 30%
	s1, err := f.svc.LogIntake(ctx, f.uid, 250, "")
	require.NoError(t, err)
	assert.Empty(t, s1.NewMilestones, "10% crosses nothing")

	s2, err := f.svc.LogIntake(ctx, f.uid, 250, "")
	require.NoError(t, err)
	assert.Empty(t, s2.NewMilestones, "20% crosses nothing")

	s3, err := f.svc.LogIntake(ctx, f.uid, 250, "")
	require.NoError(t, err)
	assert.Equal(t, []int{25}, s3.NewMilestones, "30% crosses the 25% threshold")
	assert.Equal(t, 30, s3.Percent)

	// logging more must not re-fire 25
	s4, err := f.svc.LogIntake(ctx, f.uid, 100, "")
	require.NoError(t, err)
	assert.Empty(t, s4.NewMilestones)
	assert.Equal(t, []int{25}, s4.Milestones)
}

func TestLogIntake_BigLogFiresAllCrossedMilestones(t *testing.T) {
	t.Parallel()
	f := newHydrationFixture(t)

	status, err := f.svc.LogIntake(context.Background(), f.uid, 2500, "")
	require.NoError(t, err)
	assert.Equal(t, []int{25, 50, 75, 100}, status.NewMilestones)
	assert.Equal(t, 100, status.Percent)
}

func TestRollover_ResetsTodayAndKeepsHistory(t *testing.T) {
	t.Parallel()
	f := newHydrationFixture(t)
	ctx := context.Background()

	_, err := f.svc.LogIntake(ctx, f.uid, 1200, "")
	require.NoError(t, err)

	f.advanceDays(1)

	status, err := f.svc.LogIntake(ctx, f.uid, 300, "")
	require.NoError(t, err)
	assert.Equal(t, 300, status.IntakeML, "new day starts from zero")
	assert.Equal(t, "2026-09-01", status.Date)

	history, err := f.svc.History(ctx, f.uid, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 300, history[0].IntakeML)
	assert.Equal(t, 1200, history[1].IntakeML, "prior day's total survives rollover")
}

func TestRollover_IdempotentSameDay(t *testing.T) {
	t.Parallel()
	f := newHydrationFixture(t)
	ctx := context.Background()

	_, err := f.svc.LogIntake(ctx, f.uid, 500, "")
	require.NoError(t, err)

	user, err := f.repo.GetUser(ctx, f.uid)
	require.NoError(t, err)
	require.NoError(t, f.svc.RolloverIfNewDay(ctx, user))
	require.NoError(t, f.svc.RolloverIfNewDay(ctx, user))

	status, err := f.svc.Status(ctx, f.uid)
	require.NoError(t, err)
	assert.Equal(t, 500, status.IntakeML, "same-day rollover must not touch the total")
}

func TestRollover_PrunesBeyondWindow(t *testing.T) {
	t.Parallel()
	f := newHydrationFixture(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := f.svc.LogIntake(ctx, f.uid, 100, "")
		require.NoError(t, err)
		f.advanceDays(1)
	}
	// trigger the rollover for the current day
	_, err := f.svc.LogIntake(ctx, f.uid, 100, "")
	require.NoError(t, err)

	dates, err := f.repo.ListDayDates(ctx, f.uid)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(dates), 7, "history is capped at the trailing window")
}

func TestEffectiveGoal_ManualOverrideWins(t *testing.T) {
	t.Parallel()
	f := newHydrationFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.UpdateProfile(ctx, f.uid, models.Profile{
		AgeGroup:   models.AgeGroupTeen,
		GoalML:     3200,
		GoalSource: models.GoalSourceManual,
	}))

	user, err := f.repo.GetUser(ctx, f.uid)
	require.NoError(t, err)
	goal, source := f.svc.EffectiveGoal(ctx, user)
	assert.Equal(t, 3200, goal)
	assert.Equal(t, models.GoalSourceManual, source)
}

func TestEffectiveGoal_WeatherDerived(t *testing.T) {
	t.Parallel()
	f := newHydrationFixture(t)
	ctx := context.Background()
	f.weather.temp = 33

	require.NoError(t, f.repo.UpdateProfile(ctx, f.uid, models.Profile{
		AgeGroup:   models.AgeGroupAdult,
		GoalSource: models.GoalSourceWeather,
		City:       "Chennai",
	}))

	user, err := f.repo.GetUser(ctx, f.uid)
	require.NoError(t, err)
	goal, source := f.svc.EffectiveGoal(ctx, user)
	assert.Equal(t, 3000, goal)
	assert.Equal(t, models.GoalSourceWeather, source)
}

func TestProfileCityChangeRedirectsWeatherLookup(t *testing.T) {
	t.Parallel()
	f := newHydrationFixture(t)
	ctx := context.Background()

	// weather profile pinned to Chennai with already-resolved coordinates
	require.NoError(t, f.repo.UpdateProfile(ctx, f.uid, models.Profile{
		AgeGroup:   models.AgeGroupAdult,
		GoalSource: models.GoalSourceWeather,
		City:       "Chennai",
		Latitude:   13.08,
		Longitude:  80.27,
	}))

	// moving must drop the stale coordinates, not leave them merged in
	require.NoError(t, f.repo.UpdateProfile(ctx, f.uid, models.Profile{
		AgeGroup:   models.AgeGroupAdult,
		GoalSource: models.GoalSourceWeather,
		City:       "Oslo",
	}))

	user, err := f.repo.GetUser(ctx, f.uid)
	require.NoError(t, err)
	assert.Zero(t, user.Profile.Latitude, "old city's latitude must not survive the merge")
	assert.Zero(t, user.Profile.Longitude, "old city's longitude must not survive the merge")

	f.svc.EffectiveGoal(ctx, user)
	assert.Equal(t, "Oslo", f.weather.lastCity, "goal must geocode the new city")
}

func TestEffectiveGoal_WeatherUnavailableFallsBack(t *testing.T) {
	t.Parallel()
	f := newHydrationFixture(t)
	ctx := context.Background()
	f.weather.tempErr = ErrWeatherUnavailable

	require.NoError(t, f.repo.UpdateProfile(ctx, f.uid, models.Profile{
		AgeGroup:   models.AgeGroupAdult,
		GoalSource: models.GoalSourceWeather,
		City:       "Atlantis",
	}))

	user, err := f.repo.GetUser(ctx, f.uid)
	require.NoError(t, err)
	goal, _ := f.svc.EffectiveGoal(ctx, user)
	assert.Equal(t, models.DefaultGoalML, goal, "unavailable weather falls back to the fixed default")

	// the dashboard still renders a percentage instead of erroring
	status, err := f.svc.Status(ctx, f.uid)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Percent)
}

func TestResetToday(t *testing.T) {
	t.Parallel()
	f := newHydrationFixture(t)
	ctx := context.Background()

	_, err := f.svc.LogIntake(ctx, f.uid, 900, "")
	require.NoError(t, err)

	status, err := f.svc.ResetToday(ctx, f.uid)
	require.NoError(t, err)
	assert.Equal(t, 0, status.IntakeML)
	assert.Empty(t, status.Milestones)

	// milestones may fire again after an explicit reset
	s, err := f.svc.LogIntake(ctx, f.uid, 700, "")
	require.NoError(t, err)
	assert.Equal(t, []int{25}, s.NewMilestones)
}

func TestTasksDeriveFromIntake(t *testing.T) {
	t.Parallel()
	f := newHydrationFixture(t)
	ctx := context.Background()

	tasks, err := f.svc.Tasks(ctx, f.uid)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for _, task := range tasks {
		assert.False(t, task.Done)
	}

	_, err = f.svc.LogIntake(ctx, f.uid, 1100, "")
	require.NoError(t, err)

	tasks, err = f.svc.Tasks(ctx, f.uid)
	require.NoError(t, err)
	assert.True(t, tasks[0].Done, "500 ml task")
	assert.True(t, tasks[1].Done, "1 litre task")
	assert.False(t, tasks[2].Done, "goal not reached yet")
}

func TestCupsConversionRoundTrip(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 473.176, CupsToML(2), 0.001)
	assert.InDelta(t, 2, MLToCups(CupsToML(2)), 1e-9)
}

func TestStorageFailureSurfacesAndPreservesTotal(t *testing.T) {
	t.Parallel()

	flaky := &flakyStore{Adapter: store.NewMemStore()}
	repo := NewRepository(flaky, zap.NewNop())
	svc := NewHydrationService(repo, &fakeWeather{temp: 20}, zap.NewNop())
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	accounts := NewAccountService(repo, zap.NewNop())
	uid, err := accounts.Register(context.Background(), "alice", "pass")
	require.NoError(t, err)

	_, err = svc.LogIntake(context.Background(), uid, 400, "")
	require.NoError(t, err)

	flaky.failWrites = true
	_, err = svc.LogIntake(context.Background(), uid, 300, "")
	assert.ErrorIs(t, err, store.ErrUnavailable, "a failed write-back is an explicit failure")

	flaky.failWrites = false
	status, err := svc.Status(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, 400, status.IntakeML, "the stored total is untouched by the failed log")
}

func TestLogIntake_LostEntryKeepsDurableTotal(t *testing.T) {
	t.Parallel()

	flaky := &flakyStore{Adapter: store.NewMemStore()}
	repo := NewRepository(flaky, zap.NewNop())
	svc := NewHydrationService(repo, &fakeWeather{temp: 20}, zap.NewNop())
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	accounts := NewAccountService(repo, zap.NewNop())
	uid, err := accounts.Register(context.Background(), "alice", "pass")
	require.NoError(t, err)

	_, err = svc.LogIntake(context.Background(), uid, 400, "")
	require.NoError(t, err)

	// total merge lands, detail entry append does not: the log still
	// succeeds, otherwise a client retry would double-count
	flaky.failAppends = true
	status, err := svc.LogIntake(context.Background(), uid, 300, "")
	require.NoError(t, err)
	assert.Equal(t, 700, status.IntakeML)

	flaky.failAppends = false
	got, err := svc.Status(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, 700, got.IntakeML)
}

// flakyStore wraps an adapter and fails mutations on demand.
type flakyStore struct {
	store.Adapter
	failWrites  bool
	failAppends bool
}

func (f *flakyStore) Write(ctx context.Context, path string, value any) error {
	if f.failWrites {
		return store.ErrUnavailable
	}
	return f.Adapter.Write(ctx, path, value)
}

func (f *flakyStore) Merge(ctx context.Context, path string, partial any) error {
	if f.failWrites {
		return store.ErrUnavailable
	}
	return f.Adapter.Merge(ctx, path, partial)
}

func (f *flakyStore) Append(ctx context.Context, path string, value any) (string, error) {
	if f.failWrites || f.failAppends {
		return "", store.ErrUnavailable
	}
	return f.Adapter.Append(ctx, path, value)
}
