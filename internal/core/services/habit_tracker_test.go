package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStateRepo struct {
	mock.Mock
}

func (m *MockStateRepo) Load(ctx context.Context) (*domain.State, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.State), args.Error(1)
}

func (m *MockStateRepo) Save(ctx context.Context, s *domain.State) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// clock is a settable time source shared with the tracker.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTracker(t *testing.T, at time.Time) (*services.HabitTracker, *MockStateRepo, *clock) {
	t.Helper()
	repo := new(MockStateRepo)
	c := &clock{now: at}
	return services.NewHabitTracker(repo, nil, services.WithClock(c.Now)), repo, c
}

var ctx = context.Background()

// Wednesday 2024-01-10, week starting Monday 2024-01-08.
var wednesday = date(2024, time.January, 10).Add(10 * time.Hour)

func TestHabitTracker_AddHabit(t *testing.T) {
	t.Run("Success: appends, recomputes and saves", func(t *testing.T) {
		tracker, repo, _ := newTracker(t, wednesday)
		repo.On("Save", ctx, mock.MatchedBy(func(s *domain.State) bool {
			return len(s.Habits) == 1 && s.Profile.TotalHabits == 1
		})).Return(nil).Once()

		h, err := tracker.AddHabit(ctx, "  Read ", "3")

		require.NoError(t, err)
		assert.Equal(t, "Read", h.Name)
		assert.Equal(t, 3, h.TargetFrequency)
		assert.Equal(t, 1, tracker.Profile().TotalHabits)
		repo.AssertExpectations(t)
	})

	t.Run("Frequency defaults to 1 for bad input", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "0", "-2", " "} {
			tracker, repo, _ := newTracker(t, wednesday)
			repo.On("Save", ctx, mock.Anything).Return(nil)

			h, err := tracker.AddHabit(ctx, "Walk", raw)
			require.NoError(t, err)
			assert.Equal(t, 1, h.TargetFrequency, "input %q", raw)
		}
	})

	t.Run("Scenario: empty name is rejected without a write", func(t *testing.T) {
		tracker, repo, _ := newTracker(t, wednesday)

		_, err := tracker.AddHabit(ctx, "   ", "2")

		assert.ErrorIs(t, err, domain.ErrHabitNameEmpty)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, tracker.ListHabits(domain.FilterAll))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Save failure is reported as persistence error", func(t *testing.T) {
		tracker, repo, _ := newTracker(t, wednesday)
		repo.On("Save", ctx, mock.Anything).Return(errors.New("disk full")).Once()

		_, err := tracker.AddHabit(ctx, "Read", "1")

		assert.ErrorIs(t, err, domain.ErrPersistence)
		assert.Len(t, tracker.ListHabits(domain.FilterAll), 1, "in-memory state keeps the habit")
	})
}

func TestHabitTracker_CompleteHabit(t *testing.T) {
	t.Run("Scenario: Read 3x over three days is completed", func(t *testing.T) {
		tracker, repo, c := newTracker(t, date(2024, time.January, 8).Add(9*time.Hour))
		repo.On("Save", ctx, mock.Anything).Return(nil)

		_, err := tracker.AddHabit(ctx, "Read", "3")
		require.NoError(t, err)

		for _, d := range []int{8, 9, 10} {
			c.Set(date(2024, time.January, d).Add(20 * time.Hour))
			_, err := tracker.CompleteHabit(ctx, "1")
			require.NoError(t, err)
		}

		list := tracker.ListHabits(domain.FilterAll)
		require.Len(t, list, 1)
		assert.Equal(t, domain.StatusCompleted, list[0].Status)
		assert.Equal(t, 100, list[0].Percentage)
		assert.Equal(t, 1, tracker.Profile().CompletedThisWeek)
	})

	t.Run("Scenario: Run 5x completed on two days is 40%", func(t *testing.T) {
		tracker, repo, c := newTracker(t, date(2024, time.January, 8))
		repo.On("Save", ctx, mock.Anything).Return(nil)

		_, _ = tracker.AddHabit(ctx, "Run", "5")
		_, _ = tracker.CompleteHabit(ctx, "1")
		c.Set(date(2024, time.January, 9))
		_, _ = tracker.CompleteHabit(ctx, "1")

		list := tracker.ListHabits(domain.FilterAll)
		require.Len(t, list, 1)
		assert.Equal(t, 40, list[0].Percentage)
		assert.Equal(t, domain.StatusActive, list[0].Status)
	})

	t.Run("Completing twice on the same day is idempotent", func(t *testing.T) {
		tracker, repo, _ := newTracker(t, wednesday)
		repo.On("Save", ctx, mock.Anything).Return(nil)

		_, _ = tracker.AddHabit(ctx, "Read", "2")
		_, _ = tracker.CompleteHabit(ctx, "1")
		h, err := tracker.CompleteHabit(ctx, "1")

		require.NoError(t, err)
		assert.Len(t, h.Completions, 1)
	})

	t.Run("Scenario: out-of-range index leaves the list unchanged", func(t *testing.T) {
		tracker, repo, _ := newTracker(t, wednesday)
		repo.On("Save", ctx, mock.Anything).Return(nil).Twice()

		_, _ = tracker.AddHabit(ctx, "A", "1")
		_, _ = tracker.AddHabit(ctx, "B", "1")
		before := tracker.ListHabits(domain.FilterAll)

		for _, idx := range []string{"99", "0", "-1", "abc", ""} {
			_, err := tracker.CompleteHabit(ctx, idx)
			assert.ErrorIs(t, err, domain.ErrInvalidIndex, "index %q", idx)
		}

		assert.Equal(t, before, tracker.ListHabits(domain.FilterAll))
		repo.AssertNumberOfCalls(t, "Save", 2)
	})
}

func TestHabitTracker_DeleteHabit(t *testing.T) {
	t.Run("Scenario: deleting index 1 keeps the second habit", func(t *testing.T) {
		tracker, repo, _ := newTracker(t, wednesday)
		repo.On("Save", ctx, mock.Anything).Return(nil)

		_, _ = tracker.AddHabit(ctx, "First", "1")
		second, _ := tracker.AddHabit(ctx, "Second", "2")

		removed, err := tracker.DeleteHabit(ctx, "1")

		require.NoError(t, err)
		assert.Equal(t, "First", removed.Name)

		list := tracker.ListHabits(domain.FilterAll)
		require.Len(t, list, 1)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, 1, tracker.Profile().TotalHabits)
	})

	t.Run("Error: invalid index does not save", func(t *testing.T) {
		tracker, repo, _ := newTracker(t, wednesday)

		_, err := tracker.DeleteHabit(ctx, "1")

		assert.ErrorIs(t, err, domain.ErrInvalidIndex)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestHabitTracker_ListHabits(t *testing.T) {
	tracker, repo, _ := newTracker(t, wednesday)
	repo.On("Save", ctx, mock.Anything).Return(nil)

	_, _ = tracker.AddHabit(ctx, "Done", "1")
	_, _ = tracker.AddHabit(ctx, "Pending", "3")
	_, _ = tracker.AddHabit(ctx, "Also done", "1")
	_, _ = tracker.CompleteHabit(ctx, "1")
	_, _ = tracker.CompleteHabit(ctx, "3")

	names := func(list []domain.HabitProgress) []string {
		out := make([]string, 0, len(list))
		for _, p := range list {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Done", "Pending", "Also done"}, names(tracker.ListHabits(domain.FilterAll)))
	assert.Equal(t, []string{"Pending"}, names(tracker.ListHabits(domain.FilterActive)))
	assert.Equal(t, []string{"Done", "Also done"}, names(tracker.ListHabits(domain.FilterCompleted)))
}

func TestHabitTracker_Statistics(t *testing.T) {
	tracker, repo, _ := newTracker(t, wednesday)
	repo.On("Save", ctx, mock.Anything).Return(nil)

	empty := tracker.Statistics()
	assert.Equal(t, 0, empty.TotalHabits)
	assert.Empty(t, empty.HabitNames)
	assert.False(t, empty.HasHighFrequency)

	_, _ = tracker.AddHabit(ctx, "Read", "1")
	_, _ = tracker.AddHabit(ctx, "Run", "5")
	_, _ = tracker.CompleteHabit(ctx, "1")

	stats := tracker.Statistics()
	assert.Equal(t, 2, stats.TotalHabits)
	assert.Equal(t, 1, stats.CompletedThisWeek)
	assert.Equal(t, []string{"Read", "Run"}, stats.HabitNames)
	assert.True(t, stats.HasHighFrequency)
}

func TestHabitTracker_PickReminderTarget(t *testing.T) {
	t.Run("Empty collection has no target", func(t *testing.T) {
		tracker, _, _ := newTracker(t, wednesday)
		_, ok := tracker.PickReminderTarget()
		assert.False(t, ok)
	})

	t.Run("Scenario: picks the incomplete habit, then the oldest", func(t *testing.T) {
		tracker, repo, c := newTracker(t, date(2024, time.January, 8))
		repo.On("Save", ctx, mock.Anything).Return(nil)

		_, _ = tracker.AddHabit(ctx, "Old", "1")
		c.Set(wednesday)
		_, _ = tracker.AddHabit(ctx, "New", "1")

		pick, ok := tracker.PickReminderTarget()
		require.True(t, ok)
		assert.Equal(t, "Old", pick.Name, "both incomplete: earlier createdAt wins")

		_, _ = tracker.CompleteHabit(ctx, "1")
		pick, ok = tracker.PickReminderTarget()
		require.True(t, ok)
		assert.Equal(t, "New", pick.Name)

		_, _ = tracker.CompleteHabit(ctx, "2")
		_, ok = tracker.PickReminderTarget()
		assert.False(t, ok, "all completed")
	})

	t.Run("Same creation date keeps insertion order", func(t *testing.T) {
		tracker, repo, _ := newTracker(t, wednesday)
		repo.On("Save", ctx, mock.Anything).Return(nil)

		_, _ = tracker.AddHabit(ctx, "First", "1")
		_, _ = tracker.AddHabit(ctx, "Second", "1")

		pick, ok := tracker.PickReminderTarget()
		require.True(t, ok)
		assert.Equal(t, "First", pick.Name)
	})

	t.Run("Is read-only", func(t *testing.T) {
		tracker, repo, _ := newTracker(t, wednesday)
		repo.On("Save", ctx, mock.Anything).Return(nil).Once()

		_, _ = tracker.AddHabit(ctx, "Read", "1")
		before := tracker.ListHabits(domain.FilterAll)
		_, _ = tracker.PickReminderTarget()

		assert.Equal(t, before, tracker.ListHabits(domain.FilterAll))
		repo.AssertNumberOfCalls(t, "Save", 1)
	})
}

func TestHabitTracker_Load(t *testing.T) {
	t.Run("Restores stored state and recomputes counters", func(t *testing.T) {
		tracker, repo, _ := newTracker(t, wednesday)

		stored := &domain.State{
			Profile: domain.UserProfile{Name: "Ada", JoinDate: date(2023, time.December, 1), TotalHabits: 7},
			Habits: []*domain.Habit{
				{ID: "h1", Name: "Read", TargetFrequency: 1, CreatedAt: date(2023, time.December, 1), Completions: []time.Time{date(2024, time.January, 9)}},
				{ID: "h2", Name: "Run", TargetFrequency: 2, CreatedAt: date(2023, time.December, 2)},
			},
		}
		repo.On("Load", ctx).Return(stored, nil).Once()

		tracker.Load(ctx)

		p := tracker.Profile()
		assert.Equal(t, "Ada", p.Name)
		assert.Equal(t, 2, p.TotalHabits)
		assert.Equal(t, 1, p.CompletedThisWeek)
		assert.False(t, tracker.NeedsProfile())
	})

	t.Run("Read failure resets to an empty, valid state", func(t *testing.T) {
		tracker, repo, _ := newTracker(t, wednesday)
		repo.On("Save", ctx, mock.Anything).Return(nil)
		_, _ = tracker.AddHabit(ctx, "Stale", "1")

		repo.On("Load", ctx).Return(nil, domain.ErrStoreCorrupt).Once()
		tracker.Load(ctx)

		assert.Empty(t, tracker.ListHabits(domain.FilterAll))
		assert.True(t, tracker.NeedsProfile())
		assert.Equal(t, 0, tracker.Profile().TotalHabits)
	})
}

func TestHabitTracker_ProfileAndClear(t *testing.T) {
	tracker, repo, _ := newTracker(t, wednesday)
	repo.On("Save", ctx, mock.Anything).Return(nil)

	assert.True(t, tracker.NeedsProfile())
	require.NoError(t, tracker.SetProfileName(ctx, "  "))
	assert.Equal(t, domain.AnonymousProfileName, tracker.Profile().Name)

	_, _ = tracker.AddHabit(ctx, "Read", "1")
	require.NoError(t, tracker.ClearAll(ctx))

	assert.Empty(t, tracker.ListHabits(domain.FilterAll))
	assert.Equal(t, 0, tracker.Profile().TotalHabits)
	assert.Equal(t, domain.AnonymousProfileName, tracker.Profile().Name, "clearing habits keeps the profile")
}

func TestHabitTracker_Reminder(t *testing.T) {
	tracker, repo, _ := newTracker(t, wednesday)
	repo.On("Save", ctx, mock.Anything).Return(nil)
	_, _ = tracker.AddHabit(ctx, "Read", "2")

	reminded := make(chan string, 8)
	require.NoError(t, tracker.StartReminder(time.Second, func(h domain.Habit) {
		select {
		case reminded <- h.Name:
		default:
		}
	}))
	require.NoError(t, tracker.StartReminder(time.Second, nil), "already running")

	select {
	case name := <-reminded:
		assert.Equal(t, "Read", name)
	case <-time.After(3 * time.Second):
		t.Fatal("reminder did not fire")
	}

	tracker.StopReminder()
	tracker.StopReminder()
}

func TestParseFrequency(t *testing.T) {
	assert.Equal(t, 4, services.ParseFrequency(" 4 "))
	assert.Equal(t, 1, services.ParseFrequency("four"))
	assert.Equal(t, 1, services.ParseFrequency("0"))
}
