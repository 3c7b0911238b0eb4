package manager

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/reward"
	"github.com/julianstephens/habitreel/internal/sorting"
	"github.com/julianstephens/habitreel/internal/storage/sqlite"
	"github.com/julianstephens/habitreel/internal/utils"
)

// pacific is a fixed UTC-7 zone so tests do not depend on tzdata.
var pacific = time.FixedZone("PDT", -7*3600)

// wednesday is 2025-03-12 09:30 local.
var wednesday = time.Date(2025, 3, 12, 9, 30, 0, 0, pacific)

type stubProvider struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *stubProvider) RandomPhoto(_ context.Context, seed int64) (*models.PhotoReward, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &models.PhotoReward{ID: "photo", URL: "https://photos.example.com/p.jpg", Width: 640, Height: 480}, nil
}

func (p *stubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func setupManager(t *testing.T, provider reward.Provider) (*Manager, *sqlite.Store, *utils.FixedClock) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var rewards *reward.Service
	if provider != nil {
		rewards = reward.NewService(provider, reward.NewCache(store), 2)
	}
	clock := utils.NewFixedClock(wednesday)
	return New(store, rewards, clock, pacific), store, clock
}

func mwfInput(name string) HabitInput {
	return HabitInput{
		Name:      name,
		Frequency: []string{"Fri", "mon", "wednesday"},
		StartDate: "2025-03-01",
	}
}

func TestCreateDefaults(t *testing.T) {
	m, store, _ := setupManager(t, nil)

	h, err := m.Create(HabitInput{Name: "  Stretch ", Frequency: []string{"weekdays"}})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if h.ID == "" {
		t.Error("expected an id")
	}
	if h.Name != "Stretch" {
		t.Errorf("Name = %q, want Stretch", h.Name)
	}
	if h.StartDate != "2025-03-12" {
		t.Errorf("StartDate = %q, want today in the user's zone", h.StartDate)
	}
	if h.TimeOfDay != constants.TimeOfDayAnytime {
		t.Errorf("TimeOfDay = %q, want anytime", h.TimeOfDay)
	}
	if !h.Active {
		t.Error("new habits should be active")
	}
	want := []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
	if diff := cmp.Diff(want, h.Frequency); diff != "" {
		t.Errorf("Frequency mismatch (-want +got):\n%s", diff)
	}

	stored, err := store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if !stored.CreatedAt.Equal(wednesday) {
		t.Errorf("CreatedAt = %v, want %v", stored.CreatedAt, wednesday)
	}
}

func TestCreateValidation(t *testing.T) {
	m, _, _ := setupManager(t, nil)

	tests := []struct {
		name string
		in   HabitInput
	}{
		{"empty name", HabitInput{Name: " ", Frequency: []string{"monday"}}},
		{"empty frequency", HabitInput{Name: "Read"}},
		{"blank frequency entries", HabitInput{Name: "Read", Frequency: []string{"", " "}}},
		{"unknown weekday", HabitInput{Name: "Read", Frequency: []string{"someday"}}},
		{"bad start date", HabitInput{Name: "Read", Frequency: []string{"monday"}, StartDate: "03/01/2025"}},
		{"bad time of day", HabitInput{Name: "Read", Frequency: []string{"monday"}, TimeOfDay: "midnight"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Create(tt.in)
			if !errors.Is(err, models.ErrInvalidHabit) {
				t.Errorf("Create() error = %v, want ErrInvalidHabit", err)
			}
		})
	}
}

func TestCreateDuplicateName(t *testing.T) {
	m, _, _ := setupManager(t, nil)
	if _, err := m.Create(mwfInput("Stretch")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := m.Create(mwfInput("stretch")); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Create() error = %v, want ErrDuplicateName", err)
	}
}

func TestGetByIDOrName(t *testing.T) {
	m, _, _ := setupManager(t, nil)
	h, err := m.Create(mwfInput("Stretch"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for _, ref := range []string{h.ID, "Stretch", "STRETCH"} {
		got, err := m.Get(ref)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", ref, err)
		}
		if got.ID != h.ID {
			t.Errorf("Get(%q) = %s, want %s", ref, got.ID, h.ID)
		}
	}
	if _, err := m.Get("missing"); !IsNotFound(err) {
		t.Errorf("Get(missing) error = %v, want not found", err)
	}
}

func TestToggle(t *testing.T) {
	m, store, _ := setupManager(t, nil)
	h, err := m.Create(mwfInput("Stretch"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	ctx := context.Background()

	res, err := m.Toggle(ctx, h.ID, wednesday)
	if err != nil {
		t.Fatalf("Toggle today failed: %v", err)
	}
	if !res.Completed || res.Day != "2025-03-12" || res.Habit.Streak != 1 {
		t.Errorf("Toggle today = %+v, want completed 2025-03-12 with streak 1", res)
	}

	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, pacific)
	res, err = m.Toggle(ctx, h.Name, monday)
	if err != nil {
		t.Fatalf("Toggle monday failed: %v", err)
	}
	if !res.Completed || res.Habit.Streak != 2 {
		t.Errorf("Toggle monday = %+v, want completed with streak 2", res)
	}

	stored, err := store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	// Ledger order is insertion order.
	want := []string{"2025-03-12T16:30:00Z", "2025-03-10T19:00:00Z"}
	if diff := cmp.Diff(want, stored.CompletedDates); diff != "" {
		t.Errorf("CompletedDates mismatch (-want +got):\n%s", diff)
	}
	if stored.Streak != 2 {
		t.Errorf("stored Streak = %d, want 2", stored.Streak)
	}

	// Undoing today leaves today open, which does not break the streak.
	res, err = m.Toggle(ctx, h.ID, wednesday.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Toggle undo failed: %v", err)
	}
	if res.Completed || res.Habit.Streak != 1 {
		t.Errorf("Toggle undo = %+v, want not completed with streak 1", res)
	}
	stored, err = store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if diff := cmp.Diff([]string{"2025-03-10T19:00:00Z"}, stored.CompletedDates); diff != "" {
		t.Errorf("CompletedDates after undo mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleRemovesEveryEntryOnTheDay(t *testing.T) {
	m, store, _ := setupManager(t, nil)
	h, err := m.Create(mwfInput("Stretch"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// Two completions on the same local day, one of them after UTC midnight.
	for _, ts := range []string{"2025-03-12T15:00:00Z", "2025-03-13T05:00:00Z"} {
		if err := store.AddCompletion(h.ID, ts); err != nil {
			t.Fatalf("AddCompletion failed: %v", err)
		}
	}

	res, err := m.Toggle(context.Background(), h.ID, wednesday)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if res.Completed {
		t.Error("toggle on a completed day should undo it")
	}
	got, err := store.GetCompletions(h.ID)
	if err != nil {
		t.Fatalf("GetCompletions failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("completions left = %v, want none", got)
	}
}

func TestToggleFutureDay(t *testing.T) {
	m, _, _ := setupManager(t, nil)
	h, err := m.Create(mwfInput("Stretch"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err = m.Toggle(context.Background(), h.ID, wednesday.AddDate(0, 0, 1))
	if !errors.Is(err, ErrFutureDay) {
		t.Errorf("Toggle() error = %v, want ErrFutureDay", err)
	}
}

func TestToggleUnlocksReward(t *testing.T) {
	provider := &stubProvider{}
	m, _, _ := setupManager(t, provider)
	in := mwfInput("Stretch")
	in.RewardEnabled = true
	h, err := m.Create(in)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	ctx := context.Background()

	res, err := m.Toggle(ctx, h.ID, wednesday)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if res.Reward == nil || res.Reward.ID != "photo" {
		t.Fatalf("Reward = %+v, want the unlocked photo", res.Reward)
	}

	ev := m.Evaluator()
	st := m.Status(ev, res.Habit)
	if st.Reward == nil || st.Revealed {
		t.Errorf("Status = %+v, want an unrevealed reward", st)
	}
	if _, err := m.Reveal(ev, h.ID); err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	if _, _, revealed, _ := m.Reward(ev, h.ID); !revealed {
		t.Error("reward should be revealed")
	}

	if _, err := m.Toggle(ctx, h.ID, wednesday); err != nil {
		t.Fatalf("Toggle undo failed: %v", err)
	}
	if _, photo, _, _ := m.Reward(ev, h.ID); photo != nil {
		t.Errorf("reward should be forgotten after undo, got %+v", photo)
	}

	// Past days never unlock.
	if _, err := m.Toggle(ctx, h.ID, wednesday.AddDate(0, 0, -2)); err != nil {
		t.Fatalf("Toggle monday failed: %v", err)
	}
	if provider.Calls() != 1 {
		t.Errorf("provider calls = %d, want 1", provider.Calls())
	}
}

func TestRecordToggleLeavesRewardToUnlock(t *testing.T) {
	provider := &stubProvider{}
	m, _, _ := setupManager(t, provider)
	in := mwfInput("Stretch")
	in.RewardEnabled = true
	h, err := m.Create(in)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	res, err := m.RecordToggle(h.ID, wednesday)
	if err != nil {
		t.Fatalf("RecordToggle failed: %v", err)
	}
	if !res.Completed || res.Reward != nil {
		t.Fatalf("RecordToggle() = completed %v reward %v, want completed without reward", res.Completed, res.Reward)
	}
	if provider.Calls() != 0 {
		t.Fatalf("provider calls after RecordToggle = %d, want 0", provider.Calls())
	}

	m.UnlockReward(context.Background(), res)
	if res.Reward == nil {
		t.Fatal("UnlockReward() left Reward nil")
	}
	if provider.Calls() != 1 {
		t.Errorf("provider calls = %d, want 1", provider.Calls())
	}

	// Undoing today is storage only and never unlocks.
	res, err = m.RecordToggle(h.ID, wednesday)
	if err != nil {
		t.Fatalf("RecordToggle undo failed: %v", err)
	}
	m.UnlockReward(context.Background(), res)
	if res.Completed || res.Reward != nil || provider.Calls() != 1 {
		t.Errorf("undo = completed %v reward %v calls %d", res.Completed, res.Reward, provider.Calls())
	}
}

func TestToggleSurvivesRewardFailure(t *testing.T) {
	m, _, _ := setupManager(t, &stubProvider{err: errors.New("provider down")})
	in := mwfInput("Stretch")
	in.RewardEnabled = true
	h, err := m.Create(in)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	res, err := m.Toggle(context.Background(), h.ID, wednesday)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !res.Completed || res.Reward != nil {
		t.Errorf("Toggle = %+v, want completed without reward", res)
	}
	if _, err := m.Reveal(m.Evaluator(), h.ID); !errors.Is(err, ErrNoReward) {
		t.Errorf("Reveal() error = %v, want ErrNoReward", err)
	}
}

func TestUpdate(t *testing.T) {
	m, _, _ := setupManager(t, nil)
	h, err := m.Create(mwfInput("Stretch"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := m.Create(mwfInput("Read")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	name := "Morning stretch"
	tod := constants.TimeOfDayMorning
	got, err := m.Update(h.ID, HabitPatch{Name: &name, TimeOfDay: &tod, Frequency: []string{"daily"}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Name != name || got.TimeOfDay != tod || len(got.Frequency) != 7 {
		t.Errorf("Update = %+v", got)
	}

	taken := "read"
	if _, err := m.Update(h.ID, HabitPatch{Name: &taken}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("rename onto existing name: error = %v, want ErrDuplicateName", err)
	}
	if _, err := m.Update(h.ID, HabitPatch{Frequency: []string{}}); !errors.Is(err, models.ErrInvalidHabit) {
		t.Errorf("empty frequency: error = %v, want ErrInvalidHabit", err)
	}
	if _, err := m.Update(h.ID, HabitPatch{Name: &name}); err != nil {
		t.Errorf("renaming to its own name should succeed: %v", err)
	}
}

func TestDeleteAndRestore(t *testing.T) {
	m, _, _ := setupManager(t, nil)
	h, err := m.Create(mwfInput("Stretch"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := m.Delete("stretch"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Get(h.ID); !IsNotFound(err) {
		t.Errorf("Get after delete error = %v, want not found", err)
	}

	restored, err := m.Restore("Stretch")
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.ID != h.ID || restored.IsDeleted() {
		t.Errorf("Restore = %+v", restored)
	}
	if _, err := m.Restore("Stretch"); !IsNotFound(err) {
		t.Errorf("restoring a live habit: error = %v, want not found", err)
	}
}

func TestRestoreBlockedByNameReuse(t *testing.T) {
	m, _, _ := setupManager(t, nil)
	h, err := m.Create(mwfInput("Stretch"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := m.Delete(h.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Create(mwfInput("Stretch")); err != nil {
		t.Fatalf("Create replacement failed: %v", err)
	}
	if _, err := m.Restore(h.ID); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Restore() error = %v, want ErrDuplicateName", err)
	}
}

func TestSortPreference(t *testing.T) {
	m, _, _ := setupManager(t, nil)
	if got := m.SortPreference(); got != sorting.Default {
		t.Errorf("SortPreference() = %q, want default", got)
	}

	low, err := m.Create(mwfInput("Low"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	high, err := m.Create(mwfInput("High"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	ctx := context.Background()
	for _, d := range []int{0, -2, -5} {
		if _, err := m.Toggle(ctx, high.ID, wednesday.AddDate(0, 0, d)); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
	}

	m.SetSortPreference(sorting.Streak)
	if got := m.SortPreference(); got != sorting.Streak {
		t.Errorf("SortPreference() = %q, want streak", got)
	}

	habits, err := m.List(m.Evaluator(), Filter{}, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(habits) != 2 || habits[0].ID != high.ID || habits[1].ID != low.ID {
		t.Errorf("List order = %v, want High then Low", names(habits))
	}

	habits, err = m.List(m.Evaluator(), Filter{}, sorting.Alphabetical)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if diff := cmp.Diff([]string{"High", "Low"}, names(habits)); diff != "" {
		t.Errorf("alphabetical order mismatch (-want +got):\n%s", diff)
	}
}

func TestPrefetchRewardsOnlyForCompletedToday(t *testing.T) {
	provider := &stubProvider{}
	m, store, _ := setupManager(t, provider)

	in := mwfInput("Read")
	in.RewardEnabled = true
	done, err := m.Create(in)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	in.Name = "Walk"
	pending, err := m.Create(in)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// Recorded without Toggle, as after a restart or an import.
	if err := store.AddCompletion(done.ID, "2025-03-12T16:00:00Z"); err != nil {
		t.Fatal(err)
	}

	if err := m.PrefetchRewards(context.Background()); err != nil {
		t.Fatalf("PrefetchRewards failed: %v", err)
	}
	if provider.Calls() != 1 {
		t.Errorf("provider calls = %d, want 1", provider.Calls())
	}
	if _, photo, _, err := m.Reward(m.Evaluator(), done.ID); err != nil || photo == nil {
		t.Errorf("Reward(done) = %v, %v, want a photo", photo, err)
	}
	if _, photo, _, err := m.Reward(m.Evaluator(), pending.ID); err != nil || photo != nil {
		t.Errorf("Reward(pending) = %v, %v, want none", photo, err)
	}

	// Cached rewards are not fetched again.
	if err := m.PrefetchRewards(context.Background()); err != nil {
		t.Fatal(err)
	}
	if provider.Calls() != 1 {
		t.Errorf("provider calls after second prefetch = %d, want 1", provider.Calls())
	}
}

// readOnlyPrefs fails every preference write.
type readOnlyPrefs struct {
	*sqlite.Store
}

func (readOnlyPrefs) SetPreference(key, value string) error {
	return errors.New("disk full")
}

func TestSortPreferenceKeptWhenWriteFails(t *testing.T) {
	_, store, clock := setupManager(t, nil)
	if err := store.SetPreference(constants.PrefSortPreference, string(sorting.Alphabetical)); err != nil {
		t.Fatal(err)
	}
	m := New(readOnlyPrefs{store}, nil, clock, pacific)
	if got := m.SortPreference(); got != sorting.Alphabetical {
		t.Fatalf("SortPreference() = %q, want the stored alphabetical", got)
	}

	m.SetSortPreference(sorting.Streak)
	if got := m.SortPreference(); got != sorting.Streak {
		t.Errorf("after a failed write SortPreference() = %q, want streak", got)
	}
	stored, err := store.GetPreference(constants.PrefSortPreference)
	if err != nil {
		t.Fatal(err)
	}
	if stored != string(sorting.Alphabetical) {
		t.Errorf("stored preference = %q, want it untouched", stored)
	}
}

func TestSortPreferenceMirroredIntoSettings(t *testing.T) {
	m, store, clock := setupManager(t, nil)

	m.SetSortPreference(sorting.CompletionRate)
	settings, err := store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if settings.SortPreference != string(sorting.CompletionRate) {
		t.Errorf("settings sort = %q, want completion_rate", settings.SortPreference)
	}

	// A fresh manager reads the key back.
	fresh := New(store, nil, clock, pacific)
	if got := fresh.SortPreference(); got != sorting.CompletionRate {
		t.Errorf("SortPreference() = %q, want completion_rate", got)
	}
}

func TestRecomputeStreaks(t *testing.T) {
	m, store, clock := setupManager(t, nil)
	h, err := m.Create(mwfInput("Stretch"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := m.Toggle(context.Background(), h.ID, wednesday); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	// Friday passes without a completion.
	clock.Set(time.Date(2025, 3, 15, 10, 0, 0, 0, pacific))
	changed, err := m.RecomputeStreaks()
	if err != nil {
		t.Fatalf("RecomputeStreaks failed: %v", err)
	}
	if changed != 1 {
		t.Errorf("changed = %d, want 1", changed)
	}
	stored, err := store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if stored.Streak != 0 {
		t.Errorf("Streak = %d, want 0", stored.Streak)
	}
}

func TestWeeklyReportAndHistory(t *testing.T) {
	m, _, _ := setupManager(t, nil)
	h, err := m.Create(mwfInput("Stretch"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	ctx := context.Background()
	for _, d := range []int{0, -2} {
		if _, err := m.Toggle(ctx, h.ID, wednesday.AddDate(0, 0, d)); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
	}

	ev := m.Evaluator()
	report, err := m.WeeklyReport(ev)
	if err != nil {
		t.Fatalf("WeeklyReport failed: %v", err)
	}
	if report.StartDate != "2025-03-09" || report.EndDate != "2025-03-15" {
		t.Errorf("report window = %s..%s", report.StartDate, report.EndDate)
	}
	if len(report.PerHabit) != 1 || report.PerHabit[0].CompletedDays != 2 || report.PerHabit[0].DueDays != 3 {
		t.Errorf("PerHabit = %+v", report.PerHabit)
	}

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, pacific)
	_, records, err := m.History(ev, "Stretch", start, wednesday)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	done := 0
	for _, r := range records {
		if r.Completed {
			done++
		}
	}
	if len(records) != 3 || done != 2 {
		t.Errorf("History = %+v, want 3 days with 2 completed", records)
	}
}

func names(habits []models.Habit) []string {
	out := make([]string, len(habits))
	for i, h := range habits {
		out[i] = h.Name
	}
	return out
}
