package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pecunia-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func investmentFetch(calls *atomic.Int32) FetchFunc {
	return func(ctx context.Context, p models.Profile) (models.AnalysisResult, error) {
		calls.Add(1)
		return &models.InvestmentResult{Strategy: "index funds"}, nil
	}
}

func TestAppendMessagePreservesOrder(t *testing.T) {
	s := New(nil)
	for _, body := range []string{"one", "two", "three"} {
		s.AppendMessage(models.NewUserMessage(body, s.Now()))
	}

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "one", msgs[0].Body)
	assert.Equal(t, "three", msgs[2].Body)

	msgs[0].Body = "mutated"
	assert.Equal(t, "one", s.Messages()[0].Body, "Messages returns a copy")
}

func TestSubscribe(t *testing.T) {
	s := New(nil)
	var got []string
	unsubscribe := s.Subscribe(func(m models.Message) {
		// Reading the session from a subscriber must not deadlock.
		_ = s.MessageCount()
		got = append(got, m.Body)
	})

	s.AppendMessage(models.NewUserMessage("a", s.Now()))
	unsubscribe()
	unsubscribe()
	s.AppendMessage(models.NewUserMessage("b", s.Now()))

	assert.Equal(t, []string{"a"}, got)
}

func TestApplyProfilePatchLastWriteWins(t *testing.T) {
	s := New(nil)
	s.ApplyProfilePatch(models.ProfilePatch{Age: intp(29)})
	p := s.ApplyProfilePatch(models.ProfilePatch{Age: intp(30)})

	assert.Equal(t, 30, p.Age)
	assert.Equal(t, 30, s.Profile().Age)
	assert.Equal(t, 6500.0, s.Profile().MonthlyIncome, "untouched fields keep their value")
	assert.Equal(t, uint64(2), s.Generation())
}

func TestApplyProfilePatchInvalidatesInsights(t *testing.T) {
	s := New(nil)
	var calls atomic.Int32
	fetch := investmentFetch(&calls)
	ctx := context.Background()

	_, err := s.GetOrFetchInsight(ctx, models.CategoryInvestmentStrategy, fetch)
	require.NoError(t, err)
	_, err = s.GetOrFetchInsight(ctx, models.CategoryInvestmentStrategy, fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second call is served from cache")

	s.ApplyProfilePatch(models.ProfilePatch{SavingsRate: f64(30)})
	_, ok := s.Insight(models.CategoryInvestmentStrategy)
	assert.False(t, ok)

	_, err = s.GetOrFetchInsight(ctx, models.CategoryInvestmentStrategy, fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetOrFetchInsightUsesProfileSnapshot(t *testing.T) {
	s := New(nil)
	s.ApplyProfilePatch(models.ProfilePatch{Age: intp(41)})

	var seen models.Profile
	_, err := s.GetOrFetchInsight(context.Background(), models.CategoryBudgetOptimization,
		func(ctx context.Context, p models.Profile) (models.AnalysisResult, error) {
			seen = p
			return &models.BudgetResult{}, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 41, seen.Age)
}

func TestGetOrFetchInsightDeduplicatesConcurrentCalls(t *testing.T) {
	s := New(nil)
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context, p models.Profile) (models.AnalysisResult, error) {
		calls.Add(1)
		<-release
		return &models.CompetitiveResult{Insights: "top third"}, nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]models.CachedInsight, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ci, err := s.GetOrFetchInsight(context.Background(), models.CategoryCompetitiveInsights, fetch)
			assert.NoError(t, err)
			results[i] = ci
		}(i)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	// Give the other callers time to join the in-flight fetch.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, ci := range results {
		assert.Equal(t, results[0].Value, ci.Value)
	}
}

func TestGetOrFetchInsightDoesNotCacheStaleResult(t *testing.T) {
	s := New(nil)
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context, p models.Profile) (models.AnalysisResult, error) {
		close(started)
		<-release
		return &models.BudgetResult{Budget: "old"}, nil
	}

	done := make(chan models.CachedInsight)
	go func() {
		ci, _ := s.GetOrFetchInsight(context.Background(), models.CategoryBudgetOptimization, fetch)
		done <- ci
	}()

	<-started
	s.ApplyProfilePatch(models.ProfilePatch{MonthlyIncome: f64(9000)})
	close(release)

	ci := <-done
	assert.Equal(t, "old", ci.Value.(*models.BudgetResult).Budget, "callers still get their result")
	_, ok := s.Insight(models.CategoryBudgetOptimization)
	assert.False(t, ok, "result computed before the patch is not cached")
}

func TestGetOrFetchInsightErrorIsNotCached(t *testing.T) {
	s := New(nil)
	boom := errors.New("backend down")
	_, err := s.GetOrFetchInsight(context.Background(), models.CategoryGoalStrategy,
		func(ctx context.Context, p models.Profile) (models.AnalysisResult, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	_, ok := s.Insight(models.CategoryGoalStrategy)
	assert.False(t, ok)
}

func TestCycleBookkeeping(t *testing.T) {
	s := New(nil)
	assert.False(t, s.Loading())

	require.True(t, s.BeginCycle("first"))
	assert.Equal(t, StateClassifying, s.State())
	assert.True(t, s.Loading())

	assert.False(t, s.BeginCycle("second"))
	assert.False(t, s.BeginCycle("third"))
	assert.Equal(t, 2, s.PendingCount())

	text, ok := s.NextPending()
	require.True(t, ok)
	assert.Equal(t, "second", text)
	text, ok = s.NextPending()
	require.True(t, ok)
	assert.Equal(t, "third", text)

	_, ok = s.NextPending()
	assert.False(t, ok)
	assert.Equal(t, StateIdle, s.State())
	assert.True(t, s.BeginCycle("fourth"))
}

func TestCloseRunsHooksOnce(t *testing.T) {
	s := New(nil)
	var closed []string
	s.OnClose(func(id uuid.UUID) { closed = append(closed, id.String()) })
	var notified int
	s.Subscribe(func(models.Message) { notified++ })

	s.Close()
	s.Close()
	s.AppendMessage(models.NewAssistantMessage("late", s.Now()))

	assert.Equal(t, []string{s.ID().String()}, closed)
	assert.Zero(t, notified)
}

func TestDoneClosedOnClose(t *testing.T) {
	s := New(nil)
	select {
	case <-s.Done():
		t.Fatal("done closed before Close")
	default:
	}

	s.Close()
	s.Close()
	select {
	case <-s.Done():
	default:
		t.Fatal("done still open after Close")
	}
}
