package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartroute/internal/models"
)

var (
	bakery = models.NewProspectQuery("Bakery", "Downtown", 5)
	stops  = models.NewRouteQuery([]string{"Office", "City Hall"})
)

func mustSelect(t *testing.T, v View) Snapshot {
	t.Helper()
	s, ok := Select(Initial(), v)
	require.True(t, ok)
	return s
}

func TestInitial(t *testing.T) {
	s := Initial()
	assert.Equal(t, ViewHome, s.View)
	assert.Equal(t, StatusIdle, s.Status)
	assert.Nil(t, s.Result)
	assert.Empty(t, s.Error)
}

func TestSelect(t *testing.T) {
	s := mustSelect(t, ViewRoute)
	assert.Equal(t, ViewRoute, s.View)
	assert.Equal(t, StatusIdle, s.Status)

	_, ok := Select(s, ViewProspect)
	assert.False(t, ok, "forms are only reachable from home")

	_, ok = Select(Initial(), ViewHome)
	assert.False(t, ok)
}

func TestParseView(t *testing.T) {
	v, ok := ParseView("prospect")
	assert.True(t, ok)
	assert.Equal(t, ViewProspect, v)

	_, ok = ParseView("home")
	assert.False(t, ok)
	_, ok = ParseView("")
	assert.False(t, ok)
}

func TestSubmit_FromEachStatus(t *testing.T) {
	idle := mustSelect(t, ViewProspect)

	loading, ok := SubmitProspect(idle, bakery)
	require.True(t, ok)
	assert.Equal(t, StatusLoading, loading.Status)
	assert.Equal(t, idle.Seq+1, loading.Seq)
	assert.Equal(t, bakery, loading.Prospect)

	_, ok = SubmitProspect(loading, bakery)
	assert.False(t, ok, "no second submit while loading")

	failed, ok := Fail(loading, loading.Seq, "nope")
	require.True(t, ok)
	again, ok := SubmitProspect(failed, bakery)
	require.True(t, ok)
	assert.Empty(t, again.Error)
	assert.Nil(t, again.Result)

	done, ok := Succeed(again, again.Seq, &models.GenerationResult{Narrative: "x"})
	require.True(t, ok)
	third, ok := SubmitProspect(done, bakery)
	require.True(t, ok)
	assert.Nil(t, third.Result)
	assert.Equal(t, StatusLoading, third.Status)
}

func TestSubmit_WrongView(t *testing.T) {
	_, ok := SubmitProspect(Initial(), bakery)
	assert.False(t, ok)

	_, ok = SubmitRoute(mustSelect(t, ViewProspect), stops)
	assert.False(t, ok)

	_, ok = SubmitProspect(mustSelect(t, ViewRoute), bakery)
	assert.False(t, ok)
}

func TestSubmitRoute_CopiesStops(t *testing.T) {
	q := models.NewRouteQuery([]string{"A", "B"})
	s, ok := SubmitRoute(mustSelect(t, ViewRoute), q)
	require.True(t, ok)
	q.Stops[0] = "mutated"
	assert.Equal(t, []string{"A", "B"}, s.Stops)
}

func TestResolve_IgnoresStaleSeq(t *testing.T) {
	loading, ok := SubmitRoute(mustSelect(t, ViewRoute), stops)
	require.True(t, ok)

	_, ok = Succeed(loading, loading.Seq-1, &models.GenerationResult{})
	assert.False(t, ok)
	_, ok = Fail(loading, loading.Seq+1, "late")
	assert.False(t, ok)
	_, ok = Succeed(loading, loading.Seq, nil)
	assert.False(t, ok)

	home := Back(loading)
	_, ok = Succeed(home, loading.Seq, &models.GenerationResult{Narrative: "late"})
	assert.False(t, ok, "response arriving after back is discarded")
	_, ok = Fail(home, loading.Seq, "late")
	assert.False(t, ok)
}

func TestFail_ClearsResult(t *testing.T) {
	loading, _ := SubmitRoute(mustSelect(t, ViewRoute), stops)
	failed, ok := Fail(loading, loading.Seq, "Failed to optimize the route.")
	require.True(t, ok)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Nil(t, failed.Result)
	assert.Equal(t, "Failed to optimize the route.", failed.Error)
}

func TestBack_TwiceFromAnyStateIsInitial(t *testing.T) {
	loading, _ := SubmitRoute(mustSelect(t, ViewRoute), stops)
	success, _ := Succeed(loading, loading.Seq, &models.GenerationResult{Narrative: "ok"})
	failed, _ := Fail(loading, loading.Seq, "err")

	states := map[string]Snapshot{
		"home":    Initial(),
		"form":    mustSelect(t, ViewProspect),
		"loading": loading,
		"success": success,
		"failed":  failed,
	}

	for name, s := range states {
		t.Run(name, func(t *testing.T) {
			once := Back(s)
			twice := Back(once)
			assert.True(t, once.Equivalent(Initial()))
			assert.True(t, twice.Equivalent(Initial()))
			assert.Nil(t, twice.Result)
			assert.Empty(t, twice.Error)
			assert.Greater(t, twice.Seq, s.Seq)
		})
	}
}
