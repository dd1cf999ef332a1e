package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"travel_risk/internal/domain"
	"travel_risk/internal/testutil"
	"travel_risk/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCachedTestEnv backs the router with an in-process Redis
func newCachedTestEnv(t *testing.T) (*testEnv, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return newTestEnvWith(t, testutil.OpenInMemoryDB(t), utils.NewCache(rdb, time.Minute)), mr
}

func (e *testEnv) listTrips(token string) []domain.Trip {
	e.t.Helper()
	w := e.do(http.MethodGet, "/core/trips/", token, nil)
	require.Equal(e.t, http.StatusOK, w.Code)
	return decode[[]domain.Trip](e.t, w)
}

func (e *testEnv) listTravelers(token string) []domain.Traveler {
	e.t.Helper()
	w := e.do(http.MethodGet, "/core/travelers/", token, nil)
	require.Equal(e.t, http.StatusOK, w.Code)
	return decode[[]domain.Traveler](e.t, w)
}

func TestCache_ListsAreServedFromRedis(t *testing.T) {
	env, mr := newCachedTestEnv(t)
	alice := env.user("alice", domain.RoleTraveler)
	profile := env.traveler(alice)
	env.trip(profile, "Japan")
	token := env.tokenFor(alice)

	require.Len(t, env.listTrips(token), 1)
	assert.True(t, mr.Exists("trips:user:"+alice.ID))

	// A row written behind the API's back stays invisible until the key is dropped
	env.trip(profile, "Korea")
	assert.Len(t, env.listTrips(token), 1)
	mr.Del("trips:user:" + alice.ID)
	assert.Len(t, env.listTrips(token), 2)
}

func TestCache_TripCreateByHRInvalidatesOwner(t *testing.T) {
	env, mr := newCachedTestEnv(t)
	hr := env.user("hr", domain.RoleHRManager)
	alice := env.user("alice", domain.RoleTraveler)
	profile := env.traveler(alice)
	aliceToken, hrToken := env.tokenFor(alice), env.tokenFor(hr)

	require.Empty(t, env.listTrips(aliceToken))
	require.Empty(t, env.listTrips(hrToken))
	require.True(t, mr.Exists("trips:all"))

	body := tripBody("Vietnam")
	body["traveler"] = profile.ID
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/core/trips/", hrToken, body).Code)

	assert.Len(t, env.listTrips(aliceToken), 1)
	assert.Len(t, env.listTrips(hrToken), 1)
}

func TestCache_TripReassignInvalidatesBothOwners(t *testing.T) {
	env, _ := newCachedTestEnv(t)
	hr := env.user("hr", domain.RoleHRManager)
	alice := env.user("alice", domain.RoleTraveler)
	bob := env.user("bob", domain.RoleTraveler)
	trip := env.trip(env.traveler(alice), "Turkey")
	bobProfile := env.traveler(bob)
	aliceToken, bobToken := env.tokenFor(alice), env.tokenFor(bob)

	require.Len(t, env.listTrips(aliceToken), 1)
	require.Empty(t, env.listTrips(bobToken))

	w := env.do(http.MethodPatch, fmt.Sprintf("/core/trips/%d/", trip.ID), env.tokenFor(hr), map[string]any{"traveler": bobProfile.ID})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, env.listTrips(aliceToken))
	assert.Len(t, env.listTrips(bobToken), 1)
}

func TestCache_TravelerDeleteInvalidatesTripsAndTravelers(t *testing.T) {
	env, _ := newCachedTestEnv(t)
	hr := env.user("hr", domain.RoleHRManager)
	alice := env.user("alice", domain.RoleTraveler)
	profile := env.traveler(alice)
	env.trip(profile, "Greece")
	hrToken := env.tokenFor(hr)

	require.Len(t, env.listTrips(hrToken), 1)
	require.Len(t, env.listTravelers(hrToken), 1)

	w := env.do(http.MethodDelete, fmt.Sprintf("/core/travelers/%d/", profile.ID), env.tokenFor(alice), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Empty(t, env.listTrips(hrToken))
	assert.Empty(t, env.listTravelers(hrToken))
}

func TestCache_TravelerCreateInvalidatesAll(t *testing.T) {
	env, _ := newCachedTestEnv(t)
	admin := env.user("root", domain.RoleAdmin)
	alice := env.user("alice", domain.RoleTraveler)
	adminToken := env.tokenFor(admin)

	require.Empty(t, env.listTravelers(adminToken))
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/core/travelers/", env.tokenFor(alice), map[string]any{"passport_number": "P1"}).Code)
	assert.Len(t, env.listTravelers(adminToken), 1)
}

func TestCache_RegisterClearsUserPages(t *testing.T) {
	env, mr := newCachedTestEnv(t)
	hr := env.user("hr", domain.RoleHRManager)
	hrToken := env.tokenFor(hr)

	first := decode[UserPage](t, env.do(http.MethodGet, "/user/users", hrToken, nil))
	require.Equal(t, int64(1), first.Total)
	second := decode[UserPage](t, env.do(http.MethodGet, "/user/users", hrToken, nil))
	require.True(t, second.Cached)
	require.NotEmpty(t, mr.Keys())

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/user/register", "", registerBody("newcomer")).Code)

	page := decode[UserPage](t, env.do(http.MethodGet, "/user/users", hrToken, nil))
	assert.False(t, page.Cached)
	assert.Equal(t, int64(2), page.Total)
}
