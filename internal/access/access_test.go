package access

import (
	"testing"

	"travel_risk/internal/apperr"
	"travel_risk/internal/domain"
	"travel_risk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanManageAll(t *testing.T) {
	assert.False(t, CanManageAll(domain.RoleTraveler))
	assert.True(t, CanManageAll(domain.RoleHRManager))
	assert.True(t, CanManageAll(domain.RoleAdmin))
	assert.False(t, CanManageAll(""))
}

func TestScopeTravelersAndTrips(t *testing.T) {
	db := testutil.OpenInMemoryDB(t)
	alice := testutil.CreateUser(t, db, "alice", domain.RoleTraveler, "password123")
	bob := testutil.CreateUser(t, db, "bob", domain.RoleTraveler, "password123")
	hr := testutil.CreateUser(t, db, "hr", domain.RoleHRManager, "password123")

	aliceTr := testutil.CreateTraveler(t, db, alice)
	bobTr := testutil.CreateTraveler(t, db, bob)
	testutil.CreateTrip(t, db, aliceTr, "Singapore")
	testutil.CreateTrip(t, db, aliceTr, "Japan")
	testutil.CreateTrip(t, db, bobTr, "Kenya")

	var travelers []domain.Traveler
	require.NoError(t, ScopeTravelers(db.Model(&domain.Traveler{}), PrincipalOf(alice)).Find(&travelers).Error)
	require.Len(t, travelers, 1)
	assert.Equal(t, alice.ID, travelers[0].UserID)

	travelers = nil
	require.NoError(t, ScopeTravelers(db.Model(&domain.Traveler{}), PrincipalOf(hr)).Find(&travelers).Error)
	assert.Len(t, travelers, 2)

	var trips []domain.Trip
	require.NoError(t, ScopeTrips(db.Model(&domain.Trip{}), PrincipalOf(alice)).Find(&trips).Error)
	require.Len(t, trips, 2)
	for _, tr := range trips {
		assert.Equal(t, aliceTr.ID, tr.TravelerID)
	}

	trips = nil
	require.NoError(t, ScopeTrips(db.Model(&domain.Trip{}), PrincipalOf(hr)).Find(&trips).Error)
	assert.Len(t, trips, 3)
}

func TestOwnTraveler(t *testing.T) {
	db := testutil.OpenInMemoryDB(t)
	alice := testutil.CreateUser(t, db, "alice", domain.RoleTraveler, "password123")
	bob := testutil.CreateUser(t, db, "bob", domain.RoleTraveler, "password123")
	tr := testutil.CreateTraveler(t, db, alice)

	got, err := OwnTraveler(db, PrincipalOf(alice))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tr.ID, got.ID)

	got, err = OwnTraveler(db, PrincipalOf(bob))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAuthorizeTrip(t *testing.T) {
	trip := &domain.Trip{Traveler: &domain.Traveler{UserID: "owner"}}

	assert.NoError(t, AuthorizeTrip(Principal{UserID: "owner", Role: domain.RoleTraveler}, trip))
	assert.NoError(t, AuthorizeTrip(Principal{UserID: "x", Role: domain.RoleAdmin}, trip))

	err := AuthorizeTrip(Principal{UserID: "other", Role: domain.RoleTraveler}, trip)
	var ae *apperr.AuthorizationError
	assert.ErrorAs(t, err, &ae)
}
