package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-01"`), &d))
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.March, d.Month())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-01"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"01/03/2025"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`null`), &d))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 12, 31, 15, 4, 5, 0, time.UTC)))
	assert.Equal(t, "2024-12-31", d.String())

	require.NoError(t, d.Scan([]byte("2024-01-02")))
	assert.Equal(t, "2024-01-02", d.String())

	require.NoError(t, d.Scan("2024-01-03 00:00:00+00:00"))
	assert.Equal(t, "2024-01-03", d.String())

	assert.Error(t, d.Scan(42))
}

func TestTrip_DurationDays(t *testing.T) {
	start, _ := ParseDate("2025-05-01")
	end, _ := ParseDate("2025-05-08")
	trip := Trip{StartDate: start, EndDate: end}
	assert.Equal(t, 7, trip.DurationDays())
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleTraveler))
	assert.True(t, ValidRole(RoleHRManager))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("superuser"))
}
