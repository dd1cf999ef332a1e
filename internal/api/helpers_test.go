package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travel_risk/internal/domain"
	"travel_risk/internal/risk"
	"travel_risk/internal/testutil"
	"travel_risk/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func init() {
	// Set Gin to test mode to reduce noise
	gin.SetMode(gin.TestMode)
}

// fakeProvider returns a canned report and records what it was asked
type fakeProvider struct {
	report *domain.RiskReport
	err    error
	calls  int
	last   risk.Request
}

func (f *fakeProvider) Assess(_ context.Context, req risk.Request) (*domain.RiskReport, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	r := *f.report
	return &r, nil
}

func sampleReport() *domain.RiskReport {
	return &domain.RiskReport{
		OverallRiskScore:        35,
		RiskLevel:               domain.RiskMedium,
		PoliticalAndWarRisk:     domain.SubAssessment{RiskLevel: domain.RiskLow, Notes: "Stable."},
		LabourLawAndImmigration: domain.SubAssessment{RiskLevel: domain.RiskMedium, Notes: "Work pass required."},
		HealthAndSafety:         domain.SubAssessment{RiskLevel: domain.RiskLow, Notes: "Good hospitals."},
		KeyRiskFactors:          "Heat and humidity",
		Recommendations:         "Register with the embassy.",
	}
}

type testEnv struct {
	t        *testing.T
	db       *gorm.DB
	router   *gin.Engine
	provider *fakeProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, testutil.OpenInMemoryDB(t), utils.NewCache(nil, time.Minute))
}

// newTestEnvWith builds the router on the given database and cache
func newTestEnvWith(t *testing.T, db *gorm.DB, cache *utils.Cache) *testEnv {
	t.Helper()
	provider := &fakeProvider{report: sampleReport()}
	router := NewRouter(Deps{
		DB:    db,
		Cache: cache,
		Risk:  provider,
		Tokens: TokenSettings{
			Secret:     testSecret,
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
	})
	return &testEnv{t: t, db: db, router: router, provider: provider}
}

// tokenFor returns an access token for user
func (e *testEnv) tokenFor(u *domain.User) string {
	e.t.Helper()
	tok, err := utils.GenerateJWT(u.ID, u.Role, utils.TokenAccess, testSecret, time.Hour)
	require.NoError(e.t, err)
	return tok
}

// do sends a request; body may be nil, a string or any JSON-encodable value
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(e.t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, path, r)
	require.NoError(e.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func (e *testEnv) user(name, role string) *domain.User {
	return testutil.CreateUser(e.t, e.db, name, role, "password123")
}

func (e *testEnv) traveler(u *domain.User) *domain.Traveler {
	return testutil.CreateTraveler(e.t, e.db, u)
}

func (e *testEnv) trip(tr *domain.Traveler, country string) *domain.Trip {
	return testutil.CreateTrip(e.t, e.db, tr, country)
}
