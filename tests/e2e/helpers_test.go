//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkravets/gearlog-backend/internal/adapter/postgres"
	activityrepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/activity"
	attachmentrepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/attachment"
	gearrepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/gear"
	partrepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/part"
	servicerepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/service"
	"github.com/mkravets/gearlog-backend/internal/adapter/postgres/testhelper"
	usagerepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/usage"
	userrepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/user"
	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/config"
	"github.com/mkravets/gearlog-backend/internal/service/activities"
	"github.com/mkravets/gearlog-backend/internal/service/gears"
	"github.com/mkravets/gearlog-backend/internal/service/maintenance"
	"github.com/mkravets/gearlog-backend/internal/service/parts"
	"github.com/mkravets/gearlog-backend/internal/service/timeline"
	usagesvc "github.com/mkravets/gearlog-backend/internal/service/usage"
	"github.com/mkravets/gearlog-backend/internal/service/users"
	"github.com/mkravets/gearlog-backend/internal/transport/rest"
)

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	jwt    *auth.JWTManager
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// setupTestServer bootstraps the full application stack backed by a real
// PostgreSQL container (shared via testhelper).
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)

	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)

	activityRepo := activityrepo.New(pool)
	attachmentRepo := attachmentrepo.New(pool)
	gearRepo := gearrepo.New(pool)
	partRepo := partrepo.New(pool)
	serviceRepo := servicerepo.New(pool)
	aggregateRepo := usagerepo.New(pool)
	userRepo := userrepo.New(pool)

	jwtMgr := auth.NewJWTManager("test-secret-at-least-32-chars-long!!", "test-issuer", 15*time.Minute)

	authCfg := config.AuthConfig{
		JWTSecret:      "test-secret-at-least-32-chars-long!!",
		JWTIssuer:      "test-issuer",
		AccessTokenTTL: 15 * time.Minute,
		BcryptCost:     bcrypt.MinCost,
	}

	userService := users.NewService(logger, userRepo, jwtMgr, authCfg)
	gearService := gears.NewService(logger, gearRepo)
	partService := parts.NewService(logger, partRepo, attachmentRepo)
	usageService := usagesvc.NewService(
		logger, aggregateRepo, attachmentRepo, activityRepo, partRepo, txm,
		config.UsageConfig{RecomputeRetries: 3},
	)
	timelineService := timeline.NewService(logger, partRepo, gearRepo, attachmentRepo, usageService, txm)
	activityService := activities.NewService(logger, activityRepo, gearRepo, usageService, txm)
	maintenanceService := maintenance.NewService(logger, serviceRepo, partRepo, usageService)

	handler := rest.NewRouter(rest.Handlers{
		Auth:        rest.NewAuthHandler(userService, logger),
		Gears:       rest.NewGearHandler(gearService, logger),
		Parts:       rest.NewPartHandler(partService, logger),
		Attachments: rest.NewAttachmentHandler(timelineService, logger),
		Activities:  rest.NewActivityHandler(activityService, logger),
		Usage:       rest.NewUsageHandler(usageService, logger),
		Maintenance: rest.NewMaintenanceHandler(maintenanceService, logger),
		Health:      rest.NewHealthHandler(pool, "e2e-test"),
	}, rest.RouterDeps{
		TokenValidator: jwtMgr,
		CORS: config.CORSConfig{
			AllowedOrigins:   "*",
			AllowedMethods:   "GET,POST,PATCH,DELETE,OPTIONS",
			AllowedHeaders:   "Authorization,Content-Type",
			AllowCredentials: true,
			MaxAge:           86400,
		},
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
		jwt:    jwtMgr,
	}
}

// do sends a JSON request, decodes the response body into out (when out is
// non-nil and the body is non-empty) and returns the status code.
func (ts *testServer) do(t *testing.T, method, path string, body any, token string, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// ---------------------------------------------------------------------------
// Wire DTOs used by the scenarios. Mirrors of the server's JSON shapes.
// ---------------------------------------------------------------------------

type userDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginDTO struct {
	AccessToken string  `json:"accessToken"`
	User        userDTO `json:"user"`
}

type gearDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type partDTO struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	RetiredAt *time.Time `json:"retiredAt"`
}

type attachmentDTO struct {
	ID       string     `json:"id"`
	PartID   string     `json:"partId"`
	GearID   string     `json:"gearId"`
	Position string     `json:"position"`
	StartAt  time.Time  `json:"startAt"`
	EndAt    *time.Time `json:"endAt"`
}

type activityDTO struct {
	ID          string    `json:"id"`
	GearID      string    `json:"gearId"`
	Name        string    `json:"name"`
	StartAt     time.Time `json:"startAt"`
	DurationS   int64     `json:"durationS"`
	DistanceM   int64     `json:"distanceM"`
	ElevationM  int64     `json:"elevationM"`
	MovingTimeS int64     `json:"movingTimeS"`
}

type activityListDTO struct {
	Items []activityDTO `json:"items"`
	Total int           `json:"total"`
}

type usageDTO struct {
	PartID        string    `json:"partId"`
	DistanceM     int64     `json:"distanceM"`
	ElevationM    int64     `json:"elevationM"`
	MovingTimeS   int64     `json:"movingTimeS"`
	ActivityCount int64     `json:"activityCount"`
	RecomputedAt  time.Time `json:"recomputedAt"`
}

type planDTO struct {
	ID        string  `json:"id"`
	PartID    *string `json:"partId"`
	Category  *string `json:"category"`
	Name      string  `json:"name"`
	Metric    string  `json:"metric"`
	Threshold int64   `json:"threshold"`
	Recurring bool    `json:"recurring"`
}

type eventDTO struct {
	ID          string    `json:"id"`
	PartID      string    `json:"partId"`
	PlanID      *string   `json:"planId"`
	PerformedAt time.Time `json:"performedAt"`
	Note        string    `json:"note"`
}

type statusDTO struct {
	Plan           planDTO    `json:"plan"`
	State          string     `json:"state"`
	SinceBaseline  int64      `json:"sinceBaseline"`
	Margin         int64      `json:"margin"`
	LastServicedAt *time.Time `json:"lastServicedAt"`
}

// ---------------------------------------------------------------------------
// Scenario-building helpers.
// ---------------------------------------------------------------------------

// registerAndLogin creates a fresh user through the API and returns an access
// token plus the user's ID.
func registerAndLogin(t *testing.T, ts *testServer) (string, uuid.UUID) {
	t.Helper()

	email := fmt.Sprintf("rider-%s@example.com", uuid.New().String()[:8])
	password := "correct-horse-battery"

	var registered userDTO
	if status := ts.do(t, http.MethodPost, "/auth/register", map[string]any{
		"email":    email,
		"name":     "Test Rider",
		"password": password,
	}, "", &registered); status != http.StatusCreated {
		t.Fatalf("register: status = %d", status)
	}

	var login loginDTO
	if status := ts.do(t, http.MethodPost, "/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, "", &login); status != http.StatusOK {
		t.Fatalf("login: status = %d", status)
	}

	userID, err := uuid.Parse(login.User.ID)
	if err != nil {
		t.Fatalf("parse user id %q: %v", login.User.ID, err)
	}
	return login.AccessToken, userID
}

func createGear(t *testing.T, ts *testServer, token, name string) gearDTO {
	t.Helper()

	var gear gearDTO
	if status := ts.do(t, http.MethodPost, "/gears", map[string]any{
		"name": name,
		"kind": "BIKE",
	}, token, &gear); status != http.StatusCreated {
		t.Fatalf("create gear: status = %d", status)
	}
	return gear
}

func createPart(t *testing.T, ts *testServer, token, name, category string) partDTO {
	t.Helper()

	var part partDTO
	if status := ts.do(t, http.MethodPost, "/parts", map[string]any{
		"name":     name,
		"category": category,
	}, token, &part); status != http.StatusCreated {
		t.Fatalf("create part: status = %d", status)
	}
	return part
}

func attachPart(t *testing.T, ts *testServer, token, partID, gearID, position string, start time.Time) attachmentDTO {
	t.Helper()

	var att attachmentDTO
	if status := ts.do(t, http.MethodPost, "/attachments", map[string]any{
		"partId":   partID,
		"gearId":   gearID,
		"position": position,
		"startAt":  start,
	}, token, &att); status != http.StatusCreated {
		t.Fatalf("attach: status = %d", status)
	}
	return att
}

func recordActivity(t *testing.T, ts *testServer, token, gearID string, start time.Time, durationS, distanceM, elevationM, movingTimeS int64) activityDTO {
	t.Helper()

	var act activityDTO
	if status := ts.do(t, http.MethodPost, "/activities", map[string]any{
		"gearId":      gearID,
		"name":        "Ride",
		"startAt":     start,
		"durationS":   durationS,
		"distanceM":   distanceM,
		"elevationM":  elevationM,
		"movingTimeS": movingTimeS,
	}, token, &act); status != http.StatusCreated {
		t.Fatalf("record activity: status = %d", status)
	}
	return act
}

func getUsage(t *testing.T, ts *testServer, token, partID string) usageDTO {
	t.Helper()

	var u usageDTO
	if status := ts.do(t, http.MethodGet, "/parts/"+partID+"/usage", nil, token, &u); status != http.StatusOK {
		t.Fatalf("get usage: status = %d", status)
	}
	return u
}
