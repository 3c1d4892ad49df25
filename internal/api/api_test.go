package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"

	"learnshop/internal/config"
	"learnshop/internal/domain"
	"learnshop/internal/testutil"
	"learnshop/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// envelope mirrors utils.Envelope with raw data for per-test decoding
type envelope struct {
	Success    bool               `json:"success"`
	Data       json.RawMessage    `json:"data"`
	Errors     []utils.FieldError `json:"errors"`
	Message    string             `json:"message"`
	Pagination *utils.Pagination  `json:"pagination"`
}

type testServer struct {
	t         *testing.T
	router    *gin.Engine
	db        *gorm.DB
	uploadDir string
	admin     domain.User
	user      domain.User
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithRedis(t, nil)
}

func newTestServerWithRedis(t *testing.T, rdb *redis.Client) *testServer {
	t.Helper()
	db := testutil.NewTestDB(t)
	cfg := &config.Config{
		JWTSecret:   testutil.JWTSecret,
		JWTTTLHours: 1,
		UploadDir:   t.TempDir(),
		UploadMaxMB: 1,
		CacheTTLSec: 60,
	}
	return &testServer{
		t:         t,
		router:    SetupRouter(Deps{DB: db, Redis: rdb, Config: cfg, Limiters: NewLimiters(nil)}),
		db:        db,
		uploadDir: cfg.UploadDir,
		admin:     testutil.CreateUser(t, db, "admin@example.com", domain.RoleAdmin),
		user:      testutil.CreateUser(t, db, "user@example.com", domain.RoleUser),
	}
}

// do sends a JSON request, token may be empty
func (s *testServer) do(method, path string, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) adminToken() string {
	return testutil.Token(s.t, s.admin)
}

func (s *testServer) userToken() string {
	return testutil.Token(s.t, s.user)
}

// decode reads the envelope and, when dest is set, its data
func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if dest != nil {
		require.NoError(t, json.Unmarshal(env.Data, dest), w.Body.String())
	}
	return env
}

func fieldNames(errs []utils.FieldError) []string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
