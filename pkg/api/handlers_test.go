package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sqlkit/paginate/pkg/auth"
	"github.com/sqlkit/paginate/pkg/config"
	"github.com/sqlkit/paginate/pkg/database"
	"github.com/sqlkit/paginate/pkg/database/models"
	"github.com/sqlkit/paginate/pkg/paginate"
)

func setupTestServer(t *testing.T) (*Server, *database.DB) {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&models.User{}))

	db := &database.DB{DB: gormDB}
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenExpiry = time.Hour
	cfg.Log.Level = "error"

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	server := NewServer(cfg, db, jwtManager, zap.NewNop())
	// The assembled statements run against sqlite in these tests.
	server.dialect = paginate.SQLite{}
	return server, db
}

func seedUser(t *testing.T, db *database.DB, firstName, email, password string, confirmed bool) models.User {
	user := models.User{FirstName: firstName, LastName: "Tester", Email: email, Confirmed: confirmed}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, db.DB.Create(&user).Error)
	return user
}

func bearerToken(t *testing.T, server *Server, user models.User) string {
	token, err := server.jwtManager.Generate(user.ID, user.Email)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealthz(t *testing.T) {
	server, _ := setupTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	server.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Database)
}

func TestCreateSession(t *testing.T) {
	server, db := setupTestServer(t)
	seedUser(t, db, "Ada", "ada@example.com", "correct horse", true)

	t.Run("valid credentials", func(t *testing.T) {
		body, _ := json.Marshal(CreateSessionRequest{Email: "ada@example.com", Password: "correct horse"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		server.GetRouter().ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp CreateSessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Contains(t, w.Header().Get("Authorization"), "Bearer ")
	})

	t.Run("wrong password", func(t *testing.T) {
		body, _ := json.Marshal(CreateSessionRequest{Email: "ada@example.com", Password: "wrong"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		body, _ := json.Marshal(CreateSessionRequest{Email: "nobody@example.com", Password: "x"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		server.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListUsersRequiresAuth(t *testing.T) {
	server, _ := setupTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	server.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUsers(t *testing.T) {
	server, db := setupTestServer(t)
	caller := seedUser(t, db, "Ada", "ada@example.com", "pw", true)
	seedUser(t, db, "John", "john@example.com", "pw", true)
	seedUser(t, db, "Johanna", "johanna@example.com", "pw", false)
	token := bearerToken(t, server, caller)

	listUsers := func(t *testing.T, query string) paginate.Page[models.User] {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users"+query, nil)
		req.Header.Set("Authorization", token)
		server.GetRouter().ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var page paginate.Page[models.User]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		return page
	}

	t.Run("default listing", func(t *testing.T) {
		page := listUsers(t, "")
		assert.Len(t, page.Records, 3)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, paginate.MinPageSize, page.PageSize)
		require.NotNil(t, page.Total)
		assert.Equal(t, int64(3), *page.Total)
	})

	t.Run("search", func(t *testing.T) {
		page := listUsers(t, "?search=joh&search_columns=first_name,last_name")
		assert.Len(t, page.Records, 2)
	})

	t.Run("dynamic filter", func(t *testing.T) {
		page := listUsers(t, "?confirmed=false")
		require.Len(t, page.Records, 1)
		assert.Equal(t, "Johanna", page.Records[0].FirstName)
	})

	t.Run("hostile parameters degrade instead of failing", func(t *testing.T) {
		page := listUsers(t, "?page=banana&page_size=9999&sort_column=users;DROP%20TABLE&bogus_column=x")
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, paginate.MaxPageSize, page.PageSize)
		assert.Len(t, page.Records, 3)
	})

	t.Run("totals disabled", func(t *testing.T) {
		page := listUsers(t, "?totals=false")
		assert.Nil(t, page.Total)
		assert.Nil(t, page.TotalPages)
	})

	t.Run("password hash never serialized", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", token)
		server.GetRouter().ServeHTTP(w, req)
		assert.NotContains(t, w.Body.String(), "password")
		assert.NotContains(t, w.Body.String(), "$2a$")
	})
}
