package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/tulendi/cafe-directory/internal/audit"
	"github.com/tulendi/cafe-directory/internal/handler"
	"github.com/tulendi/cafe-directory/internal/middleware"
	"github.com/tulendi/cafe-directory/internal/models"
	"github.com/tulendi/cafe-directory/internal/repository"
	"github.com/tulendi/cafe-directory/internal/service"
	"github.com/tulendi/cafe-directory/internal/session"
	"github.com/tulendi/cafe-directory/internal/testutil"
	"github.com/tulendi/cafe-directory/internal/utils"
	"github.com/tulendi/cafe-directory/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// AdminHandlerIntegrationTestSuite covers the admin gate and the
// admin-only mutations end to end, cookies included.
type AdminHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB    *testutil.TestDatabase
	testRedis *testutil.TestRedis
	sessions  *session.Store
	trail     *audit.Trail
	userRepo  *repository.UserRepository
	router    *gin.Engine
	admin     *models.User
	regular   *models.User
}

// SetupSuite runs before all tests
func (s *AdminHandlerIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.testRedis = testutil.SetupTestRedis(s.T())

	sessions, err := session.NewStore(s.testRedis.URL, 1*time.Hour)
	assert.NoError(s.T(), err)
	s.sessions = sessions

	trail, err := audit.Open(filepath.Join(s.T().TempDir(), "audit.log"))
	assert.NoError(s.T(), err)
	s.trail = trail

	s.userRepo = repository.NewUserRepository(s.testDB.DB)
	cafeRepo := repository.NewCafeRepository(s.testDB.DB)
	authService := service.NewAuthService(s.userRepo, s.trail, "siisi321")
	cafeService := service.NewCafeService(cafeRepo, s.trail)
	adminHandler := handler.NewAdminHandler(cafeService, authService, s.trail)

	s.router = gin.New()
	s.router.Use(middleware.Session(s.sessions, s.userRepo, testSessionSecret))

	admin := s.router.Group("/")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/add", adminHandler.AddCafe)
		admin.POST("/add", adminHandler.AddCafe)
		admin.GET("/update-price/:id", adminHandler.UpdatePrice)
		admin.POST("/update-price/:id", adminHandler.UpdatePrice)
		admin.PATCH("/update-price/:id", adminHandler.UpdatePrice)
		admin.GET("/delete-cafe", adminHandler.DeleteCafe)
		admin.POST("/delete-cafe", adminHandler.DeleteCafe)
		admin.GET("/delete-user", adminHandler.DeleteUser)
		admin.POST("/delete-user", adminHandler.DeleteUser)
		admin.GET("/admin/audit", adminHandler.AuditLog)
	}
}

// TearDownSuite runs after all tests
func (s *AdminHandlerIntegrationTestSuite) TearDownSuite() {
	s.trail.Close()
	s.sessions.Close()
	s.testRedis.Teardown(s.T())
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test (clean database, fresh users)
func (s *AdminHandlerIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	admin, err := testutil.DefaultAdminUser()
	assert.NoError(s.T(), err)
	s.testDB.DB.Create(admin)
	s.admin = admin

	regular, err := testutil.DefaultTestUser()
	assert.NoError(s.T(), err)
	s.testDB.DB.Create(regular)
	s.regular = regular
}

// loginCookie creates a server-side session for the user and wraps its
// id in a signed cookie, the same shape the login handler issues.
func (s *AdminHandlerIntegrationTestSuite) loginCookie(user *models.User) *http.Cookie {
	sessionID, err := s.sessions.Create(s.T().Context(), user.ID)
	assert.NoError(s.T(), err)

	token, err := utils.SignSessionToken(sessionID, testSessionSecret, 1*time.Hour)
	assert.NoError(s.T(), err)

	return &http.Cookie{Name: middleware.SessionCookieName, Value: token}
}

func (s *AdminHandlerIntegrationTestSuite) do(method, path string, body map[string]interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		buf = bytes.NewBuffer(bodyBytes)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AdminHandlerIntegrationTestSuite) addCafeBody(name, location string) map[string]interface{} {
	return map[string]interface{}{
		"name":     name,
		"map_url":  "https://maps.example.com/" + name,
		"img_url":  "https://img.example.com/" + name + ".jpg",
		"location": location,
		"seats":    "20-30",
		"has_wifi": true,
	}
}

func (s *AdminHandlerIntegrationTestSuite) TestAnonymousRejected() {
	w := s.do(http.MethodPost, "/add", s.addCafeBody("Sneaky", "Nowhere"), nil)

	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(s.T(), "Only admins allowed.", response["message"])
}

func (s *AdminHandlerIntegrationTestSuite) TestRegularUserRejected() {
	cookie := s.loginCookie(s.regular)

	w := s.do(http.MethodPost, "/add", s.addCafeBody("Sneaky", "Nowhere"), cookie)

	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(s.T(), "Only admins allowed.", response["message"])
}

func (s *AdminHandlerIntegrationTestSuite) TestPromotionTakesEffectOnExistingSession() {
	// The role is read fresh from the database per request, so a
	// promotion applies to sessions opened before it happened.
	cookie := s.loginCookie(s.regular)

	w := s.do(http.MethodGet, "/add", nil, cookie)
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	err := s.userRepo.UpdateRole(s.regular.ID, models.RoleAdmin)
	assert.NoError(s.T(), err)

	w = s.do(http.MethodGet, "/add", nil, cookie)
	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *AdminHandlerIntegrationTestSuite) TestAddCafe() {
	cookie := s.loginCookie(s.admin)

	w := s.do(http.MethodPost, "/add", s.addCafeBody("Blue Bottle", "Oakland"), cookie)

	assert.Equal(s.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	cafe := response["cafe"].(map[string]interface{})
	assert.Equal(s.T(), "Blue Bottle", cafe["name"])

	// The Location header points at the new detail view
	assert.Equal(s.T(), fmt.Sprintf("/cafe/%v", cafe["id"]), w.Header().Get("Location"))
}

func (s *AdminHandlerIntegrationTestSuite) TestAddCafeDuplicateName() {
	s.testDB.DB.Create(testutil.CreateTestCafe("Blue Bottle", "Oakland", &s.admin.ID))
	cookie := s.loginCookie(s.admin)

	w := s.do(http.MethodPost, "/add", s.addCafeBody("Blue Bottle", "Berkeley"), cookie)

	assert.Equal(s.T(), http.StatusConflict, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(s.T(), "Cafe name exists.", response["message"])
}

func (s *AdminHandlerIntegrationTestSuite) TestAddCafeFormPrompt() {
	cookie := s.loginCookie(s.admin)

	w := s.do(http.MethodGet, "/add", nil, cookie)

	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *AdminHandlerIntegrationTestSuite) TestUpdatePrice() {
	cafe := testutil.CreateTestCafe("Priced", "Vienna", &s.admin.ID)
	cafe.CoffeePrice = "$3"
	s.testDB.DB.Create(cafe)
	cookie := s.loginCookie(s.admin)

	// The form prefill shows the current cafe
	w := s.do(http.MethodGet, fmt.Sprintf("/update-price/%d", cafe.ID), nil, cookie)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/update-price/%d", cafe.ID), map[string]interface{}{
		"new_price": "$4",
	}, cookie)

	assert.Equal(s.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(s.T(), "Price updated to $4.", response["message"])
}

func (s *AdminHandlerIntegrationTestSuite) TestUpdatePricePatch() {
	cafe := testutil.CreateTestCafe("Patched", "Vienna", &s.admin.ID)
	s.testDB.DB.Create(cafe)
	cookie := s.loginCookie(s.admin)

	w := s.do(http.MethodPatch, fmt.Sprintf("/update-price/%d", cafe.ID), map[string]interface{}{
		"new_price": "$5",
	}, cookie)

	assert.Equal(s.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(s.T(), "Price updated to $5.", response["message"])
}

func (s *AdminHandlerIntegrationTestSuite) TestUpdatePriceInvalidID() {
	cookie := s.loginCookie(s.admin)

	// A non-numeric id reads as a lookup miss
	w := s.do(http.MethodPost, "/update-price/not-a-number", map[string]interface{}{
		"new_price": "$4",
	}, cookie)

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *AdminHandlerIntegrationTestSuite) TestUpdatePriceNotFound() {
	cookie := s.loginCookie(s.admin)

	w := s.do(http.MethodPost, "/update-price/9999", map[string]interface{}{
		"new_price": "$4",
	}, cookie)

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *AdminHandlerIntegrationTestSuite) TestDeleteCafe() {
	cafe := testutil.CreateTestCafe("Doomed", "Nowhere", &s.admin.ID)
	s.testDB.DB.Create(cafe)
	cookie := s.loginCookie(s.admin)

	w := s.do(http.MethodPost, "/delete-cafe", map[string]interface{}{
		"id": cafe.ID,
	}, cookie)

	assert.Equal(s.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(s.T(), "Cafe deleted.", response["message"])

	var count int64
	s.testDB.DB.Model(&models.Cafe{}).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

func (s *AdminHandlerIntegrationTestSuite) TestDeleteCafeNotFound() {
	cookie := s.loginCookie(s.admin)

	w := s.do(http.MethodPost, "/delete-cafe", map[string]interface{}{
		"id": 9999,
	}, cookie)

	assert.Equal(s.T(), http.StatusNotFound, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(s.T(), "Cafe not found.", response["message"])
}

func (s *AdminHandlerIntegrationTestSuite) TestDeleteUser() {
	cafe := testutil.CreateTestCafe("Orphaned Beans", "Shoreditch", &s.regular.ID)
	s.testDB.DB.Create(cafe)
	cookie := s.loginCookie(s.admin)

	w := s.do(http.MethodPost, "/delete-user", map[string]interface{}{
		"id": s.regular.ID,
	}, cookie)

	assert.Equal(s.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(s.T(), "User deleted.", response["message"])

	// The cafe survives with its author reference nulled
	var kept models.Cafe
	assert.NoError(s.T(), s.testDB.DB.First(&kept, cafe.ID).Error)
	assert.Nil(s.T(), kept.AuthorID)
}

func (s *AdminHandlerIntegrationTestSuite) TestDeleteUserNotFound() {
	cookie := s.loginCookie(s.admin)

	w := s.do(http.MethodPost, "/delete-user", map[string]interface{}{
		"id": 9999,
	}, cookie)

	assert.Equal(s.T(), http.StatusNotFound, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(s.T(), "User not found.", response["message"])
}

func (s *AdminHandlerIntegrationTestSuite) TestAuditLog() {
	cookie := s.loginCookie(s.admin)

	w := s.do(http.MethodPost, "/add", s.addCafeBody("Logged", "Lisbon"), cookie)
	assert.Equal(s.T(), http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/admin/audit", nil, cookie)

	assert.Equal(s.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	entries := response["entries"].([]interface{})
	assert.NotEmpty(s.T(), entries)

	// Newest first
	latest := entries[0].(map[string]interface{})
	assert.Equal(s.T(), audit.ActionCafeAdded, latest["action"])
}

// TestSuite runs all tests in the suite
func TestAdminHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerIntegrationTestSuite))
}
