package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"techstore-server/internal/config"
	"techstore-server/internal/handler"
	ifaceMocks "techstore-server/internal/interfaces/mocks"
	"techstore-server/internal/models"
	svcMocks "techstore-server/internal/service/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testMocks struct {
	auth     *svcMocks.AuthService
	catalog  *svcMocks.CatalogService
	userRepo *ifaceMocks.UserRepository
	ledger   *ifaceMocks.PurchaseLedger
}

func setupRouter(t *testing.T) (*gin.Engine, *testMocks) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := &testMocks{
		auth:     new(svcMocks.AuthService),
		catalog:  new(svcMocks.CatalogService),
		userRepo: new(ifaceMocks.UserRepository),
		ledger:   new(ifaceMocks.PurchaseLedger),
	}
	cfg := &config.Config{
		Env:      "test",
		TokenTTL: time.Hour,
	}
	h := handler.NewHandler(m.auth, m.catalog, m.userRepo, m.ledger, cfg)

	router := gin.New()
	passthrough := func(c *gin.Context) { c.Next() }
	h.RegisterRoutes(router, passthrough)
	return router, m
}

func doJSON(router *gin.Engine, method, path string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, fn := range mutate {
		fn(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func withBearer(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func withCookie(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
}

// --- Аутентификация ---

func TestAuthMiddleware(t *testing.T) {
	t.Run("No token", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doJSON(router, http.MethodGet, "/user/all", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Authentication required. No token provided."}`, w.Body.String())
	})

	t.Run("Bad token", func(t *testing.T) {
		router, m := setupRouter(t)
		m.auth.On("Authenticate", mock.Anything, "garbage").Return(nil, models.ErrTokenMalformed).Once()

		w := doJSON(router, http.MethodGet, "/user/all", nil, withBearer("garbage"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Invalid or expired token. Please login again."}`, w.Body.String())
	})

	t.Run("Expired token", func(t *testing.T) {
		router, m := setupRouter(t)
		m.auth.On("Authenticate", mock.Anything, "expired").Return(nil, models.ErrTokenExpired).Once()

		w := doJSON(router, http.MethodGet, "/user/all", nil, withBearer("expired"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Invalid or expired token. Please login again."}`, w.Body.String())
	})

	t.Run("Deleted subject", func(t *testing.T) {
		router, m := setupRouter(t)
		m.auth.On("Authenticate", mock.Anything, "orphan").Return(nil, models.ErrUserNotFound).Once()

		w := doJSON(router, http.MethodGet, "/user/all", nil, withBearer("orphan"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"User not found. Authentication failed."}`, w.Body.String())
	})

	t.Run("Cookie wins over header", func(t *testing.T) {
		router, m := setupRouter(t)

		user := &models.User{ID: uuid.New(), Email: "alice@example.com", Role: models.RoleUser}
		// Аутентификация должна идти по cookie, заголовок игнорируется
		m.auth.On("Authenticate", mock.Anything, "cookie-token").Return(user, nil).Once()
		m.userRepo.On("ListUsers", mock.Anything).Return([]models.User{}, nil).Once()

		w := doJSON(router, http.MethodGet, "/user/all", nil, withCookie("cookie-token"), withBearer("header-token"))
		assert.Equal(t, http.StatusOK, w.Code)
		m.auth.AssertExpectations(t)
	})

	t.Run("Bearer header accepted without cookie", func(t *testing.T) {
		router, m := setupRouter(t)

		user := &models.User{ID: uuid.New(), Email: "alice@example.com", Role: models.RoleUser}
		m.auth.On("Authenticate", mock.Anything, "header-token").Return(user, nil).Once()
		m.userRepo.On("ListUsers", mock.Anything).Return([]models.User{}, nil).Once()

		w := doJSON(router, http.MethodGet, "/user/all", nil, withBearer("header-token"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAdminMiddleware(t *testing.T) {
	targetID := uuid.New()

	t.Run("Non-admin gets 403", func(t *testing.T) {
		router, m := setupRouter(t)

		user := &models.User{ID: uuid.New(), Email: "user@example.com", Role: models.RoleUser}
		m.auth.On("Authenticate", mock.Anything, "t").Return(user, nil).Once()

		w := doJSON(router, http.MethodPatch, "/user/"+targetID.String()+"/block", nil, withBearer("t"))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"Access denied. Admins only."}`, w.Body.String())
		m.auth.AssertNotCalled(t, "ToggleBlock", mock.Anything, mock.Anything)
	})

	t.Run("Admin passes", func(t *testing.T) {
		router, m := setupRouter(t)

		admin := &models.User{ID: uuid.New(), Email: "admin@example.com", Role: models.RoleAdmin}
		m.auth.On("Authenticate", mock.Anything, "t").Return(admin, nil).Once()
		m.auth.On("ToggleBlock", mock.Anything, targetID).Return(true, nil).Once()

		w := doJSON(router, http.MethodPatch, "/user/"+targetID.String()+"/block", nil, withBearer("t"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"User blocked successfully!"}`, w.Body.String())
	})
}

func TestOwnershipMiddleware(t *testing.T) {
	t.Run("Foreign account gets 403", func(t *testing.T) {
		router, m := setupRouter(t)

		user := &models.User{ID: uuid.New(), Email: "mallory@example.com", Role: models.RoleUser}
		m.auth.On("Authenticate", mock.Anything, "t").Return(user, nil).Once()

		w := doJSON(router, http.MethodPatch, "/user/edit-name/alice@example.com", gin.H{"name": "X"}, withBearer("t"))
		assert.Equal(t, http.StatusForbidden, w.Code)
		m.auth.AssertNotCalled(t, "UpdateName", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Owner passes", func(t *testing.T) {
		router, m := setupRouter(t)

		user := &models.User{ID: uuid.New(), Email: "alice@example.com", Role: models.RoleUser}
		m.auth.On("Authenticate", mock.Anything, "t").Return(user, nil).Once()
		m.auth.On("UpdateName", mock.Anything, "alice@example.com", "Alicia").Return(user, nil).Once()
		m.ledger.On("ListByUser", mock.Anything, user.ID).Return([]uuid.UUID{}, nil).Once()

		w := doJSON(router, http.MethodPatch, "/user/edit-name/alice@example.com", gin.H{"name": "Alicia"}, withBearer("t"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Admin may edit any account", func(t *testing.T) {
		router, m := setupRouter(t)

		admin := &models.User{ID: uuid.New(), Email: "admin@example.com", Role: models.RoleAdmin}
		target := &models.User{ID: uuid.New(), Email: "alice@example.com", Role: models.RoleUser}
		m.auth.On("Authenticate", mock.Anything, "t").Return(admin, nil).Once()
		m.auth.On("UpdateName", mock.Anything, "alice@example.com", "Alicia").Return(target, nil).Once()
		m.ledger.On("ListByUser", mock.Anything, target.ID).Return([]uuid.UUID{}, nil).Once()

		w := doJSON(router, http.MethodPatch, "/user/edit-name/alice@example.com", gin.H{"name": "Alicia"}, withBearer("t"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

// --- Регистрация и вход ---

func TestRegisterEndpoint(t *testing.T) {
	t.Run("Validation errors returned as array", func(t *testing.T) {
		router, m := setupRouter(t)

		w := doJSON(router, http.MethodPost, "/user/register", gin.H{
			"name":     "",
			"email":    "not-an-email",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp models.ValidationErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Errors, 3)
		m.auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Successful registration", func(t *testing.T) {
		router, m := setupRouter(t)

		user := &models.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
		m.auth.On("Register", mock.Anything, "Alice", "alice@example.com", "password123").Return(user, nil).Once()

		w := doJSON(router, http.MethodPost, "/user/register", gin.H{
			"name":     "Alice",
			"email":    "alice@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"message":"User registered successfully!"}`, w.Body.String())
	})

	t.Run("Duplicate email returns conflict", func(t *testing.T) {
		router, m := setupRouter(t)

		m.auth.On("Register", mock.Anything, "Alice", "alice@example.com", "password123").Return(nil, models.ErrEmailAlreadyExists).Once()

		w := doJSON(router, http.MethodPost, "/user/register", gin.H{
			"name":     "Alice",
			"email":    "alice@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error":"User already exists."}`, w.Body.String())
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("Successful login sets cookie and returns profile", func(t *testing.T) {
		router, m := setupRouter(t)

		userID := uuid.New()
		pkg := uuid.New()
		user := &models.User{
			ID:       userID,
			Name:     "Alice",
			Email:    "alice@example.com",
			Role:     models.RoleUser,
			Blocked:  false,
			Packages: []uuid.UUID{pkg},
		}
		m.auth.On("Login", mock.Anything, "alice@example.com", "password123").Return("signed-token", user, nil).Once()

		w := doJSON(router, http.MethodPost, "/user/login", gin.H{
			"email":    "alice@example.com",
			"password": "password123",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Login successful!", resp["message"])
		assert.Equal(t, "signed-token", resp["token"])
		assert.Equal(t, userID.String(), resp["userId"])
		assert.Equal(t, models.RoleUser, resp["role"])
		assert.Equal(t, "Alice", resp["name"])
		assert.Equal(t, "alice@example.com", resp["email"])
		assert.Equal(t, false, resp["blocked"])
		assert.Len(t, resp["packages"], 1)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "token", cookies[0].Name)
		assert.Equal(t, "signed-token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.False(t, cookies[0].Secure) // Env != production
	})

	t.Run("Invalid credentials", func(t *testing.T) {
		router, m := setupRouter(t)

		m.auth.On("Login", mock.Anything, "alice@example.com", "wrong").Return("", nil, models.ErrInvalidCredentials).Once()

		w := doJSON(router, http.MethodPost, "/user/login", gin.H{
			"email":    "alice@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Invalid email or password."}`, w.Body.String())
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("Missing password reported as validation error", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doJSON(router, http.MethodPost, "/user/login", gin.H{"email": "alice@example.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp models.ValidationErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Errors, 1)
	})
}

// --- Покупки ---

func TestPurchaseEndpoint(t *testing.T) {
	t.Run("Missing identifiers", func(t *testing.T) {
		router, m := setupRouter(t)

		w := doJSON(router, http.MethodPost, "/api/packages/purchase", gin.H{"userId": ""})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"User ID and Package ID are required."}`, w.Body.String())
		m.catalog.AssertNotCalled(t, "Purchase", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Malformed identifiers", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doJSON(router, http.MethodPost, "/api/packages/purchase", gin.H{
			"userId":    "not-a-uuid",
			"packageId": uuid.NewString(),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown user or package", func(t *testing.T) {
		router, m := setupRouter(t)

		userID := uuid.New()
		packageID := uuid.New()
		m.catalog.On("Purchase", mock.Anything, userID, packageID).Return(nil, models.ErrPackageNotFound).Once()

		w := doJSON(router, http.MethodPost, "/api/packages/purchase", gin.H{
			"userId":    userID.String(),
			"packageId": packageID.String(),
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"User or Package not found."}`, w.Body.String())
	})

	t.Run("Successful purchase", func(t *testing.T) {
		router, m := setupRouter(t)

		userID := uuid.New()
		packageID := uuid.New()
		user := &models.User{ID: userID, Packages: []uuid.UUID{packageID}}
		m.catalog.On("Purchase", mock.Anything, userID, packageID).Return(user, nil).Once()

		w := doJSON(router, http.MethodPost, "/api/packages/purchase", gin.H{
			"userId":    userID.String(),
			"packageId": packageID.String(),
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Package purchased successfully!", resp["message"])
		assert.NotNil(t, resp["user"])
	})
}

// --- Администрирование ---

func TestUpdateRoleEndpoint(t *testing.T) {
	adminToken := func(m *testMocks) {
		admin := &models.User{ID: uuid.New(), Email: "admin@example.com", Role: models.RoleAdmin}
		m.auth.On("Authenticate", mock.Anything, "t").Return(admin, nil).Once()
	}

	t.Run("Unknown role rejected", func(t *testing.T) {
		router, m := setupRouter(t)
		adminToken(m)

		w := doJSON(router, http.MethodPatch, "/user/edit-role/"+uuid.NewString(), gin.H{"role": "superuser"}, withBearer("t"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		m.auth.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Promotion with email sent", func(t *testing.T) {
		router, m := setupRouter(t)
		adminToken(m)

		targetID := uuid.New()
		m.auth.On("UpdateRole", mock.Anything, targetID, models.RoleAdmin).Return(true, nil).Once()

		w := doJSON(router, http.MethodPatch, "/user/edit-role/"+targetID.String(), gin.H{"role": "admin"}, withBearer("t"))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"User role updated successfully and email sent!","emailSent":true}`, w.Body.String())
	})

	t.Run("Role change with mail failure still succeeds", func(t *testing.T) {
		router, m := setupRouter(t)
		adminToken(m)

		targetID := uuid.New()
		m.auth.On("UpdateRole", mock.Anything, targetID, models.RoleAdmin).Return(false, nil).Once()

		w := doJSON(router, http.MethodPatch, "/user/edit-role/"+targetID.String(), gin.H{"role": "admin"}, withBearer("t"))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"User role updated successfully.","emailSent":false}`, w.Body.String())
	})
}

// --- Профиль ---

func TestUpdatePasswordEndpoint(t *testing.T) {
	t.Run("Wrong current password", func(t *testing.T) {
		router, m := setupRouter(t)

		user := &models.User{ID: uuid.New(), Email: "alice@example.com", Role: models.RoleUser}
		m.auth.On("Authenticate", mock.Anything, "t").Return(user, nil).Once()
		m.auth.On("UpdatePassword", mock.Anything, "alice@example.com", "wrong", "newpassword").Return(models.ErrPasswordIncorrect).Once()

		w := doJSON(router, http.MethodPatch, "/user/update-password/alice@example.com", gin.H{
			"currentPassword": "wrong",
			"newPassword":     "newpassword",
		}, withBearer("t"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Current password is incorrect."}`, w.Body.String())
	})

	t.Run("Short new password rejected before service call", func(t *testing.T) {
		router, m := setupRouter(t)

		user := &models.User{ID: uuid.New(), Email: "alice@example.com", Role: models.RoleUser}
		m.auth.On("Authenticate", mock.Anything, "t").Return(user, nil).Once()

		w := doJSON(router, http.MethodPatch, "/user/update-password/alice@example.com", gin.H{
			"currentPassword": "oldpass",
			"newPassword":     "short",
		}, withBearer("t"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		m.auth.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProfileImageEndpoints(t *testing.T) {
	t.Run("Get without image set", func(t *testing.T) {
		router, m := setupRouter(t)

		user := &models.User{ID: uuid.New(), Email: "alice@example.com", Role: models.RoleUser}
		m.auth.On("Authenticate", mock.Anything, "t").Return(user, nil).Once()
		m.auth.On("GetProfileImageURL", mock.Anything, user.ID).Return("", models.ErrProfileImageMissing).Once()

		w := doJSON(router, http.MethodGet, "/user/profile-image", nil, withBearer("t"))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Profile image not found."}`, w.Body.String())
	})

	t.Run("Remove without image set", func(t *testing.T) {
		router, m := setupRouter(t)

		user := &models.User{ID: uuid.New(), Email: "alice@example.com", Role: models.RoleUser}
		m.auth.On("Authenticate", mock.Anything, "t").Return(user, nil).Once()
		m.auth.On("RemoveProfileImage", mock.Anything, user.ID).Return(models.ErrProfileImageMissing).Once()

		w := doJSON(router, http.MethodDelete, "/user/remove-profile-image", nil, withBearer("t"))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"No profile image to remove."}`, w.Body.String())
	})

	t.Run("Upload without file", func(t *testing.T) {
		router, m := setupRouter(t)

		user := &models.User{ID: uuid.New(), Email: "alice@example.com", Role: models.RoleUser}
		m.auth.On("Authenticate", mock.Anything, "t").Return(user, nil).Once()

		w := doJSON(router, http.MethodPost, "/user/upload-image", nil, withBearer("t"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"No file uploaded"}`, w.Body.String())
	})
}
