package handler

import (
	"fmt"
	"net/http"
	"net/mail"

	"techstore-server/internal/models"

	"github.com/gin-gonic/gin"
)

// validEmail reports whether the address parses as RFC 5322.
func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// @Summary Регистрация нового пользователя
// @Description Создает новый аккаунт пользователя
// @Tags user
// @Accept json
// @Produce json
// @Param request body registerRequest true "Данные для регистрации"
// @Success 201 {object} map[string]interface{} "Успешная регистрация"
// @Failure 400 {object} models.ValidationErrorResponse "Неверные данные запроса"
// @Failure 409 {object} models.ErrorResponse "Email уже занят"
// @Router /user/register [post]
func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request data: " + err.Error()})
		return
	}

	var fieldErrors []models.FieldError
	if req.Name == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "name", Message: "Name is required"})
	}
	if !validEmail(req.Email) {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "email", Message: "Valid email is required"})
	}
	if len(req.Password) < minPasswordLength {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "password", Message: fmt.Sprintf("Password must be at least %d characters long", minPasswordLength)})
	}
	if len(fieldErrors) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ValidationErrorResponse{Errors: fieldErrors})
		return
	}

	if _, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully!"})
}

// @Summary Вход в систему
// @Description Аутентификация пользователя, выдача токена в теле и cookie
// @Tags user
// @Accept json
// @Produce json
// @Param request body loginRequest true "Данные для входа"
// @Success 200 {object} map[string]interface{} "Токен и профиль"
// @Failure 400 {object} models.ValidationErrorResponse "Неверные данные запроса"
// @Failure 401 {object} models.ErrorResponse "Неверные учетные данные"
// @Router /user/login [post]
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request data: " + err.Error()})
		return
	}

	var fieldErrors []models.FieldError
	if !validEmail(req.Email) {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "email", Message: "Valid email is required"})
	}
	if req.Password == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "password", Message: "Password is required"})
	}
	if len(fieldErrors) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ValidationErrorResponse{Errors: fieldErrors})
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// Cookie и тело несут один и тот же токен; cookie имеет приоритет
	// при аутентификации.
	secure := h.cfg.Env == "production"
	c.SetCookie("token", token, int(h.cfg.TokenTTL.Seconds()), "/", "", secure, true)

	loginsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful!",
		"token":    token,
		"userId":   user.ID.String(),
		"role":     user.Role,
		"name":     user.Name,
		"email":    user.Email,
		"blocked":  user.Blocked,
		"packages": user.Packages,
	})
}
