package user

import (
	"net/http"

	"blog_backend/internal/apperr"
	"blog_backend/internal/observability"
	"blog_backend/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserController struct {
	userService UserServiceInterface
	metrics     *observability.Metrics
}

func NewUserController(userService UserServiceInterface, metrics *observability.Metrics) *UserController {
	return &UserController{
		userService: userService,
		metrics:     metrics,
	}
}

// SetupRoutes registers signup and signin under /user. Both are public.
func (uc *UserController) SetupRoutes(r gin.IRouter) {
	userGroup := r.Group("/user")
	{
		userGroup.POST("/signup", uc.Signup)
		userGroup.POST("/signin", uc.Signin)
	}
}

// Signup handles user registration
func (uc *UserController) Signup(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		uc.signupError(c, apperr.Internal(err))
		return
	}

	input := validation.SignupSchema{}.SafeParse(raw)
	if !input.Success {
		uc.signupError(c, apperr.Validation(input.Err))
		return
	}

	token, err := uc.userService.Signup(c.Request.Context(), input.Data)
	if err != nil {
		uc.signupError(c, err)
		return
	}

	uc.metrics.SignupsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"message": "User created successfully",
		"jwt":     token,
	})
}

// Signin handles login and returns a fresh token
func (uc *UserController) Signin(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		uc.signinError(c, apperr.Internal(err))
		return
	}

	input := validation.SigninSchema{}.SafeParse(raw)
	if !input.Success {
		uc.signinError(c, apperr.Validation(input.Err))
		return
	}

	token, err := uc.userService.Signin(c.Request.Context(), input.Data)
	if err != nil {
		uc.signinError(c, err)
		return
	}

	uc.metrics.SigninsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"jwt":     token,
	})
}

// signupError maps signup failures. Internal errors are logged, never echoed.
func (uc *UserController) signupError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	uc.metrics.SignupsTotal.WithLabelValues(kind.String()).Inc()

	switch kind {
	case apperr.KindValidation:
		c.JSON(http.StatusLengthRequired, gin.H{"message": "Inputs are not correct"})
	case apperr.KindConflict:
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
	default:
		logrus.WithError(err).Error("Signup error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (uc *UserController) signinError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	uc.metrics.SigninsTotal.WithLabelValues(kind.String()).Inc()

	switch kind {
	case apperr.KindValidation:
		c.JSON(http.StatusLengthRequired, gin.H{"message": "Inputs are not correct"})
	case apperr.KindCredential:
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid credentials"})
	default:
		logrus.WithError(err).Error("Signin error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
