package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/hertz-contrib/jwt"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain"
	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
	"github.com/khaledelhady44/The-boy-who-lived/internal/handler/dto"
)

// UserHandler handles registration, login and the JWT middleware that
// protects the rest of the API. Chats are keyed by username, so the token
// identity is the username itself.
type UserHandler struct {
	usecase        domain.UserUsecase
	authMiddleware *jwt.HertzJWTMiddleware
	logger         *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(usecase domain.UserUsecase, jwtSecret string, tokenTimeout time.Duration, logger *slog.Logger) *UserHandler {
	authMiddleware, err := jwt.New(&jwt.HertzJWTMiddleware{
		Realm:       "tbwl-api",
		Key:         []byte(jwtSecret),
		Timeout:     tokenTimeout,
		MaxRefresh:  time.Hour * 24 * 7,
		IdentityKey: "username",

		// Login authentication logic
		Authenticator: func(ctx context.Context, c *app.RequestContext) (interface{}, error) {
			var loginReq dto.LoginRequest
			if err := c.BindJSON(&loginReq); err != nil {
				return nil, jwt.ErrMissingLoginValues
			}

			user, err := usecase.Login(ctx, loginReq.Username, loginReq.Password)
			if err != nil {
				logger.Error("login failed", "username", loginReq.Username, "error", err)
				return nil, jwt.ErrFailedAuthentication
			}

			// Store user info in context for LoginResponse
			c.Set("user", user)
			return user, nil
		},

		PayloadFunc: func(data interface{}) jwt.MapClaims {
			if user, ok := data.(*entity.User); ok {
				return jwt.MapClaims{
					"username": user.Username,
				}
			}
			return jwt.MapClaims{}
		},

		// Extract identity information from Token
		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			if username, ok := claims["username"].(string); ok {
				// Store username in RequestContext for all handlers to use
				c.Set("username", username)
				return username
			}
			return ""
		},

		Authorizator: func(data interface{}, ctx context.Context, c *app.RequestContext) bool {
			username, ok := data.(string)
			return ok && username != ""
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, map[string]interface{}{
				"code":    "UNAUTHORIZED",
				"message": message,
			})
		},

		LoginResponse: func(ctx context.Context, c *app.RequestContext, code int, token string, expire time.Time) {
			user, exists := c.Get("user")
			if !exists {
				c.JSON(consts.StatusInternalServerError, map[string]interface{}{
					"code":    "INTERNAL_ERROR",
					"message": "failed to get user info",
				})
				return
			}
			userEntity := user.(*entity.User)

			c.JSON(consts.StatusOK, map[string]interface{}{
				"code": "SUCCESS",
				"data": dto.LoginResponse{
					Token:  token,
					Expire: expire.Format(time.RFC3339),
					User:   dto.ToUserResponse(userEntity),
				},
			})
		},

		TokenLookup:   "header: Authorization, query: token",
		TokenHeadName: "Bearer",
		TimeFunc:      time.Now,
	})

	if err != nil {
		logger.Error("failed to create jwt middleware", "error", err)
		panic(err)
	}

	return &UserHandler{
		usecase:        usecase,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// AuthMiddleware returns JWT authentication middleware (for route protection)
func (h *UserHandler) AuthMiddleware() app.HandlerFunc {
	return h.authMiddleware.MiddlewareFunc()
}

// VerifyToken validates a raw bearer token and returns the username it was
// issued to. The websocket route cannot go through MiddlewareFunc, so the
// gateway calls this directly with the credential it pulled off the upgrade
// request.
func (h *UserHandler) VerifyToken(ctx context.Context, token string) (string, error) {
	parsed, err := h.authMiddleware.ParseTokenString(token)
	if err != nil {
		return "", domain.NewUnauthorizedError("invalid or expired token")
	}

	claims, ok := parsed.Claims.(jwtv4.MapClaims)
	if !ok {
		return "", domain.NewUnauthorizedError("invalid token claims")
	}
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", domain.NewUnauthorizedError("token carries no identity")
	}

	return username, nil
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *UserHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Error("invalid register request", "error", err)
		ErrorResponse(c, domain.ErrInvalidInput)
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.Error("register request failed validation", "error", err)
		ErrorResponse(c, domain.NewInvalidInputError(err.Error()))
		return
	}

	user, err := h.usecase.Register(ctx, domain.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error("register failed", "error", err)
		ErrorResponse(c, err)
		return
	}

	// Return user info (excluding password)
	CreatedResponse(c, dto.ToUserResponse(user))
}

// Login handles user login (using Hertz JWT LoginHandler)
// POST /api/v1/auth/login
func (h *UserHandler) Login(ctx context.Context, c *app.RequestContext) {
	h.authMiddleware.LoginHandler(ctx, c)
}

// RefreshToken refreshes the authentication token
// POST /api/v1/auth/refresh
func (h *UserHandler) RefreshToken(ctx context.Context, c *app.RequestContext) {
	h.authMiddleware.RefreshHandler(ctx, c)
}

// GetCurrentUser retrieves the currently logged-in user's information
// GET /api/v1/users/me
func (h *UserHandler) GetCurrentUser(ctx context.Context, c *app.RequestContext) {
	username, ok := currentUsername(c)
	if !ok {
		h.logger.Error("username not found in context")
		ErrorResponse(c, domain.ErrUnauthorized)
		return
	}

	user, err := h.usecase.GetUser(ctx, username)
	if err != nil {
		h.logger.Error("failed to get current user", "error", err, "username", username)
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, dto.ToUserResponse(user))
}

// currentUsername pulls the authenticated identity the middleware stored on
// the request context.
func currentUsername(c *app.RequestContext) (string, bool) {
	val, exists := c.Get("username")
	if !exists {
		return "", false
	}
	username, ok := val.(string)
	if !ok || username == "" {
		return "", false
	}
	return username, true
}
