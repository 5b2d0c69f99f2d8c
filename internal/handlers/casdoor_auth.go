package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/election-service/internal/config"
	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/services"
	"github.com/SAP-F-2025/election-service/internal/utils"
)

const (
	contextUserKey   = "user"
	contextUserIDKey = "user_id"
)

// TokenParser verifies a bearer token and returns its claims. *casdoorsdk.Client satisfies it.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// NewCasdoorTokenParser builds the Casdoor client used to verify tokens
func NewCasdoorTokenParser(cfg config.CasdoorConfig) TokenParser {
	return casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
}

// CasdoorAuthMiddleware authenticates requests with Casdoor tokens and maps
// them onto local users
type CasdoorAuthMiddleware struct {
	parser      TokenParser
	userService services.UserService
	logger      utils.Logger
}

func NewCasdoorAuthMiddleware(parser TokenParser, userService services.UserService, logger utils.Logger) *CasdoorAuthMiddleware {
	return &CasdoorAuthMiddleware{
		parser:      parser,
		userService: userService,
		logger:      logger,
	}
}

// AuthMiddleware rejects requests without a valid bearer token
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authorization header missing",
			})
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "bearer") || strings.TrimSpace(tokenParts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid authorization header format",
			})
			return
		}

		claims, err := cam.parser.ParseJwtToken(strings.TrimSpace(tokenParts[1]))
		if err != nil {
			utils.GetLogger(c, cam.logger).Warn("Rejected bearer token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid token",
			})
			return
		}

		user, err := cam.userService.EnsureUser(c.Request.Context(), IdentityFromClaims(claims))
		if errors.Is(err, services.ErrForbidden) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Account is disabled",
			})
			return
		}
		if err != nil {
			utils.GetLogger(c, cam.logger).Error("Failed to resolve user from token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Failed to resolve user",
			})
			return
		}

		c.Set(contextUserIDKey, user.ID)
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// RequireAdmin allows only staff users through; it must run after AuthMiddleware
func (cam *CasdoorAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUserFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}
		if user.Role() != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Admin access required",
			})
			return
		}
		c.Next()
	}
}

// IdentityFromClaims maps Casdoor claims onto the identity the user service provisions from
func IdentityFromClaims(claims *casdoorsdk.Claims) *services.Identity {
	firstName, lastName := claims.User.FirstName, claims.User.LastName
	if firstName == "" && lastName == "" && claims.User.DisplayName != "" {
		parts := strings.SplitN(strings.TrimSpace(claims.User.DisplayName), " ", 2)
		firstName = parts[0]
		if len(parts) == 2 {
			lastName = parts[1]
		}
	}

	return &services.Identity{
		Username:  claims.User.Name,
		FirstName: firstName,
		LastName:  lastName,
		Email:     claims.User.Email,
		IsAdmin:   claims.User.IsAdmin || strings.EqualFold(claims.User.Type, "admin"),
	}
}
