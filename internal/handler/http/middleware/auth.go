package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/jwt"
)

// AuthRequired rejects requests without a valid access token and stores the
// caller's identity in the request context. It runs after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != jwt.TokenTypeAccess {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		employeeID, _ := claims["employee_id"].(string)
		role, _ := claims["role"].(string)
		if employeeID == "" || !user.IsValidRole(role) {
			response.HandleError(w, auth.ErrInvalidClaim)
			return
		}

		ctx := user.WithIdentity(r.Context(), user.Identity{
			EmployeeID: employeeID,
			Role:       user.Role(role),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
