package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/larder-pos/api/internal/auth"
	"github.com/larder-pos/api/internal/enum"
	"go.uber.org/zap"
)

type contextKey string

const claimsKey contextKey = "claims"

// Area is a slice of the back office guarded by one role policy.
type Area string

const (
	AreaPurchasing Area = "purchasing" // vendors, purchase orders, invoices, bills
	AreaKitchen    Area = "kitchen"    // inventory, counts, waste
	AreaRecipes    Area = "recipes"
	AreaStaff      Area = "staff" // user administration
)

// OWNER is allowed everywhere and is not listed.
var areaRoles = map[Area][]string{
	AreaPurchasing: {enum.UserRoleManager, enum.UserRoleBuyer},
	AreaKitchen:    {enum.UserRoleManager, enum.UserRoleBuyer, enum.UserRoleChef},
	AreaRecipes:    {enum.UserRoleManager, enum.UserRoleChef},
	AreaStaff:      {enum.UserRoleManager},
}

// Allowed reports whether role may use area. Unknown areas admit only OWNER.
func Allowed(role string, area Area) bool {
	return role == enum.UserRoleOwner || slices.Contains(areaRoles[area], role)
}

// Authenticate validates the bearer access token and stores its claims
// in the request context.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, msg := bearerToken(r)
			if msg != "" {
				deny(w, r, http.StatusUnauthorized, msg)
				return
			}
			claims, err := auth.ValidateToken(jwtSecret, token)
			if err != nil {
				deny(w, r, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", "invalid authorization format"
	}
	return token, ""
}

// RequireOutlet confines staff to the outlet in their token. Owners run
// every outlet.
func RequireOutlet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			deny(w, r, http.StatusUnauthorized, "not authenticated")
			return
		}
		if claims.Role == enum.UserRoleOwner {
			next.ServeHTTP(w, r)
			return
		}

		raw := r.PathValue("oid")
		if raw == "" {
			deny(w, r, http.StatusBadRequest, "missing outlet ID")
			return
		}
		oid, err := uuid.Parse(raw)
		if err != nil {
			deny(w, r, http.StatusBadRequest, "invalid outlet ID")
			return
		}
		if claims.OutletID != oid {
			deny(w, r, http.StatusForbidden, "access denied for this outlet")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireArea admits the roles the area's policy lists.
func RequireArea(area Area) func(http.Handler) http.Handler {
	return requireClaims(func(c *auth.Claims) bool { return Allowed(c.Role, area) })
}

// RequireRole admits exactly the given roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return requireClaims(func(c *auth.Claims) bool { return slices.Contains(roles, c.Role) })
}

func requireClaims(allow func(*auth.Claims) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				deny(w, r, http.StatusUnauthorized, "not authenticated")
				return
			}
			if !allow(claims) {
				deny(w, r, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// WithClaims returns a copy of ctx carrying claims. Used by the
// websocket endpoint, which authenticates from a query parameter.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func deny(w http.ResponseWriter, r *http.Request, status int, msg string) {
	zap.L().Debug("request denied",
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("reason", msg),
	)
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode middleware response", zap.Error(err))
	}
}
