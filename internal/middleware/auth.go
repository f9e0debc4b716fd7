package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const UserIDKey contextKey = "user_id"

type JWTAuth struct {
	Secret []byte
}

func NewJWTAuth(secret string) *JWTAuth {
	return &JWTAuth{Secret: []byte(secret)}
}

// GenerateAccessToken creates a JWT with 24 hour expiry
func (j *JWTAuth) GenerateAccessToken(userID uuid.UUID, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"email":   email,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// Middleware validates JWT and attaches user_id to context
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, errCode, errMsg := j.userIDFromRequest(r)
		if errCode != "" {
			writeError(w, http.StatusUnauthorized, errCode, errMsg, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalMiddleware attaches user_id when a valid token is present but
// lets anonymous requests through. Used by deck save, where anonymous
// callers get a "saved locally" acknowledgment instead of persistence.
func (j *JWTAuth) OptionalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, errCode, _ := j.userIDFromRequest(r)
		if errCode == "" {
			r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
		}
		next.ServeHTTP(w, r)
	})
}

func (j *JWTAuth) userIDFromRequest(r *http.Request) (uuid.UUID, string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return uuid.Nil, "UNAUTHORIZED", "Missing authorization header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return uuid.Nil, "UNAUTHORIZED", "Invalid authorization format"
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.Secret, nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return uuid.Nil, "TOKEN_EXPIRED", "Token has expired"
		}
		return uuid.Nil, "UNAUTHORIZED", "Invalid token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, "UNAUTHORIZED", "Invalid token claims"
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, "UNAUTHORIZED", "Invalid user ID in token"
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, "UNAUTHORIZED", "Invalid user ID format"
	}

	return userID, "", ""
}

// GetUserID extracts user_id from request context. Returns uuid.Nil for
// anonymous requests.
func GetUserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(UserIDKey).(uuid.UUID)
	return id
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
		},
	})
}
