package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aviramh/gradecast-be/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	user := models.User{ID: "user-123"}

	token, err := GenerateJWT(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
}

func TestValidateRejectsGarbage(t *testing.T) {
	for _, tokenStr := range []string{"", "not-a-token", "a.b.c"} {
		_, err := ValidateJWT(tokenStr)
		assert.Error(t, err, "token %q must not validate", tokenStr)
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	token, err := GenerateJWT(models.User{ID: "user-123"})
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ValidateJWT(tampered)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	claims := &Claims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-TokenLifetime - time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtKey)
	require.NoError(t, err)

	_, err = ValidateJWT(expired)
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	token, err := GenerateJWT(models.User{ID: "user-123"})
	require.NoError(t, err)

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = r.Context().Value(UserIDKey).(string)
		w.WriteHeader(http.StatusOK)
	})
	protected := JWTMiddleware()(next)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer", "Basic abc", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(http.MethodPost, "/logout", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "user-123", gotUserID)
			} else {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}
