package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más los que emite GoTrue para
// los access tokens de Supabase (email del usuario).
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Decode extrae los claims de un access token SIN verificar la firma.
// El cliente no conoce el secret del backend; la verificación real la hace
// el servidor en cada petición. Aquí solo se leen sub, email y exp para
// poblar la sesión local y programar el refresh.
func Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("jwt: decodificar token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("jwt: token sin claim sub")
	}
	return claims, nil
}

// UserID devuelve el identificador del usuario (claim sub).
func (c *Claims) UserID() string {
	return c.Subject
}

// Expiry devuelve el instante de expiración, o cero si el token no trae exp.
func (c *Claims) Expiry() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}
