package entity

import "time"

// User identidad mínima del usuario autenticado.
type User struct {
	ID    string
	Email string
}

// Session sesión autenticada del cliente. Existe exactamente una por proceso
// (propiedad del Session Manager); ausente cuando no hay usuario autenticado.
// Los tokens vienen del backend remoto; el store en memoria los deja vacíos.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // expiración del access token; cero si no aplica
}
