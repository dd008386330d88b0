package supabase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nexus-inventory/internal/domain"
	"github.com/jhoicas/nexus-inventory/internal/domain/entity"
	"github.com/jhoicas/nexus-inventory/pkg/jwt"
)

// authResponse respuesta de GoTrue para signup/token. En signup con
// confirmación de email pendiente no viene access_token.
type authResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         authUser `json:"user"`
}

type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registra la cuenta. Si el backend exige confirmación por email,
// devuelve (nil, nil): la cuenta existe pero aún no hay sesión.
func (c *Client) SignUp(ctx context.Context, email, password string) (*entity.Session, error) {
	const op = "signUp"

	status, body, err := c.do(ctx, fiber.MethodPost, authPath+"/signup", credentials{email, password}, nil)
	if err != nil {
		return nil, transportError(op, err)
	}
	if status != fiber.StatusOK {
		if status == fiber.StatusUnprocessableEntity || status == fiber.StatusConflict {
			return nil, domain.NewStoreError(op, "", "el email ya está registrado", domain.ErrEmailAlreadyExists)
		}
		return nil, storeError(op, status, body)
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.NewStoreError(op, "", "respuesta ilegible del backend", err)
	}
	if resp.AccessToken == "" {
		// política del backend: confirmar email antes de autenticar
		return nil, nil
	}

	sess := c.buildSession(resp)
	c.setSession(sess)
	return sess, nil
}

// SignIn autentica con email/password (grant password de GoTrue).
func (c *Client) SignIn(ctx context.Context, email, password string) (*entity.Session, error) {
	const op = "signIn"

	path := authPath + "/token?grant_type=password"
	status, body, err := c.do(ctx, fiber.MethodPost, path, credentials{email, password}, nil)
	if err != nil {
		return nil, transportError(op, err)
	}
	if status != fiber.StatusOK {
		if status == fiber.StatusBadRequest || status == fiber.StatusUnauthorized {
			return nil, domain.NewStoreError(op, "", "email o password incorrectos", domain.ErrInvalidCredentials)
		}
		return nil, storeError(op, status, body)
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.NewStoreError(op, "", "respuesta ilegible del backend", err)
	}

	sess := c.buildSession(resp)
	c.setSession(sess)
	return sess, nil
}

// SignOut invalida la sesión en GoTrue y descarta la local. Los suscriptores
// reciben nil, igual que ante un cierre externo.
func (c *Client) SignOut(ctx context.Context) error {
	const op = "signOut"

	status, body, err := c.do(ctx, fiber.MethodPost, authPath+"/logout", nil, nil)

	c.setSession(nil)
	c.publish(nil)

	if err != nil {
		return transportError(op, err)
	}
	if status != fiber.StatusNoContent && status != fiber.StatusOK {
		return storeError(op, status, body)
	}
	return nil
}

// buildSession arma la sesión a partir de la respuesta de GoTrue. Los claims
// del JWT mandan sobre los campos sueltos de la respuesta cuando están.
func (c *Client) buildSession(resp authResponse) *entity.Session {
	sess := &entity.Session{
		User:         entity.User{ID: resp.User.ID, Email: resp.User.Email},
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresIn > 0 {
		sess.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	if claims, err := jwt.Decode(resp.AccessToken); err == nil {
		sess.User.ID = claims.UserID()
		if claims.Email != "" {
			sess.User.Email = claims.Email
		}
		if exp := claims.Expiry(); !exp.IsZero() {
			sess.ExpiresAt = exp
		}
	}
	return sess
}

// setSession fija la sesión vigente y (re)programa el refresh del token.
func (c *Client) setSession(sess *entity.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = sess
	if c.refresh != nil {
		c.refresh.Stop()
		c.refresh = nil
	}
	if sess == nil || sess.RefreshToken == "" || sess.ExpiresAt.IsZero() {
		return
	}

	wait := time.Until(sess.ExpiresAt) - refreshMargin
	if wait < 0 {
		wait = 0
	}
	c.refresh = time.AfterFunc(wait, c.refreshSession)
}

// refreshSession canjea el refresh token por una sesión nueva. El resultado
// (sesión renovada o expiración definitiva) se publica a los suscriptores.
func (c *Client) refreshSession() {
	c.mu.Lock()
	var token string
	if c.session != nil {
		token = c.session.RefreshToken
	}
	c.mu.Unlock()
	if token == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	path := authPath + "/token?grant_type=refresh_token"
	payload := map[string]string{"refresh_token": token}
	status, body, err := c.do(ctx, fiber.MethodPost, path, payload, nil)

	if err != nil || status != fiber.StatusOK {
		c.log.Warn().Err(err).Int("status", status).Msg("refresh de sesión falló; sesión expirada")
		c.setSession(nil)
		c.publish(nil)
		return
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.AccessToken == "" {
		c.log.Warn().Err(err).Msg("respuesta de refresh ilegible; sesión expirada")
		c.setSession(nil)
		c.publish(nil)
		return
	}

	sess := c.buildSession(resp)
	c.setSession(sess)
	c.publish(sess)
}

// publish notifica a los suscriptores fuera del lock.
func (c *Client) publish(sess *entity.Session) {
	c.mu.Lock()
	fns := make([]func(*entity.Session), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(sess)
	}
}
