// Package supabase implementa el RecordStore contra un backend Supabase:
// PostgREST para la colección "products" y GoTrue para autenticación.
// Es el único lugar del sistema que conoce el protocolo remoto.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nexus-inventory/internal/domain"
	"github.com/jhoicas/nexus-inventory/internal/domain/entity"
	"github.com/jhoicas/nexus-inventory/internal/domain/repository"
	"github.com/jhoicas/nexus-inventory/pkg/config"
	"github.com/jhoicas/nexus-inventory/pkg/logger"
)

var _ repository.RecordStore = (*Client)(nil)

const (
	headerAPIKey = "apikey"
	headerPrefer = "Prefer"

	preferRepresentation = "return=representation"

	restPath = "/rest/v1"
	authPath = "/auth/v1"

	// margen antes de la expiración del access token para pedir el refresh
	refreshMargin = 30 * time.Second

	defaultTimeout = 15 * time.Second
)

// Client adaptador remoto del RecordStore. Mantiene la sesión vigente para
// firmar las peticiones y programa el refresh del token; los cambios que no
// inicia el usuario (refresh, expiración) se publican vía OnSessionChange.
type Client struct {
	baseURL string
	anonKey string
	log     *logger.Logger

	mu      sync.Mutex
	session *entity.Session
	refresh *time.Timer
	subs    map[int]func(*entity.Session)
	nextSub int
}

// NewClient construye el adaptador con las credenciales remotas.
func NewClient(cfg config.SupabaseConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL: cfg.URL,
		anonKey: cfg.AnonKey,
		log:     log,
		subs:    make(map[int]func(*entity.Session)),
	}
}

// OnSessionChange registra fn para refresh, expiración o cierre de sesión.
func (c *Client) OnSessionChange(fn func(*entity.Session)) repository.Unsubscribe {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// do ejecuta una petición HTTP firmada (apikey + bearer) y devuelve status y body.
// El bearer es el access token de la sesión vigente, o la anon key si no hay sesión.
func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.Set(headerAPIKey, c.anonKey)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+c.bearer())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		a.JSON(body)
	}

	timeout := defaultTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	a.Timeout(timeout)

	if err := a.Parse(); err != nil {
		return 0, nil, fmt.Errorf("parsear petición: %w", err)
	}

	code, respBody, errs := a.Bytes()
	if len(errs) > 0 {
		return 0, nil, errs[0]
	}
	return code, respBody, nil
}

func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil && c.session.AccessToken != "" {
		return c.session.AccessToken
	}
	return c.anonKey
}

// storeError traduce una respuesta de error HTTP al StoreError del dominio.
// PostgREST responde {message, code}; GoTrue usa {msg} o {error_description}.
func storeError(op string, status int, body []byte) error {
	var payload struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Code             string `json:"code"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Message
	if msg == "" {
		msg = payload.Msg
	}
	if msg == "" {
		msg = payload.ErrorDescription
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}

	var sentinel error
	switch status {
	case fiber.StatusUnauthorized, fiber.StatusForbidden:
		sentinel = domain.ErrUnauthorized
	case fiber.StatusNotFound:
		sentinel = domain.ErrNotFound
	}
	return domain.NewStoreError(op, payload.Code, msg, sentinel)
}

func transportError(op string, err error) error {
	return domain.NewStoreError(op, "", "fallo de transporte", err)
}
