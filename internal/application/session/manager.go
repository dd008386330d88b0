// Package session contiene el Session Manager: la máquina de estados de
// autenticación del cliente (signed-out / signed-in). Existe exactamente una
// instancia por proceso, construida en main e inyectada donde haga falta.
package session

import (
	"context"
	"sync"

	"github.com/jhoicas/nexus-inventory/internal/domain/entity"
	"github.com/jhoicas/nexus-inventory/internal/domain/repository"
	"github.com/jhoicas/nexus-inventory/pkg/logger"
)

// Policy puntos de configuración de la máquina de estados.
type Policy struct {
	// AutoLogin: pasar a signed-in cuando el registro devuelve sesión.
	// Con false el registro siempre queda pendiente (signed-out).
	AutoLogin bool
}

// Manager dueño exclusivo de la Session. Las transiciones salen de las
// operaciones del usuario o de notificaciones externas del store (refresh,
// expiración, cierre externo).
type Manager struct {
	store  repository.RecordStore
	log    *logger.Logger
	policy Policy

	mu      sync.RWMutex
	session *entity.Session

	unsub repository.Unsubscribe
}

// NewManager construye el manager y se suscribe a los cambios externos de
// sesión. Debe llamarse Close al apagar la aplicación.
func NewManager(store repository.RecordStore, log *logger.Logger, policy Policy) *Manager {
	m := &Manager{
		store:  store,
		log:    log,
		policy: policy,
	}
	m.unsub = store.OnSessionChange(m.onExternalChange)
	return m
}

// Close cancela la suscripción a cambios de sesión.
func (m *Manager) Close() {
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
}

// SignIn transición signed-out -> signed-in. En fallo el estado no cambia y
// el error sube al llamador para mostrarse en la UI.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	sess, err := m.store.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	m.setSession(sess)
	m.log.Info().Str("email", email).Msg("sesión iniciada")
	return nil
}

// SignUp registra la cuenta. Devuelve true si además quedó autenticado
// (backend entregó sesión y la política AutoLogin lo permite); false si el
// registro quedó pendiente de confirmación.
func (m *Manager) SignUp(ctx context.Context, email, password string) (bool, error) {
	sess, err := m.store.SignUp(ctx, email, password)
	if err != nil {
		return false, err
	}
	if sess == nil || !m.policy.AutoLogin {
		m.log.Info().Str("email", email).Msg("cuenta creada; pendiente de confirmación o login manual")
		return false, nil
	}
	m.setSession(sess)
	m.log.Info().Str("email", email).Msg("cuenta creada y sesión iniciada")
	return true, nil
}

// SignOut siempre limpia el estado local, incluso si la llamada remota falla:
// la UI nunca debe quedar "atrapada" con sesión contra la voluntad del usuario.
// El fallo remoto solo se registra en el log.
func (m *Manager) SignOut(ctx context.Context) {
	err := m.store.SignOut(ctx)
	m.setSession(nil)
	if err != nil {
		m.log.Warn().Err(err).Msg("signOut remoto falló; estado local limpiado igualmente")
		return
	}
	m.log.Info().Msg("sesión cerrada")
}

// Current devuelve una copia de la sesión vigente, o nil si no hay.
func (m *Manager) Current() *entity.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil
	}
	out := *m.session
	return &out
}

// SignedIn indica si hay sesión activa.
func (m *Manager) SignedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil
}

// UserID identificador del usuario autenticado ("" si no hay sesión).
// Es el ownerRef que se adjunta a las escrituras.
func (m *Manager) UserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return ""
	}
	return m.session.User.ID
}

// onExternalChange aplica una transición forzada por el backend: refresh de
// token (sesión renovada) o expiración/cierre externo (nil).
func (m *Manager) onExternalChange(sess *entity.Session) {
	m.setSession(sess)
	if sess == nil {
		m.log.Info().Msg("sesión invalidada por el backend")
		return
	}
	m.log.Debug().Str("user", sess.User.ID).Msg("sesión renovada por el backend")
}

func (m *Manager) setSession(sess *entity.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = sess
}
