package config

import (
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Placeholders que dejan las plantillas de despliegue: si la URL o la key
// siguen con estos valores se consideran ausentes y se activa el modo mock.
const (
	PlaceholderURL     = "YOUR_SUPABASE_URL"
	PlaceholderAnonKey = "YOUR_SUPABASE_ANON_KEY"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	Log      LogConfig
	Supabase SupabaseConfig
	Auth     AuthConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// LogConfig nivel de log para pkg/logger.
type LogConfig struct {
	Level string // trace, debug, info, warn, error
}

// SupabaseConfig apunta al backend remoto (PostgREST + GoTrue).
// Si falta la URL o la key (o siguen en placeholder), el Gateway usa el store en memoria.
type SupabaseConfig struct {
	URL     string // ej. https://xyzcompany.supabase.co
	AnonKey string // API key pública (anon)
}

// Configured indica si hay credenciales remotas reales (no vacías ni placeholder).
func (c SupabaseConfig) Configured() bool {
	if c.URL == "" || c.URL == PlaceholderURL {
		return false
	}
	if c.AnonKey == "" || c.AnonKey == PlaceholderAnonKey {
		return false
	}
	return true
}

// AuthConfig política de autenticación del cliente.
type AuthConfig struct {
	// AutoLogin: si el backend devuelve sesión al registrarse, iniciar sesión
	// automáticamente. Con false el registro queda pendiente de confirmación.
	AutoLogin bool
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, SUPABASE_URL, SUPABASE_ANON_KEY, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// También intenta config.env
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// Bind de variables de entorno (Viper las lee automáticamente si AutomaticEnv está activo)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "nexus-inventory"),
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
		},
		Supabase: SupabaseConfig{
			URL:     getString(v, "SUPABASE_URL", ""),
			AnonKey: getString(v, "SUPABASE_ANON_KEY", ""),
		},
		Auth: AuthConfig{
			AutoLogin: getBool(v, "AUTH_AUTO_LOGIN", true),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		switch val := v.Get(key).(type) {
		case bool:
			return val
		case string:
			b, err := strconv.ParseBool(val)
			if err != nil {
				return def
			}
			return b
		default:
			return v.GetBool(key)
		}
	}
	return def
}
