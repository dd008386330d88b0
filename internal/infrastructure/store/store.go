// Package store es el punto único de construcción del Record Store Gateway:
// decide una sola vez por proceso si el backend es Supabase o el mock en
// memoria. Nadie más en el sistema pregunta "qué backend hay detrás".
package store

import (
	"github.com/jhoicas/nexus-inventory/internal/domain/repository"
	"github.com/jhoicas/nexus-inventory/internal/infrastructure/memstore"
	"github.com/jhoicas/nexus-inventory/internal/infrastructure/supabase"
	"github.com/jhoicas/nexus-inventory/pkg/config"
	"github.com/jhoicas/nexus-inventory/pkg/logger"
)

// New selecciona el adaptador según la configuración. Credenciales ausentes o
// en placeholder no son un error: se avisa por log y se usa el modo mock.
func New(cfg config.SupabaseConfig, log *logger.Logger) repository.RecordStore {
	if !cfg.Configured() {
		log.Warn().Msg("credenciales de Supabase ausentes o placeholder; usando store en memoria (modo mock)")
		return memstore.New()
	}
	log.Info().Str("url", cfg.URL).Msg("usando backend Supabase")
	return supabase.NewClient(cfg, log)
}
