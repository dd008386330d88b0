// Package cli es la capa de presentación: un REPL de línea de comandos que
// traduce comandos del usuario a operaciones del Session Manager, el View
// Model y el formulario. Aquí no hay lógica de negocio, solo glue.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jhoicas/nexus-inventory/internal/application/dto"
	"github.com/jhoicas/nexus-inventory/internal/application/form"
	"github.com/jhoicas/nexus-inventory/internal/application/inventory"
	"github.com/jhoicas/nexus-inventory/internal/application/session"
	"github.com/jhoicas/nexus-inventory/internal/domain"
	"github.com/jhoicas/nexus-inventory/internal/domain/entity"
	"github.com/jhoicas/nexus-inventory/pkg/logger"
)

// CLI REPL de la aplicación.
type CLI struct {
	sessions *session.Manager
	inv      *inventory.ViewModel
	form     *form.State
	log      *logger.Logger

	in    *bufio.Reader
	out   io.Writer
	lines chan string
	rdErr chan error
}

// New construye el REPL sobre los streams indicados.
func New(sessions *session.Manager, inv *inventory.ViewModel, formState *form.State, log *logger.Logger, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		sessions: sessions,
		inv:      inv,
		form:     formState,
		log:      log,
		in:       bufio.NewReader(in),
		out:      out,
		lines:    make(chan string),
		rdErr:    make(chan error, 1),
	}
}

// Run ejecuta el loop de comandos hasta EOF, "exit" o cancelación del contexto.
// Una única goroutine lee stdin; tanto el loop como los prompts del formulario
// consumen del mismo canal para no competir por el reader.
func (c *CLI) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "nexus-inventory — escribe 'help' para ver los comandos")

	go func() {
		for {
			line, err := c.in.ReadString('\n')
			if err != nil {
				if line != "" {
					c.lines <- strings.TrimSpace(line)
				}
				c.rdErr <- err
				return
			}
			c.lines <- strings.TrimSpace(line)
		}
	}()

	for {
		fmt.Fprint(c.out, "> ")
		line, ok := c.readLine(ctx)
		if !ok {
			fmt.Fprintln(c.out)
			return nil
		}
		if line == "" {
			continue
		}
		if quit := c.dispatch(ctx, line); quit {
			return nil
		}
	}
}

// readLine espera la siguiente línea; false en EOF o contexto cancelado.
func (c *CLI) readLine(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case err := <-c.rdErr:
		if !errors.Is(err, io.EOF) {
			c.log.Error().Err(err).Msg("lectura de stdin falló")
		}
		return "", false
	case line := <-c.lines:
		return line, true
	}
}

func (c *CLI) dispatch(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "exit", "quit":
		return true
	case "help":
		c.printHelp()
	case "signup":
		c.handleSignUp(ctx, args)
	case "login":
		c.handleSignIn(ctx, args)
	case "logout":
		c.sessions.SignOut(ctx)
		fmt.Fprintln(c.out, "sesión cerrada")
	case "whoami":
		c.handleWhoAmI()
	case "refresh":
		c.handleRefresh(ctx)
	case "list":
		c.renderList(c.inv.DerivedList())
	case "search":
		c.inv.SetSearch(strings.Join(args, " "))
		c.renderList(c.inv.DerivedList())
	case "sort":
		c.handleSort(args)
	case "stats":
		c.renderStats(c.inv.Stats())
	case "add":
		c.handleAdd(ctx)
	case "edit":
		c.handleEdit(ctx, args)
	case "del":
		c.handleDelete(ctx, args)
	default:
		fmt.Fprintf(c.out, "comando desconocido: %s (prueba 'help')\n", cmd)
	}
	return false
}

func (c *CLI) printHelp() {
	fmt.Fprint(c.out, `comandos:
  signup <email> <password>   crear cuenta
  login <email> <password>    iniciar sesión
  logout                      cerrar sesión
  whoami                      sesión actual
  refresh                     recargar productos del backend
  list                        listado (con orden y búsqueda vigentes)
  search [texto]              filtrar por nombre o SKU (sin texto: limpiar)
  sort <name|sku|price|quantity>  ordenar; repetir invierte dirección
  stats                       totales, stock bajo y distribución por categoría
  add                         crear producto (formulario)
  edit <id>                   editar producto (formulario)
  del <id>                    eliminar producto
  exit                        salir
`)
}

func (c *CLI) handleSignUp(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.out, "uso: signup <email> <password>")
		return
	}
	authenticated, err := c.sessions.SignUp(ctx, args[0], args[1])
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}
	if !authenticated {
		fmt.Fprintln(c.out, "cuenta creada; confirma el email o usa 'login'")
		return
	}
	fmt.Fprintln(c.out, "cuenta creada, sesión iniciada")
	c.handleRefresh(ctx)
}

func (c *CLI) handleSignIn(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.out, "uso: login <email> <password>")
		return
	}
	if err := c.sessions.SignIn(ctx, args[0], args[1]); err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "sesión iniciada")
	c.handleRefresh(ctx)
}

func (c *CLI) handleWhoAmI() {
	sess := c.sessions.Current()
	if sess == nil {
		fmt.Fprintln(c.out, "sin sesión")
		return
	}
	fmt.Fprintf(c.out, "%s (%s)\n", sess.User.Email, sess.User.ID)
}

func (c *CLI) handleRefresh(ctx context.Context) {
	if err := c.inv.Refresh(ctx); err != nil {
		// La colección previa sigue intacta; solo se informa el fallo.
		fmt.Fprintf(c.out, "no se pudo recargar: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "%d productos\n", len(c.inv.Products()))
}

func (c *CLI) handleSort(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "uso: sort <name|sku|price|quantity>")
		return
	}
	key, err := dto.ParseSortKey(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}
	c.inv.SetSort(key)
	cfg := c.inv.Sort()
	dir := "asc"
	if cfg.Descending {
		dir = "desc"
	}
	fmt.Fprintf(c.out, "orden: %s %s\n", cfg.Key, dir)
	c.renderList(c.inv.DerivedList())
}

func (c *CLI) handleAdd(ctx context.Context) {
	c.form.Open(nil)
	c.fillAndSubmit(ctx)
}

func (c *CLI) handleEdit(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "uso: edit <id>")
		return
	}
	var found *entity.Product
	for _, p := range c.inv.Products() {
		if p.ID == args[0] {
			cp := p
			found = &cp
			break
		}
	}
	if found == nil {
		fmt.Fprintf(c.out, "no hay producto con id %s\n", args[0])
		return
	}
	c.form.Open(found)
	c.fillAndSubmit(ctx)
}

// fillAndSubmit pide los campos del borrador por consola (enter conserva el
// valor actual al editar) y envía el formulario. En fallo el borrador no se
// pierde, como un modal que queda abierto mostrando el error.
func (c *CLI) fillAndSubmit(ctx context.Context) {
	draft := c.form.Draft()
	draft.Name = c.prompt(ctx, "nombre", draft.Name)
	draft.SKU = c.prompt(ctx, "sku", draft.SKU)
	draft.Category = c.prompt(ctx, "categoría", draft.Category)
	draft.Price = c.prompt(ctx, "precio", draft.Price)
	draft.Quantity = c.prompt(ctx, "cantidad", draft.Quantity)
	c.form.SetDraft(draft)

	if err := c.form.Submit(ctx); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			fmt.Fprintf(c.out, "formulario inválido: %s\n", strings.Join(vErr.Fields, ", "))
		} else {
			fmt.Fprintf(c.out, "no se pudo guardar: %v\n", err)
		}
		// el formulario queda abierto con el borrador y el error disponibles
		return
	}
	fmt.Fprintln(c.out, "guardado")
}

func (c *CLI) handleDelete(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "uso: del <id>")
		return
	}
	if err := c.inv.Delete(ctx, args[0]); err != nil {
		fmt.Fprintf(c.out, "no se pudo eliminar: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "eliminado")
}

func (c *CLI) prompt(ctx context.Context, label, current string) string {
	if current != "" {
		fmt.Fprintf(c.out, "  %s [%s]: ", label, current)
	} else {
		fmt.Fprintf(c.out, "  %s: ", label)
	}
	line, ok := c.readLine(ctx)
	if !ok || line == "" {
		return current
	}
	return line
}

func (c *CLI) renderList(products []entity.Product) {
	if len(products) == 0 {
		fmt.Fprintln(c.out, "sin productos")
		return
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOMBRE\tSKU\tCATEGORÍA\tPRECIO\tCANT")
	for _, p := range products {
		marker := ""
		if p.Quantity < inventory.LowStockThreshold {
			marker = " !"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d%s\n",
			p.ID, p.Name, p.SKU, p.Category, p.Price.StringFixed(2), p.Quantity, marker)
	}
	w.Flush()
}

func (c *CLI) renderStats(stats dto.Stats) {
	fmt.Fprintf(c.out, "productos: %d\n", stats.TotalItems)
	fmt.Fprintf(c.out, "valor total: %s\n", stats.TotalValue.StringFixed(2))
	fmt.Fprintf(c.out, "stock bajo (<%d): %d\n", inventory.LowStockThreshold, stats.LowStockCount)
	if len(stats.CategoryDistribution) > 0 {
		fmt.Fprintln(c.out, "por categoría:")
		for cat, n := range stats.CategoryDistribution {
			if cat == "" {
				cat = "(sin categoría)"
			}
			fmt.Fprintf(c.out, "  %s: %d\n", cat, n)
		}
	}
}
