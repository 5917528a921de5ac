package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/dvkrepak/coingecko-crud/internal/models"
	"github.com/dvkrepak/coingecko-crud/internal/service"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// Dashboard serves the server-rendered UI over the same service
// operations as the REST API.
type Dashboard struct {
	service *service.CryptoService
}

func NewDashboard(svc *service.CryptoService) *Dashboard {
	return &Dashboard{service: svc}
}

func (d *Dashboard) AddRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", d.handleIndex)
	mux.HandleFunc("POST /add", d.handleAdd)
	mux.HandleFunc("POST /delete/{cg_id}", d.handleDelete)
}

type dashboardData struct {
	Cryptos []models.Crypto
	Query   string
	Error   string
	Message string
	Options []string
}

func (d *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	cryptos, err := d.listFiltered(r, q)
	if err != nil {
		fmt.Printf("[WEB] Failed to list cryptos: %v\n", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	d.render(w, http.StatusOK, dashboardData{Cryptos: cryptos, Query: q})
}

func (d *Dashboard) handleAdd(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.FormValue("symbol"))
	if symbol == "" {
		d.renderError(w, r, http.StatusBadRequest, dashboardData{Error: "Symbol is required."})
		return
	}

	if _, err := d.service.Create(r.Context(), symbol); err != nil {
		fmt.Printf("[WEB] Add crypto failed: %v\n", err)

		data := dashboardData{Error: err.Error()}
		status := http.StatusBadRequest

		var amb *models.AmbiguousError
		switch {
		case errors.As(err, &amb):
			data.Error = fmt.Sprintf("Symbol %q is ambiguous.", amb.Query)
			data.Message = "Multiple coins found with this symbol. Please use full coin ID."
			data.Options = amb.OptionStrings()
		case errors.Is(err, models.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, models.ErrUnavailable):
			status = http.StatusBadGateway
		}

		d.renderError(w, r, status, data)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (d *Dashboard) handleDelete(w http.ResponseWriter, r *http.Request) {
	cgID := r.PathValue("cg_id")
	if _, err := d.service.Delete(r.Context(), cgID); err != nil {
		fmt.Printf("[WEB] Delete crypto failed: %v\n", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// listFiltered applies the case-insensitive substring filter on symbol
// and name the dashboard search box uses.
func (d *Dashboard) listFiltered(r *http.Request, q string) ([]models.Crypto, error) {
	all, err := d.service.List(r.Context())
	if err != nil {
		return nil, err
	}
	if q == "" {
		return all, nil
	}

	needle := strings.ToLower(q)
	var out []models.Crypto
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Symbol), needle) ||
			strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out, nil
}

// renderError re-renders the dashboard with the current listing plus
// the error panel, keeping the user on the page.
func (d *Dashboard) renderError(w http.ResponseWriter, r *http.Request, status int, data dashboardData) {
	cryptos, err := d.listFiltered(r, "")
	if err != nil {
		fmt.Printf("[WEB] Failed to list cryptos: %v\n", err)
	}
	data.Cryptos = cryptos
	d.render(w, status, data)
}

func (d *Dashboard) render(w http.ResponseWriter, status int, data dashboardData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := dashboardTmpl.Execute(w, data); err != nil {
		fmt.Printf("[WEB] Template render failed: %v\n", err)
	}
}
