package dashboard

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/carboncost/carboncost/internal/adapters/http/api"
	"github.com/carboncost/carboncost/internal/domain/types"
	"github.com/carboncost/carboncost/pkg/logger"
)

//go:embed templates/index.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"add": func(a, b float64) float64 { return a + b },
}

// Handler serves the dashboard pages.
type Handler struct {
	poller       *Poller
	collectorURL string
	tmpl         *template.Template
	logger       logger.Logger
}

// NewHandler parses the embedded template.
func NewHandler(poller *Poller, collectorURL string) (*Handler, error) {
	tmpl, err := template.New("index.html").Funcs(funcs).ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		poller:       poller,
		collectorURL: collectorURL,
		tmpl:         tmpl,
		logger:       logger.Get().Named("dashboard"),
	}, nil
}

// Register attaches the dashboard routes to mux.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/", api.MetricsMiddleware(h.HandleIndex, "dashboard_index"))
	mux.HandleFunc("/view.json", api.MetricsMiddleware(h.HandleViewJSON, "dashboard_view"))
	mux.HandleFunc("/refresh", api.MetricsMiddleware(h.HandleRefresh, "dashboard_refresh"))
}

type page struct {
	View         View
	Pie          PieChart
	Line         LineChart
	Bars         BarChart
	Warning      string
	RangeError   string
	CollectorURL string
	FetchedAt    time.Time
}

// HandleIndex handles GET / requests.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	p := page{CollectorURL: h.collectorURL}
	status := http.StatusOK

	stats, err := h.poller.Current(r.Context())
	p.FetchedAt = h.poller.Snapshot().FetchedAt
	if err != nil {
		p.Warning = err.Error()
	} else {
		rng, rerr := ParseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
		if rerr != nil {
			p.RangeError = rerr.Error()
			status = http.StatusBadRequest
			rng = DateRange{}
		}
		p.View = BuildView(stats, rng)
		p.Pie = NewPieChart(p.View.BadgeBreakdown)
		p.Line = NewLineChart(p.View.Daily)
		p.Bars = NewBarChart(p.View.ByMachine)
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, p); err != nil {
		h.logger.Error(r.Context(), "render dashboard", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// HandleViewJSON handles GET /view.json requests.
func (h *Handler) HandleViewJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, types.ErrorResponse{Code: "method_not_allowed", Message: http.StatusText(http.StatusMethodNotAllowed)})
		return
	}
	rng, err := ParseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Code: "bad_request", Message: err.Error()})
		return
	}
	stats, err := h.poller.Current(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, types.ErrorResponse{Code: "collector_unavailable", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, BuildView(stats, rng))
}

// HandleRefresh handles POST /refresh requests.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if err := h.poller.Refresh(r.Context()); err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Warn(r.Context(), "manual refresh failed", logger.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
