// crmdev is a local stand-in for the TableCRM API: the seven reference/list
// endpoints plus docs_sales, served from in-memory fixtures. It exists so the
// order form can be exercised end to end without a real cashbox token.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abdymaleeq925/tablecrm/internal/crm"
	"github.com/abdymaleeq925/tablecrm/pkg/logging"
	"github.com/abdymaleeq925/tablecrm/pkg/metrics"
)

type server struct {
	token   string
	log     *zap.Logger
	metrics *metrics.ServerMetrics

	mu        sync.Mutex
	nextDocID int

	contragents   []crm.Contragent
	payboxes      []crm.Paybox
	organizations []crm.Organization
	warehouses    []crm.Warehouse
	priceTypes    []crm.PriceType
	prices        []crm.PriceItem
}

func newServer(token string, log *zap.Logger, m *metrics.ServerMetrics) *server {
	return &server{
		token:     token,
		log:       log,
		metrics:   m,
		nextDocID: 1000,
		contragents: []crm.Contragent{
			{ID: 1, Name: "Aliya Bekova", Phone: "+77010000001"},
			{ID: 2, Name: "Marat Akhmetov", Phone: "+77010000002"},
			{ID: 3, Name: "Marat A. (work)", Phone: "+77010000002"},
		},
		payboxes: []crm.Paybox{
			{ID: 10, Name: "Cash desk"},
			{ID: 11, Name: "Bank account"},
		},
		organizations: []crm.Organization{
			{ID: 20, ShortName: "Demo LLC", FullName: "Demo Trading LLC"},
		},
		warehouses: []crm.Warehouse{
			{ID: 30, Name: "Main warehouse"},
			{ID: 31, Name: "Showroom"},
		},
		priceTypes: []crm.PriceType{
			{ID: 40, Name: "Retail"},
			{ID: 41, Name: "Wholesale"},
		},
		prices: []crm.PriceItem{
			{ID: 100, NomenclatureID: 50, NomenclatureName: "Widget", Price: 100},
			{ID: 101, NomenclatureID: 51, NomenclatureName: "Gadget", Price: 249.90},
			{ID: 102, NomenclatureID: 52, NomenclatureName: "Cable", Price: 15.50},
		},
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/api/v1/contragents/", s.instrument("contragents", s.handleContragents))
	mux.HandleFunc("/api/v1/payboxes/", s.instrument("payboxes", s.listHandler(func() (int, any) {
		return len(s.payboxes), s.payboxes
	})))
	mux.HandleFunc("/api/v1/organizations/", s.instrument("organizations", s.listHandler(func() (int, any) {
		return len(s.organizations), s.organizations
	})))
	mux.HandleFunc("/api/v1/warehouses/", s.instrument("warehouses", s.listHandler(func() (int, any) {
		return len(s.warehouses), s.warehouses
	})))
	mux.HandleFunc("/api/v1/price_types/", s.instrument("price_types", s.listHandler(func() (int, any) {
		return len(s.priceTypes), s.priceTypes
	})))
	mux.HandleFunc("/api/v1/prices/", s.instrument("prices", s.listHandler(func() (int, any) {
		return len(s.prices), s.prices
	})))
	mux.HandleFunc("/api/v1/docs_sales/", s.instrument("docs_sales", s.handleDocsSales))
	return mux
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *server) instrument(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		if s.metrics != nil {
			s.metrics.Observe(name, strconv.Itoa(sw.status), time.Since(start))
		}
		s.log.Info("request",
			zap.String("handler", name),
			zap.String("method", r.Method),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)))
	}
}

func (s *server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("token") != s.token {
		writeJSON(w, http.StatusForbidden, map[string]any{"detail": "Invalid token"})
		return false
	}
	return true
}

func (s *server) handleContragents(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	result := s.contragents
	if phone := strings.TrimSpace(r.URL.Query().Get("phone")); phone != "" {
		result = nil
		for _, c := range s.contragents {
			if c.Phone == phone {
				result = append(result, c)
			}
		}
		if result == nil {
			result = []crm.Contragent{}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(result), "result": result})
}

func (s *server) listHandler(data func() (int, any)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(w, r) {
			return
		}
		count, result := data()
		writeJSON(w, http.StatusOK, map[string]any{"count": count, "result": result})
	}
}

func (s *server) handleDocsSales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "method not allowed"})
		return
	}
	if !s.authorized(w, r) {
		return
	}
	var batch []crm.SaleDoc
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "invalid json"})
		return
	}
	if len(batch) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "empty batch"})
		return
	}
	var created []crm.CreatedDoc
	for _, doc := range batch {
		if len(doc.Goods) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "goods must not be empty"})
			return
		}
		s.mu.Lock()
		id := s.nextDocID
		s.nextDocID++
		s.mu.Unlock()
		created = append(created, crm.CreatedDoc{ID: id, Number: uuid.NewString()})
		s.log.Info("sale document created",
			zap.Int("doc_id", id),
			zap.Int("goods", len(doc.Goods)),
			zap.Bool("process", doc.Process))
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": created})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func main() {
	port := getenv("PORT", "8080")
	token := getenv("CRMDEV_TOKEN", "devtoken")

	log, err := logging.New(logging.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	srv := newServer(token, log, metrics.NewServerMetrics(nil))
	log.Info("crmdev listening", zap.String("port", port), zap.String("token", token))
	if err := http.ListenAndServe(":"+port, srv.routes()); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
