package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/aure/amberctl/internal/api"
	"github.com/aure/amberctl/internal/db"
)

var servePort int
var requireAuth bool
var authTokens []string
var bindAll bool
var corsOrigins []string

func tokenAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth if not required or no tokens configured
		if !requireAuth || len(authTokens) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		// Loopback peers skip the token. The Host header is client-controlled.
		if isLoopback(r.RemoteAddr) {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
			if token == "" {
				http.Error(w, "Unauthorized: X-Auth-Token header or token query parameter required", http.StatusUnauthorized)
				return
			}
		}

		valid := false
		for _, t := range authTokens {
			if t == token {
				valid = true
				break
			}
		}

		if !valid {
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// apiServer exposes the domain queries as a small local JSON API. The site
// id is resolved once when the server starts.
type apiServer struct {
	client   *api.Client
	database *db.DB
	siteID   string
	state    string
	registry *prometheus.Registry
}

func newAPIServer(client *api.Client, database *db.DB, siteID, state string) *apiServer {
	return &apiServer{
		client:   client,
		database: database,
		siteID:   siteID,
		state:    state,
		registry: prometheus.NewRegistry(),
	}
}

func (s *apiServer) routes() http.Handler {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "amberctl_api_requests_total",
		Help: "Requests served by the local API, by route and status code.",
	}, []string{"route", "code", "method"})
	s.registry.MustRegister(requests)

	r := mux.NewRouter()
	handle := func(path string, h http.HandlerFunc) {
		counter := requests.MustCurryWith(prometheus.Labels{"route": path})
		r.Handle(path, promhttp.InstrumentHandlerCounter(counter, h)).Methods(http.MethodGet)
	}

	handle("/api/site", s.handleSite)
	handle("/api/prices/{window}", s.handlePrices)
	handle("/api/renewables/{window}", s.handleRenewables)
	handle("/api/usage", s.handleUsage)
	handle("/api/spike-status", s.handleSpikeStatus)
	handle("/api/history", s.handleHistory)

	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return r
}

func (s *apiServer) handleSite(w http.ResponseWriter, r *http.Request) {
	sites, err := s.client.SiteData(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

func (s *apiServer) handlePrices(w http.ResponseWriter, r *http.Request) {
	win, err := api.ParseWindow(mux.Vars(r)["window"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	prices, err := s.client.Prices(r.Context(), s.siteID, win)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prices)
}

func (s *apiServer) handleRenewables(w http.ResponseWriter, r *http.Request) {
	win, err := api.ParseWindow(mux.Vars(r)["window"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.state == "" {
		http.Error(w, "no state configured", http.StatusServiceUnavailable)
		return
	}
	records, err := s.client.Renewables(r.Context(), s.state, win)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *apiServer) handleUsage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	usage, err := s.client.UsageByDate(r.Context(), s.siteID, q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

func (s *apiServer) handleSpikeStatus(w http.ResponseWriter, r *http.Request) {
	msg, err := s.client.SpikeStatus(r.Context(), s.siteID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.database == nil {
		http.Error(w, "archive not available", http.StatusServiceUnavailable)
		return
	}
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = n
	}
	prices, err := s.database.GetPriceHistory(time.Now().AddDate(0, 0, -days))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if prices == nil {
		prices = []db.ArchivedPrice{}
	}
	writeJSON(w, http.StatusOK, prices)
}

type errorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus string `json:"upstream_status,omitempty"`
	UpstreamBody   string `json:"upstream_body,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var se *api.StatusError
	var te *api.TransportError
	switch {
	case errors.Is(err, api.ErrInvalidDateFormat):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &se):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "upstream request failed", UpstreamStatus: se.Status, UpstreamBody: se.Body})
	case errors.As(err, &te):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encoding response", slog.Any("error", err))
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve Amber data as a local JSON API",
	Long: `Start a local HTTP server exposing:

  GET /api/site
  GET /api/prices/{current|previous|next}
  GET /api/renewables/{current|previous|next}
  GET /api/usage?start=yyyy-mm-dd&end=yyyy-mm-dd
  GET /api/spike-status
  GET /api/history?days=N
  GET /metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		if requireAuth || bindAll {
			authTokens = append([]string{}, cfg.AuthTokens...)
			if path, err := tokenFilePath(); err == nil {
				saved, err := loadTokenFile(path)
				if err != nil {
					return fmt.Errorf("reading token file: %w", err)
				}
				authTokens = append(authTokens, saved...)
			}
			if len(authTokens) == 0 {
				return fmt.Errorf("external access requires authentication; set AMBER_AUTH_TOKENS or use 'amberctl token generate --save'")
			}
			requireAuth = true
		}

		bindHost := "127.0.0.1"
		if bindAll {
			bindHost = "0.0.0.0"
		}

		ctx := cmd.Context()
		siteID, err := lookupSiteID(ctx, client)
		if err != nil {
			return err
		}

		database, err := db.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		var handler http.Handler = newAPIServer(client, database, siteID, cfg.State).routes()
		handler = tokenAuth(handler)
		if len(corsOrigins) > 0 {
			handler = cors.New(cors.Options{
				AllowedOrigins: corsOrigins,
				AllowedMethods: []string{http.MethodGet},
				AllowedHeaders: []string{"X-Auth-Token"},
			}).Handler(handler)
		}
		handler = handlers.CombinedLoggingHandler(cmd.ErrOrStderr(), handler)
		handler = handlers.RecoveryHandler()(handler)

		addr := fmt.Sprintf("%s:%d", bindHost, servePort)
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		logger.Info("starting server", slog.String("addr", "http://"+addr), slog.Bool("auth", requireAuth), slog.Int("tokens", len(authTokens)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&requireAuth, "auth", false, "Require token authentication (reads AMBER_AUTH_TOKENS or ~/.amberctl/tokens)")
	serveCmd.Flags().BoolVar(&bindAll, "bind-all", false, "Bind to all interfaces (0.0.0.0) - requires auth token")
	serveCmd.Flags().StringSliceVar(&corsOrigins, "cors-origin", nil, "Allowed CORS origins for browser dashboards")
	rootCmd.AddCommand(serveCmd)
}
