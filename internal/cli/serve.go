package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/dojoauth"
	"github.com/MrEthical07/dojoauth/guard"
	"github.com/MrEthical07/dojoauth/metrics/export/otel"
	"github.com/MrEthical07/dojoauth/metrics/export/prometheus"
	"github.com/MrEthical07/dojoauth/middleware"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var addr, routesPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve guarded pages for the stored session",
		Long: `Serve answers every page path with the guard's decision for the stored
session: 200 when the page renders, 302 to the redirect target, or 503 while the
session is loading. /metrics exposes Prometheus counters, /debug/otel the same
counters collected through OpenTelemetry, and /api/session the current session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadRoutes(routesPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.withStore(cmd, func(_ context.Context, store *dojoauth.Store) error {
				handler, closeOTel, err := newPageHandler(store, table, guard.DefaultPolicy())
				if err != nil {
					return err
				}
				defer closeOTel()

				srv := &http.Server{
					Addr:              addr,
					Handler:           handler,
					ReadHeaderTimeout: 5 * time.Second,
				}
				errCh := make(chan error, 1)
				go func() { errCh <- srv.ListenAndServe() }()
				a.logger.Info("serving", slog.String("addr", addr))

				select {
				case err := <-errCh:
					if !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil
				case <-ctx.Done():
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&routesPath, "routes", "", "YAML route table (default: built-in platform routes)")
	return cmd
}

// newPageHandler wires the guard, the session endpoint and both metric
// exporters around store.
func newPageHandler(store *dojoauth.Store, table *guard.Table, policy guard.Policy) (http.Handler, func(), error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exporter, err := otel.NewOTelExporter(provider.Meter("dojoauth"), store)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		_ = exporter.Close()
		_ = provider.Shutdown(context.Background())
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", prometheus.NewPrometheusExporter(store).Handler())
	mux.HandleFunc("GET /debug/otel", func(w http.ResponseWriter, r *http.Request) {
		var rm metricdata.ResourceMetrics
		if err := reader.Collect(r.Context(), &rm); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, otelValues(rm))
	})
	mux.HandleFunc("GET /api/session", func(w http.ResponseWriter, r *http.Request) {
		st := store.State()
		writeJSON(w, sessionView{
			Authenticated: st.Authenticated,
			Loading:       st.Loading,
			Ready:         st.Ready,
			Session:       st.Session,
		})
	})
	mux.Handle("/", middleware.Guard(store, table, policy)(http.HandlerFunc(renderPage)))
	return mux, closeFn, nil
}

type sessionView struct {
	Authenticated bool        `json:"authenticated"`
	Loading       bool        `json:"loading"`
	Ready         bool        `json:"ready"`
	Session       interface{} `json:"session"`
}

func renderPage(w http.ResponseWriter, r *http.Request) {
	st, _ := middleware.StateFromContext(r.Context())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if st.Session != nil {
		fmt.Fprintf(w, "%s as %s (%s)\n", r.URL.Path, st.Session.Email, st.Session.Role)
		return
	}
	fmt.Fprintf(w, "%s\n", r.URL.Path)
}

func otelValues(rm metricdata.ResourceMetrics) map[string]int64 {
	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] += dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] = dp.Value
				}
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
