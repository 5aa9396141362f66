package main

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadqual/internal/export"
	"github.com/sells-group/leadqual/internal/model"
	"github.com/sells-group/leadqual/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the WhatsApp webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(env *env) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimitPerSec), int(cfg.Server.RateLimitPerSec)+1)

	r.Get("/health", handleHealth)
	r.Post("/webhook/whatsapp", handleWebhook(env, limiter))
	r.Get("/leads", handleLeads(env))
	r.Get("/leads/export", handleExport(env))
	r.Get("/conversations/{phone}", handleConversation(env))
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// twiml is the Twilio messaging response envelope.
type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// handleWebhook receives Twilio WhatsApp form posts and answers with TwiML.
func handleWebhook(env *env, limiter *rate.Limiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form body", http.StatusBadRequest)
			return
		}
		from := r.PostFormValue("From")
		body := r.PostFormValue("Body")
		if from == "" || body == "" {
			http.Error(w, "From and Body are required", http.StatusBadRequest)
			return
		}

		reply, err := env.Pipeline.HandleMessage(r.Context(), from, body)
		if err != nil {
			zap.L().Error("webhook turn failed",
				zap.String("from", from),
				zap.Error(err),
			)
			reply = "Sorry, something went wrong on our side. Please try again in a moment."
		}

		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusOK)
		if err := xml.NewEncoder(w).Encode(twiml{Message: reply}); err != nil {
			zap.L().Error("encode twiml", zap.Error(err))
		}
	}
}

// leadFilterFromQuery parses ?min_score=&stage=&limit=.
func leadFilterFromQuery(r *http.Request) store.LeadFilter {
	filter := store.LeadFilter{}
	if v := r.URL.Query().Get("min_score"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.MinScore = n
		}
	}
	if v := r.URL.Query().Get("stage"); v != "" {
		filter.Stage = model.Stage(v)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	return filter
}

func handleLeads(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leads, err := env.Store.ListLeads(r.Context(), leadFilterFromQuery(r))
		if err != nil {
			zap.L().Error("list leads", zap.Error(err))
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count": len(leads),
			"leads": leads,
		})
	}
}

func handleExport(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, ok := export.ParseFormat(r.URL.Query().Get("format"))
		if r.URL.Query().Get("format") == "" {
			format, ok = export.FormatCSV, true
		}
		if !ok {
			http.Error(w, `{"error":"format must be csv, json or xlsx"}`, http.StatusBadRequest)
			return
		}

		leads, err := env.Store.ListLeads(r.Context(), leadFilterFromQuery(r))
		if err != nil {
			zap.L().Error("export leads", zap.Error(err))
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}

		stamp := time.Now().UTC().Format("20060102")
		switch format {
		case export.FormatCSV:
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="leads-`+stamp+`.csv"`)
			err = export.WriteCSV(w, leads)
		case export.FormatJSON:
			w.Header().Set("Content-Type", "application/json")
			err = export.WriteJSON(w, leads)
		case export.FormatXLSX:
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", `attachment; filename="leads-`+stamp+`.xlsx"`)
			err = export.WriteXLSX(w, leads)
		}
		if err != nil {
			zap.L().Error("write export", zap.String("format", string(format)), zap.Error(err))
		}
	}
}

func handleConversation(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := chi.URLParam(r, "phone")

		state, err := env.Store.GetContactState(r.Context(), phone)
		if err != nil {
			zap.L().Error("get conversation", zap.String("phone", phone), zap.Error(err))
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		if state == nil {
			http.Error(w, `{"error":"conversation not found"}`, http.StatusNotFound)
			return
		}

		msgs, err := env.Store.RecentMessages(r.Context(), phone, cfg.Qualify.HistoryLimit)
		if err != nil {
			zap.L().Error("get messages", zap.String("phone", phone), zap.Error(err))
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"state":    state,
			"messages": msgs,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}
