// Package main is the entry point for the mission simulation server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"cablerun/internal/domain/crew"
	"cablerun/internal/domain/hazard"
	"cablerun/internal/domain/route"
	"cablerun/internal/engine"
	"cablerun/internal/events"
	"cablerun/internal/infra/ai"
	"cablerun/internal/infra/storage"
	"cablerun/internal/network"
	"cablerun/internal/platform/config"
	"cablerun/internal/platform/logger"
	"cablerun/internal/platform/metrics"
	"cablerun/internal/wardroom"
)

func engineConfig() engine.Config {
	return engine.Config{
		TickInterval:        config.GetDuration("engine.tickIntervalMs"),
		TimeScaleMin:        config.GetFloat("engine.timeScaleMin"),
		TimeScaleMax:        config.GetFloat("engine.timeScaleMax"),
		MinutesAcceleration: config.GetFloat("engine.minutesAcceleration"),

		MaxLateralOffset:      config.GetFloat("helm.maxLateralOffset"),
		CorrectionGain:        config.GetFloat("helm.correctionGain"),
		TurbulenceAmplitude:   config.GetFloat("helm.turbulenceAmplitude"),
		MaxHeadingDeviation:   config.GetFloat("helm.maxHeadingDeviation"),
		OffCourseBand:         config.GetFloat("helm.offCourseBand"),
		OffCourseLimitSeconds: config.GetFloat("helm.offCourseLimitSeconds"),

		ShiftLengthHours: config.GetFloat("crew.shiftLengthHours"),

		TankCapacityLiters: config.GetFloat("fuel.tankCapacityLiters"),
		BaseBurnPerHour:    config.GetFloat("fuel.baseBurnPerHour"),
		BurnPerUnitHour:    config.GetFloat("fuel.burnPerUnitHour"),
		StressMultiplier:   config.GetFloat("fuel.stressMultiplier"),
	}
}

func newLLMProvider(budgetGate *ai.BudgetGate) ai.LLMProvider {
	model := config.GetString("llm.model")
	switch config.GetString("llm.provider") {
	case "anthropic":
		return ai.NewAnthropicProvider("", model, budgetGate)
	default:
		return ai.NewOpenAIProvider("", model, budgetGate)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// commandHandler wraps a parameterless engine command as a POST endpoint.
func commandHandler(run func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := run(); err != nil {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func main() {
	if err := config.LoadOrDefaults("."); err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	appLogger := logger.NewLoggerWithLevel(config.GetString("logLevel"))
	appLogger.Info("Initializing mission simulation server...")

	dbPath := config.GetString("db.path")
	appLogger.Info("Initializing SQLite database %q...", dbPath)
	db, err := storage.InitSQLite(dbPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: %v", err)
		os.Exit(1)
	}
	defer db.Close()
	eventRepo := storage.NewSQLiteEventRepository(db)
	logRepo := storage.NewSQLiteLogRepository(db)

	appLogger.Info("Bootstrapping event log...")
	eventLog := events.NewEventLog(storage.NewEventPersisterAdapter(eventRepo))

	appLogger.Info("Bootstrapping mission engine...")
	missionEngine := engine.NewEngine(engineConfig(), crew.DefaultRoster(), eventLog, appLogger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go missionEngine.Run(ctx)

	appLogger.Info("Bootstrapping WebSocket hub...")
	hub := network.NewHub(missionEngine, appLogger)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	appLogger.Info("Bootstrapping wardroom narrative...")
	budgetGate := ai.NewBudgetGate(
		config.GetFloat("llm.dailyBudgetUSD"),
		config.GetFloat("llm.monthlyBudgetUSD"),
	)
	llmProvider := newLLMProvider(budgetGate)
	mind := wardroom.NewMind(
		missionEngine, eventLog, llmProvider,
		storage.NewThoughtStoreAdapter(logRepo), appLogger,
		time.Duration(config.GetInt("narrative.heartbeatMinutes"))*time.Minute,
		time.Duration(config.GetInt("narrative.timeoutSeconds"))*time.Second,
	)
	go mind.Run(ctx)

	// API routes
	http.HandleFunc("/ws", hub.ServeWS)

	http.HandleFunc("/api/telemetry", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, missionEngine.Snapshot())
	})

	http.HandleFunc("/api/routes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, route.Catalog())
	})

	http.HandleFunc("/api/hazards", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hazard.Types())
	})

	http.HandleFunc("/api/mission/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			RouteID string `json:"route_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if err := missionEngine.StartMission(req.RouteID); err != nil {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeJSON(w, http.StatusOK, missionEngine.Snapshot())
	})

	http.HandleFunc("/api/mission/pause", commandHandler(missionEngine.Pause))
	http.HandleFunc("/api/mission/resume", commandHandler(missionEngine.Resume))
	http.HandleFunc("/api/mission/restart", commandHandler(missionEngine.Restart))

	http.HandleFunc("/api/mission/timescale", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			TimeScale float64 `json:"time_scale"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		applied := missionEngine.SetTimeScale(req.TimeScale)
		writeJSON(w, http.StatusOK, map[string]float64{"time_scale": applied})
	})

	http.HandleFunc("/api/hazard", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Type string `json:"hazard_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		obstacle, err := missionEngine.SpawnHazard(hazard.Type(req.Type))
		if err != nil {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeJSON(w, http.StatusOK, obstacle)
	})

	http.HandleFunc("/api/crew/directive", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			MemberID  string `json:"member_id"`
			Directive string `json:"directive"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if err := missionEngine.EditDirective(req.MemberID, req.Directive); err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	http.HandleFunc("/api/crew/alliances", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			MemberID  string   `json:"member_id"`
			Alliances []string `json:"alliances"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if err := missionEngine.EditAlliances(req.MemberID, req.Alliances); err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	http.HandleFunc("/api/crew/units", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			MemberID string `json:"member_id"`
			Units    int    `json:"units"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if err := missionEngine.SetUnits(req.MemberID, req.Units); err != nil {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	http.HandleFunc("/api/log", func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if q := r.URL.Query().Get("limit"); q != "" {
			if n, err := strconv.Atoi(q); err == nil && n > 0 {
				limit = n
			}
		}
		entries, err := logRepo.GetRecent(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	})

	http.HandleFunc("/api/events", func(w http.ResponseWriter, r *http.Request) {
		var (
			stored []storage.StoredEvent
			err    error
		)
		if typ := r.URL.Query().Get("type"); typ != "" {
			stored, err = eventRepo.GetByEventType(r.Context(), typ)
		} else {
			stored, err = eventRepo.GetAll(r.Context())
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, stored)
	})

	http.HandleFunc("/metrics", metrics.Handler())
	http.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())

	addr := config.GetString("server.addr")
	server := &http.Server{Addr: addr}
	go func() {
		appLogger.Info("HTTP API & WS server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed: %v", err)
			os.Exit(1)
		}
	}()

	appLogger.Info("Server running. Press Ctrl+C to exit.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}
