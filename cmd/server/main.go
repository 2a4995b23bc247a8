package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/akbarpn/shower-o-meter/internal/adapters"
	"github.com/akbarpn/shower-o-meter/internal/cache"
	"github.com/akbarpn/shower-o-meter/internal/database"
	"github.com/akbarpn/shower-o-meter/internal/errors"
	"github.com/akbarpn/shower-o-meter/internal/history"
	"github.com/akbarpn/shower-o-meter/internal/hygiene"
	"github.com/akbarpn/shower-o-meter/internal/monitoring"
	"github.com/akbarpn/shower-o-meter/internal/ratelimit"
	"github.com/akbarpn/shower-o-meter/internal/security"
	"github.com/akbarpn/shower-o-meter/internal/types"
)

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment with defaults
	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	port := getEnvOrDefault("PORT", "8080")
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := getEnvIntOrDefault("REDIS_DB", 0)
	bmkgAreaCode := getEnvOrDefault("BMKG_AREA_CODE", "31.71.07.1002")
	waqiCity := getEnvOrDefault("WAQI_CITY", "jakarta")
	waqiToken := os.Getenv("WAQI_TOKEN")
	pollInterval := getEnvDurationOrDefault("ENV_POLL_INTERVAL", 30*time.Minute)
	evalInterval := getEnvDurationOrDefault("EVAL_INTERVAL", time.Hour)

	// Initialize database and repository
	db, err := database.NewDB(dataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	if err := repo.SeedCatalog(); err != nil {
		slog.Error("Failed to seed activity catalog", "error", err)
		os.Exit(1)
	}

	// Initialize result history service
	historyService := history.NewService(db)

	// Initialize monitoring system
	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	// Initialize environment adapters
	weatherAdapter := adapters.NewWeatherAdapter("", bmkgAreaCode, appMetrics)
	airAdapter := adapters.NewAirQualityAdapter("", waqiCity, waqiToken, appMetrics)

	// Initialize Redis-backed rate limiting (falls back to in-memory when
	// REDIS_ADDR is unset or Redis is unreachable)
	redisClient, err := ratelimit.NewRedisClient(redisAddr, redisPassword, redisDB)
	if err != nil {
		slog.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", err)
	}
	rateLimitConfig := ratelimit.DefaultConfig()
	rateLimiter := ratelimit.NewRateLimiter(redisClient, rateLimitConfig, appMetrics)

	r := gin.New()

	// CORS for browser clients (dashboard runs on a separate origin)
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(getEnvOrDefault("CORS_ORIGINS", "http://localhost:5173"), ",")
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	// Add monitoring middleware first (to capture all requests)
	r.Use(monitoring.MonitoringMiddleware(appMetrics, appLogger))

	// Add error handling middleware
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	// Security middleware setup
	securityConfig := security.DefaultSecurityConfig()
	securityMiddleware := security.NewSecurityMiddleware(securityConfig)
	r.Use(securityMiddleware.SecurityHeaders)
	r.Use(securityMiddleware.RequestTimeout)
	r.Use(securityMiddleware.ValidateContentType)
	r.Use(securityMiddleware.LimitBodySize)

	// Rate limiting
	r.Use(rateLimiter.IPRateLimitMiddleware())

	// Response cache for evaluation requests. Every fact ingest clears it so
	// a recommendation never outlives the data it was computed from.
	appCache := cache.NewCache(5 * time.Minute)

	// runEvaluation computes a recommendation from the current stored facts
	// and appends it to the result history.
	runEvaluation := func(now time.Time) (hygiene.Result, error) {
		snap, err := repo.LoadSnapshot()
		if err != nil {
			return hygiene.Result{}, err
		}
		res := hygiene.Evaluate(snap, now)
		if _, err := historyService.Record(res); err != nil {
			return hygiene.Result{}, err
		}
		appMetrics.IncrementEvaluation()
		return res, nil
	}

	// ingested is the shared bookkeeping after any fact write.
	ingested := func(factKind, id string, recordedAt time.Time) {
		appMetrics.IncrementFactsIngested()
		appLogger.IngestLogger(factKind, id, recordedAt)
		appCache.Clear()
	}

	r.POST("/activities", func(c *gin.Context) {
		var req types.LogActivityRequest
		if err := c.BindJSON(&req); err != nil {
			appErr := errors.NewValidationError(err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		loggedAt, err := parseTimeOrNow(req.LoggedAt)
		if err != nil {
			appErr := errors.NewValidationError("logged_at must be RFC3339")
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		row, err := repo.InsertActivity(req.ActivityID, req.DurationMinutes, loggedAt)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		ingested("activity", row.ID, loggedAt)
		c.JSON(http.StatusCreated, row)
	})

	r.POST("/showers", func(c *gin.Context) {
		var req types.LogShowerRequest
		if err := c.BindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			appErr := errors.NewValidationError(err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		showeredAt, err := parseTimeOrNow(req.ShoweredAt)
		if err != nil {
			appErr := errors.NewValidationError("showered_at must be RFC3339")
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		row, err := repo.InsertShower(showeredAt)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		ingested("shower", row.ID, showeredAt)
		c.JSON(http.StatusCreated, row)
	})

	r.POST("/environment/weather", func(c *gin.Context) {
		var req types.WeatherReadingRequest
		if err := c.BindJSON(&req); err != nil {
			appErr := errors.NewValidationError(err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		observedAt, err := parseTimeOrNow(req.ObservedAt)
		if err != nil {
			appErr := errors.NewValidationError("observed_at must be RFC3339")
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		row, err := repo.InsertWeather(observedAt, req.Temperature, req.Humidity)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		ingested("weather", row.ID, observedAt)
		c.JSON(http.StatusCreated, row)
	})

	r.POST("/environment/air", func(c *gin.Context) {
		var req types.AirReadingRequest
		if err := c.BindJSON(&req); err != nil {
			appErr := errors.NewValidationError(err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		observedAt, err := parseTimeOrNow(req.ObservedAt)
		if err != nil {
			appErr := errors.NewValidationError("observed_at must be RFC3339")
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		row, err := repo.InsertAir(observedAt, req.AQI)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		ingested("air", row.ID, observedAt)
		c.JSON(http.StatusCreated, row)
	})

	// Evaluation endpoint. Cached responses short-circuit in the cache
	// middleware; the endpoint limiter is tighter than the global IP limit.
	r.POST("/evaluate",
		rateLimiter.EndpointRateLimitMiddleware("evaluate", rateLimitConfig.EvaluateLimitPerMin),
		gin.HandlerFunc(appCache.Middleware(appMetrics)),
		func(c *gin.Context) {
			var req types.EvaluateRequest
			if err := c.BindJSON(&req); err != nil && c.Request.ContentLength > 0 {
				appErr := errors.NewValidationError(err.Error())
				errors.LogError(c, appErr)
				c.JSON(appErr.HTTPStatus, appErr)
				return
			}

			now, err := parseTimeOrNow(req.Now)
			if err != nil {
				appErr := errors.NewValidationError("now must be RFC3339")
				errors.LogError(c, appErr)
				c.JSON(appErr.HTTPStatus, appErr)
				return
			}

			start := time.Now()
			res, err := runEvaluation(now)
			if err != nil {
				appErr := errors.ToAppError(err)
				errors.LogError(c, appErr)
				c.JSON(appErr.HTTPStatus, appErr)
				return
			}

			appLogger.EvaluationLogger(res.FinalScore, res.Confidence, res.Recommendation, time.Since(start), false)
			c.JSON(http.StatusOK, res)
		})

	r.GET("/activities/catalog", func(c *gin.Context) {
		catalog, err := repo.ListCatalog()
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		c.JSON(http.StatusOK, gin.H{"catalog": catalog, "count": len(catalog)})
	})

	r.POST("/activities/catalog", func(c *gin.Context) {
		var req types.CatalogUpsertRequest
		if err := c.BindJSON(&req); err != nil {
			appErr := errors.NewValidationError(err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		entry := hygiene.CatalogEntry{
			ActivityID:      req.ActivityID,
			Name:            req.Name,
			MetabolicWeight: req.MetabolicWeight,
			Category:        strings.ToLower(strings.TrimSpace(req.Category)),
		}
		if entry.ActivityID == "" {
			entry.ActivityID = uuid.New().String()
		}

		if err := repo.UpsertCatalogEntry(entry); err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		// A weight change alters scores for already-logged activities too.
		appCache.Clear()
		c.JSON(http.StatusOK, entry)
	})

	r.GET("/preferences", func(c *gin.Context) {
		overrides, err := repo.ListPreferences()
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"overrides": overrides,
			"resolved":  hygiene.ResolvePreferences(overrides),
		})
	})

	r.PUT("/preferences/:name", func(c *gin.Context) {
		name := c.Param("name")
		if !isKnownPreference(name) {
			appErr := errors.NewValidationError("unknown preference parameter: " + name)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		var req types.PreferenceUpdateRequest
		if err := c.BindJSON(&req); err != nil {
			appErr := errors.NewValidationError(err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		if err := repo.SetPreference(name, req.Value); err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		appCache.Clear()
		overrides, _ := repo.ListPreferences()
		c.JSON(http.StatusOK, gin.H{
			"parameter": name,
			"value":     req.Value,
			"resolved":  hygiene.ResolvePreferences(overrides),
		})
	})

	r.GET("/results/latest", func(c *gin.Context) {
		row, err := historyService.Latest()
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		if row == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no evaluations recorded yet"})
			return
		}
		c.JSON(http.StatusOK, row)
	})

	r.GET("/results", func(c *gin.Context) {
		limit := 0
		if limitStr := c.Query("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil {
				limit = l
			}
		}

		response, err := historyService.List(limit)
		if err != nil {
			appLogger.APIErrorLogger(err, "GET", "/results", c.ClientIP(), http.StatusInternalServerError)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve results"})
			return
		}
		c.JSON(http.StatusOK, response)
	})

	r.GET("/results/summary", func(c *gin.Context) {
		period := c.DefaultQuery("period", "daily")
		summary, err := historyService.Summarize(period)
		if err != nil {
			appErr := errors.NewValidationError(err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		c.JSON(http.StatusOK, summary)
	})

	r.GET("/health", func(c *gin.Context) {
		healthResponse := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
			"metrics":   appMetrics.GetStats(),
		}

		if err := db.Ping(); err != nil {
			healthResponse["status"] = "degraded"
			healthResponse["database"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, healthResponse)
			return
		}

		if redisClient != nil && redisClient.IsEnabled() {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := redisClient.HealthCheck(ctx); err != nil {
				healthResponse["redis"] = "unreachable, in-memory fallback active"
			} else {
				healthResponse["redis"] = "ok"
			}
		}

		c.JSON(http.StatusOK, healthResponse)
	})

	// Swagger documentation routes
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics endpoint
	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	// Cache stats endpoints
	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, appCache.Stats())
	})

	r.GET("/history/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, historyService.GetCacheStats())
	})

	// Rate limit endpoints
	r.GET("/ratelimit/status", rateLimiter.HandleRateLimitStatus())
	r.GET("/ratelimit/stats", rateLimiter.HandleRateLimitStats())

	// Connection pool stats endpoints
	r.GET("/pools/weather", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pool": "weather", "stats": weatherAdapter.GetPoolStats()})
	})

	r.GET("/pools/air", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pool": "air", "stats": airAdapter.GetPoolStats()})
	})

	r.GET("/pools/database", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pool": "database", "stats": db.GetPoolStats()})
	})

	// Performance profiling endpoints (development only)
	if os.Getenv("ENABLE_PROFILING") == "true" {
		slog.Info("Enabling performance profiling endpoints")
		r.GET("/debug/pprof/*filepath", gin.WrapF(pprof.Index))
		r.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
		r.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
		r.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
		r.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
	}

	// Background environment polling. BMKG needs no key; WAQI needs a token,
	// so air polling stays off until one is configured.
	pollCtx, pollCancel := context.WithCancel(context.Background())
	defer pollCancel()

	go pollEnvironment(pollCtx, pollInterval, "weather", func(ctx context.Context) error {
		reading, err := weatherAdapter.FetchCurrent(ctx)
		if err != nil {
			return err
		}
		row, err := repo.InsertWeather(reading.Timestamp, reading.Temperature, reading.Humidity)
		if err != nil {
			return err
		}
		ingested("weather", row.ID, reading.Timestamp)
		return nil
	})

	if waqiToken != "" {
		go pollEnvironment(pollCtx, pollInterval, "air", func(ctx context.Context) error {
			reading, err := airAdapter.FetchCurrent(ctx)
			if err != nil {
				return err
			}
			row, err := repo.InsertAir(reading.Timestamp, reading.AQI)
			if err != nil {
				return err
			}
			ingested("air", row.ID, reading.Timestamp)
			return nil
		})
	} else {
		slog.Info("WAQI_TOKEN not set, air quality polling disabled")
	}

	// Periodic background evaluation keeps the result history moving even
	// when nobody calls /evaluate.
	go func() {
		ticker := time.NewTicker(evalInterval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				return
			case now := <-ticker.C:
				res, err := runEvaluation(now)
				if err != nil {
					slog.Error("Scheduled evaluation failed", "error", err)
					continue
				}
				slog.Info("Scheduled evaluation completed",
					"final_score", res.FinalScore,
					"recommendation", res.Recommendation)
			}
		}
	}()

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pollCancel()
	weatherAdapter.Close()
	airAdapter.Close()
	if redisClient != nil {
		redisClient.Close()
	}

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// pollEnvironment runs fetchAndStore once at startup and then on every tick
// until ctx is cancelled. A failed poll is logged and skipped; the next tick
// retries with fresh state.
func pollEnvironment(ctx context.Context, interval time.Duration, source string, fetchAndStore func(context.Context) error) {
	poll := func() {
		pollCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := fetchAndStore(pollCtx); err != nil {
			slog.Warn("Environment poll failed", "source", source, "error", err)
		}
	}

	poll()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}

func isKnownPreference(name string) bool {
	switch name {
	case hygiene.ParamWeightDirtiness, hygiene.ParamWeightOdor, hygiene.ParamWeightAQI, hygiene.ParamThreshold:
		return true
	}
	return false
}

// parseTimeOrNow parses an optional RFC3339 timestamp, defaulting to the
// current time when the field was omitted.
func parseTimeOrNow(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse(time.RFC3339, raw)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
