package main

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qrattendance/internal/attendance"
	"qrattendance/internal/auth"
	"qrattendance/internal/config"
	"qrattendance/internal/geo"
	"qrattendance/internal/httpmiddleware"
	"qrattendance/internal/metrics"
	"qrattendance/internal/qr"
	"qrattendance/internal/queue"
	"qrattendance/internal/security"
	"qrattendance/internal/session"
	"qrattendance/internal/sheets"
	"qrattendance/internal/store"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer func() { _ = redisClient.Close() }()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "qrattendance:mirror")
	}

	sessions := session.NewStore(db.Client)
	issuer := qr.NewIssuer(sessions, cfg.FormBaseURL, cfg.SessionTTL)
	repo := attendance.NewRepository(db.Client)

	geoVal := geo.NewValidator(cfg.CampusLatitude, cfg.CampusLongitude, cfg.AllowedRadiusM)
	vpnClient := security.NewVPNClient(cfg.VPNAPIURL, cfg.VPNAPIKey, cfg.VPNSkip, cfg.VPNFailOpen)
	secVal := security.NewValidator(vpnClient)

	svc := attendance.NewService(sessions, repo, geoVal, secVal, q, cfg.GeoGate, cfg.SecurityGate)

	// Sheets read path (nil when mirroring is not configured)
	var sheetLogger *sheets.Logger
	if cfg.SheetsSpreadsheetID != "" && cfg.SheetsCredentialsFile != "" {
		sheetLogger, err = sheets.NewLogger(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID, cfg.SheetsWorksheet)
		if err != nil {
			log.Printf("warning: sheets client init failed, records endpoint disabled: %v", err)
			sheetLogger = nil
		}
	} else {
		log.Println("Sheets not configured (SHEETS_SPREADSHEET_ID / SHEETS_CREDENTIALS_FILE not set)")
	}

	r := gin.New()

	// Recovery middleware
	r.Use(gin.Recovery())

	// Custom logger
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	// CORS with the configured origin list; the QR response metadata headers
	// must be readable cross-origin.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Session-Id", "Expiry-Time", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	// Security headers
	r.Use(securityHeaders())

	// Rate limiting covers the public surface only; health and metrics must
	// keep answering probes and scrapers.
	public := publicGroup(r, cfg.RateLimitPerMin)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	public.POST("/qr/generate", func(c *gin.Context) {
		issued, err := issuer.Issue(c.Request.Context())
		if err != nil {
			log.Printf("qr issue failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate QR code"})
			return
		}
		metrics.SessionsIssued.Inc()

		c.Header("Session-Id", issued.SessionID)
		c.Header("Expiry-Time", issued.ExpiresAt.Format(time.RFC3339))
		c.Data(http.StatusOK, "image/png", issued.PNG)
	})

	public.GET("/qr/session/:id/status", func(c *gin.Context) {
		id := c.Param("id")
		if _, err := uuid.Parse(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed session id"})
			return
		}
		status, err := sessions.Validate(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}
		if status == session.StatusValid {
			c.JSON(http.StatusOK, gin.H{"valid": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": status.String()})
	})

	public.POST("/attendance/submit", func(c *gin.Context) {
		var req struct {
			attendance.Submission
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error(), "code": attendance.RejectMalformedPayload})
			return
		}

		meta := attendance.Meta{
			ClientIP:  c.ClientIP(),
			Headers:   c.Request.Header,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		}
		_, err := svc.Submit(c.Request.Context(), req.Submission, meta)
		if err != nil {
			var rej *attendance.Rejection
			if errors.As(err, &rej) {
				metrics.SubmissionsRejected.WithLabelValues(string(rej.Code)).Inc()
				resp := gin.H{"detail": rej.Detail, "code": rej.Code}
				if rej.Distance != nil {
					resp["distance"] = round2(*rej.Distance)
				}
				c.JSON(http.StatusBadRequest, resp)
				return
			}
			log.Printf("attendance submit failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to submit attendance"})
			return
		}
		metrics.SubmissionsAccepted.Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Attendance recorded successfully"})
	})

	public.POST("/validation/location", func(c *gin.Context) {
		loc, ok := bindLocation(c)
		if !ok {
			return
		}
		valid, distance := geoVal.Validate(*loc.Latitude, *loc.Longitude)
		c.JSON(http.StatusOK, gin.H{
			"valid":    valid,
			"distance": round2(distance),
			"unit":     "meters",
		})
	})

	public.POST("/validation/location/precheck", func(c *gin.Context) {
		loc, ok := bindLocation(c)
		if !ok {
			return
		}
		valid, distance := geoVal.Validate(*loc.Latitude, *loc.Longitude)
		msg := "Location verified. You can proceed with attendance submission."
		if !valid {
			msg = "You are " + strconv.FormatFloat(round2(distance), 'f', 2, 64) +
				" meters away from campus. Please ensure you are within the campus premises."
		}
		c.JSON(http.StatusOK, gin.H{"valid": valid, "message": msg, "distance": round2(distance)})
	})

	public.POST("/validation/security", func(c *gin.Context) {
		var req struct {
			IPAddress string `json:"ip_address" binding:"required"`
			UserAgent string `json:"user_agent"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		if secVal.CheckVPN(c.Request.Context(), req.IPAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "VPN usage detected"})
			return
		}
		if !secVal.ValidateUserAgent(req.UserAgent) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid user agent"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid": true})
	})

	public.GET("/attendance/records", func(c *gin.Context) {
		if sheetLogger == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "attendance log not configured"})
			return
		}
		records, err := sheetLogger.Records(c.Request.Context(), c.Query("date"))
		if err != nil {
			log.Printf("sheets read failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to read attendance log"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": records})
	})

	public.POST("/admin/token", func(c *gin.Context) {
		var req struct {
			APIKey string `json:"api_key" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if cfg.AdminAPIKey == "" || req.APIKey != cfg.AdminAPIKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		token, exp, err := auth.Issue("admin", "admin", cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"access_token": token, "expires_at": exp.Unix()})
	})

	adminGroup := r.Group("/admin", auth.AdminAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	adminGroup.GET("/attendance", func(c *gin.Context) {
		limit, offset := 50, 0
		if v := c.Query("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				limit = parsed
			}
		}
		if v := c.Query("offset"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				offset = parsed
			}
		}
		records, err := repo.List(c.Request.Context(), limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": records})
	})

	adminGroup.POST("/attendance/:id/verify", func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed attendance id"})
			return
		}
		claimsAny, _ := c.Get("claims")
		claims, _ := claimsAny.(auth.Claims)
		verifiedBy := claims.Subject
		if verifiedBy == "" {
			verifiedBy = "admin"
		}
		ok, err := repo.Verify(c.Request.Context(), id, verifiedBy)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "attendance record not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Attendance verified"})
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// publicGroup wraps the externally reachable routes in the per-IP rate
// limiter. Infra endpoints (/healthz, /metrics) are registered on the engine
// directly and stay outside it.
func publicGroup(r *gin.Engine, perMinute int) *gin.RouterGroup {
	limiter := httpmiddleware.NewSimpleTokenBucket(perMinute, perMinute)
	return r.Group("/", limiter.GinMiddleware())
}

type locationReq struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// bindLocation parses and range-checks a coordinate body. Out-of-range values
// are a 422, per the request schema contract.
func bindLocation(c *gin.Context) (locationReq, bool) {
	var loc locationReq
	if err := c.ShouldBindJSON(&loc); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return loc, false
	}
	if *loc.Latitude < -90 || *loc.Latitude > 90 || *loc.Longitude < -180 || *loc.Longitude > 180 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "coordinates out of range"})
		return loc, false
	}
	return loc, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
