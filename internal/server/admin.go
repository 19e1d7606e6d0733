package server

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Command log records are kept for a year.
const commandRetention = 12 * 30 * 24 * time.Hour

func (s *Server) initAdminToken() {
	s.adminToken = generateToken()
	s.hashingSalt = generateToken()

	s.log.Info("Admin access available at /admin/login")
	if gin.Mode() == gin.DebugMode {
		s.log.Debug("Admin token (dev only)", zap.String("token", s.adminToken))
	}
}

func generateToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic("failed to generate token: " + err.Error())
	}
	return hex.EncodeToString(bytes)
}

// hashIP hashes an address with the process salt. Stable per IP for the
// process lifetime, truncated for storage.
func (s *Server) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + s.hashingSalt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

func (s *Server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("admin_token")
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// adminCredentials falls back to development defaults only in debug mode.
func (s *Server) adminCredentials() (string, string, bool) {
	username, password := s.cfg.Admin.Username, s.cfg.Admin.Password
	if username != "" && password != "" {
		return username, password, true
	}
	if gin.Mode() != gin.DebugMode {
		return "", "", false
	}
	if username == "" {
		username = "admin"
		s.log.Warn("Using default admin username. Set ADMIN_USERNAME environment variable.")
	}
	if password == "" {
		password = "admin123"
		s.log.Warn("Using default admin password. Set ADMIN_PASSWORD environment variable.")
	}
	return username, password, true
}

// PurgeExpiredCommands deletes command log records past retention.
func (s *Server) PurgeExpiredCommands(ctx context.Context) {
	if s.db == nil {
		return
	}
	n, err := s.db.PurgeCommandsBefore(ctx, s.now().Add(-commandRetention))
	if err != nil {
		s.log.Warn("Error cleaning up old command data", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("Privacy cleanup: removed old command records", zap.Int64("rows", n))
	}
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title":           "Privacy Policy",
			"retentionMonths": 12,
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		wantUser, wantPass, ok := s.adminCredentials()
		if ok &&
			subtle.ConstantTimeCompare([]byte(username), []byte(wantUser)) == 1 &&
			subtle.ConstantTimeCompare([]byte(password), []byte(wantPass)) == 1 {
			c.SetCookie("admin_token", s.adminToken, 3600*24, "/admin", "", false, true)
			s.log.Info("Admin login successful", zap.String("client", s.hashIP(c.ClientIP())))
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}

		s.log.Warn("Failed admin login attempt", zap.String("client", s.hashIP(c.ClientIP())))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"title": "Admin Login",
			"error": "Invalid credentials",
		})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie("admin_token", "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	admin := r.Group("/admin")
	admin.Use(s.adminAuthMiddleware())

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.db.CommandStats(c.Request.Context(), s.now())
		if err != nil {
			s.log.Error("Error loading admin stats", zap.Error(err))
			c.String(http.StatusInternalServerError, "Failed to load statistics")
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats":  stats,
			"active": s.sessions.len(),
		})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.db.CommandStats(c.Request.Context(), s.now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/api/commands", func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "200"))
		if err != nil || limit <= 0 || limit > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 1000"})
			return
		}
		records, err := s.db.RecentCommands(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"commands": records})
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.db.CommandStats(c.Request.Context(), s.now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		s.log.Info("Admin stats exported", zap.String("client", s.hashIP(c.ClientIP())))
		c.JSON(http.StatusOK, stats)
	})

	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		s.PurgeExpiredCommands(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete"})
	})
}
