package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/cache"
	"github.com/HapoTV/HapoAiRadio-sub002/internal/config"
	database "github.com/HapoTV/HapoAiRadio-sub002/internal/db"
	"github.com/HapoTV/HapoAiRadio-sub002/internal/relations"
	"github.com/HapoTV/HapoAiRadio-sub002/internal/storage"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/api/handlers"
	"github.com/HapoTV/HapoAiRadio-sub002/internal/api/middleware"
)

type Server struct {
	cfg     *config.Config
	db      *database.Client
	rdb     *redis.Client
	storage *storage.Client
	router  *gin.Engine
}

// New wires the dashboard API. rdb may be nil when redis is
// unavailable — every cached path degrades to direct DB reads.
func New(cfg *config.Config, db *database.Client, rdb *redis.Client, store *storage.Client) *Server {
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode) // Set to Release for production
	}

	s := &Server{
		cfg:     cfg,
		db:      db,
		rdb:     rdb,
		storage: store,
		router:  gin.New(),
	}

	s.router.Use(middleware.SilentLogger(), gin.Recovery())
	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	// CORS Configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

	// "Authorization" must be allowed so the frontend can forward its session token
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	s.router.Use(cors.New(corsConfig))
}

// cacheFor builds a namespaced cache instance, or nil when redis is down
func (s *Server) cacheFor(prefix string) *cache.Cache {
	if s.rdb == nil {
		return nil
	}
	return cache.New(s.rdb, prefix, s.cfg.DefaultCacheTTL())
}

func (s *Server) setupRoutes() {
	// 1. Initialize Modular Handlers
	playlistHandler := handlers.NewPlaylistHandler(s.db.DB, s.cacheFor("playlists"))
	relationshipHandler := handlers.NewRelationshipHandler(relations.New(s.db.DB))
	storeHandler := handlers.NewStoreHandler(s.db.DB, s.cacheFor("stores"))
	emergencyHandler := handlers.NewEmergencyHandler(s.db.DB)
	trackHandler := handlers.NewTrackHandler(s.db.DB, s.storage)
	statsHandler := handlers.NewStatsHandler(s.db.DB)

	// Health Check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "storecast-api"})
	})

	// API Group
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/stats", statsHandler.GetStats)

		// --- PLAYLIST
		v1.GET("/playlists", playlistHandler.GetPlaylists)
		v1.GET("/playlists/:id", playlistHandler.GetPlaylist)
		v1.POST("/playlists", playlistHandler.CreatePlaylist)
		v1.PUT("/playlists/:id", playlistHandler.UpdatePlaylist)
		v1.DELETE("/playlists/:id", playlistHandler.DeletePlaylist)
		v1.PUT("/playlists/:id/tracks", playlistHandler.UpdatePlaylistTracks)

		// --- RELATIONSHIP GRAPH
		v1.GET("/playlists/:id/relationships", relationshipHandler.ListRelationships)
		v1.POST("/playlists/:id/relationships", relationshipHandler.CreateRelationship)
		v1.PATCH("/playlists/:id/relationships/:relatedId", relationshipHandler.UpdateRelationship)
		v1.DELETE("/playlists/:id/relationships/:relatedId", relationshipHandler.DeleteRelationship)
		v1.GET("/playlists/:id/similar", relationshipHandler.FindSimilar)

		// --- STORES
		v1.GET("/stores", storeHandler.GetStores)
		v1.GET("/stores/:id", storeHandler.GetStore)
		v1.POST("/stores", storeHandler.CreateStore)
		v1.DELETE("/stores/:id", storeHandler.DeleteStore)

		// --- EMERGENCY OVERRIDES
		v1.GET("/stores/:id/emergency", emergencyHandler.ListOverrides)
		v1.POST("/stores/:id/emergency", emergencyHandler.CreateOverride)
		v1.POST("/emergency/:id/deactivate", emergencyHandler.DeactivateOverride)
		v1.DELETE("/emergency/:id", emergencyHandler.DeleteOverride)

		// --- TRACK LIBRARY
		v1.GET("/tracks", trackHandler.GetTracks)
		v1.GET("/tracks/:id", trackHandler.GetTrack)
		v1.POST("/tracks", trackHandler.UploadTrack)
		v1.DELETE("/tracks/:id", trackHandler.DeleteTrack)
	}
}

// Start runs the server on the configured port
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
