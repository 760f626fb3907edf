package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"arifmusic/cache"
	"arifmusic/config"
	"arifmusic/db"
	"arifmusic/logger"
	"arifmusic/model"
	"arifmusic/repository"
	"arifmusic/storage"
)

// Start initializes dependencies and runs the HTTP server until interrupted.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.CloseDB()

	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database with GORM: %v", err)
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(
		&model.User{},
		&model.Playlist{},
		&model.PlaylistSong{},
		&model.Watchlist{},
		&model.WatchlistSong{},
		&model.Follow{},
	); err != nil {
		log.Fatalf("Failed to migrate database schema: %v", err)
	}

	// Redis and MinIO are optional: without them the API still serves, just
	// without list caching and media upload.
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, library caching disabled", logger.ErrorField(err))
	} else {
		defer db.CloseRedis()
	}
	if err := storage.InitMinio(cfg); err != nil {
		logger.Warn("MinIO unavailable, media upload disabled", logger.ErrorField(err))
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	playlistRepo := repository.NewMySQLPlaylistRepository(db.DB)
	watchlistRepo := repository.NewMySQLWatchlistRepository(db.DB)
	followRepo := repository.NewMySQLFollowRepository(db.DB)
	libraryCache := cache.NewLibraryCache(db.RedisClient)

	h := NewAPIHandler(userRepo, playlistRepo, watchlistRepo, followRepo, libraryCache, cfg)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      NewRouter(h),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s...", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// NewRouter wires every API route onto a gorilla/mux router.
func NewRouter(h *APIHandler) *mux.Router {
	router := mux.NewRouter()

	router.Use(corsMiddleware)

	// Auth + user endpoints
	router.HandleFunc("/api/users/register", h.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/users/login", h.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/users/exists/{email}", h.UserExistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/users/reset-password", h.ResetPasswordHandler).Methods(http.MethodPost)

	router.HandleFunc("/api/users/profile", h.AuthMiddleware(h.GetProfileHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/profile", h.AuthMiddleware(h.UpdateProfileHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/users/email/{email}", h.AuthMiddleware(h.GetUserByEmailHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id}", h.AuthMiddleware(h.GetUserHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id}", h.AuthMiddleware(h.DeleteUserHandler)).Methods(http.MethodDelete)

	router.HandleFunc("/api/users/{id}/type", h.AuthMiddleware(h.AdminMiddleware(h.UpdateUserTypeHandler))).Methods(http.MethodPut)
	router.HandleFunc("/api/users/{id}/approve", h.AuthMiddleware(h.AdminMiddleware(h.ApproveArtistHandler))).Methods(http.MethodPut)
	router.HandleFunc("/api/users/{id}/suspend", h.AuthMiddleware(h.AdminMiddleware(h.SuspendUserHandler))).Methods(http.MethodPut)
	router.HandleFunc("/api/users/{id}/verification-request", h.AuthMiddleware(h.SubmitVerificationHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/users/{id}/verification", h.AuthMiddleware(h.GetVerificationHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id}/verification", h.AuthMiddleware(h.AdminMiddleware(h.UpdateVerificationHandler))).Methods(http.MethodPut)

	// Follow graph
	router.HandleFunc("/api/users/{id}/follow", h.AuthMiddleware(h.FollowHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/users/{id}/follow", h.AuthMiddleware(h.UnfollowHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/users/{id}/followers", h.AuthMiddleware(h.FollowersHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id}/following", h.AuthMiddleware(h.FollowingHandler)).Methods(http.MethodGet)

	// Playlists
	router.HandleFunc("/api/playlists", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists", h.AuthMiddleware(h.ListPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.GetPlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.UpdatePlaylistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/songs", h.AuthMiddleware(h.AddPlaylistSongHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/songs/{musicId}", h.AuthMiddleware(h.RemovePlaylistSongHandler)).Methods(http.MethodDelete)

	// Watchlists
	router.HandleFunc("/api/watchlists", h.AuthMiddleware(h.CreateWatchlistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/watchlists", h.AuthMiddleware(h.ListWatchlistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/watchlists/check/{musicId}", h.AuthMiddleware(h.CheckWatchlistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/watchlists/{id}", h.AuthMiddleware(h.GetWatchlistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/watchlists/{id}", h.AuthMiddleware(h.UpdateWatchlistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/watchlists/{id}", h.AuthMiddleware(h.DeleteWatchlistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/watchlists/{id}/songs", h.AuthMiddleware(h.AddWatchlistSongHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/watchlists/{id}/songs/{musicId}", h.AuthMiddleware(h.RemoveWatchlistSongHandler)).Methods(http.MethodDelete)

	// Media
	router.HandleFunc("/api/media", h.AuthMiddleware(h.UploadMediaHandler)).Methods(http.MethodPost)
	router.PathPrefix("/media/").HandlerFunc(h.ServeMediaHandler).Methods(http.MethodGet)

	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
