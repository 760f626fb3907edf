package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"arifmusic/client/player"
	"arifmusic/client/remote"
	"arifmusic/client/session"
	"arifmusic/client/store"
	"arifmusic/client/syncrepo"
	"arifmusic/client/watch"
	"arifmusic/config"
	"arifmusic/logger"
	"arifmusic/model"
)

var (
	offlineFlag  bool
	asArtistFlag bool
)

// clientDeps bundles everything a client subcommand needs.
type clientDeps struct {
	cfg     *config.Config
	sess    *session.Manager
	store   *store.Store
	gateway *remote.Gateway
	users   *syncrepo.Users
	music   *syncrepo.Music
	library *syncrepo.Library
}

func (d *clientDeps) Close() {
	d.store.Close()
}

// buildClient wires the client stack from config.
func buildClient() (*clientDeps, error) {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    20,
		MaxBackups: 2,
		MaxAge:     14,
		Compress:   true,
	})

	sess, err := session.NewManager(filepath.Join(cfg.DataDir, "session.json"))
	if err != nil {
		return nil, err
	}
	st, err := store.Open(filepath.Join(cfg.DataDir, "arifmusic.db"))
	if err != nil {
		return nil, err
	}

	gw := remote.NewGateway(cfg.APIBaseURL, sess)
	var conn syncrepo.Connectivity = syncrepo.NewHTTPProbe(cfg.APIBaseURL)
	if offlineFlag {
		conn = syncrepo.StaticConnectivity(false)
	}

	return &clientDeps{
		cfg:     cfg,
		sess:    sess,
		store:   st,
		gateway: gw,
		users:   syncrepo.NewUsers(gw, st, sess, conn),
		music:   syncrepo.NewMusic(st, sess),
		library: syncrepo.NewLibrary(gw, st, sess, conn),
	}, nil
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client-side commands backed by the local library",
}

var registerCmd = &cobra.Command{
	Use:   "register <email> <password> <name> <full name>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildClient()
		if err != nil {
			return err
		}
		defer deps.Close()

		userType := model.UserTypeListener
		if asArtistFlag {
			userType = model.UserTypeArtist
		}
		user, err := deps.users.Register(cmd.Context(), args[0], args[1], args[2], args[3], userType)
		if err != nil {
			return err
		}
		fmt.Printf("Registered %s (%s)\n", user.Name, user.ID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Log in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildClient()
		if err != nil {
			return err
		}
		defer deps.Close()

		user, err := deps.users.Login(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s\n", user.Name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildClient()
		if err != nil {
			return err
		}
		defer deps.Close()
		return deps.users.Logout()
	},
}

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "List approved tracks in the local library",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildClient()
		if err != nil {
			return err
		}
		defer deps.Close()

		tracks, err := deps.music.All(cmd.Context())
		if err != nil {
			return err
		}
		for _, t := range tracks {
			fmt.Printf("%s  %s - %s (%d plays)\n", t.ID, t.Artist, t.Title, t.PlayCount)
		}
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the server copy of the profile, playlists and watchlists",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildClient()
		if err != nil {
			return err
		}
		defer deps.Close()

		ctx := cmd.Context()
		if _, err := deps.users.Profile(ctx); err != nil {
			return err
		}
		playlists, err := deps.library.Playlists(ctx)
		if err != nil {
			return err
		}
		watchlists, err := deps.library.Watchlists(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Synced %d playlists, %d watchlists\n", len(playlists), len(watchlists))
		return nil
	},
}

var playCmd = &cobra.Command{
	Use:   "play <music id>",
	Short: "Play a track from the local library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildClient()
		if err != nil {
			return err
		}
		defer deps.Close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		engine := player.NewEngine(deps.music, player.WithOnPlay(func(trackID string) {
			if _, err := deps.music.RecordPlay(context.Background(), trackID); err != nil {
				logger.Warn("failed to record play", logger.ErrorField(err))
			}
		}))
		if err := engine.LoadTrack(ctx, args[0]); err != nil {
			return err
		}
		if err := engine.Play(); err != nil {
			return err
		}

		go engine.RunTicker(ctx)

		snap := engine.Snapshot()
		fmt.Printf("Playing %s - %s\n", snap.Track.Artist, snap.Track.Title)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				snap := engine.Snapshot()
				if snap.State == player.Idle {
					return nil
				}
				fmt.Printf("\r%s %d:%02d", snap.State, snap.PositionMs/60000, snap.PositionMs/1000%60)
			}
		}
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the upload directory and ingest new audio files",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildClient()
		if err != nil {
			return err
		}
		defer deps.Close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := os.MkdirAll(deps.cfg.WatchDir, 0755); err != nil {
			return err
		}
		watcher := watch.NewWatcher(deps.cfg.WatchDir, deps.music)
		if err := watcher.Run(ctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	},
}

func init() {
	clientCmd.PersistentFlags().BoolVar(&offlineFlag, "offline", false, "skip the server and use the local library only")
	registerCmd.Flags().BoolVar(&asArtistFlag, "artist", false, "register as an artist")

	clientCmd.AddCommand(registerCmd, loginCmd, logoutCmd, tracksCmd, syncCmd, playCmd, watchCmd)
	rootCmd.AddCommand(clientCmd)
}
