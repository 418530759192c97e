package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"golang.org/x/sync/errgroup"

	"github.com/Richiks1/questboard/questboard"
	"github.com/Richiks1/questboard/questboard/board"
	"github.com/Richiks1/questboard/questboard/commands"
	"github.com/Richiks1/questboard/questboard/config"
	"github.com/Richiks1/questboard/questboard/handlers"
	"github.com/Richiks1/questboard/questboard/logger"
	"github.com/Richiks1/questboard/questboard/notify"
	"github.com/Richiks1/questboard/questboard/storage"
	"github.com/Richiks1/questboard/questboard/web"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := questboard.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))
	slog.Info("Starting quest board bot",
		slog.String("version", version),
		slog.String("commit", commit))

	layout, err := cfg.Board.Layout()
	if err != nil {
		slog.Error("Invalid board layout", slog.Any("error", err))
		os.Exit(-1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.StoreConnTimeout)
	store, closeStore, err := newStore(ctx, cfg.Storage, layout.Names())
	cancel()
	if err != nil {
		slog.Error("Failed to set up quest store", slog.Any("error", err))
		os.Exit(-1)
	}
	defer closeStore()

	b := questboard.New(*cfg, version, commit)
	b.Store = store
	b.Board = board.New(store, layout.Names())

	// Startup validation: every persisted quest must have a layout region,
	// otherwise it would silently vanish from the board.
	validateCtx, validateCancel := context.WithTimeout(context.Background(), config.StoreConnTimeout)
	err = b.Board.Validate(validateCtx)
	validateCancel()
	if err != nil {
		slog.Error("Persisted state does not match configured board", slog.Any("error", err))
		os.Exit(-1)
	}

	var spaces *storage.SpacesService
	if cfg.Spaces.Enabled() {
		spacesCtx, spacesCancel := context.WithTimeout(context.Background(), config.StoreConnTimeout)
		spaces, err = storage.NewSpacesService(spacesCtx,
			cfg.Spaces.Key, cfg.Spaces.Secret, cfg.Spaces.Region, cfg.Spaces.Bucket, cfg.Spaces.Root)
		if err != nil {
			spacesCancel()
			slog.Error("Failed to set up object storage", slog.Any("error", err))
			os.Exit(-1)
		}
		if cfg.Spaces.BaseImageKey != "" {
			if err := spaces.DownloadBaseImage(spacesCtx, cfg.Spaces.BaseImageKey, cfg.Board.BaseImage); err != nil {
				slog.Warn("Failed to fetch base image from object storage, using local copy",
					slog.Any("error", err))
			}
		}
		spacesCancel()
	}

	b.Renderer, err = board.NewRenderer(cfg.Board.BaseImage, layout)
	if err != nil {
		slog.Error("Failed to set up board renderer", slog.Any("error", err))
		os.Exit(-1)
	}

	h := handler.New()
	h.Command("/board", handlers.WrapWithLogging("board", commands.BoardHandler(b)))
	h.Command("/claim", handlers.WrapWithLogging("claim", commands.ClaimHandler(b)))
	h.Autocomplete("/claim", commands.QuestAutocompleteHandler(b))
	h.Command("/quests", handlers.WrapWithLogging("quests", commands.QuestsHandler(b)))
	h.Command("/resetquests", handlers.WrapWithLogging("resetquests", commands.ResetHandler(b)))
	h.Autocomplete("/resetquests", commands.QuestAutocompleteHandler(b))
	h.Component("/modquest/{action}/{token}", handlers.WrapComponentWithLogging("modquest", handlers.ModerationHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)))
		os.Exit(-1)
	}

	// Transitions announce through Discord; wired after the client exists.
	// The object storage mirror hangs off the same seam when configured.
	notifiers := []board.Notifier{notify.NewDiscordNotifier(
		b.Client, b.Board, b.Renderer,
		cfg.Board.AdminChannel, cfg.Board.AnnouncementChannel)}
	if spaces != nil {
		notifiers = append(notifiers, board.NotifierFunc(func(ctx context.Context, _ board.Event) {
			snapshot, err := b.Board.Snapshot(ctx)
			if err != nil {
				slog.Error("Failed to snapshot board for publishing", slog.Any("error", err))
				return
			}
			img, err := b.Renderer.Render(snapshot)
			if err != nil {
				slog.Error("Failed to render board for publishing", slog.Any("error", err))
				return
			}
			if err := spaces.PublishBoard(ctx, img); err != nil {
				slog.Error("Failed to publish board image",
					slog.String("url", spaces.BoardURL()),
					slog.Any("error", err))
			}
		}))
	}
	b.Board.SetNotifier(board.MultiNotifier(notifiers...))

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err))
		}
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, runCtx := errgroup.WithContext(runCtx)
	if cfg.Web.Addr != "" {
		srv := web.NewServer(cfg.Web.Addr, b.Board, b.Renderer)
		g.Go(func() error {
			return srv.Start(runCtx)
		})
	}

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	slog.Info("Bot is running. Press CTRL-C to exit.")
	g.Go(func() error {
		<-runCtx.Done()
		return nil
	})
	if err = g.Wait(); err != nil {
		slog.Error("Web server failed", slog.Any("error", err))
	}
	slog.Info("Shutting down bot...")
}

func newStore(ctx context.Context, cfg questboard.StorageConfig, names []string) (board.Store, func(), error) {
	switch cfg.Driver {
	case "", "file":
		path := cfg.File
		if path == "" {
			path = "quests.json"
		}
		return board.NewFileStore(path, names), func() {}, nil
	case "postgres":
		store, err := board.NewPostgresStore(ctx, cfg.PostgresDSN, names)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "mongo":
		store, err := board.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, names)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Close(ctx); err != nil {
				slog.Error("Failed to disconnect mongo store", slog.Any("error", err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
