package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	stdnet "net"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"LiveBoard/internal/config"
	"LiveBoard/internal/logging"
	"LiveBoard/internal/net"
	"LiveBoard/internal/persist"
	"LiveBoard/internal/state"
	"LiveBoard/internal/ui"

	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"
)

const usage = `usage:
  liveboard [-config file]                      host a board and open it
  liveboard [-config file] liveboard://host:port/board
                                                join a hosted board
  liveboard [-config file] join                 find a board on the network and join it
  liveboard [-config file] relay                run the relay without a window
`

const browseTimeout = 3 * time.Second

func main() {
	configPath := flag.String("config", "liveboard.yaml", "configuration file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	arg := flag.Arg(0)
	switch {
	case arg == "relay":
		err = runRelay(cfg, logger)
	case arg == "join":
		err = runDiscover(cfg, logger)
	case strings.HasPrefix(arg, net.LinkScheme+"://"):
		err = runLink(cfg, arg, logger)
	case arg == "" && cfg.Hosting():
		err = runHost(cfg, logger)
	case arg == "":
		err = runClient(cfg, cfg.RelayURL, cfg.BoardID, logger)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("LiveBoard stopped", zap.Error(err))
		os.Exit(1)
	}
}

// boardStore picks where board content lives: a remote board store when one
// is configured, else files under the data dir.
func boardStore(cfg *config.Config, logger *zap.Logger) (persist.Gateway, error) {
	if cfg.PersistURL != "" {
		return persist.NewHTTPGateway(cfg.PersistURL, logger), nil
	}
	return persist.NewFileGateway(cfg.DataDir)
}

// runRelay serves boards for other machines until interrupted.
func runRelay(cfg *config.Config, logger *zap.Logger) error {
	store, err := boardStore(cfg, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := stdnet.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddr, err)
	}
	if cfg.Advertise {
		if adv, err := net.Advertise(l.Addr().(*stdnet.TCPAddr).Port, cfg.BoardID); err != nil {
			logger.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			defer adv.Shutdown()
		}
	}
	return net.NewServer(store, logger).Serve(ctx, l)
}

// runHost runs the relay in-process and opens the board on it.
func runHost(cfg *config.Config, logger *zap.Logger) error {
	store, err := boardStore(cfg, logger)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l, err := stdnet.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddr, err)
	}
	port := l.Addr().(*stdnet.TCPAddr).Port

	relayDone := make(chan error, 1)
	go func() { relayDone <- net.NewServer(store, logger).Serve(ctx, l) }()

	if cfg.Advertise {
		if adv, err := net.Advertise(port, cfg.BoardID); err != nil {
			logger.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			defer adv.Shutdown()
		}
	}

	link := net.ShareLink(net.OutgoingIP(), port, cfg.BoardID)
	logger.Info("Hosting board", zap.String("board", cfg.BoardID), zap.String("link", link))

	err = openBoard(ctx, cfg, session{
		relay:     fmt.Sprintf("127.0.0.1:%d", port),
		board:     cfg.BoardID,
		store:     store,
		shareLink: link,
	}, logger)

	cancel()
	if rerr := <-relayDone; err == nil {
		err = rerr
	}
	return err
}

func runLink(cfg *config.Config, link string, logger *zap.Logger) error {
	addr, board, err := net.ParseShareLink(link)
	if err != nil {
		return err
	}
	if board == "" {
		board = cfg.BoardID
	}
	return runClient(cfg, addr, board, logger)
}

func runDiscover(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), browseTimeout+time.Second)
	defer cancel()

	hosts, err := net.Browse(ctx, browseTimeout)
	if err != nil && len(hosts) == 0 {
		return fmt.Errorf("board discovery failed: %w", err)
	}
	if len(hosts) == 0 {
		return errors.New("no LiveBoard hosts found on the local network")
	}
	h := hosts[0]
	for _, candidate := range hosts {
		if candidate.Board == cfg.BoardID {
			h = candidate
			break
		}
	}
	board := h.Board
	if board == "" {
		board = cfg.BoardID
	}
	logger.Info("Found board", zap.String("host", h.Name), zap.String("addr", h.Addr), zap.String("board", board))
	return runClient(cfg, h.Addr, board, logger)
}

func runClient(cfg *config.Config, relay, board string, logger *zap.Logger) error {
	var store persist.Gateway
	if cfg.PersistURL != "" {
		store = persist.NewHTTPGateway(cfg.PersistURL, logger)
	} else {
		store = persist.NewHTTPGateway(relayHTTP(relay), logger)
	}
	return openBoard(context.Background(), cfg, session{relay: relay, board: board, store: store}, logger)
}

// relayHTTP turns a relay address into the base URL of its board API.
func relayHTTP(relay string) string {
	switch {
	case strings.HasPrefix(relay, "ws://"):
		return "http://" + strings.TrimPrefix(relay, "ws://")
	case strings.HasPrefix(relay, "wss://"):
		return "https://" + strings.TrimPrefix(relay, "wss://")
	case strings.Contains(relay, "://"):
		return relay
	}
	return "http://" + relay
}

type session struct {
	relay     string
	board     string
	store     persist.Gateway
	shareLink string
}

// openBoard connects to the relay, loads the board and runs the window until
// it is closed.
func openBoard(ctx context.Context, cfg *config.Config, s session, logger *zap.Logger) error {
	instance := state.NewInstanceID()
	boardURL, err := net.BoardURL(s.relay, s.board, instance)
	if err != nil {
		return err
	}

	var (
		window  atomic.Pointer[ui.Window]
		closing atomic.Bool
	)
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := net.Dial(dialCtx, boardURL, func(frame []byte) {
		if w := window.Load(); w != nil {
			w.Deliver(frame)
		}
	}, logger)
	if err != nil {
		return err
	}

	loadCtx, cancelLoad := context.WithTimeout(ctx, 5*time.Second)
	initial := persist.Load(loadCtx, s.store, s.board, logger)
	cancelLoad()

	w, err := ui.NewWindow(app.NewWithID("io.liveboard"), ui.Options{
		BoardID:      s.board,
		InstanceID:   instance,
		User:         cfg.UserName,
		Initial:      initial,
		Channel:      client,
		Gateway:      s.store,
		HistoryLimit: cfg.HistoryLimit,
		ShareLink:    s.shareLink,
		Logger:       logger,
		OnClose: func() {
			closing.Store(true)
			client.Close()
		},
	})
	if err != nil {
		client.Close()
		return err
	}
	window.Store(w)

	go func() {
		<-client.Done()
		if closing.Load() {
			return
		}
		w.SetStatus("Disconnected from relay; changes are no longer shared")
	}()

	w.ShowAndRun()
	return nil
}
