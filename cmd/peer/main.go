// peer 对战客户端：连接 broker，创建或加入房间，本地运行物理并同步操作
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"foosball/client"
	"foosball/config"
	"foosball/game"
	"foosball/logger"
	"foosball/physics"
	"foosball/tui"
)

func main() {
	var (
		cfgPath   string
		serverURL string
		create    bool
		join      string
		headless  bool
	)
	flag.StringVar(&cfgPath, "config", "foosball.yaml", "path to the YAML config file (optional)")
	flag.StringVar(&serverURL, "server", "", "broker websocket URL (overrides config)")
	flag.BoolVar(&create, "create", false, "create a new room and play as host")
	flag.StringVar(&join, "join", "", "join an existing room by code and play as guest")
	flag.BoolVar(&headless, "headless", false, "no terminal UI; a scripted bot plays and rematches automatically")
	flag.Parse()

	if create == (join != "") {
		fmt.Fprintln(os.Stderr, "exactly one of -create or -join CODE is required")
		os.Exit(2)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if serverURL != "" {
		cfg.Peer.ServerURL = serverURL
	}
	// 终端界面占用 stdout，此时只写文件
	if !headless && cfg.Log.File == "" {
		cfg.Log.File = "foosball-peer.log"
	}
	if err := logger.Init(logger.Options{File: cfg.Log.File, Level: cfg.Log.Level, Console: headless}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, create, join, headless); err != nil {
		logger.Log.Errorf("peer: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, create bool, join string, headless bool) error {
	dialCtx, cancelDial := context.WithTimeout(ctx, 10*time.Second)
	defer cancelDial()
	conn, err := client.Dial(dialCtx, cfg.Peer.ServerURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	peer := client.NewPeer(conn)
	if create {
		id, err := peer.CreateRoom(dialCtx)
		if err != nil {
			return err
		}
		logger.Log.Infof("created room %s, share the code with your opponent", id)
	} else if err := peer.JoinRoom(dialCtx, join); err != nil {
		return err
	}
	defer peer.Leave()
	roomID, role := peer.Room()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	clock := clockwork.NewRealClock()
	world := tableWorld{physics.NewTable()}

	var (
		sampler  client.ControlSampler
		renderer client.Renderer
	)
	if headless {
		sampler = client.NewScriptedSampler(client.DefaultBotScript()...)
		renderer = newLogRenderer(peer)
	} else {
		screen, err := tui.NewScreen()
		if err != nil {
			return err
		}
		defer screen.Close()
		screen.SetTitle(fmt.Sprintf("foosball  room %s  (%s)", roomID, role))
		keys := tui.NewKeySampler(clock, tui.DefaultHold)
		sampler = keys
		renderer = screen
		go screen.Run(ctx, keys, tui.Actions{
			Quit: cancel,
			Ready: func() {
				if err := peer.Ready(); err != nil {
					logger.Log.Warnf("ready: %v", err)
				}
			},
		})
	}

	loop := client.NewSyncLoop(client.LoopConfig{
		Role:     role,
		World:    world,
		Sampler:  sampler,
		Relay:    peer.Relay(),
		Match:    peer.Match(),
		Report:   peer.ReportGoal,
		Renderer: renderer,
	})
	logger.Log.Infof("playing in room %s as %s (%s team)", roomID, role, role.Team())

	ticker := clock.NewTicker(time.Second / time.Duration(cfg.Peer.FrameRate))
	defer ticker.Stop()
	last := clock.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-conn.Done():
			return fmt.Errorf("connection to %s lost", cfg.Peer.ServerURL)
		case now := <-ticker.Chan():
			loop.Tick(now.Sub(last))
			last = now
		}
	}
}

// logRenderer 无界面模式：记录比分与状态变化，比赛结束后自动请求再来一局
type logRenderer struct {
	peer  *client.Peer
	state game.SessionState
	score game.Score
}

func newLogRenderer(p *client.Peer) *logRenderer {
	return &logRenderer{peer: p}
}

func (r *logRenderer) Render(f client.Frame) {
	if f.Match.Score != r.score {
		r.score = f.Match.Score
		logger.Log.Infof("score home %d : %d away", r.score.Home, r.score.Away)
	}
	if f.Match.State == r.state {
		return
	}
	r.state = f.Match.State
	logger.Log.Infof("match state: %s", r.state)
	if r.state == game.StateMatchOver {
		logger.Log.Infof("%s wins, requesting rematch", f.Match.Winner)
		if err := r.peer.Ready(); err != nil {
			logger.Log.Warnf("ready: %v", err)
		}
	}
}
