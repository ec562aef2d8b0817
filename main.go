package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	clipboard "golang.design/x/clipboard"

	"autochat/chatloop"
)

const statsFlushEvery = time.Minute

var (
	name    string
	doDebug bool
	tps     int
)

func main() {
	loadEnv()

	dataDir := flag.String("data", envString(envDataDir, ""), "data directory for settings, logs and transcripts")
	flag.StringVar(&name, "name", envString(envCharacter, ""), "character to log in as on startup (default: the last one)")
	flag.BoolVar(&doDebug, "debug", envBool(envDebug, false), "verbose/debug logging")
	flag.IntVar(&tps, "tps", ebiten.DefaultTPS, "game updates per second")
	flag.Parse()

	if *dataDir != "" {
		dataDirPath = *dataDir
	}
	if abs, err := filepath.Abs(dataDirPath); err == nil {
		dataDirPath = abs
	}
	if err := os.MkdirAll(dataDirPath, 0o755); err != nil {
		logger.Fatalf("create data directory: %v", err)
	}
	setupLogging(dataDirPath, doDebug)
	defer closeLogging()
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("sandbox crashed")
			closeLogging()
			os.Exit(1)
		}
	}()
	logger.WithField("data", dataDirPath).Info("starting AutoChat sandbox")
	if !loadSettings() {
		logDebug("using default settings")
	}
	defer saveSettings()

	if err := clipboard.Init(); err != nil {
		logWarn("clipboard init: %v", err)
	} else {
		clipboardReady = true
	}
	go loadSpellcheck()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loadStats()
	go flushStats(ctx, statsFlushEvery)
	defer saveStats()

	transcript.SetRoot(filepath.Join(dataDirPath, "Text Logs"))

	host := newPluginHost(clientSession)
	host.spamKill = gs.PluginSpamKill
	if name == "" {
		name = gs.LastCharacter
	}
	if name != "" {
		if err := clientSession.Login(name, time.Now()); err == nil {
			consoleMessage("Logged in as " + clientSession.Name())
		}
	}

	store := chatloop.NewFileStore(filepath.Join(dataDirPath, "plugins", chatloop.PluginName+".json"))
	p, err := chatloop.New(host.services(chatloop.PluginName, store))
	if err != nil {
		logger.Fatalf("load %s: %v", chatloop.PluginName, err)
	}
	defer p.Dispose()
	if p.Operational() {
		consoleMessage("Press F1 or type " + chatloop.CommandName + " to configure " + chatloop.PluginName)
	}

	if err := initFont(); err != nil {
		logger.Fatalf("font: %v", err)
	}
	g := newGame(host, mainFont, gs.uiTheme())
	go func() {
		<-ctx.Done()
		g.quit.Store(true)
	}()

	ebiten.SetWindowTitle("AutoChat sandbox")
	ebiten.SetWindowSize(gs.WindowWidth, gs.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(tps)
	if err := ebiten.RunGame(g); err != nil {
		logger.WithError(err).Error("game exited")
	}
}
