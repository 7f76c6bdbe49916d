package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/smartchess/internal/config"
	"github.com/benbeisheim/smartchess/internal/model"
	"github.com/benbeisheim/smartchess/internal/service"
	"github.com/benbeisheim/smartchess/internal/store"
)

func main() {
	logPath := flag.String("log", "./chessterm.log", "path to log file")
	mode := flag.String("mode", string(service.HumanVsAlgorithm), "hvh, hva or ava")
	algorithmColor := flag.String("algorithm-color", string(model.Black), "side played by the algorithm in hva mode")
	delay := flag.Duration("delay", 300*time.Millisecond, "pause before each algorithm move")
	dbPath := flag.String("db", "", "sqlite archive for finished games (none if empty)")
	level := flag.String("log-level", "info", "trace, debug, info, warn or error")
	flag.Parse()

	f, err := os.OpenFile(*logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	defer f.Close()
	log.SetOutput(f)
	lvl, err := config.ParseLevel(*level)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(lvl)

	var archive service.Archive
	if *dbPath != "" {
		a, err := store.Open(*dbPath)
		if err != nil {
			log.Fatal(err)
		}
		defer a.Close()
		archive = a
	}
	gameManager := service.NewGameManager(archive, *delay)
	defer gameManager.Close()
	gameService := service.NewGameService(gameManager)

	state, err := gameService.CreateGame(service.Mode(*mode), model.Color(*algorithmColor))
	if err != nil {
		log.Fatal(err)
	}
	v, err := newView(gameService, state)
	if err != nil {
		log.Fatal(err)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		v.app.Stop()
	}()

	if err := v.run(); err != nil {
		log.Error(err)
	}
}
