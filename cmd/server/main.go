package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/benbeisheim/smartchess/internal/config"
	"github.com/benbeisheim/smartchess/internal/controller"
	"github.com/benbeisheim/smartchess/internal/service"
	"github.com/benbeisheim/smartchess/internal/store"
)

func main() {
	cfg, err := config.Load(os.Args[0], os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(cfg.LogLevel)

	archive, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer archive.Close()

	gameManager := service.NewGameManager(archive, cfg.AlgorithmDelay)
	defer gameManager.Close()
	gameService := service.NewGameService(gameManager)

	app := fiber.New(fiber.Config{
		AppName: "smartchess",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Client-ID",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	controller.Register(app, gameService, cfg.Origins())

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("listening on %s, archive %s", cfg.Addr, cfg.DBPath)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Error(err)
	}
}
