package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/arsentiypro2013-collab/chat/internal/infra/config"
	"github.com/arsentiypro2013-collab/chat/internal/infra/logging"
	"github.com/arsentiypro2013-collab/chat/internal/infra/transport/http"
	"github.com/arsentiypro2013-collab/chat/internal/repo/chat"
	"github.com/arsentiypro2013-collab/chat/internal/svc/chatsvc"
)

const (
	appName = "chat"
	svcName = "chatsvc"
)

type Config struct {
	config.EnvConfig

	Log  logging.LoggerConfig        `envPrefix:"LOG_"`
	Chat chatsvc.ChatConfig          `envPrefix:"CHAT_"`
	HTTP chatsvc.HTTPTransportConfig `envPrefix:"HTTP_"`
	DB   chat.SQLiteRepositoryConfig `envPrefix:"DB_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.chatsvc")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
			panic(err)
		}

		log.InfoContext(ctx, "shutdown")
	}()

	chatSvc, err := chatsvc.NewChatService(
		chat.SQLiteRepositoryFactory(cfg.DB),
		cfg.Chat,
	)
	if err != nil {
		return fmt.Errorf("new chat service: %w", err)
	}
	defer chatSvc.Close()

	httpTransport := chatsvc.NewHTTPTransport(chatSvc, cfg.HTTP)

	if err := http.ListenAndServe(ctx, httpTransport, cfg.HTTP.HTTPTransportConfig); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
