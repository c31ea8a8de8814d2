package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"quotemaker/config"
	"quotemaker/logger"
	"quotemaker/pkg/quote"
	"quotemaker/pkg/wsfeed"

	"go.uber.org/zap"
)

// quotetail connects to a running maker's websocket feed and prints every quote line.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	url := feedURL(cfg.Sinks.Websocket)
	client := wsfeed.NewClient(url, log)
	client.SetMessageHandler(func(q quote.Quote) {
		fmt.Println(q)
	})

	if err := client.Connect(ctx); err != nil {
		log.Fatal("failed to connect to quote feed", zap.String("url", url), zap.Error(err))
	}
	client.Listen(ctx)
}

func feedURL(ws config.WebsocketConfig) string {
	host := ws.Addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "ws://" + host + ws.Path
}
