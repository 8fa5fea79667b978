package main

import (
	"context"
	"log"

	"github.com/sngm3741/makoto-club-services/intake/internal/config"
	"github.com/sngm3741/makoto-club-services/intake/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnectTimeout)
	defer cancel()

	app, err := server.Bootstrap(ctx, cfg)
	if err != nil {
		cfg.Logger.WithError(err).Fatal("初期化に失敗しました")
	}
	if err := app.Run(); err != nil {
		cfg.Logger.WithError(err).Fatal("サーバー起動に失敗")
	}
}
