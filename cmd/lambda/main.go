package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/sngm3741/makoto-club-services/intake/internal/config"
	"github.com/sngm3741/makoto-club-services/intake/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	app, err := server.Bootstrap(context.Background(), cfg)
	if err != nil {
		cfg.Logger.WithError(err).Fatal("初期化に失敗しました")
	}

	lambda.Start(app.LambdaHandler())
}
