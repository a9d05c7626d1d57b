package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/dmorgan81/characterbot/cmd"
	"github.com/dmorgan81/characterbot/internal/config"
	"github.com/dmorgan81/characterbot/internal/handler"
	"github.com/dmorgan81/characterbot/internal/inject"
	"github.com/dmorgan81/characterbot/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") == "" {
		if err := cmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	logger := log.New(os.Stderr, log.Options{})
	ctx := log.NewContext(context.Background(), logger)

	path := lo.Ternary(os.Getenv("CHARACTERBOT_CONFIG") != "", os.Getenv("CHARACTERBOT_CONFIG"), "config.toml")
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("loading config", "path", path, "error", err)
		os.Exit(1)
	}

	injector := inject.Setup(ctx, cfg)
	handler := do.MustInvoke[*handler.Handler](injector)
	lambda.StartWithOptions(handler.Handle, lambda.WithContext(ctx), lambda.WithEnableSIGTERM(func() {
		_ = injector.Shutdown()
	}))
}
