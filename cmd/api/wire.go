//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	"github.com/xiebiao/bookreviews/internal/infrastructure/config"
	"github.com/xiebiao/bookreviews/pkg/logger"
)

// InitializeApp builds the HTTP engine. The cleanup releases the store,
// the cache and the broker connection in reverse order.
func InitializeApp(ctx context.Context, cfg *config.Config, sink *logger.Sink) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		applicationSet,
		handlerSet,
	)
	return nil, nil, nil
}
