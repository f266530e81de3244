// Package server hosts the HTTP API and the background runners.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/chatvise/chatvise/internal/profile"
	"github.com/chatvise/chatvise/plugin/ai"
	"github.com/chatvise/chatvise/plugin/ai/search"
	apiv1 "github.com/chatvise/chatvise/server/router/api/v1"
	"github.com/chatvise/chatvise/server/runner/embedding"
	"github.com/chatvise/chatvise/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo

	embeddingCache   *ai.EmbeddingCache
	embeddingService ai.EmbeddingService
	semanticCache    *search.SemanticCache
	embeddingRunner  *embedding.Runner
}

// NewServer wires the store, the AI services and the HTTP API together.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   store,
	}

	echoServer := echo.New()
	echoServer.Debug = true
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	echoServer.Use(requestIDMiddleware())
	s.echoServer = echoServer

	aiConfig := ai.NewConfigFromProfile(profile)
	var searcher *search.Searcher
	var completionService ai.CompletionService
	if aiConfig.Enabled {
		if err := aiConfig.Validate(); err != nil {
			return nil, errors.Wrap(err, "validate ai config")
		}

		s.embeddingCache = ai.NewEmbeddingCache(aiConfig.Embedding.QueryCacheTTL)
		embeddingService, err := ai.NewEmbeddingService(&aiConfig.Embedding, s.embeddingCache)
		if err != nil {
			return nil, errors.Wrap(err, "create embedding service")
		}
		s.embeddingService = embeddingService

		completionService, err = ai.NewCompletionService(&aiConfig.Completion)
		if err != nil {
			return nil, errors.Wrap(err, "create completion service")
		}

		searcher = search.NewSearcher(store, embeddingService, aiConfig.Embedding.Model)
		if aiConfig.SemanticCache.Enabled {
			s.semanticCache = search.NewSemanticCache(&aiConfig.SemanticCache)
		}

		// Vector search needs pgvector; on sqlite the runner would only
		// burn provider quota on vectors it cannot store.
		if profile.Driver == "postgres" {
			s.embeddingRunner = embedding.NewRunner(store, embeddingService, aiConfig.Embedding.Model)
		}
	} else {
		// Text-only degradation: retrieval still works through the keyword
		// and containment paths.
		searcher = search.NewSearcher(store, nil, "")
	}

	apiV1Service := apiv1.NewAPIV1Service(profile, store, searcher, completionService, s.embeddingService, s.semanticCache)
	apiV1Service.RegisterRoutes(echoServer)

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	return s, nil
}

// Start begins serving and starts the background runners. It returns
// immediately; errors from the listener surface through the echo logger.
func (s *Server) Start(ctx context.Context) error {
	if s.embeddingRunner != nil {
		go s.embeddingRunner.Run(ctx)
	}

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	go func() {
		if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start echo server", "error", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the HTTP server and the cache lifecycles.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if s.semanticCache != nil {
		s.semanticCache.Close()
	}
	if s.embeddingCache != nil {
		s.embeddingCache.Close()
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shutdown complete")
}

// requestIDMiddleware tags every request with an ID for log correlation.
func requestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)
			c.Set("request_id", requestID)

			start := time.Now()
			err := next(c)
			slog.Info("http request",
				"request_id", requestID,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return err
		}
	}
}
