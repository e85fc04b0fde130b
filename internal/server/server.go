// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/stocksync/internal/info"
	"github.com/mia-platform/stocksync/internal/logger"
)

const (
	loggerName = "stocksync:server"

	statusRoutesPrefix = "/-/"
)

var (
	ErrServerListen   = errors.New("server listen error")
	ErrServerShutdown = errors.New("server shutdown error")
)

type Server struct {
	Config

	app *fiber.App
}

// NewServer returns a Server configured from the env variables, with request logging and
// the status routes already registered.
func NewServer(ctx context.Context) (*Server, error) {
	cfg, err := LoadServerConfig()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               info.AppName,
		DisableStartupMessage: cfg.DisableStartupMessage,
		ErrorHandler:          errorHandler,
	})
	log := logger.FromContext(ctx).WithName(loggerName)
	app.Use(logger.RequestMiddlewareLogger(log, []string{statusRoutesPrefix}))

	statusRoutes(app, info.AppName, info.Version)

	return &Server{
		Config: *cfg,
		app:    app,
	}, nil
}

// App returns the underlying fiber application, used to register routes.
func (s *Server) App() *fiber.App {
	return s.app
}

// Address returns the address the server listens on.
func (s *Server) Address() string {
	return net.JoinHostPort(s.HTTPHost, strconv.Itoa(s.HTTPPort))
}

func (s *Server) Start() error {
	if err := s.app.Listen(s.Address()); err != nil {
		return fmt.Errorf("%w: %w", ErrServerListen, err)
	}
	return nil
}

func (s *Server) Stop() error {
	if err := s.app.Shutdown(); err != nil {
		return fmt.Errorf("%w: %w", ErrServerShutdown, err)
	}
	return nil
}

func (s *Server) StartAsync(ctx context.Context) {
	log := logger.FromContext(ctx).WithName(loggerName)
	go func() {
		if err := s.Start(); err != nil {
			log.Error(err.Error())
		}
	}()
}

// errorHandler renders every error as a JSON body with a message field.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"statusCode": code,
		"error":      http.StatusText(code),
		"message":    err.Error(),
	})
}
