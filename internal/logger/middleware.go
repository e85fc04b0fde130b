// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeaderName = "x-request-id"

	IncomingRequestMessage  = "incoming request"
	RequestCompletedMessage = "request completed"
)

// httpRequest is the request section of the access log line.
type httpRequest struct {
	Method    string `json:"method,omitempty"`
	Path      string `json:"path,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// httpResponse is the response section of the access log line.
type httpResponse struct {
	StatusCode int `json:"statusCode,omitempty"`
	BodyBytes  int `json:"bodyBytes"`
}

// RequestID returns the id carried by the x-request-id header or a new random one.
func RequestID(c *fiber.Ctx) string {
	if requestID := c.Get(requestIDHeaderName); requestID != "" {
		return requestID
	}

	return uuid.NewString()
}

// RequestMiddlewareLogger is a fiber middleware logging every request not matching excludedPrefix.
// The request-scoped logger is stored in the user context of the fiber request.
func RequestMiddlewareLogger(logger Logger, excludedPrefix []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, prefix := range excludedPrefix {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		start := time.Now()
		requestID := RequestID(c)
		c.Set(requestIDHeaderName, requestID)

		log := logger.WithName("request").With("requestId", requestID)
		c.SetUserContext(WithContext(c.UserContext(), log))

		request := httpRequest{
			Method:    c.Method(),
			Path:      path,
			UserAgent: c.Get(fiber.HeaderUserAgent),
		}
		log.Trace(IncomingRequestMessage, "http", request)

		err := c.Next()

		statusCode := c.Response().StatusCode()
		bodyBytes := len(c.Response().Body())
		if fiberErr, ok := err.(*fiber.Error); ok {
			statusCode = fiberErr.Code
			bodyBytes = len(fiberErr.Message)
		}

		log.Info(RequestCompletedMessage,
			"http", request,
			"response", httpResponse{StatusCode: statusCode, BodyBytes: bodyBytes},
			"responseTime", float64(time.Since(start).Milliseconds()),
		)

		return err
	}
}
