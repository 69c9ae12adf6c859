package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// requestLogger пишет одну строку logrus на запрос. Ошибку обработчика он
// сразу передаёт в HTTPErrorHandler, поэтому внешние middleware видят итоговый статус.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := s.logger.WithFields(log.Fields{
				"method": v.Method,
				"uri":    v.URI,
				"status": v.Status,
				"took":   v.Latency.String(),
			})
			switch {
			case v.Status >= http.StatusInternalServerError:
				entry.WithError(v.Error).Warn("request failed")
			default:
				entry.Debug("request handled")
			}
			return nil
		},
	})
}

func (s *Server) metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		started := time.Now()
		err := next(c)
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		s.httpMetrics.RecordRequest(c.Request().Method, route, c.Response().Status, time.Since(started))
		return err
	}
}

// handleError переводит ошибки кассы в HTTP-статусы и отдаёт JSON {"error": ...}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := statusFor(err)
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorResponse{Error: message})
	}
	if err != nil {
		s.logger.WithError(err).Warn("failed to write error response")
	}
}

func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	case domain.IsNotFound(err):
		return http.StatusNotFound, domain.ErrOrderNotFound.Error()
	case domain.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, domain.ErrStoreUnavailable.Error()
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}
