package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// HTTPGateway talks to the relay's /api/boards endpoints. Calls go through a
// circuit breaker so a dead relay fails fast instead of piling up autosaves.
type HTTPGateway struct {
	base   string
	client *http.Client
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

func NewHTTPGateway(baseURL string, logger *zap.Logger) *HTTPGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("persist")
	g := &HTTPGateway{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
	g.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "board-store",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// A missing board is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})
	return g
}

func (g *HTTPGateway) endpoint(boardID string) string {
	return g.base + "/api/boards/" + url.PathEscape(boardID)
}

func (g *HTTPGateway) Write(ctx context.Context, boardID, text string) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.endpoint(boardID), strings.NewReader(text))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := g.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode/100 != 2 {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to write board %s: %w", boardID, err)
	}
	return nil
}

func (g *HTTPGateway) Read(ctx context.Context, boardID string) (string, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint(boardID), nil)
		if err != nil {
			return nil, err
		}
		resp, err := g.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		if resp.StatusCode/100 != 2 {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	})
	if errors.Is(err, ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read board %s: %w", boardID, err)
	}
	return out.(string), nil
}
