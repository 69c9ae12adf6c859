package gateway

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
	"github.com/vladislavdragonenkov/laundry-pos/internal/metrics"
)

// State: состояние сессии с хранилищем.
type State int32

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// State возвращает текущее состояние сессии.
func (g *Gateway) State() State {
	return State(g.state.Load())
}

func (g *Gateway) setState(s State) {
	g.state.Store(int32(s))
	g.metrics.SetSessionState(int(s))
}

// Connect устанавливает сессию, если она ещё не готова.
func (g *Gateway) Connect(ctx context.Context) error {
	return g.ensureSession(ctx)
}

// ensureSession выполняет рукопожатие не более одного раза, пока сессия готова.
// Параллельные вызовы ждут одно общее рукопожатие; после неудачи следующий вызов
// пробует снова.
func (g *Gateway) ensureSession(ctx context.Context) error {
	return g.handshake(ctx, log.WarnLevel)
}

// handshake пишет неудачу рукопожатия на уровне level.
func (g *Gateway) handshake(ctx context.Context, level log.Level) error {
	if g.State() == StateReady {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.State() == StateReady {
		return nil
	}

	g.setState(StateAuthenticating)
	if err := g.store.Connect(ctx); err != nil {
		g.setState(StateUnauthenticated)
		g.metrics.RecordHandshake(metrics.ResultFailed)
		g.logger.WithError(err).Log(level, "store session handshake failed")
		return fmt.Errorf("%w: %w", domain.ErrSessionNotReady, err)
	}

	g.setState(StateReady)
	g.metrics.RecordHandshake(metrics.ResultOK)
	g.logger.Info("store session ready")
	return nil
}
