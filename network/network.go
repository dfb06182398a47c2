// Package network brings up the link the HTTP server depends on. It retries a bounded number
// of times and reports the outcome exactly once.
package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/calvinmclean/pilldispenser/metrics"
)

const (
	DefaultMaxRetry     = 5
	DefaultRetryBackoff = 500 * time.Millisecond
)

// State is the link outcome
type State int

const (
	StatePending State = iota
	StateConnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

var ErrNoAddress = errors.New("interface has no IPv4 address")

// Connector makes a single connection attempt
type Connector interface {
	Connect(ctx context.Context) error
}

// ConnectorFunc adapts a function to Connector
type ConnectorFunc func(ctx context.Context) error

func (f ConnectorFunc) Connect(ctx context.Context) error {
	return f(ctx)
}

// AlwaysUp is used when no interface is configured
var AlwaysUp = ConnectorFunc(func(context.Context) error { return nil })

// InterfaceConnector succeeds once the named interface is up and holds an IPv4 address
type InterfaceConnector struct {
	Name string
}

func (i InterfaceConnector) Connect(context.Context) error {
	iface, err := net.InterfaceByName(i.Name)
	if err != nil {
		return fmt.Errorf("error finding interface %q: %w", i.Name, err)
	}
	if iface.Flags&net.FlagUp == 0 {
		return fmt.Errorf("interface %q is down", i.Name)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return fmt.Errorf("error reading addresses of %q: %w", i.Name, err)
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && ipNet.IP.To4() != nil {
			return nil
		}
	}
	return fmt.Errorf("%q: %w", i.Name, ErrNoAddress)
}

// Link tracks connection attempts
type Link struct {
	connector Connector
	maxRetry  uint64
	interval  time.Duration
	logger    zerolog.Logger

	once  sync.Once
	done  chan struct{}
	mu    sync.Mutex
	state State
	err   error
}

func NewLink(connector Connector, maxRetry int, interval time.Duration, logger zerolog.Logger) *Link {
	if maxRetry < 0 {
		maxRetry = 0
	}
	if interval <= 0 {
		interval = DefaultRetryBackoff
	}
	return &Link{
		connector: connector,
		maxRetry:  uint64(maxRetry),
		interval:  interval,
		logger:    logger.With().Str("component", "network").Logger(),
		done:      make(chan struct{}),
	}
}

// Connect tries once plus maxRetry retries and then settles the state. Only the first call
// does any work. The returned error is the final attempt's error
func (l *Link) Connect(ctx context.Context) error {
	l.once.Do(func() {
		attempt := 0
		op := func() error {
			attempt++
			err := l.connector.Connect(ctx)
			if err != nil {
				metrics.NetworkConnectAttempts.WithLabelValues("error").Inc()
				l.logger.Warn().Err(err).Int("attempt", attempt).Msg("retrying connection")
				return err
			}
			metrics.NetworkConnectAttempts.WithLabelValues("ok").Inc()
			return nil
		}

		b := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(l.interval), l.maxRetry),
			ctx,
		)
		err := backoff.Retry(op, b)

		l.mu.Lock()
		if err != nil {
			l.state = StateFailed
			l.err = err
			l.logger.Error().Err(err).Int("attempts", attempt).Msg("failed to connect")
		} else {
			l.state = StateConnected
			l.logger.Info().Int("attempts", attempt).Msg("connected")
		}
		l.mu.Unlock()

		close(l.done)
	})

	return l.Err()
}

// Done is closed when the state is settled
func (l *Link) Done() <-chan struct{} {
	return l.done
}

func (l *Link) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Link) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
