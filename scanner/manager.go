package scanner

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"netsweep/pool"
	"netsweep/port"
)

// ErrNoHost is returned by PortSweep when no host is given.
var ErrNoHost = errors.New("scanner: missing host")

// Config contains runtime configuration for the Manager.
type Config struct {
	Workers       int
	Timeout       time.Duration
	BannerTimeout time.Duration
	GrabBanner    bool
	RateLimit     float64 // probe starts per second, 0 = unlimited
	Logger        *zap.Logger
}

// DefaultConfig returns 10 workers, a 5s probe timeout and 3s banner grabs.
func DefaultConfig() Config {
	return Config{
		Workers:       pool.DefaultSize,
		Timeout:       DefaultTimeout,
		BannerTimeout: DefaultBannerTimeout,
		GrabBanner:    true,
	}
}

// Manager runs reachability and port sweeps over a shared worker pool.
type Manager struct {
	cfg  Config
	log  *zap.Logger
	pool *pool.Pool

	ping   func(ctx context.Context, host string, timeout time.Duration) bool
	probe  func(ctx context.Context, host string, p uint16, timeout time.Duration) (port.Reason, time.Duration)
	banner func(ctx context.Context, host string, p uint16, timeout time.Duration) string
}

// NewManager creates a Manager. Zero timeouts and worker counts fall back
// to the defaults.
func NewManager(cfg Config) *Manager {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.BannerTimeout <= 0 {
		cfg.BannerTimeout = def.BannerTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "scanner"))

	return &Manager{
		cfg:    cfg,
		log:    log,
		pool:   pool.New(cfg.Workers, pool.WithRateLimit(cfg.RateLimit), pool.WithLogger(log)),
		ping:   Ping,
		probe:  Probe,
		banner: GrabBanner,
	}
}

// Config returns the effective configuration.
func (m *Manager) Config() Config { return m.cfg }

// PingHost probes a single host.
func (m *Manager) PingHost(ctx context.Context, host string) HostResult {
	up := m.ping(ctx, host, m.cfg.Timeout)
	m.log.Debug("ping", zap.String("host", host), zap.Bool("up", up))
	return newHostResult(host, up)
}

// PingSweep pings every target and returns the reachable ones in completion
// order. onProgress may be nil.
func (m *Manager) PingSweep(ctx context.Context, targets []string, onProgress pool.ProgressFunc) ([]HostResult, error) {
	m.log.Info("ping sweep started",
		zap.Int("targets", len(targets)),
		zap.Int("workers", m.pool.Size()),
		zap.Duration("timeout", m.cfg.Timeout))
	start := time.Now()

	hosts, err := pool.Run(ctx, m.pool, targets, func(ctx context.Context, host string) (HostResult, bool) {
		r := m.PingHost(ctx, host)
		return r, r.Reachable
	}, onProgress)

	m.log.Info("ping sweep finished",
		zap.Int("up", len(hosts)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
	return hosts, err
}

// ScanPort probes one port and always returns a result. Open ports are
// annotated with their service name and, when enabled, a banner.
func (m *Manager) ScanPort(ctx context.Context, host string, p uint16) port.PortResult {
	reason, rtt := m.probe(ctx, host, p, m.cfg.Timeout)
	res := port.PortResult{
		Host:    host,
		Port:    p,
		State:   reason.State(),
		Service: port.Classify(p),
	}
	if res.Open() && m.cfg.GrabBanner {
		res.Banner = m.banner(ctx, host, p, m.cfg.BannerTimeout)
	}
	m.log.Debug("port",
		zap.String("host", host),
		zap.Uint16("port", p),
		zap.String("state", string(res.State)),
		zap.String("reason", string(reason)),
		zap.Duration("rtt", rtt))
	return res
}

// PortSweep scans every port of host and returns the open ones in
// completion order. onProgress may be nil.
func (m *Manager) PortSweep(ctx context.Context, host string, ports []uint16, onProgress pool.ProgressFunc) ([]port.PortResult, error) {
	if host == "" {
		return nil, ErrNoHost
	}
	m.log.Info("port sweep started",
		zap.String("host", host),
		zap.Int("ports", len(ports)),
		zap.Int("workers", m.pool.Size()),
		zap.Bool("banners", m.cfg.GrabBanner))
	start := time.Now()

	open, err := pool.Run(ctx, m.pool, ports, func(ctx context.Context, p uint16) (port.PortResult, bool) {
		r := m.ScanPort(ctx, host, p)
		return r, r.Open()
	}, onProgress)

	m.log.Info("port sweep finished",
		zap.String("host", host),
		zap.Int("open", len(open)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
	return open, err
}
