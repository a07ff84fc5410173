package cache

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quillworks/preflight/internal/hook"
	"github.com/quillworks/preflight/internal/logging"
)

const (
	// DefaultProxyAddr is used when neither ProxyOptions.Addr nor the
	// environment specify a proxy address.
	DefaultProxyAddr = "localhost:6379"

	// proxyAddrEnv overrides the proxy address without touching config files.
	proxyAddrEnv = "PREFLIGHT_PROXY_ADDR"

	// keyPrefix namespaces preflight entries in a shared store.
	keyPrefix = "preflight:result:"

	// proxyOpTimeout bounds each store operation. The proxy must never make
	// a hook run slower than executing the hook would.
	proxyOpTimeout = 500 * time.Millisecond
)

// ProxyOptions configures the proxy backend.
type ProxyOptions struct {
	// Addr is the store address. Empty falls back to PREFLIGHT_PROXY_ADDR,
	// then DefaultProxyAddr.
	Addr string
	// TTL is how long stored entries stay valid.
	TTL time.Duration
	// Logger receives debug lines for degraded lookups. Nil means no logging.
	Logger *logging.Logger
}

// Proxy delegates storage to an external Redis-compatible store. An
// unreachable or misbehaving store degrades every operation to a miss;
// it never surfaces an error to the scheduler.
type Proxy struct {
	counters
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// compile-time interface check
var _ Cache = (*Proxy)(nil)

// NewProxy creates a proxy-backed cache.
func NewProxy(opts ProxyOptions) *Proxy {
	addr := opts.Addr
	if addr == "" {
		addr = os.Getenv(proxyAddrEnv)
	}
	if addr == "" {
		addr = DefaultProxyAddr
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  proxyOpTimeout,
		ReadTimeout:  proxyOpTimeout,
		WriteTimeout: proxyOpTimeout,
	})

	return &Proxy{
		client: client,
		ttl:    opts.TTL,
		logger: logger,
	}
}

// Get returns the cached result for key. Store errors and undecodable
// entries count as misses.
func (p *Proxy) Get(ctx context.Context, key string) (hook.Result, bool) {
	data, err := p.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			p.logger.Debug("proxy cache lookup degraded to miss", "error", err.Error())
		}
		p.misses.Add(1)
		return hook.Result{}, false
	}

	var res hook.Result
	if err := json.Unmarshal(data, &res); err != nil {
		p.logger.Debug("proxy cache entry undecodable, treating as miss", "error", err.Error())
		p.misses.Add(1)
		return hook.Result{}, false
	}

	p.hits.Add(1)
	return res, true
}

// Set stores a result under key with the configured TTL. Store errors are
// logged and dropped.
func (p *Proxy) Set(ctx context.Context, key string, res hook.Result) {
	data, err := json.Marshal(res)
	if err != nil {
		p.logger.Debug("proxy cache entry not encodable", "error", err.Error())
		return
	}
	if err := p.client.Set(ctx, keyPrefix+key, data, p.ttl).Err(); err != nil {
		p.logger.Debug("proxy cache store failed", "error", err.Error())
	}
}

// Stats returns a snapshot of the local counters. The remote store does not
// contribute an entry count.
func (p *Proxy) Stats() Stats {
	return p.snapshot("proxy", true, 0)
}

// Close closes the store connection.
func (p *Proxy) Close() error {
	return p.client.Close()
}
