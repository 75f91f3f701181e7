package common

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// ShutdownHook runs after a termination signal and before the servers shut
// down. Errors are logged, shutdown continues regardless.
type ShutdownHook func(ctx context.Context) error

// RunServerWithShutdown starts every server and blocks until SIGINT or
// SIGTERM. Hooks then run in order, each bounded by hookTimeout, and finally
// all servers are shut down within shutdownTimeout.
func RunServerWithShutdown(servers []*http.Server, name string, shutdownTimeout, hookTimeout time.Duration, hooks ...ShutdownHook) {
	if hookTimeout <= 0 {
		hookTimeout = 5 * time.Second
	}

	for _, server := range servers {
		go func() {
			log.Infof("starting %s on %s", name, server.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("%s listen error: %v", name, err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Infof("shutdown signal received for %s", name)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i, h := range hooks {
		if h == nil {
			continue
		}
		hCtx, hCancel := context.WithTimeout(ctx, hookTimeout)
		if err := h(hCtx); err != nil {
			log.Warnf("shutdown hook %d failed: %v", i, err)
		}
		hCancel()
		if err := hCtx.Err(); err == context.DeadlineExceeded {
			log.Warnf("shutdown hook %d timed out", i)
		}
	}

	for _, server := range servers {
		if err := server.Shutdown(ctx); err != nil {
			log.Errorf("graceful shutdown of %s failed: %v", server.Addr, err)
		}
	}
	log.Infof("%s shutdown complete", name)
}

type TimeoutConfig struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
	Shutdown   time.Duration
	Hook       time.Duration
}

func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		ReadHeader: 5 * time.Second,
		Read:       15 * time.Second,
		// pdf export drives a browser
		Write:    90 * time.Second,
		Idle:     60 * time.Second,
		Shutdown: 15 * time.Second,
		Hook:     5 * time.Second,
	}
}

// LoadTimeoutConfig overrides defaults with the timeouts.* keys, for example
// timeouts.read-header: 10s or TYREFINDER_TIMEOUTS_WRITE=2m. Values that do
// not parse or are not positive keep the default.
func LoadTimeoutConfig(defaults TimeoutConfig) TimeoutConfig {
	apply := func(curr *time.Duration, key string) {
		if !viper.IsSet(key) {
			return
		}
		if d := viper.GetDuration(key); d > 0 {
			*curr = d
		}
	}
	apply(&defaults.ReadHeader, "timeouts.read-header")
	apply(&defaults.Read, "timeouts.read")
	apply(&defaults.Write, "timeouts.write")
	apply(&defaults.Idle, "timeouts.idle")
	apply(&defaults.Shutdown, "timeouts.shutdown")
	apply(&defaults.Hook, "timeouts.hook")
	return defaults
}

// NewServerWithTimeouts attaches timeout settings to base, or to a new server
// when base is nil.
func NewServerWithTimeouts(base *http.Server, cfg TimeoutConfig) *http.Server {
	if base == nil {
		base = &http.Server{}
	}
	base.ReadHeaderTimeout = cfg.ReadHeader
	base.ReadTimeout = cfg.Read
	base.WriteTimeout = cfg.Write
	base.IdleTimeout = cfg.Idle
	return base
}
