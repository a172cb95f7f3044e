package grpcinterface

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/soheilhy/cmux"
	"github.com/tdex-network/buysell-daemon/internal/interfaces"
	"github.com/tdex-network/buysell-daemon/internal/interfaces/grpc/interceptor"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	// ServiceName is the name the daemon's readiness is reported under by
	// the grpc health service.
	ServiceName = "buysell"

	shutdownTimeout = 5 * time.Second
)

type ServiceOpts struct {
	Address string
	// Handler serves the plain HTTP/1.1 requests.
	Handler http.Handler
	// ReadyFn, if defined, is checked every ReadyInterval to report the
	// readiness of the exchange session.
	ReadyFn       func() bool
	ReadyInterval time.Duration
}

func (o ServiceOpts) validate() error {
	if ok := isValidAddress(o.Address); !ok {
		return fmt.Errorf("address is not valid: %s", o.Address)
	}
	if o.Handler == nil {
		return fmt.Errorf("http handler must not be null")
	}
	if o.ReadyFn != nil && o.ReadyInterval <= 0 {
		return fmt.Errorf("ready interval must be a positive duration")
	}
	return nil
}

// service serves grpc health checks and the HTTP API on the same port.
type service struct {
	opts ServiceOpts

	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
	mux        cmux.CMux

	lock sync.Mutex
	quit chan struct{}
	wg   sync.WaitGroup
}

func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}
	return &service{opts: opts}, nil
}

func (s *service) Start() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.mux != nil {
		return fmt.Errorf("service already started")
	}

	grpcServer := grpc.NewServer(
		interceptor.UnaryInterceptor(), interceptor.StreamInterceptor(),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	httpServer := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.opts.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	mux, err := serveMux(s.opts.Address, grpcServer, httpServer)
	if err != nil {
		return err
	}

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	s.grpcServer = grpcServer
	s.httpServer = httpServer
	s.health = healthServer
	s.mux = mux
	s.quit = make(chan struct{})

	if s.opts.ReadyFn != nil {
		s.wg.Add(1)
		go s.reportReadiness()
	} else {
		healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	}

	log.Infof("buy-sell interface is listening on %s", s.opts.Address)
	return nil
}

func (s *service) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.mux == nil {
		return
	}

	close(s.quit)
	s.wg.Wait()
	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Debug("stop http server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to gracefully stop http server")
	}

	log.Debug("stop grpc server")
	s.grpcServer.GracefulStop()

	log.Debug("stop mux")
	s.mux.Close()
	s.mux = nil
}

func (s *service) reportReadiness() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.ReadyInterval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_NOT_SERVING
	for {
		current := healthpb.HealthCheckResponse_NOT_SERVING
		if s.opts.ReadyFn() {
			current = healthpb.HealthCheckResponse_SERVING
		}
		if current != last {
			log.Debugf("buy-sell session status: %s", current)
			s.health.SetServingStatus(ServiceName, current)
			last = current
		}

		select {
		case <-s.quit:
			return
		case <-ticker.C:
		}
	}
}
