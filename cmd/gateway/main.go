// SPDX-License-Identifier: GPL-3.0-or-later

// Command gateway is the minimal process boundary around the bridging
// engine: no CLI beyond the boolean --init-config pattern used by
// demos, configuration taken by code rather than flags, logging to standard
// output at INFO by default. Its fixed demo topology bridges the same three
// worked-example interfaces internal/eventset implements: rain_sensor and
// windows_position inbound from the SOME/IP side, close_windows outbound to
// it.
//
// Since no real remote SOME/IP stack is in scope, the demo's tunnel is a
// loopback [someiptunnel.MemTunnel] pair; a small stub goroutine plays the
// remote side well enough to exercise the full announce/offer/bridge cycle,
// the same pattern internal/bridge's own tests use to drain a loopback
// tunnel.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivykit/someip-gateway/internal/bridge"
	"github.com/ivykit/someip-gateway/internal/config"
	"github.com/ivykit/someip-gateway/internal/e2e"
	"github.com/ivykit/someip-gateway/internal/eventset"
	"github.com/ivykit/someip-gateway/internal/localtransport"
	"github.com/ivykit/someip-gateway/internal/mapping"
	"github.com/ivykit/someip-gateway/internal/metrics"
	"github.com/ivykit/someip-gateway/internal/orchestrator"
	"github.com/ivykit/someip-gateway/internal/someiptunnel"
	"github.com/ivykit/someip-gateway/internal/wire"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

const (
	rainSensorServiceID      uint16 = 0x1001
	windowsPositionServiceID uint16 = 0x1002
	closeWindowsServiceID    uint16 = 0x2001

	rainSensorEventID      uint16 = 0x8001
	windowsPositionEventID uint16 = 0x8001
	closeWindowsEventID    uint16 = 0x8001

	rainSensorSpecifier      localtransport.InstanceSpecifier = "RainSensor"
	windowsPositionSpecifier localtransport.InstanceSpecifier = "WindowsPosition"
	closeWindowsSpecifier    localtransport.InstanceSpecifier = "CloseWindows"

	metricsAddr = "127.0.0.1:9090"
)

func main() {
	initConfig := flag.Bool("init-config", false, "print a sample topology file to stdout and exit")
	flag.Parse()

	if *initConfig {
		if err := printSampleTopology(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if err := run(logger); err != nil {
		logger.Error("gateway exited with error", "error", err)
		os.Exit(1)
	}
}

// printSampleTopology writes the YAML shape of this binary's hardcoded demo
// topology, the file format internal/config.LoadTopology reads: a
// deliberate extension point, not this binary's own configuration source -
// this gateway's own configuration is taken by code.
func printSampleTopology(w *os.File) error {
	top := config.Topology{
		Services: []config.ServiceEntry{
			{
				Name: eventset.RainSensorEventName, Direction: config.DirectionIngress,
				ServiceID: rainSensorServiceID, InstanceID: 1, Specifier: string(rainSensorSpecifier),
				Events: []config.EventEntry{{Name: eventset.RainSensorEventName, EventID: rainSensorEventID}},
			},
			{
				Name: eventset.WindowsPositionEventName, Direction: config.DirectionIngress,
				ServiceID: windowsPositionServiceID, InstanceID: 1, Specifier: string(windowsPositionSpecifier),
				Events: []config.EventEntry{{Name: eventset.WindowsPositionEventName, EventID: windowsPositionEventID}},
			},
			{
				Name: eventset.CloseWindowsEventName, Direction: config.DirectionEgress,
				ServiceID: closeWindowsServiceID, InstanceID: 1, Specifier: string(closeWindowsSpecifier),
				Events: []config.EventEntry{{Name: eventset.CloseWindowsEventName, EventID: closeWindowsEventID}},
			},
		},
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(top)
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.NewConfig()
	cfg.Logger = logger

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	go func() {
		if err := metrics.ServeContext(ctx, metricsAddr, reg); err != nil {
			logger.Warn("metrics server stopped", "error", err)
		}
	}()

	runtime := localtransport.NewMemRuntime()
	gatewaySide, remoteSide := someiptunnel.NewMemTunnelPair(16)

	orch := orchestrator.New(gatewaySide, cfg.FindServiceThrottle, cfg.HandshakeBackoff, cfg.Logger, cfg.ErrClassifier, m)

	buildRainSensor(runtime, orch, cfg, m)
	buildWindowsPosition(runtime, orch, cfg, m)
	closeChannel := buildCloseWindows(runtime, orch, cfg, gatewaySide, m)

	go remoteStub(ctx, logger, remoteSide)
	go publishCloseWindowsDemoCommands(ctx, closeChannel)

	logger.Info("gateway starting", "metrics_addr", metricsAddr)
	err := orch.Run(ctx)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func buildRainSensor(
	runtime *localtransport.MemRuntime,
	orch *orchestrator.Orchestrator,
	cfg *config.Config,
	m *metrics.Metrics,
) {
	registry := eventset.NewRainRegistry()
	svc := localtransport.NewMemService()
	channel := localtransport.NewMemChannel[e2e.Envelope[eventset.RainSensor]](4)

	runtime.RegisterProducer(rainSensorSpecifier, localtransport.NewMemProducerBuilder(func() (localtransport.Producer, error) {
		return eventset.NewRainProducer(registry, svc, func(context.Context) (localtransport.Publisher[e2e.Envelope[eventset.RainSensor]], error) {
			return channel, nil
		}), nil
	}))

	producer, err := runtime.ProducerBuilder(rainSensorSpecifier).Build()
	if err != nil {
		panic(fmt.Sprintf("gateway: building rain_sensor producer: %v", err))
	}

	events := []bridge.NamedEvent{{
		Desc: someiptunnel.EventDesc{EventID: rainSensorEventID, Typ: someiptunnel.EventTypeEvent},
		Name: eventset.RainSensorEventName,
	}}
	ib := bridge.NewIngressBridge(
		bridge.ServiceDescription{ServiceID: rainSensorServiceID, InstanceID: 1, Specifier: rainSensorSpecifier},
		events, registry, producer, cfg.Logger, cfg.ErrClassifier, m,
	)
	orch.RegisterIngress(ib)
	m.SetProducerOffered(rainSensorServiceID, false)
}

func buildWindowsPosition(
	runtime *localtransport.MemRuntime,
	orch *orchestrator.Orchestrator,
	cfg *config.Config,
	m *metrics.Metrics,
) {
	registry := eventset.NewWindowsRegistry()
	svc := localtransport.NewMemService()
	channel := localtransport.NewMemChannel[eventset.WindowsPosition](4)

	runtime.RegisterProducer(windowsPositionSpecifier, localtransport.NewMemProducerBuilder(func() (localtransport.Producer, error) {
		return eventset.NewWindowsProducer(registry, svc, func(context.Context) (localtransport.Publisher[eventset.WindowsPosition], error) {
			return channel, nil
		}), nil
	}))

	producer, err := runtime.ProducerBuilder(windowsPositionSpecifier).Build()
	if err != nil {
		panic(fmt.Sprintf("gateway: building windows_position producer: %v", err))
	}

	events := []bridge.NamedEvent{{
		Desc: someiptunnel.EventDesc{EventID: windowsPositionEventID, Typ: someiptunnel.EventTypeEvent},
		Name: eventset.WindowsPositionEventName,
	}}
	ib := bridge.NewIngressBridge(
		bridge.ServiceDescription{ServiceID: windowsPositionServiceID, InstanceID: 1, Specifier: windowsPositionSpecifier},
		events, registry, producer, cfg.Logger, cfg.ErrClassifier, m,
	)
	orch.RegisterIngress(ib)
	m.SetProducerOffered(windowsPositionServiceID, false)
}

func buildCloseWindows(
	runtime *localtransport.MemRuntime,
	orch *orchestrator.Orchestrator,
	cfg *config.Config,
	tunnel someiptunnel.Tunnel,
	m *metrics.Metrics,
) *localtransport.MemChannel[eventset.CloseWindows] {
	registry := eventset.NewCloseWindowsRegistry()
	svc := localtransport.NewMemService()
	svc.SetOffered(true)
	channel := localtransport.NewMemChannel[eventset.CloseWindows](4)

	sub, err := channel.Subscribe(1)
	if err != nil {
		panic(fmt.Sprintf("gateway: subscribing to close_windows: %v", err))
	}
	consumer := &eventset.CloseWindowsConsumer{
		Subscription: sub, ServiceID: closeWindowsServiceID, InstanceID: 1,
	}

	runtime.RegisterFinder(closeWindowsSpecifier, &localtransport.MemFinder{
		Service: svc, InstanceID: 1,
		Build: func() (localtransport.Consumer, error) { return consumer, nil },
	})

	em, ok := registry.EventMappingFor(eventset.CloseWindowsEventName)
	if !ok {
		panic("gateway: close_windows not registered")
	}
	events := map[mapping.EventMapping]someiptunnel.EventDesc{
		em: {EventID: closeWindowsEventID, Typ: someiptunnel.EventTypeEvent},
	}
	eb := bridge.NewEgressBridge(
		bridge.ServiceDescription{ServiceID: closeWindowsServiceID, InstanceID: 1, Specifier: closeWindowsSpecifier},
		events, registry, runtime, tunnel, cfg.DiscoveryPollInterval, cfg.ReceiveBackoff, cfg.Logger, m,
	)
	orch.RegisterEgress(eb)
	return channel
}

// publishCloseWindowsDemoCommands stands in for the local application that
// would actually request windows be closed; it loans, writes, and sends one
// sample every few seconds the same way any local publisher on this
// transport would.
func publishCloseWindowsDemoCommands(ctx context.Context, channel *localtransport.MemChannel[eventset.CloseWindows]) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uninit, err := channel.LoanUninit()
			if err != nil {
				continue
			}
			_ = uninit.Write(eventset.CloseWindows{Close: true}).Send()
		}
	}
}

// remoteStub plays the remote SOME/IP stack's side of the loopback tunnel
// well enough to exercise the full bridge lifecycle: it acknowledges every
// FindService as immediately active and then sends a sample rain_sensor and
// windows_position event for the service it just acknowledged. It is not
// a separate window/rain simulator binary - it is this
// one process's own stand-in for the other side of a tunnel this module
// does not implement, needed to run the demo at all.
func remoteStub(ctx context.Context, logger *slog.Logger, tunnel *someiptunnel.MemTunnel) {
	for {
		header, _, err := tunnel.Receive(ctx)
		if err != nil {
			return
		}

		switch header.Typ {
		case someiptunnel.MsgFindService:
			ack := header
			ack.Typ = someiptunnel.MsgFindServiceAck
			ack.IsActive = true
			if err := tunnel.Send(ctx, ack, nil); err != nil {
				logger.Warn("remote stub: FindServiceAck send failed", "error", err)
				continue
			}
			go sendSampleEvent(ctx, logger, tunnel, header.ServiceID, header.InstanceID)
		case someiptunnel.MsgOfferService:
			// no acknowledgement modeled for OfferService in this tunnel version.
		case someiptunnel.MsgEvent:
			logger.Debug("remote stub: received egress event", "service_id", header.ServiceID, "event_id", header.MethodID)
		}
	}
}

// sendSampleEvent sends one demo Message frame (the wire type the remote
// stack uses for data flowing inbound to the gateway) shortly after a
// service is acknowledged active, encoded the same way the real codec
// would encode it, so the ingress path's wire decode and E2E check
// actually run.
func sendSampleEvent(ctx context.Context, logger *slog.Logger, tunnel *someiptunnel.MemTunnel, serviceID, instanceID uint16) {
	time.Sleep(50 * time.Millisecond)

	var header someiptunnel.Header
	buf := someiptunnel.NewPayload()

	switch serviceID {
	case rainSensorServiceID:
		header = someiptunnel.MessageFrame(serviceID, instanceID, rainSensorEventID)
		env := e2e.FromLocal(eventset.RainSensor{IsWet: true})
		if err := wire.EnvelopeToWire[eventset.RainSensor](eventset.RainSensorToWire, e2e.ShowcaseProfile{})(env, buf, e2e.ShowcaseProfile{}); err != nil {
			logger.Warn("remote stub: encoding rain_sensor sample failed", "error", err)
			return
		}
	case windowsPositionServiceID:
		header = someiptunnel.MessageFrame(serviceID, instanceID, windowsPositionEventID)
		value := eventset.WindowsPosition{FL: 10, FR: 10, RL: 0, RR: 0}
		if err := eventset.WindowsPositionToWire(value, buf, e2e.NoneProfile{}); err != nil {
			logger.Warn("remote stub: encoding windows_position sample failed", "error", err)
			return
		}
	default:
		return
	}

	if err := tunnel.Send(ctx, header, buf); err != nil {
		logger.Warn("remote stub: sample event send failed", "service_id", serviceID, "error", err)
	}
}
