package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"tyr/api/grpcserver"
	"tyr/config"
	"tyr/engine"
	"tyr/gateway/kafka"
	"tyr/infra/feed"
	"tyr/infra/outbox"
	"tyr/jobs/redelivery"
	"tyr/protocol"
	"tyr/service"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg := config.Load("")

	// ---------------- Delivery outbox ----------------

	ob, err := outbox.Open(cfg.Delivery.OutboxDir)
	if err != nil {
		log.Fatal().Err(err).Msg("outbox init failed")
	}
	defer ob.Close()

	// ---------------- Gateways ----------------

	gw, err := kafka.New(cfg.Kafka.Brokers, cfg.Kafka.ExecTopic, ob, log)
	if err != nil {
		log.Fatal().Err(err).Msg("kafka gateway init failed")
	}
	defer gw.Close()

	trades := feed.New(cfg.Kafka.Brokers, cfg.Kafka.TradeTopic)
	defer trades.Close()

	// ---------------- Engine ----------------

	registry := engine.New(engine.Config{
		Workers:       cfg.Engine.Workers,
		TaskDepth:     cfg.Engine.TaskDepth,
		OutboundDepth: cfg.Engine.OutboundDepth,
		Logger:        log,
	})
	registry.Register(cfg.Engine.Symbols...)
	registry.Start()

	// ---------------- Actors ----------------

	dispatcher := service.NewDispatcher(cfg.AttachWait, log)
	dispatcher.Attach(registry)
	dispatcher.Start()

	lastExecID, err := ob.LastExecID()
	if err != nil {
		log.Fatal().Err(err).Msg("outbox scan failed")
	}
	processor := service.NewProcessor(registry.Outgoing(), gw, trades, lastExecID, log)
	processor.Start()

	// ---------------- Background jobs ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redelivery.New(ob, gw, redelivery.Config{
		Interval:   cfg.Delivery.RedeliveryInterval,
		MaxRetries: cfg.Delivery.MaxRedeliveries,
		StaleAfter: cfg.Delivery.StaleAfter,
	}, log).Start(ctx)

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("listen failed")
	}

	grpcSrv := grpc.NewServer(grpc.ForceServerCodec(protocol.Codec{}))
	protocol.RegisterOrderGatewayServer(grpcSrv, grpcserver.NewServer(dispatcher, registry, log))

	go func() {
		log.Info().
			Str("addr", cfg.GRPCAddr).
			Strs("symbols", cfg.Engine.Symbols).
			Int("workers", cfg.Engine.Workers).
			Msg("engine running")
		if err := grpcSrv.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("grpc server exited")
		}
	}()

	// ---------------- Shutdown ----------------

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	// stop ingress first, then drain inbound, then the engine, then the
	// outbound stream
	grpcSrv.GracefulStop()
	dispatcher.RequestStop()
	if err := dispatcher.Join(); err != nil {
		log.Error().Err(err).Msg("dispatcher exit")
	}
	if err := registry.Shutdown(); err != nil {
		log.Error().Err(err).Msg("engine shutdown")
	}
	// let the processor catch up on whatever the workers drained
	time.Sleep(100 * time.Millisecond)
	processor.RequestStop()
	if err := processor.Join(); err != nil {
		log.Error().Err(err).Msg("processor exit")
	}
	cancel()
	log.Info().Msg("bye")
}
