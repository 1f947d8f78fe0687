// Package config loads runtime settings. Priority: environment variables
// over .env file over defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Engine struct {
	Workers       int
	TaskDepth     int
	OutboundDepth uint64
	Symbols       []string
}

type Kafka struct {
	Brokers    []string
	ExecTopic  string
	TradeTopic string
}

type Delivery struct {
	OutboxDir          string
	RedeliveryInterval time.Duration
	MaxRedeliveries    uint32
	StaleAfter         time.Duration
}

type Config struct {
	GRPCAddr   string
	AttachWait time.Duration
	Engine     Engine
	Kafka      Kafka
	Delivery   Delivery
}

func Default() Config {
	return Config{
		GRPCAddr:   ":9090",
		AttachWait: 5 * time.Second,
		Engine: Engine{
			Workers:       4,
			TaskDepth:     1024,
			OutboundDepth: 1 << 16,
			Symbols:       []string{"MSFT", "AAPL", "GOOG"},
		},
		Kafka: Kafka{
			Brokers:    []string{"localhost:9092"},
			ExecTopic:  "executions",
			TradeTopic: "trades",
		},
		Delivery: Delivery{
			OutboxDir:          "data/outbox",
			RedeliveryInterval: 250 * time.Millisecond,
			MaxRedeliveries:    10,
			StaleAfter:         30 * time.Second,
		},
	}
}

// Load reads the optional .env file, then applies TYR_* environment
// overrides on top of the defaults.
func Load(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("TYR_GRPC_ADDR"); v != "" {
		cfg.GRPCAddr = v
	}
	if d, ok := envDuration("TYR_ATTACH_WAIT_MS"); ok {
		cfg.AttachWait = d
	}
	if n, ok := envInt("TYR_WORKERS"); ok && n > 0 {
		cfg.Engine.Workers = n
	}
	if n, ok := envInt("TYR_TASK_DEPTH"); ok && n > 0 {
		cfg.Engine.TaskDepth = n
	}
	if n, ok := envInt("TYR_OUTBOUND_DEPTH"); ok && n > 0 {
		// the outbound ring requires a power-of-two capacity
		cfg.Engine.OutboundDepth = nextPow2(uint64(n))
	}
	if v := os.Getenv("TYR_SYMBOLS"); v != "" {
		cfg.Engine.Symbols = splitList(v)
	}
	if v := os.Getenv("TYR_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("TYR_EXEC_TOPIC"); v != "" {
		cfg.Kafka.ExecTopic = v
	}
	if v := os.Getenv("TYR_TRADE_TOPIC"); v != "" {
		cfg.Kafka.TradeTopic = v
	}
	if v := os.Getenv("TYR_OUTBOX_DIR"); v != "" {
		cfg.Delivery.OutboxDir = v
	}
	if d, ok := envDuration("TYR_REDELIVERY_INTERVAL_MS"); ok {
		cfg.Delivery.RedeliveryInterval = d
	}
	if n, ok := envInt("TYR_MAX_REDELIVERIES"); ok && n >= 0 {
		cfg.Delivery.MaxRedeliveries = uint32(n)
	}
	if d, ok := envDuration("TYR_STALE_AFTER_MS"); ok {
		cfg.Delivery.StaleAfter = d
	}

	return cfg
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envDuration(key string) (time.Duration, bool) {
	n, ok := envInt(key)
	if !ok || n <= 0 {
		return 0, false
	}
	return time.Duration(n) * time.Millisecond, true
}

func nextPow2(n uint64) uint64 {
	if n&(n-1) == 0 {
		return n
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
