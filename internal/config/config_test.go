package config

import (
	"log/slog"
	"reflect"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, cfg *Config)
		wantErr bool
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8080" {
					t.Errorf("Port = %q, want 8080", cfg.Port)
				}
				if cfg.Database.Driver != "postgres" {
					t.Errorf("Driver = %q, want postgres", cfg.Database.Driver)
				}
				if cfg.LogLevel != slog.LevelInfo {
					t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
				}
				if cfg.Events.Topic != "election-events" {
					t.Errorf("Topic = %q", cfg.Events.Topic)
				}
				if len(cfg.Events.KafkaBrokers) != 0 {
					t.Errorf("KafkaBrokers = %v, want empty", cfg.Events.KafkaBrokers)
				}
			},
		},
		{
			name: "sqlite with brokers",
			env: map[string]string{
				"DB_DRIVER":     "SQLite",
				"DATABASE_URL":  "file:elections.db",
				"KAFKA_BROKERS": "kafka-1:9092, kafka-2:9092,,",
				"LOG_LEVEL":     "debug",
				"ENVIRONMENT":   "production",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Database.Driver != "sqlite" {
					t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
				}
				want := []string{"kafka-1:9092", "kafka-2:9092"}
				if !reflect.DeepEqual(cfg.Events.KafkaBrokers, want) {
					t.Errorf("KafkaBrokers = %v, want %v", cfg.Events.KafkaBrokers, want)
				}
				if cfg.LogLevel != slog.LevelDebug {
					t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
				}
				if !cfg.IsProduction() {
					t.Error("IsProduction() = false, want true")
				}
			},
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"DB_DRIVER": "mysql"},
			wantErr: true,
		},
		{
			name:    "bad log level",
			env:     map[string]string{"LOG_LEVEL": "loud"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"PORT", "DB_DRIVER", "DATABASE_URL", "KAFKA_BROKERS", "LOG_LEVEL", "ENVIRONMENT", "EVENTS_TOPIC"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig()
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
