package observability

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/riskibarqy/bloodbowl-league/internal/config"
	"github.com/riskibarqy/bloodbowl-league/internal/platform/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "bloodbowl-league-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	shutdown, err := InitUptrace(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestUptraceDisabledReason(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{name: "flag off", cfg: config.Config{UptraceDSN: "https://token@api.uptrace.dev/1"}, want: "UPTRACE_ENABLED=false"},
		{name: "no dsn", cfg: config.Config{UptraceEnabled: true, UptraceDSN: "  "}, want: "UPTRACE_DSN empty"},
		{name: "enabled", cfg: config.Config{UptraceEnabled: true, UptraceDSN: "https://token@api.uptrace.dev/1"}},
	}
	for _, tt := range tests {
		if got := uptraceDisabledReason(tt.cfg); got != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}

	if got := len(uptraceOptions(config.Config{UptraceDSN: "https://token@api.uptrace.dev/1"})); got != 7 {
		t.Fatalf("expected 7 uptrace options, got %d", got)
	}
}

func TestPyroscopeConfig_TagsAndLogger(t *testing.T) {
	core, logs := observer.New(logging.LevelDebug)
	cfg := config.Config{
		AppEnv:           config.EnvStage,
		ServiceName:      "bloodbowl-league-api",
		ServiceVersion:   "1.4.0",
		StorageDriver:    config.StoragePostgres,
		PyroscopeAppName: "bloodbowl-league",
	}

	pc := pyroscopeConfig(cfg, logging.FromZap(zap.New(core)))
	if pc.ApplicationName != "bloodbowl-league" {
		t.Fatalf("unexpected application name %q", pc.ApplicationName)
	}
	want := map[string]string{"env": "stage", "service": "bloodbowl-league-api", "version": "1.4.0", "storage": "postgres"}
	for k, v := range want {
		if pc.Tags[k] != v {
			t.Fatalf("tag %s = %q, want %q", k, pc.Tags[k], v)
		}
	}

	pc.Logger.Errorf("upload failed: %d", 503)
	entries := logs.All()
	if len(entries) != 1 || entries[0].Message != "upload failed: 503" {
		t.Fatalf("unexpected profiler log entries: %+v", entries)
	}
	if entries[0].ContextMap()["component"] != "pyroscope" {
		t.Fatalf("expected component field, got %+v", entries[0].ContextMap())
	}
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{}, logging.NewNop())
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop pyroscope: %v", err)
	}
}

func TestPprofServer_DisabledIsNil(t *testing.T) {
	srv, err := StartPprofServer(config.Config{}, logging.NewNop())
	if err != nil || srv != nil {
		t.Fatalf("expected nil server when disabled, got %v, %v", srv, err)
	}
	if err := StopPprofServer(nil, logging.NewNop(), time.Second); err != nil {
		t.Fatalf("stop nil server: %v", err)
	}
}

func TestPprofServer_ServesIndex(t *testing.T) {
	srv, err := StartPprofServer(config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}, logging.NewNop())
	if err != nil {
		t.Fatalf("start pprof: %v", err)
	}
	defer func() { _ = StopPprofServer(srv, logging.NewNop(), time.Second) }()

	resp, err := http.Get("http://" + srv.Addr + "/debug/pprof/")
	if err != nil {
		t.Fatalf("get pprof index: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
