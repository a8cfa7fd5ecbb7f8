package cmd

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/Sentinel-Gate/appgate/internal/domain/policy"
	"github.com/Sentinel-Gate/appgate/internal/port/inbound"
)

func TestCommands_Registered(t *testing.T) {
	want := []string{"run", "login", "logout", "status", "prices", "entity", "theme", "config", "version"}
	have := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("%s command not registered with rootCmd", name)
		}
	}
}

func TestRunCmd_FlagDefaults(t *testing.T) {
	login, err := runCmd.Flags().GetBool("login")
	if err != nil {
		t.Fatalf("failed to get login flag: %v", err)
	}
	if login {
		t.Error("login should default to false")
	}
	price, err := runCmd.Flags().GetString("price")
	if err != nil {
		t.Fatalf("failed to get price flag: %v", err)
	}
	if price != "" {
		t.Errorf("price default = %q, want empty", price)
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOutputFormat(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"", "text", "json", "yaml"} {
		if _, err := outputFormat(ok); err != nil {
			t.Errorf("outputFormat(%q) error: %v", ok, err)
		}
	}
	if _, err := outputFormat("xml"); err == nil {
		t.Error("outputFormat(xml) should fail")
	}
}

func TestReadRecord(t *testing.T) {
	t.Parallel()

	rec, err := readRecord(nil, `{"title":"docs","done":false}`)
	if err != nil {
		t.Fatalf("readRecord() error: %v", err)
	}
	if rec["title"] != "docs" {
		t.Errorf("title = %v", rec["title"])
	}

	rec, err = readRecord(strings.NewReader(`{"n":1}`), "-")
	if err != nil || rec["n"] != 1.0 {
		t.Errorf("readRecord(stdin) = %v, %v", rec, err)
	}

	for _, bad := range []string{"", "[1,2]", "null", "{"} {
		if _, err := readRecord(nil, bad); err == nil {
			t.Errorf("readRecord(%q) should fail", bad)
		}
	}
}

func TestWriteStructured(t *testing.T) {
	t.Parallel()

	snap := inbound.Snapshot{View: policy.ViewContent, Mode: policy.ModeOpen}

	var js bytes.Buffer
	if err := writeStructured(&js, "json", snap); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(js.String(), `"view": "content"`) {
		t.Errorf("json output = %s", js.String())
	}

	var ym bytes.Buffer
	if err := writeStructured(&ym, "yaml", snap); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(ym.String(), "view: content") {
		t.Errorf("yaml output = %s", ym.String())
	}

	if err := writeStructured(&ym, "xml", snap); err == nil {
		t.Error("xml should be rejected")
	}
}

func TestStatusCmd_EndToEnd(t *testing.T) {
	// Uses the global viper instance and root command; not parallel.
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/apps/app-1/config":
			_, _ = w.Write([]byte(`{"monetization":{"type":"payment_required"}}`))
		case "/apps/app-1/me":
			_, _ = w.Write([]byte(`{"appId":"app-1","email":"ada@example.com","billingStatus":"past_due"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer backend.Close()

	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("APPGATE_APP_ID", "app-1")
	t.Setenv("APPGATE_BACKEND_BASE_URL", backend.URL)
	t.Setenv("APPGATE_LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"status", "-o", "json", "--prefs", filepath.Join(t.TempDir(), "prefs.json")})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("status failed: %v\nstderr: %s", err, errOut.String())
	}

	var snap inbound.Snapshot
	if err := json.Unmarshal(out.Bytes(), &snap); err != nil {
		t.Fatalf("status output is not JSON: %v\n%s", err, out.String())
	}
	if snap.View != policy.ViewPayment {
		t.Errorf("view = %q, want payment", snap.View)
	}
	if snap.Mode != policy.ModePaymentRequired {
		t.Errorf("mode = %q, want payment_required", snap.Mode)
	}
	if !snap.Session.Authenticated {
		t.Error("session should be authenticated")
	}
}
