// file: launcher/server_test.go

package launcher

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/goccy/go-json"
)

func TestAdminRoutes(t *testing.T) {
	rec := &recorder{}
	srv, err := Launch(newTestConfig(t), appFactory(rec))
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer srv.Close()

	if code, _ := get(t, srv.URL()+"/hello"); code != http.StatusOK {
		t.Fatalf("GET /hello = %d, want 200", code)
	}

	code, body := get(t, srv.AdminURL()+"/healthcheck")
	if code != http.StatusOK {
		t.Errorf("GET /admin/healthcheck = %d, want 200", code)
	}
	var results map[string]HealthResult
	if err := json.Unmarshal([]byte(body), &results); err != nil {
		t.Fatalf("healthcheck body %q: %v", body, err)
	}
	if !results["app"].Healthy {
		t.Errorf("healthcheck app = %+v, want healthy", results["app"])
	}

	code, body = get(t, srv.AdminURL()+"/metrics")
	if code != http.StatusOK {
		t.Errorf("GET /admin/metrics = %d, want 200", code)
	}
	for _, want := range []string{"http_requests_total", `route="/hello"`, "log_events_total", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}

	if code, _ := get(t, srv.URL()+"/missing"); code != http.StatusNotFound {
		t.Errorf("GET /missing = %d, want 404", code)
	}
}

func TestUnhealthyCheck(t *testing.T) {
	rec := &recorder{}
	newApp := appFactory(rec, func(a *testApp) { a.checkErr = errors.New("store unreachable") })

	srv, err := Launch(newTestConfig(t), newApp)
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer srv.Close()

	code, body := get(t, srv.AdminURL()+"/healthcheck")
	if code != http.StatusInternalServerError {
		t.Errorf("GET /admin/healthcheck = %d, want 500", code)
	}
	if !strings.Contains(body, "store unreachable") {
		t.Errorf("healthcheck body = %q, want the check message", body)
	}
}

func TestMetricsDisabled(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Metrics.Enabled = false

	srv, err := Launch(cfg, appFactory(&recorder{}))
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer srv.Close()

	if code, _ := get(t, srv.AdminURL()+"/metrics"); code != http.StatusNotFound {
		t.Errorf("GET /admin/metrics = %d with metrics disabled, want 404", code)
	}
}

func TestHealthChecksRegister(t *testing.T) {
	h := newHealthChecks()
	ok := HealthCheckFunc(func(ctx context.Context) error { return nil })

	if err := h.Register("store", ok); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if err := h.Register("store", ok); err == nil {
		t.Error("Register() of a duplicate name expected error, got nil")
	}
	if err := h.Register("panics", HealthCheckFunc(func(ctx context.Context) error { panic("boom") })); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	results, healthy := h.RunAll(context.Background())
	if healthy {
		t.Error("RunAll() healthy = true with a panicking check")
	}
	if !results["store"].Healthy {
		t.Errorf("store = %+v, want healthy", results["store"])
	}
	if results["panics"].Healthy || !strings.Contains(results["panics"].Message, "panicked") {
		t.Errorf("panics = %+v, want unhealthy with a panic message", results["panics"])
	}
	if got := h.Names(); len(got) != 2 || got[0] != "panics" || got[1] != "store" {
		t.Errorf("Names() = %v, want [panics store]", got)
	}
}

func TestClassifyListenError(t *testing.T) {
	opErr := func(errno syscall.Errno) error {
		return &net.OpError{Op: "listen", Net: "tcp", Err: os.NewSyscallError("bind", errno)}
	}

	tests := []struct {
		name          string
		err           error
		wantExhausted bool
	}{
		{"address in use", opErr(syscall.EADDRINUSE), false},
		{"permission denied", opErr(syscall.EACCES), false},
		{"process descriptor limit", opErr(syscall.EMFILE), true},
		{"system descriptor limit", opErr(syscall.ENFILE), true},
		{"unresolvable host", errors.New("lookup nowhere: no such host"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyListenError("127.0.0.1:8080", tt.err)

			var rerr *ResourceExhaustionError
			var berr *ServiceBindError
			switch {
			case tt.wantExhausted && !errors.As(err, &rerr):
				t.Errorf("classifyListenError() = %T, want *ResourceExhaustionError", err)
			case !tt.wantExhausted && !errors.As(err, &berr):
				t.Errorf("classifyListenError() = %T, want *ServiceBindError", err)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("classifyListenError() does not wrap the listen error")
			}
		})
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateCreated, "created"},
		{StateRunning, "running"},
		{StateStopped, "stopped"},
		{State(7), "State(7)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}
