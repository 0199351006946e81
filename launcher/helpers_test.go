// file: launcher/helpers_test.go

package launcher

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"helix-console/config"
	"helix-console/internal/lifecycle"
)

type testConfig struct {
	config.Base `yaml:",inline"`
	Greeting    string `json:"greeting" yaml:"greeting"`
}

func newTestConfig(t *testing.T) *testConfig {
	t.Helper()
	return &testConfig{
		Base: config.Base{
			Server: &config.ServerConfig{Address: "127.0.0.1:0"},
			Logging: config.LogConfig{
				Level:      "debug",
				OutputPath: filepath.Join(t.TempDir(), "service.log"),
			},
			Metrics: config.MetricsConfig{Enabled: true},
		},
		Greeting: "hello",
	}
}

// recorder collects events from applications, bundles and options.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.list() {
		if e == event {
			n++
		}
	}
	return n
}

type testApp struct {
	rec      *recorder
	runErr   error
	bundles  []Bundle[*testConfig]
	managed  []managedSpec
	checkErr error
}

type managedSpec struct {
	name     string
	startErr error
}

func (a *testApp) Name() string { return "test-app" }

func (a *testApp) Initialize(b *Bootstrap[*testConfig]) {
	a.rec.add("initialize")
	for _, bundle := range a.bundles {
		b.AddBundle(bundle)
	}
}

func (a *testApp) Run(cfg *testConfig, env *Environment) error {
	if env.Metrics() == nil {
		a.rec.add("application saw no metrics")
	}
	if logged := logContents(cfg); !strings.Contains(logged, "metrics configured") {
		a.rec.add("application ran before metrics were logged")
	}
	a.rec.add("application")

	if a.runErr != nil {
		return a.runErr
	}

	greeting := cfg.Greeting
	env.Router().Get("/hello", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(greeting))
	})

	for _, m := range a.managed {
		m := m
		env.Lifecycle().Manage(m.name, lifecycleFuncs(a.rec, m))
	}

	checkErr := a.checkErr
	return env.HealthChecks().Register("app", HealthCheckFunc(func(ctx context.Context) error {
		return checkErr
	}))
}

func logContents(cfg *testConfig) string {
	data, err := os.ReadFile(cfg.Logging.OutputPath)
	if err != nil {
		return ""
	}
	return string(data)
}

// appFactory returns a constructor for fresh test applications sharing rec.
func appFactory(rec *recorder, customize ...func(*testApp)) func() Application[*testConfig] {
	return func() Application[*testConfig] {
		app := &testApp{rec: rec}
		for _, c := range customize {
			c(app)
		}
		return app
	}
}

type testBundle struct {
	rec  *recorder
	name string
}

func (b *testBundle) Initialize(bs *Bootstrap[*testConfig]) {
	b.rec.add(b.name + " initialize")
}

func (b *testBundle) Run(cfg *testConfig, env *Environment) error {
	if env.Metrics() == nil {
		b.rec.add(b.name + " saw no metrics")
	}
	b.rec.add(b.name + " run")
	return nil
}

func withStepObserver(rec *recorder) Option {
	return func(o *options) {
		o.onStep = func(step string) { rec.add("step " + step) }
	}
}

func withListen(fn listenFunc) Option {
	return func(o *options) {
		o.listen = fn
	}
}

func countingListener(rec *recorder, event string) Option {
	return WithStopListener(func() { rec.add(event) })
}

func lifecycleFuncs(rec *recorder, m managedSpec) lifecycle.Managed {
	return lifecycle.ManagedFuncs{
		StartFunc: func(ctx context.Context) error {
			rec.add("start " + m.name)
			return m.startErr
		},
		StopFunc: func(ctx context.Context) error {
			rec.add("stop " + m.name)
			return nil
		},
	}
}
