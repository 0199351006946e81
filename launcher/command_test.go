// file: launcher/command_test.go

package launcher

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, root *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	good := writeConfig(t, "greeting: hi\nserver:\n  address: 127.0.0.1:0\n")
	bad := writeConfig(t, "greeting: hi\n")

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{
			name: "valid",
			args: []string{"check", good},
			want: []string{"configuration is valid"},
		},
		{
			name: "print normalized",
			args: []string{"check", "--print", good},
			want: []string{"greeting: hi", "adminContextPath: /admin", "level: info"},
		},
		{
			name:    "missing server",
			args:    []string{"check", bad},
			wantErr: true,
		},
		{
			name:    "missing argument",
			args:    []string{"check"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewCommand(appFactory(&recorder{})), tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v\n%s", err, tt.wantErr, out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestServerCommandRejectsUnknownLogLevel(t *testing.T) {
	good := writeConfig(t, "greeting: hi\nserver:\n  address: 127.0.0.1:0\n")

	out, err := execute(t, NewCommand(appFactory(&recorder{})), "server", "--log-level", "foo", good)
	if err == nil || !strings.Contains(err.Error(), `unknown log level "foo"`) {
		t.Fatalf("Execute() error = %v, want unknown log level\n%s", err, out)
	}
}

func TestCommandIncludesBootstrapCommands(t *testing.T) {
	newApp := appFactory(&recorder{}, func(a *testApp) {
		a.bundles = []Bundle[*testConfig]{&commandBundle{}}
	})

	out, err := execute(t, NewCommand(newApp), "version")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if strings.TrimSpace(out) != "v1" {
		t.Errorf("version output = %q, want v1", out)
	}

	root := NewCommand(newApp)
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"server", "check", "version"} {
		if !strings.Contains(strings.Join(names, " "), want) {
			t.Errorf("commands = %v, missing %s", names, want)
		}
	}
}

type commandBundle struct{}

func (commandBundle) Initialize(b *Bootstrap[*testConfig]) {
	b.AddCommand(&cobra.Command{
		Use: "version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("v1")
		},
	})
}

func (commandBundle) Run(*testConfig, *Environment) error { return nil }
