// file: launcher/bootstrap.go

package launcher

import (
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"helix-console/config"
)

// Bootstrap is the pre-configuration setup of one launch. Applications and
// bundles customize it from Initialize.
type Bootstrap[T config.Configuration] struct {
	app            Application[T]
	bundles        []Bundle[T]
	commands       []*cobra.Command
	codec          Codec
	validator      *validator.Validate
	sourceProvider config.SourceProvider
	envPrefix      string
	registry       *prometheus.Registry
}

func newBootstrap[T config.Configuration](app Application[T]) *Bootstrap[T] {
	return &Bootstrap[T]{
		app:            app,
		codec:          JSONCodec{},
		validator:      config.NewValidator(),
		sourceProvider: config.DefaultSourceProvider(),
		registry:       prometheus.NewRegistry(),
	}
}

func (b *Bootstrap[T]) Application() Application[T] { return b.app }

// AddBundle registers a bundle and initializes it immediately.
func (b *Bootstrap[T]) AddBundle(bundle Bundle[T]) {
	bundle.Initialize(b)
	b.bundles = append(b.bundles, bundle)
}

// AddCommand adds a subcommand to the application's command line.
func (b *Bootstrap[T]) AddCommand(cmd *cobra.Command) {
	b.commands = append(b.commands, cmd)
}

func (b *Bootstrap[T]) Commands() []*cobra.Command { return b.commands }

func (b *Bootstrap[T]) Codec() Codec { return b.codec }

func (b *Bootstrap[T]) SetCodec(c Codec) { b.codec = c }

func (b *Bootstrap[T]) Validator() *validator.Validate { return b.validator }

// SetValidator replaces the validator. Custom validators should start from
// config.NewValidator so the base rules keep working.
func (b *Bootstrap[T]) SetValidator(v *validator.Validate) { b.validator = v }

func (b *Bootstrap[T]) SourceProvider() config.SourceProvider { return b.sourceProvider }

func (b *Bootstrap[T]) SetSourceProvider(p config.SourceProvider) { b.sourceProvider = p }

func (b *Bootstrap[T]) EnvPrefix() string { return b.envPrefix }

// SetEnvPrefix enables environment overrides named PREFIX_SECTION_KEY.
func (b *Bootstrap[T]) SetEnvPrefix(prefix string) { b.envPrefix = prefix }

// MetricRegistry is the registry the environment and logger report into.
func (b *Bootstrap[T]) MetricRegistry() *prometheus.Registry { return b.registry }

// ConfigurationFactory returns the canonical loader for T.
func (b *Bootstrap[T]) ConfigurationFactory() *config.Factory[T] {
	return config.NewFactory[T](b.validator, b.envPrefix)
}
