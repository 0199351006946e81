// file: internal/store/nats.go

package store

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/nkeys"

	"helix-console/internal/logger"
)

const (
	// natsKVOperationTimeout bounds opening the bucket on Start.
	natsKVOperationTimeout = 10 * time.Second

	natsReconnectWait = 50 * time.Millisecond
)

// NATSConfig selects the NATS servers and the KV bucket holding the cluster
// records. At most one authentication method is used, in the order
// credsFile, nkeySeedFile, token, username.
type NATSConfig struct {
	URLs         []string  `json:"urls" yaml:"urls" validate:"required,min=1,dive,url"`
	Bucket       string    `json:"bucket" yaml:"bucket" validate:"required"`
	CredsFile    string    `json:"credsFile,omitempty" yaml:"credsFile,omitempty"`
	NKeySeedFile string    `json:"nkeySeedFile,omitempty" yaml:"nkeySeedFile,omitempty"`
	Token        string    `json:"token,omitempty" yaml:"token,omitempty"`
	Username     string    `json:"username,omitempty" yaml:"username,omitempty"`
	Password     string    `json:"password,omitempty" yaml:"password,omitempty"`
	TLS          TLSConfig `json:"tls" yaml:"tls"`
}

type TLSConfig struct {
	Enable   bool   `json:"enable" yaml:"enable"`
	CertFile string `json:"certFile,omitempty" yaml:"certFile,omitempty"`
	KeyFile  string `json:"keyFile,omitempty" yaml:"keyFile,omitempty"`
	CAFile   string `json:"caFile,omitempty" yaml:"caFile,omitempty"`
	Insecure bool   `json:"insecure" yaml:"insecure"`
}

// NATSStore reads records from a JetStream KV bucket. A record at
// /cluster/INSTANCES/node_1 is stored under the key cluster.INSTANCES.node_1.
// The connection is opened by Start and drained by Stop.
type NATSStore struct {
	cfg NATSConfig
	log *logger.Logger

	mu   sync.RWMutex
	conn *nats.Conn
	kv   jetstream.KeyValue
}

func NewNATSStore(cfg NATSConfig, log *logger.Logger) *NATSStore {
	return &NATSStore{cfg: cfg, log: log}
}

// Start connects to NATS and opens the bucket. The bucket must exist.
func (s *NATSStore) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}

	s.log.Info("connecting to NATS", "urls", s.cfg.URLs)

	opts, err := buildNATSOptions(s.cfg, s.log)
	if err != nil {
		return fmt.Errorf("failed to build NATS options: %w", err)
	}

	nc, err := nats.Connect(strings.Join(s.cfg.URLs, ","), opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	s.log.Info("NATS connection established", "connectedURL", nc.ConnectedUrl())

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create JetStream: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, natsKVOperationTimeout)
	defer cancel()

	kv, err := js.KeyValue(ctx, s.cfg.Bucket)
	if err != nil {
		nc.Close()
		if errors.Is(err, jetstream.ErrBucketNotFound) {
			return fmt.Errorf("KV bucket '%s' not found. Create it with: nats kv add %s",
				s.cfg.Bucket, s.cfg.Bucket)
		}
		return fmt.Errorf("failed to open KV bucket '%s': %w", s.cfg.Bucket, err)
	}
	s.log.Info("KV bucket opened", "bucket", s.cfg.Bucket)

	s.conn = nc
	s.kv = kv
	return nil
}

// Stop drains the connection.
func (s *NATSStore) Stop(ctx context.Context) error {
	return s.Close()
}

func (s *NATSStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	s.log.Info("closing NATS connection")
	err := s.conn.Drain()
	s.conn = nil
	s.kv = nil
	if err != nil {
		return fmt.Errorf("failed to drain connection: %w", err)
	}
	return nil
}

func (s *NATSStore) bucket() (jetstream.KeyValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.kv == nil {
		return nil, errStoreClosed
	}
	return s.kv, nil
}

func (s *NATSStore) Get(ctx context.Context, key PropertyKey) (*Record, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	kv, err := s.bucket()
	if err != nil {
		return nil, err
	}

	entry, err := kv.Get(ctx, kvKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, notFound(key)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key.Path(), err)
	}
	return DecodeRecord(entry.Value())
}

// Put writes rec at key.
func (s *NATSStore) Put(ctx context.Context, key PropertyKey, rec *Record) error {
	if err := key.Validate(); err != nil {
		return err
	}
	kv, err := s.bucket()
	if err != nil {
		return err
	}
	data, err := rec.Encode()
	if err != nil {
		return err
	}
	if _, err := kv.Put(ctx, kvKey(key), data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key.Path(), err)
	}
	return nil
}

func (s *NATSStore) Children(ctx context.Context, key PropertyKey) ([]string, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	kv, err := s.bucket()
	if err != nil {
		return nil, err
	}

	prefix := kvKey(key) + "."
	lister, err := kv.ListKeysFiltered(ctx, prefix+">")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", key.Path(), err)
	}
	defer lister.Stop()

	seen := make(map[string]struct{})
	for k := range lister.Keys() {
		rest := strings.TrimPrefix(k, prefix)
		name, _, _ := strings.Cut(rest, ".")
		seen[name] = struct{}{}
	}

	children := make([]string, 0, len(seen))
	for name := range seen {
		children = append(children, name)
	}
	sort.Strings(children)
	return children, nil
}

func (s *NATSStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conn == nil {
		return errStoreClosed
	}
	if status := s.conn.Status(); status != nats.CONNECTED {
		return fmt.Errorf("NATS connection is %s", status)
	}
	return nil
}

func kvKey(key PropertyKey) string {
	return strings.Join(key.Segments, ".")
}

// buildNATSOptions creates NATS connection options with auth and TLS.
func buildNATSOptions(cfg NATSConfig, log *logger.Logger) ([]nats.Option, error) {
	var opts []nats.Option

	opts = append(opts,
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(natsReconnectWait),
	)

	switch {
	case cfg.CredsFile != "":
		log.Info("using NATS creds file authentication", "credsFile", cfg.CredsFile)
		opts = append(opts, nats.UserCredentials(cfg.CredsFile))
	case cfg.NKeySeedFile != "":
		opt, pub, err := nkeyOption(cfg.NKeySeedFile)
		if err != nil {
			return nil, err
		}
		log.Info("using NATS NKey authentication", "publicKey", pub)
		opts = append(opts, opt)
	case cfg.Token != "":
		log.Info("using NATS token authentication")
		opts = append(opts, nats.Token(cfg.Token))
	case cfg.Username != "":
		log.Info("using NATS username/password authentication", "username", cfg.Username)
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	if cfg.TLS.Enable {
		log.Info("enabling TLS", "insecure", cfg.TLS.Insecure)

		tlsConfig := &tls.Config{
			InsecureSkipVerify: cfg.TLS.Insecure,
		}
		if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load TLS cert/key: %w", err)
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}
		if cfg.TLS.CAFile != "" {
			opts = append(opts, nats.RootCAs(cfg.TLS.CAFile))
		}
		opts = append(opts, nats.Secure(tlsConfig))
	}

	return opts, nil
}

// nkeyOption reads a user seed and signs server nonces with it.
func nkeyOption(seedFile string) (nats.Option, string, error) {
	seed, err := os.ReadFile(seedFile)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read nkey seed: %w", err)
	}
	kp, err := nkeys.FromSeed([]byte(strings.TrimSpace(string(seed))))
	if err != nil {
		return nil, "", fmt.Errorf("invalid nkey seed %s: %w", seedFile, err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, "", fmt.Errorf("failed to derive nkey public key: %w", err)
	}
	if !nkeys.IsValidPublicUserKey(pub) {
		return nil, "", fmt.Errorf("nkey seed %s is not a user seed", seedFile)
	}
	return nats.Nkey(pub, kp.Sign), pub, nil
}
