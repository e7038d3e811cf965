package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/interest-protocol/memez-fun/internal/sui"
)

type Config struct {
	Log struct {
		Debug bool `yaml:"debug"`
	} `yaml:"log"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	Sui struct {
		Network           string   `yaml:"network"`
		RPCEndpoints      []string `yaml:"rpc_endpoints"`
		WSEndpoint        string   `yaml:"ws_endpoint"`
		Retries           int      `yaml:"retries"`
		TimeoutSeconds    int      `yaml:"timeout_seconds"`
		FailoverThreshold int      `yaml:"failover_threshold"`
	} `yaml:"sui"`
	Memez struct {
		PackageID string `yaml:"package_id"`
		Module    string `yaml:"module"`
	} `yaml:"memez"`
	Indexer struct {
		IntervalSeconds int64 `yaml:"interval_seconds"`
		PageSize        int   `yaml:"page_size"`
		MaxPagesPerTick int   `yaml:"max_pages_per_tick"`
		Subscribe       bool  `yaml:"subscribe"`
	} `yaml:"indexer"`
}

// Load reads the YAML file at path (or CONFIG_PATH, or configs/config.yaml),
// after loading .env files from the same directory, then applies environment
// overrides and defaults. A missing file is not an error: everything can come
// from the environment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}
	loadEnv(filepath.Dir(path))

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Network returns the configured network; validate guarantees it parses.
func (c *Config) Network() sui.Network {
	n, _ := sui.ParseNetwork(c.Sui.Network)
	return n
}

// WSEndpoint returns the explicit websocket endpoint or one derived from the
// first RPC endpoint.
func (c *Config) WSEndpoint() string {
	if c.Sui.WSEndpoint != "" {
		return c.Sui.WSEndpoint
	}
	if len(c.Sui.RPCEndpoints) == 0 {
		return ""
	}
	return sui.DefaultWSEndpoint(c.Sui.RPCEndpoints[0])
}

// EventFilter selects every event type declared in the memez events module.
func (c *Config) EventFilter() sui.EventFilter {
	return sui.EventFilter{MoveEventModule: &sui.MoveModule{Package: c.Memez.PackageID, Module: c.Memez.Module}}
}

func (c *Config) validate() error {
	if _, err := sui.ParseNetwork(c.Sui.Network); err != nil {
		return err
	}
	if len(c.Sui.RPCEndpoints) == 0 {
		return errors.New("sui.rpc_endpoints is required")
	}
	if c.Indexer.PageSize < 1 || c.Indexer.PageSize > 1000 {
		return errors.New("indexer.page_size must be between 1 and 1000")
	}
	return nil
}

// RequireDB and RequirePackage are checked by the binaries that need them.
func (c *Config) RequireDB() error {
	if c.DB.DSN == "" {
		return errors.New("db.dsn is required")
	}
	return nil
}

func (c *Config) RequirePackage() error {
	if c.Memez.PackageID == "" {
		return errors.New("memez.package_id is required")
	}
	if _, err := sui.NormalizeAddress(c.Memez.PackageID); err != nil {
		return err
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Sui.Network == "" {
		cfg.Sui.Network = string(sui.Testnet)
	}
	if len(cfg.Sui.RPCEndpoints) == 0 {
		if n, err := sui.ParseNetwork(cfg.Sui.Network); err == nil {
			cfg.Sui.RPCEndpoints = []string{sui.GetFullnodeURL(n)}
		}
	}
	if cfg.Sui.Retries == 0 {
		cfg.Sui.Retries = sui.DefaultRetries
	}
	if cfg.Sui.TimeoutSeconds == 0 {
		cfg.Sui.TimeoutSeconds = 10
	}
	if cfg.Memez.Module == "" {
		cfg.Memez.Module = "events"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Indexer.IntervalSeconds <= 0 {
		cfg.Indexer.IntervalSeconds = 10
	}
	if cfg.Indexer.PageSize == 0 {
		cfg.Indexer.PageSize = 50
	}
	if cfg.Indexer.MaxPagesPerTick == 0 {
		cfg.Indexer.MaxPagesPerTick = 20
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_DEBUG"); v != "" {
		cfg.Log.Debug = boolOr(cfg.Log.Debug, v)
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("SUI_NETWORK"); v != "" {
		cfg.Sui.Network = v
	}
	if v := os.Getenv("SUI_RPC_ENDPOINTS"); v != "" {
		cfg.Sui.RPCEndpoints = splitCommaList(v)
	}
	if v := os.Getenv("SUI_WS_ENDPOINT"); v != "" {
		cfg.Sui.WSEndpoint = v
	}
	if v := os.Getenv("SUI_RETRIES"); v != "" {
		cfg.Sui.Retries = atoiOr(cfg.Sui.Retries, v)
	}
	if v := os.Getenv("SUI_TIMEOUT_SECONDS"); v != "" {
		cfg.Sui.TimeoutSeconds = atoiOr(cfg.Sui.TimeoutSeconds, v)
	}
	if v := os.Getenv("SUI_FAILOVER_THRESHOLD"); v != "" {
		cfg.Sui.FailoverThreshold = atoiOr(cfg.Sui.FailoverThreshold, v)
	}
	if v := os.Getenv("MEMEZ_PACKAGE_ID"); v != "" {
		cfg.Memez.PackageID = v
	}
	if v := os.Getenv("MEMEZ_MODULE"); v != "" {
		cfg.Memez.Module = v
	}
	if v := os.Getenv("INDEXER_INTERVAL_SECONDS"); v != "" {
		cfg.Indexer.IntervalSeconds = atoi64Or(cfg.Indexer.IntervalSeconds, v)
	}
	if v := os.Getenv("INDEXER_PAGE_SIZE"); v != "" {
		cfg.Indexer.PageSize = atoiOr(cfg.Indexer.PageSize, v)
	}
	if v := os.Getenv("INDEXER_MAX_PAGES_PER_TICK"); v != "" {
		cfg.Indexer.MaxPagesPerTick = atoiOr(cfg.Indexer.MaxPagesPerTick, v)
	}
	if v := os.Getenv("INDEXER_SUBSCRIBE"); v != "" {
		cfg.Indexer.Subscribe = boolOr(cfg.Indexer.Subscribe, v)
	}
}

// loadEnv loads .env then .env.local from dir; later files win. Missing
// files are ignored.
func loadEnv(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		_ = godotenv.Overload(filepath.Join(dir, name))
	}
}

func splitCommaList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func atoiOr(fallback int, v string) int {
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func atoi64Or(fallback int64, v string) int64 {
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func boolOr(fallback bool, v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
