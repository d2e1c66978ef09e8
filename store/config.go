package store

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Config configures a Redis backend connection. Exactly one backend
// address is accepted; multi-server routing and failover belong to the
// caller or a smarter client, not this layer.
type Config struct {
	// Addr is the host:port of the backend (required).
	Addr string

	// Password authenticates the connection (optional). Supports ${VAR}
	// environment expansion so credentials stay out of checked-in config.
	Password string

	// DB selects the Redis logical database.
	DB int

	// Prefix namespaces every key written through the backend (optional).
	// When set, FlushAll only removes keys under the prefix.
	Prefix string

	// DialTimeout bounds connection establishment. Default: 5s.
	DialTimeout time.Duration

	// ReadTimeout bounds individual reads. Default: 3s.
	ReadTimeout time.Duration

	// WriteTimeout bounds individual writes. Default: 3s.
	WriteTimeout time.Duration

	// Policy is the TTL policy applied by the Store adapter.
	Policy Policy
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("store: backend address is required")
	}
	if strings.Contains(c.Addr, ",") {
		return errors.New("store: exactly one backend address is supported")
	}
	if c.DB < 0 {
		return fmt.Errorf("store: database index must not be negative, got: %d", c.DB)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvStrict expands environment variables in s.
//
// Semantics:
//   - `$VAR` and `${VAR}` are expanded via os.ExpandEnv.
//   - If `${VAR}` is present but VAR is missing from the environment, it errors.
//   - `$$` emits a literal `$` (escape hatch).
func expandEnvStrict(s string) (string, error) {
	const dollarSentinel = "\x00TAGCACHE_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	missing := make(map[string]struct{})
	for _, match := range envVarPattern.FindAllStringSubmatch(s, -1) {
		key := match[1]
		if _, ok := os.LookupEnv(key); !ok {
			missing[key] = struct{}{}
		}
	}
	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("store: missing required environment variables: %s", strings.Join(keys, ", "))
	}

	s = os.ExpandEnv(s)
	s = strings.ReplaceAll(s, dollarSentinel, "$")
	return s, nil
}

// password resolves the configured password, expanding env references.
func (c *Config) password() (string, error) {
	if c.Password == "" {
		return "", nil
	}
	return expandEnvStrict(c.Password)
}
