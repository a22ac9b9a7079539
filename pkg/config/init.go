package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// InitConfig writes a sample configuration file to the default location,
// generating fresh development key material (§3: master_secret, sender_id,
// recipient_id). Fails if a config already exists there unless force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a sample configuration file to path.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	masterSecret, err := randomHex(32)
	if err != nil {
		return fmt.Errorf("generating master secret: %w", err)
	}
	senderID, err := randomHex(4)
	if err != nil {
		return fmt.Errorf("generating sender id: %w", err)
	}
	recipientID, err := randomHex(4)
	if err != nil {
		return fmt.Errorf("generating recipient id: %w", err)
	}

	content := fmt.Sprintf(sampleConfigTemplate, masterSecret, senderID, recipientID)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// randomHex returns n cryptographically random bytes, hex-encoded.
func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// sampleConfigTemplate is written by InitConfigToPath. The peer endpoint
// must be configured with sender_id/recipient_id swapped relative to this
// one, and the same master_secret/master_salt (§3 uniqueness requirement).
const sampleConfigTemplate = `# OSCORE Configuration File
#
# A random master_secret and sender/recipient IDs have been generated below
# for local development. For a real deployment, generate your own secret
# (e.g. openssl rand -hex 32) and coordinate sender_id/recipient_id with the
# peer endpoint: this endpoint's sender_id is the peer's recipient_id, and
# vice versa.

logging:
  level: INFO
  format: text
  output: stdout

metrics:
  enabled: false
  port: 9090

security:
  master_secret: %q
  master_salt: ""
  sender_id: %q
  recipient_id: %q
  id_context: ""
  replay_window_size: 32

store:
  backend: memory
  path: ""
  dsn: ""
  endpoint_id: ""

tracing:
  enabled: false
  endpoint: "localhost:4317"
  insecure: true
  sample_rate: 1.0

profiling:
  enabled: false
  endpoint: "http://localhost:4040"
  profile_types: [cpu, alloc_objects, inuse_objects]
`
