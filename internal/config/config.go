// Package config holds the CLI configuration types.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Role represents how the local side obtains the channel.
type Role string

const (
	RoleAuto   Role = "auto"   // listen if the address is free, else dial
	RoleHost   Role = "host"   // listen and accept one peer
	RoleClient Role = "client" // dial the host
)

// Carrier selects the byte stream the chat runs over.
type Carrier string

const (
	CarrierTCP Carrier = "tcp"
	CarrierWS  Carrier = "ws" // binary WebSocket messages
)

// Defaults.
const (
	DefaultPort       = 4444
	DefaultHostName   = "USER_1"
	DefaultClientName = "USER_2"
	DefaultOutboxDir  = "filesToSend"
	DefaultInboxDir   = "receivedFiles"
	DefaultChunkSize  = 1024

	// WSPath is the HTTP path the WebSocket carrier is served on.
	WSPath = "/duplex"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config stores all parameters gathered from flags and interactive prompts.
type Config struct {
	Role    Role
	Carrier Carrier
	Addr    string // host: listen address; client: address or ws:// URL to dial

	LocalName string // empty: derived from the resolved role
	PeerName  string // empty: derived from the resolved role

	OutboxDir string
	InboxDir  string
	ChunkSize int

	Debug bool
}

// Default returns the configuration used when no flags are given.
func Default() Config {
	return Config{
		Role:      RoleAuto,
		Carrier:   CarrierTCP,
		Addr:      ":" + strconv.Itoa(DefaultPort),
		OutboxDir: DefaultOutboxDir,
		InboxDir:  DefaultInboxDir,
		ChunkSize: DefaultChunkSize,
	}
}

// ParseRole converts a flag value into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAuto, RoleHost, RoleClient:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q (want auto, host or client)", ErrInvalidConfig, s)
}

// ParseCarrier converts a flag value into a Carrier.
func ParseCarrier(s string) (Carrier, error) {
	switch c := Carrier(s); c {
	case CarrierTCP, CarrierWS:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown carrier %q (want tcp or ws)", ErrInvalidConfig, s)
}

// Validate checks the configuration before anything is opened.
func (c *Config) Validate() error {
	if _, err := ParseRole(string(c.Role)); err != nil {
		return err
	}
	if _, err := ParseCarrier(string(c.Carrier)); err != nil {
		return err
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: empty address", ErrInvalidConfig)
	}
	if c.OutboxDir == "" || c.InboxDir == "" {
		return fmt.Errorf("%w: outbox and inbox directories are required", ErrInvalidConfig)
	}
	// Both sides read and write content in the same cadence, so the chunk
	// size has to stay a multiple of the default.
	if c.ChunkSize <= 0 || c.ChunkSize%DefaultChunkSize != 0 {
		return fmt.Errorf("%w: chunk size %d is not a positive multiple of %d", ErrInvalidConfig, c.ChunkSize, DefaultChunkSize)
	}
	return nil
}

// ApplyRoleNames fills in empty names once the role is known: the listener is
// USER_1 and the dialer USER_2.
func (c *Config) ApplyRoleNames(resolved Role) {
	local, peer := DefaultHostName, DefaultClientName
	if resolved == RoleClient {
		local, peer = peer, local
	}
	if c.LocalName == "" {
		c.LocalName = local
	}
	if c.PeerName == "" {
		c.PeerName = peer
	}
}

// PrepareInbox creates the inbox directory if needed and checks that files
// can be created in it.
func (c *Config) PrepareInbox() error {
	if err := os.MkdirAll(c.InboxDir, 0o755); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}
	probe, err := os.CreateTemp(c.InboxDir, ".probe-*")
	if err != nil {
		return fmt.Errorf("inbox %s is not writable: %w", c.InboxDir, err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

// OutboxPath returns the absolute outbox path for display.
func (c *Config) OutboxPath() string {
	if abs, err := filepath.Abs(c.OutboxDir); err == nil {
		return abs
	}
	return c.OutboxDir
}
