package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Addr != ":4444" {
		t.Errorf("Addr = %q, want :4444", cfg.Addr)
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"host over ws", func(c *Config) { c.Role = RoleHost; c.Carrier = CarrierWS }, false},
		{"chunk 4096", func(c *Config) { c.ChunkSize = 4096 }, false},
		{"unknown role", func(c *Config) { c.Role = "server" }, true},
		{"unknown carrier", func(c *Config) { c.Carrier = "udp" }, true},
		{"empty addr", func(c *Config) { c.Addr = "" }, true},
		{"empty inbox", func(c *Config) { c.InboxDir = "" }, true},
		{"zero chunk", func(c *Config) { c.ChunkSize = 0 }, true},
		{"odd chunk", func(c *Config) { c.ChunkSize = 1000 }, true},
		{"negative chunk", func(c *Config) { c.ChunkSize = -1024 }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("err = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestApplyRoleNames(t *testing.T) {
	testCases := []struct {
		name      string
		role      Role
		local     string
		peer      string
		wantLocal string
		wantPeer  string
	}{
		{"host", RoleHost, "", "", "USER_1", "USER_2"},
		{"client", RoleClient, "", "", "USER_2", "USER_1"},
		{"explicit names kept", RoleClient, "alice", "bob", "alice", "bob"},
		{"only local given", RoleHost, "alice", "", "alice", "USER_2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{LocalName: tc.local, PeerName: tc.peer}
			cfg.ApplyRoleNames(tc.role)
			if cfg.LocalName != tc.wantLocal || cfg.PeerName != tc.wantPeer {
				t.Errorf("names = %s/%s, want %s/%s", cfg.LocalName, cfg.PeerName, tc.wantLocal, tc.wantPeer)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"auto", "host", "client"} {
		if r, err := ParseRole(s); err != nil || string(r) != s {
			t.Errorf("ParseRole(%q) = %q, %v", s, r, err)
		}
	}
	if _, err := ParseRole("HOST"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ParseRole(HOST) err = %v, want ErrInvalidConfig", err)
	}
}

func TestPrepareInbox(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		cfg := Default()
		cfg.InboxDir = filepath.Join(t.TempDir(), "a", "b")
		if err := cfg.PrepareInbox(); err != nil {
			t.Fatalf("PrepareInbox: %v", err)
		}
		entries, err := os.ReadDir(cfg.InboxDir)
		if err != nil {
			t.Fatalf("inbox not created: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("probe file left behind: %v", entries)
		}
	})

	t.Run("inbox is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		cfg := Default()
		cfg.InboxDir = path
		if err := cfg.PrepareInbox(); err == nil {
			t.Fatal("PrepareInbox succeeded on a regular file")
		}
	})
}
