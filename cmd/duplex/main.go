// Duplex CLI entry point.
//
// Two people chat over one TCP connection (or one WebSocket). Each line typed
// is a command: "-m <text>" sends a message, "-f <path>" sends a file from the
// outbox directory. Received files land in the inbox directory.
//
// It can be launched interactively (no -role flag) or non-interactively via
// CLI flags (-role, -carrier, -addr, -name, -peer, -outbox, -inbox, -chunk).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/pterm/pterm"

	"github.com/1ureka/duplex/internal/channel"
	"github.com/1ureka/duplex/internal/config"
	"github.com/1ureka/duplex/internal/console"
	"github.com/1ureka/duplex/internal/session"
	"github.com/1ureka/duplex/internal/util"
)

var version = "dev"

func main() {
	// Root context, cancelled on Ctrl+C.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.Default()

	// CLI flags.
	role := flag.String("role", "", "Role: auto, host or client (omit for interactive prompts)")
	carrier := flag.String("carrier", string(cfg.Carrier), "Carrier: tcp or ws")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Address to listen on (host) or dial (client); ws URLs are accepted for the ws carrier")
	flag.StringVar(&cfg.LocalName, "name", "", "Your name (default USER_1 when listening, USER_2 when dialing)")
	flag.StringVar(&cfg.PeerName, "peer", "", "Peer name (default derived from the role)")
	flag.StringVar(&cfg.OutboxDir, "outbox", cfg.OutboxDir, "Directory files are sent from")
	flag.StringVar(&cfg.InboxDir, "inbox", cfg.InboxDir, "Directory received files are written to")
	flag.IntVar(&cfg.ChunkSize, "chunk", cfg.ChunkSize, "File chunk size in bytes, a multiple of 1024 (must match the peer)")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	flag.Parse()

	if cfg.Debug {
		util.EnableDebug()
	}

	pterm.Info.Println(fmt.Sprintf("Duplex v%s", version))
	pterm.Println()

	var err error
	if cfg.Carrier, err = config.ParseCarrier(*carrier); err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}

	if *role == "" {
		// No -role flag → interactive mode.
		askRole(&cfg)
	} else if cfg.Role, err = config.ParseRole(*role); err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}

	// Fail before connecting if nothing could be received.
	if err := cfg.PrepareInbox(); err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}
	if info, err := os.Stat(cfg.OutboxDir); err != nil || !info.IsDir() {
		util.LogWarning("outbox %s does not exist; -f will not find any file", cfg.OutboxPath())
	}

	run(ctx, cfg)

	util.LogInfo("successfully closed chat connection")
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

// run opens the channel, then drives one chat session until either side
// leaves or the user presses Ctrl+C.
func run(ctx context.Context, cfg config.Config) {
	ch, err := channel.Open(ctx, cfg, util.Stats)
	if err != nil {
		util.LogError("failed to open channel: %v", err)
		os.Exit(1)
	}
	cfg.ApplyRoleNames(ch.Role)

	util.StartStatsReporter(ctx, util.Stats)
	util.LogSuccess("chatting as %s with %s (%s)", cfg.LocalName, cfg.PeerName, ch.Remote)

	pterm.Println("Type -m <text> to send a message or -f <file> to send a file from " + cfg.OutboxPath())
	pterm.Println()

	s := session.Start(ch, session.Config{
		LocalName: cfg.LocalName,
		PeerName:  cfg.PeerName,
		OutboxDir: cfg.OutboxDir,
		InboxDir:  cfg.InboxDir,
		ChunkSize: cfg.ChunkSize,
		Input:     os.Stdin,
		Display:   console.New(os.Stdout),
		Meter:     util.Stats,
	})

	select {
	case <-s.Done():
	case <-ctx.Done():
		s.Close()
		s.Wait()
	}
}

// ---------------------------------------------------------------------------
// Interactive prompts
// ---------------------------------------------------------------------------

// askRole asks for the role and the address when no -role flag is given.
func askRole(cfg *config.Config) {
	choice, _ := pterm.DefaultInteractiveSelect.
		WithOptions([]string{
			"Auto   - Host if the address is free, otherwise join",
			"Host   - Wait for a peer",
			"Client - Connect to a host",
		}).
		WithDefaultText("Select your role").
		Show()

	pterm.Println()

	switch {
	case strings.HasPrefix(choice, "Host"):
		cfg.Role = config.RoleHost
		cfg.Addr = askAddr("Address to listen on", cfg.Addr)
	case strings.HasPrefix(choice, "Client"):
		cfg.Role = config.RoleClient
		cfg.Addr = askAddr("Address to connect to", cfg.Addr)
	default:
		cfg.Role = config.RoleAuto
		cfg.Addr = askAddr("Address", cfg.Addr)
	}
}

// askAddr prompts for an address until a non-empty one is entered.
func askAddr(prompt, def string) string {
	for {
		raw, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText(prompt).
			WithDefaultValue(def).
			Show()

		if addr := strings.TrimSpace(raw); addr != "" {
			pterm.Println()
			return addr
		}

		util.LogWarning("invalid input: please enter a host:port or URL")
		pterm.Println()
	}
}
