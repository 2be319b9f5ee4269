// Package channel establishes the byte stream a chat session runs over and
// closes it. The stream is either a raw TCP connection or a WebSocket whose
// binary messages are stitched back into a stream.
package channel

import (
	"context"
	"fmt"
	"io"

	"github.com/1ureka/duplex/internal/config"
	"github.com/1ureka/duplex/internal/util"
)

// Channel is a connected, ordered, reliable byte stream to the peer.
type Channel struct {
	io.ReadWriteCloser

	Role   config.Role // the role actually taken: RoleHost or RoleClient
	Remote string      // peer address for logging
}

// acceptor waits for the one peer a host serves.
type acceptor interface {
	Accept(ctx context.Context) (io.ReadWriteCloser, string, error)
	Addr() string
	Close() error
}

// Open establishes the channel described by cfg. In auto role it first tries
// to listen on cfg.Addr and falls back to dialing it when that fails. If m is
// not nil every byte crossing the channel is counted in it.
func Open(ctx context.Context, cfg config.Config, m *util.Meter) (*Channel, error) {
	var (
		ch  *Channel
		err error
	)

	switch cfg.Role {
	case config.RoleHost:
		ch, err = host(ctx, cfg)

	case config.RoleClient:
		ch, err = dial(ctx, cfg)

	case config.RoleAuto:
		a, lerr := listen(cfg)
		if lerr != nil {
			util.LogDebug("cannot listen on %s (%v), dialing instead", cfg.Addr, lerr)
			ch, err = dial(ctx, cfg)
		} else {
			ch, err = serve(ctx, a)
		}

	default:
		return nil, fmt.Errorf("%w: unknown role %q", config.ErrInvalidConfig, cfg.Role)
	}
	if err != nil {
		return nil, err
	}

	if m != nil {
		ch.ReadWriteCloser = Metered(ch.ReadWriteCloser, m)
	}
	return ch, nil
}

func host(ctx context.Context, cfg config.Config) (*Channel, error) {
	a, err := listen(cfg)
	if err != nil {
		return nil, err
	}
	return serve(ctx, a)
}

// serve accepts exactly one peer and stops listening.
func serve(ctx context.Context, a acceptor) (*Channel, error) {
	defer a.Close()

	util.LogInfo("waiting for a peer on %s", a.Addr())
	rwc, remote, err := a.Accept(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for peer: %w", err)
	}
	util.LogSuccess("peer connected from %s", remote)
	return &Channel{ReadWriteCloser: rwc, Role: config.RoleHost, Remote: remote}, nil
}

func listen(cfg config.Config) (acceptor, error) {
	switch cfg.Carrier {
	case config.CarrierWS:
		return listenWS(cfg.Addr)
	default:
		return listenTCP(cfg.Addr)
	}
}

func dial(ctx context.Context, cfg config.Config) (*Channel, error) {
	var (
		rwc    io.ReadWriteCloser
		remote string
		err    error
	)
	switch cfg.Carrier {
	case config.CarrierWS:
		rwc, remote, err = dialWS(ctx, cfg.Addr)
	default:
		rwc, remote, err = dialTCP(ctx, cfg.Addr)
	}
	if err != nil {
		return nil, err
	}
	util.LogSuccess("connected to %s", remote)
	return &Channel{ReadWriteCloser: rwc, Role: config.RoleClient, Remote: remote}, nil
}
