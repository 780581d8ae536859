// cmd/rmcs/run.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"

	"github.com/33VM/RajaMantri/internal/cache"
	"github.com/33VM/RajaMantri/internal/commentary"
	"github.com/33VM/RajaMantri/internal/config"
	"github.com/33VM/RajaMantri/internal/console"
	"github.com/33VM/RajaMantri/internal/game"
	"github.com/33VM/RajaMantri/internal/models"
	"github.com/33VM/RajaMantri/internal/room"
	"github.com/33VM/RajaMantri/internal/session"
	"github.com/33VM/RajaMantri/internal/transport"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var errHostOnly = errors.New("only the host can open the court")

func newRegistry(ctx context.Context, cfg *config.Config) (transport.Registry, func(), error) {
	switch cfg.Registry {
	case config.RegistryRedis:
		rdb, err := cache.ConnectRedis(ctx, cache.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err != nil {
			return nil, nil, err
		}
		return transport.NewRedisRegistry(rdb, 0), func() { _ = rdb.Close() }, nil
	case config.RegistryMemory:
		return transport.NewMemoryRegistry(), func() {}, nil
	}
	return transport.StaticRegistry{Addr: cfg.HostAddr}, func() {}, nil
}

// renderer serialises screen updates coming from the session goroutine.
type renderer struct {
	mu     sync.Mutex
	out    io.Writer
	viewer string
}

func (r *renderer) render(s models.GameState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	console.Render(r.out, s, r.viewer)
}

func runHost(ctx context.Context, cfg *config.Config, logger *logrus.Logger, in io.Reader, out io.Writer) error {
	reg, closeRegistry, err := newRegistry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", session.MsgConnectionError, err)
	}
	defer closeRegistry()

	code := room.Generate()
	if cfg.Code != "" {
		if code, err = room.Parse(cfg.Code); err != nil {
			return err
		}
	}

	peer := transport.NewPeer(transport.Options{
		Listen:    cfg.Listen,
		Advertise: cfg.Advertise,
		Registry:  reg,
	}, logger)
	defer peer.Close()

	id, err := peer.Open(ctx, room.PeerAddress(code))
	if err != nil {
		return fmt.Errorf("%s: %w", session.UserMessage(err), err)
	}

	var rng game.Shuffler
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	screen := &renderer{out: out, viewer: id}
	host := session.NewHost(peer.Events(), session.HostConfig{
		ID:                id,
		Name:              cfg.Name,
		Commentator:       commentary.NewGemini(cfg.GeminiKey, cfg.GeminiModel, logger),
		CommentaryTimeout: cfg.CommentaryTimeout,
		Rand:              rng,
		OnState:           screen.render,
	}, logger)

	fmt.Fprintf(out, "Room code: %s (players dial %s)\n", code, peer.Addr())
	if qr, err := room.QRString(code); err == nil {
		fmt.Fprint(out, qr)
	}
	screen.render(host.State())

	return play(ctx, in, out, host.Run, func(c console.Command) error {
		switch c.Kind {
		case console.CmdStart:
			if n := len(host.State().Players); n != models.MaxPlayers {
				return fmt.Errorf("waiting for players (%d/%d)", n, models.MaxPlayers)
			}
			return host.Start()
		case console.CmdOpen:
			return host.OpenCourt()
		case console.CmdGuess:
			suspect, err := console.ResolveSuspect(host.State(), id, c.Arg)
			if err != nil {
				return err
			}
			return host.Guess(suspect)
		case console.CmdNext:
			return host.NextRound()
		}
		return nil
	})
}

func runJoin(ctx context.Context, cfg *config.Config, logger *logrus.Logger, in io.Reader, out io.Writer) error {
	code, err := room.Parse(cfg.Code)
	if err != nil {
		return err
	}
	reg, closeRegistry, err := newRegistry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", session.MsgConnectionError, err)
	}
	defer closeRegistry()

	peer := transport.NewPeer(transport.Options{Registry: reg}, logger)
	defer peer.Close()
	id, err := peer.Open(ctx, "")
	if err != nil {
		return fmt.Errorf("%s: %w", session.UserMessage(err), err)
	}

	screen := &renderer{out: out, viewer: id}
	client := session.NewClient(peer, session.ClientConfig{Name: cfg.Name, OnState: screen.render}, logger)
	if err := client.Join(ctx, code); err != nil {
		return fmt.Errorf("%s: %w", session.UserMessage(err), err)
	}
	fmt.Fprintf(out, "Joined room %s as %s\n", code, cfg.Name)

	err = play(ctx, in, out, client.Run, func(c console.Command) error {
		switch c.Kind {
		case console.CmdStart:
			return client.Start()
		case console.CmdOpen:
			return errHostOnly
		case console.CmdGuess:
			suspect, err := console.ResolveSuspect(client.State(), id, c.Arg)
			if err != nil {
				return err
			}
			return client.Guess(suspect)
		case console.CmdNext:
			return client.Restart()
		}
		return nil
	})
	if errors.Is(err, session.ErrHostDisconnected) {
		return errors.New(session.UserMessage(err))
	}
	return err
}

// play runs a session loop next to the command prompt. Quitting the prompt
// or the session ending stops both.
func play(ctx context.Context, in io.Reader, out io.Writer, run func(context.Context) error, handle console.Handler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return run(gctx) })
	g.Go(func() error {
		defer cancel()
		return console.Loop(gctx, in, out, handle)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
