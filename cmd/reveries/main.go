package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeusync/reveries/internal/command"
	"github.com/zeusync/reveries/internal/config"
	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/host/memory"
	"github.com/zeusync/reveries/internal/core/npc/property"
	"github.com/zeusync/reveries/internal/core/npc/trait"
	"github.com/zeusync/reveries/internal/injector"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "reveries.yaml", "path to the YAML configuration")
	world := flag.String("world", "overworld", "name of the demo world")
	flag.Parse()

	if err := run(*configPath, *world); err != nil {
		fmt.Fprintln(os.Stderr, "reveries:", err)
		os.Exit(1)
	}
}

func run(configPath, world string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	h := memory.New(world)
	h.Chat().Out = func(m memory.Message) {
		fmt.Printf("[%s] %s\n", m.To, m.Text.Plain())
	}

	r, cleanup, err := injector.InitializeReveries(command.Info{Name: "Reveries", Version: version}, cfg, h)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := r.PreInit(); err != nil {
		return err
	}
	if err := r.Start(ctx); err != nil {
		return err
	}

	if err := demo(ctx, r.Commands(), h, world); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	// every host callback runs on this goroutine, like a host tick thread
	ticker := time.NewTicker(memory.TickDuration)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.Clock().Tick()
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				if err := r.Reload(ctx); err != nil {
					return err
				}
				continue
			}
			return r.Stop(ctx)
		}
	}
}

// demo spawns one NPC for a fake player and exercises every command.
func demo(ctx context.Context, d *command.Dispatcher, h *memory.Host, world string) error {
	player := memory.NewPlayer("steve", host.Location{World: world})
	h.Players().Add(player.Username, player.ID)

	if err := d.Dispatch(ctx, player, command.CmdVersion, nil); err != nil {
		return err
	}
	if err := d.Dispatch(ctx, player, command.CmdCreate, command.Args{
		command.ArgDisplayName: "&6Town Crier",
	}); err != nil {
		return err
	}

	entities := h.Store().Entities()
	if len(entities) == 0 {
		return fmt.Errorf("demo NPC was not spawned")
	}
	npc := entities[0]

	if err := d.Dispatch(ctx, player, command.CmdTraits, command.Args{
		command.ArgNPC:           npc,
		trait.LookAtPlayers.ID(): true,
		trait.Invulnerable.ID():  true,
	}); err != nil {
		return err
	}
	return d.Dispatch(ctx, player, command.CmdProperties, command.Args{
		command.ArgNPC:        npc,
		property.SightRangeID: 16.0,
		property.SkinID:       player.Username,
	})
}
