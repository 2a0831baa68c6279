// Command gdbstub-tcp-server is a minimal demonstration of wiring
// gdbstub.Session over transport/tcp against an in-memory demoTarget,
// replacing the donor's --debug-json/actors/deadlocks flag surface
// entirely: this library has no Orizon-specific debug-info format, only
// the Target Adapter interface a real embedded target would implement.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/orizon-lang/gdbstub/config"
	"github.com/orizon-lang/gdbstub/gdbstub"
	"github.com/orizon-lang/gdbstub/transport/tcp"
)

func main() {
	var (
		addr       string
		configPath string
	)

	flag.StringVar(&addr, "addr", ":9000", "listen address for RSP (tcp)")
	flag.StringVar(&configPath, "config", "", "path to monitor-command/feature-toggle JSON (optional, hot-reloaded)")
	flag.Parse()

	var watcher *config.Watcher

	if configPath != "" {
		w, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load config failed:", err)
			os.Exit(1)
		}

		if _, err := w.Watch(); err != nil {
			fmt.Fprintln(os.Stderr, "watch config failed:", err)
			os.Exit(1)
		}
		defer w.Close()

		watcher = w
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "listen failed:", err)
		os.Exit(1)
	}

	fmt.Println("RSP server listening on", ln.Addr().String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One pool shared across every accepted connection: short-lived GDB
	// sessions reuse each other's grown reply buffers instead of every
	// connection regrowing one from zero.
	bufPool := gdbstub.NewBufferPool()

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					continue
				}
			}

			go handleConn(ctx, c, watcher, bufPool)
		}
	}()

	<-ctx.Done()
	_ = ln.Close()
	fmt.Println("RSP server stopped")
}

func handleConn(ctx context.Context, conn net.Conn, watcher *config.Watcher, bufPool *gdbstub.BufferPool) {
	defer conn.Close()

	target := newDemoTarget()
	tr := tcp.New(conn)

	sessOpts := []gdbstub.Option{gdbstub.WithBufferPool(bufPool)}

	if watcher != nil {
		snap := watcher.Snapshot()
		sessOpts = append(sessOpts,
			gdbstub.WithFeatureDefaults(snap.Features()),
			gdbstub.WithMonitorCommands(snap.CustomCommands()),
		)
	}

	s, err := gdbstub.NewSession(tr, target, sessOpts...)
	if err != nil {
		log.Printf("new session for %s failed: %v", conn.RemoteAddr(), err)

		return
	}
	defer s.Close()

	log.Printf("session started for %s", conn.RemoteAddr())

	if err := s.Run(ctx); err != nil {
		log.Printf("session for %s ended: %v", conn.RemoteAddr(), err)

		return
	}

	log.Printf("session for %s closed", conn.RemoteAddr())
}
