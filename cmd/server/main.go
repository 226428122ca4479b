package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/janpfeifer/GoMemory/internal/config"
	"github.com/janpfeifer/GoMemory/internal/server"
	"k8s.io/klog/v2"
)

var (
	flagAddr = flag.String("addr", "", "Address to listen on, overrides MEMORY_ADDR (default: auto-port on localhost)")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	cfg, err := config.Load()
	if err != nil {
		klog.Fatalf("Invalid configuration: %v", err)
	}
	if *flagAddr != "" {
		cfg.Addr = *flagAddr
	}

	started := make(chan *server.ServerState, 1)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		state := <-started
		fmt.Printf("Food Memory server listening on http://%s\n", state.Address)
	}()

	if err := server.Run(ctx, cfg, started); err != nil {
		klog.Fatal(err)
	}
}
