/*
Lumen opens a window and renders the testbed scene with Vulkan.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/testbed"
)

func main() {
	configPath := flag.String("config", "lumen.toml", "path to the TOML configuration, empty for defaults")
	flag.Parse()

	config, err := engine.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("%+v", err)
	}

	tb := testbed.NewTestGame(config)

	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal("%+v", err)
	}

	if err := run(e); err != nil {
		core.LogFatal("%+v", err)
	}
}

func run(e *engine.Engine) (err error) {
	defer func() {
		if shutdownErr := e.Shutdown(); err == nil {
			err = shutdownErr
		}
	}()

	if err := e.Initialize(); err != nil {
		return err
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	// Deferred after Shutdown, so the watcher is gone before the window is.
	stop := watchSignals(sigCh, e.RequestClose)
	defer stop()

	return e.Run()
}

// watchSignals calls onSignal for the first signal received. The returned stop
// function returns once the watcher goroutine has exited.
func watchSignals(sigCh <-chan os.Signal, onSignal func()) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		select {
		case sig := <-sigCh:
			core.LogInfo("%s received, closing...", sig)
			onSignal()
		case <-done:
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}
