//go:build mage

package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/fsnotify/fsnotify"
	"github.com/magefile/mage/mg"
)

type Watch mg.Namespace

// Recompiles the shaders whenever a GLSL source changes. The running engine picks up
// nothing by itself; restart it after a rebuild.
func (Watch) Shaders() error {
	if err := buildShaders(false); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(shaderDir); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	fmt.Printf("Watching %s, ctrl-c to stop\n", shaderDir)

	for {
		select {
		case e, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 || !isShaderSource(e.Name) {
				continue
			}
			if err := buildShaders(false); err != nil {
				fmt.Println(err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Println(err)
		case <-sigCh:
			return nil
		}
	}
}
