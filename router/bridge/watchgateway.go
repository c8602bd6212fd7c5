package bridge

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/anyswap/CrossSwap-Router/log"
)

// WatchGatewayConfig watch and update gateway config
func WatchGatewayConfig(gatewayFile string) {
	if gatewayFile == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("fsnotify: new watcher failed", "err", err)
		return
	}

	file := filepath.Clean(gatewayFile)
	go startWatcher(watcher, file)

	dir := filepath.Dir(file)
	err = watcher.Add(dir)
	if err != nil {
		log.Error("fsnotify: add gateway path failed", "err", err)
		return
	}
	log.Infof("fsnotify: start to watch gateway config file %v", file)
}

func startWatcher(watcher *fsnotify.Watcher, file string) {
	defer watcher.Close()

	ops := []fsnotify.Op{
		fsnotify.Write,
		fsnotify.Create,
	}

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok { // Channel was closed
				log.Error("fsnotify: channel was closed")
				return
			}
			if filepath.Clean(ev.Name) != file {
				continue
			}
			log.Trace("fsnotify: watcher event", "file", ev.Name, "op", ev.Op)
			for _, op := range ops {
				if ev.Has(op) {
					err := ReloadGatewayConfig(file)
					if err == nil {
						log.Info("fsnotify: update gateways success")
					} else {
						log.Warn("fsnotify: update gateways failed", "err", err)
					}
					break
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok { // Channel was closed
				log.Error("fsnotify: channel was closed")
				return
			}
			log.Warn("fsnotify: watcher error", "err", err)
		}
	}
}
