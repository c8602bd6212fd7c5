package utils

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/anyswap/CrossSwap-Router/log"
)

var (
	// TopWaitGroup top wait group
	TopWaitGroup = new(sync.WaitGroup)
	// CleanupChan closed on exit signal
	CleanupChan = make(chan struct{})

	cleanupOnce  sync.Once
	isCleanuping bool
	cleanupLock  sync.RWMutex
)

func init() {
	go catchSignal()
}

func catchSignal() {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalChan
	log.Info("receive exit signal", "signal", sig)
	StartCleanup()
}

// StartCleanup notify all waiters to clean up
func StartCleanup() {
	cleanupOnce.Do(func() {
		cleanupLock.Lock()
		isCleanuping = true
		cleanupLock.Unlock()
		close(CleanupChan)
	})
}

// IsCleanuping is cleanuping
func IsCleanuping() bool {
	cleanupLock.RLock()
	defer cleanupLock.RUnlock()
	return isCleanuping
}

// WaitAndCleanup wait exit signal then run cleanup
func WaitAndCleanup(doCleanup func()) {
	<-CleanupChan
	doCleanup()
}
