package comms

import (
	"io"
	"os"
	"os/signal"
	"sync"

	"go.uber.org/zap"
)

// CloseOnSignal closes cl when one of the given OS signals arrives.
// Closing a *Session that way tells the opponent the match is over and
// unblocks any receive in progress. The returned function stops
// watching.
func CloseOnSignal(cl io.Closer, log *zap.SugaredLogger, sig ...os.Signal) (stop func()) {
	if log == nil {
		log = nopLogger
	}
	ch := make(chan os.Signal, 1)
	quit := make(chan struct{})
	signal.Notify(ch, sig...)
	go func() {
		select {
		case s := <-ch:
			log.Infof("received signal %s, closing", s)
			cl.Close()
		case <-quit:
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(quit)
		})
	}
}
