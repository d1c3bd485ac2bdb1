package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/tj/go-spin"
)

func (a *App) spinnerEnabled() bool {
	if a.Spinner != nil {
		return *a.Spinner
	}
	return isatty.IsTerminal(os.Stderr.Fd())
}

// startSpinner animates label on w until the returned stop is called.
func startSpinner(w io.Writer, enabled bool, label string) (stop func()) {
	if !enabled {
		return func() {}
	}

	s := spin.New()
	s.Set(spin.Spin1)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-done:
				fmt.Fprint(w, "\r\033[K")
				return
			case <-t.C:
				fmt.Fprintf(w, "\r%s %s", s.Next(), label)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}
