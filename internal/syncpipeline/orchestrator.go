package syncpipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Orchestrator runs RunBook for many books concurrently, each isolated in
// its own cancelable context — a generalization of the teacher's
// HybridOrchestrator.pipelines map (bookID -> cancelFunc), but with one
// synchronous pipeline per book instead of a persona/TTS state machine.
type Orchestrator struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewOrchestrator builds an empty Orchestrator.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{cancels: make(map[string]context.CancelFunc)}
}

// RunBooks runs every book's pipeline concurrently via errgroup, each under
// its own derived context so Cancel can stop one book without affecting the
// others. progress is shared across books; events carry BookID so a caller
// can demultiplex. If any book's RunBook returns an error, the shared group
// context is canceled (the remaining in-flight books observe it at their
// next chapter boundary) and RunBooks returns that error once every book
// has finished, alongside whatever output the other books produced.
func (o *Orchestrator) RunBooks(ctx context.Context, books []BookInput, progress ProgressFunc) (map[string]*bytes.Buffer, error) {
	g, gctx := errgroup.WithContext(ctx)

	var resultsMu sync.Mutex
	results := make(map[string]*bytes.Buffer, len(books))

	for _, b := range books {
		b := b
		bookCtx, cancel := context.WithCancel(gctx)

		o.mu.Lock()
		o.cancels[b.BookID] = cancel
		o.mu.Unlock()

		g.Go(func() error {
			defer func() {
				o.mu.Lock()
				delete(o.cancels, b.BookID)
				o.mu.Unlock()
				cancel()
			}()

			buf, err := RunBook(bookCtx, b, progress)
			if err != nil {
				return fmt.Errorf("book %s: %w", b.BookID, err)
			}

			resultsMu.Lock()
			results[b.BookID] = buf
			resultsMu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

// Cancel stops a single in-flight book's pipeline, which observes
// cancellation at its next chapter boundary. It reports whether a
// running pipeline for bookID was found.
func (o *Orchestrator) Cancel(bookID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	cancel, ok := o.cancels[bookID]
	if ok {
		cancel()
	}
	return ok
}
