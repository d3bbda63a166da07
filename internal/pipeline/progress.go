package pipeline

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressCallback receives batch progress events.
type ProgressCallback interface {
	// OnStart is called when processing begins with the total item count.
	OnStart(total int)

	// OnProgress is called after each processed document.
	OnProgress(current, total int)

	// OnComplete is called when processing is finished.
	OnComplete()

	// OnError is called when a document fails.
	OnError(index int, err error)
}

// NoOpProgressCallback implements ProgressCallback but does nothing.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(total int)             {}
func (NoOpProgressCallback) OnProgress(current, total int) {}
func (NoOpProgressCallback) OnComplete()                   {}
func (NoOpProgressCallback) OnError(index int, err error)  {}

// ConsoleProgressCallback draws a progress bar on a writer, rate-limited to
// keep terminal output readable.
type ConsoleProgressCallback struct {
	writer         io.Writer
	prefix         string
	width          int
	updateInterval time.Duration

	mu         sync.Mutex
	lastUpdate time.Time
	total      int
}

// NewConsoleProgressCallback creates a console progress reporter. A nil
// writer defaults to stderr.
func NewConsoleProgressCallback(writer io.Writer, prefix string) *ConsoleProgressCallback {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgressCallback{
		writer:         writer,
		prefix:         prefix,
		width:          40,
		updateInterval: 100 * time.Millisecond,
	}
}

func (c *ConsoleProgressCallback) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = total
	c.render(0, true)
}

func (c *ConsoleProgressCallback) OnProgress(current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = total
	c.render(current, false)
}

func (c *ConsoleProgressCallback) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.render(c.total, true)
	fmt.Fprintln(c.writer)
}

func (c *ConsoleProgressCallback) OnError(index int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.writer, "\n%s document %d failed: %v\n", c.prefix, index, err)
}

func (c *ConsoleProgressCallback) render(current int, force bool) {
	now := time.Now()
	if !force && now.Sub(c.lastUpdate) < c.updateInterval {
		return
	}
	c.lastUpdate = now

	filled := 0
	if c.total > 0 {
		filled = current * c.width / c.total
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", c.width-filled)
	fmt.Fprintf(c.writer, "\r%s [%s] %d/%d", c.prefix, bar, current, c.total)
}
