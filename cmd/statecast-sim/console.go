package main

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// consoleCloud is a stand-in cloud endpoint printing every publish to a
// writer. Connectivity is toggled from the interactive loop.
type consoleCloud struct {
	mu           sync.Mutex
	out          io.Writer
	disconnected bool
}

func newConsoleCloud() *consoleCloud {
	return &consoleCloud{out: os.Stdout}
}

// SetOutput redirects publish output, used to coordinate with the
// readline prompt.
func (c *consoleCloud) SetOutput(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = w
}

func (c *consoleCloud) SyncState(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disconnected {
		return false
	}
	fmt.Fprintf(c.out, "[state] %s\n", payload)
	return true
}

func (c *consoleCloud) Publish(event, message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disconnected {
		return false
	}
	fmt.Fprintf(c.out, "[event] %s %s\n", event, message)
	return true
}

func (c *consoleCloud) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.disconnected
}

func (c *consoleCloud) SetConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = !connected
}
