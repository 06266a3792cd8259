package services

import (
	"context"
	"errors"
	"sync"

	"github.com/tidwall/gjson"
)

var errBrokenPipe = errors.New("broken pipe")

// recordChannel is an in-memory contracts.Channel that keeps every frame it accepts.
type recordChannel struct {
	mu        sync.Mutex
	frames    [][]byte
	fail      bool
	closed    bool
	closeCode int
}

func (c *recordChannel) Send(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail || c.closed {
		return errBrokenPipe
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *recordChannel) Close(code int, _ string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.closeCode = code
	}
}

func (c *recordChannel) breakPipe() {
	c.mu.Lock()
	c.fail = true
	c.mu.Unlock()
}

func (c *recordChannel) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		out = append(out, gjson.GetBytes(f, "type").String())
	}
	return out
}

func (c *recordChannel) last() gjson.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return gjson.Result{}
	}
	return gjson.ParseBytes(c.frames[len(c.frames)-1])
}

func (c *recordChannel) isClosed() (bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed, c.closeCode
}

// inlineTx runs fn without a database.
type inlineTx struct{ calls int }

func (t *inlineTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}
