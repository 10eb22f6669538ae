package jsonio

import (
	"context"

	"github.com/reoring/ejson"
)

// batcher groups records for a batch iterator and stops once the consumer
// breaks out of the loop or the context is done.
type batcher struct {
	ctx     context.Context
	size    int
	buf     ejson.Records
	yield   func(ejson.Records, error) bool
	stopped bool
}

func newBatcher(ctx context.Context, size int, yield func(ejson.Records, error) bool) (*batcher, error) {
	if size <= 0 {
		return nil, ejson.NewIssue(ejson.CodeInvalidArgument, "", "batch size must be positive")
	}
	return &batcher{ctx: ctx, size: size, yield: yield}, nil
}

// add buffers r and reports whether reading should continue.
func (b *batcher) add(r ejson.Record) bool {
	if b.stopped {
		return false
	}
	if err := b.ctx.Err(); err != nil {
		b.stopped = true
		b.yield(nil, err)
		return false
	}
	b.buf = append(b.buf, r)
	if len(b.buf) >= b.size {
		return b.emit()
	}
	return true
}

// fail reports err to the consumer and stops the batcher.
func (b *batcher) fail(err error) {
	if b.stopped {
		return
	}
	b.stopped = true
	b.yield(nil, err)
}

func (b *batcher) flush() {
	if b.stopped || len(b.buf) == 0 {
		return
	}
	if err := b.ctx.Err(); err != nil {
		b.fail(err)
		return
	}
	b.emit()
}

func (b *batcher) emit() bool {
	out := b.buf
	b.buf = make(ejson.Records, 0, b.size)
	if !b.yield(out, nil) {
		b.stopped = true
		return false
	}
	return true
}
