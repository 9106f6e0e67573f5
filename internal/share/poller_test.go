package share

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/followup/internal/engine"
	"github.com/nhle/followup/internal/model"
)

type fakeSource struct {
	mu       gosync.Mutex
	items    []Item
	fetchErr error
	seenErr  error
	limits   []int
	seen     []uint32
}

func (f *fakeSource) Fetch(_ context.Context, limit int) ([]Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	return f.items, f.fetchErr
}

func (f *fakeSource) MarkSeen(_ context.Context, uids []uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, uids...)
	return f.seenErr
}

func sharedInput(title string) engine.CreateInput {
	return engine.CreateInput{Title: title, Source: model.SourceShare}
}

func TestPollOnce(t *testing.T) {
	src := &fakeSource{items: []Item{
		{UID: 1, Input: sharedInput("first")},
		{UID: 2, Err: errors.New("bad mime")},
		{UID: 3, Input: sharedInput("rejected")},
		{UID: 4, Input: sharedInput("second")},
	}}

	var got []string
	sink := func(_ context.Context, in engine.CreateInput) error {
		if in.Title == "rejected" {
			return errors.New("store down")
		}
		got = append(got, in.Title)
		return nil
	}

	p := NewPoller(src, sink, WithBatchSize(10))
	res := p.PollOnce(context.Background())

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Failed)
	assert.NoError(t, res.Err)
	assert.Equal(t, []string{"first", "second"}, got)
	assert.Equal(t, []uint32{1, 2, 4}, src.seen)
	assert.Equal(t, []int{10}, src.limits)
	assert.Equal(t, res, p.LastResult())
}

func TestPollOnceFetchError(t *testing.T) {
	src := &fakeSource{fetchErr: errors.New("dial failed")}
	called := false
	p := NewPoller(src, func(context.Context, engine.CreateInput) error {
		called = true
		return nil
	})

	res := p.PollOnce(context.Background())

	assert.EqualError(t, res.Err, "dial failed")
	assert.False(t, called)
	assert.Empty(t, src.seen)
}

func TestPollOnceMarkSeenError(t *testing.T) {
	src := &fakeSource{
		items:   []Item{{UID: 7, Input: sharedInput("x")}},
		seenErr: errors.New("read-only mailbox"),
	}
	p := NewPoller(src, func(context.Context, engine.CreateInput) error { return nil })

	res := p.PollOnce(context.Background())

	assert.Equal(t, 1, res.Created)
	assert.EqualError(t, res.Err, "read-only mailbox")
}

func TestPollerStartPollsImmediately(t *testing.T) {
	src := &fakeSource{items: []Item{{UID: 1, Input: sharedInput("hello")}}}
	p := NewPoller(src, func(context.Context, engine.CreateInput) error { return nil },
		WithInterval(time.Hour))

	p.Start()
	defer p.Stop()
	p.Start()

	select {
	case res := <-p.Results():
		require.NoError(t, res.Err)
		assert.Equal(t, 1, res.Created)
	case <-time.After(2 * time.Second):
		t.Fatal("no poll result")
	}

	p.Refresh()
	select {
	case res := <-p.Results():
		assert.Equal(t, 1, res.Created)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not poll")
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := NewPoller(&fakeSource{}, func(context.Context, engine.CreateInput) error { return nil })
	p.Stop()
	p.Start()
	p.Stop()
	p.Stop()
}

func TestInboxDefaults(t *testing.T) {
	in := NewInbox(model.ShareConfig{Host: "imap.example.com", Port: "993", TLS: true}, "secret")
	assert.Equal(t, "imap.example.com:993", in.Addr())
	assert.Equal(t, "INBOX", in.mailbox)
	assert.NoError(t, in.MarkSeen(context.Background(), nil))
}
