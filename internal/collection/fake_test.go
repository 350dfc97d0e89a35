package collection_test

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mdouchement/grandmaster/internal/collection"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/sirupsen/logrus"
)

type (
	fakeClient struct {
		mu          sync.Mutex
		collections map[string]gmset.Collection
		items       map[string][]gmset.Item
		calls       []string
		inserted    []gmset.Item
		patches     map[string]gmset.Patch
		subs        []*fakeSubscription
		err         error
	}

	fakeSubscription struct {
		mu           sync.Mutex
		collectionID string
		events       chan gmset.Event
		closed       bool
		closes       int
	}

	fakeIDs struct {
		mu sync.Mutex
		n  int
	}
)

func newFakeClient() *fakeClient {
	return &fakeClient{
		collections: map[string]gmset.Collection{},
		items:       map[string][]gmset.Item{},
		patches:     map[string]gmset.Patch{},
	}
}

func (c *fakeClient) record(call string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	return c.err
}

func (c *fakeClient) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *fakeClient) Sub(i int) *fakeSubscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs[i]
}

func (c *fakeClient) SelectCollection(ctx context.Context, id string) (*gmset.Collection, error) {
	if err := c.record("SelectCollection " + id); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	collection, ok := c.collections[id]
	if !ok {
		return nil, nil
	}
	return &collection, nil
}

func (c *fakeClient) SelectItems(ctx context.Context, collectionID string) ([]gmset.Item, error) {
	if err := c.record("SelectItems " + collectionID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]gmset.Item{}, c.items[collectionID]...), nil
}

func (c *fakeClient) UpsertCollection(ctx context.Context, collection gmset.Collection) error {
	if err := c.record("UpsertCollection " + collection.ID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.collections[collection.ID] = collection
	return nil
}

func (c *fakeClient) InsertItem(ctx context.Context, item gmset.Item) error {
	if err := c.record("InsertItem " + item.ID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inserted = append(c.inserted, item)
	return nil
}

func (c *fakeClient) InsertItems(ctx context.Context, items []gmset.Item) error {
	if err := c.record(fmt.Sprintf("InsertItems %d", len(items))); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inserted = append(c.inserted, items...)
	return nil
}

func (c *fakeClient) UpdateItem(ctx context.Context, id string, patch gmset.Patch) error {
	if err := c.record("UpdateItem " + id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.patches[id] = patch
	return nil
}

func (c *fakeClient) DeleteItem(ctx context.Context, id string) error {
	return c.record("DeleteItem " + id)
}

func (c *fakeClient) Subscribe(ctx context.Context, collectionID string) (gmset.Subscription, error) {
	if err := c.record("Subscribe " + collectionID); err != nil {
		return nil, err
	}

	sub := &fakeSubscription{
		collectionID: collectionID,
		events:       make(chan gmset.Event, 16),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, sub)
	return sub, nil
}

func (s *fakeSubscription) Send(event gmset.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.events <- event
	return true
}

func (s *fakeSubscription) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func (s *fakeSubscription) Events() <-chan gmset.Event {
	return s.events
}

func (s *fakeSubscription) Err() error {
	return nil
}

func (s *fakeSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closes++
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	return nil
}

func (g *fakeIDs) CollectionID() (string, error) {
	return "k3x9qa", nil
}

func (g *fakeIDs) ItemID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("item-%d", g.n)
}

func logger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var credentials = collection.Credentials{
	Endpoint:  "http://localhost:5000",
	AccessKey: "access-key",
}

func newSession(prefs collection.Preferences) (*collection.Session, *fakeClient, *collection.MemoryPreferences, error) {
	client := newFakeClient()
	store := collection.NewMemoryPreferences(prefs)

	session, err := collection.New(collection.Options{
		Preferences: store,
		Dial: func(collection.Credentials) (gmset.Client, error) {
			return client, nil
		},
		IDs:    &fakeIDs{},
		Logger: logger(),
	})
	return session, client, store, err
}
