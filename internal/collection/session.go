// Package collection sequences the lifecycle of the active collection
// (open, switch, close) and the mutations submitted to the collection server.
package collection

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/mdouchement/grandmaster/internal/mirror"
	"github.com/mdouchement/grandmaster/internal/view"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/pkg/errors"
	"github.com/sanity-io/litter"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotConfigured is returned when no credentials are set.
	ErrNotConfigured = errors.New("collection server is not configured")
	// ErrNoCollection is returned when an action needs an opened collection.
	ErrNoCollection = errors.New("no collection opened")
)

type (
	// Options are the dependencies of a Session.
	Options struct {
		Preferences PreferenceStore
		Dial        Dialer
		IDs         gmset.IDGenerator
		Logger      logrus.FieldLogger
	}

	// An Observer is notified with the recomputed view after every mirror or filter change.
	// It is called synchronously and must not call Session methods that notify.
	Observer func(view.View)

	// A Session owns the mirror of the active collection, the filters and the live subscription.
	Session struct {
		prefStore PreferenceStore
		dial      Dialer
		ids       gmset.IDGenerator
		log       logrus.FieldLogger
		mirror    *mirror.Mirror
		cache     view.Cache

		mu         sync.Mutex
		prefs      Preferences
		client     gmset.Client
		generation uint64
		sub        gmset.Subscription
		name       string
		filters    view.Filters
		err        error
		observers  map[int]Observer
		sequence   int

		notifyMu sync.Mutex
	}
)

// New returns a new Session. The client is dialed when the preferences hold credentials.
func New(opts Options) (*Session, error) {
	if opts.Preferences == nil {
		opts.Preferences = NewMemoryPreferences(Preferences{})
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Dial == nil {
		opts.Dial = HTTPDialer(opts.Logger)
	}
	if opts.IDs == nil {
		opts.IDs = gmset.RandomIDs{}
	}

	s := &Session{
		prefStore: opts.Preferences,
		dial:      opts.Dial,
		ids:       opts.IDs,
		log:       opts.Logger,
		mirror:    mirror.New(),
		filters:   view.DefaultFilters(),
		observers: map[int]Observer{},
	}

	prefs, err := s.prefStore.Load()
	if err != nil {
		return nil, errors.Wrap(err, "could not load preferences")
	}
	s.prefs = prefs

	if prefs.Credentials.Configured() {
		if s.client, err = s.dial(prefs.Credentials); err != nil {
			return nil, errors.Wrap(err, "could not dial collection server")
		}
	}

	return s, nil
}

// Preferences returns the current preferences.
func (s *Session) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Configure validates, saves and uses the given credentials.
func (s *Session) Configure(creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	client, err := s.dial(creds)
	if err != nil {
		return errors.Wrap(err, "could not dial collection server")
	}

	s.mu.Lock()
	s.client = client
	s.prefs.Credentials = creds
	prefs := s.prefs
	s.mu.Unlock()

	return s.save(prefs)
}

// Forget removes the credentials and the last opened collection.
func (s *Session) Forget() error {
	s.Close()

	s.mu.Lock()
	s.client = nil
	s.prefs = Preferences{}
	s.mu.Unlock()

	return s.save(Preferences{})
}

// Resume opens the last opened collection, if any.
// It returns false when there is nothing to resume.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	s.mu.Lock()
	id := s.prefs.LastCollection
	s.mu.Unlock()

	if id == "" {
		return false, nil
	}
	return true, s.Open(ctx, id)
}

// Open makes the given collection the active one: the previous subscription is closed,
// the mirror is cleared, a new subscription is opened and the mirror is loaded.
// Events of the previous collection never reach the new mirror.
func (s *Session) Open(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("collection code is required")
	}

	client, err := s.store()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.generation++
	generation := s.generation
	previous := s.sub
	s.sub = nil
	s.name = ""
	s.err = nil
	s.mirror.Switch(id)
	s.mu.Unlock()

	s.closeSubscription(previous)
	s.notify()

	//
	// Subscribe before the initial load so no change is missed.
	sub, err := client.Subscribe(ctx, id)
	if err != nil {
		return s.fail(generation, errors.Wrap(err, "could not subscribe to collection changes"))
	}

	collection, err := client.SelectCollection(ctx, id)
	if err != nil {
		s.closeSubscription(sub)
		return s.fail(generation, errors.Wrap(err, "could not fetch collection"))
	}

	items, err := client.SelectItems(ctx, id)
	if err != nil {
		s.closeSubscription(sub)
		return s.fail(generation, errors.Wrap(err, "could not fetch items"))
	}

	//
	// Install
	s.mu.Lock()
	if s.generation != generation {
		// Superseded by another Open.
		s.mu.Unlock()
		s.closeSubscription(sub)
		return nil
	}

	s.name = id
	if collection != nil && collection.Name != "" {
		s.name = collection.Name
	}
	s.sub = sub
	s.mirror.LoadInitial(id, items)
	s.prefs.LastCollection = id
	prefs := s.prefs
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"collection_id": id,
		"items":         len(items),
	}).Info("Collection opened")

	go s.pump(generation, id, sub)
	s.notify()

	return s.save(prefs)
}

// fail leaves the session without active collection after an Open of the given generation failed.
func (s *Session) fail(generation uint64, err error) error {
	s.mu.Lock()
	if s.generation != generation {
		s.mu.Unlock()
		return err
	}
	s.mirror.Switch("")
	s.err = err
	s.mu.Unlock()

	s.log.WithError(err).Warn("Could not open collection")
	s.notify()
	return err
}

// Close tears down the subscription of the active collection.
func (s *Session) Close() {
	s.mu.Lock()
	s.generation++
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	s.closeSubscription(sub)
}

// Err returns the error that interrupted the change feed of the active collection,
// or the error of the last failed Open.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// CollectionID returns the code of the active collection.
func (s *Session) CollectionID() string {
	return s.mirror.CollectionID()
}

// CollectionName returns the name of the active collection.
func (s *Session) CollectionName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// ShareURL returns base with the active collection code in its query.
func (s *Session) ShareURL(base string) (string, error) {
	id := s.CollectionID()
	if id == "" {
		return "", ErrNoCollection
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrap(err, "could not parse base URL")
	}

	q := u.Query()
	q.Set("c", id)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Item returns an item of the mirror.
func (s *Session) Item(id string) (gmset.Item, bool) {
	return s.mirror.Get(id)
}

// Export returns a snapshot of the whole mirror, regardless of the filters.
func (s *Session) Export() gmset.Export {
	return gmset.Export{
		CollectionID:   s.CollectionID(),
		CollectionName: s.CollectionName(),
		Items:          s.mirror.Items(),
	}
}

// Filters returns the current filters.
func (s *Session) Filters() view.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.Clone()
}

// SetFilters replaces the filters and notifies the observers.
func (s *Session) SetFilters(f view.Filters) {
	if f.Owned == "" {
		f.Owned = view.OwnedAll
	}
	f = f.Clone()

	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()

	s.notify()
}

// View returns the derived view of the mirror.
func (s *Session) View() view.View {
	f := s.Filters()
	return s.cache.Get(s.mirror.Revision(), f, s.mirror.Snapshot)
}

// Observe registers fn and calls it with the current view.
// The returned function unregisters it.
func (s *Session) Observe(fn Observer) (cancel func()) {
	s.mu.Lock()
	s.sequence++
	key := s.sequence
	s.observers[key] = fn
	s.mu.Unlock()

	s.notifyMu.Lock()
	fn(s.View())
	s.notifyMu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, key)
	}
}

func (s *Session) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	if len(observers) == 0 {
		return
	}

	v := s.View()
	for _, fn := range observers {
		fn(v)
	}
}

func (s *Session) pump(generation uint64, collectionID string, sub gmset.Subscription) {
	log := s.log.WithField("collection_id", collectionID)

	for event := range sub.Events() {
		if !s.current(generation) {
			log.Debugf("Dropping stale event: %s", litter.Sdump(event))
			continue
		}

		if s.mirror.Apply(event) {
			s.notify()
		}
	}

	err := sub.Err()
	if err == nil {
		return
	}

	log.WithError(err).Warn("Change feed closed")

	s.mu.Lock()
	if s.generation == generation {
		s.err = err
	}
	s.mu.Unlock()

	s.notify()
}

func (s *Session) current(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == generation
}

func (s *Session) closeSubscription(sub gmset.Subscription) {
	if sub == nil {
		return
	}

	if err := sub.Close(); err != nil {
		s.log.WithError(err).Warn("Could not close change feed")
	}
}

func (s *Session) save(prefs Preferences) error {
	return errors.Wrap(s.prefStore.Save(prefs), "could not save preferences")
}

func (s *Session) store() (gmset.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil, ErrNotConfigured
	}
	return s.client, nil
}

func (s *Session) active() (gmset.Client, string, error) {
	client, err := s.store()
	if err != nil {
		return nil, "", err
	}

	id := s.CollectionID()
	if id == "" {
		return nil, "", ErrNoCollection
	}
	return client, id, nil
}
