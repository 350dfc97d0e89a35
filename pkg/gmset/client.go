package gmset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type (
	// A Store defines all the requests that can be performed against the collection server.
	Store interface {
		// SelectCollection returns the collection for the given id, nil if it does not exist.
		SelectCollection(ctx context.Context, id string) (*Collection, error)
		// SelectItems returns the items of a collection, ascending by creation time.
		SelectItems(ctx context.Context, collectionID string) ([]Item, error)
		// UpsertCollection creates or renames a collection.
		UpsertCollection(ctx context.Context, collection Collection) error
		// InsertItem creates an item.
		InsertItem(ctx context.Context, item Item) error
		// InsertItems creates all the given items or none of them.
		InsertItems(ctx context.Context, items []Item) error
		// UpdateItem applies a partial update on an item.
		UpdateItem(ctx context.Context, id string, patch Patch) error
		// DeleteItem deletes an item.
		DeleteItem(ctx context.Context, id string) error
	}

	// A Feed opens change subscriptions on collections.
	Feed interface {
		// Subscribe opens a live subscription on the changes of the given collection.
		Subscribe(ctx context.Context, collectionID string) (Subscription, error)
	}

	// A Subscription is a live sequence of change events scoped to one collection.
	Subscription interface {
		// Events returns the event channel. It is closed when the subscription ends.
		Events() <-chan Event
		// Err returns the error that ended the subscription, nil if closed by Close.
		Err() error
		// Close ends the subscription. It is safe to call it several times.
		Close() error
	}

	// A Client is both a Store and a Feed.
	Client interface {
		Store
		Feed
	}

	client struct {
		http      *http.Client
		dialer    *websocket.Dialer
		endpoint  string
		accessKey string
		log       logrus.FieldLogger
	}
)

// NewDefaultClient returns a new Client with default HTTP client and websocket dialer.
func NewDefaultClient(endpoint, accessKey string) (Client, error) {
	return NewClient(http.DefaultClient, websocket.DefaultDialer, endpoint, accessKey, logrus.StandardLogger())
}

// NewClient returns a new Client.
func NewClient(c *http.Client, d *websocket.Dialer, endpoint, accessKey string, log logrus.FieldLogger) (Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse endpoint")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}

	return &client{
		http:      c,
		dialer:    d,
		endpoint:  endpoint,
		accessKey: accessKey,
		log:       log,
	}, nil
}

func (c *client) SelectCollection(ctx context.Context, id string) (*Collection, error) {
	var collection Collection
	err := c.do(ctx, http.MethodGet, []string{"collections", id}, nil, &collection)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func (c *client) SelectItems(ctx context.Context, collectionID string) ([]Item, error) {
	items := []Item{}
	err := c.do(ctx, http.MethodGet, []string{"collections", collectionID, "items"}, nil, &items)
	if IsNotFound(err) {
		return []Item{}, nil
	}
	return items, err
}

func (c *client) UpsertCollection(ctx context.Context, collection Collection) error {
	return c.do(ctx, http.MethodPut, []string{"collections", collection.ID}, collection, nil)
}

func (c *client) InsertItem(ctx context.Context, item Item) error {
	return c.do(ctx, http.MethodPost, []string{"items"}, item, nil)
}

func (c *client) InsertItems(ctx context.Context, items []Item) error {
	return c.do(ctx, http.MethodPost, []string{"items", "batch"}, items, nil)
}

func (c *client) UpdateItem(ctx context.Context, id string, patch Patch) error {
	return c.do(ctx, http.MethodPatch, []string{"items", id}, patch, nil)
}

func (c *client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, []string{"items", id}, nil, nil)
}

func (c *client) Subscribe(ctx context.Context, collectionID string) (Subscription, error) {
	u, err := c.url("collections", collectionID, "feed")
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	header := http.Header{}
	header.Add("Authorization", fmt.Sprintf("Bearer %s", c.accessKey))

	conn, res, err := c.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if res != nil && res.StatusCode >= 400 {
			defer res.Body.Close()
			return nil, parseError(res.Body, res.StatusCode)
		}
		return nil, errors.Wrap(err, "could not open change feed")
	}

	return newSubscription(conn, collectionID, c.log), nil
}

func (c *client) url(segments ...string) (*url.URL, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse endpoint")
	}

	// Path holds the decoded segments, RawPath their escaped form.
	p := strings.TrimSuffix(u.Path, "/")
	raw := strings.TrimSuffix(u.EscapedPath(), "/")
	for _, s := range segments {
		p += "/" + s
		raw += "/" + url.PathEscape(s)
	}
	u.Path = p
	u.RawPath = raw
	return u, nil
}

func (c *client) do(ctx context.Context, method string, segments []string, params, v any) error {
	u, err := c.url(segments...)
	if err != nil {
		return err
	}

	//
	// Build request
	var body io.Reader
	if params != nil {
		payload, err := json.Marshal(params)
		if err != nil {
			return errors.Wrap(err, "could not serialize params")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.Wrap(err, "could not build request")
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.accessKey))

	//
	// Perform request
	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "could not perform request")
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return parseError(res.Body, res.StatusCode)
	}

	//
	// Process response
	if v == nil {
		return nil
	}
	dec := json.NewDecoder(res.Body)
	return errors.Wrap(dec.Decode(v), "could not parse response")
}
