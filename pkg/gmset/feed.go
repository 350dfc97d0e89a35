package gmset

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

const (
	feedBuffer = 64
	closeWait  = time.Second
)

type subscription struct {
	conn         *websocket.Conn
	collectionID string
	log          logrus.FieldLogger
	events       chan Event
	done         chan struct{}
	closing      chan struct{}
	once         sync.Once
	mu           sync.Mutex
	err          error
}

func newSubscription(conn *websocket.Conn, collectionID string, log logrus.FieldLogger) *subscription {
	s := &subscription{
		conn:         conn,
		collectionID: collectionID,
		log:          log.WithField("collection_id", collectionID),
		events:       make(chan Event, feedBuffer),
		done:         make(chan struct{}),
		closing:      make(chan struct{}),
	}
	go s.read()
	return s
}

func (s *subscription) Events() <-chan Event {
	return s.events
}

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closing)

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait)) // nolint: errcheck
		err = s.conn.Close()
	})
	<-s.done
	return err
}

func (s *subscription) read() {
	defer close(s.done)
	defer close(s.events)

	var p fastjson.Parser
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closing:
			default:
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.setErr(errors.Wrap(err, "change feed interrupted"))
				}
			}
			return
		}

		// Frames of other collections are dropped without fully decoding them.
		v, err := p.ParseBytes(payload)
		if err != nil {
			s.log.WithError(err).Warn("Invalid change feed frame")
			continue
		}
		if string(v.GetStringBytes("collection_id")) != s.collectionID {
			s.log.Debug("Dropping change of another collection")
			continue
		}

		var event Event
		if err = json.Unmarshal(payload, &event); err != nil {
			s.log.WithError(err).Warn("Invalid change event")
			continue
		}

		select {
		case s.events <- event:
		case <-s.closing:
			return
		}
	}
}

func (s *subscription) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
