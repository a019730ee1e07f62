package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/example/gamehub/internal/model"
	"github.com/example/gamehub/internal/testutil"
)

type HubSuite struct {
	suite.Suite

	hub *Hub
}

func (s *HubSuite) SetupTest() {
	s.hub = NewHub(testutil.NopLogger())
	go s.hub.Run()
}

func (s *HubSuite) TearDownTest() {
	s.hub.Close()
}

func (s *HubSuite) newClient(playerID model.PlayerID) *Client {
	return &Client{
		hub:      s.hub,
		playerID: playerID,
		send:     make(chan []byte, sendBufferSize),
	}
}

func (s *HubSuite) receive(c *Client) model.Event {
	select {
	case raw := <-c.send:
		var ev model.Event
		s.Require().NoError(json.Unmarshal(raw, &ev))
		return ev
	case <-time.After(time.Second):
		s.Require().FailNow("timed out waiting for event")
		return model.Event{}
	}
}

func (s *HubSuite) waitForClients(n int) {
	deadline := time.After(time.Second)
	for s.hub.ClientCount() != n {
		select {
		case <-deadline:
			s.Require().FailNow("timed out waiting for client count")
		case <-time.After(time.Millisecond):
		}
	}
}

func (s *HubSuite) TestPushDeliversToRegisteredClient() {
	client := s.newClient("p_alice")
	s.hub.Register(client)
	s.waitForClients(1)

	s.hub.Push("p_alice", model.Event{
		Type:    model.EventChatMessage,
		RoomID:  "r1",
		Message: "hello",
	})

	ev := s.receive(client)
	s.Require().Equal(model.EventChatMessage, ev.Type)
	s.Require().Equal(model.RoomID("r1"), ev.RoomID)
	s.Require().Equal("hello", ev.Message)
}

func (s *HubSuite) TestPushToUnknownPlayerIsDropped() {
	client := s.newClient("p_alice")
	s.hub.Register(client)
	s.waitForClients(1)

	s.hub.Push("p_nobody", model.Event{Type: model.EventChatMessage})

	select {
	case <-client.send:
		s.Require().FailNow("event delivered to wrong client")
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *HubSuite) TestRegisterSupersedesExistingConnection() {
	first := s.newClient("p_alice")
	s.hub.Register(first)
	s.waitForClients(1)

	second := s.newClient("p_alice")
	s.hub.Register(second)

	// The first client's send channel is closed when it is replaced
	select {
	case _, ok := <-first.send:
		s.Require().False(ok)
	case <-time.After(time.Second):
		s.Require().FailNow("superseded client was not closed")
	}

	s.hub.Push("p_alice", model.Event{Type: model.EventHeartbeatAck})
	ev := s.receive(second)
	s.Require().Equal(model.EventHeartbeatAck, ev.Type)
}

func (s *HubSuite) TestUnregisterRemovesClient() {
	client := s.newClient("p_alice")
	s.hub.Register(client)
	s.waitForClients(1)

	s.hub.Unregister(client)
	s.waitForClients(0)
}

func (s *HubSuite) TestUnregisterStaleClientKeepsCurrent() {
	stale := s.newClient("p_alice")
	s.hub.Register(stale)
	s.waitForClients(1)

	current := s.newClient("p_alice")
	s.hub.Register(current)

	// Tearing down the superseded connection must not evict the new one
	s.hub.Unregister(stale)
	time.Sleep(10 * time.Millisecond)
	s.Require().Equal(1, s.hub.ClientCount())

	s.hub.Push("p_alice", model.Event{Type: model.EventChatMessage})
	ev := s.receive(current)
	s.Require().Equal(model.EventChatMessage, ev.Type)
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

// A pump winding down after shutdown must not block on the stopped loop
func TestRegisterAndUnregisterAfterClose(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()

	client := &Client{
		hub:      hub,
		playerID: "p_alice",
		send:     make(chan []byte, sendBufferSize),
	}
	hub.Register(client)
	hub.Close()

	done := make(chan struct{})
	go func() {
		hub.Unregister(client)
		hub.Register(client)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("register/unregister blocked after hub shutdown")
	}
}
