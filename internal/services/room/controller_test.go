package room

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/example/gamehub/internal/dependencies/mocks"
	"github.com/example/gamehub/internal/model"
	"github.com/example/gamehub/internal/services/player"
	"github.com/example/gamehub/internal/services/registry"
	"github.com/example/gamehub/internal/services/session"
	"github.com/example/gamehub/internal/storage/memory"
	"github.com/example/gamehub/internal/testutil"
)

// recordingPusher captures pushed events per player
type recordingPusher struct {
	mu     sync.Mutex
	events map[model.PlayerID][]model.Event
}

func newRecordingPusher() *recordingPusher {
	return &recordingPusher{events: make(map[model.PlayerID][]model.Event)}
}

func (p *recordingPusher) Push(playerID model.PlayerID, event model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[playerID] = append(p.events[playerID], event)
}

func (p *recordingPusher) eventsFor(playerID model.PlayerID, eventType model.EventType) []model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var matched []model.Event
	for _, e := range p.events[playerID] {
		if e.Type == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	directory  *player.Directory
	sessions   *session.Manager
	pusher     *recordingPusher
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.directory = player.New(s.storage, s.clock, logger)
	s.sessions = session.NewManager(s.clock, session.DefaultConfig(), logger)
	s.pusher = newRecordingPusher()
	reg := registry.New(s.storage, s.clock, registry.DefaultConfig(), logger)
	s.controller = NewController(reg, s.directory, s.sessions, s.pusher, s.clock, logger)
	s.sessions.SetCleanup(s.controller.CleanupSession)
	s.ctx = context.Background()
}

// createPlayer registers a player and opens a bound session for them
func (s *ControllerSuite) createPlayer(username string) *model.Player {
	p, err := s.directory.Create(s.ctx, username, "password")
	s.Require().NoError(err)
	sess := s.sessions.Open()
	s.Require().NoError(s.sessions.Bind(sess.ID, p.ID))
	return p
}

// CreateRoom tests

func (s *ControllerSuite) TestCreateRoom() {
	room, err := s.controller.CreateRoom(s.ctx, "Arena", 4)
	s.Require().NoError(err)
	s.NotEmpty(room.ID)
	s.Equal(4, room.Capacity)
	s.Equal(0, room.PlayerCount())
}

func (s *ControllerSuite) TestCreateRoomCoercesCapacity() {
	room, err := s.controller.CreateRoom(s.ctx, "Arena", -1)
	s.Require().NoError(err)
	s.Equal(model.DefaultRoomCapacity, room.Capacity)
}

// JoinRoom tests

func (s *ControllerSuite) TestJoinRoomSucceeds() {
	alice := s.createPlayer("alice")
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)

	joined, err := s.controller.JoinRoom(s.ctx, room.ID, alice.ID, "Alice")
	s.Require().NoError(err)
	s.True(joined)

	players, _ := s.controller.ListRoomPlayers(s.ctx, room.ID)
	s.Require().Len(players, 1)
	s.Equal(alice.ID, players[0].PlayerID)
	s.Equal("Alice", players[0].Name)
}

func (s *ControllerSuite) TestJoinRoomNotFound() {
	alice := s.createPlayer("alice")

	joined, err := s.controller.JoinRoom(s.ctx, "nonexistent", alice.ID, "Alice")
	s.Require().NoError(err)
	s.False(joined)
}

func (s *ControllerSuite) TestJoinRoomUnknownPlayer() {
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)

	joined, err := s.controller.JoinRoom(s.ctx, room.ID, "ghost", "Ghost")
	s.Require().NoError(err)
	s.False(joined)
}

func (s *ControllerSuite) TestJoinRoomDuplicateFailsWithoutStateChange() {
	alice := s.createPlayer("alice")
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)

	joined, _ := s.controller.JoinRoom(s.ctx, room.ID, alice.ID, "Alice")
	s.True(joined)

	joined, err := s.controller.JoinRoom(s.ctx, room.ID, alice.ID, "Alice")
	s.Require().NoError(err)
	s.False(joined)

	players, _ := s.controller.ListRoomPlayers(s.ctx, room.ID)
	s.Len(players, 1)
}

func (s *ControllerSuite) TestJoinRoomFullIsReported() {
	room, _ := s.controller.CreateRoom(s.ctx, "Duel", 2)
	for _, name := range []string{"alice", "bob"} {
		p := s.createPlayer(name)
		joined, _ := s.controller.JoinRoom(s.ctx, room.ID, p.ID, name)
		s.True(joined)
	}

	carol := s.createPlayer("carol")
	joined, err := s.controller.JoinRoom(s.ctx, room.ID, carol.ID, "carol")
	s.Require().NoError(err)
	s.False(joined)

	players, _ := s.controller.ListRoomPlayers(s.ctx, room.ID)
	s.Len(players, 2)
}

func (s *ControllerSuite) TestJoinRoomCharacterScalesWithLevel() {
	alice := s.createPlayer("alice")
	alice.GainExperience(500) // levels up
	s.Require().NoError(s.directory.Update(s.ctx, alice))
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)

	_, _ = s.controller.JoinRoom(s.ctx, room.ID, alice.ID, "Alice")

	players, _ := s.controller.ListRoomPlayers(s.ctx, room.ID)
	s.Require().Len(players, 1)
	s.Greater(players[0].Stats.MaxHealth, 100)
	s.Equal(players[0].Stats.MaxHealth, players[0].Stats.Health)
}

func (s *ControllerSuite) TestJoinSecondRoomLeavesFirst() {
	alice := s.createPlayer("alice")
	first, _ := s.controller.CreateRoom(s.ctx, "First", 4)
	second, _ := s.controller.CreateRoom(s.ctx, "Second", 4)
	bob := s.createPlayer("bob")
	_, _ = s.controller.JoinRoom(s.ctx, first.ID, bob.ID, "Bob")

	joined, _ := s.controller.JoinRoom(s.ctx, first.ID, alice.ID, "Alice")
	s.True(joined)
	joined, err := s.controller.JoinRoom(s.ctx, second.ID, alice.ID, "Alice")
	s.Require().NoError(err)
	s.True(joined)

	firstPlayers, _ := s.controller.ListRoomPlayers(s.ctx, first.ID)
	s.Len(firstPlayers, 1)
	secondPlayers, _ := s.controller.ListRoomPlayers(s.ctx, second.ID)
	s.Require().Len(secondPlayers, 1)
	s.Equal(alice.ID, secondPlayers[0].PlayerID)

	roomID, bound := s.sessions.RoomOf(alice.ID)
	s.True(bound)
	s.Equal(second.ID, roomID)
}

// Capacity invariant under concurrency

func (s *ControllerSuite) TestConcurrentJoinsNeverExceedCapacity() {
	const capacity = 3
	const contenders = 10

	room, _ := s.controller.CreateRoom(s.ctx, "Arena", capacity)

	players := make([]*model.Player, contenders)
	for i := range players {
		players[i] = s.createPlayer(fmt.Sprintf("player%d", i))
	}

	var wg sync.WaitGroup
	results := make([]bool, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			joined, err := s.controller.JoinRoom(s.ctx, room.ID, players[i].ID, players[i].Username)
			s.NoError(err)
			results[i] = joined
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, joined := range results {
		if joined {
			successes++
		}
	}
	s.Equal(capacity, successes)

	members, _ := s.controller.ListRoomPlayers(s.ctx, room.ID)
	s.Len(members, capacity)
}

func (s *ControllerSuite) TestAlignedJoinsToTwoRoomsKeepOneMembership() {
	p := s.createPlayer("hopper")

	for i := 0; i < 200; i++ {
		roomA, _ := s.controller.CreateRoom(s.ctx, fmt.Sprintf("arena-a-%d", i), 4)
		roomB, _ := s.controller.CreateRoom(s.ctx, fmt.Sprintf("arena-b-%d", i), 4)

		start := make(chan struct{})
		var wg sync.WaitGroup
		for _, id := range []model.RoomID{roomA.ID, roomB.ID} {
			wg.Add(1)
			go func(id model.RoomID) {
				defer wg.Done()
				<-start
				_, err := s.controller.JoinRoom(s.ctx, id, p.ID, "hopper")
				s.NoError(err)
			}(id)
		}
		close(start)
		wg.Wait()

		total := 0
		for _, id := range []model.RoomID{roomA.ID, roomB.ID} {
			members, err := s.controller.ListRoomPlayers(s.ctx, id)
			s.Require().NoError(err)
			total += len(members)
		}
		s.Require().Equal(1, total)
	}
}

// LeaveRoom tests

func (s *ControllerSuite) TestLeaveRoomSucceeds() {
	alice := s.createPlayer("alice")
	bob := s.createPlayer("bob")
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, alice.ID, "Alice")
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, bob.ID, "Bob")

	left, err := s.controller.LeaveRoom(s.ctx, room.ID, alice.ID)
	s.Require().NoError(err)
	s.True(left)

	players, _ := s.controller.ListRoomPlayers(s.ctx, room.ID)
	s.Require().Len(players, 1)
	s.Equal(bob.ID, players[0].PlayerID)

	_, bound := s.sessions.RoomOf(alice.ID)
	s.False(bound)
}

func (s *ControllerSuite) TestLeaveRoomNotMember() {
	alice := s.createPlayer("alice")
	bob := s.createPlayer("bob")
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, bob.ID, "Bob")

	left, err := s.controller.LeaveRoom(s.ctx, room.ID, alice.ID)
	s.Require().NoError(err)
	s.False(left)
}

func (s *ControllerSuite) TestLeaveRoomNotFound() {
	alice := s.createPlayer("alice")
	left, err := s.controller.LeaveRoom(s.ctx, "nonexistent", alice.ID)
	s.Require().NoError(err)
	s.False(left)
}

func (s *ControllerSuite) TestLastLeaveDeletesRoom() {
	alice := s.createPlayer("alice")
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, alice.ID, "Alice")

	left, err := s.controller.LeaveRoom(s.ctx, room.ID, alice.ID)
	s.Require().NoError(err)
	s.True(left)

	rooms, _ := s.controller.ListAllRooms(s.ctx)
	s.Empty(rooms)

	// Rejoining the deleted room fails with not-found semantics
	joined, err := s.controller.JoinRoom(s.ctx, room.ID, alice.ID, "Alice")
	s.Require().NoError(err)
	s.False(joined)
}

func (s *ControllerSuite) TestExplicitlyCreatedEmptyRoomPersists() {
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)

	rooms, err := s.controller.ListAllRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 1)
	s.Equal(room.ID, rooms[0].ID)
	s.Equal(0, rooms[0].CurrentPlayers)
}

// Round-trip property

func (s *ControllerSuite) TestArenaRoundTrip() {
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)

	joiners := make([]*model.Player, 4)
	for i := range joiners {
		joiners[i] = s.createPlayer(fmt.Sprintf("fighter%d", i))
		joined, _ := s.controller.JoinRoom(s.ctx, room.ID, joiners[i].ID, joiners[i].Username)
		s.True(joined)
	}

	players, _ := s.controller.ListRoomPlayers(s.ctx, room.ID)
	s.Len(players, 4)

	fifth := s.createPlayer("latecomer")
	joined, _ := s.controller.JoinRoom(s.ctx, room.ID, fifth.ID, "latecomer")
	s.False(joined)

	players, _ = s.controller.ListRoomPlayers(s.ctx, room.ID)
	s.Len(players, 4)
}

// ListAllRooms tests

func (s *ControllerSuite) TestListAllRoomsSummaries() {
	alice := s.createPlayer("alice")
	arena, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)
	_, _ = s.controller.CreateRoom(s.ctx, "Tavern", 8)
	_, _ = s.controller.JoinRoom(s.ctx, arena.ID, alice.ID, "Alice")

	rooms, err := s.controller.ListAllRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 2)

	byID := make(map[model.RoomID]model.RoomInfo)
	for _, info := range rooms {
		byID[info.ID] = info
	}
	s.Equal(1, byID[arena.ID].CurrentPlayers)
	s.Equal(4, byID[arena.ID].MaxPlayers)
	s.Equal("Arena", byID[arena.ID].Name)
}

// Broadcast tests

func (s *ControllerSuite) TestBroadcastReachesAllMembersIncludingSender() {
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)
	members := make([]*model.Player, 3)
	for i := range members {
		members[i] = s.createPlayer(fmt.Sprintf("member%d", i))
		_, _ = s.controller.JoinRoom(s.ctx, room.ID, members[i].ID, members[i].Username)
	}
	outsider := s.createPlayer("outsider")

	sent, err := s.controller.BroadcastMessage(s.ctx, room.ID, "hello", members[0].ID)
	s.Require().NoError(err)
	s.True(sent)

	for _, m := range members {
		chats := s.pusher.eventsFor(m.ID, model.EventChatMessage)
		s.Require().Len(chats, 1, "member %s should receive the chat", m.Username)
		s.Equal("hello", chats[0].Message)
		s.Equal(members[0].ID, chats[0].PlayerID)
	}
	s.Empty(s.pusher.eventsFor(outsider.ID, model.EventChatMessage))
}

func (s *ControllerSuite) TestBroadcastIncludesLateJoiners() {
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)
	alice := s.createPlayer("alice")
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, alice.ID, "Alice")

	late := s.createPlayer("late")
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, late.ID, "Late")

	_, _ = s.controller.BroadcastMessage(s.ctx, room.ID, "welcome", alice.ID)

	s.Len(s.pusher.eventsFor(late.ID, model.EventChatMessage), 1)
}

func (s *ControllerSuite) TestBroadcastRoomNotFound() {
	alice := s.createPlayer("alice")
	sent, err := s.controller.BroadcastMessage(s.ctx, "nonexistent", "hello", alice.ID)
	s.Require().NoError(err)
	s.False(sent)
}

// Join/leave event fan-out

func (s *ControllerSuite) TestJoinPushesEvents() {
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)
	alice := s.createPlayer("alice")
	bob := s.createPlayer("bob")
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, alice.ID, "Alice")
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, bob.ID, "Bob")

	s.Len(s.pusher.eventsFor(bob.ID, model.EventRoomJoined), 1)
	s.Len(s.pusher.eventsFor(alice.ID, model.EventPlayerJoined), 1)
	// The joiner gets room_joined, not their own player_joined
	s.Empty(s.pusher.eventsFor(bob.ID, model.EventPlayerJoined))
}

func (s *ControllerSuite) TestLeavePushesEventsToRemaining() {
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)
	alice := s.createPlayer("alice")
	bob := s.createPlayer("bob")
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, alice.ID, "Alice")
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, bob.ID, "Bob")

	_, _ = s.controller.LeaveRoom(s.ctx, room.ID, bob.ID)

	events := s.pusher.eventsFor(alice.ID, model.EventPlayerLeft)
	s.Require().Len(events, 1)
	s.Equal(bob.ID, events[0].PlayerID)
}

// Disconnect cleanup

func (s *ControllerSuite) TestDisconnectTriggersImplicitLeave() {
	alice := s.createPlayer("alice")
	bob := s.createPlayer("bob")
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, alice.ID, "Alice")
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, bob.ID, "Bob")

	sid, ok := s.sessions.SessionForPlayer(alice.ID)
	s.Require().True(ok)
	s.controller.DisconnectSession(s.ctx, sid)

	players, _ := s.controller.ListRoomPlayers(s.ctx, room.ID)
	s.Require().Len(players, 1)
	s.Equal(bob.ID, players[0].PlayerID)
}

func (s *ControllerSuite) TestDisconnectAfterExplicitLeaveDecrementsOnce() {
	alice := s.createPlayer("alice")
	bob := s.createPlayer("bob")
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, alice.ID, "Alice")
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, bob.ID, "Bob")

	left, _ := s.controller.LeaveRoom(s.ctx, room.ID, alice.ID)
	s.True(left)

	sid, _ := s.sessions.SessionForPlayer(alice.ID)
	s.controller.DisconnectSession(s.ctx, sid)

	players, _ := s.controller.ListRoomPlayers(s.ctx, room.ID)
	s.Len(players, 1)
}

func (s *ControllerSuite) TestHeartbeatExpiryTriggersCleanup() {
	alice := s.createPlayer("alice")
	bob := s.createPlayer("bob")
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, alice.ID, "Alice")
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, bob.ID, "Bob")

	// Only bob keeps heartbeating
	s.clock.Advance(20 * time.Second)
	sid, _ := s.sessions.SessionForPlayer(bob.ID)
	_ = s.sessions.Heartbeat(sid)
	s.clock.Advance(20 * time.Second)

	s.sessions.ExpireStale(s.ctx)

	players, _ := s.controller.ListRoomPlayers(s.ctx, room.ID)
	s.Require().Len(players, 1)
	s.Equal(bob.ID, players[0].PlayerID)
}

// MoveCharacter tests

func (s *ControllerSuite) TestMoveCharacterUpdatesPositionAndBroadcasts() {
	alice := s.createPlayer("alice")
	bob := s.createPlayer("bob")
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, alice.ID, "Alice")
	_, _ = s.controller.JoinRoom(s.ctx, room.ID, bob.ID, "Bob")

	pos := model.Vector3{X: 1.5, Y: 0, Z: -3}
	moved, err := s.controller.MoveCharacter(s.ctx, room.ID, alice.ID, pos)
	s.Require().NoError(err)
	s.True(moved)

	players, _ := s.controller.ListRoomPlayers(s.ctx, room.ID)
	for _, p := range players {
		if p.PlayerID == alice.ID {
			s.Equal(pos, p.Transform.Position)
		}
	}

	events := s.pusher.eventsFor(bob.ID, model.EventPlayerMoved)
	s.Require().Len(events, 1)
	s.Equal(alice.ID, events[0].PlayerID)
	s.Require().NotNil(events[0].Position)
	s.Equal(pos, *events[0].Position)
}

func (s *ControllerSuite) TestMoveCharacterNotInRoom() {
	alice := s.createPlayer("alice")
	room, _ := s.controller.CreateRoom(s.ctx, "Arena", 4)

	moved, err := s.controller.MoveCharacter(s.ctx, room.ID, alice.ID, model.Vector3{X: 1})
	s.Require().NoError(err)
	s.False(moved)
}

func (s *ControllerSuite) TestMoveCharacterRoomMissing() {
	alice := s.createPlayer("alice")

	moved, err := s.controller.MoveCharacter(s.ctx, "nope", alice.ID, model.Vector3{})
	s.Require().NoError(err)
	s.False(moved)
}
