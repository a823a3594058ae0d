package ws

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubSession struct {
	id string
}

func (s *stubSession) Send(evt Event) bool { return true }
func (s *stubSession) Ping() error         { return nil }
func (s *stubSession) Close()              {}

func TestRegistry_Authenticate_Binds_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sess := &stubSession{id: "conn-1"}

	// Given no connection is bound
	req.False(registry.Online("alice"))
	req.Empty(registry.ConnectionsFor("alice"))

	// When the connection authenticates
	registry.Authenticate(sess, "alice")

	// Then
	req.True(registry.Online("alice"))
	req.Equal("alice", registry.BoundID(sess))
	req.Len(registry.ConnectionsFor("alice"), 1)
}

func TestRegistry_Authenticate_Multiple_Connections_Same_User(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sess1 := &stubSession{id: "conn-1"}
	sess2 := &stubSession{id: "conn-2"}

	registry.Authenticate(sess1, "alice")
	registry.Authenticate(sess2, "alice")

	req.Len(registry.ConnectionsFor("alice"), 2)
	req.True(registry.Online("alice"))
}

func TestRegistry_Authenticate_Rebind_Moves_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sess := &stubSession{id: "conn-1"}

	// Given a connection bound to alice
	registry.Authenticate(sess, "alice")

	// When the same connection authenticates as bob
	registry.Authenticate(sess, "bob")

	// Then alice has no connection left and bob owns it
	req.False(registry.Online("alice"))
	req.True(registry.Online("bob"))
	req.Equal("bob", registry.BoundID(sess))
	req.Len(registry.ConnectionsFor("bob"), 1)
}

func TestRegistry_Authenticate_Same_User_Twice_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sess := &stubSession{id: "conn-1"}

	registry.Authenticate(sess, "alice")
	registry.Authenticate(sess, "alice")

	req.Len(registry.ConnectionsFor("alice"), 1)
}

func TestRegistry_Deauthenticate_Removes_Binding(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sess1 := &stubSession{id: "conn-1"}
	sess2 := &stubSession{id: "conn-2"}

	registry.Authenticate(sess1, "alice")
	registry.Authenticate(sess2, "alice")

	// When one connection drops
	registry.Deauthenticate(sess1)

	// Then the user is still online through the other one
	req.True(registry.Online("alice"))
	req.Len(registry.ConnectionsFor("alice"), 1)
	req.Empty(registry.BoundID(sess1))

	registry.Deauthenticate(sess2)
	req.False(registry.Online("alice"))
}

func TestRegistry_Deauthenticate_Unbound_Connection_Is_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sess := &stubSession{id: "conn-1"}

	registry.Deauthenticate(sess)

	req.Empty(registry.BoundID(sess))
	req.Empty(registry.Sessions())
}

func TestRegistry_Sessions_Returns_All_Bound(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	for i := 0; i < 5; i++ {
		registry.Authenticate(&stubSession{id: fmt.Sprintf("conn-%d", i)}, fmt.Sprintf("user-%d", i))
	}

	req.Len(registry.Sessions(), 5)
}

func TestRegistry_Concurrent_Rebind_And_Deauthenticate_Same_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sess := &stubSession{id: "conn-1"}

	// A sweeper deauthenticating races the read loop re-authenticating the
	// same connection; whatever the interleaving, a final deauthentication
	// must leave no shard entry behind
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			registry.Authenticate(sess, "alice")
			registry.Authenticate(sess, "bob")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			registry.Deauthenticate(sess)
		}
	}()
	wg.Wait()

	registry.Deauthenticate(sess)

	req.Empty(registry.BoundID(sess))
	req.False(registry.Online("alice"))
	req.False(registry.Online("bob"))
	req.Empty(registry.ConnectionsFor("alice"))
	req.Empty(registry.ConnectionsFor("bob"))
	req.Empty(registry.Sessions())
}

func TestRegistry_Concurrent_Bind_Unbind(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sess := &stubSession{id: fmt.Sprintf("conn-%d", n)}
			userID := fmt.Sprintf("user-%d", n%8)
			registry.Authenticate(sess, userID)
			registry.Online(userID)
			registry.Deauthenticate(sess)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		req.False(registry.Online(fmt.Sprintf("user-%d", i)))
	}
	req.Empty(registry.Sessions())
}
