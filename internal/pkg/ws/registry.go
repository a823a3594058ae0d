package ws

import (
	"hash/fnv"
	"sync"
)

const shardCount = 16

type shard struct {
	mu    sync.RWMutex
	conns map[string]map[Session]struct{}
}

// Registry 在线登记表：参与者标识 -> 活跃连接集合
// 仅存活于进程内存，连接断开即消失，重启后由客户端重新认证重建
type Registry struct {
	shards [shardCount]*shard

	// 每条连接当前绑定的参与者，重新认证时用于先解除旧绑定
	bmu   sync.Mutex
	bound map[Session]string
}

func NewRegistry() *Registry {
	r := &Registry{
		bound: make(map[Session]string),
	}
	for i := range r.shards {
		r.shards[i] = &shard{conns: make(map[string]map[Session]struct{})}
	}
	return r
}

func (s *Registry) shardFor(userID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return s.shards[h.Sum32()%shardCount]
}

// Authenticate 将连接绑定到参与者；重复认证覆盖旧绑定，不会叠加
// 绑定表与分片集合必须在同一把 bmu 临界区内变更，否则与 Deauthenticate
// 交错时会在分片里留下无绑定的幽灵连接
func (s *Registry) Authenticate(sess Session, userID string) {
	if userID == "" {
		return
	}

	s.bmu.Lock()
	defer s.bmu.Unlock()

	old := s.bound[sess]
	if old == userID {
		return
	}
	s.bound[sess] = userID

	if old != "" {
		s.removeFrom(old, sess)
	}

	sh := s.shardFor(userID)
	sh.mu.Lock()
	set, ok := sh.conns[userID]
	if !ok {
		set = make(map[Session]struct{})
		sh.conns[userID] = set
	}
	set[sess] = struct{}{}
	sh.mu.Unlock()
}

// Deauthenticate 解除连接绑定，未绑定时为空操作
func (s *Registry) Deauthenticate(sess Session) {
	s.bmu.Lock()
	defer s.bmu.Unlock()

	old := s.bound[sess]
	if old == "" {
		return
	}
	delete(s.bound, sess)
	s.removeFrom(old, sess)
}

func (s *Registry) removeFrom(userID string, sess Session) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	if set, ok := sh.conns[userID]; ok {
		delete(set, sess)
		if len(set) == 0 {
			delete(sh.conns, userID)
		}
	}
	sh.mu.Unlock()
}

// BoundID 返回连接当前绑定的参与者，未认证时为空串
func (s *Registry) BoundID(sess Session) string {
	s.bmu.Lock()
	defer s.bmu.Unlock()
	return s.bound[sess]
}

// ConnectionsFor 返回参与者的全部活跃连接快照，仅用于尽力投递
func (s *Registry) ConnectionsFor(userID string) []Session {
	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	set, ok := sh.conns[userID]
	if !ok {
		return nil
	}
	sessions := make([]Session, 0, len(set))
	for sess := range set {
		sessions = append(sessions, sess)
	}
	return sessions
}

// Online 参与者是否至少有一条活跃连接
func (s *Registry) Online(userID string) bool {
	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return len(sh.conns[userID]) > 0
}

// Sessions 返回所有已绑定连接的快照，供巡检任务使用
func (s *Registry) Sessions() []Session {
	s.bmu.Lock()
	defer s.bmu.Unlock()

	sessions := make([]Session, 0, len(s.bound))
	for sess := range s.bound {
		sessions = append(sessions, sess)
	}
	return sessions
}
