// Package history provides a bounded, TTL-expiring store of recent
// snapshot envelopes for the inspection transport.
// Package history 为检查传输提供有界的、按TTL过期的近期快照信封存储。
//
// The store keeps the envelopes produced by recent serialize calls so a
// debugging client can list and fetch them after the fact. It is bounded
// two ways: entries expire after a TTL, and when the capacity limit is
// reached the oldest entry is evicted first. Entries are addressed by a
// fingerprint of their wire form, so re-storing an identical snapshot is
// idempotent.
//
// 存储保留近期序列化调用产生的信封，使调试客户端可以事后列出并获取它们。
// 它有两重限制：条目在TTL后过期；达到容量上限时最旧的条目先被淘汰。
// 条目以其线路形式的指纹寻址，因此重复存储相同快照是幂等的。
package history

import (
	"sort"
	"sync"
	"time"

	"github.com/yourusername/snapcodec/pkg/codec"
	snaperrors "github.com/yourusername/snapcodec/pkg/errors"
)

const (
	// defaultMaxSnapshots 是默认的容量上限
	defaultMaxSnapshots = 1024

	// defaultTTL 是条目的默认生存时间
	defaultTTL = 15 * time.Minute

	// defaultCleanInterval 是后台清理的默认间隔
	defaultCleanInterval = time.Minute
)

// Record is one stored snapshot.
// Record 是一条已存储的快照。
type Record struct {
	// ID is the fingerprint of the envelope's wire form.
	// ID 是信封线路形式的指纹。
	ID string `json:"id"`

	// Source names the value-graph provider the snapshot was taken from,
	// or is empty for ad-hoc submissions.
	// Source 指明快照来源的值图提供者，临时提交时为空。
	Source string `json:"source,omitempty"`

	// Envelope is the stored snapshot itself.
	// Envelope 是存储的快照本身。
	Envelope *codec.Envelope `json:"envelope"`

	// StoredAt is when the record entered the store.
	// StoredAt 是记录进入存储的时间。
	StoredAt time.Time `json:"stored_at"`

	// expireAt 是过期时间（Unix纳秒），0表示永不过期
	expireAt int64
}

// expired 判断记录是否已过期
func (r *Record) expired(now int64) bool {
	return r.expireAt != 0 && now > r.expireAt
}

// Config holds the store's bounds.
// Config 保存存储的限制参数。
type Config struct {
	// MaxSnapshots is the capacity bound; 0 uses the default.
	// MaxSnapshots 是容量上限；0使用默认值。
	MaxSnapshots int

	// TTL is the entry lifetime; 0 uses the default, negative disables
	// expiry.
	// TTL 是条目生存时间；0使用默认值，负值禁用过期。
	TTL time.Duration

	// CleanInterval is how often the background cleaner runs; 0 uses the
	// default.
	// CleanInterval 是后台清理的运行间隔；0使用默认值。
	CleanInterval time.Duration
}

// Store is a bounded snapshot history. It is safe for concurrent use.
// Store 是有界的快照历史，可安全并发使用。
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
	// order 按插入先后保存ID，用于容量淘汰
	order []string

	maxSnapshots int
	ttl          time.Duration

	closeChan chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	closed    bool
}

// NewStore creates a snapshot history store and starts its background
// cleaner.
//
// NewStore 创建快照历史存储并启动其后台清理器。
func NewStore(config Config) *Store {
	maxSnapshots := config.MaxSnapshots
	if maxSnapshots <= 0 {
		maxSnapshots = defaultMaxSnapshots
	}
	ttl := config.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}
	cleanInterval := config.CleanInterval
	if cleanInterval <= 0 {
		cleanInterval = defaultCleanInterval
	}

	s := &Store{
		records:      make(map[string]*Record),
		maxSnapshots: maxSnapshots,
		ttl:          ttl,
		closeChan:    make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanerLoop(cleanInterval)

	return s
}

// Put stores an envelope and returns its fingerprint ID. Re-storing an
// identical envelope refreshes its TTL and returns the same ID.
//
// Put 存储一个信封并返回其指纹ID。重复存储相同信封会刷新其TTL
// 并返回相同的ID。
func (s *Store) Put(source string, env *codec.Envelope) (string, error) {
	if env == nil {
		return "", snaperrors.Wrap(snaperrors.ErrInvalidEnvelope, "nil envelope")
	}
	id, err := Fingerprint(env)
	if err != nil {
		return "", err
	}

	var expireAt int64
	if s.ttl > 0 {
		expireAt = time.Now().Add(s.ttl).UnixNano()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", snaperrors.ErrStoreClosed
	}

	if existing, ok := s.records[id]; ok {
		existing.expireAt = expireAt
		return id, nil
	}

	// 容量淘汰：最旧的先出
	for len(s.records) >= s.maxSnapshots && len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.records, oldest)
	}

	s.records[id] = &Record{
		ID:       id,
		Source:   source,
		Envelope: env,
		StoredAt: time.Now(),
		expireAt: expireAt,
	}
	s.order = append(s.order, id)
	return id, nil
}

// Get returns the record with the given ID.
//
// Get 返回具有给定ID的记录。
func (s *Store) Get(id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, snaperrors.ErrStoreClosed
	}
	r, ok := s.records[id]
	if !ok || r.expired(time.Now().UnixNano()) {
		return nil, snaperrors.Wrap(snaperrors.ErrSnapshotNotFound, "id %q", id)
	}
	return r, nil
}

// List returns the live records, newest first.
//
// List 返回存活的记录，最新在前。
func (s *Store) List() ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, snaperrors.ErrStoreClosed
	}
	now := time.Now().UnixNano()
	out := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		if !r.expired(now) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StoredAt.After(out[j].StoredAt)
	})
	return out, nil
}

// Len returns the number of stored records, including not-yet-collected
// expired ones.
//
// Len 返回已存储记录的数量，包括尚未回收的过期记录。
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close stops the background cleaner and rejects further operations.
//
// Close 停止后台清理器并拒绝后续操作。
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.closeChan)
	})
	s.wg.Wait()
}

// cleanerLoop 定期移除过期记录
func (s *Store) cleanerLoop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.closeChan:
			return
		}
	}
}

// removeExpired 扫描并删除过期记录
func (s *Store) removeExpired() {
	now := time.Now().UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	live := s.order[:0]
	for _, id := range s.order {
		r, ok := s.records[id]
		if !ok {
			continue
		}
		if r.expired(now) {
			delete(s.records, id)
			continue
		}
		live = append(live, id)
	}
	s.order = live
}
