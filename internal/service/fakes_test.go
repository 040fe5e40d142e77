package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"oxbow-be/internal/entity"
	"oxbow-be/internal/repository/contract"
	"oxbow-be/internal/repository/specification"
	"oxbow-be/internal/repository/unitofwork"
	"oxbow-be/pkg/events"
	"oxbow-be/pkg/llm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for Postgres. It understands the
// specifications the services use and panics on anything else so a new
// query shape cannot silently match everything.
type memStore struct {
	mu          sync.Mutex
	users       []entity.User
	entries     []entity.JournalEntry
	requests    []entity.MirrorRequest
	mirrors     []entity.Mirror
	friendships []entity.Friendship
	shares      []entity.MirrorShare

	commits int
}

func newMemStore() *memStore {
	return &memStore{}
}

type memSnapshot struct {
	users       []entity.User
	entries     []entity.JournalEntry
	requests    []entity.MirrorRequest
	mirrors     []entity.Mirror
	friendships []entity.Friendship
	shares      []entity.MirrorShare
}

func (s *memStore) snapshot() memSnapshot {
	return memSnapshot{
		users:       append([]entity.User(nil), s.users...),
		entries:     append([]entity.JournalEntry(nil), s.entries...),
		requests:    append([]entity.MirrorRequest(nil), s.requests...),
		mirrors:     append([]entity.Mirror(nil), s.mirrors...),
		friendships: append([]entity.Friendship(nil), s.friendships...),
		shares:      append([]entity.MirrorShare(nil), s.shares...),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.users = snap.users
	s.entries = snap.entries
	s.requests = snap.requests
	s.mirrors = snap.mirrors
	s.friendships = snap.friendships
	s.shares = snap.shares
}

// seeding helpers

func (s *memStore) addUser(email, name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := entity.User{Id: uuid.New(), Email: email, FullName: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.users = append(s.users, u)
	return u.Id
}

func (s *memStore) addEntries(userId uuid.UUID, n int, start time.Time) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uuid.UUID, n)
	for i := 0; i < n; i++ {
		e := entity.JournalEntry{
			Id:        uuid.New(),
			UserId:    userId,
			Title:     fmt.Sprintf("Day %d", i+1),
			Content:   fmt.Sprintf("Entry number %d.", i+1),
			Source:    entity.EntrySourceText,
			CreatedAt: start.Add(time.Duration(i) * time.Hour),
		}
		s.entries = append(s.entries, e)
		ids[i] = e.Id
	}
	return ids
}

func (s *memStore) addRequest(r entity.MirrorRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r)
}

func (s *memStore) addMirror(m entity.Mirror) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirrors = append(s.mirrors, m)
}

func (s *memStore) addFriendship(f entity.Friendship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friendships = append(s.friendships, f)
}

func (s *memStore) request(id uuid.UUID) entity.MirrorRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.Id == id {
			return r
		}
	}
	panic("request not found")
}

func (s *memStore) requestsOf(userId uuid.UUID) []entity.MirrorRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.MirrorRequest
	for _, r := range s.requests {
		if r.UserId == userId {
			out = append(out, r)
		}
	}
	return out
}

// query engine

type accessors[T any] struct {
	id     func(T) uuid.UUID
	owner  func(T) uuid.UUID
	field  func(T, string) interface{}
	custom func(specification.Specification) (func(T) bool, bool)
}

func runQuery[T any](items []T, specs []specification.Specification, acc accessors[T]) []T {
	var (
		filters []func(T) bool
		less    func(a, b T) bool
		limit   = -1
		offset  int
	)
	timeOf := func(v T, field string) time.Time {
		switch t := acc.field(v, field).(type) {
		case time.Time:
			return t
		case *time.Time:
			if t != nil {
				return *t
			}
		}
		return time.Time{}
	}

	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			filters = append(filters, func(v T) bool { return acc.id(v) == sp.ID })
		case specification.ByIDs:
			set := make(map[uuid.UUID]bool, len(sp.IDs))
			for _, id := range sp.IDs {
				set[id] = true
			}
			filters = append(filters, func(v T) bool { return set[acc.id(v)] })
		case specification.UserOwnedBy:
			filters = append(filters, func(v T) bool { return acc.owner(v) == sp.UserID })
		case specification.FilterBy:
			filters = append(filters, func(v T) bool { return fmt.Sprint(acc.field(v, sp.Field)) == fmt.Sprint(sp.Value) })
		case specification.OrderBy:
			less = func(a, b T) bool {
				ta, tb := timeOf(a, sp.Field), timeOf(b, sp.Field)
				if sp.Desc {
					return ta.After(tb)
				}
				return ta.Before(tb)
			}
		case specification.LatestRequested:
			less = func(a, b T) bool { return timeOf(a, "requested_at").After(timeOf(b, "requested_at")) }
		case specification.Pagination:
			limit, offset = sp.Limit, sp.Offset
		default:
			f, ok := acc.custom(spec)
			if !ok {
				panic(fmt.Sprintf("memStore: unsupported specification %T", spec))
			}
			filters = append(filters, f)
		}
	}

	out := make([]T, 0, len(items))
next:
	for _, v := range items {
		for _, f := range filters {
			if !f(v) {
				continue next
			}
		}
		out = append(out, v)
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	if offset > 0 {
		if offset >= len(out) {
			return nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func noCustom[T any](specification.Specification) (func(T) bool, bool) { return nil, false }

var userAcc = accessors[entity.User]{
	id:    func(u entity.User) uuid.UUID { return u.Id },
	owner: func(u entity.User) uuid.UUID { return u.Id },
	field: func(u entity.User, f string) interface{} {
		switch f {
		case "email":
			return u.Email
		case "created_at":
			return u.CreatedAt
		}
		panic("memStore: unknown user field " + f)
	},
	custom: func(spec specification.Specification) (func(entity.User) bool, bool) {
		if sp, ok := spec.(specification.ByEmail); ok {
			return func(u entity.User) bool { return u.Email == sp.Email }, true
		}
		return nil, false
	},
}

var entryAcc = accessors[entity.JournalEntry]{
	id:    func(e entity.JournalEntry) uuid.UUID { return e.Id },
	owner: func(e entity.JournalEntry) uuid.UUID { return e.UserId },
	field: func(e entity.JournalEntry, f string) interface{} {
		switch f {
		case "created_at":
			return e.CreatedAt
		case "updated_at":
			return e.UpdatedAt
		}
		panic("memStore: unknown journal field " + f)
	},
	custom: func(spec specification.Specification) (func(entity.JournalEntry) bool, bool) {
		switch sp := spec.(type) {
		case specification.Unassigned:
			return func(e entity.JournalEntry) bool { return e.MirrorId == nil }, true
		case specification.ByMirrorID:
			return func(e entity.JournalEntry) bool { return e.MirrorId != nil && *e.MirrorId == sp.MirrorID }, true
		case specification.CreatedAfter:
			return func(e entity.JournalEntry) bool { return !e.CreatedAt.Before(sp.Since) }, true
		}
		return nil, false
	},
}

var requestAcc = accessors[entity.MirrorRequest]{
	id:    func(r entity.MirrorRequest) uuid.UUID { return r.Id },
	owner: func(r entity.MirrorRequest) uuid.UUID { return r.UserId },
	field: func(r entity.MirrorRequest, f string) interface{} {
		switch f {
		case "status":
			return r.Status
		case "requested_at":
			return r.RequestedAt
		}
		panic("memStore: unknown request field " + f)
	},
	custom: func(spec specification.Specification) (func(entity.MirrorRequest) bool, bool) {
		switch sp := spec.(type) {
		case specification.InFlight:
			return func(r entity.MirrorRequest) bool { return r.Status.InFlight() }, true
		case specification.ByStatus:
			return func(r entity.MirrorRequest) bool {
				for _, st := range sp.Statuses {
					if string(r.Status) == st {
						return true
					}
				}
				return false
			}, true
		case specification.RequestedAfter:
			return func(r entity.MirrorRequest) bool { return !r.RequestedAt.Before(sp.Since) }, true
		}
		return nil, false
	},
}

func mirrorAcc(s *memStore) accessors[entity.Mirror] {
	return accessors[entity.Mirror]{
		id:    func(m entity.Mirror) uuid.UUID { return m.Id },
		owner: func(m entity.Mirror) uuid.UUID { return m.UserId },
		field: func(m entity.Mirror, f string) interface{} {
			if f == "created_at" {
				return m.CreatedAt
			}
			panic("memStore: unknown mirror field " + f)
		},
		custom: func(spec specification.Specification) (func(entity.Mirror) bool, bool) {
			switch sp := spec.(type) {
			case specification.ByRequestID:
				return func(m entity.Mirror) bool { return m.RequestId == sp.RequestID }, true
			case specification.SharedWith:
				return func(m entity.Mirror) bool {
					for _, sh := range s.shares {
						if sh.MirrorId == m.Id && sh.RecipientId == sp.RecipientID {
							return true
						}
					}
					return false
				}, true
			}
			return nil, false
		},
	}
}

var friendshipAcc = accessors[entity.Friendship]{
	id:    func(f entity.Friendship) uuid.UUID { return f.Id },
	owner: func(f entity.Friendship) uuid.UUID { return f.RequesterId },
	field: func(f entity.Friendship, name string) interface{} {
		switch name {
		case "status":
			return f.Status
		case "updated_at":
			return f.UpdatedAt
		case "created_at":
			return f.CreatedAt
		}
		panic("memStore: unknown friendship field " + name)
	},
	custom: func(spec specification.Specification) (func(entity.Friendship) bool, bool) {
		switch sp := spec.(type) {
		case specification.BetweenUsers:
			return func(f entity.Friendship) bool {
				return (f.RequesterId == sp.A && f.AddresseeId == sp.B) || (f.RequesterId == sp.B && f.AddresseeId == sp.A)
			}, true
		case specification.InvolvingUser:
			return func(f entity.Friendship) bool { return f.RequesterId == sp.UserID || f.AddresseeId == sp.UserID }, true
		case specification.AddressedTo:
			return func(f entity.Friendship) bool { return f.AddresseeId == sp.UserID }, true
		}
		return nil, false
	},
}

var shareAcc = accessors[entity.MirrorShare]{
	id:    func(s entity.MirrorShare) uuid.UUID { return s.Id },
	owner: func(s entity.MirrorShare) uuid.UUID { return s.OwnerId },
	field: func(s entity.MirrorShare, f string) interface{} {
		switch f {
		case "mirror_id":
			return s.MirrorId
		case "created_at":
			return s.CreatedAt
		}
		panic("memStore: unknown share field " + f)
	},
	custom: func(spec specification.Specification) (func(entity.MirrorShare) bool, bool) {
		if sp, ok := spec.(specification.ByRecipientID); ok {
			return func(s entity.MirrorShare) bool { return s.RecipientId == sp.RecipientID }, true
		}
		return nil, false
	},
}

func first[T any](items []T) *T {
	if len(items) == 0 {
		return nil
	}
	v := items[0]
	return &v
}

func pointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		v := items[i]
		out[i] = &v
	}
	return out
}

// unit of work

type memFactory struct {
	store *memStore
}

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUnitOfWork{store: f.store}
}

type memUnitOfWork struct {
	store *memStore
	snap  *memSnapshot
}

func (u *memUnitOfWork) Begin(ctx context.Context) error {
	if u.snap != nil {
		return fmt.Errorf("transaction already started")
	}
	u.store.mu.Lock()
	snap := u.store.snapshot()
	u.store.mu.Unlock()
	u.snap = &snap
	return nil
}

func (u *memUnitOfWork) Commit() error {
	if u.snap == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.snap = nil
	u.store.mu.Lock()
	u.store.commits++
	u.store.mu.Unlock()
	return nil
}

func (u *memUnitOfWork) Rollback() error {
	if u.snap == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	u.store.mu.Lock()
	u.store.restore(*u.snap)
	u.store.mu.Unlock()
	u.snap = nil
	return nil
}

func (u *memUnitOfWork) UserRepository() contract.UserRepository { return &memUserRepo{u.store} }
func (u *memUnitOfWork) JournalEntryRepository() contract.JournalEntryRepository {
	return &memJournalRepo{u.store}
}
func (u *memUnitOfWork) MirrorRequestRepository() contract.MirrorRequestRepository {
	return &memRequestRepo{u.store}
}
func (u *memUnitOfWork) MirrorRepository() contract.MirrorRepository { return &memMirrorRepo{u.store} }
func (u *memUnitOfWork) FriendshipRepository() contract.FriendshipRepository {
	return &memFriendshipRepo{u.store}
}
func (u *memUnitOfWork) MirrorShareRepository() contract.MirrorShareRepository {
	return &memShareRepo{u.store}
}

// repositories

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email || u.Id == user.Id {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.users = append(r.s.users, *user)
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email && u.Id != user.Id {
			return gorm.ErrDuplicatedKey
		}
	}
	for i := range r.s.users {
		if r.s.users[i].Id == user.Id {
			r.s.users[i] = *user
		}
	}
	return nil
}

func (r *memUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return first(runQuery(r.s.users, specs, userAcc)), nil
}

func (r *memUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return pointers(runQuery(r.s.users, specs, userAcc)), nil
}

type memJournalRepo struct{ s *memStore }

// live hides soft-deleted rows like gorm's default scope.
func (r *memJournalRepo) live() []entity.JournalEntry {
	out := make([]entity.JournalEntry, 0, len(r.s.entries))
	for _, e := range r.s.entries {
		if !e.IsDeleted {
			out = append(out, e)
		}
	}
	return out
}

func (r *memJournalRepo) Create(ctx context.Context, entry *entity.JournalEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.entries = append(r.s.entries, *entry)
	return nil
}

func (r *memJournalRepo) Update(ctx context.Context, entry *entity.JournalEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.entries {
		if r.s.entries[i].Id == entry.Id {
			r.s.entries[i] = *entry
		}
	}
	return nil
}

func (r *memJournalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for i := range r.s.entries {
		if r.s.entries[i].Id == id {
			r.s.entries[i].IsDeleted = true
			r.s.entries[i].DeletedAt = &now
		}
	}
	return nil
}

func (r *memJournalRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.JournalEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return first(runQuery(r.live(), specs, entryAcc)), nil
}

func (r *memJournalRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JournalEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return pointers(runQuery(r.live(), specs, entryAcc)), nil
}

func (r *memJournalRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(runQuery(r.live(), specs, entryAcc))), nil
}

func (r *memJournalRepo) BindToMirror(ctx context.Context, ids []uuid.UUID, mirrorId uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for i := range r.s.entries {
		e := &r.s.entries[i]
		if want[e.Id] && e.MirrorId == nil && !e.IsDeleted {
			id := mirrorId
			e.MirrorId = &id
			n++
		}
	}
	return n, nil
}

type memRequestRepo struct{ s *memStore }

func (r *memRequestRepo) Create(ctx context.Context, req *entity.MirrorRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// partial unique index on (user_id) for in-flight rows
	for _, existing := range r.s.requests {
		if existing.UserId == req.UserId && existing.Status.InFlight() && req.Status.InFlight() {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.requests = append(r.s.requests, *req)
	return nil
}

func (r *memRequestRepo) Update(ctx context.Context, req *entity.MirrorRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.requests {
		if r.s.requests[i].Id == req.Id {
			r.s.requests[i] = *req
		}
	}
	return nil
}

func (r *memRequestRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MirrorRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return first(runQuery(r.s.requests, specs, requestAcc)), nil
}

func (r *memRequestRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(runQuery(r.s.requests, specs, requestAcc))), nil
}

func (r *memRequestRepo) MarkProcessing(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.requests {
		req := &r.s.requests[i]
		if req.Id == id && req.Status == entity.MirrorRequestPending {
			req.Status = entity.MirrorRequestProcessing
			started := at
			req.StartedAt = &started
			return true, nil
		}
	}
	return false, nil
}

type memMirrorRepo struct{ s *memStore }

func (r *memMirrorRepo) Create(ctx context.Context, m *entity.Mirror) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.mirrors = append(r.s.mirrors, *m)
	return nil
}

func (r *memMirrorRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Mirror, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return first(runQuery(r.s.mirrors, specs, mirrorAcc(r.s))), nil
}

func (r *memMirrorRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Mirror, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return pointers(runQuery(r.s.mirrors, specs, mirrorAcc(r.s))), nil
}

func (r *memMirrorRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(runQuery(r.s.mirrors, specs, mirrorAcc(r.s)))), nil
}

func (r *memMirrorRepo) MarkViewed(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.mirrors {
		if r.s.mirrors[i].Id == id {
			viewedAt := at
			r.s.mirrors[i].HasBeenViewed = true
			r.s.mirrors[i].ViewedAt = &viewedAt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type memFriendshipRepo struct{ s *memStore }

func (r *memFriendshipRepo) Create(ctx context.Context, f *entity.Friendship) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.friendships = append(r.s.friendships, *f)
	return nil
}

func (r *memFriendshipRepo) Update(ctx context.Context, f *entity.Friendship) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.friendships {
		if r.s.friendships[i].Id == f.Id {
			r.s.friendships[i] = *f
		}
	}
	return nil
}

func (r *memFriendshipRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.s.friendships[:0]
	for _, f := range r.s.friendships {
		if f.Id != id {
			out = append(out, f)
		}
	}
	r.s.friendships = out
	return nil
}

func (r *memFriendshipRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Friendship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return first(runQuery(r.s.friendships, specs, friendshipAcc)), nil
}

func (r *memFriendshipRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Friendship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return pointers(runQuery(r.s.friendships, specs, friendshipAcc)), nil
}

type memShareRepo struct{ s *memStore }

func (r *memShareRepo) Create(ctx context.Context, share *entity.MirrorShare) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.shares = append(r.s.shares, *share)
	return nil
}

func (r *memShareRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MirrorShare, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return first(runQuery(r.s.shares, specs, shareAcc)), nil
}

func (r *memShareRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MirrorShare, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return pointers(runQuery(r.s.shares, specs, shareAcc)), nil
}

// collaborators

type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingEvents) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingEvents) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type scriptedLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	history [][]llm.Message
}

func (l *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = append(l.history, history)
	return l.reply, l.err
}

func (l *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return l.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}
