package timeentry_test

import (
	"context"
	"sync"
	"time"

	"github.com/frahmantamala/worktrack/internal/approval"
	"github.com/frahmantamala/worktrack/internal/core/events"
	"github.com/frahmantamala/worktrack/internal/org"
	"github.com/frahmantamala/worktrack/internal/task"
	"github.com/frahmantamala/worktrack/internal/timeentry"
)

// memoryRepository keeps entries in a slice and enforces the same
// single-open rules as the partial unique indexes.
type memoryRepository struct {
	mu      sync.Mutex
	entries []*timeentry.Entry
	nextID  int64
	err     error

	// beforeSwitch runs inside SwitchTimer before its checks, standing in
	// for a concurrent writer.
	beforeSwitch func(m *memoryRepository)
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{nextID: 1}
}

func clone(e *timeentry.Entry) *timeentry.Entry {
	c := *e
	return &c
}

func (m *memoryRepository) conflicts(e *timeentry.Entry) bool {
	for _, x := range m.entries {
		if !x.Running() || x.OrgID != e.OrgID || x.UserID != e.UserID || x.Type != e.Type {
			continue
		}
		switch e.Type {
		case timeentry.TypeDaySession:
			if x.Date == e.Date {
				return true
			}
		case timeentry.TypeTaskTimer:
			return true
		}
	}
	return false
}

func (m *memoryRepository) insert(e *timeentry.Entry) {
	e.ID = m.nextID
	m.nextID++
	m.entries = append(m.entries, clone(e))
}

func (m *memoryRepository) Open(_ context.Context, e *timeentry.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.conflicts(e) {
		return timeentry.ErrAlreadyOpen
	}
	m.insert(e)
	return nil
}

func (m *memoryRepository) Create(_ context.Context, e *timeentry.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.insert(e)
	return nil
}

func (m *memoryRepository) findOpen(q timeentry.OpenQuery) *timeentry.Entry {
	for _, x := range m.entries {
		if !x.Running() || x.OrgID != q.OrgID || x.UserID != q.UserID || x.Type != q.Type {
			continue
		}
		if q.Date != "" && x.Date != q.Date {
			continue
		}
		if q.TaskID != nil && (x.TaskID == nil || *x.TaskID != *q.TaskID) {
			continue
		}
		return x
	}
	return nil
}

func (m *memoryRepository) FindOpen(_ context.Context, q timeentry.OpenQuery) (*timeentry.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if x := m.findOpen(q); x != nil {
		return clone(x), nil
	}
	return nil, timeentry.ErrNoOpenEntry
}

func (m *memoryRepository) close(x *timeentry.Entry, end time.Time) *timeentry.Entry {
	x.State = x.State.(timeentry.Running).Close(end)
	return clone(x)
}

func (m *memoryRepository) CloseOpen(_ context.Context, q timeentry.OpenQuery, end time.Time) (*timeentry.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	x := m.findOpen(q)
	if x == nil {
		return nil, timeentry.ErrNoOpenEntry
	}
	return m.close(x, end), nil
}

func (m *memoryRepository) SwitchTimer(_ context.Context, next *timeentry.Entry, at time.Time) (*timeentry.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.beforeSwitch != nil {
		m.beforeSwitch(m)
	}
	if m.findOpen(timeentry.OpenQuery{OrgID: next.OrgID, UserID: next.UserID, Type: timeentry.TypeDaySession, Date: next.Date}) == nil {
		return nil, timeentry.ErrDayNotOpen
	}
	var closed *timeentry.Entry
	if x := m.findOpen(timeentry.OpenQuery{OrgID: next.OrgID, UserID: next.UserID, Type: timeentry.TypeTaskTimer}); x != nil {
		closed = m.close(x, at)
	}
	m.insert(next)
	return closed, nil
}

func (m *memoryRepository) Get(_ context.Context, orgID, id int64) (*timeentry.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.entries {
		if x.ID == id && x.OrgID == orgID {
			return clone(x), nil
		}
	}
	return nil, timeentry.ErrNotFound
}

func (m *memoryRepository) ListForDate(_ context.Context, orgID, userID int64, date string) ([]*timeentry.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*timeentry.Entry{}
	for _, x := range m.entries {
		if x.OrgID == orgID && x.UserID == userID && x.Date == date {
			out = append(out, clone(x))
		}
	}
	return out, nil
}

func (m *memoryRepository) ListActive(_ context.Context, orgID, userID int64) ([]*timeentry.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*timeentry.Entry{}
	for _, x := range m.entries {
		if x.OrgID == orgID && x.UserID == userID && x.Running() {
			out = append(out, clone(x))
		}
	}
	return out, nil
}

func (m *memoryRepository) Delete(_ context.Context, orgID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, x := range m.entries {
		if x.ID == id && x.OrgID == orgID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return timeentry.ErrNotFound
}

func (m *memoryRepository) Review(_ context.Context, orgID, id int64, r *approval.Review) (*timeentry.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.entries {
		if x.ID == id && x.OrgID == orgID {
			if x.Status != r.From {
				return nil, timeentry.ErrStatusChanged
			}
			reviewer := r.ReviewerID
			at := r.At
			x.Status = r.To
			x.ReviewerID = &reviewer
			x.ReviewNote = r.Note
			x.ReviewedAt = &at
			return clone(x), nil
		}
	}
	return nil, timeentry.ErrNotFound
}

func (m *memoryRepository) openCount(userID int64, t timeentry.Type) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, x := range m.entries {
		if x.UserID == userID && x.Type == t && x.Running() {
			n++
		}
	}
	return n
}

type mockTasks map[int64]*task.Task

func (t mockTasks) GetByID(_ context.Context, orgID, taskID int64) (*task.Task, error) {
	if x, ok := t[taskID]; ok && x.OrgID == orgID {
		return x, nil
	}
	return nil, task.ErrNotFound
}

type fixedScope map[int64][]int64

func (s fixedScope) InScope(_ context.Context, reviewer *org.Member, memberID int64) (bool, error) {
	if reviewer.Role.OrgWide() {
		return true, nil
	}
	for _, id := range s[reviewer.UserID] {
		if id == memberID {
			return true, nil
		}
	}
	return false, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}
