// Package mock provides in-memory repository implementations for tests.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/prepdeck/prepdeck/pkg/models"
	"github.com/prepdeck/prepdeck/pkg/repository"
)

// Mocks bundles the in-memory repositories sharing one clock so creation
// order is deterministic.
type Mocks struct {
	Users     *UserRepo
	Sessions  *SessionRepo
	Questions *QuestionRepo
	Jobs      *JobRepo

	mu   sync.Mutex
	tick int64
}

func NewMocks() *Mocks {
	m := &Mocks{}
	m.Users = &UserRepo{m: m, byID: map[int64]models.User{}}
	m.Sessions = &SessionRepo{m: m, byID: map[int64]models.Session{}, links: map[int64][]int64{}}
	m.Questions = &QuestionRepo{m: m, byID: map[int64]models.Question{}}
	m.Jobs = &JobRepo{m: m, byID: map[int64]models.Job{}}
	return m
}

func (m *Mocks) now() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick++
	return m.tick
}

// UserRepo is an in-memory repository.UserRepo.
type UserRepo struct {
	m      *Mocks
	byID   map[int64]models.User
	nextID int64

	CreateErr error
}

var _ repository.UserRepo = (*UserRepo)(nil)

func (r *UserRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if r.CreateErr != nil {
		return 0, r.CreateErr
	}
	r.nextID++
	ts := r.m.now()
	stored := *u
	stored.ID = r.nextID
	stored.Created = ts
	stored.Updated = ts
	r.byID[stored.ID] = stored
	return stored.ID, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := r.byID[id]; ok {
		out := u
		return &out, nil
	}
	return nil, nil
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

// SessionRepo is an in-memory repository.SessionRepo.
type SessionRepo struct {
	m      *Mocks
	byID   map[int64]models.Session
	links  map[int64][]int64
	nextID int64

	CreateErr error
	LinkErr   error
}

var _ repository.SessionRepo = (*SessionRepo)(nil)

func (r *SessionRepo) CreateSession(ctx context.Context, s *models.Session) (int64, error) {
	if r.CreateErr != nil {
		return 0, r.CreateErr
	}
	r.nextID++
	ts := r.m.now()
	stored := *s
	stored.ID = r.nextID
	stored.Created = ts
	stored.Updated = ts
	stored.Questions = nil
	r.byID[stored.ID] = stored
	return stored.ID, nil
}

func (r *SessionRepo) GetSessionByID(ctx context.Context, id int64) (*models.Session, error) {
	if s, ok := r.byID[id]; ok {
		out := s
		return &out, nil
	}
	return nil, nil
}

func (r *SessionRepo) ListSessionsByUser(ctx context.Context, userID int64) ([]models.Session, error) {
	var out []models.Session
	for _, s := range r.byID {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created > out[j].Created })
	return out, nil
}

func (r *SessionRepo) UpdateSession(ctx context.Context, id int64, patch map[string]any) (*models.Session, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	if v, ok := patch["role"].(string); ok {
		s.Role = v
	}
	if v, ok := patch["experience"].(string); ok {
		s.Experience = v
	}
	if v, ok := patch["topics_to_focus"].(string); ok {
		s.TopicsToFocus = v
	}
	if v, ok := patch["topicsToFocus"].(string); ok {
		s.TopicsToFocus = v
	}
	if v, ok := patch["description"].(string); ok {
		s.Description = v
	}
	s.Updated = r.m.now()
	r.byID[id] = s
	out := s
	return &out, nil
}

func (r *SessionRepo) DeleteSession(ctx context.Context, id int64) error {
	delete(r.byID, id)
	delete(r.links, id)
	return nil
}

func (r *SessionRepo) LinkQuestions(ctx context.Context, sessionID int64, questionIDs []int64) error {
	if r.LinkErr != nil {
		return r.LinkErr
	}
	r.links[sessionID] = append(r.links[sessionID], questionIDs...)
	if s, ok := r.byID[sessionID]; ok {
		s.Updated = r.m.now()
		r.byID[sessionID] = s
	}
	return nil
}

// Links exposes the link list for assertions.
func (r *SessionRepo) Links(sessionID int64) []int64 {
	return r.links[sessionID]
}

// QuestionRepo is an in-memory repository.QuestionRepo.
type QuestionRepo struct {
	m      *Mocks
	byID   map[int64]models.Question
	nextID int64

	CreateErr error
	UpdateErr error
}

var _ repository.QuestionRepo = (*QuestionRepo)(nil)

func (r *QuestionRepo) CreateQuestion(ctx context.Context, q *models.Question) (int64, error) {
	if r.CreateErr != nil {
		return 0, r.CreateErr
	}
	r.nextID++
	ts := r.m.now()
	stored := *q
	stored.ID = r.nextID
	stored.Created = ts
	stored.Updated = ts
	r.byID[stored.ID] = stored
	return stored.ID, nil
}

func (r *QuestionRepo) GetQuestionByID(ctx context.Context, id int64) (*models.Question, error) {
	if q, ok := r.byID[id]; ok {
		out := q
		return &out, nil
	}
	return nil, nil
}

func (r *QuestionRepo) ListBySession(ctx context.Context, sessionID int64, order repository.QuestionOrder) ([]models.Question, error) {
	var out []models.Question
	for _, q := range r.byID {
		if q.SessionID == sessionID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if order == repository.OrderPinnedFirst && a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if a.Created != b.Created {
			return a.Created < b.Created
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *QuestionRepo) UpdateQuestion(ctx context.Context, q *models.Question) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	stored, ok := r.byID[q.ID]
	if !ok {
		return nil
	}
	stored.Answer = q.Answer
	stored.IsPinned = q.IsPinned
	stored.Note = q.Note
	stored.Updated = r.m.now()
	r.byID[q.ID] = stored
	return nil
}

func (r *QuestionRepo) DeleteBySession(ctx context.Context, sessionID int64) (int64, error) {
	var n int64
	for id, q := range r.byID {
		if q.SessionID == sessionID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *QuestionRepo) DeleteOrphans(ctx context.Context) (int64, error) {
	linked := map[int64]bool{}
	for _, ids := range r.m.Sessions.links {
		for _, id := range ids {
			linked[id] = true
		}
	}
	var n int64
	for id, q := range r.byID {
		if _, ok := r.m.Sessions.byID[q.SessionID]; !ok || !linked[id] {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

// Count reports how many questions are stored, for orphan assertions.
func (r *QuestionRepo) Count() int {
	return len(r.byID)
}

// JobRepo is an in-memory repository.JobRepo.
// JobRepo is guarded by its own lock; worker pool tests poll it from a
// separate goroutine.
type JobRepo struct {
	m      *Mocks
	mu     sync.Mutex
	byID   map[int64]models.Job
	nextID int64
}

var _ repository.JobRepo = (*JobRepo)(nil)

func (r *JobRepo) EnqueueJob(ctx context.Context, j *models.Job) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ts := r.m.now()
	stored := *j
	stored.ID = r.nextID
	stored.Status = "pending"
	if stored.MaxAttempts <= 0 {
		stored.MaxAttempts = 3
	}
	stored.Created = ts
	stored.Updated = ts
	r.byID[stored.ID] = stored
	return stored.ID, nil
}

func (r *JobRepo) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.byID[id]; ok {
		out := j
		return &out, nil
	}
	return nil, nil
}

func (r *JobRepo) FetchNextJob(ctx context.Context) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *models.Job
	for id := range r.byID {
		j := r.byID[id]
		if j.Status != "pending" {
			continue
		}
		if best == nil || j.Created < best.Created {
			out := j
			best = &out
		}
	}
	if best == nil {
		return nil, nil
	}
	best.Status = "running"
	best.Attempts++
	r.byID[best.ID] = *best
	return best, nil
}

func (r *JobRepo) UpdateJob(ctx context.Context, j *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[j.ID]
	if !ok {
		return nil
	}
	stored.Payload = j.Payload
	stored.Status = j.Status
	stored.Attempts = j.Attempts
	stored.LastError = j.LastError
	stored.Updated = r.m.now()
	r.byID[j.ID] = stored
	return nil
}
