package memory

import (
	"ai-learning-partner-be/pkg/store"
	"time"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Sessions live one hour past the last write; expired entries are
	// purged every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.LearnerSession) {
	r.cache.Set(session.UserID, session, cache.DefaultExpiration)
}

// GetOrCreate returns the user's session, creating a lobby session when none
// exists or the previous one has expired.
func (r *SessionRepository) GetOrCreate(userID string) *store.LearnerSession {
	if x, found := r.cache.Get(userID); found {
		return x.(*store.LearnerSession)
	}
	session := store.NewLearnerSession(userID)
	r.cache.Set(userID, session, cache.DefaultExpiration)
	return session
}

func (r *SessionRepository) Get(userID string) (*store.LearnerSession, bool) {
	if x, found := r.cache.Get(userID); found {
		return x.(*store.LearnerSession), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(userID string) {
	r.cache.Delete(userID)
}
