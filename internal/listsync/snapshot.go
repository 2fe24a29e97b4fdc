package listsync

import "sync"

// SnapshotStore keeps the last known list collection per user id for the
// lifetime of the process, so a remounted controller can show data
// immediately instead of a blank state.
type SnapshotStore struct {
	mu     sync.Mutex
	byUser map[string][]ListData
}

// NewSnapshotStore creates an empty snapshot store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{byUser: make(map[string][]ListData)}
}

// Get returns a copy of the snapshot for a user, if one exists
func (s *SnapshotStore) Get(userID string) ([]ListData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lists, ok := s.byUser[userID]
	if !ok {
		return nil, false
	}
	return cloneLists(lists), true
}

// Set stores a copy of the snapshot for a user
func (s *SnapshotStore) Set(userID string, lists []ListData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[userID] = cloneLists(lists)
}

// Clear drops the snapshot for a user
func (s *SnapshotStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
}
