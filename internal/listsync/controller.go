package listsync

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"
)

// Remote is the network surface the controller mutates through.
// *Repository is the production implementation.
type Remote interface {
	SetToken(token string)
	FetchLists(ctx context.Context) ([]ListData, error)
	Create(ctx context.Context, list ListData) (*ListData, error)
	SaveMany(ctx context.Context, lists []ListData) error
	SaveName(ctx context.Context, list ListData) error
	DeleteOrLeave(ctx context.Context, list ListData) error
	Leave(ctx context.Context, list ListData) error
	Share(ctx context.Context, list ListData, target string) (*ListData, error)
}

// writeOrigin says where a state write came from, which decides whether
// the persistence hook may send it to the server
type writeOrigin int

const (
	// writeExternal marks data that came from the cache or the server.
	// Persisting it back out would create a write-after-read loop on
	// every hydration.
	writeExternal writeOrigin = iota
	// writeLocal marks a user edit that the hook persists via SaveMany
	writeLocal
	// writeLocalSilent marks an optimistic write whose network call is
	// issued explicitly by the mutation itself
	writeLocalSilent
)

// Controller owns the in-memory list collection for the authenticated
// user. It mediates between the per-process snapshot store, the on-device
// cache blob and the remote list store, serving whatever it has
// immediately and revalidating in the background.
//
// Mutations are optimistic: local state changes synchronously and the
// network call runs on its own goroutine. A failed call is logged and the
// optimistic state stands until the next revalidation; there is no retry
// queue and no rollback.
type Controller struct {
	mu        sync.Mutex
	remote    Remote
	cache     CacheStore
	snapshots *SnapshotStore

	userID         string
	token          string
	ready          bool
	mounted        bool
	externalUpdate bool
	lists          []ListData

	nextTempID int64
	wg         sync.WaitGroup
}

// NewController creates a controller. A nil cache falls back to the no-op
// store and a nil snapshot store gets a private one.
func NewController(remote Remote, cache CacheStore, snapshots *SnapshotStore) *Controller {
	if cache == nil {
		cache = NoopCache{}
	}
	if snapshots == nil {
		snapshots = NewSnapshotStore()
	}
	return &Controller{
		remote:     remote,
		cache:      cache,
		snapshots:  snapshots,
		mounted:    true,
		nextTempID: -1,
	}
}

// Lists returns a copy of the current collection
func (c *Controller) Lists() []ListData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneLists(c.lists)
}

// Ready reports whether hydration for the current session has finished
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// UserID returns the id of the session the controller currently serves
func (c *Controller) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Close marks the controller unmounted and waits for in-flight background
// work. Results landing after Close are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	c.mounted = false
	c.mu.Unlock()
	c.wg.Wait()
}

// SetSession reacts to a change of authenticated user or token.
//
// No user clears state and marks the controller ready. A different user
// clears state immediately so the previous user's lists never leak, then
// hydrates from cache and revalidates in the background. The same user
// re-entering keeps whatever snapshot is already visible while the
// background refresh runs.
func (c *Controller) SetSession(userID, token string) {
	c.mu.Lock()

	if userID == "" {
		c.userID = ""
		c.token = ""
		c.ready = true
		c.setListsLocked(nil, writeExternal)
		c.mu.Unlock()
		return
	}

	changed := userID != c.userID
	c.userID = userID
	c.token = token
	c.remote.SetToken(token)

	if changed {
		// never leave the previous user's lists visible; the incoming
		// user's own snapshot, if one survived in this process, is safe
		// to show right away
		c.ready = false
		if snap, ok := c.snapshots.Get(userID); ok {
			c.setListsLocked(snap, writeExternal)
		} else {
			// transient blank until hydration lands; assigned directly so
			// the incoming user's cache blob is not overwritten with nil
			// before loadCache has a chance to read it
			c.lists = nil
		}
	} else if len(c.lists) == 0 {
		if snap, ok := c.snapshots.Get(userID); ok {
			c.setListsLocked(snap, writeExternal)
		}
	}
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.loadCache(userID)
		c.Revalidate(context.Background())
	}()
}

// loadCache applies the cached blob for a user, if any, and marks the
// controller ready
func (c *Controller) loadCache(userID string) {
	blob, err := c.cache.Get(userID)
	if err != nil {
		log.Printf("list cache read for %s failed: %v", userID, err)
	}

	var lists []ListData
	if len(blob) > 0 {
		if err := json.Unmarshal(blob, &lists); err != nil {
			log.Printf("list cache for %s is corrupt, ignoring: %v", userID, err)
			lists = nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted || c.userID != userID {
		return
	}
	if lists != nil {
		c.setListsLocked(lists, writeExternal)
	}
	c.ready = true
}

// Revalidate fetches the authoritative list set, merges duplicates, sorts
// by the viewer's order and replaces local state. A fetch error leaves the
// optimistic state untouched.
func (c *Controller) Revalidate(ctx context.Context) error {
	c.mu.Lock()
	userID := c.userID
	c.mu.Unlock()
	if userID == "" {
		return nil
	}

	lists, err := c.remote.FetchLists(ctx)
	if err != nil {
		log.Printf("list revalidation for %s failed: %v", userID, err)
		return err
	}

	merged := MergeDuplicates(lists)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Order < merged[j].Order
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	// the session may have ended while the fetch was in flight
	if !c.mounted || c.userID != userID {
		return nil
	}
	c.setListsLocked(merged, writeExternal)
	c.ready = true
	return nil
}

// SetLists replaces the collection with a UI-edited version (item checks,
// added items and so on) and persists it to the server through the
// on-change hook.
func (c *Controller) SetLists(lists []ListData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setListsLocked(cloneLists(lists), writeLocal)
}

// CreateList optimistically appends a new list under a temporary negative
// id and creates it on the server in the background. The temporary entry
// is swapped for the server's version once the create resolves.
func (c *Controller) CreateList(name string) int64 {
	c.mu.Lock()
	temp := c.nextTempID
	c.nextTempID--

	list := ListData{
		ID:         temp,
		Name:       name,
		Order:      len(c.lists),
		IsOwner:    true,
		SharedWith: []string{},
		Items:      []ItemData{},
	}
	next := append(cloneLists(c.lists), list)
	c.setListsLocked(next, writeLocalSilent)
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		created, err := c.remote.Create(context.Background(), list)
		if err != nil {
			log.Printf("create list %q failed: %v", name, err)
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.mounted {
			return
		}
		next := cloneLists(c.lists)
		for i := range next {
			if next[i].ID == temp {
				next[i] = *created
			}
		}
		c.setListsLocked(next, writeExternal)
	}()

	return temp
}

// DeleteListSmart removes a list from local state and then either deletes
// it or leaves it on the server, depending on the ownership policy
func (c *Controller) DeleteListSmart(id int64) {
	target, ok := c.removeLocally(id)
	if !ok {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.remote.DeleteOrLeave(context.Background(), target); err != nil {
			log.Printf("delete list %d failed: %v", id, err)
		}
	}()
}

// LeaveList removes the caller's share of a list
func (c *Controller) LeaveList(id int64) {
	target, ok := c.removeLocally(id)
	if !ok {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.remote.Leave(context.Background(), target); err != nil {
			log.Printf("leave list %d failed: %v", id, err)
		}
	}()
}

// removeLocally drops a list from state and returns the removed copy
func (c *Controller) removeLocally(id int64) (ListData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]ListData, 0, len(c.lists))
	var target ListData
	found := false
	for _, l := range cloneLists(c.lists) {
		if l.ID == id {
			target = l
			found = true
			continue
		}
		next = append(next, l)
	}
	if !found {
		return ListData{}, false
	}

	c.setListsLocked(next, writeLocalSilent)
	return target, true
}

// Reorder moves a list to a new position and renumbers the collection.
// The renumbered collection is persisted through the on-change hook; the
// server only honors position changes on lists the user owns.
func (c *Controller) Reorder(id int64, newOrder int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := cloneLists(c.lists)
	from := -1
	for i := range next {
		if next[i].ID == id {
			from = i
			break
		}
	}
	if from == -1 {
		return
	}

	if newOrder < 0 {
		newOrder = 0
	}
	if newOrder > len(next)-1 {
		newOrder = len(next) - 1
	}

	moved := next[from]
	next = append(next[:from], next[from+1:]...)
	next = append(next[:newOrder], append([]ListData{moved}, next[newOrder:]...)...)
	for i := range next {
		next[i].Order = i
	}

	c.setListsLocked(next, writeLocal)
}

// SaveName renames a list locally and persists the rename
func (c *Controller) SaveName(id int64, name string) {
	c.mu.Lock()
	var target ListData
	found := false
	next := cloneLists(c.lists)
	for i := range next {
		if next[i].ID == id {
			next[i].Name = name
			target = next[i]
			found = true
		}
	}
	if !found {
		c.mu.Unlock()
		return
	}
	c.setListsLocked(next, writeLocalSilent)
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.remote.SaveName(context.Background(), target); err != nil {
			log.Printf("rename list %d failed: %v", id, err)
		}
	}()
}

// Share optimistically marks a list shared with the target and issues the
// share call; the server's reconciled copy replaces the optimistic one on
// success
func (c *Controller) Share(id int64, target string) {
	c.mu.Lock()
	var copyOf ListData
	found := false
	next := cloneLists(c.lists)
	for i := range next {
		if next[i].ID == id {
			next[i].IsShared = true
			next[i].SharedWith = append(next[i].SharedWith, target)
			copyOf = next[i]
			found = true
		}
	}
	if !found {
		c.mu.Unlock()
		return
	}
	c.setListsLocked(next, writeLocalSilent)
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		shared, err := c.remote.Share(context.Background(), copyOf, target)
		if err != nil {
			log.Printf("share list %d with %q failed: %v", id, target, err)
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.mounted {
			return
		}
		next := cloneLists(c.lists)
		for i := range next {
			if next[i].ID == id {
				next[i] = *shared
			}
		}
		c.setListsLocked(next, writeExternal)
	}()
}

// setListsLocked is the single state-write path. Every write updates the
// per-process snapshot and the cache blob; only writes of local origin may
// flow back to the server, which is what keeps hydration from re-sending
// the data it just received.
func (c *Controller) setListsLocked(lists []ListData, origin writeOrigin) {
	c.externalUpdate = origin == writeExternal
	c.lists = lists

	if c.userID != "" {
		snapshot := cloneLists(lists)
		c.snapshots.Set(c.userID, snapshot)
		if blob, err := json.Marshal(snapshot); err == nil {
			if err := c.cache.Set(c.userID, blob); err != nil {
				log.Printf("list cache write for %s failed: %v", c.userID, err)
			}
		}
	}

	if !c.externalUpdate && origin == writeLocal {
		send := cloneLists(lists)
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			if err := c.remote.SaveMany(context.Background(), send); err != nil {
				log.Printf("persisting lists failed: %v", err)
			}
		}()
	}

	c.externalUpdate = false
}
