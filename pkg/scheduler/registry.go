package scheduler

import "time"

// registry holds per-user ordered upload lists and per-group
// accounting (spec.md §3's Registry state). All of its methods assume
// the caller already holds the scheduler's mutex; registry itself has
// no locking of its own, mirroring spec.md §4.1's "all Registry
// mutations happen under the scheduler's single mutex".
type registry struct {
	uploads map[string][]*Upload
	groups  map[string]*group

	maxSlots int

	lastOptionsHash uint64
	lastGlobalSlots int
	haveLastOptions bool
}

func newRegistry() *registry {
	return &registry{
		uploads: make(map[string][]*Upload),
		groups:  make(map[string]*group),
	}
}

// add appends a new Upload to username's list, creating the list on
// demand. Duplicate filenames for the same user are permitted — they
// are distinct queue entries (spec.md §4.1).
func (r *registry) add(username, filename string, now func() time.Time) *Upload {
	u := &Upload{
		Username:   username,
		Filename:   filename,
		EnqueuedAt: now(),
		completion: newCompletion(),
	}
	r.uploads[username] = append(r.uploads[username], u)
	return u
}

// find returns the first matching Upload in enqueue order, or nil.
func (r *registry) find(username, filename string) *Upload {
	for _, u := range r.uploads[username] {
		if u.Filename == filename {
			return u
		}
	}
	return nil
}

// remove deletes u from its user's list, purging the user's entry
// entirely once the list is empty.
func (r *registry) remove(u *Upload) {
	list := r.uploads[u.Username]
	for i, candidate := range list {
		if candidate == u {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.uploads, u.Username)
	} else {
		r.uploads[u.Username] = list
	}
}

// usedSlotsTotal sums used_slots across every group, for invariant I1
// checks in tests and the Admission Loop's saturation check.
func (r *registry) usedSlotsTotal() int {
	total := 0
	for _, g := range r.groups {
		total += g.usedSlots
	}
	return total
}
