package election

import "github.com/ethereum/go-ethereum/common"

// WhitelistEntry is one tracked identity with its current membership flag.
// Identities stay tracked after removal or wholesale replacement, so
// enumeration keeps the insertion order of every identity ever added.
type WhitelistEntry struct {
	Identity common.Address `json:"identity" bson:"identity"`
	Active   bool           `json:"active" bson:"active"`
}

// SetWhitelist replaces the whole whitelist, never merges. Identities
// missing from the new list keep their roster slot with membership off.
// Duplicate identities in the list count once. Only the administrator may
// call it, only while the election is inactive, and the list cannot be
// empty or contain the zero address.
func (e *Election) SetWhitelist(caller common.Address, identities []common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller.Cmp(e.admin) != 0 {
		return ErrNotAdministrator
	}
	if e.active {
		return ErrElectionActive
	}
	if len(identities) == 0 {
		return ErrEmptyWhitelist
	}
	for _, identity := range identities {
		if identity.Cmp(common.Address{}) == 0 {
			return ErrInvalidIdentity
		}
	}
	now := e.clock()
	prev := make(map[common.Address]bool, len(e.members))
	for identity, active := range e.members {
		prev[identity] = active
		e.members[identity] = false
	}
	count := 0
	var added []*Event
	for _, identity := range identities {
		if e.members[identity] {
			// duplicate within the new list
			continue
		}
		if _, tracked := prev[identity]; !tracked {
			e.roster = append(e.roster, identity)
		}
		e.members[identity] = true
		count++
		if !prev[identity] {
			identity := identity
			added = append(added, &Event{
				Kind:      EventWhitelistAdded,
				Timestamp: now,
				Epoch:     e.epoch,
				Identity:  &identity,
			})
		}
	}
	events := append([]*Event{{
		Kind:      EventWhitelistSet,
		Timestamp: now,
		Epoch:     e.epoch,
		Count:     count,
	}}, added...)
	e.commit(events...)
	return nil
}

// AddToWhitelist flips identity's membership on, tracking it at the end of
// the roster if it was never seen before. Adding an identity that is already
// a member succeeds without emitting anything. Only the administrator may
// call it, and only while the election is inactive.
func (e *Election) AddToWhitelist(caller, identity common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller.Cmp(e.admin) != 0 {
		return ErrNotAdministrator
	}
	if e.active {
		return ErrElectionActive
	}
	if identity.Cmp(common.Address{}) == 0 {
		return ErrInvalidIdentity
	}
	if e.members[identity] {
		// idempotent
		return nil
	}
	if _, tracked := e.members[identity]; !tracked {
		e.roster = append(e.roster, identity)
	}
	e.members[identity] = true
	e.commit(&Event{
		Kind:      EventWhitelistAdded,
		Timestamp: e.clock(),
		Epoch:     e.epoch,
		Identity:  &identity,
	})
	return nil
}

// RemoveFromWhitelist flips identity's membership off, keeping it tracked
// for enumeration. It fails if identity is not currently a member. Only the
// administrator may call it, and only while the election is inactive.
func (e *Election) RemoveFromWhitelist(caller, identity common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller.Cmp(e.admin) != 0 {
		return ErrNotAdministrator
	}
	if e.active {
		return ErrElectionActive
	}
	if !e.members[identity] {
		return ErrNotWhitelisted
	}
	e.members[identity] = false
	e.commit(&Event{
		Kind:      EventWhitelistRemoved,
		Timestamp: e.clock(),
		Epoch:     e.epoch,
		Identity:  &identity,
	})
	return nil
}

// IsWhitelisted reports whether identity is currently a member.
func (e *Election) IsWhitelisted(identity common.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.members[identity]
}

// WhitelistCount returns the number of tracked identities, including those
// whose membership is currently off.
func (e *Election) WhitelistCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.roster)
}

// MemberCount returns the number of identities with membership currently on.
func (e *Election) MemberCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.memberCount()
}

// WhitelistEntry returns the tracked identity at index, in insertion order,
// with its current membership flag.
func (e *Election) WhitelistEntry(index int) (WhitelistEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if index < 0 || index >= len(e.roster) {
		return WhitelistEntry{}, ErrWhitelistIndexOutOfRange
	}
	identity := e.roster[index]
	return WhitelistEntry{Identity: identity, Active: e.members[identity]}, nil
}

// Whitelist returns every tracked identity in insertion order with its
// current membership flag.
func (e *Election) Whitelist() []WhitelistEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entries := make([]WhitelistEntry, len(e.roster))
	for i, identity := range e.roster {
		entries[i] = WhitelistEntry{Identity: identity, Active: e.members[identity]}
	}
	return entries
}

// memberCount returns the number of identities with membership currently on.
// The caller must hold the lock.
func (e *Election) memberCount() int {
	count := 0
	for _, active := range e.members {
		if active {
			count++
		}
	}
	return count
}
