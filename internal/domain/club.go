package domain

import "time"

// Club is a read model of one registry entry.
type Club struct {
	ID      ClubID
	Members []AccountID
}

// ContainsMember reports whether id appears in members.
func ContainsMember(members []AccountID, id AccountID) bool {
	return IndexOfMember(members, id) >= 0
}

// IndexOfMember returns the position of id in members, or -1.
func IndexOfMember(members []AccountID, id AccountID) int {
	for i, m := range members {
		if m == id {
			return i
		}
	}
	return -1
}

// CloneMembers returns a copy that does not alias ms. A nil input yields an empty,
// non-nil slice so "club with zero members" never looks like "no club".
func CloneMembers(ms []AccountID) []AccountID {
	out := make([]AccountID, len(ms))
	copy(out, ms)
	return out
}

type EventKind string

const (
	EventMemberAdded   EventKind = "MemberAdded"
	EventMemberRemoved EventKind = "MemberRemoved"
)

// Event is the notification emitted for every successful registry mutation.
type Event struct {
	ID         string
	Kind       EventKind
	Club       ClubID
	Member     AccountID
	OccurredAt time.Time
}

// GenesisClub is one bootstrap entry.
type GenesisClub struct {
	Club    ClubID
	Members []AccountID
}

// Genesis is the initial club->members mapping supplied once at start-up.
// A nil or empty Genesis means the registry starts empty.
type Genesis struct {
	Clubs []GenesisClub
}
