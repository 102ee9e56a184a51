package domain

// SubjectID is the authenticated subject extracted from JWT claims (typically "sub").
// We model it as an opaque identifier: its format is controlled by the IdP.
type SubjectID string

// ClubID identifies a club. It is an opaque byte string: no length or charset rules
// apply, and two IDs are the same club iff their bytes are equal.
type ClubID string

// ClubIDFromBytes copies b into a ClubID.
func ClubIDFromBytes(b []byte) ClubID { return ClubID(b) }

// Bytes returns a fresh copy of the identifier bytes.
func (c ClubID) Bytes() []byte { return []byte(c) }

// AccountID identifies a member account. Only equality is meaningful.
type AccountID string
