package domain

// Origin is the already-authenticated caller of a registry mutation.
//
// The dispatch layer decides whether a caller is the root authority; the registry
// only re-asserts it via IsRoot.
type Origin struct {
	root    bool
	Subject SubjectID
}

// RootOrigin is the designated root authority.
func RootOrigin() Origin { return Origin{root: true} }

// SignedOrigin is an authenticated, non-privileged caller.
func SignedOrigin(subject SubjectID) Origin { return Origin{Subject: subject} }

func (o Origin) IsRoot() bool { return o.root }
