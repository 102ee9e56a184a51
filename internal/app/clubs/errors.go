package clubs

import "errors"

var (
	// ErrUnauthorized: the caller is not the root authority.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrClubDoesNotExist: the referenced club key is absent from the registry.
	ErrClubDoesNotExist = errors.New("club does not exist")
	// ErrMemberAlreadyExistsInClub: add attempted for a member already present.
	ErrMemberAlreadyExistsInClub = errors.New("member already exists in club")
	// ErrMemberDoesNotExistInClub: remove attempted for a member not present.
	ErrMemberDoesNotExistInClub = errors.New("member does not exist in club")

	// ErrNotificationFailed wraps a sink failure that happened after the mutation
	// was committed.
	ErrNotificationFailed = errors.New("event notification failed")
)

// Error is an application-layer error that can be mapped to an HTTP response.
// It unwraps to one of the sentinel errors above.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any

	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func errUnauthorized() error {
	return &Error{
		Status:  403,
		Code:    "UNAUTHORIZED",
		Message: "caller is not the root authority",
		Err:     ErrUnauthorized,
	}
}

func errClubDoesNotExist(club string) error {
	return &Error{
		Status:  404,
		Code:    "CLUB_DOES_NOT_EXIST",
		Message: "club does not exist",
		Details: map[string]any{"club": club},
		Err:     ErrClubDoesNotExist,
	}
}

func errMemberAlreadyExists(club, member string) error {
	return &Error{
		Status:  409,
		Code:    "MEMBER_ALREADY_EXISTS_IN_CLUB",
		Message: "member already exists in club",
		Details: map[string]any{"club": club, "member": member},
		Err:     ErrMemberAlreadyExistsInClub,
	}
}

func errMemberDoesNotExist(club, member string) error {
	return &Error{
		Status:  404,
		Code:    "MEMBER_DOES_NOT_EXIST_IN_CLUB",
		Message: "member does not exist in club",
		Details: map[string]any{"club": club, "member": member},
		Err:     ErrMemberDoesNotExistInClub,
	}
}
