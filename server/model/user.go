package model

type UserID string

func (u UserID) String() string {
	return string(u)
}

// Actor is the authenticated caller of an engine operation.
type Actor struct {
	UserID UserID `json:"user_id"`
	Admin  bool   `json:"admin"`
}
