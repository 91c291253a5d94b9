package query

import "time"

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// State is what a consumer sees of one query.
//
// IsLoading is true only while no data has ever arrived and a fetch is in
// flight; IsFetching is true for any fetch, including background refreshes.
// Err is the last fetch error; Data survives a failed refresh.
type State[T any] struct {
	Data       T
	HasData    bool
	Status     Status
	IsLoading  bool
	IsFetching bool
	Err        error
	UpdatedAt  time.Time
}

func (s State[T]) IsError() bool {
	return s.Err != nil
}
