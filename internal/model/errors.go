package model

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a missing or invalid setting detected at startup.
	ErrConfiguration = errors.New("configuration error")
	// ErrDataFetch marks a network or provider failure, or an unusable response.
	ErrDataFetch = errors.New("data fetch error")
	// ErrAlignment marks a join that produced no rows.
	ErrAlignment = errors.New("alignment error")
)

// FetchError describes a failed provider request.
type FetchError struct {
	Source string // "yahoo", "fred", ...
	Series string // ticker or series id
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Source, e.Series, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes every FetchError match ErrDataFetch.
func (e *FetchError) Is(target error) bool { return target == ErrDataFetch }
