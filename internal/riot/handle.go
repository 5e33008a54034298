package riot

import (
	"errors"
	"strings"
)

// HandleSeparator splits the game name from the tag line in a Riot ID.
const HandleSeparator = "#"

// ErrInvalidHandle is returned for a handle that is not of the form Name#Tag.
var ErrInvalidHandle = errors.New("riot: handle must be Name#Tag")

// Handle is a parsed Riot ID.
type Handle struct {
	Name string
	Tag  string
}

// ParseHandle splits a Riot ID on its single separator. Both halves must be
// non-empty after trimming.
func ParseHandle(raw string) (Handle, error) {
	if strings.Count(raw, HandleSeparator) != 1 {
		return Handle{}, ErrInvalidHandle
	}
	name, tag, _ := strings.Cut(raw, HandleSeparator)
	name, tag = strings.TrimSpace(name), strings.TrimSpace(tag)
	if name == "" || tag == "" {
		return Handle{}, ErrInvalidHandle
	}
	return Handle{Name: name, Tag: tag}, nil
}

// String renders the handle as Name#Tag.
func (h Handle) String() string {
	return h.Name + HandleSeparator + h.Tag
}

// Normalized is the case-folded form used as a lookup key. Riot IDs are
// case-insensitive.
func (h Handle) Normalized() string {
	return strings.ToLower(h.String())
}
