package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Key addresses one stored IDS: an occurrence of a named IDS inside a
// data entry (a pulse, a shot, a simulation run).
type Key struct {
	Entry      string
	IDS        string
	Occurrence int
}

// String renders the key as "entry/ids/occurrence". Entry may contain
// slashes; IDS may not.
func (k Key) String() string {
	return k.Entry + "/" + k.IDS + "/" + strconv.Itoa(k.Occurrence)
}

func (k Key) validate() error {
	switch {
	case k.Entry == "":
		return fmt.Errorf("%w: empty entry", ErrInvalidKey)
	case k.IDS == "", strings.ContainsRune(k.IDS, '/'):
		return fmt.Errorf("%w: ids name %q", ErrInvalidKey, k.IDS)
	case k.Occurrence < 0:
		return fmt.Errorf("%w: negative occurrence %d", ErrInvalidKey, k.Occurrence)
	}
	return nil
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, error) {
	i := strings.LastIndexByte(s, '/')
	if i < 0 {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	occ, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return Key{}, fmt.Errorf("%w: occurrence in %q: %v", ErrInvalidKey, s, err)
	}
	rest := s[:i]
	j := strings.LastIndexByte(rest, '/')
	if j < 0 {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	k := Key{Entry: rest[:j], IDS: rest[j+1:], Occurrence: occ}
	if err := k.validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}
