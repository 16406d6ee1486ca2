package schedule

import (
	"errors"
	"strconv"
	"strings"

	"github.com/javiermolinar/mellow/internal/sleep"
)

const idPrefix = "scheduled_"

// ErrInvalidKey is returned by ParseKey for IDs it did not produce.
var ErrInvalidKey = errors.New("not a scheduled entry id")

// Key identifies a projected slot. Two projections of the same slot share a
// key, and therefore an ID.
type Key struct {
	Kind    Kind
	Ordinal int
	Start   int64 // unix seconds
}

// KeyOf returns the key of s.
func KeyOf(s Scheduled) Key {
	return Key{Kind: s.Kind, Ordinal: s.Ordinal, Start: s.Start.Unix()}
}

// ID renders the key as "scheduled_nap2_1704186900" or
// "scheduled_night_1704225600".
func (k Key) ID() string {
	var b strings.Builder
	b.WriteString(idPrefix)
	b.WriteString(string(k.Kind))
	if k.Kind == KindNap {
		b.WriteString(strconv.Itoa(k.Ordinal))
	}
	b.WriteByte('_')
	b.WriteString(strconv.FormatInt(k.Start, 10))
	return b.String()
}

// ParseKey reverses Key.ID.
func ParseKey(id string) (Key, error) {
	rest, ok := strings.CutPrefix(id, idPrefix)
	if !ok {
		return Key{}, ErrInvalidKey
	}
	slot, epoch, ok := strings.Cut(rest, "_")
	if !ok {
		return Key{}, ErrInvalidKey
	}
	start, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return Key{}, ErrInvalidKey
	}
	switch {
	case slot == string(KindNight):
		return Key{Kind: KindNight, Start: start}, nil
	case strings.HasPrefix(slot, string(KindNap)):
		n, err := strconv.Atoi(strings.TrimPrefix(slot, string(KindNap)))
		if err != nil || n < 1 {
			return Key{}, ErrInvalidKey
		}
		return Key{Kind: KindNap, Ordinal: n, Start: start}, nil
	default:
		return Key{}, ErrInvalidKey
	}
}

// IsScheduledID reports whether id was produced by Key.ID.
func IsScheduledID(id string) bool {
	_, err := ParseKey(id)
	return err == nil
}

// Entry converts s to a scheduled timeline entry.
func (s Scheduled) Entry() sleep.Entry {
	typ := sleep.TypeNap
	if s.Kind == KindNight {
		typ = sleep.TypeNighttime
	}
	end := s.End
	return sleep.Entry{
		ID:          KeyOf(s).ID(),
		Start:       s.Start,
		End:         &end,
		Type:        typ,
		IsScheduled: true,
	}
}
