// Package identity derives the canonical identity of a user pair.
//
// A Room is keyed by the unordered pair of its participants, so the id is a
// pure function of the two user ids: sort them ascending and join them with
// Separator. Uniqueness of a Room per pair is therefore structural and needs
// no lock. Nicknames follow the same rule over usernames and drift when a
// participant renames; ids never do.
package identity

// Separator joins the two halves of a canonical pair.
const Separator = "_"

// Room is the minimal view of a room needed to resolve its participants.
type Room interface {
	Participants() (string, string)
}

// Canonical returns a and b in ascending lexicographic order.
func Canonical(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// RoomID returns the order-independent room identifier for users a and b.
// It is empty when either id is empty.
func RoomID(a, b string) string {
	if a == "" || b == "" {
		return ""
	}
	first, second := Canonical(a, b)
	return first + Separator + second
}

// RoomNickname returns the display label for a room of users named a and b.
func RoomNickname(nameA, nameB string) string {
	first, second := Canonical(nameA, nameB)
	return first + Separator + second
}

// ValidPair reports whether a and b can form a room: both non-empty and
// distinct.
func ValidPair(a, b string) bool {
	return a != "" && b != "" && a != b
}

// Counterpart returns the participant of r that is not currentUserID.
// ok is false when currentUserID occupies neither slot.
func Counterpart(r Room, currentUserID string) (string, bool) {
	u1, u2 := r.Participants()
	switch currentUserID {
	case u1:
		return u2, true
	case u2:
		return u1, true
	default:
		return "", false
	}
}
