package models

type ReactionKind string

const (
	ReactionLike  ReactionKind = "like"
	ReactionLove  ReactionKind = "love"
	ReactionLaugh ReactionKind = "laugh"
	ReactionWow   ReactionKind = "wow"
	ReactionAngry ReactionKind = "angry"
	ReactionSad   ReactionKind = "sad"
)

// ReactionKinds lists every accepted kind in display order.
var ReactionKinds = []ReactionKind{
	ReactionLike,
	ReactionLove,
	ReactionLaugh,
	ReactionWow,
	ReactionAngry,
	ReactionSad,
}

func ParseReactionKind(s string) (ReactionKind, error) {
	for _, k := range ReactionKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", NewValidationError("Invalid reaction type")
}

// Reactions maps each kind to the ids of the users holding it. A user id is
// present in at most one of the sets.
type Reactions map[ReactionKind][]int

func NewReactions() Reactions {
	r := make(Reactions, len(ReactionKinds))
	for _, k := range ReactionKinds {
		r[k] = []int{}
	}
	return r
}

// normalize fills in missing kinds so the serialized form always carries all six.
func (r Reactions) normalize() {
	for _, k := range ReactionKinds {
		if r[k] == nil {
			r[k] = []int{}
		}
	}
}

// Set moves userID into kind, dropping any reaction it held before.
func (r Reactions) Set(kind ReactionKind, userID int) {
	for k, ids := range r {
		r[k] = removeID(ids, userID)
	}
	r[kind] = append(r[kind], userID)
}

// Of returns the reaction held by userID, if any.
func (r Reactions) Of(userID int) (ReactionKind, bool) {
	for _, k := range ReactionKinds {
		if containsID(r[k], userID) {
			return k, true
		}
	}
	return "", false
}

func (r Reactions) Counts() map[ReactionKind]int {
	counts := make(map[ReactionKind]int, len(ReactionKinds))
	for _, k := range ReactionKinds {
		counts[k] = len(r[k])
	}
	return counts
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
