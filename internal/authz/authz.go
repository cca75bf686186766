// Package authz holds the single ownership predicate every mutating
// handler goes through. Threads, comments, bookmarks, and collections all
// use the same rule: only the owner may modify.
package authz

import "github.com/google/uuid"

// CanModify reports whether requester owns the entity.
func CanModify(ownerID, requesterID uuid.UUID) bool {
	return requesterID != uuid.Nil && ownerID == requesterID
}

// CanViewDraft reports whether requester may read an unpublished thread.
// Same rule as modification: drafts are author-only.
func CanViewDraft(authorID, requesterID uuid.UUID) bool {
	return CanModify(authorID, requesterID)
}
