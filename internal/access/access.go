// Package access builds the visibility predicates injected into the search
// engine and the document listing. Authorization itself (who the caller is,
// what role they hold) is an external collaborator; this package only turns
// an already-established identity into a filter.
package access

import (
	"github.com/docuvault/docuvault/internal/models"
)

// Identity is the caller as established by the external auth layer.
type Identity struct {
	UserID     string
	Role       string
	Privileged bool
}

// Filter decides whether a document is visible to a caller.
type Filter func(doc models.Document) bool

// ForIdentity returns the role-based filter: a document is visible when its
// category matches the caller's role, when it is still Unknown (not yet
// classified), or when the caller is privileged.
func ForIdentity(id Identity) Filter {
	return func(doc models.Document) bool {
		if id.Privileged {
			return true
		}
		return doc.Category == id.Role || doc.Category == models.CategoryUnknown
	}
}

// AllowAll is the filter for internal callers that bypass visibility rules.
func AllowAll() Filter {
	return func(models.Document) bool { return true }
}
