package article

import (
	"errors"
	"slices"

	"github.com/penlight/blog-api-core/internal/article/entity"
)

// ErrInvalidStatus rejects a status filter that carries no usable value.
var ErrInvalidStatus = errors.New(`status must be either "published" or "draft"`)

// ListQuery is the store-level predicate a listing request resolves to.
// Soft-deleted articles are always excluded on top of it.
type ListQuery struct {
	// Author restricts results to this author id when non-empty.
	Author string
	// Statuses are visible for any author.
	Statuses []string
	// DraftAuthor, when non-empty, additionally admits this author's own
	// drafts (union with Statuses).
	DraftAuthor string
}

// BuildListQuery turns a listing request into a store predicate, applying
// the caller-dependent visibility rules. It reports empty=true when the
// request can only ever match nothing, in which case the store must not be
// queried at all. Unknown status values are dropped; a filter left with no
// valid value is rejected.
func BuildListQuery(callerID string, statuses []string, author string) (q ListQuery, empty bool, err error) {
	q = ListQuery{Author: author}

	var requested []string
	for _, s := range statuses {
		if s == entity.StatusDraft || s == entity.StatusPublished {
			requested = append(requested, s)
		}
	}
	if len(statuses) > 0 && len(requested) == 0 {
		return q, false, ErrInvalidStatus
	}

	if callerID == "" {
		if len(requested) == 0 {
			q.Statuses = []string{entity.StatusPublished}
			return q, false, nil
		}
		allowed := withoutDraft(requested)
		if len(allowed) == 0 {
			// only drafts requested by an anonymous caller
			return q, true, nil
		}
		q.Statuses = allowed
		return q, false, nil
	}

	if len(requested) == 0 {
		// published from anyone; the caller's own drafts are not merged
		// into the default listing
		q.Statuses = []string{entity.StatusPublished}
		return q, false, nil
	}
	if slices.Contains(requested, entity.StatusDraft) {
		q.DraftAuthor = callerID
		q.Statuses = withoutDraft(requested)
		return q, false, nil
	}
	q.Statuses = requested
	return q, false, nil
}

func withoutDraft(statuses []string) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		if s != entity.StatusDraft {
			out = append(out, s)
		}
	}
	return out
}
