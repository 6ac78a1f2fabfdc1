package service

import "daoapi/internal/model"

// CanSeeComment reports whether viewerID may read c: public comments are open to everyone,
// private ones only to their author and the mentioned user.
func CanSeeComment(c model.Comment, viewerID int64) bool {
	if c.IsPublic || c.AuthorID == viewerID {
		return true
	}
	return c.MentionedUserID != nil && *c.MentionedUserID == viewerID
}

// FilterVisibleComments keeps the comments viewerID may read, in their original order.
func FilterVisibleComments(comments []model.Comment, viewerID int64) []model.Comment {
	out := make([]model.Comment, 0, len(comments))
	for _, c := range comments {
		if CanSeeComment(c, viewerID) {
			out = append(out, c)
		}
	}
	return out
}
