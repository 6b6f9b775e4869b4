package service

import (
	"github.com/spec-kit/forum-service/internal/access"
	"github.com/spec-kit/forum-service/internal/domain"
)

// CommentNode is a comment with its direct replies.
type CommentNode struct {
	domain.Comment
	CanDelete bool           `json:"canDelete"`
	Replies   []*CommentNode `json:"replies"`
}

// BuildCommentTree threads a flat comment list. Replies keep input order under
// their parent; comments whose parent is missing, or whose parent chain loops
// back to them, become roots.
func BuildCommentTree(viewer *domain.Viewer, comments []domain.Comment) []*CommentNode {
	roots := make([]*CommentNode, 0)
	if len(comments) == 0 {
		return roots
	}

	nodes := make(map[string]*CommentNode, len(comments))
	parents := make(map[string]string, len(comments))
	ordered := make([]*CommentNode, 0, len(comments))
	for _, comment := range comments {
		if _, dup := nodes[comment.ID]; dup && comment.ID != "" {
			continue
		}
		node := &CommentNode{
			Comment:   comment,
			CanDelete: access.CanDeleteComment(viewer, comment),
			Replies:   make([]*CommentNode, 0),
		}
		if comment.ID != "" {
			nodes[comment.ID] = node
			if comment.ParentID != nil {
				parents[comment.ID] = *comment.ParentID
			}
		}
		ordered = append(ordered, node)
	}

	for _, node := range ordered {
		parentID, ok := parents[node.ID]
		parent := nodes[parentID]
		if !ok || parent == nil || loopsBack(node.ID, parentID, parents, len(ordered)) {
			roots = append(roots, node)
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}
	return roots
}

func loopsBack(id, parentID string, parents map[string]string, limit int) bool {
	cur := parentID
	for i := 0; i <= limit; i++ {
		if cur == id {
			return true
		}
		next, ok := parents[cur]
		if !ok {
			return false
		}
		cur = next
	}
	return false
}
