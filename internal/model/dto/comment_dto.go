package dto

// CreateCommentRequest 发表评论请求
type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required,max=2000"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// CommentItem 评论项
type CommentItem struct {
	ID        int64          `json:"id"`
	PostID    int64          `json:"post_id"`
	ParentID  *int64         `json:"parent_id,omitempty"`
	Content   string         `json:"content"`
	CreatedAt string         `json:"created_at"`
	Author    *AuthorInfo    `json:"author,omitempty"`
	Replies   []*CommentItem `json:"replies,omitempty"`
}
