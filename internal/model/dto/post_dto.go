package dto

// CreatePostRequest 发布帖子请求
type CreatePostRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
	Caption string `json:"caption" binding:"max=500"`
}

// UpdatePostRequest 更新帖子请求
type UpdatePostRequest struct {
	Title   *string `json:"title,omitempty" binding:"omitempty,max=200"`
	Content *string `json:"content,omitempty"`
	Caption *string `json:"caption,omitempty" binding:"omitempty,max=500"`
}

// FeedListRequest 信息流列表请求参数
type FeedListRequest struct {
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
	Sort     string `form:"sort,default=latest"` // latest, hot
	UserID   int64  `form:"user_id"`             // 按作者过滤
}

// AuthorInfo 作者信息
type AuthorInfo struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Name          string `json:"name"`
	AvatarURL     string `json:"avatar_url"`
	Bio           string `json:"bio,omitempty"`
	FollowerCount int    `json:"follower_count"`
}

// GiftStatItem 单个礼物统计
type GiftStatItem struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Count int    `json:"count"`
}

// PostItem 帖子列表项
type PostItem struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Caption       string      `json:"caption"`
	LikeCount     int         `json:"like_count"`
	CommentCount  int         `json:"comment_count"`
	ShareCount    int         `json:"share_count"`
	GiftTotal     float64     `json:"gift_total"`
	ViewCount     int         `json:"view_count"`
	IsSpotlighted bool        `json:"is_spotlighted"`
	PromotedUntil string      `json:"promoted_until,omitempty"`
	CreatedAt     string      `json:"created_at"`
	Author        *AuthorInfo `json:"author,omitempty"`
}

// PostDetail 帖子详情
type PostDetail struct {
	ID              int64            `json:"id"`
	Title           string           `json:"title"`
	Content         string           `json:"content"`
	Caption         string           `json:"caption"`
	LikeCount       int              `json:"like_count"`
	CommentCount    int              `json:"comment_count"`
	ShareCount      int              `json:"share_count"`
	GiftTotal       float64          `json:"gift_total"`
	ViewCount       int              `json:"view_count"`
	PromoStatus     string           `json:"promo_status"`
	IsSpotlighted   bool             `json:"is_spotlighted"`
	PromotedUntil   string           `json:"promoted_until,omitempty"`
	GiftStats       []*GiftStatItem  `json:"gift_stats"`
	CreatedAt       string           `json:"created_at"`
	Author          *AuthorInfo      `json:"author,omitempty"`
	UserInteraction *UserInteraction `json:"user_interaction,omitempty"`
}

// UserInteraction 当前用户对帖子的互动状态
type UserInteraction struct {
	Liked      bool `json:"liked"`
	Bookmarked bool `json:"bookmarked"`
	Following  bool `json:"following"`
}

// LikeResponse 点赞响应
type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// BookmarkResponse 收藏响应
type BookmarkResponse struct {
	Bookmarked bool `json:"bookmarked"`
}

// FollowResponse 关注响应
type FollowResponse struct {
	Following     bool `json:"following"`
	FollowerCount int  `json:"follower_count"`
}

// ShareResponse 分享响应
type ShareResponse struct {
	ShareCount int `json:"share_count"`
}

// ViewResponse 浏览上报响应
type ViewResponse struct {
	Queued bool `json:"queued"`
}

// ReportPostRequest 举报请求
type ReportPostRequest struct {
	Reason string `json:"reason" binding:"required,max=200"`
}
