package service

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
	"github.com/voke-app/voke_server/internal/model/dto"
	"github.com/voke-app/voke_server/internal/pkg/queue"
	"github.com/voke-app/voke_server/internal/repository"
)

var (
	ErrPostNotFound    = errors.New("帖子不存在")
	ErrNotPostOwner    = errors.New("没有权限操作该帖子")
	ErrAlreadyLiked    = errors.New("已点赞")
	ErrNotLiked        = errors.New("未点赞")
	ErrAlreadyReported = errors.New("已举报过该帖子")
)

type PostService struct {
	postRepo        *repository.PostRepository
	userRepo        *repository.UserRepository
	interactionRepo *repository.InteractionRepository
	followRepo      *repository.FollowRepository
	viewRepo        *repository.ViewRepository
	reportRepo      *repository.ReportRepository
	viewQueue       *queue.Queue
}

func NewPostService(
	postRepo *repository.PostRepository,
	userRepo *repository.UserRepository,
	interactionRepo *repository.InteractionRepository,
	followRepo *repository.FollowRepository,
	viewRepo *repository.ViewRepository,
	reportRepo *repository.ReportRepository,
	viewQueue *queue.Queue,
) *PostService {
	return &PostService{
		postRepo:        postRepo,
		userRepo:        userRepo,
		interactionRepo: interactionRepo,
		followRepo:      followRepo,
		viewRepo:        viewRepo,
		reportRepo:      reportRepo,
		viewQueue:       viewQueue,
	}
}

// Create 发布帖子
func (s *PostService) Create(userID int64, req *dto.CreatePostRequest) (*dto.PostDetail, error) {
	post := &model.Post{
		UserID:      userID,
		Title:       req.Title,
		Content:     req.Content,
		Caption:     req.Caption,
		PromoStatus: model.PromoNone,
	}
	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}
	return s.GetDetail(post.ID, &userID)
}

// Update 更新帖子，仅作者可操作
func (s *PostService) Update(userID, postID int64, req *dto.UpdatePostRequest) (*dto.PostDetail, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrNotPostOwner
	}

	fields := make(map[string]interface{})
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Content != nil {
		fields["content"] = *req.Content
	}
	if req.Caption != nil {
		fields["caption"] = *req.Caption
	}
	if len(fields) > 0 {
		if err := s.postRepo.UpdateFields(postID, fields); err != nil {
			return nil, err
		}
	}

	return s.GetDetail(postID, &userID)
}

// Delete 删除帖子，作者或管理员可操作
func (s *PostService) Delete(userID, postID int64, isAdmin bool) error {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if post.UserID != userID && !isAdmin {
		return ErrNotPostOwner
	}
	return s.postRepo.Delete(postID)
}

// ListFeed 信息流，推广帖置顶
func (s *PostService) ListFeed(req *dto.FeedListRequest) ([]*dto.PostItem, int64, error) {
	posts, total, err := s.postRepo.List(req.Page, req.PageSize, req.Sort, req.UserID)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	items := make([]*dto.PostItem, len(posts))
	for i, p := range posts {
		items[i] = buildPostItem(p, now)
	}
	return items, total, nil
}

// GetDetail 帖子详情，登录用户附带互动状态
func (s *PostService) GetDetail(postID int64, viewerID *int64) (*dto.PostDetail, error) {
	post, err := s.postRepo.GetByIDWithUser(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	now := time.Now()
	detail := &dto.PostDetail{
		ID:           post.ID,
		Title:        post.Title,
		Content:      post.Content,
		Caption:      post.Caption,
		LikeCount:    post.LikeCount,
		CommentCount: post.CommentCount,
		ShareCount:   post.ShareCount,
		GiftTotal:    post.GiftTotal,
		ViewCount:    post.ViewCount,
		PromoStatus:  post.PromoStatus,
		CreatedAt:    post.CreatedAt.Format(time.RFC3339),
		Author:       buildAuthorInfo(post.User),
	}
	if post.IsSpotlighted(now) {
		detail.IsSpotlighted = true
		detail.PromotedUntil = post.PromotedUntil.Format(time.RFC3339)
	}

	stats, err := s.postRepo.GetGiftStats(postID)
	if err != nil {
		return nil, err
	}
	detail.GiftStats = make([]*dto.GiftStatItem, len(stats))
	for i, st := range stats {
		detail.GiftStats[i] = &dto.GiftStatItem{Name: st.GiftName, Icon: st.Icon, Count: st.Count}
	}

	if viewerID != nil {
		detail.UserInteraction = &dto.UserInteraction{}
		interactions, _ := s.interactionRepo.GetByUserAndPost(*viewerID, postID)
		for _, it := range interactions {
			switch it.Type {
			case model.InteractionLike:
				detail.UserInteraction.Liked = true
			case model.InteractionBookmark:
				detail.UserInteraction.Bookmarked = true
			}
		}
		if *viewerID != post.UserID {
			detail.UserInteraction.Following, _ = s.followRepo.Exists(*viewerID, post.UserID)
		}
	}

	return detail, nil
}

// Like 点赞
func (s *PostService) Like(userID, postID int64) (*dto.LikeResponse, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	exists, err := s.interactionRepo.Exists(userID, postID, model.InteractionLike)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyLiked
	}

	if err := s.interactionRepo.Create(&model.Interaction{
		UserID: userID,
		PostID: postID,
		Type:   model.InteractionLike,
	}); err != nil {
		return nil, err
	}
	if err := s.postRepo.IncrementLikeCount(postID, 1); err != nil {
		return nil, err
	}

	return &dto.LikeResponse{Liked: true, LikeCount: post.LikeCount + 1}, nil
}

// Unlike 取消点赞
func (s *PostService) Unlike(userID, postID int64) (*dto.LikeResponse, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	exists, err := s.interactionRepo.Exists(userID, postID, model.InteractionLike)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotLiked
	}

	if err := s.interactionRepo.Delete(userID, postID, model.InteractionLike); err != nil {
		return nil, err
	}
	if err := s.postRepo.IncrementLikeCount(postID, -1); err != nil {
		return nil, err
	}

	count := post.LikeCount - 1
	if count < 0 {
		count = 0
	}
	return &dto.LikeResponse{Liked: false, LikeCount: count}, nil
}

// Bookmark 收藏（重复收藏直接返回当前状态）
func (s *PostService) Bookmark(userID, postID int64) (*dto.BookmarkResponse, error) {
	if _, err := s.postRepo.GetByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	exists, err := s.interactionRepo.Exists(userID, postID, model.InteractionBookmark)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := s.interactionRepo.Create(&model.Interaction{
			UserID: userID,
			PostID: postID,
			Type:   model.InteractionBookmark,
		}); err != nil {
			return nil, err
		}
	}
	return &dto.BookmarkResponse{Bookmarked: true}, nil
}

// Unbookmark 取消收藏
func (s *PostService) Unbookmark(userID, postID int64) (*dto.BookmarkResponse, error) {
	if err := s.interactionRepo.Delete(userID, postID, model.InteractionBookmark); err != nil {
		return nil, err
	}
	return &dto.BookmarkResponse{Bookmarked: false}, nil
}

// ListBookmarked 收藏列表
func (s *PostService) ListBookmarked(userID int64, page, pageSize int) ([]*dto.PostItem, int64, error) {
	ids, total, err := s.interactionRepo.GetUserPostIDs(userID, model.InteractionBookmark, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	posts, err := s.postRepo.GetByIDs(ids)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[int64]*model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	now := time.Now()
	items := make([]*dto.PostItem, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			items = append(items, buildPostItem(p, now))
		}
	}
	return items, total, nil
}

// Share 分享计数
func (s *PostService) Share(postID int64) (*dto.ShareResponse, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if err := s.postRepo.IncrementShareCount(postID); err != nil {
		return nil, err
	}
	return &dto.ShareResponse{ShareCount: post.ShareCount + 1}, nil
}

// RecordView 上报浏览。去重与分成结算由 worker 异步完成，
// 已计费的浏览不再入队。
func (s *PostService) RecordView(ctx context.Context, viewerID, postID int64) (*dto.ViewResponse, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	seen, err := s.viewRepo.Exists(postID, viewerID)
	if err != nil {
		return nil, err
	}
	if seen {
		return &dto.ViewResponse{Queued: false}, nil
	}

	if err := s.viewQueue.Push(ctx, &queue.ViewMessage{
		PostID:   postID,
		AuthorID: post.UserID,
		ViewerID: viewerID,
	}); err != nil {
		log.Printf("Failed to enqueue view event: %v", err)
		return nil, err
	}
	return &dto.ViewResponse{Queued: true}, nil
}

// Report 举报帖子
func (s *PostService) Report(userID, postID int64, reason string) error {
	if _, err := s.postRepo.GetByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	exists, err := s.reportRepo.ExistsByReporter(postID, userID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyReported
	}

	return s.reportRepo.Create(&model.Report{
		PostID:     postID,
		ReporterID: userID,
		Reason:     reason,
		Status:     "pending",
	})
}

func buildPostItem(p *model.Post, now time.Time) *dto.PostItem {
	item := &dto.PostItem{
		ID:           p.ID,
		Title:        p.Title,
		Caption:      p.Caption,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		ShareCount:   p.ShareCount,
		GiftTotal:    p.GiftTotal,
		ViewCount:    p.ViewCount,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		Author:       buildAuthorInfo(p.User),
	}
	if p.IsSpotlighted(now) {
		item.IsSpotlighted = true
		item.PromotedUntil = p.PromotedUntil.Format(time.RFC3339)
	}
	return item
}

func buildAuthorInfo(u *model.User) *dto.AuthorInfo {
	if u == nil {
		return nil
	}
	return &dto.AuthorInfo{
		ID:            u.ID,
		Username:      u.Username,
		Name:          u.Name,
		AvatarURL:     u.AvatarURL,
		Bio:           u.Bio,
		FollowerCount: u.FollowerCount,
	}
}
