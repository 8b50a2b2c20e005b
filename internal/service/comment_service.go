package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
	"github.com/voke-app/voke_server/internal/model/dto"
	"github.com/voke-app/voke_server/internal/repository"
)

var (
	ErrCommentNotFound  = errors.New("评论不存在")
	ErrNotCommentOwner  = errors.New("没有权限删除该评论")
	ErrInvalidParent    = errors.New("回复的评论不存在")
	ErrParentMismatched = errors.New("回复的评论不属于该帖子")
)

type CommentService struct {
	commentRepo *repository.CommentRepository
	postRepo    *repository.PostRepository
}

func NewCommentService(commentRepo *repository.CommentRepository, postRepo *repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// Create 发表评论或回复
func (s *CommentService) Create(userID, postID int64, req *dto.CreateCommentRequest) (*dto.CommentItem, error) {
	if _, err := s.postRepo.GetByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidParent
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, ErrParentMismatched
		}
		// 只允许两级，回复的回复挂到顶层评论下
		if parent.ParentID != nil {
			req.ParentID = parent.ParentID
		}
	}

	comment := &model.Comment{
		UserID:   userID,
		PostID:   postID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}
	if err := s.postRepo.IncrementCommentCount(postID, 1); err != nil {
		return nil, err
	}

	created, err := s.commentRepo.GetByID(comment.ID)
	if err != nil {
		return nil, err
	}
	return buildCommentItem(created), nil
}

// Delete 删除评论，评论作者、帖子作者或管理员可操作
func (s *CommentService) Delete(userID, commentID int64, isAdmin bool) error {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if comment.UserID != userID && !isAdmin {
		post, err := s.postRepo.GetByID(comment.PostID)
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return ErrNotCommentOwner
		}
	}

	// 连同回复一起删除，计数按实际删除数量回扣
	removed := 1
	if comment.ParentID == nil {
		replyCount, err := s.commentRepo.CountReplies(commentID)
		if err != nil {
			return err
		}
		removed += int(replyCount)
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		return err
	}
	return s.postRepo.IncrementCommentCount(comment.PostID, -removed)
}

// List 获取帖子评论
func (s *CommentService) List(postID int64, page, pageSize int) ([]*dto.CommentItem, int64, error) {
	if _, err := s.postRepo.GetByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrPostNotFound
		}
		return nil, 0, err
	}

	comments, total, err := s.commentRepo.ListByPostID(postID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.CommentItem, len(comments))
	for i, c := range comments {
		items[i] = buildCommentItem(c)
	}
	return items, total, nil
}

func buildCommentItem(c *model.Comment) *dto.CommentItem {
	item := &dto.CommentItem{
		ID:        c.ID,
		PostID:    c.PostID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		Author:    buildAuthorInfo(c.User),
	}
	for _, reply := range c.Replies {
		item.Replies = append(item.Replies, buildCommentItem(reply))
	}
	return item
}
