package worker

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
	"github.com/voke-app/voke_server/internal/pkg/queue"
	"github.com/voke-app/voke_server/internal/repository"
	"github.com/voke-app/voke_server/internal/service"
)

// Processor 浏览事件处理器：去重、累加浏览数、给作者结算分成。
// 同一条消息重复投递是安全的，去重记录和分成流水都有唯一约束兜底。
type Processor struct {
	db        *gorm.DB
	viewRepo  *repository.ViewRepository
	postRepo  *repository.PostRepository
	walletSvc *service.WalletService
}

// NewProcessor 创建浏览事件处理器
func NewProcessor(
	db *gorm.DB,
	viewRepo *repository.ViewRepository,
	postRepo *repository.PostRepository,
	walletSvc *service.WalletService,
) *Processor {
	return &Processor{
		db:        db,
		viewRepo:  viewRepo,
		postRepo:  postRepo,
		walletSvc: walletSvc,
	}
}

// Process 处理一条浏览消息
func (p *Processor) Process(ctx context.Context, msg *queue.ViewMessage) error {
	// 去重插入，首次浏览才累加浏览数
	recorded, err := p.recordView(msg)
	if err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	if recorded {
		if err := p.postRepo.IncrementViewCount(msg.PostID); err != nil {
			return fmt.Errorf("failed to increment view count: %w", err)
		}
	} else {
		// 重复投递：上一次可能在结算前失败，继续走结算，幂等键兜底不会重复入账
		log.Printf("View already counted for post %d viewer %d", msg.PostID, msg.ViewerID)
	}

	// 作者浏览自己的帖子计数但不分成
	if msg.ViewerID == msg.AuthorID {
		return nil
	}

	_, replayed, err := p.walletSvc.CreditView(msg.AuthorID, msg.PostID, msg.ViewerID)
	if err != nil {
		return fmt.Errorf("failed to credit view earnings: %w", err)
	}
	if replayed {
		log.Printf("View earnings already settled for post %d viewer %d", msg.PostID, msg.ViewerID)
	}
	return nil
}

// recordView 写入去重记录，返回是否为首次浏览
func (p *Processor) recordView(msg *queue.ViewMessage) (bool, error) {
	err := p.viewRepo.Create(p.db, &model.ViewEvent{
		PostID:   msg.PostID,
		ViewerID: msg.ViewerID,
	})
	if err != nil {
		if isDuplicateError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
