package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model/dto"
	"github.com/voke-app/voke_server/internal/pkg/oss"
	"github.com/voke-app/voke_server/internal/repository"
)

var (
	ErrAlreadyFollowing = errors.New("已关注该用户")
	ErrNotFollowing     = errors.New("未关注该用户")
	ErrFollowSelf       = errors.New("不能关注自己")
)

type UserService struct {
	userRepo   *repository.UserRepository
	followRepo *repository.FollowRepository
	ossClient  *oss.Client
}

func NewUserService(userRepo *repository.UserRepository, followRepo *repository.FollowRepository, ossClient *oss.Client) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		ossClient:  ossClient,
	}
}

// GetProfile 获取当前用户信息
func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return BuildUserInfo(user), nil
}

// GetPublicProfile 获取他人主页信息，隐藏邮箱等私密字段
func (s *UserService) GetPublicProfile(userID int64, viewerID *int64) (*dto.UserInfo, bool, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, err
	}

	info := BuildUserInfo(user)
	info.Email = ""
	info.Balance = 0
	info.EmailVerified = false

	following := false
	if viewerID != nil && *viewerID != userID {
		following, _ = s.followRepo.Exists(*viewerID, userID)
	}
	return info, following, nil
}

// UpdateProfile 更新个人资料
func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.WaNumber != nil {
		fields["wa_number"] = *req.WaNumber
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(userID, fields); err != nil {
			return nil, err
		}
	}

	return s.GetProfile(userID)
}

// UploadAvatar 上传头像并更新用户记录
func (s *UserService) UploadAvatar(userID int64, data []byte, ext string) (string, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	url, err := s.ossClient.UploadAvatar(userID, data, ext)
	if err != nil {
		return "", err
	}

	// 删除旧头像，失败不影响主流程
	if user.AvatarURL != "" {
		oldKey := s.ossClient.ExtractObjectKey(user.AvatarURL)
		_ = s.ossClient.Delete(oldKey)
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"avatar_url": url}); err != nil {
		return "", err
	}
	return url, nil
}

// Follow 关注用户
func (s *UserService) Follow(followerID, followeeID int64) error {
	if followerID == followeeID {
		return ErrFollowSelf
	}

	if _, err := s.userRepo.GetByID(followeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	exists, err := s.followRepo.Exists(followerID, followeeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyFollowing
	}

	return s.followRepo.Create(followerID, followeeID)
}

// Unfollow 取消关注
func (s *UserService) Unfollow(followerID, followeeID int64) error {
	exists, err := s.followRepo.Exists(followerID, followeeID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFollowing
	}

	return s.followRepo.Delete(followerID, followeeID)
}

// ListFollowing 关注列表
func (s *UserService) ListFollowing(userID int64, page, pageSize int) ([]*dto.UserInfo, int64, error) {
	ids, total, err := s.followRepo.ListFollowing(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return s.buildUserList(ids, total)
}

// ListFollowers 粉丝列表
func (s *UserService) ListFollowers(userID int64, page, pageSize int) ([]*dto.UserInfo, int64, error) {
	ids, total, err := s.followRepo.ListFollowers(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return s.buildUserList(ids, total)
}

func (s *UserService) buildUserList(ids []int64, total int64) ([]*dto.UserInfo, int64, error) {
	users, err := s.userRepo.GetByIDs(ids)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[int64]*dto.UserInfo, len(users))
	for _, u := range users {
		info := BuildUserInfo(u)
		info.Email = ""
		info.Balance = 0
		info.EmailVerified = false
		byID[u.ID] = info
	}

	// 保持 follow 记录的时间顺序
	items := make([]*dto.UserInfo, 0, len(ids))
	for _, id := range ids {
		if info, ok := byID[id]; ok {
			items = append(items, info)
		}
	}
	return items, total, nil
}
