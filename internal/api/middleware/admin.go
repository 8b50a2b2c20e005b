package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/voke-app/voke_server/internal/pkg/response"
	"github.com/voke-app/voke_server/internal/repository"
)

// AdminOnly 管理员角色校验中间件，依赖数据库角色字段而非固定账号
func AdminOnly(userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		user, err := userRepo.GetByID(userID)
		if err != nil {
			response.AuthError(c, "用户不存在")
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			response.PermissionError(c, "需要管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}
