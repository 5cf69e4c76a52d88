package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"leave-manager/internal/models"
)

// Ключи контекста Gin, заполняемые JWTAuth
const (
	CtxUserID   = "userID"
	CtxUserRole = "userRole"
	CtxUserName = "userName"
)

// JWTAuth - middleware для проверки JWT токена
func JWTAuth(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Отсутствует заголовок Authorization"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Некорректный формат заголовка Authorization"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			// Убеждаемся, что подпись HMAC
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
			}
			return []byte(secretKey), nil
		})
		if err != nil {
			errorMsg := "Невалидный токен"
			if errors.Is(err, jwt.ErrTokenExpired) {
				errorMsg = "Срок действия токена истек"
			} else if errors.Is(err, jwt.ErrTokenMalformed) {
				errorMsg = "Некорректный формат токена"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": errorMsg})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Невалидный токен"})
			c.Abort()
			return
		}

		userID, okUserID := claims["user_id"].(string)
		role, okRole := claims["role"].(string)
		name, okName := claims["name"].(string)
		if !okUserID || !okRole || !okName {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка чтения данных из токена"})
			c.Abort()
			return
		}

		// Сохраняем идентичность в контексте Gin; сервисы получают ее параметром
		c.Set(CtxUserID, userID)
		c.Set(CtxUserRole, role)
		c.Set(CtxUserName, name)

		c.Next()
	}
}

// AdminOnly - middleware для проверки прав администратора
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CtxUserRole)
		if !exists || !isAdminRole(role.(string)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Доступ запрещен. Требуются права администратора."})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ApproverOrAdminOnly - middleware для проверки прав согласующего или администратора
func ApproverOrAdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CtxUserRole)
		hasAccess := exists && (role.(string) == models.RoleApprover || isAdminRole(role.(string)))
		if !hasAccess {
			c.JSON(http.StatusForbidden, gin.H{"error": "Доступ запрещен. Требуются права согласующего или администратора."})
			c.Abort()
			return
		}
		c.Next()
	}
}

func isAdminRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleSuperAdmin
}
