package services

import (
	"fmt"

	"leave-manager/internal/models"
	"leave-manager/internal/repositories"
)

// UserServiceInterface определяет методы для сервиса пользователей
type UserServiceInterface interface {
	GetProfile(userID string) (*models.Profile, error)
	GetAll() ([]models.Profile, error)
	UpdateProfileAdmin(userID string, data *models.ProfileUpdateDTO) error
}

// UserService реализует UserServiceInterface
type UserService struct {
	userRepo repositories.UserRepositoryInterface
}

// NewUserService создает новый экземпляр UserService
func NewUserService(userRepo repositories.UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile возвращает профиль пользователя по ID
func (s *UserService) GetProfile(userID string) (*models.Profile, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения профиля: %w", err)
	}
	if user == nil {
		return nil, repositories.ErrProfileNotFound
	}
	user.Password = ""
	return user, nil
}

// GetAll возвращает всех пользователей (админская операция)
func (s *UserService) GetAll() ([]models.Profile, error) {
	return s.userRepo.GetAll()
}

// UpdateProfileAdmin обновляет поля профиля от имени администратора
func (s *UserService) UpdateProfileAdmin(userID string, data *models.ProfileUpdateDTO) error {
	if data.Role != nil {
		switch *data.Role {
		case models.RoleUser, models.RoleApprover, models.RoleAdmin, models.RoleSuperAdmin:
		default:
			return fmt.Errorf("%w: неизвестная роль '%s'", ErrValidation, *data.Role)
		}
	}
	return s.userRepo.UpdateProfile(userID, data)
}
