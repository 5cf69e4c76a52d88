package services

import (
	"errors"
	"fmt"

	"leave-manager/internal/models"
	"leave-manager/internal/repositories"
)

// BalanceServiceInterface определяет методы для сервиса балансов
type BalanceServiceInterface interface {
	GetBalance(userID string) (*models.LeaveBalance, error)
	SetBalance(userID string, vacationDays, sickDays, personalDays int) error
	ListBalances() ([]models.UserBalanceView, error)
}

// BalanceService реализует BalanceServiceInterface.
// Баланс намеренно не связан с жизненным циклом заявок: утверждение заявки
// дни не списывает, баланс меняется только явной административной правкой.
type BalanceService struct {
	leaveRepo LeaveRepositoryInterface
}

// NewBalanceService создает новый экземпляр BalanceService
func NewBalanceService(leaveRepo LeaveRepositoryInterface) *BalanceService {
	return &BalanceService{leaveRepo: leaveRepo}
}

// GetBalance получает баланс пользователя.
// Если строки баланса нет, возвращает нулевые значения по всем категориям.
func (s *BalanceService) GetBalance(userID string) (*models.LeaveBalance, error) {
	balance, err := s.leaveRepo.GetBalance(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrBalanceNotFound) {
			return &models.LeaveBalance{UserID: userID}, nil
		}
		return nil, err
	}
	return balance, nil
}

// SetBalance безусловно перезаписывает баланс пользователя (админская операция)
func (s *BalanceService) SetBalance(userID string, vacationDays, sickDays, personalDays int) error {
	if vacationDays < 0 || sickDays < 0 || personalDays < 0 {
		return fmt.Errorf("%w: количество дней не может быть отрицательным", ErrValidation)
	}
	return s.leaveRepo.UpsertBalance(userID, vacationDays, sickDays, personalDays)
}

// ListBalances возвращает всех пользователей с их балансами
func (s *BalanceService) ListBalances() ([]models.UserBalanceView, error) {
	return s.leaveRepo.ListBalances()
}
