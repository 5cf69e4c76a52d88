package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"leave-manager/internal/models"
	"leave-manager/internal/repositories"
)

// Ошибки бизнес-логики заявок. Обработчики сопоставляют их с HTTP-статусами через errors.Is.
var (
	ErrValidation            = errors.New("некорректные данные заявки")
	ErrNoApproverAssigned    = errors.New("у заявителя не назначен согласующий")
	ErrRequestAlreadyDecided = errors.New("заявка уже рассмотрена и не может быть изменена")
	ErrNotRequestOwner       = errors.New("нет прав на операцию с этой заявкой")
)

// SubmitInput - данные для подачи заявки
type SubmitInput struct {
	Type       string          `json:"type"`
	StartDate  models.DateOnly `json:"start_date"`
	EndDate    models.DateOnly `json:"end_date"`
	Comments   string          `json:"comments"`
	ApproverID string          `json:"approver_id"` // Явный выбор согласующего; пусто - берем из профиля
}

// LeaveServiceInterface определяет методы для сервиса заявок
type LeaveServiceInterface interface {
	Submit(ownerID string, input SubmitInput) (*models.LeaveRequest, error)
	ListForOwner(ownerID string) ([]models.LeaveRequest, error)
	ListPendingForApprover(approverID string) ([]models.LeaveRequestWithOwner, error)
	Decide(requestID int64, decision, approverName, comments string) error
	Cancel(requestID int64, ownerID string) error
	AssignDefaultApprover(userID string, approverID *string) error
	ListNotifications(userID string) ([]models.Notification, error)
	MarkNotificationRead(notificationID int64, userID string) error
}

// LeaveRepositoryInterface определяет методы для работы с данными заявок и балансов
type LeaveRepositoryInterface interface {
	// --- Балансы ---
	GetBalance(userID string) (*models.LeaveBalance, error)
	UpsertBalance(userID string, vacationDays, sickDays, personalDays int) error
	ListBalances() ([]models.UserBalanceView, error)

	// --- Заявки ---
	SaveRequest(request *models.LeaveRequest) error
	GetRequestByID(requestID int64) (*models.LeaveRequest, error)
	ListByOwner(ownerID string) ([]models.LeaveRequest, error)
	ListPendingByApprover(approverID string) ([]models.LeaveRequestWithOwner, error)
	UpdateDecision(requestID int64, status, approvedBy, comments string) error
	ListApprovedOverlapping(from, to models.DateOnly) ([]models.LeaveRequestWithOwner, error)

	// --- Уведомления ---
	CreateNotification(notification *models.Notification) error
	ListNotifications(userID string) ([]models.Notification, error)
	MarkNotificationRead(notificationID int64, userID string) error
}

// LeaveService реализует LeaveServiceInterface
type LeaveService struct {
	leaveRepo LeaveRepositoryInterface
	userRepo  repositories.UserRepositoryInterface
}

// NewLeaveService создает новый экземпляр LeaveService
func NewLeaveService(leaveRepo LeaveRepositoryInterface, userRepo repositories.UserRepositoryInterface) *LeaveService {
	return &LeaveService{
		leaveRepo: leaveRepo,
		userRepo:  userRepo,
	}
}

// resolveApprover определяет согласующего для заявки.
// Явно выбранный ID принимается без проверки роли: согласующим может быть
// назначен любой существующий пользователь. Иначе берется
// согласующий из профиля владельца. Если нет ни того, ни другого - ErrNoApproverAssigned.
func (s *LeaveService) resolveApprover(owner *models.Profile, explicitApproverID string) (string, error) {
	if explicitApproverID != "" {
		return explicitApproverID, nil
	}
	if owner.ApproverID != nil && *owner.ApproverID != "" {
		return *owner.ApproverID, nil
	}
	return "", ErrNoApproverAssigned
}

// Submit подает новую заявку на отпуск
func (s *LeaveService) Submit(ownerID string, input SubmitInput) (*models.LeaveRequest, error) {
	if !models.IsValidLeaveType(input.Type) {
		return nil, fmt.Errorf("%w: неизвестный тип отпуска '%s'", ErrValidation, input.Type)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: необходимо указать даты начала и окончания", ErrValidation)
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, fmt.Errorf("%w: дата окончания %s раньше даты начала %s",
			ErrValidation, input.EndDate, input.StartDate)
	}

	days := models.CountBusinessDays(input.StartDate, input.EndDate)
	if days < 1 {
		return nil, fmt.Errorf("%w: диапазон %s - %s не содержит рабочих дней",
			ErrValidation, input.StartDate, input.EndDate)
	}

	owner, err := s.userRepo.FindByID(ownerID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения профиля заявителя: %w", err)
	}
	if owner == nil {
		return nil, repositories.ErrProfileNotFound
	}

	approverID, err := s.resolveApprover(owner, input.ApproverID)
	if err != nil {
		return nil, err
	}

	request := &models.LeaveRequest{
		UserID:      ownerID,
		Type:        input.Type,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Days:        days,
		Status:      models.StatusPending,
		RequestedOn: time.Now(),
		Comments:    input.Comments,
		ApproverID:  approverID,
	}
	if err := s.leaveRepo.SaveRequest(request); err != nil {
		return nil, fmt.Errorf("ошибка сохранения заявки: %w", err)
	}
	log.Printf("[Service Submit] Request %d created. Owner: %s, Approver: %s, Days: %d",
		request.ID, ownerID, approverID, days)

	// Уведомляем согласующего; ошибка уведомления не должна ронять подачу заявки
	notification := &models.Notification{
		UserID: approverID,
		Title:  "Новая заявка на отпуск",
		Message: fmt.Sprintf("%s подал(а) заявку '%s' с %s по %s (%d раб. дн.)",
			owner.Name, request.Type, request.StartDate, request.EndDate, request.Days),
	}
	if err := s.leaveRepo.CreateNotification(notification); err != nil {
		log.Printf("[Service Submit] Warning: failed to notify approver %s about request %d: %v",
			approverID, request.ID, err)
	}

	return request, nil
}

// ListForOwner получает заявки пользователя, новые первыми
func (s *LeaveService) ListForOwner(ownerID string) ([]models.LeaveRequest, error) {
	return s.leaveRepo.ListByOwner(ownerID)
}

// ListPendingForApprover получает очередь согласующего с данными заявителей
func (s *LeaveService) ListPendingForApprover(approverID string) ([]models.LeaveRequestWithOwner, error) {
	return s.leaveRepo.ListPendingByApprover(approverID)
}

// Decide переводит заявку из pending в терминальный статус.
// Повторное решение по уже рассмотренной заявке запрещено: терминальные
// статусы не имеют исходящих переходов.
func (s *LeaveService) Decide(requestID int64, decision, approverName, comments string) error {
	if decision != models.StatusApproved && decision != models.StatusRejected {
		return fmt.Errorf("%w: недопустимое решение '%s'", ErrValidation, decision)
	}

	req, err := s.leaveRepo.GetRequestByID(requestID)
	if err != nil {
		return fmt.Errorf("ошибка получения заявки %d для решения: %w", requestID, err)
	}
	if req == nil {
		return repositories.ErrRequestNotFound
	}
	if req.Status != models.StatusPending {
		return fmt.Errorf("%w: заявка %d уже в статусе '%s'", ErrRequestAlreadyDecided, requestID, req.Status)
	}

	if err := s.leaveRepo.UpdateDecision(requestID, decision, approverName, comments); err != nil {
		return fmt.Errorf("ошибка установки статуса '%s' для заявки %d: %w", decision, requestID, err)
	}
	log.Printf("[Service Decide] Request %d -> %s by %q", requestID, decision, approverName)

	// Уведомляем владельца; ошибка уведомления не влияет на результат решения
	title := "Заявка на отпуск утверждена"
	if decision == models.StatusRejected {
		title = "Заявка на отпуск отклонена"
	}
	notification := &models.Notification{
		UserID: req.UserID,
		Title:  title,
		Message: fmt.Sprintf("Заявка '%s' (%s - %s) рассмотрена: %s",
			req.Type, req.StartDate, req.EndDate, decision),
	}
	if err := s.leaveRepo.CreateNotification(notification); err != nil {
		log.Printf("[Service Decide] Warning: failed to notify owner %s about request %d: %v",
			req.UserID, requestID, err)
	}

	return nil
}

// Cancel отменяет собственную ожидающую заявку.
// Хранится как отклонение со служебным комментарием - формат хранения
// совпадает с исходным (отмена и отклонение различимы только по комментарию).
func (s *LeaveService) Cancel(requestID int64, ownerID string) error {
	req, err := s.leaveRepo.GetRequestByID(requestID)
	if err != nil {
		return fmt.Errorf("ошибка получения заявки %d для отмены: %w", requestID, err)
	}
	if req == nil {
		return repositories.ErrRequestNotFound
	}
	if req.UserID != ownerID {
		return ErrNotRequestOwner
	}
	if req.Status != models.StatusPending {
		return fmt.Errorf("%w: отменить можно только заявку в статусе 'pending'", ErrRequestAlreadyDecided)
	}

	owner, err := s.userRepo.FindByID(ownerID)
	if err != nil {
		return fmt.Errorf("ошибка получения профиля владельца заявки: %w", err)
	}
	ownerName := ""
	if owner != nil {
		ownerName = owner.Name
	}

	if err := s.leaveRepo.UpdateDecision(requestID, models.StatusRejected, ownerName, models.CancelledByUserComment); err != nil {
		return fmt.Errorf("ошибка отмены заявки %d: %w", requestID, err)
	}
	log.Printf("[Service Cancel] Request %d cancelled by owner %s", requestID, ownerID)
	return nil
}

// AssignDefaultApprover назначает согласующего по умолчанию в профиле пользователя.
// Существующие заявки сохраняют привязку, зафиксированную при подаче.
func (s *LeaveService) AssignDefaultApprover(userID string, approverID *string) error {
	if approverID != nil && *approverID != "" {
		if *approverID == userID {
			return fmt.Errorf("%w: нельзя назначить пользователя согласующим самому себе", ErrValidation)
		}
		approver, err := s.userRepo.FindByID(*approverID)
		if err != nil {
			return fmt.Errorf("ошибка проверки согласующего: %w", err)
		}
		if approver == nil {
			return fmt.Errorf("%w: согласующий %s", repositories.ErrProfileNotFound, *approverID)
		}
		// Роль согласующего намеренно не проверяется
	}
	return s.userRepo.AssignApprover(userID, approverID)
}

// ListNotifications возвращает уведомления пользователя
func (s *LeaveService) ListNotifications(userID string) ([]models.Notification, error) {
	return s.leaveRepo.ListNotifications(userID)
}

// MarkNotificationRead помечает уведомление пользователя прочитанным
func (s *LeaveService) MarkNotificationRead(notificationID int64, userID string) error {
	return s.leaveRepo.MarkNotificationRead(notificationID, userID)
}
