package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"leave-manager/internal/middleware"
	"leave-manager/internal/models"
	"leave-manager/internal/repositories"
	"leave-manager/internal/services"
)

// AppHandler объединяет обработчики для разных частей приложения
type AppHandler struct {
	leaveService    services.LeaveServiceInterface
	balanceService  services.BalanceServiceInterface
	calendarService services.CalendarServiceInterface
	userService     services.UserServiceInterface
}

// NewAppHandler создает новый экземпляр AppHandler
func NewAppHandler(ls services.LeaveServiceInterface, bs services.BalanceServiceInterface,
	cs services.CalendarServiceInterface, us services.UserServiceInterface) *AppHandler {
	return &AppHandler{
		leaveService:    ls,
		balanceService:  bs,
		calendarService: cs,
		userService:     us,
	}
}

// currentUserID достает ID пользователя из контекста (установлен middleware)
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(middleware.CtxUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Пользователь не авторизован"})
		return "", false
	}
	return userID.(string), true
}

// respondServiceError переводит ошибку сервиса в HTTP-статус
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoApproverAssigned):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrRequestAlreadyDecided):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotRequestOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, repositories.ErrRequestNotFound), errors.Is(err, repositories.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// parseDateQuery читает query-параметр с датой; при отсутствии возвращает fallback
func parseDateQuery(c *gin.Context, name string, fallback models.DateOnly) (models.DateOnly, error) {
	s := c.Query(name)
	if s == "" {
		return fallback, nil
	}
	return models.ParseDateOnly(s)
}

// --- Заявки ---

// CreateLeaveRequest обработчик подачи заявки на отпуск
func (h *AppHandler) CreateLeaveRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input services.SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ошибка чтения данных: " + err.Error()})
		return
	}

	request, err := h.leaveService.Submit(userID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

// GetMyLeaveRequests обработчик получения собственных заявок
func (h *AppHandler) GetMyLeaveRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := h.leaveService.ListForOwner(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения заявок: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, requests)
}

// GetPendingLeaveRequests обработчик очереди согласующего
func (h *AppHandler) GetPendingLeaveRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := h.leaveService.ListPendingForApprover(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения очереди заявок: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, requests)
}

// decideInput - тело запроса approve/reject
type decideInput struct {
	Comments string `json:"comments"`
}

func (h *AppHandler) decideLeaveRequest(c *gin.Context, decision string) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID заявки"})
		return
	}

	// Имя согласующего берем из токена - оно пишется в approved_by
	approverName, exists := c.Get(middleware.CtxUserName)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Пользователь не авторизован"})
		return
	}

	// Пустое тело допустимо - комментарий опционален
	var input decideInput
	_ = c.ShouldBindJSON(&input)

	if err := h.leaveService.Decide(requestID, decision, approverName.(string), input.Comments); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Заявка рассмотрена", "status": decision})
}

// ApproveLeaveRequest обработчик утверждения заявки
func (h *AppHandler) ApproveLeaveRequest(c *gin.Context) {
	h.decideLeaveRequest(c, models.StatusApproved)
}

// RejectLeaveRequest обработчик отклонения заявки
func (h *AppHandler) RejectLeaveRequest(c *gin.Context) {
	h.decideLeaveRequest(c, models.StatusRejected)
}

// CancelLeaveRequest обработчик отмены собственной заявки
func (h *AppHandler) CancelLeaveRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID заявки"})
		return
	}

	if err := h.leaveService.Cancel(requestID, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Заявка отменена"})
}

// --- Календарь ---

// GetWhoIsOut обработчик "кто отсутствует на дату"
func (h *AppHandler) GetWhoIsOut(c *gin.Context) {
	now := time.Now()
	date, err := parseDateQuery(c, "date", models.NewDateOnly(now.Year(), now.Month(), now.Day()))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.calendarService.WhoIsOut(date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetUpcomingLeave обработчик предстоящих отпусков
func (h *AppHandler) GetUpcomingLeave(c *gin.Context) {
	now := time.Now()
	from, err := parseDateQuery(c, "from", models.NewDateOnly(now.Year(), now.Month(), now.Day()))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	days := 30 // Окно по умолчанию
	if daysStr := c.Query("days"); daysStr != "" {
		days, err = strconv.Atoi(daysStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректное значение параметра days"})
			return
		}
	}

	events, err := h.calendarService.Upcoming(from, days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetCalendarMarkers обработчик меток календаря (количество отпусков на день месяца)
func (h *AppHandler) GetCalendarMarkers(c *gin.Context) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	var err error

	if yearStr := c.Query("year"); yearStr != "" {
		if year, err = strconv.Atoi(yearStr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат года"})
			return
		}
	}
	if monthStr := c.Query("month"); monthStr != "" {
		if month, err = strconv.Atoi(monthStr); err != nil || month < 1 || month > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат месяца"})
			return
		}
	}

	markers, err := h.calendarService.MonthMarkers(year, time.Month(month))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, markers)
}

// --- Балансы ---

// GetMyBalance обработчик получения собственного баланса
func (h *AppHandler) GetMyBalance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	balance, err := h.balanceService.GetBalance(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения баланса: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, balance)
}

// GetUserBalance обработчик получения баланса пользователя (админ)
func (h *AppHandler) GetUserBalance(c *gin.Context) {
	balance, err := h.balanceService.GetBalance(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения баланса: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, balance)
}

// SetUserBalance обработчик установки баланса администратором
func (h *AppHandler) SetUserBalance(c *gin.Context) {
	var input struct {
		VacationDays *int `json:"vacation_days" binding:"required"`
		SickDays     *int `json:"sick_days" binding:"required"`
		PersonalDays *int `json:"personal_days" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	err := h.balanceService.SetBalance(c.Param("id"), *input.VacationDays, *input.SickDays, *input.PersonalDays)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Баланс успешно установлен"})
}

// GetAllBalances обработчик списка всех пользователей с балансами (админ)
func (h *AppHandler) GetAllBalances(c *gin.Context) {
	balances, err := h.balanceService.ListBalances()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения балансов: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, balances)
}

// --- Профили и администрирование ---

// GetMyProfile обработчик получения профиля текущего пользователя
func (h *AppHandler) GetMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetAllUsers обработчик списка пользователей (админ)
func (h *AppHandler) GetAllUsers(c *gin.Context) {
	users, err := h.userService.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения пользователей: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUserAdmin обработчик обновления профиля администратором
func (h *AppHandler) UpdateUserAdmin(c *gin.Context) {
	var input models.ProfileUpdateDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	if err := h.userService.UpdateProfileAdmin(c.Param("id"), &input); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Профиль обновлен"})
}

// AssignApprover обработчик назначения согласующего по умолчанию (админ).
// Привязка согласующего в уже поданных заявках не меняется.
func (h *AppHandler) AssignApprover(c *gin.Context) {
	var input struct {
		ApproverID *string `json:"approver_id"` // null - снять назначение
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	if err := h.leaveService.AssignDefaultApprover(c.Param("id"), input.ApproverID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Согласующий назначен"})
}

// --- Уведомления ---

// GetMyNotifications обработчик получения уведомлений
func (h *AppHandler) GetMyNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	notifications, err := h.leaveService.ListNotifications(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения уведомлений: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead обработчик отметки уведомления прочитанным
func (h *AppHandler) MarkNotificationRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID уведомления"})
		return
	}

	if err := h.leaveService.MarkNotificationRead(notificationID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка обновления уведомления: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Уведомление прочитано"})
}
