package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"leave-manager/internal/models"
)

// ErrBalanceNotFound возвращается, когда у пользователя нет строки баланса
var ErrBalanceNotFound = errors.New("баланс отпуска не найден для данного пользователя")

// ErrRequestNotFound возвращается, когда заявка не найдена в БД
var ErrRequestNotFound = errors.New("заявка не найдена")

// LeaveRepository предоставляет методы для работы с заявками и балансами в БД
type LeaveRepository struct {
	db *sql.DB
}

// NewLeaveRepository создает новый экземпляр LeaveRepository
func NewLeaveRepository(db *sql.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// --- Балансы ---

// GetBalance получает баланс отпуска пользователя
func (r *LeaveRepository) GetBalance(userID string) (*models.LeaveBalance, error) {
	query := `
		SELECT user_id, vacation_days, sick_days, personal_days, updated_at
		FROM leave_balances
		WHERE user_id = ?`

	balance := &models.LeaveBalance{}
	err := r.db.QueryRow(query, userID).Scan(
		&balance.UserID, &balance.VacationDays, &balance.SickDays,
		&balance.PersonalDays, &balance.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBalanceNotFound
		}
		return nil, fmt.Errorf("ошибка получения баланса из БД: %w", err)
	}
	return balance, nil
}

// UpsertBalance создает или безусловно перезаписывает баланс пользователя
func (r *LeaveRepository) UpsertBalance(userID string, vacationDays, sickDays, personalDays int) error {
	query := `
		INSERT INTO leave_balances (user_id, vacation_days, sick_days, personal_days, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON DUPLICATE KEY UPDATE
			vacation_days = VALUES(vacation_days),
			sick_days = VALUES(sick_days),
			personal_days = VALUES(personal_days),
			updated_at = CURRENT_TIMESTAMP`

	_, err := r.db.Exec(query, userID, vacationDays, sickDays, personalDays)
	if err != nil {
		return fmt.Errorf("ошибка создания/обновления баланса: %w", err)
	}
	return nil
}

// ListBalances возвращает всех пользователей с их балансами (LEFT JOIN: без строки баланса - нули)
func (r *LeaveRepository) ListBalances() ([]models.UserBalanceView, error) {
	query := `
		SELECT p.id, p.name, p.email, p.department,
		       COALESCE(b.vacation_days, 0), COALESCE(b.sick_days, 0), COALESCE(b.personal_days, 0)
		FROM profiles p
		LEFT JOIN leave_balances b ON b.user_id = p.id
		ORDER BY p.name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса пользователей с балансами: %w", err)
	}
	defer rows.Close()

	var result []models.UserBalanceView
	for rows.Next() {
		var v models.UserBalanceView
		err := rows.Scan(&v.UserID, &v.Name, &v.Email, &v.Department,
			&v.VacationDays, &v.SickDays, &v.PersonalDays)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования баланса пользователя: %w", err)
		}
		result = append(result, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по балансам: %w", err)
	}
	return result, nil
}

// --- Заявки ---

const requestColumns = "id, user_id, type, start_date, end_date, days, status, requested_on, approved_by, comments, approver_id"

// scanRequest сканирует одну строку заявки
func scanRequest(row interface{ Scan(...interface{}) error }) (*models.LeaveRequest, error) {
	var req models.LeaveRequest
	var comments sql.NullString
	err := row.Scan(
		&req.ID, &req.UserID, &req.Type, &req.StartDate, &req.EndDate,
		&req.Days, &req.Status, &req.RequestedOn, &req.ApprovedBy,
		&comments, &req.ApproverID,
	)
	if err != nil {
		return nil, err
	}
	if comments.Valid {
		req.Comments = comments.String
	}
	return &req, nil
}

// SaveRequest сохраняет новую заявку и проставляет ей ID и requested_on
func (r *LeaveRepository) SaveRequest(request *models.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests (user_id, type, start_date, end_date, days, status, requested_on, approved_by, comments, approver_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, '', ?, ?)`

	result, err := r.db.Exec(query, request.UserID, request.Type, request.StartDate,
		request.EndDate, request.Days, request.Status, request.RequestedOn,
		request.Comments, request.ApproverID)
	if err != nil {
		return fmt.Errorf("ошибка сохранения заявки: %w", err)
	}
	requestID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("ошибка получения ID сохраненной заявки: %w", err)
	}
	request.ID = requestID
	return nil
}

// GetRequestByID получает одну заявку по ее ID. Возвращает nil, nil если не найдена.
func (r *LeaveRepository) GetRequestByID(requestID int64) (*models.LeaveRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM leave_requests WHERE id = ?`
	req, err := scanRequest(r.db.QueryRow(query, requestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка сканирования заявки по ID: %w", err)
	}
	return req, nil
}

// ListByOwner получает заявки пользователя, новые первыми
func (r *LeaveRepository) ListByOwner(ownerID string) ([]models.LeaveRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM leave_requests WHERE user_id = ? ORDER BY requested_on DESC`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса заявок пользователя %s: %w", ownerID, err)
	}
	defer rows.Close()

	result := []models.LeaveRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки пользователя %s: %w", ownerID, err)
		}
		result = append(result, *req)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации по заявкам пользователя %s: %w", ownerID, err)
	}
	return result, nil
}

// ListPendingByApprover получает ожидающие заявки согласующего,
// обогащенные данными владельца, новые первыми
func (r *LeaveRepository) ListPendingByApprover(approverID string) ([]models.LeaveRequestWithOwner, error) {
	query := `
		SELECT lr.id, lr.user_id, lr.type, lr.start_date, lr.end_date, lr.days, lr.status,
		       lr.requested_on, lr.approved_by, lr.comments, lr.approver_id,
		       p.name, p.email, p.department
		FROM leave_requests lr
		JOIN profiles p ON lr.user_id = p.id
		WHERE lr.approver_id = ? AND lr.status = ?
		ORDER BY lr.requested_on DESC`

	rows, err := r.db.Query(query, approverID, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса очереди согласующего %s: %w", approverID, err)
	}
	defer rows.Close()

	result := []models.LeaveRequestWithOwner{}
	for rows.Next() {
		var req models.LeaveRequestWithOwner
		var comments sql.NullString
		err := rows.Scan(
			&req.ID, &req.UserID, &req.Type, &req.StartDate, &req.EndDate,
			&req.Days, &req.Status, &req.RequestedOn, &req.ApprovedBy,
			&comments, &req.ApproverID,
			&req.OwnerName, &req.OwnerEmail, &req.OwnerDepartment,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки очереди согласующего: %w", err)
		}
		if comments.Valid {
			req.Comments = comments.String
		}
		result = append(result, req)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации по очереди согласующего: %w", err)
	}
	return result, nil
}

// UpdateDecision переводит заявку в терминальный статус.
// Комментарий перезаписывается (последняя запись побеждает).
func (r *LeaveRepository) UpdateDecision(requestID int64, status, approvedBy, comments string) error {
	query := `
		UPDATE leave_requests
		SET status = ?, approved_by = ?, comments = ?
		WHERE id = ?`

	result, err := r.db.Exec(query, status, approvedBy, comments, requestID)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса заявки: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества обновленных строк при смене статуса: %w", err)
	}
	if rowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// ListApprovedOverlapping возвращает утвержденные заявки, пересекающие диапазон [from, to],
// в порядке хранения (стабильный порядок по start_date, затем id)
func (r *LeaveRepository) ListApprovedOverlapping(from, to models.DateOnly) ([]models.LeaveRequestWithOwner, error) {
	query := `
		SELECT lr.id, lr.user_id, lr.type, lr.start_date, lr.end_date, lr.days, lr.status,
		       lr.requested_on, lr.approved_by, lr.comments, lr.approver_id,
		       p.name, p.email, p.department
		FROM leave_requests lr
		JOIN profiles p ON lr.user_id = p.id
		WHERE lr.status = ? AND lr.start_date <= ? AND lr.end_date >= ?
		ORDER BY lr.start_date, lr.id`

	rows, err := r.db.Query(query, models.StatusApproved, to, from)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса утвержденных заявок: %w", err)
	}
	defer rows.Close()

	result := []models.LeaveRequestWithOwner{}
	for rows.Next() {
		var req models.LeaveRequestWithOwner
		var comments sql.NullString
		err := rows.Scan(
			&req.ID, &req.UserID, &req.Type, &req.StartDate, &req.EndDate,
			&req.Days, &req.Status, &req.RequestedOn, &req.ApprovedBy,
			&comments, &req.ApproverID,
			&req.OwnerName, &req.OwnerEmail, &req.OwnerDepartment,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования утвержденной заявки: %w", err)
		}
		if comments.Valid {
			req.Comments = comments.String
		}
		result = append(result, req)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации по утвержденным заявкам: %w", err)
	}
	return result, nil
}

// --- Уведомления ---

// CreateNotification создает новое уведомление
func (r *LeaveRepository) CreateNotification(notification *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, title, message, is_read, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`

	_, err := r.db.Exec(query, notification.UserID, notification.Title,
		notification.Message, notification.IsRead)
	if err != nil {
		return fmt.Errorf("ошибка создания уведомления: %w", err)
	}
	return nil
}

// ListNotifications возвращает уведомления пользователя, новые первыми
func (r *LeaveRepository) ListNotifications(userID string) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, title, message, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса уведомлений: %w", err)
	}
	defer rows.Close()

	result := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования уведомления: %w", err)
		}
		result = append(result, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации по уведомлениям: %w", err)
	}
	return result, nil
}

// MarkNotificationRead помечает уведомление пользователя прочитанным
func (r *LeaveRepository) MarkNotificationRead(notificationID int64, userID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?`
	result, err := r.db.Exec(query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("ошибка обновления уведомления: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества обновленных строк: %w", err)
	}
	if rowsAffected == 0 {
		return errors.New("уведомление не найдено или не принадлежит пользователю")
	}
	return nil
}
