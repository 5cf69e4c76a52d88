package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// --- Статусы заявок ---
const (
	StatusPending  = "pending"  // На рассмотрении
	StatusApproved = "approved" // Утверждена
	StatusRejected = "rejected" // Отклонена
)

// --- Роли пользователей ---
const (
	RoleUser       = "user"
	RoleApprover   = "approver"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// --- Типы отпусков (закрытый набор, метки хранятся как есть) ---
const (
	TypeVacation    = "Vacaciones"
	TypeSickLeave   = "Permiso por Enfermedad"
	TypePersonal    = "Permiso Personal"
	TypeBereavement = "Permiso por Duelo"
	TypeParental    = "Permiso Parental"
)

// LeaveTypes - допустимые типы заявок
var LeaveTypes = map[string]bool{
	TypeVacation:    true,
	TypeSickLeave:   true,
	TypePersonal:    true,
	TypeBereavement: true,
	TypeParental:    true,
}

// IsValidLeaveType проверяет, входит ли тип в закрытый набор
func IsValidLeaveType(t string) bool {
	return LeaveTypes[t]
}

// CancelledByUserComment - служебный комментарий, которым помечается отмена заявки владельцем.
// Отмена хранится как отклонение с этим комментарием (совместимость с исходным форматом хранения).
const CancelledByUserComment = "cancelled by user"

const dateOnlyFormat = "2006-01-02"

// DateOnly - обертка над time.Time для работы с датами без времени (формат YYYY-MM-DD)
// в JSON и при сканировании/записи значений БД
type DateOnly struct {
	time.Time
}

// NewDateOnly создает DateOnly, отбрасывая часть времени
func NewDateOnly(year int, month time.Month, day int) DateOnly {
	return DateOnly{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDateOnly парсит строку формата YYYY-MM-DD
func ParseDateOnly(s string) (DateOnly, error) {
	t, err := time.Parse(dateOnlyFormat, s)
	if err != nil {
		return DateOnly{}, fmt.Errorf("некорректный формат даты '%s' (ожидается YYYY-MM-DD): %w", s, err)
	}
	return DateOnly{Time: t}, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *DateOnly) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" || s == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDateOnly(s)
	if err != nil {
		return err
	}
	d.Time = parsed.Time
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return json.Marshal(nil)
	}
	return json.Marshal(d.Time.Format(dateOnlyFormat))
}

// String возвращает дату в формате YYYY-MM-DD
func (d DateOnly) String() string {
	return d.Time.Format(dateOnlyFormat)
}

// Value implements the driver.Valuer interface.
func (d DateOnly) Value() (driver.Value, error) {
	if d.Time.IsZero() {
		return nil, nil
	}
	return d.Time.Format(dateOnlyFormat), nil
}

// Scan implements the sql.Scanner interface.
func (d *DateOnly) Scan(value interface{}) error {
	if value == nil {
		d.Time = time.Time{}
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case []byte:
		parsed, err := ParseDateOnly(string(v))
		if err != nil {
			return err
		}
		d.Time = parsed.Time
		return nil
	case string:
		parsed, err := ParseDateOnly(v)
		if err != nil {
			return err
		}
		d.Time = parsed.Time
		return nil
	}
	return fmt.Errorf("не удалось сканировать тип %T в DateOnly", value)
}

// Before сравнивает календарные даты
func (d DateOnly) Before(other DateOnly) bool {
	return d.Time.Before(other.Time)
}

// After сравнивает календарные даты
func (d DateOnly) After(other DateOnly) bool {
	return d.Time.After(other.Time)
}

// Equal сравнивает календарные даты
func (d DateOnly) Equal(other DateOnly) bool {
	return d.Time.Equal(other.Time)
}

// AddDays возвращает дату, сдвинутую на days дней
func (d DateOnly) AddDays(days int) DateOnly {
	return DateOnly{Time: d.Time.AddDate(0, 0, days)}
}

// CountBusinessDays считает рабочие дни (Пн-Пт) в диапазоне [start, end] включительно.
// Праздничный календарь не учитывается. Для диапазона из одних выходных вернет 0.
func CountBusinessDays(start, end DateOnly) int {
	if end.Before(start) {
		return 0
	}
	count := 0
	for d := start.Time; !d.After(end.Time); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

// Profile - модель пользователя
type Profile struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	Password   string    `json:"-" db:"password"`
	Department string    `json:"department" db:"department"`
	Role       string    `json:"role" db:"role"`
	ApproverID *string   `json:"approver_id,omitempty" db:"approver_id"` // Согласующий по умолчанию; NULL, если не назначен
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin возвращает true для администраторов (включая супер-админа)
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin || p.Role == RoleSuperAdmin
}

// ProfileUpdateDTO - структура для обновления профиля администратором.
// Указатели, чтобы различать отсутствие значения и пустую строку.
type ProfileUpdateDTO struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Role       *string `json:"role"`
	Password   *string `json:"password"`
}

// LeaveBalance - остатки дней по категориям (one-to-one с профилем)
type LeaveBalance struct {
	UserID       string    `json:"user_id" db:"user_id"`
	VacationDays int       `json:"vacation_days" db:"vacation_days"`
	SickDays     int       `json:"sick_days" db:"sick_days"`
	PersonalDays int       `json:"personal_days" db:"personal_days"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserBalanceView - пользователь вместе с его балансом (для админского списка)
type UserBalanceView struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Department   string `json:"department"`
	VacationDays int    `json:"vacation_days"`
	SickDays     int    `json:"sick_days"`
	PersonalDays int    `json:"personal_days"`
}

// LeaveRequest - модель заявки на отпуск
type LeaveRequest struct {
	ID          int64     `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Type        string    `json:"type" db:"type"`
	StartDate   DateOnly  `json:"start_date" db:"start_date"`
	EndDate     DateOnly  `json:"end_date" db:"end_date"`
	Days        int       `json:"days" db:"days"` // Количество рабочих дней в диапазоне
	Status      string    `json:"status" db:"status"`
	RequestedOn time.Time `json:"requested_on" db:"requested_on"` // Устанавливается при создании, неизменяемо
	ApprovedBy  string    `json:"approved_by,omitempty" db:"approved_by"`
	Comments    string    `json:"comments,omitempty" db:"comments"`
	ApproverID  string    `json:"approver_id" db:"approver_id"` // Фиксируется при создании, не меняется
}

// ContainsDate проверяет, попадает ли дата в диапазон заявки (границы включительно)
func (r *LeaveRequest) ContainsDate(d DateOnly) bool {
	return !d.Before(r.StartDate) && !d.After(r.EndDate)
}

// LeaveRequestWithOwner - заявка, обогащенная данными владельца (для очереди согласующего и отчетов)
type LeaveRequestWithOwner struct {
	LeaveRequest
	OwnerName       string `json:"owner_name" db:"owner_name"`
	OwnerEmail      string `json:"owner_email" db:"owner_email"`
	OwnerDepartment string `json:"owner_department" db:"owner_department"`
}

// Notification - модель уведомления
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
