package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"leave-manager/internal/models"
)

// ErrProfileNotFound возвращается, когда профиль пользователя не найден в БД
var ErrProfileNotFound = errors.New("профиль пользователя не найден")

// UserRepositoryInterface определяет методы для работы с профилями пользователей
type UserRepositoryInterface interface {
	FindByEmail(email string) (*models.Profile, error)
	FindByID(id string) (*models.Profile, error)
	CreateProfile(profile *models.Profile) error
	GetAll() ([]models.Profile, error)
	UpdateProfile(userID string, data *models.ProfileUpdateDTO) error
	AssignApprover(userID string, approverID *string) error
}

// UserRepository предоставляет методы для работы с профилями в БД
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const profileColumns = "id, name, email, password, department, role, approver_id, created_at, updated_at"

// scanProfile сканирует одну строку профиля
func scanProfile(row interface{ Scan(...interface{}) error }) (*models.Profile, error) {
	profile := &models.Profile{}
	var approverID sql.NullString
	err := row.Scan(
		&profile.ID, &profile.Name, &profile.Email, &profile.Password,
		&profile.Department, &profile.Role, &approverID,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if approverID.Valid {
		profile.ApproverID = &approverID.String
	}
	return profile, nil
}

// FindByEmail ищет пользователя по email. Возвращает nil, nil если не найден.
func (r *UserRepository) FindByEmail(email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = ?`
	profile, err := scanProfile(r.db.QueryRow(query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при поиске пользователя по email: %w", err)
	}
	return profile, nil
}

// FindByID ищет пользователя по ID. Возвращает nil, nil если не найден.
func (r *UserRepository) FindByID(id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ?`
	profile, err := scanProfile(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при поиске пользователя по ID: %w", err)
	}
	return profile, nil
}

// CreateProfile создает профиль пользователя. Пароль хешируется здесь.
// Если ID не задан, генерируется новый UUID.
func (r *UserRepository) CreateProfile(profile *models.Profile) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(profile.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.Role == "" {
		profile.Role = models.RoleUser
	}

	query := `
		INSERT INTO profiles (id, name, email, password, department, role, approver_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`
	_, err = r.db.Exec(query, profile.ID, profile.Name, profile.Email, string(hashed),
		profile.Department, profile.Role, profile.ApproverID)
	if err != nil {
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	profile.Password = "" // Хеш наружу не отдаем
	return nil
}

// GetAll возвращает все профили (для админки)
func (r *UserRepository) GetAll() ([]models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса списка пользователей: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования профиля: %w", err)
		}
		profile.Password = ""
		profiles = append(profiles, *profile)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по пользователям: %w", err)
	}
	return profiles, nil
}

// UpdateProfile обновляет поля профиля (только переданные)
func (r *UserRepository) UpdateProfile(userID string, data *models.ProfileUpdateDTO) error {
	setClauses := []string{}
	args := []interface{}{}

	if data.Name != nil {
		setClauses = append(setClauses, "name = ?")
		args = append(args, *data.Name)
	}
	if data.Department != nil {
		setClauses = append(setClauses, "department = ?")
		args = append(args, *data.Department)
	}
	if data.Role != nil {
		setClauses = append(setClauses, "role = ?")
		args = append(args, *data.Role)
	}
	if data.Password != nil && *data.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*data.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("ошибка хеширования нового пароля: %w", err)
		}
		setClauses = append(setClauses, "password = ?")
		args = append(args, string(hashed))
	}

	if len(setClauses) == 0 {
		return nil // Нечего обновлять
	}

	query := "UPDATE profiles SET " + strings.Join(setClauses, ", ") + ", updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	args = append(args, userID)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на обновление профиля: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества обновленных строк: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// AssignApprover устанавливает (или сбрасывает при nil) согласующего по умолчанию.
// Существующие заявки сохраняют исходную привязку согласующего.
func (r *UserRepository) AssignApprover(userID string, approverID *string) error {
	query := `UPDATE profiles SET approver_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := r.db.Exec(query, approverID, userID)
	if err != nil {
		return fmt.Errorf("ошибка назначения согласующего: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества обновленных строк: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
