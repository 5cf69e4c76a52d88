package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"leave-manager/internal/config"
	"leave-manager/internal/models"
	"leave-manager/internal/repositories"
)

// ErrInvalidCredentials возвращается при неверном email или пароле
var ErrInvalidCredentials = errors.New("неверный email или пароль")

// AuthServiceInterface определяет методы для аутентификации
type AuthServiceInterface interface {
	Login(email, password string) (string, *models.Profile, error)
	Register(name, email, password, department string) (*models.Profile, error)
}

// AuthService предоставляет методы для аутентификации пользователей
type AuthService struct {
	userRepo  repositories.UserRepositoryInterface
	leaveRepo LeaveRepositoryInterface
	defaults  config.BalanceDefaults
	jwtSecret string
}

// NewAuthService создает новый экземпляр AuthService
func NewAuthService(userRepo repositories.UserRepositoryInterface, leaveRepo LeaveRepositoryInterface,
	defaults config.BalanceDefaults, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		leaveRepo: leaveRepo,
		defaults:  defaults,
		jwtSecret: jwtSecret,
	}
}

// Login проверяет учетные данные и возвращает JWT токен
func (s *AuthService) Login(email, password string) (string, *models.Profile, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return "", nil, fmt.Errorf("ошибка при поиске пользователя: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	// Сравниваем хеш пароля из БД с предоставленным паролем
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"name":    user.Name,
		"exp":     time.Now().Add(time.Hour * 72).Unix(), // Токен действителен 72 часа
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, errors.New("внутренняя ошибка сервера при генерации токена")
	}

	// Убираем хеш пароля перед возвратом данных пользователя
	user.Password = ""

	return tokenString, user, nil
}

// Register создает нового пользователя и его стартовый баланс отпусков
func (s *AuthService) Register(name, email, password, department string) (*models.Profile, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: имя, email и пароль обязательны", ErrValidation)
	}

	existing, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки существующего пользователя: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: пользователь с таким email уже существует", ErrValidation)
	}

	newUser := &models.Profile{
		Name:       name,
		Email:      email,
		Password:   password, // Пароль будет хеширован в репозитории
		Department: department,
		Role:       models.RoleUser,
	}
	if err := s.userRepo.CreateProfile(newUser); err != nil {
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	// Стартовый баланс создается вместе с профилем. Если запись баланса не удалась,
	// профиль уже существует - логируем и продолжаем, админ может выставить баланс вручную.
	err = s.leaveRepo.UpsertBalance(newUser.ID, s.defaults.VacationDays, s.defaults.SickDays, s.defaults.PersonalDays)
	if err != nil {
		log.Printf("[Service Register] Warning: failed to create default balance for user %s: %v", newUser.ID, err)
	}

	return newUser, nil
}
