package services

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"leave-manager/internal/config"
	"leave-manager/internal/models"
)

const testJWTSecret = "test-secret"

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeLeaveRepo) {
	t.Helper()
	users := newFakeUserRepo()
	leaves := newFakeLeaveRepo(users)
	defaults := config.BalanceDefaults{VacationDays: 22, SickDays: 10, PersonalDays: 5}
	return NewAuthService(users, leaves, defaults, testJWTSecret), users, leaves
}

func TestLogin(t *testing.T) {
	svc, users, _ := newAuthFixture(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users.add(models.Profile{
		ID:       "A",
		Name:     "Ana López",
		Email:    "ana@example.com",
		Password: string(hash),
		Role:     models.RoleUser,
	})

	token, profile, err := svc.Login("ana@example.com", "secreto123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "A", profile.ID)
	// Хеш пароля не возвращается наружу
	assert.Empty(t, profile.Password)

	// Токен валиден и несет идентификатор и роль
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "A", claims["user_id"])
	assert.Equal(t, models.RoleUser, claims["role"])
	assert.Equal(t, "Ana López", claims["name"])
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, users, _ := newAuthFixture(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users.add(models.Profile{ID: "A", Email: "ana@example.com", Password: string(hash)})

	_, _, err = svc.Login("ana@example.com", "contraseña-incorrecta")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Несуществующий email дает ту же ошибку, без различия причин
	_, _, err = svc.Login("nadie@example.com", "secreto123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister(t *testing.T) {
	svc, _, leaves := newAuthFixture(t)

	profile, err := svc.Register("Ana López", "ana@example.com", "secreto123", "Engineering")
	require.NoError(t, err)
	require.NotEmpty(t, profile.ID)
	assert.Equal(t, models.RoleUser, profile.Role)
	assert.Empty(t, profile.Password)

	// Стартовый баланс создается вместе с профилем
	balance, err := leaves.GetBalance(profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 22, balance.VacationDays)
	assert.Equal(t, 10, balance.SickDays)
	assert.Equal(t, 5, balance.PersonalDays)
}

func TestRegisterValidation(t *testing.T) {
	svc, users, _ := newAuthFixture(t)

	_, err := svc.Register("", "ana@example.com", "secreto123", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Register("Ana López", "", "secreto123", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Register("Ana López", "ana@example.com", "", "")
	assert.ErrorIs(t, err, ErrValidation)

	users.add(models.Profile{ID: "A", Email: "ana@example.com"})
	_, err = svc.Register("Ana López", "ana@example.com", "secreto123", "")
	assert.ErrorIs(t, err, ErrValidation)
}
