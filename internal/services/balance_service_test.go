package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leave-manager/internal/models"
)

func TestGetBalanceMissingRow(t *testing.T) {
	users := newFakeUserRepo()
	leaves := newFakeLeaveRepo(users)
	svc := NewBalanceService(leaves)

	// Без строки в хранилище возвращается нулевой баланс, а не ошибка
	balance, err := svc.GetBalance("A")
	require.NoError(t, err)
	assert.Equal(t, "A", balance.UserID)
	assert.Equal(t, 0, balance.VacationDays)
	assert.Equal(t, 0, balance.SickDays)
	assert.Equal(t, 0, balance.PersonalDays)
}

func TestSetBalance(t *testing.T) {
	users := newFakeUserRepo()
	leaves := newFakeLeaveRepo(users)
	svc := NewBalanceService(leaves)

	require.NoError(t, svc.SetBalance("A", 22, 10, 5))

	balance, err := svc.GetBalance("A")
	require.NoError(t, err)
	assert.Equal(t, 22, balance.VacationDays)
	assert.Equal(t, 10, balance.SickDays)
	assert.Equal(t, 5, balance.PersonalDays)

	// Повторная запись перезаписывает значения целиком
	require.NoError(t, svc.SetBalance("A", 15, 10, 5))
	balance, err = svc.GetBalance("A")
	require.NoError(t, err)
	assert.Equal(t, 15, balance.VacationDays)
}

func TestSetBalanceRejectsNegative(t *testing.T) {
	users := newFakeUserRepo()
	leaves := newFakeLeaveRepo(users)
	svc := NewBalanceService(leaves)

	err := svc.SetBalance("A", -1, 10, 5)
	assert.ErrorIs(t, err, ErrValidation)
	err = svc.SetBalance("A", 22, -3, 5)
	assert.ErrorIs(t, err, ErrValidation)
	err = svc.SetBalance("A", 22, 10, -5)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListBalances(t *testing.T) {
	users := newFakeUserRepo()
	users.add(models.Profile{ID: "A", Name: "Ana López", Email: "ana@example.com"})
	users.add(models.Profile{ID: "B", Name: "Carlos Ruiz", Email: "carlos@example.com"})
	leaves := newFakeLeaveRepo(users)
	svc := NewBalanceService(leaves)

	require.NoError(t, svc.SetBalance("A", 22, 10, 5))

	views, err := svc.ListBalances()
	require.NoError(t, err)
	require.Len(t, views, 2)

	byID := make(map[string]models.UserBalanceView)
	for _, v := range views {
		byID[v.UserID] = v
	}
	assert.Equal(t, 22, byID["A"].VacationDays)
	// Пользователь без строки баланса присутствует в сводке с нулями
	assert.Equal(t, 0, byID["B"].VacationDays)
	assert.Equal(t, "Carlos Ruiz", byID["B"].Name)
}
