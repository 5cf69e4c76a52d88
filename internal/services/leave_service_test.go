package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leave-manager/internal/models"
	"leave-manager/internal/repositories"
)

func newTestLeaveService() (*LeaveService, *fakeUserRepo, *fakeLeaveRepo) {
	users := newFakeUserRepo()
	leaves := newFakeLeaveRepo(users)
	return NewLeaveService(leaves, users), users, leaves
}

func TestSubmitWithoutApprover(t *testing.T) {
	svc, users, _ := newTestLeaveService()
	users.add(models.Profile{ID: "A", Name: "Ana López", Email: "ana@example.com"})

	input := SubmitInput{
		Type:      models.TypeVacation,
		StartDate: models.NewDateOnly(2024, time.June, 3),
		EndDate:   models.NewDateOnly(2024, time.June, 5),
	}

	// У профиля нет согласующего и явный не указан
	_, err := svc.Submit("A", input)
	require.ErrorIs(t, err, ErrNoApproverAssigned)

	// После назначения согласующего по умолчанию та же заявка проходит
	users.add(models.Profile{ID: "B", Name: "Beatriz Gómez", Email: "bea@example.com", Role: models.RoleApprover})
	require.NoError(t, svc.AssignDefaultApprover("A", ptr("B")))

	req, err := svc.Submit("A", input)
	require.NoError(t, err)
	assert.Equal(t, 3, req.Days)
	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, "B", req.ApproverID)
	assert.False(t, req.RequestedOn.IsZero())
}

func TestSubmitValidation(t *testing.T) {
	svc, users, _ := newTestLeaveService()
	users.add(models.Profile{ID: "A", Name: "Ana López", ApproverID: ptr("B")})
	users.add(models.Profile{ID: "B", Name: "Beatriz Gómez"})

	// Неизвестный тип
	_, err := svc.Submit("A", SubmitInput{
		Type:      "Sabbatical",
		StartDate: models.NewDateOnly(2024, time.June, 3),
		EndDate:   models.NewDateOnly(2024, time.June, 5),
	})
	assert.ErrorIs(t, err, ErrValidation)

	// Окончание раньше начала
	_, err = svc.Submit("A", SubmitInput{
		Type:      models.TypeVacation,
		StartDate: models.NewDateOnly(2024, time.June, 5),
		EndDate:   models.NewDateOnly(2024, time.June, 3),
	})
	assert.ErrorIs(t, err, ErrValidation)

	// Диапазон из одних выходных - ноль рабочих дней
	_, err = svc.Submit("A", SubmitInput{
		Type:      models.TypeVacation,
		StartDate: models.NewDateOnly(2024, time.January, 6),
		EndDate:   models.NewDateOnly(2024, time.January, 7),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitExplicitApproverTrumpsProfile(t *testing.T) {
	svc, users, _ := newTestLeaveService()
	users.add(models.Profile{ID: "A", Name: "Ana López", ApproverID: ptr("B")})
	users.add(models.Profile{ID: "B", Name: "Beatriz Gómez"})

	// Явный выбор согласующего принимается без проверки роли
	req, err := svc.Submit("A", SubmitInput{
		Type:       models.TypePersonal,
		StartDate:  models.NewDateOnly(2024, time.July, 1),
		EndDate:    models.NewDateOnly(2024, time.July, 1),
		ApproverID: "C",
	})
	require.NoError(t, err)
	assert.Equal(t, "C", req.ApproverID)
}

func TestDecideApprove(t *testing.T) {
	svc, users, leaves := newTestLeaveService()
	users.add(models.Profile{ID: "A", Name: "Ana López", Email: "ana@example.com", Department: "Ventas", ApproverID: ptr("B")})
	users.add(models.Profile{ID: "B", Name: "Beatriz Gómez", Role: models.RoleApprover})

	req, err := svc.Submit("A", SubmitInput{
		Type:      models.TypeVacation,
		StartDate: models.NewDateOnly(2024, time.June, 3),
		EndDate:   models.NewDateOnly(2024, time.June, 5),
		Comments:  "primera solicitud",
	})
	require.NoError(t, err)

	// Заявка видна в очереди согласующего с данными владельца
	pending, err := svc.ListPendingForApprover("B")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Ana López", pending[0].OwnerName)
	assert.Equal(t, "Ventas", pending[0].OwnerDepartment)

	require.NoError(t, svc.Decide(req.ID, models.StatusApproved, "Beatriz Gómez", "enjoy"))

	stored, err := leaves.GetRequestByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
	assert.Equal(t, "Beatriz Gómez", stored.ApprovedBy)
	// Комментарий решения перезаписывает комментарий подачи
	assert.Equal(t, "enjoy", stored.Comments)

	// Утвержденная заявка попадает в календарь внутри диапазона
	events, err := NewCalendarService(leaves).WhoIsOut(models.NewDateOnly(2024, time.June, 4))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, req.ID, events[0].ID)

	// Очередь согласующего опустела
	pending, err = svc.ListPendingForApprover("B")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDecideTerminalStateIsFinal(t *testing.T) {
	svc, users, _ := newTestLeaveService()
	users.add(models.Profile{ID: "A", Name: "Ana López", ApproverID: ptr("B")})
	users.add(models.Profile{ID: "B", Name: "Beatriz Gómez"})

	req, err := svc.Submit("A", SubmitInput{
		Type:      models.TypeSickLeave,
		StartDate: models.NewDateOnly(2024, time.June, 3),
		EndDate:   models.NewDateOnly(2024, time.June, 3),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Decide(req.ID, models.StatusRejected, "Beatriz Gómez", "no"))

	// Терминальный статус не имеет исходящих переходов
	err = svc.Decide(req.ID, models.StatusApproved, "Beatriz Gómez", "ok")
	assert.ErrorIs(t, err, ErrRequestAlreadyDecided)
}

func TestDecideValidation(t *testing.T) {
	svc, _, _ := newTestLeaveService()

	err := svc.Decide(1, "pending", "X", "")
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.Decide(404, models.StatusApproved, "X", "")
	assert.ErrorIs(t, err, repositories.ErrRequestNotFound)
}

func TestCancel(t *testing.T) {
	svc, users, leaves := newTestLeaveService()
	users.add(models.Profile{ID: "A", Name: "Ana López", ApproverID: ptr("B")})
	users.add(models.Profile{ID: "B", Name: "Beatriz Gómez"})

	req, err := svc.Submit("A", SubmitInput{
		Type:      models.TypeVacation,
		StartDate: models.NewDateOnly(2024, time.August, 5),
		EndDate:   models.NewDateOnly(2024, time.August, 9),
	})
	require.NoError(t, err)

	// Чужую заявку отменить нельзя
	assert.ErrorIs(t, svc.Cancel(req.ID, "B"), ErrNotRequestOwner)

	require.NoError(t, svc.Cancel(req.ID, "A"))

	// Отмена хранится как отклонение со служебным комментарием
	stored, err := leaves.GetRequestByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored.Status)
	assert.Equal(t, models.CancelledByUserComment, stored.Comments)

	// Повторная отмена невозможна
	assert.ErrorIs(t, svc.Cancel(req.ID, "A"), ErrRequestAlreadyDecided)
}

func TestAssignDefaultApprover(t *testing.T) {
	svc, users, _ := newTestLeaveService()
	users.add(models.Profile{ID: "A", Name: "Ana López"})
	users.add(models.Profile{ID: "B", Name: "Beatriz Gómez"})

	// Самого себя назначить нельзя
	assert.ErrorIs(t, svc.AssignDefaultApprover("A", ptr("A")), ErrValidation)

	// Несуществующий согласующий
	assert.ErrorIs(t, svc.AssignDefaultApprover("A", ptr("nope")), repositories.ErrProfileNotFound)

	require.NoError(t, svc.AssignDefaultApprover("A", ptr("B")))
	profile, err := users.FindByID("A")
	require.NoError(t, err)
	require.NotNil(t, profile.ApproverID)
	assert.Equal(t, "B", *profile.ApproverID)

	// Сброс назначения
	require.NoError(t, svc.AssignDefaultApprover("A", nil))
	profile, err = users.FindByID("A")
	require.NoError(t, err)
	assert.Nil(t, profile.ApproverID)
}

func TestAssignDefaultApproverDoesNotTouchExistingRequests(t *testing.T) {
	svc, users, leaves := newTestLeaveService()
	users.add(models.Profile{ID: "A", Name: "Ana López", ApproverID: ptr("B")})
	users.add(models.Profile{ID: "B", Name: "Beatriz Gómez"})
	users.add(models.Profile{ID: "C", Name: "Carlos Ruiz"})

	req, err := svc.Submit("A", SubmitInput{
		Type:      models.TypeVacation,
		StartDate: models.NewDateOnly(2024, time.June, 3),
		EndDate:   models.NewDateOnly(2024, time.June, 5),
	})
	require.NoError(t, err)

	// Смена согласующего по умолчанию не трогает уже поданные заявки
	require.NoError(t, svc.AssignDefaultApprover("A", ptr("C")))
	stored, err := leaves.GetRequestByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", stored.ApproverID)
}

func TestSubmitNotifiesApprover(t *testing.T) {
	svc, users, leaves := newTestLeaveService()
	users.add(models.Profile{ID: "A", Name: "Ana López", ApproverID: ptr("B")})
	users.add(models.Profile{ID: "B", Name: "Beatriz Gómez"})

	_, err := svc.Submit("A", SubmitInput{
		Type:      models.TypeParental,
		StartDate: models.NewDateOnly(2024, time.June, 3),
		EndDate:   models.NewDateOnly(2024, time.June, 7),
	})
	require.NoError(t, err)

	notifications, err := leaves.ListNotifications("B")
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].IsRead)
}

func ptr(s string) *string {
	return &s
}
