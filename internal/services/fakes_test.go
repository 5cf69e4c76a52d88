package services

import (
	"fmt"
	"sort"

	"leave-manager/internal/models"
	"leave-manager/internal/repositories"
)

// fakeUserRepo - репозиторий профилей в памяти для тестов сервисов
type fakeUserRepo struct {
	profiles map[string]*models.Profile
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{profiles: make(map[string]*models.Profile)}
}

func (r *fakeUserRepo) add(p models.Profile) {
	copied := p
	r.profiles[p.ID] = &copied
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.Profile, error) {
	for _, p := range r.profiles {
		if p.Email == email {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(id string) (*models.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakeUserRepo) CreateProfile(profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = fmt.Sprintf("user-%d", len(r.profiles)+1)
	}
	if profile.Role == "" {
		profile.Role = models.RoleUser
	}
	r.add(*profile)
	profile.Password = ""
	return nil
}

func (r *fakeUserRepo) GetAll() ([]models.Profile, error) {
	result := make([]models.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *fakeUserRepo) UpdateProfile(userID string, data *models.ProfileUpdateDTO) error {
	p, ok := r.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	if data.Name != nil {
		p.Name = *data.Name
	}
	if data.Department != nil {
		p.Department = *data.Department
	}
	if data.Role != nil {
		p.Role = *data.Role
	}
	return nil
}

func (r *fakeUserRepo) AssignApprover(userID string, approverID *string) error {
	p, ok := r.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.ApproverID = approverID
	return nil
}

// fakeLeaveRepo - репозиторий заявок/балансов/уведомлений в памяти
type fakeLeaveRepo struct {
	users         *fakeUserRepo
	requests      []*models.LeaveRequest // В порядке вставки
	nextID        int64
	balances      map[string]*models.LeaveBalance
	notifications []models.Notification
}

func newFakeLeaveRepo(users *fakeUserRepo) *fakeLeaveRepo {
	return &fakeLeaveRepo{
		users:    users,
		nextID:   1,
		balances: make(map[string]*models.LeaveBalance),
	}
}

func (r *fakeLeaveRepo) GetBalance(userID string) (*models.LeaveBalance, error) {
	b, ok := r.balances[userID]
	if !ok {
		return nil, repositories.ErrBalanceNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeLeaveRepo) UpsertBalance(userID string, vacationDays, sickDays, personalDays int) error {
	r.balances[userID] = &models.LeaveBalance{
		UserID:       userID,
		VacationDays: vacationDays,
		SickDays:     sickDays,
		PersonalDays: personalDays,
	}
	return nil
}

func (r *fakeLeaveRepo) ListBalances() ([]models.UserBalanceView, error) {
	result := []models.UserBalanceView{}
	for id, p := range r.users.profiles {
		v := models.UserBalanceView{UserID: id, Name: p.Name, Email: p.Email, Department: p.Department}
		if b, ok := r.balances[id]; ok {
			v.VacationDays = b.VacationDays
			v.SickDays = b.SickDays
			v.PersonalDays = b.PersonalDays
		}
		result = append(result, v)
	}
	return result, nil
}

func (r *fakeLeaveRepo) SaveRequest(request *models.LeaveRequest) error {
	request.ID = r.nextID
	r.nextID++
	copied := *request
	r.requests = append(r.requests, &copied)
	return nil
}

func (r *fakeLeaveRepo) GetRequestByID(requestID int64) (*models.LeaveRequest, error) {
	for _, req := range r.requests {
		if req.ID == requestID {
			copied := *req
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeLeaveRepo) ListByOwner(ownerID string) ([]models.LeaveRequest, error) {
	result := []models.LeaveRequest{}
	for _, req := range r.requests {
		if req.UserID == ownerID {
			result = append(result, *req)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RequestedOn.After(result[j].RequestedOn)
	})
	return result, nil
}

func (r *fakeLeaveRepo) withOwner(req models.LeaveRequest) models.LeaveRequestWithOwner {
	enriched := models.LeaveRequestWithOwner{LeaveRequest: req}
	if p, ok := r.users.profiles[req.UserID]; ok {
		enriched.OwnerName = p.Name
		enriched.OwnerEmail = p.Email
		enriched.OwnerDepartment = p.Department
	}
	return enriched
}

func (r *fakeLeaveRepo) ListPendingByApprover(approverID string) ([]models.LeaveRequestWithOwner, error) {
	result := []models.LeaveRequestWithOwner{}
	for _, req := range r.requests {
		if req.ApproverID == approverID && req.Status == models.StatusPending {
			result = append(result, r.withOwner(*req))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RequestedOn.After(result[j].RequestedOn)
	})
	return result, nil
}

func (r *fakeLeaveRepo) UpdateDecision(requestID int64, status, approvedBy, comments string) error {
	for _, req := range r.requests {
		if req.ID == requestID {
			req.Status = status
			req.ApprovedBy = approvedBy
			req.Comments = comments
			return nil
		}
	}
	return repositories.ErrRequestNotFound
}

func (r *fakeLeaveRepo) ListApprovedOverlapping(from, to models.DateOnly) ([]models.LeaveRequestWithOwner, error) {
	result := []models.LeaveRequestWithOwner{}
	for _, req := range r.requests {
		if req.Status != models.StatusApproved {
			continue
		}
		if !req.StartDate.After(to) && !req.EndDate.Before(from) {
			result = append(result, r.withOwner(*req))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result, nil
}

func (r *fakeLeaveRepo) CreateNotification(notification *models.Notification) error {
	notification.ID = int64(len(r.notifications) + 1)
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *fakeLeaveRepo) ListNotifications(userID string) ([]models.Notification, error) {
	result := []models.Notification{}
	for _, n := range r.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (r *fakeLeaveRepo) MarkNotificationRead(notificationID int64, userID string) error {
	for i := range r.notifications {
		if r.notifications[i].ID == notificationID && r.notifications[i].UserID == userID {
			r.notifications[i].IsRead = true
			return nil
		}
	}
	return fmt.Errorf("уведомление %d не найдено", notificationID)
}
