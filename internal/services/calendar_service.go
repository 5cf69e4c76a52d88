package services

import (
	"fmt"
	"sort"
	"time"

	"leave-manager/internal/models"
)

// EventsOnDate фильтрует события до утвержденных, чей диапазон содержит дату
// (границы включительно). Чистая функция, порядок входа сохраняется.
func EventsOnDate(events []models.LeaveRequestWithOwner, date models.DateOnly) []models.LeaveRequestWithOwner {
	result := []models.LeaveRequestWithOwner{}
	for _, ev := range events {
		if ev.Status != models.StatusApproved {
			continue
		}
		if ev.ContainsDate(date) {
			result = append(result, ev)
		}
	}
	return result
}

// EventsInWindow фильтрует события до утвержденных, попадающих в окно [from, from+days):
// начало или окончание после from, и начало раньше from+days.
// Сортировка по дате начала по возрастанию, стабильная (при равных датах
// начала сохраняется порядок хранения).
func EventsInWindow(events []models.LeaveRequestWithOwner, from models.DateOnly, days int) []models.LeaveRequestWithOwner {
	windowEnd := from.AddDays(days)
	result := []models.LeaveRequestWithOwner{}
	for _, ev := range events {
		if ev.Status != models.StatusApproved {
			continue
		}
		if (ev.StartDate.After(from) || ev.EndDate.After(from)) && ev.StartDate.Before(windowEnd) {
			result = append(result, ev)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result
}

// CalendarServiceInterface определяет методы для календаря доступности команды
type CalendarServiceInterface interface {
	WhoIsOut(date models.DateOnly) ([]models.LeaveRequestWithOwner, error)
	Upcoming(from models.DateOnly, days int) ([]models.LeaveRequestWithOwner, error)
	MonthMarkers(year int, month time.Month) (map[string]int, error)
	ApprovedInRange(from, to models.DateOnly) ([]models.LeaveRequestWithOwner, error)
}

// CalendarService - read-only проекция утвержденных заявок для календаря
type CalendarService struct {
	leaveRepo LeaveRepositoryInterface
}

// NewCalendarService создает новый экземпляр CalendarService
func NewCalendarService(leaveRepo LeaveRepositoryInterface) *CalendarService {
	return &CalendarService{leaveRepo: leaveRepo}
}

// WhoIsOut возвращает утвержденные отпуска, активные в указанную дату
func (s *CalendarService) WhoIsOut(date models.DateOnly) ([]models.LeaveRequestWithOwner, error) {
	events, err := s.leaveRepo.ListApprovedOverlapping(date, date)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения отпусков на дату %s: %w", date, err)
	}
	return EventsOnDate(events, date), nil
}

// Upcoming возвращает утвержденные отпуска в окне [from, from+days)
func (s *CalendarService) Upcoming(from models.DateOnly, days int) ([]models.LeaveRequestWithOwner, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: размер окна должен быть положительным", ErrValidation)
	}
	events, err := s.leaveRepo.ListApprovedOverlapping(from, from.AddDays(days))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения предстоящих отпусков: %w", err)
	}
	return EventsInWindow(events, from, days), nil
}

// ApprovedInRange возвращает утвержденные заявки, пересекающие диапазон [from, to]
// (для сводных отчетов)
func (s *CalendarService) ApprovedInRange(from, to models.DateOnly) ([]models.LeaveRequestWithOwner, error) {
	return s.leaveRepo.ListApprovedOverlapping(from, to)
}

// MonthMarkers возвращает количество утвержденных отпусков на каждый день месяца
// (метки для календарной сетки); ключ - дата в формате YYYY-MM-DD
func (s *CalendarService) MonthMarkers(year int, month time.Month) (map[string]int, error) {
	first := models.NewDateOnly(year, month, 1)
	last := first.AddDays(first.Time.AddDate(0, 1, -1).Day() - 1)

	events, err := s.leaveRepo.ListApprovedOverlapping(first, last)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения отпусков за %d-%02d: %w", year, month, err)
	}

	markers := make(map[string]int)
	for d := first; !d.After(last); d = d.AddDays(1) {
		count := len(EventsOnDate(events, d))
		if count > 0 {
			markers[d.String()] = count
		}
	}
	return markers, nil
}
