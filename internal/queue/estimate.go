package queue

import (
	"time"

	"live_queue/internal/models"
	"live_queue/internal/storage"
)

// EstimatedWaitMinutes — чистая оценка ожидания: (ordinal - 1) минут на
// запись, ноль для головы очереди. Никогда не отрицательна.
func EstimatedWaitMinutes(e *models.QueueEntry, s *models.SystemSettings) int {
	ahead := e.Ordinal - 1
	if ahead < 0 {
		ahead = 0
	}
	return ahead * s.MinutesPerEntry
}

// EstimatedStartTime — ожидаемое время вызова: отсчёт идёт от времени
// последнего завершённого вызова, а до первого вызова — от начала приёма.
func EstimatedStartTime(e *models.QueueEntry, s *models.SystemSettings, now time.Time) time.Time {
	base := now
	if s.LastCompletedTime != nil {
		base = *s.LastCompletedTime
	} else if s.SessionStartTime != nil {
		base = *s.SessionStartTime
	}
	return base.Add(time.Duration(EstimatedWaitMinutes(e, s)) * time.Minute)
}

// PeopleAhead — суммарное число людей в активных записях впереди.
// Для записи в обслуживании впереди никого нет.
func PeopleAhead(e *models.QueueEntry) (int, error) {
	if e.Status == models.StatusProcessing {
		return 0, nil
	}
	var entries []models.QueueEntry
	if err := storage.DB.
		Where("status IN ? AND ordinal < ?", models.ActiveStatuses, e.Ordinal).
		Find(&entries).Error; err != nil {
		return 0, errInternal("Ошибка подсчёта людей впереди", err)
	}
	total := 0
	for _, ahead := range entries {
		total += ahead.PartySize()
	}
	return total, nil
}

// SessionEndEstimate — обещанное время окончания приёма для всей сессии.
// Фиксируется один раз при открытии очереди (см. handlers по настройкам)
// и дальше не пересчитывается: это обещание всем записавшимся, а не
// живой обратный отсчёт.
func SessionEndEstimate(s *models.SystemSettings) *time.Time {
	if s.SessionStartTime == nil {
		return nil
	}
	end := s.SessionStartTime.Add(time.Duration(s.TotalPartyCount*s.MinutesPerEntry) * time.Minute)
	return &end
}
