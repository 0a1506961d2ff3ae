package settings

import (
	"errors"
	"time"

	"live_queue/internal/models"
	"live_queue/internal/storage"

	"gorm.io/gorm"
)

// DefaultMaxOrdinal — вместимость очереди по умолчанию.
const DefaultMaxOrdinal = 200

// GetOrCreate возвращает единственную запись настроек, создавая её с
// значениями по умолчанию при первом обращении.
func GetOrCreate() (*models.SystemSettings, error) {
	var s models.SystemSettings
	err := storage.DB.Order("id ASC").First(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	s = models.SystemSettings{
		MinutesPerEntry: 10,
		MaxOrdinal:      DefaultMaxOrdinal,
	}
	if err := storage.DB.Create(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Save перезаписывает запись настроек целиком. Дисциплина записи: каждую
// группу полей меняет ровно один вызывающий (handlers — по запросу
// администратора, queue — счётчики, tasks — флаг автооткрытия).
func Save(s *models.SystemSettings) error {
	return storage.DB.Save(s).Error
}

// StampLastCompleted обновляет время последнего завершённого вызова и,
// при необходимости, текущий обслуживаемый номер талона.
func StampLastCompleted(queueNumber int, at time.Time) error {
	s, err := GetOrCreate()
	if err != nil {
		return err
	}
	s.LastCompletedTime = &at
	if queueNumber > 0 {
		s.CurrentQueueNumber = queueNumber
	}
	return Save(s)
}

// AddPartyCount накапливает суммарное число людей за сессию.
func AddPartyCount(delta int) error {
	s, err := GetOrCreate()
	if err != nil {
		return err
	}
	s.TotalPartyCount += delta
	return Save(s)
}

// ResetCounters сбрасывает счётчики после полной очистки очереди.
func ResetCounters() error {
	s, err := GetOrCreate()
	if err != nil {
		return err
	}
	s.CurrentQueueNumber = 0
	s.TotalPartyCount = 0
	if s.MaxOrdinal <= 0 {
		s.MaxOrdinal = DefaultMaxOrdinal
	}
	return Save(s)
}
