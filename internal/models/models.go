package models

import (
	"time"

	"gorm.io/gorm"
)

// Статусы записи в очереди.
const (
	StatusWaiting    = "waiting"    // Ожидает вызова
	StatusProcessing = "processing" // Обслуживается прямо сейчас
	StatusCompleted  = "completed"  // Обслуживание завершено
	StatusCancelled  = "cancelled"  // Запись отменена
)

// ActiveStatuses — статусы, которые участвуют в нумерации (ordinal 1..K).
var ActiveStatuses = []string{StatusWaiting, StatusProcessing}

// ValidStatus проверяет, что строка является допустимым статусом.
func ValidStatus(s string) bool {
	switch s {
	case StatusWaiting, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Admin struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
}

// QueueEntry — одна запись посетителя в живой очереди.
type QueueEntry struct {
	gorm.Model
	QueueNumber int        `gorm:"index;not null"`                 // Номер талона, растёт монотонно и не переиспользуется
	Ordinal     int        `gorm:"index;not null"`                 // Позиция среди активных записей (1 = следующий)
	Status      string     `gorm:"index;not null;default:'waiting'"` // waiting | processing | completed | cancelled
	CompletedAt *time.Time // Время завершения обслуживания (nil, пока не completed)

	// Поля анкеты посетителя — ядро их не интерпретирует, только хранит.
	Name       string `gorm:"not null"`
	Phone      string
	Note       string
	Companions int `gorm:"default:0"` // Количество сопровождающих
}

// IsActive сообщает, занимает ли запись место в нумерации.
func (e *QueueEntry) IsActive() bool {
	return e.Status == StatusWaiting || e.Status == StatusProcessing
}

// PartySize — сколько человек стоит за одной записью.
func (e *QueueEntry) PartySize() int {
	return 1 + e.Companions
}

// SystemSettings — единственная запись с настройками системы.
// Создаётся лениво при первом обращении (см. internal/settings).
type SystemSettings struct {
	gorm.Model
	SessionStartTime  *time.Time // Начало приёма; по умолчанию берётся из cycledate при открытии очереди
	LastCompletedTime *time.Time // Время последнего завершённого вызова
	MinutesPerEntry   int        `gorm:"default:10"` // Минут на одну запись, 1..120
	ScheduledOpenTime *time.Time // Запланированное время открытия публичной записи
	AutoOpenEnabled   bool       `gorm:"default:false"`

	MaxOrdinal      int `gorm:"default:200"` // Вместимость очереди (по числу активных записей)
	TotalPartyCount int `gorm:"default:0"`   // Суммарное число людей за все регистрации сессии

	IsQueueOpen               bool `gorm:"default:false"`
	PublicRegistrationEnabled bool `gorm:"default:false"`
	SimplifiedMode            bool `gorm:"default:false"`

	CurrentQueueNumber int        `gorm:"default:0"` // Номер талона, который обслуживается сейчас
	EstimatedEndTime   *time.Time // Обещанное время окончания приёма, фиксируется при открытии

	UpdatedBy uint // ID администратора, сделавшего последнее изменение
}
