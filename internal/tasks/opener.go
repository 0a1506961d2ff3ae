package tasks

import (
	"log"
	"sync"
	"time"

	"live_queue/internal/settings"
	"live_queue/internal/ws"
)

// OpenScheduler держит не более одного взведённого таймера автооткрытия
// публичной записи. Таймер перевзводится при старте процесса и после
// каждого изменения настроек, затрагивающего время или флаг автооткрытия.
type OpenScheduler struct {
	mu    sync.Mutex
	timer *time.Timer
}

// Opener — планировщик автооткрытия на процесс.
var Opener = &OpenScheduler{}

// Reschedule снимает текущий таймер и, если автооткрытие включено и
// время ещё впереди, взводит новый на этот момент. Ошибки чтения
// настроек логируются: пропущенное автооткрытие администратор видит по
// устаревшим настройкам и повторяет сохранением.
func (sc *OpenScheduler) Reschedule() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.timer != nil {
		sc.timer.Stop()
		sc.timer = nil
	}

	s, err := settings.GetOrCreate()
	if err != nil {
		log.Println("Ошибка чтения настроек при планировании автооткрытия:", err)
		return
	}
	if !s.AutoOpenEnabled || s.ScheduledOpenTime == nil {
		return
	}

	delay := time.Until(*s.ScheduledOpenTime)
	if delay <= 0 {
		return
	}

	sc.timer = time.AfterFunc(delay, sc.fire)
	log.Printf("Автооткрытие записи запланировано на %s", s.ScheduledOpenTime.Format(time.RFC3339))
}

// fire срабатывает ровно один раз на взведение. Настройки перечитываются:
// между взведением и срабатыванием администратор мог выключить
// автооткрытие. Сброс AutoOpenEnabled исключает повторное срабатывание
// от того же снимка настроек.
func (sc *OpenScheduler) fire() {
	sc.mu.Lock()
	sc.timer = nil
	sc.mu.Unlock()

	s, err := settings.GetOrCreate()
	if err != nil {
		log.Println("Ошибка чтения настроек при автооткрытии:", err)
		return
	}
	if !s.AutoOpenEnabled {
		log.Println("Автооткрытие отменено: флаг снят до срабатывания")
		return
	}

	s.PublicRegistrationEnabled = true
	s.AutoOpenEnabled = false
	if err := settings.Save(s); err != nil {
		log.Println("Ошибка записи настроек при автооткрытии:", err)
		return
	}
	log.Println("Публичная запись в очередь открыта по расписанию")

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: "registration_opened",
		Data: map[string]interface{}{
			"opened_at": time.Now().Format(time.RFC3339),
		},
	})
}

// Cancel снимает таймер, не трогая настройки. Вызывается при остановке.
func (sc *OpenScheduler) Cancel() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.timer != nil {
		sc.timer.Stop()
		sc.timer = nil
	}
}

// Pending сообщает, взведён ли таймер сейчас.
func (sc *OpenScheduler) Pending() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.timer != nil
}
