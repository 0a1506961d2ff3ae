package tasks

import (
	"log"
	"time"

	"live_queue/internal/models"
	"live_queue/internal/queue"
	"live_queue/internal/storage"

	"github.com/robfig/cron/v3"
)

// RepairSweep — страховочный прогон Repair. Операции над очередью не
// транзакционны, при гонках возможны временные дыры в нумерации;
// периодический прогон гарантирует, что они не живут дольше пяти минут.
func RepairSweep() {
	if err := queue.Repair(); err != nil {
		log.Println("Ошибка фонового прогона Repair:", err)
	}
}

// CleanOldEntries удаляет завершённые и отменённые записи старше 30 дней.
func CleanOldEntries() {
	threshold := time.Now().Add(-30 * 24 * time.Hour)
	res := storage.DB.Unscoped().
		Where("status IN ? AND updated_at < ?",
			[]string{models.StatusCompleted, models.StatusCancelled}, threshold).
		Delete(&models.QueueEntry{})
	if res.Error != nil {
		log.Println("Ошибка при удалении устаревших записей:", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("Удалено устаревших записей: %d", res.RowsAffected)
	}
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler() *cron.Cron {
	c := cron.New(cron.WithSeconds())

	// Страховочный Repair каждые 5 минут.
	_, err := c.AddFunc("0 */5 * * * *", RepairSweep)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи RepairSweep:", err)
	}

	// Очистка старых записей каждый день в 03:00.
	_, err = c.AddFunc("0 0 3 * * *", CleanOldEntries)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи CleanOldEntries:", err)
	}

	c.Start()
	log.Println("Cron-планировщик запущен.")
	return c
}
