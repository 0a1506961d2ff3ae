package queue

import (
	"errors"
	"time"

	"live_queue/internal/models"
	"live_queue/internal/settings"
	"live_queue/internal/storage"

	"gorm.io/gorm"
)

// RegisterInput — анкета посетителя при записи в очередь.
type RegisterInput struct {
	Name       string
	Phone      string
	Note       string
	Companions int
}

// Register создаёт новую запись в хвосте очереди: номер талона —
// максимальный выданный плюс один, позиция — число активных плюс один.
// Вместимость проверяется по числу активных записей, а не по номеру
// талона: после удалений номера разрежены и для лимита непригодны.
func Register(in RegisterInput) (*models.QueueEntry, error) {
	if in.Name == "" {
		return nil, errValidation("name", "Имя посетителя обязательно")
	}
	if in.Companions < 0 {
		return nil, errValidation("companions", "Число сопровождающих не может быть отрицательным")
	}

	s, err := settings.GetOrCreate()
	if err != nil {
		return nil, errInternal("Ошибка чтения настроек", err)
	}

	active, err := ActiveCount()
	if err != nil {
		return nil, err
	}
	if active+1 > s.MaxOrdinal {
		return nil, errCapacity("Очередь заполнена, запись невозможна")
	}

	number, err := nextQueueNumber()
	if err != nil {
		return nil, err
	}

	entry := models.QueueEntry{
		QueueNumber: number,
		Ordinal:     active + 1,
		Status:      models.StatusWaiting,
		Name:        in.Name,
		Phone:       in.Phone,
		Note:        in.Note,
		Companions:  in.Companions,
	}
	if err := storage.DB.Create(&entry).Error; err != nil {
		return nil, errInternal("Ошибка создания записи в очереди", err)
	}

	warnDuplicateNumbers(number)

	if err := settings.AddPartyCount(entry.PartySize()); err != nil {
		return nil, errInternal("Ошибка обновления счётчика людей", err)
	}

	if err := Repair(); err != nil {
		return nil, err
	}
	return &entry, nil
}

// CallNext завершает обслуживание головы очереди (ordinal = 1) и
// продвигает всех остальных на одну позицию вперёд. Возвращает
// завершённую запись и новую голову очереди (nil, если очередь опустела).
func CallNext() (*models.QueueEntry, *models.QueueEntry, error) {
	if err := Repair(); err != nil {
		return nil, nil, err
	}

	var head models.QueueEntry
	if err := storage.DB.
		Where("status IN ? AND ordinal = 1", models.ActiveStatuses).
		First(&head).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errNoActive()
		}
		return nil, nil, errInternal("Ошибка поиска головы очереди", err)
	}

	now := time.Now()
	head.Status = models.StatusCompleted
	head.CompletedAt = &now
	if err := storage.DB.Save(&head).Error; err != nil {
		return nil, nil, errInternal("Ошибка завершения записи", err)
	}

	if err := settings.StampLastCompleted(head.QueueNumber, now); err != nil {
		return nil, nil, errInternal("Ошибка обновления настроек", err)
	}

	// Продвигаем всех остальных активных одним условным апдейтом.
	if err := storage.DB.Model(&models.QueueEntry{}).
		Where("status IN ? AND id <> ?", models.ActiveStatuses, head.ID).
		UpdateColumn("ordinal", gorm.Expr("ordinal - 1")).Error; err != nil {
		return nil, nil, errInternal("Ошибка сдвига очереди", err)
	}

	if err := Repair(); err != nil {
		return nil, nil, err
	}

	var newHead models.QueueEntry
	err := storage.DB.
		Where("status IN ? AND ordinal = 1", models.ActiveStatuses).
		First(&newHead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &head, nil, nil
	}
	if err != nil {
		return nil, nil, errInternal("Ошибка поиска новой головы очереди", err)
	}
	return &head, &newHead, nil
}

// ChangeStatus переводит запись в новый статус по машине состояний:
// waiting → processing → completed, из активных — в cancelled,
// из терминальных — обратно в waiting (в хвост очереди, не на старое
// место: прежний ordinal терминальной записи — исторический шум).
func ChangeStatus(id uint, newStatus string) (*models.QueueEntry, error) {
	if !models.ValidStatus(newStatus) {
		return nil, errValidation("status", "Недопустимый статус: "+newStatus)
	}

	var entry models.QueueEntry
	if err := storage.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Запись в очереди не найдена")
		}
		return nil, errInternal("Ошибка загрузки записи", err)
	}

	if entry.Status == newStatus {
		return &entry, nil
	}
	if !transitionAllowed(entry.Status, newStatus) {
		return nil, errValidation("status", "Переход "+entry.Status+" → "+newStatus+" запрещён")
	}

	now := time.Now()
	wasTerminal := !entry.IsActive()

	if entry.Status == models.StatusCompleted {
		entry.CompletedAt = nil
	}

	switch newStatus {
	case models.StatusCompleted:
		entry.CompletedAt = &now
		if err := settings.StampLastCompleted(0, now); err != nil {
			return nil, errInternal("Ошибка обновления настроек", err)
		}
	case models.StatusWaiting:
		if wasTerminal {
			max, err := maxActiveOrdinal()
			if err != nil {
				return nil, err
			}
			entry.Ordinal = max + 1
		}
	}
	entry.Status = newStatus

	if err := storage.DB.Save(&entry).Error; err != nil {
		return nil, errInternal("Ошибка сохранения записи", err)
	}

	if err := Repair(); err != nil {
		return nil, err
	}
	return &entry, nil
}

// transitionAllowed кодирует машину состояний записи.
func transitionAllowed(from, to string) bool {
	switch from {
	case models.StatusWaiting:
		return to == models.StatusProcessing || to == models.StatusCompleted || to == models.StatusCancelled
	case models.StatusProcessing:
		return to == models.StatusCompleted || to == models.StatusCancelled
	case models.StatusCompleted, models.StatusCancelled:
		return to == models.StatusWaiting
	}
	return false
}

// Reorder передвигает активную запись на указанную позицию. Сдвигается
// только затронутый диапазон, сама запись из массового сдвига исключена
// и выставляется напрямую, чтобы не сдвинуть её дважды.
func Reorder(id uint, newOrdinal int) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	if err := storage.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Запись в очереди не найдена")
		}
		return nil, errInternal("Ошибка загрузки записи", err)
	}
	if !entry.IsActive() {
		return nil, errValidation("status", "Передвигать можно только активные записи")
	}

	if newOrdinal == entry.Ordinal {
		return &entry, nil
	}

	active, err := ActiveCount()
	if err != nil {
		return nil, err
	}
	if newOrdinal < 1 || newOrdinal > active {
		return nil, errOutOfRange("Позиция вне диапазона очереди")
	}

	current := entry.Ordinal
	if newOrdinal > current {
		// Вниз: всё между старой и новой позицией поднимается на единицу.
		err = storage.DB.Model(&models.QueueEntry{}).
			Where("status IN ? AND ordinal > ? AND ordinal <= ? AND id <> ?",
				models.ActiveStatuses, current, newOrdinal, entry.ID).
			UpdateColumn("ordinal", gorm.Expr("ordinal - 1")).Error
	} else {
		// Вверх: всё между новой и старой позицией опускается на единицу.
		err = storage.DB.Model(&models.QueueEntry{}).
			Where("status IN ? AND ordinal >= ? AND ordinal < ? AND id <> ?",
				models.ActiveStatuses, newOrdinal, current, entry.ID).
			UpdateColumn("ordinal", gorm.Expr("ordinal + 1")).Error
	}
	if err != nil {
		return nil, errInternal("Ошибка сдвига диапазона", err)
	}

	entry.Ordinal = newOrdinal
	if err := storage.DB.Model(&models.QueueEntry{}).
		Where("id = ?", entry.ID).
		UpdateColumn("ordinal", newOrdinal).Error; err != nil {
		return nil, errInternal("Ошибка перестановки записи", err)
	}

	if err := Repair(); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeletedSummary — краткая сводка об удалённой записи.
type DeletedSummary struct {
	ID          uint   `json:"id"`
	QueueNumber int    `json:"queue_number"`
	Ordinal     int    `json:"ordinal"`
	Status      string `json:"status"`
	Name        string `json:"name"`
}

// Delete удаляет запись. Позиции стягиваются только у активных записей
// выше удалённой; ordinal терминальных записей не трогается.
func Delete(id uint) (*DeletedSummary, error) {
	var entry models.QueueEntry
	if err := storage.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Запись в очереди не найдена")
		}
		return nil, errInternal("Ошибка загрузки записи", err)
	}

	if err := storage.DB.Delete(&entry).Error; err != nil {
		return nil, errInternal("Ошибка удаления записи", err)
	}

	if entry.IsActive() {
		if err := storage.DB.Model(&models.QueueEntry{}).
			Where("status IN ? AND ordinal > ?", models.ActiveStatuses, entry.Ordinal).
			UpdateColumn("ordinal", gorm.Expr("ordinal - 1")).Error; err != nil {
			return nil, errInternal("Ошибка стягивания очереди", err)
		}
	}

	if err := Repair(); err != nil {
		return nil, err
	}

	return &DeletedSummary{
		ID:          entry.ID,
		QueueNumber: entry.QueueNumber,
		Ordinal:     entry.Ordinal,
		Status:      entry.Status,
		Name:        entry.Name,
	}, nil
}

// ClearAll полностью очищает очередь и сбрасывает счётчики сессии.
// Записи удаляются жёстко, включая ранее удалённые по одной, поэтому
// счётчик берётся из результата удаления. Нумерация талонов начинается
// заново.
func ClearAll() (int64, error) {
	res := storage.DB.Unscoped().
		Where("1 = 1").
		Delete(&models.QueueEntry{})
	if res.Error != nil {
		return 0, errInternal("Ошибка очистки очереди", res.Error)
	}

	if err := settings.ResetCounters(); err != nil {
		return 0, errInternal("Ошибка сброса счётчиков", err)
	}
	return res.RowsAffected, nil
}

// GetByID загружает одну запись.
func GetByID(id uint) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	if err := storage.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Запись в очереди не найдена")
		}
		return nil, errInternal("Ошибка загрузки записи", err)
	}
	return &entry, nil
}

// List возвращает страницу записей. Пустой фильтр статуса означает
// активные записи (waiting и processing) в порядке позиций.
func List(status string, page, limit int) ([]models.QueueEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	// Фильтр собирается заново для каждого запроса: цепочку gorm нельзя
	// переиспользовать после Count.
	order := "ordinal ASC, id ASC"
	filtered := func() *gorm.DB {
		q := storage.DB.Model(&models.QueueEntry{})
		if status == "" {
			return q.Where("status IN ?", models.ActiveStatuses)
		}
		return q.Where("status = ?", status)
	}
	switch status {
	case "", models.StatusWaiting, models.StatusProcessing:
	case models.StatusCompleted, models.StatusCancelled:
		order = "updated_at DESC"
	default:
		return nil, 0, errValidation("status", "Недопустимый статус: "+status)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, errInternal("Ошибка подсчёта записей", err)
	}

	var entries []models.QueueEntry
	if err := filtered().Order(order).
		Offset((page - 1) * limit).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, errInternal("Ошибка загрузки списка записей", err)
	}
	return entries, total, nil
}
