package queue

import (
	"log"

	"live_queue/internal/models"
	"live_queue/internal/storage"
)

// Repair восстанавливает плотную нумерацию активных записей: после
// успешного вызова их ordinal составляют ровно 1..K без дыр и повторов.
//
// Операция идемпотентна и устойчива: записи читаются в порядке текущего
// ordinal (при равенстве — по id, то есть по порядку создания), поэтому
// повторный Repair ничего не меняет, а ручная перестановка администратора
// никогда не откатывается. Вызывается защитно вокруг каждой составной
// операции: промежуточные нарушения плотности при гонках допустимы,
// лишь бы каждый значимый путь чтения шёл после Repair.
func Repair() error {
	var entries []models.QueueEntry
	if err := storage.DB.
		Where("status IN ?", models.ActiveStatuses).
		Order("ordinal ASC, id ASC").
		Find(&entries).Error; err != nil {
		return errInternal("Ошибка чтения активных записей", err)
	}

	for i, e := range entries {
		want := i + 1
		if e.Ordinal == want {
			continue
		}
		if err := storage.DB.Model(&models.QueueEntry{}).
			Where("id = ?", e.ID).
			UpdateColumn("ordinal", want).Error; err != nil {
			return errInternal("Ошибка перенумерации записи", err)
		}
	}
	return nil
}

// ActiveCount возвращает текущее число активных записей (K).
func ActiveCount() (int, error) {
	var count int64
	if err := storage.DB.Model(&models.QueueEntry{}).
		Where("status IN ?", models.ActiveStatuses).
		Count(&count).Error; err != nil {
		return 0, errInternal("Ошибка подсчёта активных записей", err)
	}
	return int(count), nil
}

// maxActiveOrdinal возвращает наибольший ordinal среди активных записей
// (0, если очередь пуста).
func maxActiveOrdinal() (int, error) {
	var max int
	row := storage.DB.Model(&models.QueueEntry{}).
		Where("status IN ?", models.ActiveStatuses).
		Select("COALESCE(MAX(ordinal),0)").Row()
	if err := row.Scan(&max); err != nil {
		return 0, errInternal("Ошибка поиска максимального ordinal", err)
	}
	return max, nil
}

// nextQueueNumber выдаёт следующий номер талона. Считается по всем
// записям, включая удалённые, чтобы номера никогда не переиспользовались.
func nextQueueNumber() (int, error) {
	var max int
	row := storage.DB.Model(&models.QueueEntry{}).Unscoped().
		Select("COALESCE(MAX(queue_number),0)").Row()
	if err := row.Scan(&max); err != nil {
		return 0, errInternal("Ошибка поиска максимального номера талона", err)
	}
	return max + 1, nil
}

// warnDuplicateNumbers логирует дубликаты номеров талонов. По требованиям
// дубликат — допустимый конфликт: он фиксируется в логе, но никогда не
// приводит к отказу операции.
func warnDuplicateNumbers(number int) {
	var count int64
	if err := storage.DB.Model(&models.QueueEntry{}).
		Where("queue_number = ?", number).
		Count(&count).Error; err != nil {
		return
	}
	if count > 1 {
		log.Printf("Внимание: номер талона %d выдан %d раз (CONFLICT, допускается)", number, count)
	}
}
