package queue

import (
	"fmt"
	"log"
	"os"
	"testing"

	"live_queue/internal/models"
	"live_queue/internal/settings"
	"live_queue/internal/storage"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func setupTestDB(t *testing.T) {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		if err := godotenv.Load("../../.env"); err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectTestingDatabase()
	storage.DB.Exec("TRUNCATE TABLE admins, queue_entries, system_settings RESTART IDENTITY CASCADE;")

	if err := storage.DB.AutoMigrate(&models.Admin{}, &models.QueueEntry{}, &models.SystemSettings{}); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}
}

// registerN записывает n посетителей и возвращает их.
func registerN(t *testing.T, n int) []*models.QueueEntry {
	entries := make([]*models.QueueEntry, 0, n)
	for i := 0; i < n; i++ {
		e, err := Register(RegisterInput{Name: fmt.Sprintf("Посетитель %d", i+1)})
		assert.NoError(t, err, "Ошибка записи посетителя")
		entries = append(entries, e)
	}
	return entries
}

// activeOrdinals возвращает ordinals активных записей в порядке позиций.
func activeOrdinals(t *testing.T) []int {
	var entries []models.QueueEntry
	err := storage.DB.
		Where("status IN ?", models.ActiveStatuses).
		Order("ordinal ASC, id ASC").
		Find(&entries).Error
	assert.NoError(t, err)
	ordinals := make([]int, 0, len(entries))
	for _, e := range entries {
		ordinals = append(ordinals, e.Ordinal)
	}
	return ordinals
}

func assertDense(t *testing.T) {
	ordinals := activeOrdinals(t)
	for i, o := range ordinals {
		assert.Equal(t, i+1, o, "Нумерация активных записей должна быть плотной 1..K")
	}
}

func TestRegisterAssignsDenseOrdinals(t *testing.T) {
	setupTestDB(t)

	entries := registerN(t, 5)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Ordinal, "Новая запись встаёт в хвост")
		assert.Equal(t, i+1, e.QueueNumber, "Номера талонов растут монотонно")
		assert.Equal(t, models.StatusWaiting, e.Status)
	}
	assertDense(t)

	s, err := settings.GetOrCreate()
	assert.NoError(t, err)
	assert.Equal(t, 5, s.TotalPartyCount, "Каждая запись без сопровождающих — один человек")
}

func TestRegisterCapacityExceeded(t *testing.T) {
	setupTestDB(t)

	s, err := settings.GetOrCreate()
	assert.NoError(t, err)
	s.MaxOrdinal = 2
	assert.NoError(t, settings.Save(s))

	registerN(t, 2)
	_, err = Register(RegisterInput{Name: "Лишний"})
	assert.Error(t, err)
	assert.Equal(t, KindCapacity, KindOf(err), "Вместимость проверяется по числу активных записей")

	// Завершённые записи место не занимают.
	_, _, err = CallNext()
	assert.NoError(t, err)
	_, err = Register(RegisterInput{Name: "Теперь можно"})
	assert.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	setupTestDB(t)

	_, err := Register(RegisterInput{Name: ""})
	assert.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = Register(RegisterInput{Name: "Гость", Companions: -1})
	assert.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCallNextAdvancesQueue(t *testing.T) {
	setupTestDB(t)

	entries := registerN(t, 5)

	completed, newHead, err := CallNext()
	assert.NoError(t, err)
	assert.Equal(t, entries[0].ID, completed.ID, "Завершается голова очереди")
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	assert.NotNil(t, newHead, "Бывшая вторая запись становится головой")
	assert.Equal(t, entries[1].ID, newHead.ID)
	assert.Equal(t, 1, newHead.Ordinal)

	// Все остальные продвинулись ровно на одну позицию.
	assert.Equal(t, []int{1, 2, 3, 4}, activeOrdinals(t))

	s, err := settings.GetOrCreate()
	assert.NoError(t, err)
	assert.Equal(t, completed.QueueNumber, s.CurrentQueueNumber)
	assert.NotNil(t, s.LastCompletedTime)
}

func TestCallNextEmptyQueue(t *testing.T) {
	setupTestDB(t)

	_, _, err := CallNext()
	assert.Error(t, err)
	assert.Equal(t, KindNoActiveEntries, KindOf(err))
}

func TestCallNextDrainsToEmpty(t *testing.T) {
	setupTestDB(t)

	registerN(t, 2)

	_, newHead, err := CallNext()
	assert.NoError(t, err)
	assert.NotNil(t, newHead)

	completed, newHead, err := CallNext()
	assert.NoError(t, err)
	assert.NotNil(t, completed)
	assert.Nil(t, newHead, "После последнего вызова головы нет")

	_, _, err = CallNext()
	assert.Error(t, err)
	assert.Equal(t, KindNoActiveEntries, KindOf(err))
}

func TestRepairClosesGapsStably(t *testing.T) {
	setupTestDB(t)

	entries := registerN(t, 4)

	// Искусственно портим нумерацию: дыра и сдвиг, но относительный
	// порядок различим по текущим ordinal.
	storage.DB.Model(&models.QueueEntry{}).Where("id = ?", entries[1].ID).UpdateColumn("ordinal", 5)
	storage.DB.Model(&models.QueueEntry{}).Where("id = ?", entries[2].ID).UpdateColumn("ordinal", 7)
	storage.DB.Model(&models.QueueEntry{}).Where("id = ?", entries[3].ID).UpdateColumn("ordinal", 9)

	assert.NoError(t, Repair())
	assert.Equal(t, []int{1, 2, 3, 4}, activeOrdinals(t))

	// Относительный порядок не изменился.
	var repaired []models.QueueEntry
	storage.DB.Where("status IN ?", models.ActiveStatuses).Order("ordinal ASC").Find(&repaired)
	for i, e := range repaired {
		assert.Equal(t, entries[i].ID, e.ID, "Repair не переставляет записи")
	}

	// Повторный Repair ничего не меняет.
	assert.NoError(t, Repair())
	assert.Equal(t, []int{1, 2, 3, 4}, activeOrdinals(t))
}

func TestRepairIgnoresTerminalOrdinals(t *testing.T) {
	setupTestDB(t)

	entries := registerN(t, 3)
	_, err := ChangeStatus(entries[1].ID, models.StatusCancelled)
	assert.NoError(t, err)

	assert.Equal(t, []int{1, 2}, activeOrdinals(t))

	// Ordinal отменённой записи — исторический шум, Repair его не трогает.
	var cancelled models.QueueEntry
	storage.DB.First(&cancelled, entries[1].ID)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
}

func TestReorderRoundTrip(t *testing.T) {
	setupTestDB(t)

	entries := registerN(t, 5)

	snapshot := func() map[uint]int {
		m := make(map[uint]int)
		var all []models.QueueEntry
		storage.DB.Where("status IN ?", models.ActiveStatuses).Find(&all)
		for _, e := range all {
			m[e.ID] = e.Ordinal
		}
		return m
	}
	before := snapshot()

	// Вниз: 2 → 4.
	moved, err := Reorder(entries[1].ID, 4)
	assert.NoError(t, err)
	assert.Equal(t, 4, moved.Ordinal)
	assertDense(t)

	// И обратно: 4 → 2. Исходная расстановка восстановлена полностью.
	_, err = Reorder(entries[1].ID, 2)
	assert.NoError(t, err)
	assertDense(t)
	assert.Equal(t, before, snapshot(), "Перестановка туда и обратно восстанавливает все позиции")
}

func TestReorderMoveUp(t *testing.T) {
	setupTestDB(t)

	entries := registerN(t, 4)

	// Запись с позиции 4 — в голову; бывшие 1..3 сдвигаются в 2..4.
	moved, err := Reorder(entries[3].ID, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, moved.Ordinal)

	var all []models.QueueEntry
	storage.DB.Where("status IN ?", models.ActiveStatuses).Order("ordinal ASC").Find(&all)
	assert.Equal(t, entries[3].ID, all[0].ID)
	assert.Equal(t, entries[0].ID, all[1].ID)
	assert.Equal(t, entries[1].ID, all[2].ID)
	assert.Equal(t, entries[2].ID, all[3].ID)
	assertDense(t)
}

func TestReorderErrors(t *testing.T) {
	setupTestDB(t)

	entries := registerN(t, 3)

	_, err := Reorder(9999, 1)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = Reorder(entries[0].ID, 4)
	assert.Equal(t, KindOutOfRange, KindOf(err))

	_, err = Reorder(entries[0].ID, 0)
	assert.Equal(t, KindOutOfRange, KindOf(err))

	// Перестановка на то же место — no-op.
	same, err := Reorder(entries[0].ID, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, same.Ordinal)
}

func TestDeleteContraction(t *testing.T) {
	setupTestDB(t)

	entries := registerN(t, 4)

	summary, err := Delete(entries[2].ID)
	assert.NoError(t, err)
	assert.Equal(t, 3, summary.Ordinal)

	// Ниже удалённой — без изменений, выше — минус один.
	var all []models.QueueEntry
	storage.DB.Where("status IN ?", models.ActiveStatuses).Order("ordinal ASC").Find(&all)
	assert.Len(t, all, 3)
	assert.Equal(t, entries[0].ID, all[0].ID)
	assert.Equal(t, 1, all[0].Ordinal)
	assert.Equal(t, entries[1].ID, all[1].ID)
	assert.Equal(t, 2, all[1].Ordinal)
	assert.Equal(t, entries[3].ID, all[2].ID)
	assert.Equal(t, 3, all[2].Ordinal)
}

func TestDeleteNotFound(t *testing.T) {
	setupTestDB(t)

	_, err := Delete(12345)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestQueueNumbersNotReusedAfterDelete(t *testing.T) {
	setupTestDB(t)

	entries := registerN(t, 3)
	_, err := Delete(entries[2].ID)
	assert.NoError(t, err)

	e, err := Register(RegisterInput{Name: "Новый"})
	assert.NoError(t, err)
	assert.Equal(t, 4, e.QueueNumber, "Номер удалённой записи не выдаётся повторно")
}

func TestChangeStatusLifecycle(t *testing.T) {
	setupTestDB(t)

	entries := registerN(t, 3)

	// waiting → processing.
	e, err := ChangeStatus(entries[0].ID, models.StatusProcessing)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, e.Status)
	assert.Equal(t, 1, e.Ordinal, "Переход в обслуживание позицию не меняет")

	// processing → completed.
	e, err = ChangeStatus(entries[0].ID, models.StatusCompleted)
	assert.NoError(t, err)
	assert.NotNil(t, e.CompletedAt)
	assert.Equal(t, []int{1, 2}, activeOrdinals(t))

	// completed → waiting: в хвост, а не на старое место.
	e, err = ChangeStatus(entries[0].ID, models.StatusWaiting)
	assert.NoError(t, err)
	assert.Nil(t, e.CompletedAt, "Выход из completed очищает отметку времени")
	assert.Equal(t, 3, e.Ordinal, "Возврат из терминального статуса — в хвост")
	assertDense(t)
}

func TestChangeStatusRejectsBadTransitions(t *testing.T) {
	setupTestDB(t)

	entries := registerN(t, 1)

	_, err := ChangeStatus(entries[0].ID, "unknown")
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = ChangeStatus(entries[0].ID, models.StatusCancelled)
	assert.NoError(t, err)

	// Из cancelled нельзя сразу в processing или completed.
	_, err = ChangeStatus(entries[0].ID, models.StatusProcessing)
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = ChangeStatus(entries[0].ID, models.StatusCompleted)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = ChangeStatus(9999, models.StatusWaiting)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestChangeStatusCancelContracts(t *testing.T) {
	setupTestDB(t)

	entries := registerN(t, 4)

	_, err := ChangeStatus(entries[1].ID, models.StatusCancelled)
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, activeOrdinals(t))

	var rest []models.QueueEntry
	storage.DB.Where("status IN ?", models.ActiveStatuses).Order("ordinal ASC").Find(&rest)
	assert.Equal(t, entries[0].ID, rest[0].ID)
	assert.Equal(t, entries[2].ID, rest[1].ID)
	assert.Equal(t, entries[3].ID, rest[2].ID)
}

func TestDuplicateQueueNumbersTolerated(t *testing.T) {
	setupTestDB(t)

	entries := registerN(t, 2)

	// Дубликат номера талона (например, после ручной правки в БД) —
	// допустимый конфликт: он попадает в лог, но не блокирует работу.
	err := storage.DB.Model(&models.QueueEntry{}).
		Where("id = ?", entries[1].ID).
		UpdateColumn("queue_number", entries[0].QueueNumber).Error
	assert.NoError(t, err)

	e, err := Register(RegisterInput{Name: "После дубликата"})
	assert.NoError(t, err)
	assert.Equal(t, entries[0].QueueNumber+1, e.QueueNumber)
	assert.Equal(t, 3, e.Ordinal)
	assertDense(t)
}

func TestClearAll(t *testing.T) {
	setupTestDB(t)

	entries := registerN(t, 5)
	_, _, err := CallNext()
	assert.NoError(t, err)

	// Точечно удалённая запись тоже стирается физически и входит в счётчик.
	_, err = Delete(entries[4].ID)
	assert.NoError(t, err)

	count, err := ClearAll()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), count)

	active, err := ActiveCount()
	assert.NoError(t, err)
	assert.Equal(t, 0, active)

	s, err := settings.GetOrCreate()
	assert.NoError(t, err)
	assert.Equal(t, 0, s.CurrentQueueNumber)
	assert.Equal(t, 0, s.TotalPartyCount)
	assert.True(t, s.MaxOrdinal > 0)

	// Нумерация талонов начинается заново.
	e, err := Register(RegisterInput{Name: "Первый после очистки"})
	assert.NoError(t, err)
	assert.Equal(t, 1, e.QueueNumber)
}

func TestScenarioFromRequirements(t *testing.T) {
	setupTestDB(t)

	// Пять записей, позиции 1..5.
	entries := registerN(t, 5)

	// Вызов: первая завершена, остальные — 1..4.
	completed, _, err := CallNext()
	assert.NoError(t, err)
	assert.Equal(t, entries[0].ID, completed.ID)
	assert.Equal(t, []int{1, 2, 3, 4}, activeOrdinals(t))

	// Запись с позиции 4 — в голову, бывшие 1..3 — в 2..4.
	_, err = Reorder(entries[4].ID, 1)
	assert.NoError(t, err)
	var head models.QueueEntry
	storage.DB.Where("status IN ? AND ordinal = 1", models.ActiveStatuses).First(&head)
	assert.Equal(t, entries[4].ID, head.ID)

	// Удаление с позиции 3: оставшиеся {1,2,4} стягиваются в {1,2,3}.
	var third models.QueueEntry
	storage.DB.Where("status IN ? AND ordinal = 3", models.ActiveStatuses).First(&third)
	_, err = Delete(third.ID)
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, activeOrdinals(t))
	assertDense(t)
}
