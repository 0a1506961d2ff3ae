package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"live_queue/internal/models"
	"live_queue/internal/queue"
	"live_queue/internal/response"
	"live_queue/internal/settings"
	"live_queue/internal/storage"
	"live_queue/internal/ws"

	"github.com/gin-gonic/gin"
)

var ctx = context.Background()

// statusCacheKey — ключ кэша публичного снимка очереди в Redis.
const statusCacheKey = "queue_status"

// queueError транслирует код ошибки ядра в HTTP-статус. Коды отдаются
// клиенту как есть.
func queueError(c *gin.Context, err error) {
	kind := queue.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case queue.KindNotFound:
		status = http.StatusNotFound
	case queue.KindValidation, queue.KindOutOfRange:
		status = http.StatusBadRequest
	case queue.KindCapacity, queue.KindConflict:
		status = http.StatusConflict
	case queue.KindNoActiveEntries:
		status = http.StatusNotFound
	}

	resp := response.ErrorResponse{
		Code:    string(kind),
		Message: err.Error(),
	}
	if qe, ok := err.(*queue.Error); ok {
		resp.Message = qe.Message
		resp.Field = qe.Field
		if qe.Err != nil {
			resp.Details = qe.Err.Error()
		}
	}
	c.JSON(status, resp)
}

// notifyQueueChanged рассылает событие очереди и сбрасывает кэш снимка.
// Строго fire-and-forget: любые сбои здесь не влияют на ответ операции.
func notifyQueueChanged(eventType string, data map[string]interface{}) {
	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: eventType,
		Data:      data,
	})
	if storage.RedisClient != nil {
		storage.RedisClient.Del(ctx, statusCacheKey)
	}
}

// EntryView — запись очереди с оценками ожидания для ответов API.
type EntryView struct {
	ID                   uint       `json:"id"`
	QueueNumber          int        `json:"queue_number"`
	Ordinal              int        `json:"ordinal"`
	Status               string     `json:"status"`
	Name                 string     `json:"name"`
	Phone                string     `json:"phone,omitempty"`
	Note                 string     `json:"note,omitempty"`
	Companions           int        `json:"companions"`
	PartySize            int        `json:"party_size"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	EstimatedWaitMinutes int        `json:"estimated_wait_minutes"`
	EstimatedStartTime   *time.Time `json:"estimated_start_time,omitempty"`
	PeopleAhead          int        `json:"people_ahead"`
	CreatedAt            time.Time  `json:"created_at"`
}

// entryView собирает представление записи. Оценки считаются только для
// активных записей, для терминальных они обнуляются.
func entryView(e *models.QueueEntry, s *models.SystemSettings) EntryView {
	v := EntryView{
		ID:          e.ID,
		QueueNumber: e.QueueNumber,
		Ordinal:     e.Ordinal,
		Status:      e.Status,
		Name:        e.Name,
		Phone:       e.Phone,
		Note:        e.Note,
		Companions:  e.Companions,
		PartySize:   e.PartySize(),
		CompletedAt: e.CompletedAt,
		CreatedAt:   e.CreatedAt,
	}
	if e.IsActive() {
		v.EstimatedWaitMinutes = queue.EstimatedWaitMinutes(e, s)
		start := queue.EstimatedStartTime(e, s, time.Now())
		v.EstimatedStartTime = &start
		if ahead, err := queue.PeopleAhead(e); err == nil {
			v.PeopleAhead = ahead
		}
	}
	return v
}

// RegisterEntryResponse — созданная запись плюс обещанное время
// окончания приёма для всей сессии.
type RegisterEntryResponse struct {
	EntryView
	SessionEndTime *time.Time `json:"session_end_time,omitempty"`
}

type RegisterEntryRequest struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone"`
	Note       string `json:"note"`
	Companions int    `json:"companions"`
}

// RegisterEntryHandler обрабатывает запись посетителя в очередь
// @Summary		Запись в очередь
// @Description	Создаёт запись в хвосте очереди и возвращает номер талона с оценкой ожидания
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			entry	body		RegisterEntryRequest	true	"Анкета посетителя"
// @Success		201	{object}	RegisterEntryResponse	"Созданная запись с оценками"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		403	{object}	response.ErrorResponse	"Публичная запись закрыта (REGISTRATION_CLOSED)"
// @Failure		409	{object}	response.ErrorResponse	"Очередь заполнена (CAPACITY_EXCEEDED)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queue/register [post]
func RegisterEntryHandler(c *gin.Context) {
	var req RegisterEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	s, err := settings.GetOrCreate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка чтения настроек",
			Details: err.Error(),
		})
		return
	}

	// Администратор записывает посетителей и при закрытой публичной записи.
	isAdmin := c.GetUint("userID") != 0
	if !isAdmin && (!s.IsQueueOpen || !s.PublicRegistrationEnabled) {
		c.JSON(http.StatusForbidden, response.ErrorResponse{
			Code:    "REGISTRATION_CLOSED",
			Message: "Публичная запись в очередь закрыта",
		})
		return
	}

	entry, err := queue.Register(queue.RegisterInput{
		Name:       req.Name,
		Phone:      req.Phone,
		Note:       req.Note,
		Companions: req.Companions,
	})
	if err != nil {
		queueError(c, err)
		return
	}

	notifyQueueChanged("queue_updated", map[string]interface{}{
		"entry_id":     entry.ID,
		"queue_number": entry.QueueNumber,
		"ordinal":      entry.Ordinal,
	})

	c.JSON(http.StatusCreated, RegisterEntryResponse{
		EntryView:      entryView(entry, s),
		SessionEndTime: s.EstimatedEndTime,
	})
}

// ListEntriesHandler возвращает страницу записей очереди
// @Summary		Список записей очереди
// @Description	Постраничный список; без фильтра статуса — активные записи (waiting, processing) по позициям
// @Tags			queue
// @Produce		json
// @Param			status	query	string	false	"Фильтр статуса (waiting|processing|completed|cancelled)"
// @Param			page	query	int		false	"Номер страницы (с 1)"
// @Param			limit	query	int		false	"Размер страницы (по умолчанию 50)"
// @Security		BearerAuth
// @Success		200	{object}	map[string]interface{}	"Список записей с оценками и общим числом"
// @Failure		400	{object}	response.ErrorResponse	"Недопустимый статус (VALIDATION_ERROR)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queue/entries [get]
func ListEntriesHandler(c *gin.Context) {
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, total, err := queue.List(status, page, limit)
	if err != nil {
		queueError(c, err)
		return
	}

	s, err := settings.GetOrCreate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка чтения настроек",
			Details: err.Error(),
		})
		return
	}

	views := make([]EntryView, 0, len(entries))
	for i := range entries {
		views = append(views, entryView(&entries[i], s))
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": views,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// CallNextHandler вызывает следующего посетителя
// @Summary		Вызов следующего
// @Description	Завершает обслуживание головы очереди и продвигает остальных на позицию вперёд
// @Tags			queue
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	map[string]interface{}	"Завершённая запись и новая голова очереди"
// @Failure		404	{object}	response.ErrorResponse	"Нет активных записей (NO_ACTIVE_ENTRIES)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queue/call-next [post]
func CallNextHandler(c *gin.Context) {
	completed, newHead, err := queue.CallNext()
	if err != nil {
		queueError(c, err)
		return
	}

	s, err := settings.GetOrCreate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка чтения настроек",
			Details: err.Error(),
		})
		return
	}

	data := map[string]interface{}{
		"completed_number": completed.QueueNumber,
	}
	resp := gin.H{"completed_entry": entryView(completed, s)}
	if newHead != nil {
		data["next_number"] = newHead.QueueNumber
		resp["new_head"] = entryView(newHead, s)
	}
	notifyQueueChanged("entry_called", data)

	c.JSON(http.StatusOK, resp)
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatusHandler меняет статус записи
// @Summary		Смена статуса записи
// @Description	Переводит запись по машине состояний; возврат из терминального статуса ставит запись в хвост
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			id		path	int						true	"ID записи"
// @Param			status	body	ChangeStatusRequest		true	"Новый статус"
// @Security		BearerAuth
// @Success		200	{object}	EntryView	"Обновлённая запись"
// @Failure		400	{object}	response.ErrorResponse	"Недопустимый статус или переход (VALIDATION_ERROR)"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queue/entries/{id}/status [put]
func ChangeStatusHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Неверный идентификатор записи",
		})
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	entry, err := queue.ChangeStatus(uint(id), req.Status)
	if err != nil {
		queueError(c, err)
		return
	}

	s, err := settings.GetOrCreate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка чтения настроек",
			Details: err.Error(),
		})
		return
	}

	notifyQueueChanged("status_changed", map[string]interface{}{
		"entry_id":     entry.ID,
		"queue_number": entry.QueueNumber,
		"status":       entry.Status,
	})

	c.JSON(http.StatusOK, entryView(entry, s))
}

type ReorderRequest struct {
	NewOrdinal int `json:"new_ordinal" binding:"required,min=1"`
}

// ReorderHandler передвигает запись на новую позицию
// @Summary		Ручная перестановка
// @Description	Передвигает активную запись на указанную позицию, сдвигая затронутый диапазон
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			id		path	int				true	"ID записи"
// @Param			order	body	ReorderRequest	true	"Новая позиция"
// @Security		BearerAuth
// @Success		200	{object}	map[string]interface{}	"Переставленная запись и весь актуальный список"
// @Failure		400	{object}	response.ErrorResponse	"Позиция вне диапазона (OUT_OF_RANGE) или ошибка валидации"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queue/entries/{id}/order [put]
func ReorderHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Неверный идентификатор записи",
		})
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	entry, err := queue.Reorder(uint(id), req.NewOrdinal)
	if err != nil {
		queueError(c, err)
		return
	}

	entries, _, err := queue.List("", 1, 200)
	if err != nil {
		queueError(c, err)
		return
	}

	s, err := settings.GetOrCreate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка чтения настроек",
			Details: err.Error(),
		})
		return
	}

	views := make([]EntryView, 0, len(entries))
	for i := range entries {
		views = append(views, entryView(&entries[i], s))
	}

	notifyQueueChanged("queue_updated", map[string]interface{}{
		"entry_id":    entry.ID,
		"new_ordinal": entry.Ordinal,
	})

	c.JSON(http.StatusOK, gin.H{
		"entry":       entryView(entry, s),
		"all_entries": views,
	})
}

// DeleteEntryHandler удаляет запись из очереди
// @Summary		Удаление записи
// @Description	Удаляет запись; позиции активных записей выше удалённой стягиваются
// @Tags			queue
// @Produce		json
// @Param			id	path	int	true	"ID записи"
// @Security		BearerAuth
// @Success		200	{object}	map[string]interface{}	"Сводка об удалённой записи"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queue/entries/{id} [delete]
func DeleteEntryHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Неверный идентификатор записи",
		})
		return
	}

	summary, err := queue.Delete(uint(id))
	if err != nil {
		queueError(c, err)
		return
	}

	notifyQueueChanged("queue_updated", map[string]interface{}{
		"deleted_id":     summary.ID,
		"deleted_number": summary.QueueNumber,
	})

	c.JSON(http.StatusOK, gin.H{"deleted_summary": summary})
}

// ClearAllHandler полностью очищает очередь
// @Summary		Полная очистка очереди
// @Description	Удаляет все записи и сбрасывает счётчики сессии
// @Tags			queue
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	map[string]interface{}	"Число удалённых записей"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queue/entries [delete]
func ClearAllHandler(c *gin.Context) {
	count, err := queue.ClearAll()
	if err != nil {
		queueError(c, err)
		return
	}

	notifyQueueChanged("queue_updated", map[string]interface{}{
		"cleared": true,
	})

	c.JSON(http.StatusOK, gin.H{"deleted_count": count})
}

// QueueStatusView — публичный снимок состояния очереди.
type QueueStatusView struct {
	IsQueueOpen               bool        `json:"is_queue_open"`
	PublicRegistrationEnabled bool        `json:"public_registration_enabled"`
	CurrentQueueNumber        int         `json:"current_queue_number"`
	ActiveCount               int         `json:"active_count"`
	EstimatedEndTime          *time.Time  `json:"estimated_end_time,omitempty"`
	Entries                   []EntryView `json:"entries"`
}

// QueueStatusHandler отдаёт публичный снимок очереди
// @Summary		Состояние очереди
// @Description	Снимок очереди для табло: текущий номер, активные записи и оценки. Кэшируется в Redis на 5 секунд
// @Tags			queue
// @Produce		json
// @Success		200	{object}	QueueStatusView	"Снимок очереди"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queue/status [get]
func QueueStatusHandler(c *gin.Context) {
	if storage.RedisClient != nil {
		cached, err := storage.RedisClient.Get(ctx, statusCacheKey).Result()
		if err == nil && cached != "" {
			var view QueueStatusView
			if err := json.Unmarshal([]byte(cached), &view); err == nil {
				c.JSON(http.StatusOK, view)
				return
			}
		}
	}

	entries, total, err := queue.List("", 1, 200)
	if err != nil {
		queueError(c, err)
		return
	}

	s, err := settings.GetOrCreate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка чтения настроек",
			Details: err.Error(),
		})
		return
	}

	views := make([]EntryView, 0, len(entries))
	for i := range entries {
		views = append(views, entryView(&entries[i], s))
	}

	view := QueueStatusView{
		IsQueueOpen:               s.IsQueueOpen,
		PublicRegistrationEnabled: s.PublicRegistrationEnabled,
		CurrentQueueNumber:        s.CurrentQueueNumber,
		ActiveCount:               int(total),
		EstimatedEndTime:          s.EstimatedEndTime,
		Entries:                   views,
	}

	if storage.RedisClient != nil {
		if payload, err := json.Marshal(view); err == nil {
			storage.RedisClient.Set(ctx, statusCacheKey, string(payload), 5*time.Second)
		}
	}

	c.JSON(http.StatusOK, view)
}
