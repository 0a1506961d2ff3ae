package handlers

import (
	"net/http"
	"time"

	"live_queue/internal/cycledate"
	"live_queue/internal/queue"
	"live_queue/internal/response"
	"live_queue/internal/settings"
	"live_queue/internal/tasks"

	"github.com/gin-gonic/gin"
)

// GetSettingsHandler возвращает настройки системы
// @Summary		Настройки системы
// @Tags			settings
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	models.SystemSettings	"Текущие настройки"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/settings [get]
func GetSettingsHandler(c *gin.Context) {
	s, err := settings.GetOrCreate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка чтения настроек",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, s)
}

// UpdateSettingsRequest — частичное обновление настроек: непереданные
// поля не трогаются.
type UpdateSettingsRequest struct {
	SessionStartTime  *time.Time `json:"session_start_time"`
	MinutesPerEntry   *int       `json:"minutes_per_entry"`
	ScheduledOpenTime *time.Time `json:"scheduled_open_time"`
	AutoOpenEnabled   *bool      `json:"auto_open_enabled"`
	MaxOrdinal        *int       `json:"max_ordinal"`

	IsQueueOpen               *bool `json:"is_queue_open"`
	PublicRegistrationEnabled *bool `json:"public_registration_enabled"`
	SimplifiedMode            *bool `json:"simplified_mode"`
}

// UpdateSettingsHandler обновляет настройки системы
// @Summary		Изменение настроек
// @Description	Частичное обновление; смена времени или флага автооткрытия перевзводит таймер
// @Tags			settings
// @Accept			json
// @Produce		json
// @Param			settings	body	UpdateSettingsRequest	true	"Изменяемые поля"
// @Security		BearerAuth
// @Success		200	{object}	models.SystemSettings	"Обновлённые настройки"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/settings [put]
func UpdateSettingsHandler(c *gin.Context) {
	var req UpdateSettingsRequest
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

	if req.MinutesPerEntry != nil {
		if *req.MinutesPerEntry < 1 || *req.MinutesPerEntry > 120 {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "Минут на запись должно быть от 1 до 120",
				Field:   "minutes_per_entry",
			})
			return
		}
		s.MinutesPerEntry = *req.MinutesPerEntry
	}

	if req.MaxOrdinal != nil {
		active, err := queue.ActiveCount()
		if err != nil {
			queueError(c, err)
			return
		}
		if *req.MaxOrdinal < active {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "Вместимость не может быть меньше текущего числа активных записей",
				Field:   "max_ordinal",
			})
			return
		}
		if *req.MaxOrdinal < 1 {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "Вместимость должна быть положительной",
				Field:   "max_ordinal",
			})
			return
		}
		s.MaxOrdinal = *req.MaxOrdinal
	}

	if req.SessionStartTime != nil {
		s.SessionStartTime = req.SessionStartTime
	}

	rearm := false
	if req.ScheduledOpenTime != nil {
		s.ScheduledOpenTime = req.ScheduledOpenTime
		rearm = true
	}
	if req.AutoOpenEnabled != nil {
		s.AutoOpenEnabled = *req.AutoOpenEnabled
		rearm = true
	}

	if req.PublicRegistrationEnabled != nil {
		s.PublicRegistrationEnabled = *req.PublicRegistrationEnabled
	}
	if req.SimplifiedMode != nil {
		s.SimplifiedMode = *req.SimplifiedMode
	}

	if req.IsQueueOpen != nil {
		opening := *req.IsQueueOpen && !s.IsQueueOpen
		s.IsQueueOpen = *req.IsQueueOpen
		if opening {
			// Открытие приёма: начало сессии по циклической дате, время
			// окончания фиксируется один раз как обещание всей когорте.
			if s.SessionStartTime == nil {
				start := cycledate.SessionStart(time.Now())
				s.SessionStartTime = &start
			}
			end := queue.SessionEndEstimate(s)
			s.EstimatedEndTime = end
		}
	}

	// Аудит: кто сделал последнее изменение.
	s.UpdatedBy = c.GetUint("userID")

	if err := settings.Save(s); err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка сохранения настроек",
			Details: err.Error(),
		})
		return
	}

	if rearm {
		tasks.Opener.Reschedule()
	}

	notifyQueueChanged("queue_updated", map[string]interface{}{
		"settings_changed": true,
	})

	c.JSON(http.StatusOK, s)
}
