// Package cycledate — тонкая прослойка над утилитой пересчёта циклических
// дат. Ядро очереди использует её ровно для одного: значения по умолчанию
// для начала приёма, когда администратор открывает очередь, не указав время.
package cycledate

import "time"

// sessionHour — час начала приёма по умолчанию для циклической даты.
const sessionHour = 10

// SessionStart возвращает начало приёма текущего цикла: сегодняшняя
// дата в местном времени с фиксированным часом открытия. Если момент
// открытия уже прошёл, началом считается сам момент открытия.
func SessionStart(now time.Time) time.Time {
	start := time.Date(now.Year(), now.Month(), now.Day(), sessionHour, 0, 0, 0, now.Location())
	if now.After(start) {
		return now
	}
	return start
}
