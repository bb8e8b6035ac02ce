package entity

import "time"

// UpdateMetadata одна строка на сторону, перезаписывается каждым успешным циклом.
type UpdateMetadata struct {
	Side        Side
	LastUpdate  time.Time
	OffersCount int
}

func (m UpdateMetadata) Age(now time.Time) time.Duration {
	return now.Sub(m.LastUpdate)
}
