package domain

import "time"

// Session identifica un dosar: o conversatie plus actele atasate ei.
// Identificatorul circula ca query param ca sa supravietuiasca reload-urilor.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
