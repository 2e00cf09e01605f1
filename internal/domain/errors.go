package domain

import "errors"

// Taxonomia de erori a serviciului. Erorile per-fisier (duplicat, upload)
// se rezolva local si nu intrerup restul lotului; erorile de generare si de
// storage intrerup doar tura curenta.
var (
	ErrDuplicateAttachment = errors.New("attachment display name already registered")
	ErrUploadFailed        = errors.New("provider reported attachment processing failed")
	ErrUploadTimeout       = errors.New("attachment processing did not finish in time")
	ErrGenerationTimeout   = errors.New("generation timed out")
	ErrContentBlocked      = errors.New("generation blocked by content safety")
	ErrSessionNotFound     = errors.New("session not found")
)
