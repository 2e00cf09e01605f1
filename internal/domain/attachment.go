package domain

import "time"

// AttachmentKind distinge reprezentarea unui act: bytes tinuti local sau
// referinta la fisierul urcat in storage-ul providerului.
type AttachmentKind string

const (
	AttachmentInline AttachmentKind = "inline"
	AttachmentRemote AttachmentKind = "remote"
)

// Starile de procesare raportate de provider pentru varianta remote.
type AttachmentState string

const (
	AttachmentPending AttachmentState = "pending"
	AttachmentReady   AttachmentState = "ready"
	AttachmentFailed  AttachmentState = "failed"
)

// Attachment este varianta etichetata: exact campurile kind-ului respectiv
// sunt populate, consumatorii comuta pe Kind si nu pe campuri.
type Attachment struct {
	Kind        AttachmentKind  `json:"kind"`
	DisplayName string          `json:"display_name"`
	MIMEType    string          `json:"mime_type"`
	State       AttachmentState `json:"state"`
	CreatedAt   time.Time       `json:"created_at"`

	// Varianta remote: identificatorul intern (files/...) si URI-ul derefentiabil.
	RemoteID string `json:"remote_id,omitempty"`
	URI      string `json:"uri,omitempty"`

	// Varianta inline: continutul tinut in memoria sesiunii.
	Data []byte `json:"data,omitempty"`
}
