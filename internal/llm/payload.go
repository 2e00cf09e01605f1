package llm

import (
	"google.golang.org/genai"

	"github.com/roberta039/avocat-onrc/internal/domain"
)

// Instructiunea de sistem a avocatului consultant; taxele si legile se
// verifica prin cautare web, de aici tool-ul GoogleSearch de mai jos.
const systemInstruction = `Ești Avocat Expert ONRC (România).
Analizează documentele (dacă există) și răspunde concis.
Folosește Google Search pentru verificarea taxelor/legilor la zi.`

// Instructiunea sintetica adaugata dupa partile de fisiere.
const attachmentInstruction = "\n\n[Analizează documentele de mai sus]"

// BuildContents asambleaza payload-ul exact cerut de API: istoricul (fara
// tura curenta) ca blocuri text role-tagged, apoi un bloc user cu partile de
// acte, instructiunea sintetica (doar daca exista acte) si textul curent.
func BuildContents(history []domain.Message, attachments []domain.Attachment, userText string) []*genai.Content {
	var contents []*genai.Content

	for _, msg := range history {
		var role genai.Role = genai.RoleUser
		if msg.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	var parts []*genai.Part
	for _, att := range attachments {
		parts = append(parts, attachmentPart(att))
	}
	if len(attachments) > 0 {
		parts = append(parts, genai.NewPartFromText(attachmentInstruction))
	}
	parts = append(parts, genai.NewPartFromText(userText))

	return append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
}

// attachmentPart este singurul loc care comuta pe reprezentarea actului.
func attachmentPart(att domain.Attachment) *genai.Part {
	if att.Kind == domain.AttachmentInline {
		return genai.NewPartFromBytes(att.Data, att.MIMEType)
	}
	return genai.NewPartFromURI(att.URI, att.MIMEType)
}

// GenerateConfig intoarce configuratia fixa a fiecarei cereri: instructiunea
// de sistem, grounding prin cautare si temperatura joasa pentru consistenta
// factuala.
func GenerateConfig() *genai.GenerateContentConfig {
	temp := float32(0.3)

	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
		Temperature: &temp,
	}
}
