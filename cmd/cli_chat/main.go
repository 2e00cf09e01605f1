package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/roberta039/avocat-onrc/internal/config"
	"github.com/roberta039/avocat-onrc/internal/db"
	"github.com/roberta039/avocat-onrc/internal/domain"
	"github.com/roberta039/avocat-onrc/internal/llm"
	"github.com/roberta039/avocat-onrc/internal/repository"
	"github.com/roberta039/avocat-onrc/internal/service"
)

// Chat de terminal peste aceleasi servicii ca API-ul: fragmentele se scriu
// pe masura ce sosesc, actele se ataseaza cu /attach.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatal(err)
	}

	sessionRepo := repository.NewPgSessionRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	attachmentStore := repository.NewMemoryAttachmentStore()

	geminiClient, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal(err)
	}

	transcriptSvc := service.NewTranscriptService(messageRepo)
	attachmentSvc := service.NewAttachmentService(
		attachmentStore,
		geminiClient,
		logger,
		time.Duration(cfg.UploadPollSeconds)*time.Second,
		cfg.UploadPollMaxAttempts,
	)
	chatSvc := service.NewChatService(
		geminiClient,
		transcriptSvc,
		attachmentSvc,
		logger,
		time.Duration(cfg.LLMTimeoutSeconds)*time.Second,
	)

	session := domain.Session{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	if err := sessionRepo.Create(ctx, session); err != nil {
		log.Fatal(err)
	}

	header := color.New(color.FgCyan, color.Bold)
	header.Println("==== Avocat Consultant ONRC ====")
	fmt.Printf("Dosar: %s\n", session.ID)
	fmt.Println("Comenzi: /attach <cale>, /files, /reset, exit")

	for {
		fmt.Print("Tu > ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.EqualFold(line, "exit") || strings.EqualFold(line, "iesire"):
			return
		case line == "/reset":
			if err := transcriptSvc.Clear(ctx, session.ID); err != nil {
				fmt.Printf("eroare la reset: %v\n", err)
				continue
			}
			if err := attachmentSvc.Clear(ctx, session.ID); err != nil {
				fmt.Printf("eroare la reset: %v\n", err)
				continue
			}
			fmt.Println("Dosar nou. Transcript si acte sterse.")
		case line == "/files":
			listFiles(ctx, attachmentSvc, session.ID)
		case strings.HasPrefix(line, "/attach "):
			attachFile(ctx, attachmentSvc, session.ID, strings.TrimSpace(strings.TrimPrefix(line, "/attach ")))
		default:
			runTurn(ctx, chatSvc, session.ID, line)
		}
	}
}

// terminalSink scrie fragmentele colorate direct in terminal.
type terminalSink struct {
	out *color.Color
}

func (s *terminalSink) Fragment(text string) error {
	s.out.Print(text)
	return nil
}

func (s *terminalSink) Final(string) error {
	fmt.Println()
	return nil
}

func runTurn(ctx context.Context, chatSvc *service.ChatService, sessionID, text string) {
	fmt.Print("Avocat > ")
	sink := &terminalSink{out: color.New(color.FgGreen)}

	result, err := chatSvc.Send(ctx, sessionID, text, sink)
	if err != nil {
		fmt.Println()
		switch {
		case errors.Is(err, domain.ErrGenerationTimeout):
			fmt.Println("Raspunsul a durat prea mult. Incearca o intrebare mai scurta.")
		case errors.Is(err, domain.ErrContentBlocked):
			fmt.Println("Raspunsul a fost blocat de filtrele de continut.")
		default:
			fmt.Printf("eroare generare: %v\n", err)
		}
		return
	}
	if result.Grounded {
		color.New(color.Faint).Println("(verificat cu cautare web)")
	}
}

func attachFile(ctx context.Context, svc *service.AttachmentService, sessionID, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("nu pot citi fisierul: %v\n", err)
		return
	}

	name := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	att, err := svc.Register(ctx, sessionID, name, mimeType, data)
	switch {
	case errors.Is(err, domain.ErrDuplicateAttachment):
		fmt.Printf("%s este deja in dosar.\n", name)
	case errors.Is(err, domain.ErrUploadTimeout):
		fmt.Printf("%s: procesarea nu s-a terminat la timp.\n", name)
	case err != nil:
		fmt.Printf("eroare upload %s: %v\n", name, err)
	default:
		fmt.Printf("%s indexat (%s).\n", att.DisplayName, att.MIMEType)
	}
}

func listFiles(ctx context.Context, svc *service.AttachmentService, sessionID string) {
	atts, err := svc.List(ctx, sessionID)
	if err != nil {
		fmt.Printf("eroare listare: %v\n", err)
		return
	}
	if len(atts) == 0 {
		fmt.Println("Dosar gol.")
		return
	}
	fmt.Printf("Dosar activ: %d acte\n", len(atts))
	for _, att := range atts {
		fmt.Printf("  - %s (%s)\n", att.DisplayName, att.MIMEType)
	}
}
