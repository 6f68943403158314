package tgstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"
	tgbot "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/igolaizola/llmtunes/pkg/storage"
)

const (
	attempts  = 3
	retryWait = 15 * time.Second
)

type Store struct {
	bot   *tgbot.BotAPI
	chat  int64
	debug bool
	store *storage.Store
}

func New(token string, chat int64, proxy string, debug bool, store *storage.Store) (*Store, error) {
	client := &http.Client{
		Timeout: 60 * time.Second,
	}
	if proxy != "" {
		u, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("tgstore: invalid proxy %s: %w", proxy, err)
		}
		client.Transport = &http.Transport{
			Proxy: http.ProxyURL(u),
		}
	}
	bot, err := tgbot.NewBotAPIWithClient(token, client)
	if err != nil {
		return nil, err
	}

	// Check that chatID is valid
	if _, err := bot.GetChat(tgbot.ChatConfig{ChatID: chat}); err != nil {
		return nil, fmt.Errorf("tgstore: invalid chat id: %w", err)
	}
	return &Store{
		bot:   bot,
		chat:  chat,
		debug: debug,
		store: store,
	}, nil
}

// Upload sends the file as a document and stores the message reference
// under name.
func (s *Store) Upload(ctx context.Context, path, name string) error {
	doc := tgbot.NewDocumentUpload(s.chat, path)
	var msg tgbot.Message
	err := retry.Do(
		func() error {
			var err error
			msg, err = s.bot.Send(doc)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(retryWait),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if s.debug {
				log.Printf("tgstore: retrying %s (%d): %v\n", name, n+1, err)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("tgstore: couldn't send file: %w", err)
	}
	fileID := FileID(msg)
	if fileID == "" {
		js, _ := json.Marshal(msg)
		return fmt.Errorf("tgstore: message doesn't contain file: %s", string(js))
	}
	ref := toRef(s.chat, msg.MessageID, fileID)
	if err := s.store.SetFileRef(ctx, name, ref); err != nil {
		return fmt.Errorf("tgstore: couldn't set file %s: %w", name, err)
	}
	return nil
}

// FileID returns the id of the file attached to the message.
func FileID(msg tgbot.Message) string {
	switch {
	case msg.Document != nil && msg.Document.FileID != "":
		return msg.Document.FileID
	case msg.Photo != nil && len(*msg.Photo) > 0:
		return (*msg.Photo)[0].FileID
	default:
		return ""
	}
}

func toRef(chat int64, msgID int, fileID string) string {
	return fmt.Sprintf("%d/%d/%s", chat, msgID, fileID)
}
