package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"meeting-secretary/internal/pipeline"
	"meeting-secretary/internal/protocol"
)

// Telegram rejects text messages longer than this; longer protocols go
// out as a document instead.
const maxMessageRunes = 4096

const helpText = `I turn meeting recordings into structured protocols.

Send me:
• an audio file with the meeting recording
• a link to a hosted video

You will get back the protocol: participants, agenda, decisions, owners and deadlines.`

const (
	noticeFailure = "Sorry, I could not process this recording."
	noticeBadLink = "This does not look like a link to a supported video service."
	noticeBusy    = "I am at capacity right now, please try again in a few minutes."
	prefixUpload  = "Protocol is ready:"
	prefixRemote  = "Protocol from the video link:"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	switch {
	case msg.IsCommand():
		if msg.Command() == "start" {
			b.reply(ctx, msg.Chat.ID, helpText)
		}

	case msg.Audio != nil:
		b.handleUpload(ctx, msg, msg.Audio.FileID, extFromName(msg.Audio.FileName, msg.Audio.MimeType))

	case msg.Voice != nil:
		b.handleUpload(ctx, msg, msg.Voice.FileID, "ogg")

	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "audio/"):
		b.handleUpload(ctx, msg, msg.Document.FileID, extFromName(msg.Document.FileName, msg.Document.MimeType))

	case msg.Text != "":
		b.handleLink(ctx, msg)
	}
}

func (b *Bot) handleUpload(ctx context.Context, msg *tgbotapi.Message, fileID, ext string) {
	b.logger.Info(ctx, "Audio upload from %s (file %s)", senderName(msg), fileID)

	fileURL, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		b.logger.Error(ctx, "Resolve file %s: %v", fileID, err)
		b.reply(ctx, msg.Chat.ID, noticeFailure)
		return
	}

	body, err := fetchUpload(fileURL)
	if err != nil {
		b.logger.Error(ctx, "Fetch file %s: %v", fileID, err)
		b.reply(ctx, msg.Chat.ID, noticeFailure)
		return
	}
	defer body.Close()

	req := pipeline.Request{
		Source: pipeline.NewUpload(body, fileID, ext),
		Clean:  true,
	}
	b.deliver(ctx, msg, req, prefixUpload)
}

// fetchUpload streams the Telegram file URL, rejecting non-200
// responses before their body can reach the pipeline as audio.
func fetchUpload(fileURL string) (io.ReadCloser, error) {
	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch upload: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

func (b *Bot) handleLink(ctx context.Context, msg *tgbotapi.Message) {
	b.logger.Info(ctx, "Video link from %s", senderName(msg))

	req := pipeline.Request{
		Source: pipeline.NewRemoteVideo(strings.TrimSpace(msg.Text)),
		// Platform audio is already produced from a clean feed; the
		// denoising stage only applies to user recordings.
		Clean: false,
	}
	b.deliver(ctx, msg, req, prefixRemote)
}

// deliver runs the pipeline and sends exactly one reply: the protocol,
// or one generic notice. Stage detail never reaches the user.
func (b *Bot) deliver(ctx context.Context, msg *tgbotapi.Message, req pipeline.Request, prefix string) {
	res, err := b.runner.Run(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrBusy):
			b.reply(ctx, msg.Chat.ID, noticeBusy)
		case pipeline.KindOf(err) == pipeline.FailValidation:
			b.reply(ctx, msg.Chat.ID, noticeBadLink)
		default:
			b.reply(ctx, msg.Chat.ID, noticeFailure)
		}
		return
	}

	text := prefix + "\n\n" + res.Protocol
	if utf8.RuneCountInString(text) <= maxMessageRunes {
		b.reply(ctx, msg.Chat.ID, text)
		return
	}

	// Too long for one message: deliver as a document.
	b.sendAsDocument(ctx, msg.Chat.ID, res.Protocol)
}

func (b *Bot) sendAsDocument(ctx context.Context, chatID int64, protocolText string) {
	f, err := os.CreateTemp("", "protocol-*.docx")
	if err != nil {
		b.logger.Error(ctx, "Create protocol document: %v", err)
		b.reply(ctx, chatID, noticeFailure)
		return
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := protocol.WriteDocx("Meeting protocol", protocolText, path); err != nil {
		b.logger.Error(ctx, "Render protocol document: %v", err)
		b.reply(ctx, chatID, noticeFailure)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = "The protocol is too long for a message, attached as a document."
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Error(ctx, "Send protocol document to chat %d: %v", chatID, err)
	}
}

// senderName labels the sender for logs. From is nil for messages sent
// on behalf of channels, so fall back to the chat id.
func senderName(msg *tgbotapi.Message) string {
	if msg.From != nil {
		return msg.From.UserName
	}
	return fmt.Sprintf("chat %d", msg.Chat.ID)
}

func extFromName(name, mimeType string) string {
	if ext := strings.TrimPrefix(filepath.Ext(name), "."); ext != "" {
		return strings.ToLower(ext)
	}
	switch mimeType {
	case "audio/mpeg":
		return "mp3"
	case "audio/ogg":
		return "ogg"
	case "audio/wav", "audio/x-wav":
		return "wav"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return "m4a"
	default:
		return "bin"
	}
}
