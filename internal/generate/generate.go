// Package generate wraps one call to a text-generation backend with the
// fixed instruction contract and post-call cleanup. Retrying across
// candidates or across backends is the pipeline's job, never this
// package's.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/faruk-isik/x-trend-bot/internal/model"
	"github.com/faruk-isik/x-trend-bot/internal/sanitize"
)

// ErrGenerationFailed covers backend errors, empty backend output, the
// no-news sentinel, and output that sanitization reduced to nothing.
var ErrGenerationFailed = errors.New("generation failed")

// noNewsSentinel is the reply the backend is instructed to give when it
// judges nothing newsworthy. Treated the same as a failed generation.
const noNewsSentinel = "YOK"

// Constraints is the explicit generation configuration. There are no
// hidden defaults; the bootstrap fills in every field from config.
type Constraints struct {
	MaxChars       int
	Language       Language
	Tone           Tone
	ForbidHashtags bool
	ForbidEmoji    bool
	Temperature    float64
}

// Language selects the output language of the generated post.
type Language string

// Supported output languages.
const (
	LanguageTurkish Language = "Türkçe"
	LanguageEnglish Language = "English"
)

// Tone selects the voice the backend is asked to write in.
type Tone string

// Supported tones.
const (
	ToneNeutral     Tone = "neutral"
	ToneInformative Tone = "informative"
)

// Backend is one opaque text-generation strategy (one model id).
type Backend interface {
	Name() string
	GenerateText(ctx context.Context, instruction string) (string, error)
}

// Generator turns one candidate into sanitized post text via one backend
// call.
type Generator struct {
	backend   Backend
	sanitizer *sanitize.Sanitizer
	cons      Constraints
}

// New creates a Generator bound to one backend.
func New(backend Backend, sanitizer *sanitize.Sanitizer, cons Constraints) *Generator {
	return &Generator{backend: backend, sanitizer: sanitizer, cons: cons}
}

// Name reports the underlying backend's name for logs.
func (g *Generator) Name() string { return g.backend.Name() }

// Generate performs one backend call for candidate and sanitizes the
// result. Any unusable output is reported as ErrGenerationFailed with the
// cause attached.
func (g *Generator) Generate(ctx context.Context, candidate model.RawItem) (model.GeneratedText, error) {
	instruction := BuildInstruction(candidate, g.cons)

	raw, err := g.backend.GenerateText(ctx, instruction)
	if err != nil {
		return model.GeneratedText{}, fmt.Errorf("%w: backend %s: %v", ErrGenerationFailed, g.backend.Name(), err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, noNewsSentinel) {
		return model.GeneratedText{}, fmt.Errorf("%w: backend %s returned no content", ErrGenerationFailed, g.backend.Name())
	}

	clean := g.sanitizer.Sanitize(raw, g.cons.MaxChars)
	if clean == "" {
		return model.GeneratedText{}, fmt.Errorf("%w: output was entirely forbidden content", ErrGenerationFailed)
	}
	return model.GeneratedText{Raw: raw, Sanitized: clean}, nil
}

// BuildInstruction assembles the fixed instruction for one candidate.
// Every hard constraint is restated in the task text itself, not only in
// the model configuration.
func BuildInstruction(candidate model.RawItem, cons Constraints) string {
	var b strings.Builder

	b.WriteString("Sen güvenilir, tarafsız ve soğukkanlı bir haber muhabirisin. ")
	b.WriteString("Aşağıdaki haber malzemesini tek bir sosyal medya gönderisine dönüştür.\n\n")

	b.WriteString("KURALLAR:\n")
	fmt.Fprintf(&b, "1. Gönderi dili: %s.\n", cons.Language)
	fmt.Fprintf(&b, "2. En fazla %d karakter.\n", cons.MaxChars)
	rule := 3
	if cons.ForbidHashtags {
		fmt.Fprintf(&b, "%d. Hashtag kullanma.\n", rule)
		rule++
	}
	if cons.ForbidEmoji {
		fmt.Fprintf(&b, "%d. Emoji kullanma.\n", rule)
		rule++
	}
	switch cons.Tone {
	case ToneInformative:
		fmt.Fprintf(&b, "%d. Bilgilendirici bir dil kullan, yorum katma.\n", rule)
	default:
		fmt.Fprintf(&b, "%d. Tarafsız bir dille, yorum katmadan, sadece olguları aktar.\n", rule)
	}
	rule++
	fmt.Fprintf(&b, "%d. \"iddia edildi\", \"söyleniyor\" gibi ifadeler kullanma.\n", rule)
	rule++
	fmt.Fprintf(&b, "%d. Sona kategori etiketi ekleme; sadece gönderi metnini döndür.\n", rule)
	rule++
	fmt.Fprintf(&b, "%d. Kayda değer bir haber yoksa sadece \"%s\" yaz.\n\n", rule, noNewsSentinel)

	b.WriteString("HABER MALZEMESİ:\n")
	fmt.Fprintf(&b, "Başlık: %s\n", candidate.Title)
	if candidate.Body != "" {
		fmt.Fprintf(&b, "Detay: %s\n", candidate.Body)
	}
	if candidate.SourceURL != "" {
		fmt.Fprintf(&b, "Kaynak: %s\n", candidate.SourceURL)
	}
	return b.String()
}
