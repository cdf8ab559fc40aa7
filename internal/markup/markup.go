// markup превращает текст комментария (Markdown) в безопасный HTML для выдачи фронту.
// Хранится всегда исходный текст; HTML строится на чтении.
package markup

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer — Markdown -> HTML с санитайзингом. Безопасен для конкурентного использования.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New создаёт рендерер: GFM без сырого HTML, UGC-политика bluemonday,
// внешние ссылки с rel="nofollow noreferrer" и target="_blank".
func New() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		policy: policy,
	}
}

// Render возвращает санитизированный HTML. При ошибке парсера — экранированный текст.
func (r *Renderer) Render(src string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return html.EscapeString(src)
	}

	return r.policy.Sanitize(buf.String())
}
