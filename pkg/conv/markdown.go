package conv

import (
	"fmt"
	"io"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	tgPolicy   = bluemonday.NewPolicy()
)

func init() {
	// Allowed tags https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")
}

// MarkdownToTelegramHTML renders md into the HTML subset Telegram accepts.
// Lists have no Telegram tag, so items become "• " or "N. " lines.
func MarkdownToTelegramHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags:          htmlFlags,
		RenderNodeHook: renderList,
	})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	return string(tgPolicy.SanitizeBytes(unsafeHTML))
}

func renderList(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	switch n := node.(type) {
	case *ast.List:
		return ast.GoToNext, true
	case *ast.ListItem:
		if entering {
			_, _ = io.WriteString(w, itemMarker(n))
		} else {
			_, _ = io.WriteString(w, "\n")
		}
		return ast.GoToNext, true
	}
	return ast.GoToNext, false
}

func itemMarker(item *ast.ListItem) string {
	if item.ListFlags&ast.ListTypeOrdered == 0 {
		return "• "
	}
	pos := 1
	if parent := item.GetParent(); parent != nil {
		for i, sibling := range parent.GetChildren() {
			if sibling == item {
				pos = i + 1
				break
			}
		}
	}
	if list, ok := item.GetParent().(*ast.List); ok && list.Start > 0 {
		pos += list.Start - 1
	}
	return fmt.Sprintf("%d. ", pos)
}
