package issues

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const (
	defaultWrapWidthConstant     = 80
	maximumReadableWidthConstant = 100
)

// RenderMarkdownForTerminal renders markdown through glamour, word-wrapped at
// the detected terminal width. Non-terminal output and rendering failures
// fall back to the raw markdown.
func RenderMarkdownForTerminal(markdown string) string {
	standardOutputDescriptor := int(os.Stdout.Fd())
	if !term.IsTerminal(standardOutputDescriptor) {
		return markdown
	}

	wrapWidth := defaultWrapWidthConstant
	if detectedWidth, _, sizeError := term.GetSize(standardOutputDescriptor); sizeError == nil && detectedWidth > 0 {
		wrapWidth = detectedWidth
	}
	if wrapWidth > maximumReadableWidthConstant {
		wrapWidth = maximumReadableWidthConstant
	}

	renderer, rendererError := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if rendererError != nil {
		return markdown
	}

	renderedMarkdown, renderError := renderer.Render(markdown)
	if renderError != nil {
		return markdown
	}

	return renderedMarkdown
}
