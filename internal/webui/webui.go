// Package webui serves the embedded single-page frontend.
package webui

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed index.md
var indexMD []byte

const pageShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>PDF Highlight Extractor</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
form { border: 1px solid #ccc; padding: 1rem; border-radius: 4px; }
code { background: #f4f4f4; padding: 0.1rem 0.3rem; }
</style>
</head>
<body>
%s
</body>
</html>
`

// Page renders the markdown source into the full HTML page. The source is
// embedded and trusted, so raw HTML (the upload form) passes through.
func Page() ([]byte, error) {
	md := goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe()))
	var buf bytes.Buffer
	if err := md.Convert(indexMD, &buf); err != nil {
		return nil, fmt.Errorf("render frontend: %w", err)
	}
	return fmt.Appendf(nil, pageShell, buf.String()), nil
}
