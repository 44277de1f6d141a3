package extract

// ExtractDigital returns the embedded text inside the region of interest of
// every page, in page order. An empty result means the document carries no
// text layer there and is most likely a scan.
func (l Layout) ExtractDigital(doc Document) string {
	text := ""
	for _, page := range doc.Pages() {
		width, height := page.Size()
		clip := l.ClipFor(page.Index(), width, height)
		text = appendFragment(text, page.TextInRect(clip))
	}
	return text
}
