package normalize

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tempbucket/tempbucket/pkg/tempmail"
)

// headerBlockID is the id of the element holding the labeled From/Subject/Time fields.
const headerBlockID = "subject-header"

// Field labels inside the header block.
const (
	labelFrom    = "From:"
	labelSubject = "Subject:"
	labelTime    = "Time:"
)

// fromMarkup parses raw as HTML. The parser recovers from any malformed input, the only error it
// can return comes from the reader, and a strings.Reader never fails.
func fromMarkup(raw string) *tempmail.MessageDetail {
	detail := &tempmail.MessageDetail{
		Sender:    tempmail.DefaultSender,
		Subject:   tempmail.DefaultSubject,
		Timestamp: tempmail.DefaultTimestamp,
	}
	doc, err := parse(raw)
	if err != nil {
		detail.CleanedText = CollapseWhitespace(raw)
		return detail
	}

	if header := findByID(doc, headerBlockID); header != nil {
		detail.Sender = labeledValue(header, labelFrom, tempmail.DefaultSender)
		detail.Subject = labeledValue(header, labelSubject, tempmail.DefaultSubject)
		detail.Timestamp = labeledValue(header, labelTime, tempmail.DefaultTimestamp)
	}
	detail.CleanedText = textOf(doc)
	return detail
}

// Text returns the readable text of an HTML fragment: script and style elements are dropped and
// the remaining text nodes are joined with single spaces.
func Text(markup string) string {
	doc, err := parse(markup)
	if err != nil {
		return CollapseWhitespace(markup)
	}
	return textOf(doc)
}

// parse builds a document with scripting disabled, so noscript content is parsed as elements and
// any script or style inside it is dropped like everywhere else.
func parse(markup string) (*html.Node, error) {
	return html.ParseWithOptions(strings.NewReader(markup), html.ParseOptionEnableScripting(false))
}

func textOf(n *html.Node) string {
	parts := make([]string, 0, 32)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			parts = append(parts, n.Data)
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		case html.CommentNode, html.DoctypeNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return CollapseWhitespace(strings.Join(parts, " "))
}

// findByID returns the first element in document order with the given id.
func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// labeledValue finds the bold label under block and returns the text node that immediately
// follows it, or def if the label is missing or not followed by text.
func labeledValue(block *html.Node, label, def string) string {
	lbl := findLabel(block, label)
	if lbl == nil {
		return def
	}
	next := lbl.NextSibling
	if next == nil || next.Type != html.TextNode {
		return def
	}
	return orDefault(next.Data, def)
}

func findLabel(n *html.Node, label string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if (c.DataAtom == atom.B || c.DataAtom == atom.Strong) &&
			strings.TrimSpace(rawText(c)) == label {
			return c
		}
		if found := findLabel(c, label); found != nil {
			return found
		}
	}
	return nil
}

// rawText concatenates the text nodes under n without any separator.
func rawText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
