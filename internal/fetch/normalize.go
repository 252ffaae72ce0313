package fetch

import (
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// boilerplateSel matches page chrome that carries no schedule content.
const boilerplateSel = "script, style, noscript, iframe, svg, nav, header, footer, aside, form"

// blockSel matches elements that should break lines in the text rendering.
const blockSel = "p, div, li, tr, h1, h2, h3, h4, h5, h6, section, article, table, ul, ol, dl, dt, dd, blockquote"

// Normalize renders HTML into plain text suitable for language model
// consumption: boilerplate subtrees are stripped, links become
// "[text](url)" with URLs resolved against pageURL, images become
// "![alt](url)", and block elements break lines. When contentSel is
// non-empty and matches, output is scoped to that region.
func Normalize(r io.Reader, pageURL, contentSel string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	doc.Find(boilerplateSel).Remove()

	root := doc.Selection.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	if contentSel != "" {
		if scoped := doc.Find(contentSel); scoped.Length() > 0 {
			root = scoped.First()
		}
	}

	root.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		alt, _ := s.Attr("alt")
		s.ReplaceWithHtml(html.EscapeString(fmt.Sprintf("![%s](%s)", collapseSpace(alt), resolveURL(base, src))))
	})

	root.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := collapseSpace(s.Text())
		if text == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			s.ReplaceWithHtml(html.EscapeString(text))
			return
		}
		s.ReplaceWithHtml(html.EscapeString(fmt.Sprintf("[%s](%s)", text, resolveURL(base, href))))
	})

	root.Find("br").ReplaceWithHtml("\n")
	root.Find(blockSel).AfterHtml("\n")

	return cleanText(root.Text()), nil
}

// resolveURL makes href absolute against the page base where possible.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanText trims each line and collapses runs of blank lines.
func cleanText(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, collapseSpace(line))
		blank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
