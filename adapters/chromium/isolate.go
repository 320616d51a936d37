package exportchromium

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-resume-export/export"
)

const isolatedCloneID = "isolated"

// isolateSurface rewrites a rendered page into a standalone document whose
// body holds only the surface node. Stylesheets are kept; a capture
// stylesheet pins the node to width and removes scale transforms.
func isolateSurface(input []byte, selector string, width int, cfg export.CaptureConfig) ([]byte, error) {
	match, err := compileSelector(selector)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(input))
	if err != nil {
		return nil, export.CaptureFailure("parse surface html", err)
	}

	node := findElement(doc, match)
	if node == nil {
		return nil, export.CaptureFailure(fmt.Sprintf("surface %s not found", selector), nil)
	}
	switch node.DataAtom {
	case atom.Html, atom.Head, atom.Body:
		return nil, export.CaptureFailure(fmt.Sprintf("surface %s must be inside the body", selector), nil)
	}
	// html.Parse always synthesizes head and body.
	head := findElement(doc, isAtom(atom.Head))
	body := findElement(doc, isAtom(atom.Body))
	if head == nil || body == nil {
		return nil, export.CaptureFailure("surface html has no document body", nil)
	}

	node.Parent.RemoveChild(node)

	var sheets []*html.Node
	walkElements(body, func(n *html.Node) {
		if isStylesheet(n) {
			sheets = append(sheets, n)
		}
	})
	for _, sheet := range sheets {
		sheet.Parent.RemoveChild(sheet)
		head.AppendChild(sheet)
	}
	for body.FirstChild != nil {
		body.RemoveChild(body.FirstChild)
	}

	setAttr(node, cloneAttribute, isolatedCloneID)
	body.AppendChild(node)

	if findElement(head, hasCharset) == nil {
		meta := &html.Node{Type: html.ElementNode, DataAtom: atom.Meta, Data: "meta",
			Attr: []html.Attribute{{Key: "charset", Val: "utf-8"}}}
		head.InsertBefore(meta, head.FirstChild)
	}
	style := &html.Node{Type: html.ElementNode, DataAtom: atom.Style, Data: "style"}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: captureCSS(width, cfg)})
	head.AppendChild(style)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, export.CaptureFailure("render isolated surface", err)
	}
	return buf.Bytes(), nil
}

// captureCSS mirrors the inline edits the Chromium clone script applies.
func captureCSS(width int, cfg export.CaptureConfig) string {
	clone := "[" + cloneAttribute + "]"
	bg := cssValue(cfg.Background)

	var b strings.Builder
	fmt.Fprintf(&b, "html,body{margin:0;padding:0;width:%dpx;}\n", width)
	fmt.Fprintf(&b, "%s{width:%dpx!important;max-width:none!important;height:auto!important;margin:0!important;"+
		"transform:none!important;-webkit-transform:none!important;}\n", clone, width)
	if bg != "" {
		fmt.Fprintf(&b, "html,body,%s{background:%s!important;}\n", clone, bg)
	}
	fmt.Fprintf(&b, "%[1]s [data-role=\"heading\"],%[1]s [data-role=\"divider\"]{padding-bottom:%[2]gpx!important;}\n",
		clone, cfg.HeadingPaddingPx)
	fmt.Fprintf(&b, "%[1]s [data-role=\"heading\"]+:not([data-role=\"divider\"]),"+
		"%[1]s [data-role=\"divider\"]+:not([data-role=\"divider\"]){padding-top:%[2]gpx!important;}\n",
		clone, cfg.FollowingPaddingPx)
	return b.String()
}

// cssValue drops values that could escape the declaration they are written into.
func cssValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.ContainsAny(v, "{};<>\\\"'") {
		return ""
	}
	return v
}

// compileSelector supports the selector forms renderers emit: #id, .class
// and a bare tag name.
func compileSelector(selector string) (func(*html.Node) bool, error) {
	sel := strings.TrimSpace(selector)
	switch {
	case len(sel) > 1 && sel[0] == '#' && !strings.ContainsAny(sel[1:], " >+~[]:#.,*"):
		id := sel[1:]
		return func(n *html.Node) bool { return attr(n, "id") == id }, nil
	case len(sel) > 1 && sel[0] == '.' && !strings.ContainsAny(sel[1:], " >+~[]:#.,*"):
		class := sel[1:]
		return func(n *html.Node) bool {
			for _, c := range strings.Fields(attr(n, "class")) {
				if c == class {
					return true
				}
			}
			return false
		}, nil
	case sel != "" && !strings.ContainsAny(sel, " >+~[]:#.,*"):
		tag := strings.ToLower(sel)
		return func(n *html.Node) bool { return n.Data == tag }, nil
	}
	return nil, export.CaptureFailure(fmt.Sprintf("unsupported surface selector %q", selector), nil)
}

func walkElements(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			fn(c)
		}
		walkElements(c, fn)
	}
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func isAtom(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.DataAtom == a }
}

func hasCharset(n *html.Node) bool {
	return n.DataAtom == atom.Meta && attr(n, "charset") != ""
}

func isStylesheet(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Style:
		return true
	case atom.Link:
		for _, rel := range strings.Fields(strings.ToLower(attr(n, "rel"))) {
			if rel == "stylesheet" {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
