// Package fragment wraps golang.org/x/net/html with the small set of
// operations the fragment transforms share: parsing a snippet of rendered
// markup, walking its elements, reading and mutating attributes and class
// lists, and rendering the mutated tree back to a string.
package fragment

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var firstTagPattern = regexp.MustCompile(`<\s*([a-zA-Z][a-zA-Z0-9]*)`)

// contextFor picks the parsing context element from the fragment's first
// tag, so table rows, cells, and options survive the parse instead of being
// foster-parented out of a <body> context.
func contextFor(markup string) *html.Node {
	tag := "body"
	if m := firstTagPattern.FindStringSubmatch(markup); m != nil {
		switch strings.ToLower(m[1]) {
		case "tr":
			tag = "tbody"
		case "td", "th":
			tag = "tr"
		case "thead", "tbody", "tfoot", "caption", "colgroup":
			tag = "table"
		case "option", "optgroup":
			tag = "select"
		case "li":
			tag = "ul"
		}
	}
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// Parse parses an HTML fragment into its top-level nodes. The parsing
// context is inferred from the first tag, defaulting to <body>.
func Parse(markup string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(markup), contextFor(markup))
}

// Render serializes the given nodes back into markup.
func Render(nodes ...*html.Node) (string, error) {
	var sb strings.Builder
	for _, n := range nodes {
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// Transform parses markup, applies fn to its top-level nodes and renders the
// result. The transform sees and may mutate the full tree in place.
func Transform(markup string, fn func(nodes []*html.Node) error) (string, error) {
	nodes, err := Parse(markup)
	if err != nil {
		return "", err
	}
	if err := fn(nodes); err != nil {
		return "", err
	}
	return Render(nodes...)
}

// Walk visits every element node in the tree rooted at n, pre-order.
func Walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, visit)
	}
}

// WalkAll visits every element node across multiple top-level nodes.
func WalkAll(nodes []*html.Node, visit func(*html.Node)) {
	for _, n := range nodes {
		Walk(n, visit)
	}
}

// Attr returns the value of the named attribute and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the named attribute if present.
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Classes returns the element's class list.
func Classes(n *html.Node) []string {
	raw, _ := Attr(n, "class")
	return strings.Fields(raw)
}

// HasClass reports whether the element carries the given class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass appends a class if it is not already present.
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	classes := append(Classes(n), class)
	SetAttr(n, "class", strings.Join(classes, " "))
}

// RemoveClass drops a class from the element's class list.
func RemoveClass(n *html.Node, class string) {
	classes := Classes(n)
	kept := classes[:0]
	for _, c := range classes {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// Text returns the concatenated text content of the tree rooted at n with
// runs of whitespace collapsed to single spaces.
func Text(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// SetText replaces the element's children with a single text node.
func SetText(n *html.Node, text string) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// FindFirst returns the first element (pre-order) satisfying pred, searching
// every top-level node.
func FindFirst(nodes []*html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	WalkAll(nodes, func(n *html.Node) {
		if found == nil && pred(n) {
			found = n
		}
	})
	return found
}

// FindAll returns every element satisfying pred, pre-order.
func FindAll(nodes []*html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	WalkAll(nodes, func(n *html.Node) {
		if pred(n) {
			out = append(out, n)
		}
	})
	return out
}

// IsTag reports whether n is an element with the given tag name.
func IsTag(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

// Ancestor climbs from n to the nearest ancestor with the given tag name.
func Ancestor(n *html.Node, tag string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if IsTag(p, tag) {
			return p
		}
	}
	return nil
}

// Hide sets an inline display:none on the element, preserving other styles.
func Hide(n *html.Node) {
	style, _ := Attr(n, "style")
	for _, decl := range strings.Split(style, ";") {
		if strings.HasPrefix(strings.ReplaceAll(decl, " ", ""), "display:none") {
			return
		}
	}
	style = strings.TrimSpace(style)
	if style != "" && !strings.HasSuffix(style, ";") {
		style += ";"
	}
	if style != "" {
		style += " "
	}
	SetAttr(n, "style", style+"display: none")
}

// Show strips an inline display:none from the element.
func Show(n *html.Node) {
	style, ok := Attr(n, "style")
	if !ok {
		return
	}
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" || strings.HasPrefix(strings.ReplaceAll(decl, " ", ""), "display:none") {
			continue
		}
		kept = append(kept, decl)
	}
	if len(kept) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", strings.Join(kept, "; "))
}
