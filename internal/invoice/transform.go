package invoice

import (
	"fmt"
	"html"
	"strings"

	"github.com/beevik/etree"
)

// Stylesheet is a parsed presentation transform. The invoice stylesheets
// use a small, fixed slice of XSLT: one template matching the document
// root, literal result elements, xsl:value-of, xsl:for-each and {path}
// attribute interpolation. That subset is interpreted directly; there is
// no maintained XSLT engine for Go and the full language is not needed.
type Stylesheet struct {
	prefix string         // namespace prefix bound to the XSLT namespace
	root   *etree.Element // body of the match="/" template
}

const xsltNamespace = "http://www.w3.org/1999/XSL/Transform"

// ParseStylesheet reads a transform document. It requires a stylesheet
// (or transform) root and exactly one template matching "/".
func ParseStylesheet(data []byte) (*Stylesheet, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing stylesheet: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("stylesheet document is empty")
	}
	if root.Tag != "stylesheet" && root.Tag != "transform" {
		return nil, fmt.Errorf("unexpected stylesheet root <%s>", root.FullTag())
	}
	prefix, err := xsltPrefix(root)
	if err != nil {
		return nil, err
	}

	for _, child := range root.ChildElements() {
		if child.Space == prefix && child.Tag == "template" && child.SelectAttrValue("match", "") == "/" {
			return &Stylesheet{prefix: prefix, root: child}, nil
		}
	}
	return nil, fmt.Errorf(`stylesheet has no template matching "/"`)
}

// xsltPrefix finds which prefix the root element binds to the XSLT
// namespace. The stylesheets always use a prefixed form (xsl:...).
func xsltPrefix(root *etree.Element) (string, error) {
	for _, attr := range root.Attr {
		if attr.Space == "xmlns" && attr.Value == xsltNamespace {
			return attr.Key, nil
		}
	}
	return "", fmt.Errorf("stylesheet root does not declare the XSLT namespace")
}

// Apply runs the transform against an invoice document and returns the
// resulting markup fragment. Text content and interpolated attribute
// values are escaped on output.
func (s *Stylesheet) Apply(doc *etree.Document) (string, error) {
	var b strings.Builder
	if err := s.applyChildren(&b, s.root, &doc.Element); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Stylesheet) applyChildren(b *strings.Builder, node *etree.Element, ctx *etree.Element) error {
	for _, tok := range node.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(html.EscapeString(t.Data))
		case *etree.Element:
			if err := s.applyElement(b, t, ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Stylesheet) applyElement(b *strings.Builder, el *etree.Element, ctx *etree.Element) error {
	if el.Space == s.prefix {
		return s.applyInstruction(b, el, ctx)
	}

	// Literal result element: emit it with interpolated attributes and
	// recurse into its children under the same context.
	b.WriteByte('<')
	b.WriteString(el.Tag)
	for _, attr := range el.Attr {
		if attr.Space == "xmlns" || (attr.Space == "" && attr.Key == "xmlns") {
			continue
		}
		value, err := s.interpolate(attr.Value, ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, ` %s="%s"`, attr.Key, html.EscapeString(value))
	}
	b.WriteByte('>')
	if err := s.applyChildren(b, el, ctx); err != nil {
		return err
	}
	fmt.Fprintf(b, "</%s>", el.Tag)
	return nil
}

func (s *Stylesheet) applyInstruction(b *strings.Builder, el *etree.Element, ctx *etree.Element) error {
	switch el.Tag {
	case "value-of":
		text, err := s.selectText(el, ctx)
		if err != nil {
			return err
		}
		b.WriteString(html.EscapeString(text))
		return nil

	case "for-each":
		sel := el.SelectAttrValue("select", "")
		path, err := etree.CompilePath(sel)
		if err != nil {
			return fmt.Errorf("for-each select %q: %w", sel, err)
		}
		for _, matched := range ctx.FindElementsPath(path) {
			if err := s.applyChildren(b, el, matched); err != nil {
				return err
			}
		}
		return nil

	case "text":
		b.WriteString(html.EscapeString(el.Text()))
		return nil

	default:
		return fmt.Errorf("unsupported stylesheet instruction <%s:%s>", el.Space, el.Tag)
	}
}

// selectText evaluates a value-of select expression against ctx. "."
// yields the context element's own text; anything else is an etree path
// whose first match supplies the text. No match yields empty text, as in
// a real XSLT processor.
func (s *Stylesheet) selectText(el *etree.Element, ctx *etree.Element) (string, error) {
	sel := el.SelectAttrValue("select", "")
	if sel == "" {
		return "", fmt.Errorf("value-of without select")
	}
	if sel == "." {
		return strings.TrimSpace(ctx.Text()), nil
	}
	path, err := etree.CompilePath(sel)
	if err != nil {
		return "", fmt.Errorf("value-of select %q: %w", sel, err)
	}
	matched := ctx.FindElementPath(path)
	if matched == nil {
		return "", nil
	}
	return strings.TrimSpace(matched.Text()), nil
}

// interpolate expands {path} expressions inside a literal attribute
// value, the attribute value template form the stylesheets use.
func (s *Stylesheet) interpolate(value string, ctx *etree.Element) (string, error) {
	if !strings.Contains(value, "{") {
		return value, nil
	}

	var b strings.Builder
	rest := value
	for {
		before, after, found := strings.Cut(rest, "{")
		b.WriteString(before)
		if !found {
			return b.String(), nil
		}
		expr, tail, closed := strings.Cut(after, "}")
		if !closed {
			return "", fmt.Errorf("unterminated attribute expression in %q", value)
		}
		if expr == "." {
			b.WriteString(strings.TrimSpace(ctx.Text()))
		} else {
			path, err := etree.CompilePath(expr)
			if err != nil {
				return "", fmt.Errorf("attribute expression %q: %w", expr, err)
			}
			if matched := ctx.FindElementPath(path); matched != nil {
				b.WriteString(strings.TrimSpace(matched.Text()))
			}
		}
		rest = tail
	}
}
