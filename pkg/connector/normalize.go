package connector

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// The connector boundary promises plain data: nested maps of string keys to
// strings, nested maps, or slices. Everything retrieved from a device is
// normalized here before it reaches the engines.

// parseXMLSubtree converts an XML fragment into the normalized shape.
// Elements with repeated names become slices; leaf elements become their
// trimmed character data.
func parseXMLSubtree(fragment string) (any, error) {
	dec := xml.NewDecoder(strings.NewReader(fragment))

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid XML: %w", err)
		}

		if start, ok := tok.(xml.StartElement); ok {
			value, err := parseElement(dec, start)
			if err != nil {
				return nil, err
			}

			return map[string]any{start.Name.Local: value}, nil
		}
	}
}

func parseElement(dec *xml.Decoder, start xml.StartElement) (any, error) {
	children := make(map[string]any)

	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseElement(dec, t)
			if err != nil {
				return nil, err
			}

			appendChild(children, t.Name.Local, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if len(children) > 0 {
				return children, nil
			}

			return strings.TrimSpace(text.String()), nil
		}
	}
}

// appendChild inserts a child value, promoting repeated names to a slice.
func appendChild(m map[string]any, name string, value any) {
	existing, ok := m[name]
	if !ok {
		m[name] = value
		return
	}

	if list, ok := existing.([]any); ok {
		m[name] = append(list, value)
		return
	}

	m[name] = []any{existing, value}
}

// extractData pulls the inner XML of the <data> element out of a get or
// get-config reply. Returns empty when the device answered with no data.
func extractData(reply string) (string, bool) {
	openIdx := strings.Index(reply, "<data")
	if openIdx < 0 {
		return "", false
	}

	rest := reply[openIdx:]

	// Self-closing <data/> means the filter matched nothing.
	gt := strings.Index(rest, ">")
	if gt < 0 {
		return "", false
	}

	if strings.HasSuffix(strings.TrimSpace(rest[:gt+1]), "/>") {
		return "", true
	}

	closeIdx := strings.LastIndex(rest, "</data>")
	if closeIdx < 0 {
		return "", false
	}

	inner := strings.TrimSpace(rest[gt+1 : closeIdx])

	return inner, true
}

var xpathPredicateRe = regexp.MustCompile(`^([\w:-]+)\[([\w:-]+)=['"]([^'"]*)['"]\]$`)

// splitXPath splits a path on '/' outside predicates and quoted strings.
// Key values like port-id='1/1/1' stay inside their segment.
func splitXPath(xpath string) []string {
	var (
		segments []string
		current  strings.Builder
		depth    int
		quote    byte
	)

	for i := 0; i < len(xpath); i++ {
		c := xpath[i]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			if depth > 0 {
				depth--
			}
		case c == '/' && depth == 0:
			if current.Len() > 0 {
				segments = append(segments, current.String())
			}

			current.Reset()

			continue
		}

		current.WriteByte(c)
	}

	if current.Len() > 0 {
		segments = append(segments, current.String())
	}

	return segments
}

// wrapXPath nests content inside the element chain described by an XPath,
// e.g. /configure/system/ntp. List predicates become key leaf elements:
// interface[name='eth0'] yields <interface><name>eth0</name>...</interface>.
func wrapXPath(xpath, content string) (string, error) {
	segments := splitXPath(xpath)
	if len(segments) == 0 {
		return "", fmt.Errorf("empty xpath %q", xpath)
	}

	result := content

	for i := len(segments) - 1; i >= 0; i-- {
		seg := strings.TrimSpace(segments[i])

		if m := xpathPredicateRe.FindStringSubmatch(seg); m != nil {
			result = fmt.Sprintf("<%s><%s>%s</%s>%s</%s>", m[1], m[2], xmlEscape(m[3]), m[2], result, m[1])
			continue
		}

		if !validElementName(seg) {
			return "", fmt.Errorf("invalid xpath segment %q", seg)
		}

		result = fmt.Sprintf("<%s>%s</%s>", seg, result, seg)
	}

	return result, nil
}

// structuredToXML renders a normalized mapping as XML elements with
// deterministic key order.
func structuredToXML(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var b strings.Builder

	for _, k := range keys {
		writeValueXML(&b, k, m[k])
	}

	return b.String()
}

func writeValueXML(b *strings.Builder, name string, value any) {
	switch v := value.(type) {
	case map[string]any:
		fmt.Fprintf(b, "<%s>%s</%s>", name, structuredToXML(v), name)
	case []any:
		for _, item := range v {
			writeValueXML(b, name, item)
		}
	case nil:
		fmt.Fprintf(b, "<%s/>", name)
	default:
		fmt.Fprintf(b, "<%s>%s</%s>", name, xmlEscape(fmt.Sprintf("%v", v)), name)
	}
}

func xmlEscape(s string) string {
	var b strings.Builder

	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}

	return b.String()
}

var elementNameRe = regexp.MustCompile(`^[A-Za-z_][\w:.-]*$`)

func validElementName(s string) bool {
	return elementNameRe.MatchString(s)
}
