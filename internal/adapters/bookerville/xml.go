package bookerville

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// RawKey is the map key under which the client stashes the untouched
// response document.
const RawKey = "#raw"

// parseXML decodes an XML document into nested map[string]any so the mapper
// layer can address fields with the same alias-path lookups it uses for any
// other associative payload. Repeated sibling elements collapse into []any;
// attributes become plain keys; an element with both children and text keeps
// the text under "#text".
func parseXML(r io.Reader) (map[string]any, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.New("empty xml document")
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		v, err := decodeElement(dec, se)
		if err != nil {
			return nil, err
		}
		if m, ok := v.(map[string]any); ok {
			return m, nil
		}
		return map[string]any{se.Name.Local: v}, nil
	}
}

func decodeElement(dec *xml.Decoder, start xml.StartElement) (any, error) {
	m := make(map[string]any, 4)
	for _, a := range start.Attr {
		m[a.Name.Local] = a.Value
	}

	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(dec, t)
			if err != nil {
				return nil, err
			}
			addChild(m, t.Name.Local, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			s := strings.TrimSpace(text.String())
			if len(m) == 0 {
				return s, nil
			}
			if s != "" {
				m["#text"] = s
			}
			return m, nil
		}
	}
}

func addChild(m map[string]any, key string, v any) {
	prev, ok := m[key]
	if !ok {
		m[key] = v
		return
	}
	if arr, ok := prev.([]any); ok {
		m[key] = append(arr, v)
		return
	}
	m[key] = []any{prev, v}
}

// elements normalizes the single-or-repeated child under key (searching one
// container level deep, e.g. <properties><property>...) into a flat slice
// of maps.
func elements(m map[string]any, key string) []map[string]any {
	v, ok := m[key]
	if !ok {
		for _, inner := range m {
			if im, ok := inner.(map[string]any); ok {
				if v, ok = im[key]; ok {
					break
				}
			}
		}
	}
	switch t := v.(type) {
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, it := range t {
			if im, ok := it.(map[string]any); ok {
				out = append(out, im)
			}
		}
		return out
	case map[string]any:
		return []map[string]any{t}
	default:
		return nil
	}
}
