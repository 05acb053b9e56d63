package provider

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	underscoreAcronym = regexp.MustCompile(`([A-Z\d]+)([A-Z][a-z])`)
	underscoreCamel   = regexp.MustCompile(`([a-z\d])([A-Z])`)
)

// Underscore converts an XML tag name to the lower_snake_case key used in
// Result.Fields: "PNRef" -> "pn_ref", "ResponseCode" -> "response_code".
func Underscore(name string) string {
	s := underscoreAcronym.ReplaceAllString(name, "${1}_${2}")
	s = underscoreCamel.ReplaceAllString(s, "${1}_${2}")
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ToLower(s)
}

// FlattenContainer locates the named element anywhere in raw and flattens
// its subtree into a field map: leaf element text under Underscore(tag),
// element attributes under Underscore(tag)_Underscore(attr). The container
// may sit at any depth; processors move it around depending on which
// operation the shared endpoint served. A missing container or malformed
// markup is a ParseError.
func FlattenContainer(raw []byte, container string) (map[string]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Detail: fmt.Sprintf("response has no %s element", container)}
		}
		if err != nil {
			return nil, &ParseError{Detail: "malformed response", Cause: err}
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == container {
			fields := make(map[string]string)
			if err := flattenElement(dec, se, fields); err != nil {
				return nil, err
			}
			return fields, nil
		}
	}
}

func flattenElement(dec *xml.Decoder, start xml.StartElement, fields map[string]string) error {
	prefix := Underscore(start.Name.Local)
	for _, a := range start.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		fields[prefix+"_"+Underscore(a.Name.Local)] = a.Value
	}

	var text strings.Builder
	hasChildren := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return &ParseError{Detail: "malformed response", Cause: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			hasChildren = true
			if err := flattenElement(dec, t, fields); err != nil {
				return err
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if !hasChildren {
				fields[prefix] = strings.TrimSpace(text.String())
			}
			return nil
		}
	}
}
