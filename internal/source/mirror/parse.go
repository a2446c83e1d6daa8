package mirror

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

const itemTag = "item"

var utf8BOM = []byte("\xef\xbb\xbf")

var xmlEncodingPattern = regexp.MustCompile(`^\s*<\?xml[^>]*\sencoding\s*=\s*["']([^"']+)["']`)

// SelectItems returns every item element of body in document order.
func SelectItems(body []byte) ([]Item, error) {
	d := xml.NewDecoder(bytes.NewReader(body))
	d.Strict = false
	d.Entity = xml.HTMLEntity
	// body is already UTF-8, whatever the declaration says.
	d.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }

	items := []Item{}
	for {
		start := d.InputOffset()
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != itemTag {
			continue
		}

		var item Item
		if err := d.DecodeElement(&item, &se); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		item.Raw = string(body[start:d.InputOffset()])

		items = append(items, item)
	}

	return items, nil
}

// toUTF8 converts body to UTF-8. A BOM or a charset in contentType wins,
// then the XML declaration. Without either, valid UTF-8 is kept as is and
// anything else is left to sniffing.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain {
		if m := xmlEncodingPattern.FindSubmatch(body); m != nil {
			if e, n := charset.Lookup(string(m[1])); e != nil {
				enc, name = e, n
			}
		} else if utf8.Valid(body) {
			name = "utf-8"
		}
	}
	if name == "utf-8" {
		return bytes.TrimPrefix(body, utf8BOM), nil
	}

	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s body: %w", name, err)
	}
	return out, nil
}
