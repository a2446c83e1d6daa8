package mirror

import "encoding/xml"

const (
	dublinCoreSpace = "http://purl.org/dc/elements/1.1/"
	mediaRSSSpace   = "http://search.yahoo.com/mrss/"
)

// Item is one raw <item> element of the mirror feed.
type Item struct {
	Links        []string
	Titles       []string
	Creators     []string
	Authors      []string
	Descriptions []string
	Thumbnails   []Thumbnail

	// Raw is the outer markup of the element exactly as served.
	Raw string
}

type Thumbnail struct {
	URL string `xml:"url,attr"`
}

// UnmarshalXML collects the direct children of an item. Plain RSS
// children must share the item's namespace, so media:title or atom:link
// siblings are skipped. creator and thumbnail are only taken from the
// Dublin Core and Media RSS namespaces.
func (it *Item) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := it.decodeChild(d, start.Name.Space, t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (it *Item) decodeChild(d *xml.Decoder, itemSpace string, el xml.StartElement) error {
	var target *[]string

	switch {
	case el.Name.Space == itemSpace:
		switch el.Name.Local {
		case "link":
			target = &it.Links
		case "title":
			target = &it.Titles
		case "author":
			target = &it.Authors
		case "description":
			target = &it.Descriptions
		}
	case inSpace(el.Name, dublinCoreSpace, "dc") && el.Name.Local == "creator":
		target = &it.Creators
	case inSpace(el.Name, mediaRSSSpace, "media") && el.Name.Local == "thumbnail":
		var thumb Thumbnail
		if err := d.DecodeElement(&thumb, &el); err != nil {
			return err
		}
		it.Thumbnails = append(it.Thumbnails, thumb)
		return nil
	}

	if target == nil {
		return d.Skip()
	}

	var text string
	if err := d.DecodeElement(&text, &el); err != nil {
		return err
	}
	*target = append(*target, text)
	return nil
}

// inSpace reports whether name belongs to uri. An undeclared prefix is left
// untranslated by the decoder, so the conventional prefix is accepted too.
func inSpace(name xml.Name, uri, prefix string) bool {
	return name.Space == uri || name.Space == prefix
}
