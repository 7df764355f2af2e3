package feedxml

import "encoding/xml"

// The iTunes and Atom namespaces are declared as plain prefixed attributes
// and elements use literal "itunes:" names; encoding/xml has no first-class
// namespace-prefix support on output, and this is the conventional way to
// produce directory-compatible documents with it.

type rssDoc struct {
	XMLName  xml.Name `xml:"rss"`
	Version  string   `xml:"version,attr"`
	ItunesNS string   `xml:"xmlns:itunes,attr"`
	AtomNS   string   `xml:"xmlns:atom,attr"`
	Channel  *channel `xml:"channel"`
}

type channel struct {
	Title          string           `xml:"title"`
	Link           string           `xml:"link"`
	Description    string           `xml:"description"`
	Language       string           `xml:"language,omitempty"`
	Copyright      string           `xml:"copyright,omitempty"`
	ManagingEditor string           `xml:"managingEditor,omitempty"`
	PubDate        string           `xml:"pubDate,omitempty"`
	LastBuildDate  string           `xml:"lastBuildDate,omitempty"`
	AtomLink       *atomLink        `xml:"atom:link,omitempty"`
	Image          *rssImage        `xml:"image,omitempty"`
	IAuthor        string           `xml:"itunes:author,omitempty"`
	IExplicit      string           `xml:"itunes:explicit,omitempty"`
	IImage         *itunesImage     `xml:"itunes:image,omitempty"`
	IOwner         *itunesOwner     `xml:"itunes:owner,omitempty"`
	ICategories    []itunesCategory `xml:"itunes:category"`
	Items          []*item          `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type itunesImage struct {
	Href string `xml:"href,attr"`
}

type itunesOwner struct {
	Name  string `xml:"itunes:name,omitempty"`
	Email string `xml:"itunes:email,omitempty"`
}

type itunesCategory struct {
	Text string `xml:"text,attr"`
}

type item struct {
	Title        string       `xml:"title"`
	Description  string       `xml:"description"`
	GUID         guid         `xml:"guid"`
	PubDate      string       `xml:"pubDate"`
	Enclosure    *enclosure   `xml:"enclosure"`
	IDuration    string       `xml:"itunes:duration,omitempty"`
	IExplicit    string       `xml:"itunes:explicit,omitempty"`
	IImage       *itunesImage `xml:"itunes:image,omitempty"`
	IEpisode     string       `xml:"itunes:episode,omitempty"`
	ISeason      string       `xml:"itunes:season,omitempty"`
	IEpisodeType string       `xml:"itunes:episodeType,omitempty"`
}

type guid struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type enclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}
