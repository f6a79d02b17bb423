package feed

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"ewintr.nl/tubecast/model"
)

const (
	itunesNS    = "http://www.itunes.com/dtds/podcast-1.0.dtd"
	contentNS   = "http://purl.org/rss/1.0/modules/content/"
	language    = "es-es"
	category    = "Technology"
	audioType   = "audio/mpeg"
	titleSuffix = " (YouTube)"
)

type rss struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	ItunesNS  string     `xml:"xmlns:itunes,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string         `xml:"title"`
	Link        string         `xml:"link"`
	Description string         `xml:"description"`
	Language    string         `xml:"language"`
	Author      string         `xml:"itunes:author"`
	ItunesImage itunesImage    `xml:"itunes:image"`
	Image       rssImage       `xml:"image"`
	Category    itunesCategory `xml:"itunes:category"`
	Items       []rssItem      `xml:"item"`
}

type itunesImage struct {
	Href string `xml:"href,attr"`
}

type itunesCategory struct {
	Text string `xml:"text,attr"`
}

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type rssItem struct {
	Title       string       `xml:"title"`
	Description string       `xml:"description"`
	Link        string       `xml:"link"`
	GUID        string       `xml:"guid"`
	PubDate     string       `xml:"pubDate"`
	Duration    string       `xml:"itunes:duration"`
	Enclosure   enclosure    `xml:"enclosure"`
	Image       *itunesImage `xml:"itunes:image,omitempty"`
}

type enclosure struct {
	URL    string `xml:"url,attr"`
	Length string `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

func FeedURL(baseURL, feedID string) string {
	return fmt.Sprintf("%s/feed/%s", strings.TrimRight(baseURL, "/"), feedID)
}

func AudioURL(baseURL string, videoID model.YoutubeVideoID) string {
	return fmt.Sprintf("%s/audio/%s", strings.TrimRight(baseURL, "/"), videoID)
}

// Build renders the podcast document for a channel. Items keep the order of
// videos. The output only depends on the arguments.
func Build(ch *model.Channel, videos []model.Video, baseURL, feedID string) (string, error) {
	title := ch.Title + titleSuffix
	link := FeedURL(baseURL, feedID)
	description := ch.Description
	if description == "" {
		description = fmt.Sprintf("Podcast feed for YouTube channel %s", ch.Title)
	}

	doc := rss{
		Version:   "2.0",
		ItunesNS:  itunesNS,
		ContentNS: contentNS,
		Channel: rssChannel{
			Title:       title,
			Link:        link,
			Description: description,
			Language:    language,
			Author:      ch.Title,
			ItunesImage: itunesImage{Href: ch.Thumbnail},
			Image: rssImage{
				URL:   ch.Thumbnail,
				Title: title,
				Link:  link,
			},
			Category: itunesCategory{Text: category},
			Items:    make([]rssItem, 0, len(videos)),
		},
	}

	for _, v := range videos {
		url := v.URL
		if url == "" {
			url = v.ID.WatchURL()
		}
		item := rssItem{
			Title:       v.Title,
			Description: v.Description,
			Link:        url,
			GUID:        url,
			PubDate:     v.PublishedAt,
			Duration:    v.Duration,
			Enclosure: enclosure{
				URL:    AudioURL(baseURL, v.ID),
				Length: strconv.FormatInt(v.FileSize, 10),
				Type:   audioType,
			},
		}
		if v.Thumbnail != "" {
			item.Image = &itunesImage{Href: v.Thumbnail}
		}
		doc.Channel.Items = append(doc.Channel.Items, item)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not render feed %s: %w", feedID, err)
	}

	return xml.Header + string(body), nil
}
