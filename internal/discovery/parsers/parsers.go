package parsers

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"marquee/internal/textutil"
)

// Source names with registered parsers.
const (
	SourceIMDBChart  = "imdb_chart"
	SourceRTTheaters = "rt_theaters"
	SourceGeneric    = "generic"
)

// Entry is one movie extracted from a fetched document.
type Entry struct {
	Title  string
	Year   int
	Rank   int
	URL    string
	Source string
}

// Parser extracts entries from one source's document format.
type Parser interface {
	Name() string
	Parse(r io.Reader, sourceURL string) ([]Entry, error)
}

// Get returns the parser registered for name, falling back to the generic
// parser for unknown sources.
func Get(name string) Parser {
	switch name {
	case SourceIMDBChart:
		return IMDBChartParser{}
	case SourceRTTheaters:
		return RTTheatersParser{}
	default:
		return GenericParser{}
	}
}

// IMDBChartParser reads the IMDb MOVIEmeter chart page.
type IMDBChartParser struct{}

func (IMDBChartParser) Name() string { return SourceIMDBChart }

// Parse extracts ranked titles from chart list items, falling back to any
// title links when the list markup has changed.
func (p IMDBChartParser) Parse(r io.Reader, sourceURL string) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	seen := make(map[string]bool)
	add := func(title string, rank int) {
		title = textutil.CleanTitle(title)
		if title == "" || seen[strings.ToLower(title)] {
			return
		}
		seen[strings.ToLower(title)] = true
		entries = append(entries, Entry{
			Title:  title,
			Rank:   rank,
			URL:    sourceURL,
			Source: p.Name(),
		})
	}

	doc.Find("li.ipc-metadata-list-summary-item").Each(func(i int, item *goquery.Selection) {
		heading := item.Find("h3").First().Text()
		if heading == "" {
			return
		}
		add(heading, rankPrefix(heading, i+1))
	})

	if len(entries) == 0 {
		doc.Find(`a[href*="/title/tt"]`).Each(func(i int, link *goquery.Selection) {
			text := strings.TrimSpace(link.Text())
			if len(text) < 2 {
				return
			}
			add(text, 0)
		})
	}

	return entries, nil
}

// RTTheatersParser reads the Rotten Tomatoes "movies in theaters" browse
// page.
type RTTheatersParser struct{}

func (RTTheatersParser) Name() string { return SourceRTTheaters }

func (p RTTheatersParser) Parse(r io.Reader, sourceURL string) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	seen := make(map[string]bool)
	add := func(title string) {
		title = textutil.CleanTitle(title)
		if title == "" || seen[strings.ToLower(title)] {
			return
		}
		seen[strings.ToLower(title)] = true
		entries = append(entries, Entry{
			Title:  title,
			URL:    sourceURL,
			Source: p.Name(),
		})
	}

	doc.Find(`span[data-qa="discovery-media-list-item-title"]`).Each(func(_ int, span *goquery.Selection) {
		add(span.Text())
	})

	if len(entries) == 0 {
		doc.Find(`a[href*="/m/"]`).Each(func(_ int, link *goquery.Selection) {
			text := strings.TrimSpace(link.Find("span").First().Text())
			if text == "" {
				text = strings.TrimSpace(link.Text())
			}
			if len(text) >= 2 {
				add(text)
			}
		})
	}

	return entries, nil
}

var titleYearRe = regexp.MustCompile(`([A-Z][^()\n]{1,55}?)\s*\(((?:19|20)\d{2})\)`)

// GenericParser scans arbitrary text for "Title (Year)" patterns. It is the
// fallback for sources without a dedicated parser.
type GenericParser struct{}

func (GenericParser) Name() string { return SourceGeneric }

func (p GenericParser) Parse(r io.Reader, sourceURL string) ([]Entry, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	seen := make(map[string]bool)
	for _, match := range titleYearRe.FindAllStringSubmatch(string(content), -1) {
		title := textutil.CleanTitle(match[1])
		if title == "" || seen[strings.ToLower(title)] {
			continue
		}
		year, _ := strconv.Atoi(match[2])
		seen[strings.ToLower(title)] = true
		entries = append(entries, Entry{
			Title:  title,
			Year:   year,
			URL:    sourceURL,
			Source: p.Name(),
		})
	}
	return entries, nil
}

var rankRe = regexp.MustCompile(`^\s*(\d{1,3})\.\s`)

// rankPrefix extracts a leading "N." rank from a heading, defaulting to the
// item's position.
func rankPrefix(heading string, position int) int {
	if match := rankRe.FindStringSubmatch(heading); match != nil {
		if rank, err := strconv.Atoi(match[1]); err == nil {
			return rank
		}
	}
	return position
}
