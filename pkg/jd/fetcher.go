// Package jd reads job descriptions from files, URLs or standard input.
package jd

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// StdinInput is the argument that selects standard input.
const StdinInput = "-"

// Fetcher retrieves job description text.
type Fetcher struct {
	Stdin      io.Reader
	HTTPClient *http.Client
}

// NewFetcher returns a fetcher reading os.Stdin with a 30 second HTTP timeout.
func NewFetcher() (f *Fetcher) {
	f = &Fetcher{
		Stdin: os.Stdin,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	return f
}

// Fetch reads input as stdin ("-"), an http(s) URL, or a file path.
func (f *Fetcher) Fetch(ctx context.Context, input string) (content string, err error) {
	if input == StdinInput {
		content, err = readAll(f.Stdin)
		if err != nil {
			err = errors.Wrap(err, "failed to read JD from stdin")
			return content, err
		}
		return content, err
	}

	parsedURL, urlErr := url.Parse(input)
	if urlErr == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") {
		content, err = f.fetchFromURL(ctx, input)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch JD from URL: %s", input)
			return content, err
		}
		return content, err
	}

	content, err = fetchFromFile(input)
	if err != nil {
		err = errors.Wrapf(err, "failed to fetch JD from file: %s", input)
		return content, err
	}

	return content, err
}

func readAll(r io.Reader) (content string, err error) {
	var data []byte
	data, err = io.ReadAll(r)
	if err != nil {
		return content, err
	}

	content = strings.TrimSpace(string(data))
	if content == "" {
		err = errors.New("input is empty")
		return content, err
	}
	return content, err
}

func fetchFromFile(path string) (content string, err error) {
	var file *os.File
	file, err = os.Open(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read file: %s", path)
		return content, err
	}
	defer file.Close()

	content, err = readAll(file)
	return content, err
}

func (f *Fetcher) fetchFromURL(ctx context.Context, urlStr string) (content string, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return content, err
	}

	req.Header.Set("User-Agent", "job-tracker/1.0")

	var resp *http.Response
	resp, err = f.HTTPClient.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return content, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP request failed with status: %d", resp.StatusCode)
		return content, err
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "html") {
		content, err = htmlText(resp.Body)
		if err != nil {
			err = errors.Wrap(err, "failed to parse HTML")
			return content, err
		}
	} else {
		content, err = readAll(resp.Body)
		if err != nil {
			return content, err
		}
	}

	if content == "" {
		err = errors.New("fetched content is empty after processing")
		return content, err
	}

	return content, err
}

// htmlText returns the visible text of an HTML document, one block per line.
func htmlText(r io.Reader) (text string, err error) {
	var doc *html.Node
	doc, err = html.Parse(r)
	if err != nil {
		return text, err
	}

	var lines []string
	var current strings.Builder
	flush := func() {
		line := strings.Join(strings.Fields(current.String()), " ")
		if line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "head":
				return
			case "p", "div", "li", "br", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "section", "ul", "ol":
				flush()
				defer flush()
			}
		}
		if n.Type == html.TextNode {
			current.WriteString(n.Data)
			current.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	flush()

	text = strings.Join(lines, "\n")
	return text, err
}
