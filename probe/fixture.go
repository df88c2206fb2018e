package probe

import (
	"fmt"
	"html"
	"net/url"
	"os"

	"github.com/pkg/errors"
)

const fixtureTemplate = "<html><head><title>%s</title></head><body><h1>Test Page</h1></body></html>"

// Fixture is a throwaway HTML page carrying a known title.
type Fixture struct {
	path  string
	title string
}

func NewFixture(dir, title string) (*Fixture, error) {
	f, err := os.CreateTemp(dir, "browserprobe-*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create test page")
	}

	if _, err = fmt.Fprintf(f, fixtureTemplate, html.EscapeString(title)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, errors.Wrap(err, "failed to write test page")
	}
	if err = f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, errors.Wrap(err, "failed to close test page")
	}

	return &Fixture{path: f.Name(), title: title}, nil
}

func (f *Fixture) Path() string {
	return f.path
}

func (f *Fixture) Title() string {
	return f.title
}

func (f *Fixture) URL() string {
	return (&url.URL{Scheme: "file", Path: f.path}).String()
}

// Remove deletes the page. Removing twice is not an error.
func (f *Fixture) Remove() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove %s", f.path)
	}
	return nil
}
