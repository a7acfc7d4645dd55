package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
)

//go:embed templates static
var assets embed.FS

// Page names accepted by Render.
const (
	ListingsIndex = "listings/index"
	ListingsNew   = "listings/new"
	ListingsShow  = "listings/show"
	ListingsEdit  = "listings/edit"
)

// PlaceholderImage is shown for listings without an image.
const PlaceholderImage = "https://images.unsplash.com/photo-1625505826533-5c80aca7d157?auto=format&fit=crop&w=800&q=60"

var pageNames = []string{ListingsIndex, ListingsNew, ListingsShow, ListingsEdit}

// Options configures price display.
type Options struct {
	Locale         string // BCP 47 tag, e.g. "en-IN"
	CurrencySymbol string
}

// Page is the data handed to every template.
type Page struct {
	Title    string
	Listing  *domain.Listing
	Listings []*domain.Listing
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	pages   map[string]*template.Template
	printer *message.Printer
	symbol  string
}

// New parses every page once. An unknown locale is an error.
func New(opts Options) (*Renderer, error) {
	tag, err := language.Parse(opts.Locale)
	if err != nil {
		return nil, fmt.Errorf("invalid price locale %q: %w", opts.Locale, err)
	}

	r := &Renderer{
		pages:   make(map[string]*template.Template, len(pageNames)),
		printer: message.NewPrinter(tag),
		symbol:  opts.CurrencySymbol,
	}

	funcs := template.FuncMap{
		"price":      r.FormatPrice,
		"priceValue": priceValue,
		"image":      imageOrPlaceholder,
	}

	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(assets,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}

	return r, nil
}

// Render executes page name into w. Output is buffered so a failing template
// never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, data Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	_, err := buf.WriteTo(w)
	return err
}

// FormatPrice renders a price with locale grouping and the currency symbol.
// A missing price renders as an empty string.
func (r *Renderer) FormatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return r.symbol + r.printer.Sprintf("%v", number.Decimal(*p, number.MaxFractionDigits(2)))
}

// StaticFS returns the embedded static assets rooted at "static".
func StaticFS() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic("embedded static directory missing: " + err.Error())
	}
	return sub
}

// priceValue renders a price for a form input, without grouping.
func priceValue(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func imageOrPlaceholder(url string) string {
	if url == "" {
		return PlaceholderImage
	}
	return url
}
