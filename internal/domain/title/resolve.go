// Package title decides which title, if any, is shown in the address bar.
package title

import "strings"

// NetErrorPrefix prefixes the network error placeholder page.
const NetErrorPrefix = "about:neterror"

// placeholderAddresses are pages that wait for input rather than show content.
var placeholderAddresses = map[string]bool{
	"about:blank":           true,
	"about:newtab":          true,
	"about:home":            true,
	"about:privatebrowsing": true,
	"about:sessionrestore":  true,
}

// Label is a tab label fixed by a third-party tab labeling extension.
type Label struct {
	Text  string
	Fixed bool
}

// NoLabel is the zero Label: the page title is used.
var NoLabel = Label{}

// FixedLabel returns a Label that overrides the page title.
func FixedLabel(text string) Label {
	return Label{Text: text, Fixed: true}
}

// IsPlaceholder reports whether address is an input-pending placeholder page.
func IsPlaceholder(address string) bool {
	return placeholderAddresses[address] || strings.HasPrefix(address, NetErrorPrefix)
}

// Resolve returns the title to display for a page, or false when no title
// should be shown: the title repeats the address, the address is a
// placeholder page, or there is nothing to show.
func Resolve(rawTitle, address string, label Label) (string, bool) {
	effective := rawTitle
	if label.Fixed {
		effective = label.Text
	}

	if effective == address {
		return "", false
	}
	if IsPlaceholder(address) {
		return "", false
	}
	if effective == "" {
		return "", false
	}
	return effective, true
}
