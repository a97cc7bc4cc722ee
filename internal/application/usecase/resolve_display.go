package usecase

import (
	"context"
	"fmt"

	"github.com/bnema/pagetitle/internal/domain/address"
	"github.com/bnema/pagetitle/internal/domain/title"
	"github.com/bnema/pagetitle/internal/logging"
)

// DisplayInput is what the address bar shows a display for.
type DisplayInput struct {
	// Title is the page's own content title.
	Title string
	// URL is the ASCII form of the selected tab's address.
	URL string
	// Label is a tab label fixed by a labeling extension, if any.
	Label title.Label
}

// DisplayOutput is the content of the display slots.
type DisplayOutput struct {
	// ShowTitle is false when the address bar should show the plain address.
	ShowTitle bool
	Title     string
	Parts     address.Parts
	// Address is URL after legacy wrapper removal.
	Address string
}

// ResolveDisplayUseCase turns a page's title and address into display slot
// contents.
type ResolveDisplayUseCase struct {
	lookup address.BaseDomainLookup
}

// NewResolveDisplayUseCase creates a new resolve display use case.
func NewResolveDisplayUseCase(lookup address.BaseDomainLookup) *ResolveDisplayUseCase {
	return &ResolveDisplayUseCase{lookup: lookup}
}

// Execute resolves the display for input. On a decomposition error the output
// shows no title and the error is returned for reporting.
func (uc *ResolveDisplayUseCase) Execute(ctx context.Context, input DisplayInput) (*DisplayOutput, error) {
	log := logging.FromContext(ctx)

	addr := input.URL
	if address.IsLegacyWrapped(addr) {
		inner, err := address.UnwrapLegacy(addr)
		if err != nil {
			log.Error().Err(err).Str("url", addr).Msg("failed to unwrap legacy address")
		} else {
			addr = inner
		}
	}

	out := &DisplayOutput{Address: addr}

	shown, ok := title.Resolve(input.Title, addr, input.Label)
	if !ok {
		return out, nil
	}

	parts, err := address.Decompose(addr, uc.lookup)
	if err != nil {
		return out, fmt.Errorf("decompose %q: %w", addr, err)
	}

	out.ShowTitle = true
	out.Title = shown
	out.Parts = parts
	return out, nil
}
