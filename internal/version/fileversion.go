package version

import (
	"sort"

	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/xmlres"
)

// Variant is one synthesized file-level configuration variant: the same
// document content at a higher platformLevel.
type Variant struct {
	Config restable.ConfigDescription
	Doc    *xmlres.Document
}

// FileVersioner implements the file-level AutoVersioner invoked by the
// flattener for each compiled XML document.
type FileVersioner struct {
	MinSDK      int
	SkipVectors bool // --no-version-vectors
}

// NewFileVersioner returns a FileVersioner.
func NewFileVersioner(minSDK int, skipVectors bool) *FileVersioner {
	return &FileVersioner{MinSDK: minSDK, SkipVectors: skipVectors}
}

// Version returns the variants that should be synthesized for doc, given
// the platform levels its linked attributes required and the
// configuration it was originally declared under. hasExistingVariant, if
// non-nil, lets the caller veto a candidate level when a variant covering
// it already exists in the table (should_generate_versioned_resource).
func (v *FileVersioner) Version(
	doc *xmlres.Document,
	baseConfig restable.ConfigDescription,
	levels map[int]bool,
	hasExistingVariant func(level int) bool,
) []Variant {
	if v.SkipVectors && isVectorRoot(doc) {
		return nil
	}

	threshold := v.MinSDK
	if baseConfig.PlatformLevel > threshold {
		threshold = baseConfig.PlatformLevel
	}

	var candidates []int
	for l := range levels {
		if l > threshold {
			candidates = append(candidates, l)
		}
	}
	sort.Ints(candidates)

	var variants []Variant
	for _, l := range candidates {
		if hasExistingVariant != nil && hasExistingVariant(l) {
			continue
		}
		variants = append(variants, Variant{
			Config: baseConfig.WithPlatformLevel(l),
			Doc:    doc.Clone(),
		})
	}
	return variants
}

func isVectorRoot(doc *xmlres.Document) bool {
	if doc.Root == nil || doc.Root.Namespace != "" {
		return false
	}
	switch doc.Root.Name {
	case "vector", "animated-vector":
		return true
	default:
		return false
	}
}
