package rules

// VariantMatch is the stage-1 outcome from validateVariant.
type VariantMatch string

const (
	VariantMatchOK       VariantMatch = "MATCH"
	VariantMismatch      VariantMatch = "VARIANT_MISMATCH"
)

// validateVariant is stage 1: the listing's canonical ID must be
// byte-equal to the metadata's canonical ID; empty or missing IDs on
// either side are a mismatch. Grounded on
// original_source/src/engine/variant_check.py.
func validateVariant(listingID, canonicalID string) VariantMatch {
	if listingID == "" || canonicalID == "" {
		return VariantMismatch
	}
	if listingID != canonicalID {
		return VariantMismatch
	}
	return VariantMatchOK
}
