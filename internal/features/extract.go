package features

import "context"

// Extract builds the FeatureBag for one source unit. It never fails: a
// source the grammar rejects is scanned instead, and a source without any
// tokens yields the zero bag with Parsed false.
func Extract(ctx context.Context, source string, lang Language) FeatureBag {
	src := []byte(source)
	blanked := blank(src, lang)
	if !hasTokens(blanked) {
		return FeatureBag{Language: lang, Mode: ModeNone}
	}

	if sk, ok := structuralSkeleton(ctx, src, lang); ok {
		return assemble(sk, blanked, lang, ModeStructural)
	}
	return assemble(scanSkeleton(blanked, lang), blanked, lang, ModeScan)
}

// Scan builds the FeatureBag with the token scan only, skipping the parser.
func Scan(source string, lang Language) FeatureBag {
	src := []byte(source)
	blanked := blank(src, lang)
	if !hasTokens(blanked) {
		return FeatureBag{Language: lang, Mode: ModeNone}
	}
	return assemble(scanSkeleton(blanked, lang), blanked, lang, ModeScan)
}
