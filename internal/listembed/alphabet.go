// /internal/listembed/alphabet.go
package listembed

// Alphabet returns the fixed selection alphabet: the 26 regional indicator
// glyphs 🇦..🇿 in order. Page selectors, soundboard emojis and any other
// positional glyph assignment share this sequence, so its order must never
// change.
func Alphabet() []string {
	glyphs := make([]string, 26)
	for i := 0; i < 26; i++ {
		// Regional indicator symbols start at U+1F1E6.
		glyphs[i] = string(rune(0x1F1E6 + i))
	}
	return glyphs
}

// ReversedAlphabet returns the alphabet in reverse order. The soundboard
// assigns emojis by popping from the end of this slice, which yields 🇦 first.
func ReversedAlphabet() []string {
	glyphs := Alphabet()
	for i, j := 0, len(glyphs)-1; i < j; i, j = i+1, j-1 {
		glyphs[i], glyphs[j] = glyphs[j], glyphs[i]
	}
	return glyphs
}
