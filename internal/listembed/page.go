// /internal/listembed/page.go
package listembed

import "github.com/bwmarrin/discordgo"

// Item is one display entry: a field label and its value text.
type Item struct {
	Name  string
	Value string
}

// selectedMarker prefixes the value of a selected field.
const selectedMarker = "✅"

// Page is a bounded slice of items rendered as one embed state. Selection is
// explicit per-item state; the ✅ marker in the rendered value is derived
// from it, never the other way around.
type Page struct {
	items      []Item
	selected   []bool
	selectable bool
}

func newPage(items []Item, selectable bool) *Page {
	return &Page{
		items:      items,
		selected:   make([]bool, len(items)),
		selectable: selectable,
	}
}

// Items returns the page's items in original order.
func (p *Page) Items() []Item {
	return p.items
}

// Glyphs returns the selector glyph for each item on this page. The mapping
// is index-based and stable for the page's lifetime.
func (p *Page) Glyphs() []string {
	return Alphabet()[:len(p.items)]
}

// GlyphIndex returns the item index for a selector glyph, or -1.
func (p *Page) GlyphIndex(glyph string) int {
	for i, g := range p.Glyphs() {
		if g == glyph {
			return i
		}
	}
	return -1
}

// Toggle flips the selection state of one item. Out-of-range is a no-op.
func (p *Page) Toggle(i int) {
	if i < 0 || i >= len(p.selected) {
		return
	}
	p.selected[i] = !p.selected[i]
}

// IsSelected reports the selection state of one item.
func (p *Page) IsSelected(i int) bool {
	return i >= 0 && i < len(p.selected) && p.selected[i]
}

// Selected returns the currently selected items in original order.
func (p *Page) Selected() []Item {
	var items []Item
	for i, sel := range p.selected {
		if sel {
			items = append(items, p.items[i])
		}
	}
	return items
}

// Fields renders the page into embed fields.
func (p *Page) Fields() []*discordgo.MessageEmbedField {
	fields := make([]*discordgo.MessageEmbedField, len(p.items))
	alphabet := Alphabet()
	for i, item := range p.items {
		name := item.Name
		if p.selectable {
			name = alphabet[i] + " " + item.Name
		}
		value := item.Value
		if p.selected[i] {
			value = selectedMarker + " " + value
		}
		fields[i] = &discordgo.MessageEmbedField{
			Name:   name,
			Value:  value,
			Inline: true,
		}
	}
	return fields
}
