package types

import "slices"

// Field is a page's board-state slot. It holds either a concrete opaque
// board encoding in Obj, or a backward reference to an earlier page's
// field in Ref. Reference chains always resolve backward to a page holding
// a concrete value.
type Field struct {
	Obj string `json:"obj,omitempty" msgpack:"obj,omitempty"`
	Ref *int   `json:"ref,omitempty" msgpack:"ref,omitempty"`
}

// IsRef reports whether the field is a reference to another page.
func (f Field) IsRef() bool { return f.Ref != nil }

// Comment is a page's comment slot: concrete text or a backward reference
// to an earlier page's comment.
type Comment struct {
	Text string `json:"text,omitempty" msgpack:"text,omitempty"`
	Ref  *int   `json:"ref,omitempty" msgpack:"ref,omitempty"`
}

// IsRef reports whether the comment is a reference to another page.
func (c Comment) IsRef() bool { return c.Ref != nil }

// PageFlags carries per-page display flags. Colorize is only meaningful on
// the first page and is preserved explicitly across reorders, since
// position 0 carries implicit meaning.
type PageFlags struct {
	Colorize bool `json:"colorize,omitempty" msgpack:"colorize,omitempty"`
}

// Page is one entry of the flat page sequence. The board encoding inside
// Field.Obj is opaque to the core; only copy and equality semantics are
// relied upon.
type Page struct {
	Index   int       `json:"index" msgpack:"index"`
	Field   Field     `json:"field" msgpack:"field"`
	Comment Comment   `json:"comment" msgpack:"comment"`
	Flags   PageFlags `json:"flags,omitempty" msgpack:"flags,omitempty"`
}

// Ref returns a pointer to an index value, for building reference fields.
func Ref(index int) *int { return &index }

// ClonePages returns a deep copy of the page list. Mutating the copy never
// affects the original; reference pointers are duplicated, not shared.
func ClonePages(pages []Page) []Page {
	if pages == nil {
		return nil
	}
	out := make([]Page, len(pages))
	for i, p := range pages {
		cp := p
		if p.Field.Ref != nil {
			cp.Field.Ref = Ref(*p.Field.Ref)
		}
		if p.Comment.Ref != nil {
			cp.Comment.Ref = Ref(*p.Comment.Ref)
		}
		out[i] = cp
	}
	return out
}

// ResolveField follows the field reference chain starting at pages[index]
// until it reaches a concrete board value. A chain that leaves the valid
// backward range or never reaches a concrete value resolves to the empty
// board, since a page must always render something.
func ResolveField(pages []Page, index int) string {
	for steps := 0; steps <= len(pages); steps++ {
		if index < 0 || index >= len(pages) {
			return ""
		}
		f := pages[index].Field
		if !f.IsRef() {
			return f.Obj
		}
		if *f.Ref >= index {
			return ""
		}
		index = *f.Ref
	}
	return ""
}

// ResolveComment follows the comment reference chain starting at
// pages[index] until it reaches concrete text. Broken chains resolve to "".
func ResolveComment(pages []Page, index int) string {
	for steps := 0; steps <= len(pages); steps++ {
		if index < 0 || index >= len(pages) {
			return ""
		}
		c := pages[index].Comment
		if !c.IsRef() {
			return c.Text
		}
		if *c.Ref >= index {
			return ""
		}
		index = *c.Ref
	}
	return ""
}

// PagesEqual reports whether two page lists are structurally identical,
// comparing reference targets by value.
func PagesEqual(a, b []Page) bool {
	return slices.EqualFunc(a, b, func(x, y Page) bool {
		if x.Index != y.Index || x.Flags != y.Flags {
			return false
		}
		if x.Field.Obj != y.Field.Obj || !refEqual(x.Field.Ref, y.Field.Ref) {
			return false
		}
		return x.Comment.Text == y.Comment.Text && refEqual(x.Comment.Ref, y.Comment.Ref)
	})
}

func refEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
