package wikindex

import "testing"

func TestParseTags(t *testing.T) {
	got, err := ParseTags("ti")
	if err != nil {
		t.Fatal(err)
	}
	if want := TagTitle | TagInfobox; got != want {
		t.Errorf("ParseTags(ti) = %v, want %v", got, want)
	}

	if _, err := ParseTags(""); err == nil {
		t.Error("ParseTags accepted empty tagchars")
	}
	if _, err := ParseTags("tx"); err == nil {
		t.Error("ParseTags accepted unknown tag x")
	}
}

func TestTagsStringCanonicalOrder(t *testing.T) {
	all := TagTitle | TagInfobox | TagCategory | TagReference | TagLink | TagBody
	if got := all.String(); got != "ticrlb" {
		t.Errorf("String() = %q, want ticrlb", got)
	}
	// serialization order is fixed regardless of how the set was built
	if got := (TagBody | TagTitle).String(); got != "tb" {
		t.Errorf("String() = %q, want tb", got)
	}
}

func TestTagsSubsetOf(t *testing.T) {
	if !TagTitle.SubsetOf(TagTitle | TagInfobox) {
		t.Error("t should be a subset of ti")
	}
	if (TagTitle | TagBody).SubsetOf(TagTitle) {
		t.Error("tb should not be a subset of t")
	}
	if !Tags(0).SubsetOf(TagCategory) {
		t.Error("the empty set is a subset of everything")
	}
}

func TestWeight(t *testing.T) {
	weights := map[Tags]int{
		TagTitle:     6,
		TagInfobox:   3,
		TagCategory:  2,
		TagReference: 1,
		TagLink:      1,
		TagBody:      1,
	}
	for tag, want := range weights {
		if got := Weight(tag); got != want {
			t.Errorf("Weight(%v) = %d, want %d", tag, got, want)
		}
	}
}
