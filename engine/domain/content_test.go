package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFlattenPlainText(t *testing.T) {
	c := Content{Text: "Leopard sighted near the village."}
	got, err := c.Flatten()
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if got != "Leopard sighted near the village." {
		t.Errorf("got %q", got)
	}
}

func TestFlattenParagraphFragments(t *testing.T) {
	c := Content{Fragments: []Fragment{{Para: "A"}, {Para: "B"}}}
	got, err := c.Flatten()
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if got != "A B" {
		t.Errorf("got %q, want %q", got, "A B")
	}
}

func TestFlattenSectionFragments(t *testing.T) {
	c := Content{Fragments: []Fragment{{Section: []Fragment{{Para: "A"}}}}}
	got, err := c.Flatten()
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if got != "A" {
		t.Errorf("got %q, want %q", got, "A")
	}
}

func TestFlattenSectionFragmentsMultiple(t *testing.T) {
	c := Content{Fragments: []Fragment{
		{Section: []Fragment{{Para: "Leopard sighted."}, {Para: "Rescue underway."}}},
		{Section: []Fragment{{Para: "Forest dept notified."}}},
	}}
	got, err := c.Flatten()
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	want := "Leopard sighted. Rescue underway. Forest dept notified."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFlattenMalformedShape(t *testing.T) {
	c := Content{Fragments: []Fragment{{}}}
	if _, err := c.Flatten(); !errors.Is(err, ErrMalformedContent) {
		t.Fatalf("expected ErrMalformedContent, got %v", err)
	}
}

func TestContentUnmarshalJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"string", `"plain body"`, "plain body"},
		{"flat_list", `[{"para_content":"A"},{"para_content":"B"}]`, "A B"},
		{"nested_list", `[{"content1":[{"para_content":"A"}]}]`, "A"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c Content
			if err := json.Unmarshal([]byte(tc.in), &c); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, err := c.Flatten()
			if err != nil {
				t.Fatalf("flatten: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestContentUnmarshalUnknownKeysAreMalformed(t *testing.T) {
	var c Content
	if err := json.Unmarshal([]byte(`[{"body":"A"}]`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := c.Flatten(); !errors.Is(err, ErrMalformedContent) {
		t.Fatalf("expected ErrMalformedContent, got %v", err)
	}
}
