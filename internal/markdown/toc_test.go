package markdown

import (
	"testing"
)

func TestExtractTOC(t *testing.T) {
	html := New(DefaultOptions()).Render("# Intro\n\ntext\n\n## The `mov` Instruction\n\n### Deep **Dive**\n")

	toc := ExtractTOC(html)
	if len(toc) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(toc), toc)
	}

	want := []TOCItem{
		{Level: 1, ID: "intro", Title: "Intro"},
		{Level: 2, ID: "the-mov-instruction", Title: "The mov Instruction"},
		{Level: 3, ID: "deep-dive", Title: "Deep Dive"},
	}
	for i, w := range want {
		if toc[i] != w {
			t.Fatalf("item %d = %+v, want %+v", i, toc[i], w)
		}
	}
}

func TestExtractTOC_DuplicateHeadingsShareIDs(t *testing.T) {
	html := New(DefaultOptions()).Render("## Setup\n\n## Setup\n")
	toc := ExtractTOC(html)
	if len(toc) != 2 {
		t.Fatalf("expected 2 items, got %d", len(toc))
	}
	if toc[0].ID != toc[1].ID {
		t.Fatalf("duplicate headings must keep identical ids: %q vs %q", toc[0].ID, toc[1].ID)
	}
}

func TestExtractTOC_NoHeadings(t *testing.T) {
	if toc := ExtractTOC("<p>nothing here</p>"); len(toc) != 0 {
		t.Fatalf("expected empty TOC, got %+v", toc)
	}
}
