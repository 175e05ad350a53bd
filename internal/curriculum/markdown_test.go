package curriculum

import (
	"strings"
	"testing"
)

func TestMarkdown_Headings(t *testing.T) {
	pkg := samplePackage(t)
	md := pkg.Markdown()

	if !strings.HasPrefix(md, "# Intro to X Syllabus\n**Target Audience:** Beginners\n") {
		t.Errorf("unexpected header:\n%s", md[:80])
	}

	var h2 []string
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "## ") {
			h2 = append(h2, line)
		}
	}
	want := []string{
		"## Learning Objectives",
		"## Lesson 1: What is X?",
		"## Lesson 2: Using X",
	}
	if len(h2) != len(want) {
		t.Fatalf("## headings = %q, want %q", h2, want)
	}
	for i := range want {
		if h2[i] != want[i] {
			t.Errorf("heading %d = %q, want %q", i, h2[i], want[i])
		}
	}
}

func TestMarkdown_OutcomeFollowsLesson(t *testing.T) {
	pkg := samplePackage(t)
	lines := strings.Split(pkg.Markdown(), "\n")

	found := 0
	for i, line := range lines {
		if !strings.HasPrefix(line, "## Lesson ") {
			continue
		}
		obj := pkg.Objectives[found]
		if i+1 >= len(lines) || lines[i+1] != "**Learning Outcome:** "+obj.Text {
			t.Errorf("line after %q = %q, want outcome %q", line, lines[i+1], obj.Text)
		}
		found++
	}
	if found != 2 {
		t.Errorf("found %d lesson sections, want 2", found)
	}
}

func TestMarkdown_Sections(t *testing.T) {
	pkg := samplePackage(t)
	md := pkg.Markdown()

	for _, want := range []string{
		"1. Explain what X is\n2. Apply X to a small problem\n",
		"**Duration:** 45 minutes",
		"**Delivery Mode:** online",
		"### Assessment",
		"   - B. a place",
		"   - *Answer:* A. By definition.",
		"**Short Answer:** Describe X.",
		"*Sample Answer:* X is a thing.",
		"**Quality Review:** PASS",
		"> Looks aligned.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Count(md, "---\n") != 2 {
		t.Errorf("want one separator per lesson, got %d", strings.Count(md, "---\n"))
	}

	bare := pkg.MarkdownWith(RenderOptions{})
	if strings.Contains(bare, "### Assessment") || strings.Contains(bare, "Quality Review") {
		t.Error("MarkdownWith(RenderOptions{}) rendered optional sections")
	}
}

func TestMarkdown_ModelTextCannotAddHeadings(t *testing.T) {
	pkg := samplePackage(t)
	pkg.Lessons[0].Explanation = "Intro\n## Injected heading\nmore"
	pkg.Review.Notes = "FAIL\n## Not a heading"

	md := pkg.Markdown()
	count := 0
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "## ") {
			count++
		}
	}
	if count != 3 {
		t.Errorf("## heading count = %d, want 3", count)
	}
	if !strings.Contains(md, "**Core Content:** Intro ## Injected heading more") {
		t.Error("explanation was not flattened to one line")
	}
}

func TestQuote(t *testing.T) {
	got := quote("one\n\ntwo  ")
	want := "> one\n>\n> two\n"
	if got != want {
		t.Errorf("quote() = %q, want %q", got, want)
	}
}
