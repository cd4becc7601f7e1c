package scraper

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		dates []string
		want  []string // content per update
	}{
		{
			name:  "title and detail",
			html:  `<h2>2024-01-01</h2><ul><li><strong>Fixed bug</strong> details here</li></ul>`,
			dates: []string{"2024-01-01"},
			want:  []string{"Fixed bug\n- details here\n"},
		},
		{
			name:  "heading without list items is dropped",
			html:  `<h2>2024-01-01</h2><p>Nothing to see</p><h2>2024-01-08</h2><ul><li>Something</li></ul>`,
			dates: []string{"2024-01-08"},
			want:  []string{"- Something\n"},
		},
		{
			name:  "entity escaped title",
			html:  `<h2>v1</h2><ul><li><strong>A &#x26; B;</strong></li></ul>`,
			dates: []string{"v1"},
			want:  []string{"A & B\n"},
		},
		{
			name:  "title only item is kept",
			html:  `<h2>v2</h2><ul><li><strong>Just a title</strong></li></ul>`,
			dates: []string{"v2"},
			want:  []string{"Just a title\n"},
		},
		{
			name:  "detail markup is stripped",
			html:  `<h2>v3</h2><ul><li><strong>Search</strong> now supports <code>regex</code> and <a href="#">links</a></li></ul>`,
			dates: []string{"v3"},
			want:  []string{"Search\n- now supports regex and links\n"},
		},
		{
			name: "empty detail falls back to nested items",
			html: `<h2>v4</h2><ul><li><strong>Improvements</strong>
				<ul><li>Faster sync</li><li>Better <em>battery</em> life</li></ul>
			</li></ul>`,
			dates: []string{"v4"},
			want:  []string{"Improvements\n- Faster sync\n- Better battery life\n"},
		},
		{
			name:  "detail wins over nested items",
			html:  `<h2>v5</h2><ul><li><strong>Calls</strong> clearer audio<ul><li>ignored</li></ul></li></ul>`,
			dates: []string{"v5"},
			want:  []string{"Calls\n- clearer audio\n"},
		},
		{
			name:  "item without title",
			html:  `<h2>v6</h2><ul><li>Plain change</li><li>Another &amp; more</li></ul>`,
			dates: []string{"v6"},
			want:  []string{"- Plain change\n- Another & more\n"},
		},
		{
			name:  "bold not at start is detail",
			html:  `<h2>v7</h2><ul><li>Now <strong>faster</strong></li></ul>`,
			dates: []string{"v7"},
			want:  []string{"- Now faster\n"},
		},
		{
			name: "multiple sections keep document order",
			html: `<h2>2024-02-01</h2><ul><li><strong>B</strong></li></ul>
				<h2>2024-01-01</h2><ul><li><strong>A</strong></li></ul>`,
			dates: []string{"2024-02-01", "2024-01-01"},
			want:  []string{"B\n", "A\n"},
		},
		{
			name: "multiple items accumulate",
			html: `<h2>v8</h2><ul>
				<li><strong>One</strong> first</li>
				<li><strong>Two</strong> second</li>
			</ul>`,
			dates: []string{"v8"},
			want:  []string{"One\n- first\nTwo\n- second\n"},
		},
		{
			name:  "list item directly under heading",
			html:  `<h2>v1</h2><li><strong>T</strong> detail</li><h2>v2</h2><ul><li>x</li></ul>`,
			dates: []string{"v1", "v2"},
			want:  []string{"T\n- detail\n", "- x\n"},
		},
		{
			name:  "bare item keeps its nested items to itself",
			html:  `<h2>v1</h2><li><strong>Fixes</strong><ul><li>one</li><li>two</li></ul></li>`,
			dates: []string{"v1"},
			want:  []string{"Fixes\n- one\n- two\n"},
		},
		{
			name:  "bare and listed items keep document order",
			html:  `<h2>v1</h2><ul><li>first</li></ul><li>second</li><div><ul><li>third</li></ul></div>`,
			dates: []string{"v1"},
			want:  []string{"- first\n- second\n- third\n"},
		},
		{
			name: "multi-line detail is flattened",
			html: `<h2>v10</h2><ul><li><strong>Sync</strong>
				now retries
				   after   a dropped
				connection</li></ul>`,
			dates: []string{"v10"},
			want:  []string{"Sync\n- now retries after a dropped connection\n"},
		},
		{
			name:  "empty heading is skipped",
			html:  `<h2>  </h2><ul><li>orphan</li></ul>`,
			dates: []string{},
			want:  []string{},
		},
		{
			name:  "empty input",
			html:  ``,
			dates: []string{},
			want:  []string{},
		},
		{
			name:  "unbalanced markup",
			html:  `<h2>v9</h2><ul><li><strong>Broken</strong> <em>unclosed<li>next`,
			dates: []string{"v9"},
			want:  []string{"Broken\n- unclosed\n- next\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates := Parse(tt.html)

			if len(updates) != len(tt.dates) {
				t.Fatalf("Parse() returned %d updates, want %d", len(updates), len(tt.dates))
			}

			for i, u := range updates {
				if u.Date != tt.dates[i] {
					t.Errorf("update[%d].Date = %q, want %q", i, u.Date, tt.dates[i])
				}
				if u.Content != tt.want[i] {
					t.Errorf("update[%d].Content = %q, want %q", i, u.Content, tt.want[i])
				}
			}
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	html := `<h2>2024-01-01</h2><ul><li><strong>Fixed bug</strong> details here</li></ul>
		<h2>2024-01-08</h2><ul><li>Other</li></ul>`

	first := Parse(html)
	second := Parse(html)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse() is not deterministic: %v vs %v", first, second)
	}
}

func TestParse_NonEmptyFields(t *testing.T) {
	html := `
		<h2>A</h2><ul><li><strong>t</strong></li></ul>
		<h2>B</h2>
		<h2>C</h2><ul><li></li></ul>
		<h2>D</h2><ul><li><strong></strong><ul><li>nested</li></ul></li></ul>
	`

	updates := Parse(html)
	if len(updates) != 2 {
		t.Fatalf("Parse() returned %d updates, want 2", len(updates))
	}

	for _, u := range updates {
		if u.Date == "" {
			t.Error("update has empty Date")
		}
		if u.Content == "" {
			t.Errorf("update %q has empty Content", u.Date)
		}
		if !strings.HasSuffix(u.Content, "\n") {
			t.Errorf("update %q content should end with newline: %q", u.Date, u.Content)
		}
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"A & B;", "A & B"},
		{"  padded  ", "padded"},
		{"multi\n  line", "multi line"},
		{";;;", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := cleanText(tt.in); got != tt.want {
				t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
