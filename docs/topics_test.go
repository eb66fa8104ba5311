package docs

import (
	"bufio"
	"os"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// TestTopics ensures that every topic listed in readme.md exists, and that
// every topic is listed.
func TestTopics(t *testing.T) {
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var inReadme []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			inReadme = append(inReadme, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(inReadme)
	if !slices.Equal(inReadme, all) {
		t.Errorf("readme topics = %v, want %v", inReadme, all)
	}
}

// TestTopicTitles checks that each topic starts with a level 1 heading.
func TestTopicTitles(t *testing.T) {
	all, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range all {
		t.Run(topic, func(t *testing.T) {
			content, err := GetTopic(topic)
			if err != nil {
				t.Fatal(err)
			}
			source := []byte(content)
			doc := goldmark.New().Parser().Parse(text.NewReader(source))
			h, ok := doc.FirstChild().(*ast.Heading)
			if !ok || h.Level != 1 {
				t.Errorf("topic %q does not start with a title", topic)
			}
		})
	}
}

func TestGetTopic(t *testing.T) {
	if _, err := GetTopic("unknown"); err == nil {
		t.Error("GetTopic(unknown) succeeded, want an error")
	}
	all, err := GetTopic("*")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(all, "# Time-weighted return") {
		t.Errorf("GetTopic(*) does not contain the twr topic")
	}
}
