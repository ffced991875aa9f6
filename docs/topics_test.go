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

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md can be loaded, and every topic is listed.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("failed to get topic %q: %v", topic, err)
		}
	}
	if all := AllTopics(); !slices.Equal(all, listed) {
		t.Errorf("AllTopics() = %v, readme.md lists %v", all, listed)
	}
}

func TestTopics_title(t *testing.T) {
	// Each topic starts with a title, so that they can be concatenated.
	for _, topic := range append(AllTopics(), "readme") {
		content, err := GetTopic(topic)
		if err != nil {
			t.Fatal(err)
		}
		root := goldmark.DefaultParser().Parse(text.NewReader([]byte(content)))
		h, ok := root.FirstChild().(*ast.Heading)
		if !ok || h.Level != 1 {
			t.Errorf("topic %q does not start with a title", topic)
		}
	}
}

func TestGetTopics(t *testing.T) {
	all, err := GetTopics("*")
	if err != nil {
		t.Fatalf("GetTopics(*) unexpected error = %v", err)
	}
	for _, topic := range AllTopics() {
		content, _ := GetTopic(topic)
		if !strings.Contains(all, content) {
			t.Errorf("GetTopics(*) misses topic %q", topic)
		}
	}
	if _, err := GetTopics("readme", "nope"); err == nil {
		t.Error("GetTopics() expected an error for an unknown topic")
	}
}
