package utils

import (
	"bufio"
	"os"
	"strings"
)

// Blocklist holds terms used to drop unwanted caption cues before they
// reach the overlay
type Blocklist struct {
	terms []string
}

// LoadBlocklist loads blocklist terms from a file, one per line.
// Lines starting with # are comments. A missing file yields an empty
// blocklist.
func LoadBlocklist(path string) (*Blocklist, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Blocklist{terms: []string{}}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var terms []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		if term != "" && !strings.HasPrefix(term, "#") {
			terms = append(terms, term)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Blocklist{terms: terms}, nil
}

// Matches checks whether a caption text contains any blocked term.
// Returns (matched, matchedTerm).
func (b *Blocklist) Matches(text string) (bool, string) {
	textLower := strings.ToLower(text)

	for _, term := range b.terms {
		if strings.Contains(textLower, strings.ToLower(term)) {
			return true, term
		}
	}

	return false, ""
}
