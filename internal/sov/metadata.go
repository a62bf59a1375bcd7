package sov

import "strings"

// extractMetadata scans the concatenated page text for the title-block
// line "PRODUCT NUMBER ... CUSTOMER ..."; the identifiers live on the
// line immediately above it. Returns empty strings when the anchor is
// never found.
func extractMetadata(fullText string) (customerID, productID string) {
	var lines []string
	for _, ln := range strings.Split(fullText, "\n") {
		if t := strings.TrimSpace(ln); t != "" {
			lines = append(lines, t)
		}
	}
	for i, line := range lines {
		up := strings.ToUpper(line)
		if strings.HasPrefix(up, "PRODUCT NUMBER") && strings.Contains(up, "CUSTOMER") {
			if i > 0 {
				parts := strings.Fields(lines[i-1])
				if len(parts) >= 2 {
					productID = stripNonASCII(normalizeText(parts[0]))
					customerID = stripNonASCII(normalizeText(parts[1]))
				}
			}
			break
		}
	}
	return customerID, productID
}
