package render

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSON writes the digest as indented JSON. Bullets keep their HTML
// entities so a web front end can insert them as is.
func JSON(w io.Writer, d Digest) error {
	d.Title = d.title()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode digest: %w", err)
	}
	return nil
}
