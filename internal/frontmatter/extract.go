// Package frontmatter isolates the leading YAML block of a Markdown note and
// decodes its tags list.
package frontmatter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const delim = "---"

// Extract returns the first front-matter block of the file at path,
// delimiter lines included. See ExtractReader.
func Extract(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("frontmatter: open %s: %w", path, err)
	}
	defer f.Close()

	block, err := ExtractReader(f)
	if err != nil {
		return "", fmt.Errorf("frontmatter: read %s: %w", path, err)
	}
	return block, nil
}

// ExtractReader reads r line by line. A line that trims to "---" toggles the
// block; lines inside it are buffered with a trailing newline. The buffer is
// returned on the closing delimiter, or at EOF if the block never closes.
// Input without a delimiter yields "".
func ExtractReader(r io.Reader) (string, error) {
	br := bufio.NewReader(r)
	var (
		buf     strings.Builder
		inBlock bool
	)

	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" && err != nil {
			break
		}

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == delim {
			buf.WriteString(delim + "\n")
			if inBlock {
				return buf.String(), nil
			}
			inBlock = true
		} else if inBlock {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}

		if err != nil {
			break
		}
	}

	if inBlock {
		return buf.String(), nil
	}
	return "", nil
}
