package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MaxLineCapacity is the maximum buffer size for one JSON Lines record (4MB).
const MaxLineCapacity = 4 * 1024 * 1024

// Decode reads raw paper records from r. The input is either a single JSON
// array of records or JSON Lines with one record per line.
func Decode(r io.Reader) ([]Paper, error) {
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if err == io.EOF {
		return []Paper{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	if first == '[' {
		var papers []Paper
		if err := json.NewDecoder(br).Decode(&papers); err != nil {
			return nil, fmt.Errorf("parsing dataset array: %w", err)
		}
		if papers == nil {
			papers = []Paper{}
		}
		return papers, nil
	}

	return decodeLines(br)
}

// decodeLines parses JSON Lines input, skipping blank lines.
func decodeLines(r io.Reader) ([]Paper, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, MaxLineCapacity)

	papers := []Paper{}
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var p Paper
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		papers = append(papers, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dataset lines: %w", err)
	}

	return papers, nil
}

// peekNonSpace discards leading whitespace and returns the next byte
// without consuming it.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
