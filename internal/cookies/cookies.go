// Package cookies persists a session's cookie jar to disk in either a
// plain JSON array or the Netscape cookie-jar text format, and loads both
// back. Parse failures surface as explicit errors; nothing is retried or
// silently skipped except blank and comment lines in Netscape files.
package cookies

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMalformed marks a cookie file that exists but cannot be parsed.
	ErrMalformed = errors.New("cookies: malformed cookie file")
	// ErrUnknownFormat marks a file extension that maps to no known format.
	ErrUnknownFormat = errors.New("cookies: unknown cookie file format")
)

// Record is one persisted cookie. Expires is a Unix timestamp; zero means
// a session cookie.
type Record struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Domain  string `json:"domain"`
	Path    string `json:"path"`
	Secure  bool   `json:"secure"`
	Expires int64  `json:"expires"`
}

// FromHTTP converts transport cookies into records.
func FromHTTP(in []*http.Cookie) []Record {
	out := make([]Record, 0, len(in))
	for _, c := range in {
		r := Record{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
			Secure: c.Secure,
		}
		if !c.Expires.IsZero() {
			r.Expires = c.Expires.Unix()
		}
		out = append(out, r)
	}
	return out
}

// ToHTTP converts records back into http cookies.
func ToHTTP(in []Record) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(in))
	for _, r := range in {
		c := &http.Cookie{
			Name:   r.Name,
			Value:  r.Value,
			Domain: r.Domain,
			Path:   r.Path,
			Secure: r.Secure,
		}
		if r.Expires > 0 {
			c.Expires = time.Unix(r.Expires, 0)
		}
		out = append(out, c)
	}
	return out
}

// Save writes records to path, choosing the format by extension: .json for
// the JSON array, .txt for Netscape. Any other extension is rejected with
// ErrUnknownFormat.
func Save(path string, records []Record) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SaveJSON(path, records)
	case ".txt":
		return SaveNetscape(path, records)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads records from path, choosing the format by extension like Save.
func Load(path string) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path)
	case ".txt":
		return LoadNetscape(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// SaveJSON writes records as an indented JSON array.
func SaveJSON(path string, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadJSON reads a JSON cookie array.
func LoadJSON(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return records, nil
}

const netscapeHeader = "# Netscape HTTP Cookie File"

// SaveNetscape writes records in the seven-field tab-separated Netscape
// jar layout: domain, include-subdomains flag, path, secure, expiry, name,
// value.
func SaveNetscape(path string, records []Record) error {
	var b strings.Builder
	b.WriteString(netscapeHeader)
	b.WriteString("\n\n")
	for _, r := range records {
		flag := "FALSE"
		if strings.HasPrefix(r.Domain, ".") {
			flag = "TRUE"
		}
		secure := "FALSE"
		if r.Secure {
			secure = "TRUE"
		}
		cookiePath := r.Path
		if cookiePath == "" {
			cookiePath = "/"
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Domain, flag, cookiePath, secure, r.Expires, r.Name, r.Value)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// LoadNetscape reads a Netscape jar. Comment and blank lines are skipped;
// a data line with the wrong field count or a non-numeric expiry fails the
// whole load.
func LoadNetscape(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			return nil, fmt.Errorf("%w: %s line %d: expected 7 fields, got %d",
				ErrMalformed, path, lineNum, len(fields))
		}
		expires, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: bad expiry %q",
				ErrMalformed, path, lineNum, fields[4])
		}
		records = append(records, Record{
			Domain:  fields[0],
			Path:    fields[2],
			Secure:  fields[3] == "TRUE",
			Expires: expires,
			Name:    fields[5],
			Value:   fields[6],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
