package stream

import (
	"bufio"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"
)

// isPlaylist reports whether rawURL or contentType denote a .pls or .m3u playlist.
func isPlaylist(rawURL, contentType string) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "audio/x-scpls", "audio/scpls", "audio/x-mpegurl", "audio/mpegurl", "application/pls+xml":
			return true
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".pls", ".m3u", ".m3u8":
		return true
	}
	return false
}

// parsePlaylist extracts stream URLs from a PLS or M3U body.
// The format is detected from the content rather than trusted from the extension.
func parsePlaylist(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "", strings.HasPrefix(line, "#"), strings.HasPrefix(line, "["):
			continue
		case strings.HasPrefix(strings.ToLower(line), "file") && strings.Contains(line, "="):
			// PLS: FileN=url
			parts := strings.SplitN(line, "=", 2)
			if u := strings.TrimSpace(parts[1]); u != "" {
				urls = append(urls, u)
			}
		case strings.Contains(line, "://"):
			// M3U: bare url lines
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading playlist: %w", err)
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("no valid stream URL found in playlist")
	}
	return urls, nil
}
