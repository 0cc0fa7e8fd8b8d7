package stream

import (
	"bufio"
	"io"
	"strings"
)

// icyReader strips in-band SHOUTcast metadata from an audio body.
// Every metaint audio bytes the server inserts one length byte (in 16-byte units)
// followed by that many bytes of "Key='value';" pairs.
type icyReader struct {
	r       *bufio.Reader
	metaint int
	left    int // audio bytes until the next metadata block
	onTitle func(title string)
	title   string
}

func newICYReader(r io.Reader, metaint int, onTitle func(string)) *icyReader {
	return &icyReader{
		r:       bufio.NewReader(r),
		metaint: metaint,
		left:    metaint,
		onTitle: onTitle,
	}
}

// Read returns audio bytes only.
func (ir *icyReader) Read(p []byte) (int, error) {
	if ir.left == 0 {
		if err := ir.readMetadata(); err != nil {
			return 0, err
		}
		ir.left = ir.metaint
	}

	if len(p) > ir.left {
		p = p[:ir.left]
	}
	n, err := ir.r.Read(p)
	ir.left -= n
	return n, err
}

func (ir *icyReader) readMetadata() error {
	lenByte, err := ir.r.ReadByte()
	if err != nil {
		return err
	}

	metaLen := int(lenByte) * 16
	if metaLen == 0 {
		return nil
	}

	meta := make([]byte, metaLen)
	if _, err := io.ReadFull(ir.r, meta); err != nil {
		return err
	}

	if title, ok := parseStreamTitle(string(meta)); ok && title != ir.title {
		ir.title = title
		if ir.onTitle != nil {
			ir.onTitle(title)
		}
	}
	return nil
}

// parseStreamTitle extracts StreamTitle from an ICY metadata block.
func parseStreamTitle(meta string) (string, bool) {
	const key = "StreamTitle='"
	start := strings.Index(meta, key)
	if start < 0 {
		return "", false
	}
	start += len(key)
	end := strings.Index(meta[start:], "';")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(meta[start : start+end]), true
}
