package stream

import (
	"bytes"
	"io"
	"mime"
	"strings"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/tejashwikalptaru/goradio/internal/domain"
)

// Codec names a decoder this package can drive.
type Codec string

// Supported codecs.
const (
	CodecUnknown Codec = ""
	CodecMP3     Codec = "mp3"
	CodecVorbis  Codec = "vorbis"
	CodecFLAC    Codec = "flac"
	CodecWAV     Codec = "wav"
)

// sniffSize is how many bytes are peeked to identify a stream without a useful Content-Type.
const sniffSize = 512

var contentTypes = map[string]Codec{
	"audio/mpeg":      CodecMP3,
	"audio/mp3":       CodecMP3,
	"audio/mpeg3":     CodecMP3,
	"audio/x-mpeg":    CodecMP3,
	"audio/ogg":       CodecVorbis,
	"audio/vorbis":    CodecVorbis,
	"application/ogg": CodecVorbis,
	"audio/flac":      CodecFLAC,
	"audio/x-flac":    CodecFLAC,
	"audio/wav":       CodecWAV,
	"audio/wave":      CodecWAV,
	"audio/x-wav":     CodecWAV,
}

// codecForContentType maps a Content-Type header to a codec.
func codecForContentType(contentType string) Codec {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return CodecUnknown
	}
	return contentTypes[strings.ToLower(mt)]
}

// sniffCodec identifies a codec from the first bytes of a stream.
// Container signatures are recognized through tag.Identify; raw MPEG frames and
// RIFF/WAVE headers carry no tags and are matched directly.
func sniffCodec(head []byte) Codec {
	if len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WAVE" {
		return CodecWAV
	}

	if _, fileType, err := tag.Identify(bytes.NewReader(head)); err == nil {
		switch fileType {
		case tag.MP3:
			return CodecMP3
		case tag.OGG:
			return CodecVorbis
		case tag.FLAC:
			return CodecFLAC
		}
	}

	// MPEG audio frame sync: 11 set bits, layer bits non-zero
	if len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0 && head[1]&0x06 != 0 {
		return CodecMP3
	}
	return CodecUnknown
}

// selectCodec prefers the declared Content-Type and falls back to sniffing.
func selectCodec(contentType string, head []byte) Codec {
	if c := codecForContentType(contentType); c != CodecUnknown {
		return c
	}
	return sniffCodec(head)
}

// decode opens a beep streamer for codec over rc.
func decode(codec Codec, rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	switch codec {
	case CodecMP3:
		return mp3.Decode(rc)
	case CodecVorbis:
		return vorbis.Decode(rc)
	case CodecFLAC:
		return flac.Decode(rc)
	case CodecWAV:
		return wav.Decode(rc)
	default:
		return nil, beep.Format{}, domain.ErrUnsupportedFormat
	}
}
