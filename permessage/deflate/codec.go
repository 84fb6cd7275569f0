package deflate

import (
	"bytes"
	"compress/flate"
	"io"
)

// maxDictSize matches the largest LZ77 window compress/flate supports;
// compress/flate does not expose a smaller configurable window, so
// server_max_window_bits / client_max_window_bits are negotiated and
// validated but not enforced at the codec level (a real production
// deployment fronting many small messages would want a codec that
// exposes window size, which the standard library's flate does not).
const maxDictSize = 32 * 1024

var syncFlushMarker = []byte{0x00, 0x00, 0xff, 0xff}

// finalEmptyBlock is an empty stored block with the final-block bit set.
// Appending it after the restored sync-flush marker lets compress/flate
// reach a clean end of stream instead of reporting io.ErrUnexpectedEOF.
var finalEmptyBlock = []byte{0x01, 0x00, 0x00, 0xff, 0xff}

// compressMessage deflates payload with an optional dictionary (the most
// recent plaintext of earlier messages, up to maxDictSize bytes, when
// context takeover is enabled) and strips the trailing sync-flush marker
// per RFC 7692 §7.2.1.
func compressMessage(payload, dict []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriterDict(&buf, flate.DefaultCompression, dict)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(payload); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if bytes.HasSuffix(out, syncFlushMarker) {
		out = out[:len(out)-len(syncFlushMarker)]
	}
	return out, nil
}

// decompressMessage restores the sync-flush marker stripped by
// compressMessage and inflates payload with an optional dictionary.
func decompressMessage(payload, dict []byte) ([]byte, error) {
	full := make([]byte, 0, len(payload)+len(syncFlushMarker)+len(finalEmptyBlock))
	full = append(full, payload...)
	full = append(full, syncFlushMarker...)
	full = append(full, finalEmptyBlock...)
	r := flate.NewReaderDict(bytes.NewReader(full), dict)
	defer r.Close()
	return io.ReadAll(r)
}

// trimDict keeps only the most recent maxDictSize bytes, since that is the
// most a subsequent message's compressor/decompressor could reference.
func trimDict(d []byte) []byte {
	if len(d) <= maxDictSize {
		return d
	}
	return d[len(d)-maxDictSize:]
}
