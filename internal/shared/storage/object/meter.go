package object

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	"github.com/zeebo/blake3"

	"lanshare-backend/internal/ids"
)

const sniffLen = 512

// Sniff detects the content type from the first bytes of r and returns a
// reader that replays them ahead of the remainder.
func Sniff(r io.Reader) (string, io.Reader, error) {
	var head [sniffLen]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	return http.DetectContentType(head[:n]), io.MultiReader(bytes.NewReader(head[:n]), r), nil
}

// Meter counts and hashes bytes as they stream through it.
type Meter struct {
	ctx context.Context
	r   io.Reader
	h   *blake3.Hasher
	n   int64
}

// NewMeter wraps r. Reads fail with ctx.Err() once ctx is done, so an
// aborted upload stops writing promptly.
func NewMeter(ctx context.Context, r io.Reader) *Meter {
	return &Meter{ctx: ctx, r: r, h: blake3.New()}
}

func (m *Meter) Read(p []byte) (int, error) {
	if err := m.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := m.r.Read(p)
	if n > 0 {
		m.n += int64(n)
		_, _ = m.h.Write(p[:n])
	}
	return n, err
}

// Size returns the number of bytes read so far.
func (m *Meter) Size() int64 { return m.n }

// Checksum returns the BLAKE3 digest of the bytes read so far.
func (m *Meter) Checksum() string {
	return "blake3:" + hex.EncodeToString(m.h.Sum(nil))
}

// CheckKey rejects keys that could escape the store's namespace.
func CheckKey(key string) error {
	if !ids.Valid(key) {
		return ErrInvalidKey
	}
	return nil
}
