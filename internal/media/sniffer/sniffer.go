// Package sniffer identifies product photo formats from magic bytes. Only
// raster formats a storefront page can render are admitted.
package sniffer

import (
	"bytes"
	"errors"
	"io"
	"net/textproto"
	"strings"
)

type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
	TypeGIF  MediaType = "gif"
	TypeWEBP MediaType = "webp"
)

var ErrUnknownType = errors.New("unknown media type")

type Result struct {
	Type MediaType
	MIME string
}

// headSize is how much of the upload Detect buffers before deciding.
const headSize = 512

// A nil mask means plain prefix comparison. The WEBP mask skips the RIFF
// chunk size, which varies per file.
var signatures = []struct {
	pattern []byte
	mask    []byte
	result  Result
}{
	{[]byte{0xff, 0xd8, 0xff}, nil, Result{TypeJPEG, "image/jpeg"}},
	{[]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, nil, Result{TypePNG, "image/png"}},
	{[]byte("GIF87a"), nil, Result{TypeGIF, "image/gif"}},
	{[]byte("GIF89a"), nil, Result{TypeGIF, "image/gif"}},
	{
		[]byte("RIFF\x00\x00\x00\x00WEBP"),
		[]byte{0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff},
		Result{TypeWEBP, "image/webp"},
	},
}

// Detect buffers the first headSize bytes of r, classifies them, and hands
// the buffered prefix back so the caller can stitch the stream together again.
func Detect(r io.Reader) (Result, []byte, error) {
	head := make([]byte, headSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	head = head[:n]

	result, err := DetectHead(head)
	return result, head, err
}

// DetectHead classifies an already-buffered upload prefix.
func DetectHead(head []byte) (Result, error) {
	for _, sig := range signatures {
		if matchSignature(head, sig.pattern, sig.mask) {
			return sig.result, nil
		}
	}
	return Result{}, ErrUnknownType
}

func matchSignature(head, pattern, mask []byte) bool {
	if len(head) < len(pattern) {
		return false
	}
	if mask == nil {
		return bytes.Equal(head[:len(pattern)], pattern)
	}
	for i, p := range pattern {
		if head[i]&mask[i] != p {
			return false
		}
	}
	return true
}

// DeclaredMIME extracts the bare media type a multipart upload claims to be,
// with any parameters stripped.
func DeclaredMIME(header textproto.MIMEHeader) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}
