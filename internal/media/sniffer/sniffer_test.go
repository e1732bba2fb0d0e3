package sniffer

import (
	"bytes"
	"errors"
	"net/textproto"
	"testing"
)

func TestDetectHead(t *testing.T) {
	jpegHead := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	pngHead := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13}
	gifHead := []byte("GIF89a\x01\x00\x01\x00")
	webpHead := append([]byte("RIFF\x24\x00\x00\x00"), []byte("WEBPVP8 ")...)

	cases := []struct {
		name string
		head []byte
		want MediaType
		mime string
	}{
		{"jpeg", jpegHead, TypeJPEG, "image/jpeg"},
		{"png", pngHead, TypePNG, "image/png"},
		{"gif87a", []byte("GIF87a\x01\x00"), TypeGIF, "image/gif"},
		{"gif89a", gifHead, TypeGIF, "image/gif"},
		{"webp", webpHead, TypeWEBP, "image/webp"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectHead(tc.head)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Type != tc.want {
				t.Errorf("type = %q, want %q", got.Type, tc.want)
			}
			if got.MIME != tc.mime {
				t.Errorf("mime = %q, want %q", got.MIME, tc.mime)
			}
		})
	}
}

func TestDetectHeadRejectsUnknown(t *testing.T) {
	cases := map[string][]byte{
		"empty":     nil,
		"text":      []byte("hello world, definitely not an image"),
		"pdf":       []byte("%PDF-1.7"),
		"svg":       []byte("<svg xmlns=\"http://www.w3.org/2000/svg\"></svg>"),
		"truncated": {0xff},
	}

	for name, head := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DetectHead(head); !errors.Is(err, ErrUnknownType) {
				t.Fatalf("expected ErrUnknownType, got %v", err)
			}
		})
	}
}

func TestDetectReadsHead(t *testing.T) {
	payload := append([]byte{0xff, 0xd8, 0xff, 0xe1}, bytes.Repeat([]byte{0xab}, 1024)...)

	result, head, err := Detect(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != TypeJPEG {
		t.Errorf("type = %q, want %q", result.Type, TypeJPEG)
	}
	if len(head) != 512 {
		t.Errorf("head length = %d, want 512", len(head))
	}
}

func TestDeclaredMIME(t *testing.T) {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", "image/png; charset=binary")
	if got := DeclaredMIME(header); got != "image/png" {
		t.Errorf("got %q, want image/png", got)
	}

	if got := DeclaredMIME(textproto.MIMEHeader{}); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
