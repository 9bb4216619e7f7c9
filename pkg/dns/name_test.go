package dns

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeDomainName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    []byte
		expectedErr bool
	}{
		{
			name:     "single label",
			input:    "localhost",
			expected: []byte{9, 'l', 'o', 'c', 'a', 'l', 'h', 'o', 's', 't', 0},
		},
		{
			name:     "two labels",
			input:    "example.com",
			expected: []byte{7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0},
		},
		{
			name:     "three labels",
			input:    "www.example.com",
			expected: []byte{3, 'w', 'w', 'w', 7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0},
		},
		{
			name:        "empty domain",
			input:       "",
			expectedErr: true,
		},
		{
			name:        "empty label",
			input:       "example..com",
			expectedErr: true,
		},
		{
			name:        "trailing dot makes empty label",
			input:       "example.com.",
			expectedErr: true,
		},
		{
			name: "label over 63 bytes",
			input: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" +
				".com",
			expectedErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := EncodeDomainName(test.input)

			if test.expectedErr {
				if err == nil {
					t.Fatalf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(result, test.expected) {
				t.Errorf("got % X, want % X", result, test.expected)
			}
		})
	}
}

func TestDecodeDomainName(t *testing.T) {
	tests := []struct {
		name           string
		msg            []byte
		offset         int
		expected       string
		expectedOffset int
	}{
		{
			name:           "root name",
			msg:            []byte{0},
			offset:         0,
			expected:       "",
			expectedOffset: 1,
		},
		{
			name:           "plain name",
			msg:            []byte{7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0},
			offset:         0,
			expected:       "example.com",
			expectedOffset: 13,
		},
		{
			name: "name inside larger message",
			msg: []byte{
				0xAA, 0xBB, 0xCC,
				4, 't', 'e', 's', 't', 3, 'd', 'e', 'v', 0,
				0xEE,
			},
			offset:         3,
			expected:       "test.dev",
			expectedOffset: 13,
		},
		{
			name: "whole name is a pointer",
			msg: []byte{
				// offset 0: the original name
				7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0,
				// offset 13: pointer back to offset 0
				0xC0, 0x00,
			},
			offset:         13,
			expected:       "example.com",
			expectedOffset: 15,
		},
		{
			name: "literal labels then pointer",
			msg: []byte{
				// offset 0: "example.com"
				7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0,
				// offset 13: "www" + pointer to offset 0
				3, 'w', 'w', 'w', 0xC0, 0x00,
				// trailing byte the cursor must not land on
				0xFF,
			},
			offset:         13,
			expected:       "www.example.com",
			expectedOffset: 19,
		},
		{
			name: "pointer chain resolves backward",
			msg: []byte{
				// offset 0: "com"
				3, 'c', 'o', 'm', 0,
				// offset 5: "example" + pointer to offset 0
				7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 0xC0, 0x00,
				// offset 15: "mail" + pointer to offset 5
				4, 'm', 'a', 'i', 'l', 0xC0, 0x05,
			},
			offset:         15,
			expected:       "mail.example.com",
			expectedOffset: 22,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			name, next, err := DecodeDomainName(test.msg, test.offset)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != test.expected {
				t.Errorf("got %q, want %q", name, test.expected)
			}
			if next != test.expectedOffset {
				t.Errorf("got next offset %d, want %d", next, test.expectedOffset)
			}
		})
	}
}

func TestDecodeDomainNameMatchesEncodedText(t *testing.T) {
	// A pointer targeting an offset seen earlier must reproduce the exact
	// text of the name at that offset.
	original := "deep.sub.example.com"
	encoded, err := EncodeDomainName(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	msg := append([]byte{0xDE, 0xAD}, encoded...)
	pointerAt := len(msg)
	msg = append(msg, 0xC0, 0x02)

	direct, _, err := DecodeDomainName(msg, 2)
	if err != nil {
		t.Fatalf("direct decode: %v", err)
	}
	viaPointer, next, err := DecodeDomainName(msg, pointerAt)
	if err != nil {
		t.Fatalf("pointer decode: %v", err)
	}

	if direct != original || viaPointer != original {
		t.Errorf("direct=%q viaPointer=%q, want %q", direct, viaPointer, original)
	}
	if next != pointerAt+2 {
		t.Errorf("got next offset %d, want %d", next, pointerAt+2)
	}
}

func TestDecodeDomainNameErrors(t *testing.T) {
	tests := []struct {
		name     string
		msg      []byte
		offset   int
		expected error
	}{
		{
			name:     "empty message",
			msg:      []byte{},
			offset:   0,
			expected: ErrTruncated,
		},
		{
			name:     "label runs past end",
			msg:      []byte{7, 'e', 'x', 'a'},
			offset:   0,
			expected: ErrTruncated,
		},
		{
			name:     "missing root terminator",
			msg:      []byte{3, 'c', 'o', 'm'},
			offset:   0,
			expected: ErrTruncated,
		},
		{
			name:     "pointer missing second byte",
			msg:      []byte{3, 'c', 'o', 'm', 0, 0xC0},
			offset:   5,
			expected: ErrTruncated,
		},
		{
			name:     "self-referencing pointer",
			msg:      []byte{3, 'c', 'o', 'm', 0, 0xC0, 0x05},
			offset:   5,
			expected: ErrMalformedCompression,
		},
		{
			name:     "forward pointer",
			msg:      []byte{0xC0, 0x04, 0xFF, 0xFF, 3, 'c', 'o', 'm', 0},
			offset:   0,
			expected: ErrMalformedCompression,
		},
		{
			name: "mutually referencing pointers",
			msg: []byte{
				0xAA, 0xBB,
				0xC0, 0x04, // offset 2 -> 4
				0xC0, 0x02, // offset 4 -> 2
			},
			offset:   4,
			expected: ErrMalformedCompression,
		},
		{
			name:     "reserved label type",
			msg:      []byte{0x40, 'x', 0},
			offset:   0,
			expected: ErrMalformedCompression,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := DecodeDomainName(test.msg, test.offset)
			if err == nil {
				t.Fatalf("expected error but got none")
			}
			if !errors.Is(err, test.expected) {
				t.Errorf("got %v, want %v", err, test.expected)
			}
		})
	}
}
